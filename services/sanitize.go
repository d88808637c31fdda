package services

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plainPolicy = bluemonday.StrictPolicy()
	richPolicy  = bluemonday.UGCPolicy()
)

// SanitizePlain strips all markup from short free-text fields (notes, subjects)
func SanitizePlain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}

// SanitizeRich keeps safe formatting in message bodies and removes scripts,
// event handlers and unsafe links
func SanitizeRich(s string) string {
	return strings.TrimSpace(richPolicy.Sanitize(s))
}
