package partials

import (
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup and keeps the first write error
type HTML struct {
	w   io.Writer
	err error
}

func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes trusted markup
func (h *HTML) Raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

// Text writes escaped text
func (h *HTML) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Attr writes an escaped attribute value
func (h *HTML) Attr(s string) {
	h.Raw(templ.EscapeString(s))
}

func (h *HTML) Err() error {
	return h.err
}
