package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPDFOptions(t *testing.T) {
	opts := DefaultPDFOptions()
	assert.Equal(t, "landscape", opts.PageOrientation)
	assert.Equal(t, "letter", opts.PageSize)

	w, h := opts.paper()
	assert.Equal(t, 11.0, w)
	assert.Equal(t, 8.5, h)

	w, h = PDFOptions{PageSize: "A4", PageOrientation: "portrait"}.paper()
	assert.Equal(t, 8.27, w)
	assert.Equal(t, 11.69, h)
}

func TestWrapReportHTML(t *testing.T) {
	html := WrapReportHTML("Clients", "<table></table>")
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "<title>Clients</title>")
	assert.Contains(t, html, "<table></table>")
}

func TestChromePDFSmoke(t *testing.T) {
	chromePath := os.Getenv("CHROME_PATH")
	if chromePath == "" {
		t.Skip("Skipping PDF generation test: CHROME_PATH not set")
	}

	pdf, err := NewChromePDF(chromePath).RenderPDF(context.Background(), "<h1>Hello World</h1>")
	if err != nil {
		t.Errorf("RenderPDF failed: %v", err)
		return
	}
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
