package services

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions suits tabular reports
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "landscape",
		PageSize:        "letter",
		MarginTop:       36,
		MarginBottom:    36,
		MarginLeft:      36,
		MarginRight:     36,
	}
}

// paper returns width and height in inches
func (o PDFOptions) paper() (float64, float64) {
	w, h := 8.5, 11.0
	switch o.PageSize {
	case "legal":
		h = 14.0
	case "A4":
		w, h = 8.27, 11.69
	}
	if o.PageOrientation == "landscape" {
		w, h = h, w
	}
	return w, h
}

// PDFRenderer turns an HTML document into PDF bytes
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromePDF renders with headless Chrome through chromedp
type ChromePDF struct {
	ExecPath string // empty uses chromedp's lookup
	Options  PDFOptions
	Timeout  time.Duration
}

func NewChromePDF(execPath string) *ChromePDF {
	return &ChromePDF{ExecPath: execPath, Options: DefaultPDFOptions(), Timeout: 30 * time.Second}
}

func (c *ChromePDF) RenderPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	width, height := c.Options.paper()
	inches := func(points int) float64 { return float64(points) / 72.0 }

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(inches(c.Options.MarginTop)).
				WithMarginBottom(inches(c.Options.MarginBottom)).
				WithMarginLeft(inches(c.Options.MarginLeft)).
				WithMarginRight(inches(c.Options.MarginRight)).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return pdfBuf, nil
}

// WrapReportHTML wraps report markup in a printable document
func WrapReportHTML(title, body string) string {
	return `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>` + title + `</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; color: #111; }
  h1 { font-size: 16pt; margin-bottom: 4pt; }
  .generated { color: #666; margin-bottom: 12pt; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 16pt; }
  th, td { border: 1px solid #ccc; padding: 4pt 6pt; text-align: left; }
  th { background: #f0f0f0; }
</style>
</head>
<body>
` + body + `
</body>
</html>`
}
