package partials

import (
	"context"
	"io"

	"probation_app_go/models"

	"github.com/a-h/templ"
)

// LayoutData is the chrome shared by every signed-in page
type LayoutData struct {
	Title     string
	User      *models.User
	CSRFToken string
	Flash     string
}

const styles = `body{font-family:Helvetica,Arial,sans-serif;margin:0;color:#1f2933;background:#f5f7fa}
nav{background:#1f3a5f;color:#fff;padding:10px 24px;display:flex;gap:16px;align-items:center}
nav a{color:#fff;text-decoration:none}nav .spacer{flex:1}
main{max-width:1100px;margin:24px auto;padding:0 24px}
table{width:100%;border-collapse:collapse;background:#fff}th,td{padding:8px;border-bottom:1px solid #e4e7eb;text-align:left}
.card{background:#fff;border-radius:6px;padding:16px;margin-bottom:16px}
.stats{display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:12px}
.stat{background:#fff;border-radius:6px;padding:12px}.stat b{display:block;font-size:24px}
.alert{padding:10px 14px;border-radius:4px;margin-bottom:12px}
.alert-success{background:#e3f9e5}.alert-warning{background:#fffbea}.alert-danger{background:#ffe3e3}
.alert-info{background:#e6f6ff}.alert-secondary{background:#f0f4f8}
.badge{padding:2px 8px;border-radius:10px;font-size:12px}`

// Page wraps body in the document shell with navigation and the flash message
func Page(d LayoutData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.Text(d.Title)
		h.Raw(` | Probation Management</title><style>`, styles, `</style></head><body>`)

		if d.User != nil {
			h.Raw(`<nav><a href="/dashboard"><strong>Probation Management</strong></a>`,
				`<a href="/dashboard">Dashboard</a><a href="/clients">Clients</a><span class="spacer"></span><span>`)
			h.Text(d.User.FullName() + " (" + d.User.Role.Label() + ")")
			h.Raw(`</span><form method="post" action="/logout" style="margin:0"><input type="hidden" name="_csrf" value="`)
			h.Attr(d.CSRFToken)
			h.Raw(`"><button type="submit">Log out</button></form></nav>`)
		}

		h.Raw(`<main>`)
		if d.Flash != "" {
			h.Raw(`<div class="alert alert-danger" role="alert">`)
			h.Text(d.Flash)
			h.Raw(`</div>`)
		}
		if h.Err() != nil {
			return h.Err()
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.Raw(`</main>`)
		if d.Flash != "" {
			h.Raw(`<script nonce="`)
			h.Attr(templ.GetNonce(ctx))
			h.Raw(`">setTimeout(function(){var a=document.querySelector('.alert[role=alert]');if(a){a.remove()}},8000)</script>`)
		}
		h.Raw(`</body></html>`)
		return h.Err()
	})
}
