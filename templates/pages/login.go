package pages

import (
	"context"
	"io"

	"probation_app_go/templates/partials"

	"github.com/a-h/templ"
)

// LoginData feeds the login form
type LoginData struct {
	CSRFToken string
	Username  string
	Error     string
	Flash     string
}

// Login renders the sign-in form
func Login(d LoginData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := partials.NewHTML(w)
		h.Raw(`<div class="card" style="max-width:380px;margin:60px auto"><h1>Sign in</h1>`)
		if d.Error != "" {
			h.Raw(`<div class="alert alert-danger" role="alert">`)
			h.Text(d.Error)
			h.Raw(`</div>`)
		}
		h.Raw(`<form method="post" action="/login"><input type="hidden" name="_csrf" value="`)
		h.Attr(d.CSRFToken)
		h.Raw(`"><p><label for="username">Username</label><br><input id="username" name="username" autocomplete="username" required value="`)
		h.Attr(d.Username)
		h.Raw(`"></p><p><label for="password">Password</label><br>`,
			`<input id="password" name="password" type="password" autocomplete="current-password" required></p>`,
			`<button type="submit">Sign in</button></form></div>`)
		return h.Err()
	})
	return partials.Page(partials.LayoutData{Title: "Sign in", Flash: d.Flash}, body)
}
