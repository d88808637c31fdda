package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"probation_app_go/models"
	"probation_app_go/services/risk"
	"probation_app_go/templates/partials"

	"github.com/a-h/templ"
)

// ClientListData feeds the client list
type ClientListData struct {
	Layout  partials.LayoutData
	Clients []models.Client
	Query   string
	Total   int64
}

// ClientList renders the searchable client table
func ClientList(d ClientListData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := partials.NewHTML(w)
		h.Raw(`<h1>Clients</h1><form method="get" action="/clients" class="card"><input name="q" placeholder="Name or case number" value="`)
		h.Attr(d.Query)
		h.Raw(`"> <button type="submit">Search</button></form>`)

		if len(d.Clients) == 0 {
			h.Raw(`<p>No clients found.</p>`)
			return h.Err()
		}
		h.Raw(`<table><tr><th>Case number</th><th>Name</th><th>Status</th><th>Risk</th><th>Officer</th><th>Start date</th></tr>`)
		for _, c := range d.Clients {
			h.Raw(`<tr><td><a href="/clients/`)
			h.Attr(c.ID)
			h.Raw(`">`)
			h.Text(c.CaseNumber)
			h.Raw(`</a></td><td>`)
			h.Text(c.FullName())
			h.Raw(`</td><td>`)
			h.Text(title(c.Status))
			h.Raw(`</td><td>`)
			h.Text(title(c.RiskLevel))
			h.Raw(`</td><td>`)
			if c.AssignedOfficer != nil {
				h.Text(c.AssignedOfficer.FullName())
			}
			h.Raw(`</td><td>`)
			h.Text(partials.Date(c.StartDate))
			h.Raw(`</td></tr>`)
		}
		h.Raw(`</table><p>`, fmt.Sprintf("%d client(s)", d.Total), `</p>`)
		return h.Err()
	})
	return partials.Page(d.Layout, body)
}

// ClientDetailData feeds the client detail page
type ClientDetailData struct {
	Layout       partials.LayoutData
	Client       *models.Client
	Basic        risk.BasicAnalysis
	Appointments []models.Appointment
}

// ClientDetail renders a client with addresses, offenses and the basic compliance summary
func ClientDetail(d ClientDetailData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := partials.NewHTML(w)
		c := d.Client
		h.Raw(`<h1>`)
		h.Text(c.FullName())
		h.Raw(`</h1><div class="card"><p>Case number: `)
		h.Text(c.CaseNumber)
		h.Raw(`<br>Status: `)
		h.Text(title(c.Status))
		h.Raw(`<br>Risk level: `)
		h.Text(title(c.RiskLevel))
		h.Raw(`<br>Supervision since: `)
		h.Text(partials.Date(c.StartDate))
		if c.EndDate != nil {
			h.Text(" until " + partials.Date(*c.EndDate))
		}
		if c.AssignedOfficer != nil {
			h.Raw(`<br>Officer: `)
			h.Text(c.AssignedOfficer.FullName())
		}
		h.Raw(`</p></div>`)

		h.Raw(`<div class="alert `, partials.AlertClass(d.Basic.RiskIndicator), `">`)
		h.Text(fmt.Sprintf("Appointment compliance %.1f%% (%d of %d completed)",
			d.Basic.CompletionRate, d.Basic.CompletedAppointments, d.Basic.TotalAppointments))
		h.Raw(` <a href="/clients/`)
		h.Attr(c.ID)
		h.Raw(`/analysis">Full risk analysis</a></div>`)

		h.Raw(`<div class="card"><h2>Addresses</h2>`)
		if len(c.Addresses) == 0 {
			h.Raw(`<p>No addresses on file.</p>`)
		}
		for _, a := range c.Addresses {
			h.Raw(`<p>`)
			h.Text(title(a.AddressType) + ": " + a.Street + ", " + a.City + " " + a.State + " " + a.ZipCode)
			if a.IsPrimary {
				h.Raw(` <span class="badge alert-info">primary</span>`)
			}
			h.Raw(`</p>`)
		}
		h.Raw(`</div><div class="card"><h2>Offenses</h2>`)
		if len(c.Offenses) == 0 {
			h.Raw(`<p>No offenses recorded.</p>`)
		}
		for _, o := range c.Offenses {
			h.Raw(`<p><strong>`)
			h.Text(o.OffenseType)
			h.Raw(`</strong> `)
			h.Text(partials.Date(o.DateCommitted))
			if o.Sentence != "" {
				h.Text(" - " + o.Sentence)
			}
			h.Raw(`</p>`)
		}
		h.Raw(`</div><div class="card"><h2>Appointments</h2>`)
		if len(d.Appointments) == 0 {
			h.Raw(`<p>No appointments scheduled.</p>`)
		} else {
			h.Raw(`<table><tr><th>When</th><th>Type</th><th>Status</th><th>Location</th></tr>`)
			for _, ap := range d.Appointments {
				h.Raw(`<tr><td>`)
				h.Text(partials.DateTime(ap.ScheduledAt))
				h.Raw(`</td><td>`)
				h.Text(title(ap.AppointmentType))
				h.Raw(`</td><td>`)
				h.Text(title(ap.Status))
				h.Raw(`</td><td>`)
				h.Text(ap.Location)
				h.Raw(`</td></tr>`)
			}
			h.Raw(`</table>`)
		}
		h.Raw(`</div>`)
		return h.Err()
	})
	return partials.Page(d.Layout, body)
}

// ClientAnalysisData feeds the full risk analysis page
type ClientAnalysisData struct {
	Layout   partials.LayoutData
	Client   *models.Client
	Analysis risk.Analysis
}

// ClientAnalysis renders the risk engine output
func ClientAnalysis(d ClientAnalysisData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := partials.NewHTML(w)
		a := d.Analysis
		h.Raw(`<h1>Risk analysis: `)
		h.Text(d.Client.FullName())
		h.Raw(`</h1><div class="alert `, partials.AlertClass(a.AlertLevel), `"><strong>`)
		h.Text(fmt.Sprintf("%s (score %d)", a.RiskCategory, a.RiskScore))
		h.Raw(`</strong></div><div class="stats">`)
		for _, s := range []struct {
			label string
			value string
		}{
			{"Completion rate", fmt.Sprintf("%.1f%%", a.CompletionRate)},
			{"Appointments", fmt.Sprint(a.TotalAppointments)},
			{"Completed", fmt.Sprint(a.CompletedAppointments)},
			{"Missed", fmt.Sprint(a.MissedAppointments)},
		} {
			h.Raw(`<div class="stat"><b>`)
			h.Text(s.value)
			h.Raw(`</b>`)
			h.Text(s.label)
			h.Raw(`</div>`)
		}
		h.Raw(`</div><div class="card"><h2>Risk factors</h2>`)
		if len(a.RiskFactors) == 0 {
			h.Raw(`<p>No risk factors identified.</p>`)
		}
		for _, f := range a.RiskFactors {
			h.Raw(`<p><strong>`)
			h.Text(f.Factor)
			h.Raw(`</strong> <span class="badge alert-warning">`)
			h.Text(string(f.Severity))
			h.Raw(`</span><br>`)
			h.Text(f.Description)
			h.Raw(`</p>`)
		}
		h.Raw(`</div><div class="card"><h2>Recommendations</h2><ul>`)
		for _, r := range a.Recommendations {
			h.Raw(`<li>`)
			h.Text(r)
			h.Raw(`</li>`)
		}
		h.Raw(`</ul><small>Generated `)
		h.Text(partials.DateTime(a.AnalysisDate))
		h.Raw(`</small></div>`)
		return h.Err()
	})
	return partials.Page(d.Layout, body)
}

// title turns "no_show" into "No show"
func title(v string) string {
	v = strings.ReplaceAll(v, "_", " ")
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}
