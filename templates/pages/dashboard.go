package pages

import (
	"context"
	"io"
	"strconv"
	"time"

	"probation_app_go/services"
	"probation_app_go/templates/partials"

	"github.com/a-h/templ"
)

// DashboardData feeds the dashboard page
type DashboardData struct {
	Layout    partials.LayoutData
	Dashboard *services.Dashboard
	Activity  *services.DashboardActivity
	Now       time.Time
}

// statLabels orders the counters; keys missing for a role are skipped
var statLabels = []struct{ key, label string }{
	{"total_clients", "Clients"},
	{"active_cases", "Open cases"},
	{"todays_appointments", "Today's appointments"},
	{"active_court_cases", "Active court cases"},
	{"upcoming_hearings", "Upcoming hearings"},
	{"todays_hearings", "Today's hearings"},
	{"pending_orders", "Active orders"},
	{"pending_tasks", "Pending tasks"},
	{"judicial_review_tasks", "Awaiting judicial review"},
	{"total_courts", "Courts"},
	{"total_judges", "Judges"},
	{"unread_messages", "Unread messages"},
	{"unread_notifications", "Unread notifications"},
}

// Dashboard renders the counters and recent activity
func Dashboard(d DashboardData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := partials.NewHTML(w)
		h.Raw(`<h1>Welcome, `)
		h.Text(d.Dashboard.User.FullName)
		h.Raw(`</h1><div class="stats">`)
		for _, s := range statLabels {
			v, ok := d.Dashboard.Stats[s.key]
			if !ok {
				continue
			}
			h.Raw(`<div class="stat"><b>`, strconv.FormatInt(v, 10), `</b>`)
			h.Text(s.label)
			h.Raw(`</div>`)
		}
		h.Raw(`</div>`)

		a := d.Activity
		if a == nil {
			return h.Err()
		}

		if len(a.HighRiskClients) > 0 {
			h.Raw(`<div class="card"><h2>High risk clients</h2><ul>`)
			for _, c := range a.HighRiskClients {
				h.Raw(`<li><a href="/clients/`)
				h.Attr(c.ID)
				h.Raw(`">`)
				h.Text(c.FullName() + " (" + c.CaseNumber + ")")
				h.Raw(`</a></li>`)
			}
			h.Raw(`</ul></div>`)
		}

		h.Raw(`<div class="card"><h2>Upcoming appointments</h2>`)
		if len(a.UpcomingAppointments) == 0 {
			h.Raw(`<p>No upcoming appointments.</p>`)
		} else {
			h.Raw(`<table><tr><th>When</th><th>Client</th><th>Type</th><th>Location</th></tr>`)
			for _, ap := range a.UpcomingAppointments {
				h.Raw(`<tr><td>`)
				h.Text(partials.DateTime(ap.ScheduledAt))
				h.Raw(`</td><td>`)
				if ap.Client != nil {
					h.Text(ap.Client.FullName())
				}
				h.Raw(`</td><td>`)
				h.Text(ap.AppointmentType)
				h.Raw(`</td><td>`)
				h.Text(ap.Location)
				h.Raw(`</td></tr>`)
			}
			h.Raw(`</table>`)
		}
		h.Raw(`</div>`)

		if len(a.UpcomingHearings) > 0 {
			h.Raw(`<div class="card"><h2>Upcoming hearings</h2><ul>`)
			for _, hr := range a.UpcomingHearings {
				h.Raw(`<li>`)
				h.Text(partials.DateTime(hr.HearingDate) + " " + hr.HearingType)
				if hr.Location != "" {
					h.Text(" at " + hr.Location)
				}
				h.Raw(`</li>`)
			}
			h.Raw(`</ul></div>`)
		}

		if len(a.PendingPlanItems) > 0 {
			h.Raw(`<div class="card"><h2>Pending tasks</h2><ul>`)
			for _, item := range a.PendingPlanItems {
				h.Raw(`<li>`)
				h.Text(partials.Date(item.DueDate) + " " + item.Description)
				if item.RequiresJudicialReview {
					h.Raw(` <span class="badge alert-warning">judicial review</span>`)
				}
				h.Raw(`</li>`)
			}
			h.Raw(`</ul></div>`)
		}

		h.Raw(`<div class="card"><h2>Notifications`)
		if a.UnreadNotifications > 0 {
			h.Raw(` <span class="badge alert-info">`, strconv.FormatInt(a.UnreadNotifications, 10), ` unread</span>`)
		}
		h.Raw(`</h2>`)
		if len(a.Notifications) == 0 {
			h.Raw(`<p>You're all caught up.</p>`)
		}
		for _, n := range a.Notifications {
			h.Raw(`<p><strong>`)
			h.Text(n.Title)
			h.Raw(`</strong> `)
			h.Text(n.Message)
			h.Raw(` <small>`)
			h.Text(partials.RelativeTime(n.CreatedAt, d.Now))
			h.Raw(`</small></p>`)
		}
		h.Raw(`</div>`)
		return h.Err()
	})
	return partials.Page(d.Layout, body)
}
