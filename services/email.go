package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"probation_app_go/config"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmail sends an email through Resend, or logs it when EmailTestMode is on
func SendEmail(cfg *config.Config, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	if cfg.EmailTestMode {
		zap.L().Info("email logged (test mode, not sent)",
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject),
			zap.String("text", truncate(email.TextBody, 500)),
		)
		return nil
	}

	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY not configured")
	}

	client := resend.NewClient(cfg.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	zap.L().Info("email sent", zap.String("resend_id", sent.Id), zap.Strings("to", email.To))
	return nil
}

// SendEmailAsync sends a copy of email in the background. Failures are logged.
func SendEmailAsync(cfg *config.Config, email *Email) {
	if cfg == nil {
		return
	}
	emailCopy := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}

	go func() {
		if err := SendEmail(cfg, emailCopy); err != nil {
			zap.L().Error("async email failed", zap.Strings("to", emailCopy.To), zap.Error(err))
		}
	}()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

var (
	urgentMessageHTML = template.Must(template.New("urgent_html").Parse(
		`<p>Hello {{.RecipientName}},</p>
<p><strong>{{.SenderName}}</strong> sent you an urgent message: <em>{{.Subject}}</em></p>
<p><a href="{{.Link}}">Open the message</a></p>`))
	urgentMessageText = texttemplate.Must(texttemplate.New("urgent_text").Parse(
		`Hello {{.RecipientName}},

{{.SenderName}} sent you an urgent message: {{.Subject}}

Open it at {{.Link}}
`))

	reminderHTML = template.Must(template.New("reminder_html").Parse(
		`<p>Hello {{.OfficerName}},</p>
<p>Reminder: {{.Type}} with <strong>{{.ClientName}}</strong> on {{.When}}{{if .Location}} at {{.Location}}{{end}}.</p>`))
	reminderText = texttemplate.Must(texttemplate.New("reminder_text").Parse(
		`Hello {{.OfficerName}},

Reminder: {{.Type}} with {{.ClientName}} on {{.When}}{{if .Location}} at {{.Location}}{{end}}.
`))
)

// UrgentMessageEmailData feeds BuildUrgentMessageEmail
type UrgentMessageEmailData struct {
	RecipientName string
	SenderName    string
	Subject       string
	Link          string
}

// BuildUrgentMessageEmail alerts a recipient about an urgent message.
// The message body itself stays in the application.
func BuildUrgentMessageEmail(to string, data UrgentMessageEmailData) *Email {
	return &Email{
		To:       []string{to},
		Subject:  "[Urgent] " + data.Subject,
		HTMLBody: render(urgentMessageHTML, data),
		TextBody: renderText(urgentMessageText, data),
	}
}

// AppointmentReminderEmailData feeds BuildAppointmentReminderEmail
type AppointmentReminderEmailData struct {
	OfficerName string
	ClientName  string
	Type        string
	When        time.Time
	Location    string
}

// BuildAppointmentReminderEmail reminds an officer of an upcoming appointment
func BuildAppointmentReminderEmail(to string, data AppointmentReminderEmailData) *Email {
	view := struct {
		AppointmentReminderEmailData
		When string
	}{data, data.When.Format("Mon Jan 2, 2006 3:04 PM")}
	view.Type = strings.ReplaceAll(data.Type, "_", " ")

	return &Email{
		To:       []string{to},
		Subject:  fmt.Sprintf("Appointment reminder: %s", data.ClientName),
		HTMLBody: render(reminderHTML, view),
		TextBody: renderText(reminderText, view),
	}
}

func render(t *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		zap.L().Error("email template failed", zap.String("template", t.Name()), zap.Error(err))
		return ""
	}
	return buf.String()
}

func renderText(t *texttemplate.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		zap.L().Error("email template failed", zap.String("template", t.Name()), zap.Error(err))
		return ""
	}
	return buf.String()
}
