package notify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
	"google.golang.org/api/gmail/v1"
)

var statusColors = map[string]string{
	string(status.Applied):            "#27ae60",
	string(status.InterviewScheduled): "#27ae60",
	string(status.OfferReceived):      "#8e44ad",
	string(status.Rejected):           "#e74c3c",
	string(status.Failed):             "#e74c3c",
	string(status.UnderReview):        "#f39c12",
}

func colorFor(s string) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return "#2980b9"
}

// Mailer sends HTML notifications through the Gmail API. A nil service
// degrades to log-only so the agent keeps working without Gmail setup.
type Mailer struct {
	svc       *gmail.Service
	userEmail string
}

func New(svc *gmail.Service, userEmail string) *Mailer {
	return &Mailer{svc: svc, userEmail: userEmail}
}

// SendApplicationResult notifies the operator of one apply attempt,
// success or failure. Simulated runs keep the same body shape but mark
// the subject.
func (m *Mailer) SendApplicationResult(job models.JobRecord, attempt models.ApplicationAttempt, simulated bool) error {
	subject := fmt.Sprintf("Job Application: %s - %s", job.Company, job.Position)
	rows := []row{
		{"Company", attempt.Company, ""},
		{"Position", attempt.Position, ""},
		{"Status", attempt.ResultStatus, colorFor(attempt.ResultStatus)},
		{"Platform", capitalize(attempt.Platform), ""},
		{"Application ID", orNA(attempt.ApplicationID), ""},
		{"Date", attempt.AppliedAt.Format("2006-01-02"), ""},
		{"Notes", attempt.Notes, ""},
	}
	return m.send(subject, htmlBody("&#128203; Job Application Update", rows), simulated)
}

// SendStatusChange notifies the operator of one accepted transition.
func (m *Mailer) SendStatusChange(job models.JobRecord, oldStatus, newStatus status.Status, checkedAt string, simulated bool) error {
	subject := fmt.Sprintf("Status Update: %s - %s", job.Company, job.Position)
	rows := []row{
		{"Company", job.Company, ""},
		{"Position", job.Position, ""},
		{"Previous Status", string(oldStatus), "#7f8c8d"},
		{"New Status", string(newStatus), colorFor(string(newStatus))},
		{"Last Checked", checkedAt, ""},
	}
	return m.send(subject, htmlBody("&#128276; Application Status Changed", rows), simulated)
}

// SendTest verifies the Gmail setup end to end.
func (m *Mailer) SendTest() error {
	return m.send(
		"Job Agent - Gmail Test",
		"<h2>Gmail is working!</h2><p>Your Job Application Agent can send emails.</p>",
		false,
	)
}

func (m *Mailer) send(subject, htmlContent string, simulated bool) error {
	if simulated {
		subject = "[SIMULATED] " + subject
	}
	if m.svc == nil {
		log.Printf("Gmail disabled - would send email: %s", subject)
		return nil
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.userEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", m.userEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlContent)

	_, err := m.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(msg.Bytes()),
	}).Do()
	if err != nil {
		return fmt.Errorf("sending email %q: %w", subject, err)
	}
	log.Printf("Email sent: %s", subject)
	return nil
}

type row struct {
	label, value, color string
}

// htmlBody builds the notification table. All user-sourced values are
// escaped to prevent malformed HTML.
func htmlBody(heading string, rows []row) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family:Arial,sans-serif;max-width:600px;margin:auto;padding:20px;">`)
	fmt.Fprintf(&b, `<h2 style="color:#2c3e50;">%s</h2>`, heading)
	b.WriteString(`<table style="width:100%;border-collapse:collapse;">`)
	for i, r := range rows {
		bg := ""
		if i%2 == 1 {
			bg = "background:#f8f9fa;"
		}
		style := "padding:8px;"
		if r.color != "" {
			style += "color:" + r.color + ";font-weight:bold;"
		}
		fmt.Fprintf(&b, `<tr style=%q><td style="padding:8px;font-weight:bold;">%s</td><td style=%q>%s</td></tr>`,
			bg, html.EscapeString(r.label), style, html.EscapeString(r.value))
	}
	b.WriteString(`</table>`)
	b.WriteString(`<p style="color:#7f8c8d;font-size:12px;margin-top:20px;">Sent by your Job Application Agent &#129302;</p>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func capitalize(v string) string {
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
