package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/frahmantamala/workforce-portal/internal/mailer"
)

const emailLayout = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2933;">
  <p>Hi {{.Name}},</p>
  <p>{{.Headline}}</p>
  {{- if .Reason}}
  <p><strong>Reason:</strong> {{.Reason}}</p>
  {{- end}}
  <p><a href="{{.Link}}">Open in Workforce Portal</a></p>
</body>
</html>`

type emailView struct {
	Name     string
	Headline string
	Reason   string
	Link     string
}

type message struct {
	subject  string
	headline string
}

var messages = map[Kind]message{
	KindTimesheetSubmitted:     {"Timesheet awaiting your approval", "A timesheet for %s was submitted and is waiting for your review."},
	KindTimesheetApproved:      {"Timesheet approved", "Your timesheet for %s was approved."},
	KindTimesheetRejected:      {"Timesheet rejected", "Your timesheet for %s was rejected."},
	KindExpenseLineApproved:    {"Expense item approved", "An item on your expense report %s was approved."},
	KindExpenseLineRejected:    {"Expense item rejected", "An item on your expense report %s was rejected."},
	KindExpenseReportApproved:  {"Expense report approved", "Your expense report %s was approved."},
	KindExpenseReportSubmitted: {"Expense report awaiting your approval", "Expense report %s was submitted and is waiting for your review."},
}

// Renderer turns stored notifications into emails linking back to the portal.
type Renderer struct {
	baseURL string
	layout  *template.Template
}

func NewRenderer(appBaseURL string) (*Renderer, error) {
	layout, err := template.New("email").Parse(emailLayout)
	if err != nil {
		return nil, fmt.Errorf("parse email layout: %w", err)
	}
	return &Renderer{baseURL: strings.TrimRight(appBaseURL, "/"), layout: layout}, nil
}

func (r *Renderer) Render(n *Notification, to, name string) (mailer.Email, error) {
	msg, ok := messages[n.Kind]
	if !ok {
		return mailer.Email{}, fmt.Errorf("no email template for kind %q", n.Kind)
	}

	label := n.Metadata[MetaLabel]
	if label == "" {
		label = fmt.Sprintf("#%d", n.EntityID)
	}

	var body bytes.Buffer
	err := r.layout.Execute(&body, emailView{
		Name:     name,
		Headline: fmt.Sprintf(msg.headline, label),
		Reason:   n.Metadata[MetaReason],
		Link:     r.Link(n),
	})
	if err != nil {
		return mailer.Email{}, fmt.Errorf("render %s email: %w", n.Kind, err)
	}

	return mailer.Email{To: to, Subject: msg.subject, HTML: body.String()}, nil
}

// Link points at the page of the entity. Expense lines open their report.
func (r *Renderer) Link(n *Notification) string {
	switch n.EntityType {
	case EntityTimesheet:
		return fmt.Sprintf("%s/timesheets/%d", r.baseURL, n.EntityID)
	case EntityExpenseLine:
		if reportID := n.Metadata[MetaReportID]; reportID != "" {
			return fmt.Sprintf("%s/expense-reports/%s", r.baseURL, reportID)
		}
		return r.baseURL + "/expense-reports"
	case EntityExpenseReport:
		return fmt.Sprintf("%s/expense-reports/%d", r.baseURL, n.EntityID)
	default:
		return r.baseURL
	}
}
