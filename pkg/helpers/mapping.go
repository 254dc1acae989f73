package helpers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/go-ddd-blog/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-blog/pkg/mailer/templates"
)

// EnsureRecipientAndEmail fills the recipient fields templates rely on.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// NormalizeTemplate lower-cases the template name and falls back to raw
// subject/text when it is not one the worker knows how to render.
func NormalizeTemplate(job *mailer.EmailJob) bool {
	name := strings.ToLower(strings.TrimSpace(job.Template))
	switch name {
	case mailtpl.Welcome, mailtpl.ProfileUpdated:
		job.Template = name
		return true
	default:
		job.Template = ""
		return false
	}
}

// PrepareJob renders a templated job into Subject, Text and HTML. Raw jobs
// must already carry a subject and a body.
func PrepareJob(job *mailer.EmailJob) error {
	if strings.TrimSpace(job.To) == "" {
		return errors.New("email job has no recipient")
	}
	EnsureRecipientAndEmail(job)
	if NormalizeTemplate(job) {
		subject, text, html, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("render %s: %w", job.Template, err)
		}
		job.Subject, job.Text, job.HTML = subject, text, html
		return nil
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		return errors.New("email job needs a known template or subject with text/html")
	}
	return nil
}
