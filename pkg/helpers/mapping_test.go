package helpers

import (
	"strings"
	"testing"

	"github.com/oksasatya/go-ddd-blog/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-blog/pkg/mailer/templates"
)

func TestPrepareJobRendersTemplate(t *testing.T) {
	job := mailer.EmailJob{
		To:       "ann@example.com",
		Template: " Welcome ",
		Data:     mailtpl.NewWelcomeData(mailtpl.Brand{AppName: "Inkwell"}, "Ann", "ann@example.com"),
	}
	if err := PrepareJob(&job); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if job.Template != mailtpl.Welcome {
		t.Fatalf("template not normalized: %q", job.Template)
	}
	if !strings.Contains(job.Subject, "Inkwell") || !strings.Contains(job.Subject, "Ann") {
		t.Fatalf("subject: %q", job.Subject)
	}
	if job.Text == "" || job.HTML == "" {
		t.Fatal("empty body")
	}
}

func TestPrepareJobRaw(t *testing.T) {
	ok := mailer.EmailJob{To: "a@example.com", Subject: "hi", Text: "body"}
	if err := PrepareJob(&ok); err != nil {
		t.Fatalf("raw job: %v", err)
	}
	if ok.Data["RecipientEmail"] != "a@example.com" {
		t.Fatalf("recipient not filled: %v", ok.Data)
	}

	for name, job := range map[string]mailer.EmailJob{
		"no recipient":     {Subject: "hi", Text: "x"},
		"unknown template": {To: "a@example.com", Template: "verify_email"},
		"no body":          {To: "a@example.com", Subject: "hi"},
	} {
		if err := PrepareJob(&job); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
