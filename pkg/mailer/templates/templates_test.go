package templates

import (
	"strings"
	"testing"
	"time"
)

func TestRenderProfileUpdated(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	data := NewProfileUpdatedData(Brand{AppName: "Inkwell", SupportURL: "https://help.example.com"},
		"Ann", "ann@example.com", map[string]string{"name": "Ann B"}, WithTime(at))

	subject, text, html, err := Render(ProfileUpdated, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject == "" || strings.Contains(subject, "\n") {
		t.Fatalf("subject: %q", subject)
	}
	for _, want := range []string{"Ann", "name: Ann B", "01 March 2024, 10:30", "https://help.example.com"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
	if !strings.Contains(html, "Ann B") {
		t.Errorf("html missing change")
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	data := NewWelcomeData(Brand{}, "<script>x</script>", "a@example.com")
	_, _, html, err := Render(Welcome, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("name not escaped in html")
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("nope", nil); err == nil {
		t.Fatal("expected error")
	}
}
