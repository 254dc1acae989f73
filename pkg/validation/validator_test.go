package validation

import (
	"encoding/json"
	"testing"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
	Name     string `json:"name" validate:"nonzero"`
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(signup{Email: "nope", Password: "123"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	d := ToDetails(err)
	want := map[string]string{
		"email":    "must be a valid email",
		"password": "must be at least 6 characters long",
		"name":     "is required",
	}
	for k, msg := range want {
		if d[k] != msg {
			t.Errorf("details[%q] = %q, want %q", k, d[k], msg)
		}
	}
}

func TestToDetailsJSONErrors(t *testing.T) {
	var dst signup
	err := json.Unmarshal([]byte(`{"email":`), &dst)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if got := ToDetails(err); got["payload"] == "" {
		t.Fatalf("payload detail missing: %v", got)
	}
	if ToDetails(nil) != nil {
		t.Fatal("nil error should give nil details")
	}
}
