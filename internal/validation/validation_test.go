package validation

import (
	"strings"
	"testing"
)

type sample struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Gender string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Email: "not-an-email", Gender: "Robot"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"name is required", "email must be a valid email", "gender must be one of [Male Female Other]"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	if err := Struct(sample{Name: "Asha", Email: "asha@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
