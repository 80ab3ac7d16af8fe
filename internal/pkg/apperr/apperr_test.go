package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("resolve task: %w", NotFound("task %d not found", 7))
	if KindOf(wrapped) != KindNotFound {
		t.Fatalf("expected NOT_FOUND through wrapping, got %s", KindOf(wrapped))
	}
	if !IsNotFound(wrapped) {
		t.Fatalf("expected IsNotFound")
	}
	if KindOf(errors.New("driver: bad connection")) != KindInternal {
		t.Fatalf("unclassified errors must be internal")
	}
	if IsNotFound(nil) {
		t.Fatalf("nil is not a not-found error")
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.3:3306: connection refused")
	err := Internal("list tasks", cause)

	if err.Public() != InternalMessage {
		t.Fatalf("expected generic public message, got %q", err.Public())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to stay in the chain for logging")
	}
	if err.Extensions()["code"] != "INTERNAL" {
		t.Fatalf("unexpected extensions: %v", err.Extensions())
	}
}

func TestValidation_Extensions(t *testing.T) {
	err := Validation("Validation failed", FieldError{Field: "phoneNumber", Error: "must be E.164"})
	ext := err.Extensions()
	fields, ok := ext["fields"].([]map[string]string)
	if !ok || len(fields) != 1 || fields[0]["field"] != "phoneNumber" {
		t.Fatalf("unexpected field extensions: %v", ext)
	}
	if err.Public() != "Validation failed" {
		t.Fatalf("validation message should be public, got %q", err.Public())
	}
}
