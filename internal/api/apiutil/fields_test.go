package apiutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestParsersReturnFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		parse func() error
		field string
	}{
		{"empty int64", func() error { _, err := ParsePositiveInt64Field("", "event_id"); return err }, "event_id"},
		{"zero int64", func() error { _, err := ParsePositiveInt64Field("0", "event_id"); return err }, "event_id"},
		{"bad date", func() error { _, err := ParseDateField("June 1st", "date"); return err }, "date"},
		{"bad clock", func() error { _, err := ParseClockField("8am", "startTime"); return err }, "startTime"},
		{"bad timestamp", func() error { _, err := ParseTimestampField("soon", "startTime"); return err }, "startTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse()
			var fieldErr FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("err = %v, want FieldError", err)
			}
			if fieldErr.Field != tt.field {
				t.Errorf("Field = %s, want %s", fieldErr.Field, tt.field)
			}
			if fieldErr.Reason == "" {
				t.Error("Reason missing")
			}
		})
	}
}

func TestFieldErrorMessage(t *testing.T) {
	err := FieldError{Field: "date", Reason: "is required"}
	if err.Error() != "date is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestHandlerErrorUnwrap(t *testing.T) {
	cause := errors.New("no such event")
	herr := HandlerError{Status: 404, Message: "event not found", Err: fmt.Errorf("load event: %w", cause)}

	if herr.Error() != "event not found" {
		t.Errorf("Error() = %q", herr.Error())
	}
	if !errors.Is(herr, cause) {
		t.Error("HandlerError does not unwrap to its cause")
	}
}
