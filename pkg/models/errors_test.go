package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeUnknown},
		{"wrapped not found", fmt.Errorf("lyrics: %w", ErrNotFound), CodeNotFound},
		{"wrapped format", fmt.Errorf("duration %q: %w", "3 minutes", ErrFormat), CodeFormat},
		{"transport", fmt.Errorf("metadata: %w", ErrTransport), CodeTransport},
		{"invalid", fmt.Errorf("track: %w", ErrInvalidInput), CodeInvalid},
		{"deadline", fmt.Errorf("search: %w", context.DeadlineExceeded), CodeCancel},
		{"path", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, CodeIO},
		{"plain", errors.New("boom"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestNotFoundWinsOverTransport(t *testing.T) {
	err := fmt.Errorf("lyrics: %w (%w)", ErrNotFound, ErrTransport)
	if got := Classify(err); got != CodeNotFound {
		t.Errorf("Expected not_found, got %s", got)
	}
}
