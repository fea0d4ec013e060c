package models

import (
	"context"
	"errors"
	"net"
	"os"
)

// Error taxonomy. Call sites wrap these with fmt.Errorf("...: %w") and decide
// locally whether to degrade or abort.
var (
	// ErrFormat: a duration or timestamp string did not match its pattern.
	ErrFormat = errors.New("format error")
	// ErrNotFound: lyrics or metadata are absent upstream.
	ErrNotFound = errors.New("not found")
	// ErrTransport: a network call or its response failed.
	ErrTransport = errors.New("transport error")
	// ErrInvalidInput: the caller supplied something unusable.
	ErrInvalidInput = errors.New("invalid input")
)

type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeFormat    Code = "format"
	CodeNotFound  Code = "not_found"
	CodeTransport Code = "transport"
	CodeInvalid   Code = "invalid"
	CodeCancel    Code = "cancel"
	CodeIO        Code = "io"
)

// Classify maps err onto the taxonomy using errors.Is/As only.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrFormat):
		return CodeFormat
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalid
	case errors.Is(err, ErrTransport):
		return CodeTransport
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return CodeTransport
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
