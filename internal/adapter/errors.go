package adapter

import (
	"errors"
	"strings"
)

var (
	ErrUnsupportedAdapter = errors.New("unsupported adapter type")
	ErrAdapterMismatch    = errors.New("adapter type mismatch")
	ErrUnknownMacro       = errors.New("unknown macro")
)

// ValidationError aggregates configuration issues.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "adapter config invalid"
	}
	return "adapter config invalid: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	if strings.TrimSpace(issue) == "" {
		return
	}
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	return e
}
