package environments

import (
	"errors"
	"fmt"
)

var (
	ErrManifestMissing       = errors.New("manifest missing")
	ErrMissingKey            = errors.New("missing required key")
	ErrReservedName          = errors.New("reserved environment name")
	ErrDuplicateName         = errors.New("duplicate environment name")
	ErrInvalidType           = errors.New("invalid environment type")
	ErrEnvironmentNotDefined = errors.New("environment not defined")
)

// ParseError reports a problem with the contents of fal_project.yml.
type ParseError struct {
	Kind    error
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func parseErrorf(kind error, format string, args ...any) error {
	return &ParseError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// LoadError is returned by Fetch when the manifest could not be loaded.
type LoadError struct {
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause == nil {
		return "Error loading environments from " + ManifestFile
	}
	return "Error loading environments from " + ManifestFile + ": " + e.Cause.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
