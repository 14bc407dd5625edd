package api

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrActionNotFound    = errors.New("action not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingCredential = errors.New("missing credential")
	ErrServiceError      = errors.New("service error")
	ErrFilesystem        = errors.New("filesystem error")
	ErrNoInputFound      = errors.New("no input found")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
