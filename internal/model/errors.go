package model

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline error taxonomy. Stages wrap these with %w so callers can match
// with errors.Is while the message keeps the underlying detail for logs.
var (
	ErrUnsupportedPlatform     = errors.New("unsupported platform")
	ErrProbe                   = errors.New("probe failed")
	ErrNoOptions               = errors.New("no quality options available")
	ErrSessionExpiredOrForeign = errors.New("session expired or owned by another user")
	ErrDownload                = errors.New("download failed")
	ErrArtifactNotFound        = errors.New("artifact not found")
	ErrSizeExceeded            = errors.New("artifact exceeds upload limit")
	ErrUpload                  = errors.New("upload failed")
	ErrMalformedToken          = errors.New("malformed callback token")
)

// SizeExceededError carries the measured size and the configured ceiling
type SizeExceededError struct {
	SizeBytes  int64
	LimitBytes int64
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("%v: %.1fMB over %.0fMB", ErrSizeExceeded,
		float64(e.SizeBytes)/MiB, float64(e.LimitBytes)/MiB)
}

func (e *SizeExceededError) Is(target error) bool {
	return target == ErrSizeExceeded
}

// UploadAttempt records one failed delivery strategy
type UploadAttempt struct {
	Strategy string
	Err      error
}

// UploadError aggregates every failed delivery attempt
type UploadError struct {
	Attempts []UploadAttempt
}

func (e *UploadError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s failed: %v", a.Strategy, a.Err))
	}
	return fmt.Sprintf("%v: %s", ErrUpload, strings.Join(parts, "; "))
}

func (e *UploadError) Is(target error) bool {
	return target == ErrUpload
}

// Unwrap exposes every attempt error to errors.Is and errors.As
func (e *UploadError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// First returns the error of the first attempt, or nil
func (e *UploadError) First() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[0].Err
}
