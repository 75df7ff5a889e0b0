package model

import (
	"errors"
	"fmt"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// FetchError marks a source as failed for the cycle. One source failing
// never aborts the run; the pipeline logs it and moves on.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrMissingField reports a raw record that cannot become a Job because a
// required field is absent. The record is skipped, not the source.
var ErrMissingField = errors.New("missing required field")

// NormalizeError identifies which required field a raw record lacked.
type NormalizeError struct {
	Field string // RawJob key that was empty
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingField, e.Field)
}

func (e *NormalizeError) Unwrap() error {
	return ErrMissingField
}

// StoreFailure reports a genuine persistence fault. A duplicate insert is
// not one of these; that surfaces as the AlreadyExists result.
type StoreFailure struct {
	Op  string // "insert", "query", "flush counters", ...
	Err error
}

func (e *StoreFailure) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreFailure) Unwrap() error {
	return e.Err
}

// DeliveryError reports a notification batch that was only partly sent.
// Sent counts the chunks that went out before the failure.
type DeliveryError struct {
	Sent   int
	Failed int
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery incomplete (%d sent, %d failed): %v", e.Sent, e.Failed, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
