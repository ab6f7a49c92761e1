package service

import (
	"errors"
	"fmt"

	"peppolsheet/internal/model"
)

// ErrNotFound is returned when a referenced row does not exist for the
// caller's tenant. Rows of other tenants are reported the same way.
var ErrNotFound = errors.New("not found")

// InputError means the caller sent something unusable. Maps to 400.
type InputError struct {
	Message  string
	Errors   []string
	Warnings []string
}

func (e *InputError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Errors[0])
}

// GenerationError means the service produced bad XML from valid input. Maps
// to 500; XML is set when generation got far enough to produce some.
type GenerationError struct {
	Message string
	Errors  []string
	XML     string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// TransmissionError means a valid document could not be handed to the
// gateway. The XML travels with the error so the caller can resend it.
type TransmissionError struct {
	Details    string
	XML        string
	Warnings   []string
	Submission *model.Submission
	Err        error
}

func (e *TransmissionError) Error() string { return "transmission failed: " + e.Details }

func (e *TransmissionError) Unwrap() error { return e.Err }
