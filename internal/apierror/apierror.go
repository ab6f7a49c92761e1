// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for 4xx/5xx responses outside the
// document endpoints.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ── Document envelopes ───────────────────────────────────────────────────────
// The document endpoints report lists rather than a single detail so callers
// can show every problem at once.

// ValidationFailure is the 400 body: the caller's input is wrong.
type ValidationFailure struct {
	Error              string   `json:"error"`
	ValidationErrors   []string `json:"validation_errors"`
	ValidationWarnings []string `json:"validation_warnings"`
}

func NewValidationFailure(msg string, errs, warnings []string) *ValidationFailure {
	return &ValidationFailure{Error: msg, ValidationErrors: nonNil(errs), ValidationWarnings: nonNil(warnings)}
}

// GenerationFailure is the 500 body: the produced XML failed its structure
// check. The XML is included for diagnosis.
type GenerationFailure struct {
	Error               string   `json:"error"`
	XMLValidationErrors []string `json:"xml_validation_errors"`
	UBLXML              string   `json:"ubl_xml,omitempty"`
}

func NewGenerationFailure(msg string, errs []string, xml string) *GenerationFailure {
	return &GenerationFailure{Error: msg, XMLValidationErrors: nonNil(errs), UBLXML: xml}
}

// TransmissionFailure is the 502 body: the document is fine but the gateway
// refused or could not be reached. The XML is returned so the caller can
// resend it without regenerating.
type TransmissionFailure struct {
	Error              string   `json:"error"`
	Details            string   `json:"details"`
	UBLXML             string   `json:"ubl_xml"`
	ValidationWarnings []string `json:"validation_warnings"`
}

func NewTransmissionFailure(details, xml string, warnings []string) *TransmissionFailure {
	return &TransmissionFailure{
		Error:              "document generated but transmission failed",
		Details:            details,
		UBLXML:             xml,
		ValidationWarnings: nonNil(warnings),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
