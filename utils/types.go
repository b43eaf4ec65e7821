package utils

// DiagnosticKind classifies a non-fatal problem found while scrubbing
type DiagnosticKind string

const (
	// KindMissingEmail marks a record without a usable C_EMAIL_ADDRESS
	KindMissingEmail DiagnosticKind = "missing_email"

	// KindInvalidJSON marks a line that is not a single JSON document
	KindInvalidJSON DiagnosticKind = "invalid_json"

	// KindNotObject marks a line holding valid JSON that is not an object
	KindNotObject DiagnosticKind = "not_object"

	// KindMalformedFilename marks an input file whose name has no date segment
	KindMalformedFilename DiagnosticKind = "malformed_filename"
)

// Diagnostic represents an advisory message raised during a batch run
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind"`

	// Location information
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"` // 1-based, 0 when not line-scoped

	// Record information
	CustomerID string `json:"customer_id,omitempty"`

	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"` // Offending content, may contain PII
}
