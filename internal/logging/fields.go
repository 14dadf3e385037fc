package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (e.g. library_fetch_failed).
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator's next step for a warning or error.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRequestID is the standardized key for HTTP request correlation identifiers.
	FieldRequestID = "request_id"
	// FieldJobID identifies a job running on the sequential worker.
	FieldJobID = "job_id"
	// FieldMediaID is the browsing-tree identifier a log line refers to.
	FieldMediaID = "media_id"
)
