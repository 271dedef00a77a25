// Package sagalog records every transition of a checkout run so that a
// failed or half-finished checkout can be inspected after the fact and
// joined with its distributed trace.
package sagalog

import "time"

// Status is the state a run was in when an entry was written.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Terminal reports whether no further entries are expected for the run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// SagaLog is one immutable entry of a run.
type SagaLog struct {
	SagaID string `json:"sagaId"`
	Status Status `json:"status"`

	// CurrentStep is the step that just finished, failed or was compensated.
	CurrentStep string `json:"currentStep"`

	// Payload is the JSON input of the run, written on STARTED only.
	Payload string `json:"payload,omitempty"`

	// ErrorMessages is a JSON array of failure strings.
	ErrorMessages string `json:"errorMessages"`

	TraceID   string    `json:"traceId,omitempty"`
	SpanID    string    `json:"spanId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
