package sagalog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars).
	// Empty if no active span is found in the context.
	TraceID string

	// SpanID is the W3C span ID (16 lowercase hex chars).
	SpanID string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and returns
// its trace and span ids as hex strings.
//
// The otelhttp handler wrapping the router starts a server span for every
// browser request, so inside a checkout handler ctx always carries one when
// tracing is enabled. With tracing off (or in unit tests) both fields are
// empty and entries are stored without trace ids.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an entry stamped with the current span and time.
//
//	_ = repo.Save(ctx, sagalog.NewEntry(ctx, runID, sagalog.StatusStepDone, "Place_Order_Step", "", nil))
func NewEntry(ctx context.Context, sagaID string, status Status, currentStep, payload string, errs []string) *SagaLog {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &SagaLog{
		SagaID:        sagaID,
		Status:        status,
		CurrentStep:   currentStep,
		Payload:       payload,
		ErrorMessages: errJSON,
		TraceID:       ti.TraceID,
		SpanID:        ti.SpanID,
		UpdatedAt:     time.Now().UTC(),
	}
}

// Errors decodes ErrorMessages. A malformed column yields nil.
func (l SagaLog) Errors() []string {
	var out []string
	if err := json.Unmarshal([]byte(l.ErrorMessages), &out); err != nil {
		return nil
	}
	return out
}
