package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/storefront/internal/coordinator/sagalog"
)

// Step is one unit of work of a run. Compensate undoes Execute.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// StepError tells the caller which step stopped the run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPayload records the JSON input on the STARTED entry.
func WithPayload(payload string) Option {
	return func(o *Orchestrator) { o.payload = payload }
}

// Orchestrator runs steps in order and compensates completed ones in reverse
// when a step fails. repo may be nil, in which case nothing is recorded.
type Orchestrator struct {
	sagaID  string
	payload string
	steps   []Step
	repo    sagalog.Repository
}

func NewOrchestrator(sagaID string, steps []Step, repo sagalog.Repository, opts ...Option) *Orchestrator {
	o := &Orchestrator{sagaID: sagaID, steps: steps, repo: repo}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) SagaID() string { return o.sagaID }

// Start returns a *StepError when a step fails.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, sagalog.StatusStarted, "", o.payload, nil)

	var done []Step
	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "step failed, compensating", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(ctx, sagalog.StatusCompensating, step.Name(), "", errs)
			errs = append(errs, o.rollback(ctx, done)...)
			o.record(ctx, sagalog.StatusFailed, step.Name(), "", errs)
			return &StepError{Step: step.Name(), Err: err}
		}
		done = append(done, step)
		o.record(ctx, sagalog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, sagalog.StatusCompleted, "", "", nil)
	slog.InfoContext(ctx, "saga completed", "saga_id", o.sagaID)
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating step", "saga_id", o.sagaID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step", "saga_id", o.sagaID, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status sagalog.Status, step, payload string, errs []string) {
	if o.repo == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, o.sagaID, status, step, payload, errs)
	if err := o.repo.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to write saga log", "saga_id", o.sagaID, "status", status, "error", err)
	}
}
