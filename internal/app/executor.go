package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
)

// Write operations run as Validate → Perform → Verify → Archive → Respond.
//
//  1. VALIDATE  checks the input. Nothing has been written yet.
//  2. PERFORM   writes to the external store.
//  3. VERIFY    reads back what was written.
//  4. ARCHIVE   records the verified outcome locally.
//  5. RESPOND   builds the result and announces it.
//
// A failing step stops the remaining ones. Store writes made during Perform are
// not undone; the error carries the step so callers can tell how far it got.

// ExecutionStep names a step of an operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError wraps the cause with the step where it happened.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap returns the cause for errors.Is/As.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func stepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// StepObserver receives the duration and outcome of each executed step.
type StepObserver interface {
	ObserveStep(operation string, step ExecutionStep, d time.Duration, err error)
}

// Executor runs operations step by step, logging each one.
type Executor struct {
	logger   *slog.Logger
	observer StepObserver
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithStepObserver reports step timings to o.
func WithStepObserver(o StepObserver) ExecutorOption {
	return func(e *Executor) { e.observer = o }
}

// NewExecutor creates an executor. A nil logger uses slog.Default().
func NewExecutor(logger *slog.Logger, opts ...ExecutorOption) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Executor{logger: logger}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Operation holds the functions for each step. Nil steps are skipped.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)

	// OnFailure runs once with the step error when any step fails.
	OnFailure func(ctx context.Context, input I, err error)
}

type run struct {
	logger   *slog.Logger
	observer StepObserver
	name     string
}

func (r run) step(ctx context.Context, step ExecutionStep, message string, fn func() error) error {
	r.logger.Log(ctx, logging.LevelTrace, "step starting", slog.String("step", string(step)))

	start := time.Now()
	err := fn()

	if r.observer != nil {
		r.observer.ObserveStep(r.name, step, time.Since(start), err)
	}

	if err == nil {
		return nil
	}

	if step == StepValidate {
		r.logger.WarnContext(ctx, "step failed", slog.String("step", string(step)), slog.Any("error", err))
	} else {
		r.logger.ErrorContext(ctx, "step failed", slog.String("step", string(step)), slog.Any("error", err))
	}

	return stepError(step, message, err)
}

// Execute runs op over input.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (result O, err error) {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = exec.logger
	}

	r := run{
		logger:   logger.With(slog.String("operation", op.Name)),
		observer: exec.observer,
		name:     op.Name,
	}
	start := time.Now()

	defer func() {
		if err != nil && op.OnFailure != nil {
			op.OnFailure(ctx, input, err)
		}
	}()

	if op.Validate != nil {
		if err = r.step(ctx, StepValidate, "input rejected", func() error {
			return op.Validate(ctx, input)
		}); err != nil {
			return result, err
		}
	}

	var performed P
	if op.Perform != nil {
		if err = r.step(ctx, StepPerform, "store write failed", func() error {
			var perr error
			performed, perr = op.Perform(ctx, input)

			return perr
		}); err != nil {
			return result, err
		}
	}

	var verified V
	if op.Verify != nil {
		if err = r.step(ctx, StepVerify, "read-back mismatch", func() error {
			var verr error
			verified, verr = op.Verify(ctx, input, performed)

			return verr
		}); err != nil {
			return result, err
		}
	}

	if op.Archive != nil {
		if err = r.step(ctx, StepArchive, "local archive failed", func() error {
			return op.Archive(ctx, input, verified)
		}); err != nil {
			return result, err
		}
	}

	if op.Respond != nil {
		if err = r.step(ctx, StepRespond, "response failed", func() error {
			var rerr error
			result, rerr = op.Respond(ctx, input, verified)

			return rerr
		}); err != nil {
			return result, err
		}
	}

	r.logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

// GetExecutionStep returns the step an execution error came from.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
