package context

import (
	"context"
	"fmt"
)

// Action is a staged write against the record store.
type Action interface {
	Execute(ctx context.Context) error

	// Description names the action in logs and errors, e.g. "insert quote_items".
	Description() string
}

type funcAction struct {
	desc string
	fn   func(ctx context.Context) error
}

func (a funcAction) Execute(ctx context.Context) error { return a.fn(ctx) }

func (a funcAction) Description() string { return a.desc }

// ActionFunc wraps fn as an Action.
func ActionFunc(description string, fn func(ctx context.Context) error) Action {
	return funcAction{desc: description, fn: fn}
}

// CommitError reports the action that stopped a commit.
type CommitError struct {
	// Index is the position of the failed action.
	Index int
	// Executed is how many actions completed before the failure.
	Executed    int
	Description string
	Err         error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("action %q failed after %d completed: %v", e.Description, e.Executed, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// AddAction stages an action for later execution.
func (rc *RequestContext) AddAction(action Action) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	rc.actions = append(rc.actions, action)

	return nil
}

// Commit executes the staged actions strictly in order and stops at the first error.
// There is no rollback: actions that already ran stay applied.
func (rc *RequestContext) Commit(ctx context.Context) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.committed {
		return ErrAlreadyCommitted
	}

	rc.committed = true

	for i, action := range rc.actions {
		if err := ctx.Err(); err != nil {
			return &CommitError{Index: i, Executed: i, Description: action.Description(), Err: err}
		}

		if err := action.Execute(ctx); err != nil {
			return &CommitError{Index: i, Executed: i, Description: action.Description(), Err: err}
		}
	}

	return nil
}

// Actions returns a copy of the staged actions.
func (rc *RequestContext) Actions() []Action {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	result := make([]Action, len(rc.actions))
	copy(result, rc.actions)

	return result
}
