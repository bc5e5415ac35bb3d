package domain

import (
	"strings"
	"time"
)

// FeedbackAction is the client's reaction to a revision.
type FeedbackAction string

const (
	FeedbackAccept          FeedbackAction = "ACCEPT"
	FeedbackDecline         FeedbackAction = "DECLINE"
	FeedbackRequestRevision FeedbackAction = "REQUEST_REVISION"
)

// ParseFeedbackAction accepts the action name in any case.
func ParseFeedbackAction(s string) (FeedbackAction, error) {
	switch a := FeedbackAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case FeedbackAccept, FeedbackDecline, FeedbackRequestRevision:
		return a, nil
	default:
		return "", NewValidationErrorWithValue("action", "must be ACCEPT, DECLINE or REQUEST_REVISION", s)
	}
}

// ResultingStatus is the quote status the action moves the quote to.
func (a FeedbackAction) ResultingStatus() QuoteStatus {
	switch a {
	case FeedbackAccept:
		return StatusAccepted
	case FeedbackDecline:
		return StatusDeclined
	default:
		return StatusRevisionRequested
	}
}

// ClientFeedback is an append-only record of a client's action on a revision.
type ClientFeedback struct {
	ID          string
	QuoteID     string
	RevisionID  string
	ClientEmail string
	Action      FeedbackAction
	Comment     string
	CreatedAt   time.Time
}

// Validate checks the fields a feedback row needs.
func (f ClientFeedback) Validate() error {
	verr := &ValidationError{}

	if f.RevisionID == "" {
		verr.Add("revision_id", "is required")
	}

	if strings.TrimSpace(f.ClientEmail) == "" {
		verr.Add("client_email", "is required")
	}

	if _, err := ParseFeedbackAction(string(f.Action)); err != nil {
		verr.Add("action", "must be ACCEPT, DECLINE or REQUEST_REVISION")
	}

	return verr.OrNil()
}
