package domain

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSuperseded is returned when a result arrives for a request that a newer one replaced.
	ErrSuperseded = errors.New("request superseded")

	// ErrInvalidTransition is returned when an event does not apply to the current state.
	ErrInvalidTransition = errors.New("invalid selection transition")
)

// SelectionState is a step of opening an existing quote in the editor.
type SelectionState int

const (
	SelectionIdle SelectionState = iota
	SelectionSelectingQuote
	SelectionLoadingRevisions
	SelectionAutoSelectingRevision
	SelectionLoaded
)

func (s SelectionState) String() string {
	switch s {
	case SelectionIdle:
		return "idle"
	case SelectionSelectingQuote:
		return "selecting_quote"
	case SelectionLoadingRevisions:
		return "loading_revisions"
	case SelectionAutoSelectingRevision:
		return "auto_selecting_revision"
	case SelectionLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("SelectionState(%d)", int(s))
	}
}

// SelectionToken identifies one open-quote request.
type SelectionToken uint64

// RevisionSelector drives Idle → SelectingQuote → LoadingRevisions → AutoSelectingRevision → Loaded.
// Each SelectQuote issues a new token. Events carrying an older token get ErrSuperseded.
// Safe for concurrent use.
type RevisionSelector struct {
	mu          sync.Mutex
	state       SelectionState
	token       SelectionToken
	quoteNumber string
	revisionID  string
}

// SelectionSnapshot is a point-in-time view of the selector.
type SelectionSnapshot struct {
	State       SelectionState
	Token       SelectionToken
	QuoteNumber string
	RevisionID  string
}

// Snapshot returns the current state.
func (s *RevisionSelector) Snapshot() SelectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SelectionSnapshot{
		State:       s.state,
		Token:       s.token,
		QuoteNumber: s.quoteNumber,
		RevisionID:  s.revisionID,
	}
}

// SelectQuote starts a new request from any state and supersedes the previous one.
func (s *RevisionSelector) SelectQuote(quoteNumber string) SelectionToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.state = SelectionSelectingQuote
	s.quoteNumber = quoteNumber
	s.revisionID = ""

	return s.token
}

func (s *RevisionSelector) advance(tok SelectionToken, from, to SelectionState) error {
	if tok != s.token {
		return ErrSuperseded
	}

	if s.state != from {
		return fmt.Errorf("%w: %s to %s from %s", ErrInvalidTransition, from, to, s.state)
	}

	s.state = to

	return nil
}

// QuoteResolved moves to LoadingRevisions once the quote number is known to exist.
func (s *RevisionSelector) QuoteResolved(tok SelectionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advance(tok, SelectionSelectingQuote, SelectionLoadingRevisions)
}

// RevisionsLoaded picks the most recent revision and moves to AutoSelectingRevision.
// An empty list resets the selector and returns a not found error.
func (s *RevisionSelector) RevisionsLoaded(tok SelectionToken, revisions []RevisionSummary) (RevisionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok != s.token {
		return RevisionSummary{}, ErrSuperseded
	}

	if len(revisions) == 0 {
		s.state = SelectionIdle

		return RevisionSummary{}, NewNotFoundError("revision", s.quoteNumber)
	}

	if err := s.advance(tok, SelectionLoadingRevisions, SelectionAutoSelectingRevision); err != nil {
		return RevisionSummary{}, err
	}

	latest := revisions[0]
	for _, r := range revisions[1:] {
		if r.RevisionNumber > latest.RevisionNumber {
			latest = r
		}
	}

	s.revisionID = latest.ID

	return latest, nil
}

// RevisionLoaded completes the request.
func (s *RevisionSelector) RevisionLoaded(tok SelectionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advance(tok, SelectionAutoSelectingRevision, SelectionLoaded)
}

// Fail resets to Idle if tok is still current.
func (s *RevisionSelector) Fail(tok SelectionToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok == s.token {
		s.state = SelectionIdle
	}
}

// Reset abandons any request in flight.
func (s *RevisionSelector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.state = SelectionIdle
	s.quoteNumber = ""
	s.revisionID = ""
}
