package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionSelector_HappyPath(t *testing.T) {
	var s RevisionSelector
	assert.Equal(t, SelectionIdle, s.Snapshot().State)

	tok := s.SelectQuote("1000")
	assert.Equal(t, SelectionSelectingQuote, s.Snapshot().State)

	require.NoError(t, s.QuoteResolved(tok))
	assert.Equal(t, SelectionLoadingRevisions, s.Snapshot().State)

	picked, err := s.RevisionsLoaded(tok, []RevisionSummary{
		{ID: "r1", RevisionNumber: 1},
		{ID: "r3", RevisionNumber: 3},
		{ID: "r2", RevisionNumber: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "r3", picked.ID)
	assert.Equal(t, SelectionAutoSelectingRevision, s.Snapshot().State)

	require.NoError(t, s.RevisionLoaded(tok))

	snap := s.Snapshot()
	assert.Equal(t, SelectionLoaded, snap.State)
	assert.Equal(t, "1000", snap.QuoteNumber)
	assert.Equal(t, "r3", snap.RevisionID)
}

func TestRevisionSelector_SupersededRequest(t *testing.T) {
	var s RevisionSelector

	first := s.SelectQuote("1000")
	require.NoError(t, s.QuoteResolved(first))

	second := s.SelectQuote("2000")

	_, err := s.RevisionsLoaded(first, []RevisionSummary{{ID: "old", RevisionNumber: 1}})
	require.ErrorIs(t, err, ErrSuperseded)
	require.ErrorIs(t, s.RevisionLoaded(first), ErrSuperseded)

	snap := s.Snapshot()
	assert.Equal(t, SelectionSelectingQuote, snap.State)
	assert.Equal(t, "2000", snap.QuoteNumber)
	assert.Empty(t, snap.RevisionID)

	s.Fail(first)
	assert.Equal(t, SelectionSelectingQuote, s.Snapshot().State, "stale failure is ignored")

	s.Fail(second)
	assert.Equal(t, SelectionIdle, s.Snapshot().State)
}

func TestRevisionSelector_InvalidTransition(t *testing.T) {
	var s RevisionSelector
	tok := s.SelectQuote("1000")

	err := s.RevisionLoaded(tok)

	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, SelectionSelectingQuote, s.Snapshot().State)
}

func TestRevisionSelector_NoRevisions(t *testing.T) {
	var s RevisionSelector
	tok := s.SelectQuote("1000")
	require.NoError(t, s.QuoteResolved(tok))

	_, err := s.RevisionsLoaded(tok, nil)

	assert.True(t, IsNotFound(err))
	assert.Equal(t, SelectionIdle, s.Snapshot().State)
}

func TestRevisionSelector_Reset(t *testing.T) {
	var s RevisionSelector
	tok := s.SelectQuote("1000")

	s.Reset()

	assert.ErrorIs(t, s.QuoteResolved(tok), ErrSuperseded)
	assert.Equal(t, SelectionIdle, s.Snapshot().State)
}

func TestRevisionSelector_ConcurrentSelectionsKeepLatest(t *testing.T) {
	var s RevisionSelector
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok := s.SelectQuote("q")
			_ = s.QuoteResolved(tok)
		}()
	}
	wg.Wait()

	tok := s.Snapshot().Token
	assert.Equal(t, SelectionToken(50), tok)
}

func TestSelectionState_String(t *testing.T) {
	assert.Equal(t, "auto_selecting_revision", SelectionAutoSelectingRevision.String())
	assert.Equal(t, "SelectionState(42)", SelectionState(42).String())
}
