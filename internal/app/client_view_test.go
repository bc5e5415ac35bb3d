package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/mocks"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// seedQuote saves a sample quote and returns the store and the save result.
func seedQuote(t *testing.T) (*recordingStore, domain.SaveResult) {
	t.Helper()

	store := newRecordingStore()

	result, err := newQuoteService(store).Save(context.Background(), sampleDraft(t, "Q-1"))
	require.NoError(t, err)

	return store, result
}

func newClientViewService(store ports.Store, opts ...func(*ClientViewConfig)) *ClientViewService {
	cfg := ClientViewConfig{Store: store, Logger: discardLogger(), Now: func() time.Time { return fixedNow }}
	for _, o := range opts {
		o(&cfg)
	}

	return NewClientViewService(cfg)
}

func TestClientViewService_Load(t *testing.T) {
	store, saved := seedQuote(t)

	tracker := mocks.NewMockViewTracker(t)
	tracker.EXPECT().TrackView(mock.Anything, saved.RevisionID).Return(true, nil).Once()

	svc := newClientViewService(store, func(c *ClientViewConfig) { c.Tracker = tracker })

	view, err := svc.Load(context.Background(), " "+saved.RevisionID+" ")
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, "Q-1", view.Bundle.Quote.QuoteNumber)
	assert.Equal(t, "250.00", domain.FormatMoney(view.Totals.Subtotal))
	assert.Equal(t, "20.00", domain.FormatMoney(view.Totals.Tax))
	assert.Equal(t, "270.00", domain.FormatMoney(view.Totals.Total))
	assert.True(t, view.Schedule.Balanced)
	assert.Empty(t, view.Feedback)
}

func TestClientViewService_Load_TrackingFailureIsSwallowed(t *testing.T) {
	store, saved := seedQuote(t)

	tracker := mocks.NewMockViewTracker(t)
	tracker.EXPECT().TrackView(mock.Anything, saved.RevisionID).Return(false, errors.New("rpc timeout")).Once()

	svc := newClientViewService(store, func(c *ClientViewConfig) { c.Tracker = tracker })

	_, err := svc.Load(context.Background(), saved.RevisionID)
	require.NoError(t, err)
	svc.Wait()
}

func TestClientViewService_Load_TrackingSurvivesCanceledRequest(t *testing.T) {
	store, saved := seedQuote(t)

	tracker := mocks.NewMockViewTracker(t)
	tracker.EXPECT().TrackView(mock.Anything, saved.RevisionID).
		RunAndReturn(func(ctx context.Context, _ string) (bool, error) {
			return ctx.Err() == nil, ctx.Err()
		}).Once()

	svc := newClientViewService(store, func(c *ClientViewConfig) { c.Tracker = tracker })

	ctx, cancel := context.WithCancel(context.Background())

	_, err := svc.Load(ctx, saved.RevisionID)
	require.NoError(t, err)

	cancel()
	svc.Wait()
}

func TestClientViewService_Load_TrackingDisabledByFlag(t *testing.T) {
	store, saved := seedQuote(t)

	flags := mocks.NewMockFeatureFlags(t)
	flags.EXPECT().IsEnabled(mock.Anything, ports.FlagTrackViews, true).Return(false)

	tracker := mocks.NewMockViewTracker(t)

	svc := newClientViewService(store, func(c *ClientViewConfig) {
		c.Tracker = tracker
		c.Flags = flags
	})

	_, err := svc.Load(context.Background(), saved.RevisionID)
	require.NoError(t, err)
	svc.Wait()
}

func TestClientViewService_Load_Errors(t *testing.T) {
	tracker := mocks.NewMockViewTracker(t)
	svc := newClientViewService(newRecordingStore(), func(c *ClientViewConfig) { c.Tracker = tracker })

	_, err := svc.Load(context.Background(), "")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Load(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))

	svc.Wait()
}

func TestClientViewService_SubmitFeedback(t *testing.T) {
	tests := []struct {
		action string
		status domain.QuoteStatus
	}{
		{action: "ACCEPT", status: domain.StatusAccepted},
		{action: "decline", status: domain.StatusDeclined},
		{action: "Request_Revision", status: domain.StatusRevisionRequested},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			ctx := context.Background()
			store, saved := seedQuote(t)

			events := mocks.NewMockEventPublisher(t)
			events.EXPECT().Publish(mock.Anything, mock.AnythingOfType("app.FeedbackSubmitted")).Return(nil).Once()

			svc := newClientViewService(store, func(c *ClientViewConfig) { c.Events = events })

			fb, err := svc.SubmitFeedback(ctx, FeedbackInput{
				RevisionID:  saved.RevisionID,
				ClientEmail: "billing@acme.test",
				Action:      tt.action,
				Comment:     "looks good",
			})
			require.NoError(t, err)

			assert.NotEmpty(t, fb.ID)
			assert.Equal(t, saved.QuoteID, fb.QuoteID)
			assert.Equal(t, fixedNow, fb.CreatedAt)

			q, err := store.FindQuoteByID(ctx, saved.QuoteID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, q.Status)

			view, err := svc.Load(ctx, saved.RevisionID)
			require.NoError(t, err)
			require.Len(t, view.Feedback, 1)
			assert.Equal(t, "looks good", view.Feedback[0].Comment)
		})
	}
}

func TestClientViewService_SubmitFeedback_Rejected(t *testing.T) {
	store, saved := seedQuote(t)
	svc := newClientViewService(store)

	tests := []struct {
		name  string
		in    FeedbackInput
		check func(error) bool
	}{
		{
			name:  "unknown action",
			in:    FeedbackInput{RevisionID: saved.RevisionID, ClientEmail: "a@b.c", Action: "MAYBE"},
			check: domain.IsValidation,
		},
		{
			name:  "missing email",
			in:    FeedbackInput{RevisionID: saved.RevisionID, Action: "ACCEPT"},
			check: domain.IsValidation,
		},
		{
			name:  "unknown revision",
			in:    FeedbackInput{RevisionID: "missing", ClientEmail: "a@b.c", Action: "ACCEPT"},
			check: domain.IsNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitFeedback(context.Background(), tt.in)

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	fb, err := store.ListFeedback(context.Background(), saved.RevisionID)
	require.NoError(t, err)
	assert.Empty(t, fb)
}

func TestClientViewService_Render(t *testing.T) {
	store, saved := seedQuote(t)

	renderer := mocks.NewMockDocumentRenderer(t)
	renderer.EXPECT().Format().Return("pdf")
	renderer.EXPECT().Render(mock.Anything, mock.MatchedBy(func(v domain.ClientView) bool {
		return v.Bundle.Revision.ID == saved.RevisionID
	})).Return(ports.Document{Filename: "quote-Q-1.pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil)

	svc := newClientViewService(store, func(c *ClientViewConfig) { c.Renderers = []ports.DocumentRenderer{renderer} })

	assert.Equal(t, []string{"pdf"}, svc.Formats())

	doc, err := svc.Render(context.Background(), saved.RevisionID, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "quote-Q-1.pdf", doc.Filename)

	_, err = svc.Render(context.Background(), saved.RevisionID, "docx")
	assert.True(t, domain.IsValidation(err))
}

func TestClientViewService_Render_DoesNotTrackView(t *testing.T) {
	store, saved := seedQuote(t)

	// No TrackView expectation: any call fails the test.
	tracker := mocks.NewMockViewTracker(t)

	renderer := mocks.NewMockDocumentRenderer(t)
	renderer.EXPECT().Format().Return("pdf")
	renderer.EXPECT().Render(mock.Anything, mock.Anything).
		Return(ports.Document{Filename: "quote-Q-1.pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil)

	svc := newClientViewService(store, func(c *ClientViewConfig) {
		c.Tracker = tracker
		c.Renderers = []ports.DocumentRenderer{renderer}
	})

	_, err := svc.Render(context.Background(), saved.RevisionID, "pdf")
	require.NoError(t, err)
	svc.Wait()
}
