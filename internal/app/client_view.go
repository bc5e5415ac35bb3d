package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

const defaultTrackTimeout = 5 * time.Second

// ClientViewService serves the read-only revision page and records client feedback.
type ClientViewService struct {
	store        ports.Store
	tracker      ports.ViewTracker
	flags        ports.FeatureFlags
	events       ports.EventPublisher
	renderers    map[string]ports.DocumentRenderer
	trackTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger

	tracking sync.WaitGroup
}

// ClientViewConfig holds the dependencies of ClientViewService.
type ClientViewConfig struct {
	Store     ports.Store
	Tracker   ports.ViewTracker
	Flags     ports.FeatureFlags
	Events    ports.EventPublisher
	Renderers []ports.DocumentRenderer
	// TrackTimeout bounds a single view-tracking call. Zero means 5s.
	TrackTimeout time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

// NewClientViewService creates a ClientViewService.
func NewClientViewService(cfg ClientViewConfig) *ClientViewService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.TrackTimeout
	if timeout <= 0 {
		timeout = defaultTrackTimeout
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	renderers := make(map[string]ports.DocumentRenderer, len(cfg.Renderers))
	for _, r := range cfg.Renderers {
		renderers[r.Format()] = r
	}

	return &ClientViewService{
		store:        cfg.Store,
		tracker:      cfg.Tracker,
		flags:        cfg.Flags,
		events:       cfg.Events,
		renderers:    renderers,
		trackTimeout: timeout,
		now:          now,
		logger:       logger.With(slog.String("component", "app.ClientViewService")),
	}
}

func requireRevisionID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.NewValidationError("revision", "is required")
	}

	return id, nil
}

// Load reads a revision with its feedback and computes the display totals.
// A successful load records a view in the background.
func (s *ClientViewService) Load(ctx context.Context, revisionID string) (domain.ClientView, error) {
	return s.load(ctx, revisionID, true)
}

func (s *ClientViewService) load(ctx context.Context, revisionID string, track bool) (domain.ClientView, error) {
	revisionID, err := requireRevisionID(revisionID)
	if err != nil {
		return domain.ClientView{}, err
	}

	bundle, feedback, err := Parallel2(ctx,
		func(ctx context.Context) (domain.RevisionBundle, error) {
			return s.store.LoadRevisionBundle(ctx, revisionID)
		},
		func(ctx context.Context) ([]domain.ClientFeedback, error) {
			return s.store.ListFeedback(ctx, revisionID)
		},
	)
	if err != nil {
		return domain.ClientView{}, fmt.Errorf("load client view %s: %w", revisionID, err)
	}

	if track {
		s.trackView(ctx, revisionID)
	}

	return domain.NewClientView(bundle, feedback), nil
}

// trackView fires the view tracker without blocking the caller. Failures are logged only.
func (s *ClientViewService) trackView(ctx context.Context, revisionID string) {
	if s.tracker == nil {
		return
	}

	if s.flags != nil && !s.flags.IsEnabled(ctx, ports.FlagTrackViews, true) {
		return
	}

	logger := logging.FromContext(ctx)
	trackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.trackTimeout)

	s.tracking.Add(1)

	go func() {
		defer s.tracking.Done()
		defer cancel()

		ok, err := s.tracker.TrackView(trackCtx, revisionID)
		switch {
		case err != nil:
			logger.WarnContext(trackCtx, "view tracking failed",
				slog.String("revision_id", revisionID), slog.Any("error", err))
		case !ok:
			logger.WarnContext(trackCtx, "view tracking not recorded", slog.String("revision_id", revisionID))
		default:
			logger.DebugContext(trackCtx, "view tracked", slog.String("revision_id", revisionID))
		}
	}()
}

// Wait blocks until background view tracking has finished.
func (s *ClientViewService) Wait() {
	s.tracking.Wait()
}

// FeedbackInput is a client's reaction to a revision.
type FeedbackInput struct {
	RevisionID  string
	ClientEmail string
	Action      string
	Comment     string
}

// SubmitFeedback appends the client's feedback and moves the quote to the matching status.
func (s *ClientViewService) SubmitFeedback(ctx context.Context, in FeedbackInput) (domain.ClientFeedback, error) {
	action, err := domain.ParseFeedbackAction(in.Action)
	if err != nil {
		return domain.ClientFeedback{}, err
	}

	fb := domain.ClientFeedback{
		RevisionID:  strings.TrimSpace(in.RevisionID),
		ClientEmail: strings.TrimSpace(in.ClientEmail),
		Action:      action,
		Comment:     in.Comment,
		CreatedAt:   s.now(),
	}
	if err := fb.Validate(); err != nil {
		return domain.ClientFeedback{}, err
	}

	bundle, err := s.store.LoadRevisionBundle(ctx, fb.RevisionID)
	if err != nil {
		return domain.ClientFeedback{}, fmt.Errorf("load revision %s: %w", fb.RevisionID, err)
	}

	fb.QuoteID = bundle.Quote.ID

	stored, err := s.store.InsertFeedback(ctx, fb)
	if err != nil {
		return domain.ClientFeedback{}, fmt.Errorf("insert feedback: %w", err)
	}

	quote := bundle.Quote
	quote.Status = action.ResultingStatus()
	quote.CurrentRevision = quote.CurrentRevisionNumber()

	if err := s.store.UpdateQuote(ctx, quote); err != nil {
		return domain.ClientFeedback{}, fmt.Errorf("update status of quote %s: %w", quote.ID, err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "client feedback recorded",
		slog.String("quote_id", quote.ID),
		slog.String("revision_id", fb.RevisionID),
		slog.String("action", string(action)),
	)

	publish(ctx, s.events, FeedbackSubmitted{QuoteID: quote.ID, RevisionID: fb.RevisionID, Action: action})

	return stored, nil
}

// Formats lists the document formats Render accepts.
func (s *ClientViewService) Formats() []string {
	formats := make([]string, 0, len(s.renderers))
	for f := range s.renderers {
		formats = append(formats, f)
	}

	slices.Sort(formats)

	return formats
}

// Render loads the client view and renders it in format. Downloads are not counted as views.
func (s *ClientViewService) Render(ctx context.Context, revisionID, format string) (ports.Document, error) {
	renderer, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return ports.Document{}, domain.NewValidationErrorWithValue("format", "unsupported document format", format)
	}

	view, err := s.load(ctx, revisionID, false)
	if err != nil {
		return ports.Document{}, err
	}

	doc, err := renderer.Render(ctx, view)
	if err != nil {
		return ports.Document{}, fmt.Errorf("render %s: %w", format, err)
	}

	return doc, nil
}
