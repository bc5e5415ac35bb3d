package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// session is one editing session. The draft is only touched with mu held.
type session struct {
	mu       sync.Mutex
	draft    *domain.QuoteDraft
	saving   bool
	lastUsed time.Time
	selector domain.RevisionSelector
}

// DraftService keeps the drafts being edited in memory and runs editor actions on them.
// Every method returns a copy of the draft, never the session's own value.
type DraftService struct {
	mu       sync.RWMutex
	sessions map[string]*session

	quotes         *QuoteService
	notifier       ports.Notifier
	events         ports.EventPublisher
	defaultTaxRate decimal.Decimal
	publicBaseURL  string
	idleTTL        time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// DraftServiceConfig holds the dependencies of DraftService.
type DraftServiceConfig struct {
	Quotes   *QuoteService
	Notifier ports.Notifier
	Events   ports.EventPublisher

	// DefaultTaxRate is the fractional rate new drafts start with.
	DefaultTaxRate decimal.Decimal

	// PublicBaseURL is where the client view is served, e.g. https://quotes.example.com.
	PublicBaseURL string

	// IdleTTL is how long a session may go unused before SweepIdle drops it.
	// Zero keeps sessions until they are deleted.
	IdleTTL time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// NewDraftService creates a DraftService. It panics without a QuoteService.
func NewDraftService(cfg DraftServiceConfig) *DraftService {
	if cfg.Quotes == nil {
		panic("app: DraftService requires a QuoteService")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &DraftService{
		sessions:       make(map[string]*session),
		quotes:         cfg.Quotes,
		notifier:       cfg.Notifier,
		events:         cfg.Events,
		defaultTaxRate: cfg.DefaultTaxRate,
		publicBaseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		idleTTL:        cfg.IdleTTL,
		now:            now,
		logger:         logger.With(slog.String("component", "app.DraftService")),
	}
}

// Create starts a new draft for owner.
func (s *DraftService) Create(ctx context.Context, owner string) *domain.QuoteDraft {
	d := domain.NewQuoteDraft(owner, s.defaultTaxRate)

	s.mu.Lock()
	s.sessions[d.ID] = &session{draft: d, lastUsed: s.now()}
	s.mu.Unlock()

	logging.FromContext(ctx).DebugContext(ctx, "draft created", slog.String("draft_id", d.ID))

	return d.Clone()
}

func (s *DraftService) session(owner, draftID string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[draftID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NewNotFoundError("draft", draftID)
	}

	sess.mu.Lock()
	draftOwner := sess.draft.Owner
	if draftOwner == owner {
		sess.lastUsed = s.now()
	}
	sess.mu.Unlock()

	if draftOwner != owner {
		return nil, domain.NewForbiddenError("access draft", "the draft belongs to another user")
	}

	return sess, nil
}

// SweepIdle drops sessions unused for longer than the idle TTL and returns
// how many were dropped. Sessions with a save in flight are kept.
func (s *DraftService) SweepIdle(ctx context.Context) int {
	if s.idleTTL <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.idleTTL)
	dropped := 0

	s.mu.Lock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := !sess.saving && sess.lastUsed.Before(cutoff)
		sess.mu.Unlock()

		if idle {
			delete(s.sessions, id)
			dropped++
		}
	}
	remaining := len(s.sessions)
	s.mu.Unlock()

	if dropped > 0 {
		logging.FromContext(ctx).InfoContext(ctx, "idle drafts dropped",
			slog.Int("dropped", dropped),
			slog.Int("remaining", remaining),
		)
	}

	return dropped
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (s *DraftService) RunSweeper(ctx context.Context, interval time.Duration) {
	if s.idleTTL <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepIdle(ctx)
		}
	}
}

// edit runs fn on the session draft and returns a copy of the result.
func (s *DraftService) edit(owner, draftID string, fn func(d *domain.QuoteDraft) error) (*domain.QuoteDraft, error) {
	sess, err := s.session(owner, draftID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess.draft); err != nil {
		return nil, err
	}

	return sess.draft.Clone(), nil
}

// Get returns a copy of the draft.
func (s *DraftService) Get(_ context.Context, owner, draftID string) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(*domain.QuoteDraft) error { return nil })
}

// Delete discards the draft. Persisted quotes are not affected.
func (s *DraftService) Delete(_ context.Context, owner, draftID string) error {
	if _, err := s.session(owner, draftID); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, draftID)
	s.mu.Unlock()

	return nil
}

// AddLineItem appends a line item.
func (s *DraftService) AddLineItem(
	_ context.Context, owner, draftID, description string, qty int, unitPrice decimal.Decimal,
) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		_, err := d.AddLineItem(description, qty, unitPrice)

		return err
	})
}

// UpdateLineItem edits one line item.
func (s *DraftService) UpdateLineItem(
	_ context.Context, owner, draftID, itemID string, patch domain.LineItemPatch,
) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		_, err := d.UpdateLineItem(itemID, patch)

		return err
	})
}

// RemoveLineItem deletes a line item. The last one cannot be removed.
func (s *DraftService) RemoveLineItem(_ context.Context, owner, draftID, itemID string) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		return d.RemoveLineItem(itemID)
	})
}

// SetTaxEnabled toggles tax.
func (s *DraftService) SetTaxEnabled(_ context.Context, owner, draftID string, enabled bool) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		d.SetTaxEnabled(enabled)

		return nil
	})
}

// StageTaxRate holds a new fractional rate until it is confirmed or canceled.
func (s *DraftService) StageTaxRate(
	_ context.Context, owner, draftID string, rate decimal.Decimal,
) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		return d.StageTaxRate(rate)
	})
}

// ConfirmTaxRate applies the staged rate. Without a staged rate nothing changes.
func (s *DraftService) ConfirmTaxRate(_ context.Context, owner, draftID string) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		d.ConfirmTaxRate()

		return nil
	})
}

// CancelTaxRate drops the staged rate.
func (s *DraftService) CancelTaxRate(_ context.Context, owner, draftID string) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		d.CancelTaxRate()

		return nil
	})
}

// AddScheduleEntry appends an empty payment schedule row.
func (s *DraftService) AddScheduleEntry(_ context.Context, owner, draftID string) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		d.AddScheduleEntry()

		return nil
	})
}

// UpdateScheduleEntry edits a payment schedule row.
func (s *DraftService) UpdateScheduleEntry(
	_ context.Context, owner, draftID, entryID string, patch domain.ScheduleEntryPatch,
) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		_, err := d.UpdateScheduleEntry(entryID, patch)

		return err
	})
}

// RemoveScheduleEntry deletes a payment schedule row.
func (s *DraftService) RemoveScheduleEntry(_ context.Context, owner, draftID, entryID string) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		return d.RemoveScheduleEntry(entryID)
	})
}

// UpdateHeader edits the free-form fields.
func (s *DraftService) UpdateHeader(
	_ context.Context, owner, draftID string, patch domain.DraftHeaderPatch,
) (*domain.QuoteDraft, error) {
	return s.edit(owner, draftID, func(d *domain.QuoteDraft) error {
		d.ApplyHeader(patch)

		return nil
	})
}

// Save persists a snapshot of the draft. The session draft only changes, by getting
// its saved marker, once the save succeeded. Edits made while the save runs are kept.
func (s *DraftService) Save(ctx context.Context, owner, draftID string) (domain.SaveResult, *domain.QuoteDraft, error) {
	sess, err := s.session(owner, draftID)
	if err != nil {
		return domain.SaveResult{}, nil, err
	}

	sess.mu.Lock()
	if sess.saving {
		sess.mu.Unlock()

		return domain.SaveResult{}, nil, domain.NewConflictError("draft", "a save is already in progress")
	}

	sess.saving = true
	snapshot := sess.draft.Clone()
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		sess.saving = false
		sess.mu.Unlock()
	}()

	// A client disconnect must not stop the child writes halfway. Store calls
	// keep their own timeouts.
	result, err := s.quotes.Save(context.WithoutCancel(ctx), snapshot)
	if err != nil {
		return domain.SaveResult{}, nil, err
	}

	sess.mu.Lock()
	sess.draft.MarkSaved(domain.SavedMarker{
		QuoteID:    result.QuoteID,
		RevisionID: result.RevisionID,
		SavedAt:    result.SavedAt,
	})
	out := sess.draft.Clone()
	sess.mu.Unlock()

	return result, out, nil
}

// Open loads the most recent revision of a quote into the draft.
// A newer Open on the same draft supersedes this one, which then returns domain.ErrSuperseded.
func (s *DraftService) Open(ctx context.Context, owner, draftID, quoteNumber string) (*domain.QuoteDraft, error) {
	quoteNumber = strings.TrimSpace(quoteNumber)
	if quoteNumber == "" {
		return nil, domain.NewValidationError("quote_number", "is required")
	}

	sess, err := s.session(owner, draftID)
	if err != nil {
		return nil, err
	}

	tok := sess.selector.SelectQuote(quoteNumber)

	bundle, err := s.loadLatest(ctx, sess, tok, quoteNumber)
	if err != nil {
		sess.selector.Fail(tok)

		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.selector.RevisionLoaded(tok); err != nil {
		return nil, err
	}

	d := bundle.ToDraft(owner)
	d.ID = sess.draft.ID
	sess.draft = d

	logging.FromContext(ctx).InfoContext(ctx, "quote opened",
		slog.String("quote_number", quoteNumber), slog.String("revision_id", bundle.Revision.ID))

	return d.Clone(), nil
}

func (s *DraftService) loadLatest(
	ctx context.Context, sess *session, tok domain.SelectionToken, quoteNumber string,
) (domain.RevisionBundle, error) {
	quote, err := s.quotes.FindQuote(ctx, quoteNumber)
	if err != nil {
		return domain.RevisionBundle{}, err
	}

	if err := sess.selector.QuoteResolved(tok); err != nil {
		return domain.RevisionBundle{}, err
	}

	revisions, err := s.quotes.ListRevisions(ctx, quote.ID)
	if err != nil {
		return domain.RevisionBundle{}, err
	}

	latest, err := sess.selector.RevisionsLoaded(tok, revisions)
	if err != nil {
		return domain.RevisionBundle{}, err
	}

	return s.quotes.LoadRevision(ctx, latest.ID)
}

// Selection reports where the draft's open-quote request stands.
func (s *DraftService) Selection(_ context.Context, owner, draftID string) (domain.SelectionSnapshot, error) {
	sess, err := s.session(owner, draftID)
	if err != nil {
		return domain.SelectionSnapshot{}, err
	}

	return sess.selector.Snapshot(), nil
}

// ClientLink is the client view address of a revision, or "" without a public base URL.
func (s *DraftService) ClientLink(revisionID string) string {
	if s.publicBaseURL == "" || revisionID == "" {
		return ""
	}

	return s.publicBaseURL + "/?revision=" + url.QueryEscape(revisionID)
}

// Send emails the saved quote to the client and marks it sent.
func (s *DraftService) Send(ctx context.Context, owner, draftID string) (ports.Delivery, error) {
	if s.notifier == nil {
		return ports.Delivery{}, fmt.Errorf("send quote: %w", domain.ErrUnavailable)
	}

	d, err := s.Get(ctx, owner, draftID)
	if err != nil {
		return ports.Delivery{}, err
	}

	if d.Saved == nil {
		return ports.Delivery{}, domain.NewConflictError("draft", "save the quote before sending it")
	}

	to := strings.TrimSpace(d.ClientEmail)
	if to == "" {
		_, to = domain.ClientIdentity(d.ClientName, "")
	}

	link := s.ClientLink(d.Saved.RevisionID)
	if link == "" {
		link = d.URL
	}

	delivery, err := s.notifier.SendQuote(ctx, ports.QuoteEmail{
		To:          to,
		ClientName:  d.ClientName,
		QuoteNumber: d.QuoteNumber,
		QuoteURL:    link,
		Total:       d.Totals.Total,
		ExpiresAt:   d.ExpiresAt,
	})
	if err != nil {
		return ports.Delivery{}, fmt.Errorf("send quote %q: %w", d.QuoteNumber, err)
	}

	if err := s.quotes.SetStatus(ctx, d.Saved.QuoteID, domain.StatusSent); err != nil {
		return delivery, err
	}

	publish(ctx, s.events, QuoteSent{QuoteNumber: d.QuoteNumber, To: to, Channel: delivery.Channel})

	return delivery, nil
}
