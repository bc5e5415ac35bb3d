// Package app contains the quote use cases: saving drafts, reading quotes back,
// the client-facing view and the in-memory editing sessions.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	appctx "github.com/jsamuelsen/quotedesk/internal/app/context"
	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

const defaultSearchLimit = 25

// QuoteService persists drafts and reads quotes back from the store.
type QuoteService struct {
	store   ports.Store
	history ports.SaveHistory
	events  ports.EventPublisher
	flags   ports.FeatureFlags
	exec    *Executor
	now     func() time.Time
	logger  *slog.Logger
}

// QuoteServiceConfig holds the dependencies of QuoteService. History, Events and
// Flags are optional.
type QuoteServiceConfig struct {
	Store    ports.Store
	History  ports.SaveHistory
	Events   ports.EventPublisher
	Flags    ports.FeatureFlags
	Executor *Executor
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(logger)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &QuoteService{
		store:   cfg.Store,
		history: cfg.History,
		events:  cfg.Events,
		flags:   cfg.Flags,
		exec:    exec,
		now:     now,
		logger:  logger.With(slog.String("component", "app.QuoteService")),
	}
}

// saveWrites is what the perform step wrote.
type saveWrites struct {
	client        domain.Client
	clientCreated bool
	quote         domain.PersistedQuote
	quoteCreated  bool
	revision      domain.QuoteRevision
}

// savedQuote is the perform result after the read-back check.
type savedQuote struct {
	saveWrites
	itemCount int
}

// Save persists the draft as its quote's current revision.
//
// A new quote number creates the quote and revision 1. An existing one updates the
// quote, clears the current revision's child rows, rewrites the revision and inserts
// the children again. The draft itself is never modified.
func (s *QuoteService) Save(ctx context.Context, draft *domain.QuoteDraft) (domain.SaveResult, error) {
	ctx = logging.WithQuote(ctx, draft.QuoteNumber, draft.ID)

	op := Operation[*domain.QuoteDraft, saveWrites, savedQuote, domain.SaveResult]{
		Name:      "quote.save",
		Validate:  s.validateSave,
		Perform:   s.performSave,
		Verify:    s.verifySave,
		Archive:   s.archiveSave,
		Respond:   s.respondSave,
		OnFailure: s.saveFailed,
	}

	result, err := Execute(ctx, s.exec, op, draft)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("save quote %q: %w", draft.QuoteNumber, err)
	}

	return result, nil
}

func (s *QuoteService) validateSave(ctx context.Context, draft *domain.QuoteDraft) error {
	if err := draft.ValidateForSave(); err != nil {
		return err
	}

	status := draft.ScheduleStatus()
	if len(draft.Schedule) > 0 && !status.Balanced {
		if s.flags != nil && s.flags.IsEnabled(ctx, ports.FlagBlockUnbalancedSchedule, false) {
			return domain.NewValidationErrorWithValue("payment_schedule",
				"percentages must add up to 100", domain.FormatMoney(status.Total))
		}

		logging.FromContext(ctx).InfoContext(ctx, "saving with unbalanced payment schedule",
			slog.String("schedule_total", domain.FormatMoney(status.Total)))
	}

	return nil
}

func (s *QuoteService) performSave(ctx context.Context, draft *domain.QuoteDraft) (saveWrites, error) {
	rc := appctx.New(ctx)
	ctx = appctx.WithContext(ctx, rc)

	var w saveWrites

	client, created, err := s.resolveClient(ctx, rc, draft.ClientName, draft.ClientEmail)
	if err != nil {
		return w, err
	}

	w.client, w.clientCreated = client, created

	if err := s.resolveQuote(ctx, rc, draft, &w); err != nil {
		return w, err
	}

	s.stageChildInserts(rc, draft, w.revision.ID)

	if err := rc.Commit(ctx); err != nil {
		return w, fmt.Errorf("write revision %s: %w", w.revision.ID, err)
	}

	return w, nil
}

// resolveClient reuses the client whose name matches the trimmed name exactly
// or creates one.
func (s *QuoteService) resolveClient(
	ctx context.Context, rc *appctx.RequestContext, name, email string,
) (domain.Client, bool, error) {
	name = strings.TrimSpace(name)

	if name != "" {
		client, err := appctx.Fetch(rc, "client:"+name, func(ctx context.Context) (domain.Client, error) {
			return s.store.FindClientByName(ctx, name)
		})
		if err == nil {
			return client, false, nil
		}

		if !domain.IsNotFound(err) {
			return domain.Client{}, false, fmt.Errorf("find client %q: %w", name, err)
		}
	}

	newName, newEmail := domain.ClientIdentity(name, email)

	client, err := s.store.CreateClient(ctx, domain.Client{Name: newName, Email: newEmail})
	if err != nil {
		return domain.Client{}, false, fmt.Errorf("create client %q: %w", newName, err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "client created",
		slog.String("client_id", client.ID), slog.String("client_name", client.Name))

	return client, true, nil
}

func revisionFromDraft(quoteID string, number int, draft *domain.QuoteDraft) domain.QuoteRevision {
	return domain.QuoteRevision{
		QuoteID:        quoteID,
		RevisionNumber: number,
		ExpiresAt:      draft.ExpiresAt,
		TaxEnabled:     draft.TaxEnabled,
		TaxRate:        draft.TaxRate,
		Notes:          draft.Notes,
		Recurring:      draft.Recurring,
		URL:            draft.URL,
		Owner:          draft.Owner,
	}
}

// resolveQuote creates the quote and its first revision, or updates the existing
// quote and stages the in-place rewrite of its current revision.
func (s *QuoteService) resolveQuote(
	ctx context.Context, rc *appctx.RequestContext, draft *domain.QuoteDraft, w *saveWrites,
) error {
	number := strings.TrimSpace(draft.QuoteNumber)

	existing, err := s.store.FindQuoteByNumber(ctx, number)
	if domain.IsNotFound(err) {
		return s.createQuote(ctx, draft, number, w)
	}

	if err != nil {
		return fmt.Errorf("find quote %q: %w", number, err)
	}

	existing.ClientID = w.client.ID
	existing.Status = domain.StatusDraft
	existing.CurrentRevision = existing.CurrentRevisionNumber()

	if err := s.store.UpdateQuote(ctx, existing); err != nil {
		return fmt.Errorf("update quote %s: %w", existing.ID, err)
	}

	w.quote = existing

	rev, err := s.store.FindRevision(ctx, existing.ID, existing.CurrentRevision)
	if domain.IsNotFound(err) {
		logging.FromContext(ctx).WarnContext(ctx, "current revision missing, recreating",
			slog.String("quote_id", existing.ID), slog.Int("revision_number", existing.CurrentRevision))

		rev, err = s.store.CreateRevision(ctx, revisionFromDraft(existing.ID, existing.CurrentRevision, draft))
		if err != nil {
			return fmt.Errorf("create revision: %w", err)
		}

		w.revision = rev

		return nil
	}

	if err != nil {
		return fmt.Errorf("find revision %d of quote %s: %w", existing.CurrentRevision, existing.ID, err)
	}

	updated := revisionFromDraft(existing.ID, rev.RevisionNumber, draft)
	updated.ID = rev.ID
	updated.CreatedAt = rev.CreatedAt
	updated.ViewCount = rev.ViewCount
	updated.LastViewedAt = rev.LastViewedAt
	w.revision = updated

	for _, set := range ports.ChildRecordSets {
		_ = rc.AddAction(appctx.ActionFunc("delete "+string(set), func(ctx context.Context) error {
			return s.store.DeleteRevisionChildren(ctx, set, rev.ID)
		}))
	}

	_ = rc.AddAction(appctx.ActionFunc("update quote_revisions", func(ctx context.Context) error {
		return s.store.UpdateRevision(ctx, updated)
	}))

	return nil
}

func (s *QuoteService) createQuote(ctx context.Context, draft *domain.QuoteDraft, number string, w *saveWrites) error {
	quote, err := s.store.CreateQuote(ctx, domain.PersistedQuote{
		QuoteNumber:     number,
		ClientID:        w.client.ID,
		Status:          domain.StatusDraft,
		CurrentRevision: domain.CurrentRevisionNumber,
	})
	if err != nil {
		return fmt.Errorf("create quote %q: %w", number, err)
	}

	rev, err := s.store.CreateRevision(ctx, revisionFromDraft(quote.ID, domain.CurrentRevisionNumber, draft))
	if err != nil {
		return fmt.Errorf("create revision for quote %s: %w", quote.ID, err)
	}

	w.quote, w.quoteCreated, w.revision = quote, true, rev

	return nil
}

func (s *QuoteService) stageChildInserts(rc *appctx.RequestContext, draft *domain.QuoteDraft, revisionID string) {
	items := make([]domain.RevisionItem, 0, len(draft.Items))
	for i, li := range draft.Items {
		items = append(items, domain.RevisionItem{
			RevisionID:  revisionID,
			Position:    i,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Total:       li.Total,
		})
	}

	_ = rc.AddAction(appctx.ActionFunc("insert quote_items", func(ctx context.Context) error {
		return s.store.InsertItems(ctx, revisionID, items)
	}))

	if len(draft.Schedule) > 0 {
		terms := make([]domain.PaymentTerm, 0, len(draft.Schedule))
		for i, e := range draft.Schedule {
			terms = append(terms, domain.PaymentTerm{
				RevisionID:  revisionID,
				Position:    i,
				Percentage:  e.Percentage,
				Description: e.Description,
			})
		}

		_ = rc.AddAction(appctx.ActionFunc("insert payment_terms", func(ctx context.Context) error {
			return s.store.InsertPaymentTerms(ctx, revisionID, terms)
		}))
	}

	if legal := strings.TrimSpace(draft.LegalTerms); legal != "" {
		_ = rc.AddAction(appctx.ActionFunc("insert legal_terms", func(ctx context.Context) error {
			return s.store.InsertLegalTerms(ctx, revisionID, draft.LegalTerms)
		}))
	}

	if comments := strings.TrimSpace(draft.ClientComments); comments != "" {
		_ = rc.AddAction(appctx.ActionFunc("insert client_comments", func(ctx context.Context) error {
			return s.store.InsertClientComment(ctx, revisionID, draft.ClientComments)
		}))
	}
}

func (s *QuoteService) verifySave(ctx context.Context, draft *domain.QuoteDraft, w saveWrites) (savedQuote, error) {
	count, err := s.store.CountItems(ctx, w.revision.ID)
	if err != nil {
		return savedQuote{}, fmt.Errorf("count items of revision %s: %w", w.revision.ID, err)
	}

	if count != len(draft.Items) {
		return savedQuote{}, domain.NewConflictError("quote_items",
			fmt.Sprintf("revision %s has %d item rows, expected %d", w.revision.ID, count, len(draft.Items)))
	}

	return savedQuote{saveWrites: w, itemCount: count}, nil
}

func (s *QuoteService) archiveSave(ctx context.Context, draft *domain.QuoteDraft, v savedQuote) error {
	if s.history == nil {
		return nil
	}

	return s.history.Record(ctx, domain.SaveHistoryEntry{
		QuoteNumber: v.quote.QuoteNumber,
		QuoteID:     v.quote.ID,
		RevisionID:  v.revision.ID,
		Total:       draft.Totals.Total,
		SavedAt:     s.now(),
		Current:     true,
	})
}

func (s *QuoteService) respondSave(ctx context.Context, draft *domain.QuoteDraft, v savedQuote) (domain.SaveResult, error) {
	result := domain.SaveResult{
		ClientID:      v.client.ID,
		QuoteID:       v.quote.ID,
		RevisionID:    v.revision.ID,
		QuoteCreated:  v.quoteCreated,
		ClientCreated: v.clientCreated,
		ItemCount:     v.itemCount,
		Totals:        draft.Totals,
		Schedule:      draft.ScheduleStatus(),
		SavedAt:       s.now(),
	}

	publish(ctx, s.events, QuoteSaved{
		QuoteNumber: v.quote.QuoteNumber,
		QuoteID:     v.quote.ID,
		RevisionID:  v.revision.ID,
		Created:     v.quoteCreated,
		Total:       domain.FormatMoney(draft.Totals.Total),
		SavedAt:     result.SavedAt,
	})

	return result, nil
}

func (s *QuoteService) saveFailed(ctx context.Context, draft *domain.QuoteDraft, err error) {
	step, _ := GetExecutionStep(err)

	publish(ctx, s.events, QuoteSaveFailed{
		QuoteNumber: draft.QuoteNumber,
		Step:        string(step),
		Cause:       err.Error(),
	})
}

func (s *QuoteService) searchLimit(ctx context.Context, requested int) int {
	maxLimit := defaultSearchLimit
	if s.flags != nil {
		maxLimit = s.flags.GetInt(ctx, ports.FlagSearchLimit, defaultSearchLimit)
	}

	if requested <= 0 || requested > maxLimit {
		return maxLimit
	}

	return requested
}

// SearchQuotes finds quotes whose number contains query, newest first.
func (s *QuoteService) SearchQuotes(ctx context.Context, query string, limit int) ([]domain.QuoteSummary, error) {
	quotes, err := s.store.SearchQuotes(ctx, strings.TrimSpace(query), s.searchLimit(ctx, limit))
	if err != nil {
		return nil, fmt.Errorf("search quotes: %w", err)
	}

	return quotes, nil
}

// SearchClients finds clients whose name starts with prefix.
func (s *QuoteService) SearchClients(ctx context.Context, prefix string, limit int) ([]domain.Client, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []domain.Client{}, nil
	}

	clients, err := s.store.SearchClients(ctx, prefix, s.searchLimit(ctx, limit))
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}

	return clients, nil
}

// FindQuote returns the quote with the given number.
func (s *QuoteService) FindQuote(ctx context.Context, quoteNumber string) (domain.PersistedQuote, error) {
	q, err := s.store.FindQuoteByNumber(ctx, strings.TrimSpace(quoteNumber))
	if err != nil {
		return domain.PersistedQuote{}, fmt.Errorf("find quote %q: %w", quoteNumber, err)
	}

	return q, nil
}

// ListRevisions returns the revisions of a quote, highest number first.
func (s *QuoteService) ListRevisions(ctx context.Context, quoteID string) ([]domain.RevisionSummary, error) {
	revs, err := s.store.ListRevisions(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list revisions of quote %s: %w", quoteID, err)
	}

	return revs, nil
}

// LoadRevision reads a revision with its quote, client and children.
func (s *QuoteService) LoadRevision(ctx context.Context, revisionID string) (domain.RevisionBundle, error) {
	b, err := s.store.LoadRevisionBundle(ctx, revisionID)
	if err != nil {
		return domain.RevisionBundle{}, fmt.Errorf("load revision %s: %w", revisionID, err)
	}

	return b, nil
}

// History returns the local save history of a quote number, newest first.
func (s *QuoteService) History(ctx context.Context, quoteNumber string) ([]domain.SaveHistoryEntry, error) {
	if s.history == nil {
		return []domain.SaveHistoryEntry{}, nil
	}

	entries, err := s.history.List(ctx, quoteNumber)
	if err != nil {
		return nil, fmt.Errorf("list save history of %q: %w", quoteNumber, err)
	}

	return entries, nil
}

// SetStatus moves a quote to status.
func (s *QuoteService) SetStatus(ctx context.Context, quoteID string, status domain.QuoteStatus) error {
	q, err := s.store.FindQuoteByID(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("find quote %s: %w", quoteID, err)
	}

	q.Status = status
	q.CurrentRevision = q.CurrentRevisionNumber()

	if err := s.store.UpdateQuote(ctx, q); err != nil {
		return fmt.Errorf("set status of quote %s: %w", quoteID, err)
	}

	return nil
}
