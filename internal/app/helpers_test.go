package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/adapters/store/memory"
	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// recordingStore wraps the memory store, records write calls in order and
// fails the operations listed in failOn.
type recordingStore struct {
	*memory.Store

	mu     sync.Mutex
	calls  []string
	failOn map[string]error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: memory.New(), failOn: map[string]error{}}
}

func (r *recordingStore) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, op)

	return r.failOn[op]
}

func (r *recordingStore) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}

func (r *recordingStore) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = nil
}

func (r *recordingStore) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failOn[op] = err
}

func (r *recordingStore) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	if err := r.record("create client"); err != nil {
		return domain.Client{}, err
	}

	return r.Store.CreateClient(ctx, c)
}

func (r *recordingStore) CreateQuote(ctx context.Context, q domain.PersistedQuote) (domain.PersistedQuote, error) {
	if err := r.record("create quote"); err != nil {
		return domain.PersistedQuote{}, err
	}

	return r.Store.CreateQuote(ctx, q)
}

func (r *recordingStore) UpdateQuote(ctx context.Context, q domain.PersistedQuote) error {
	if err := r.record("update quote"); err != nil {
		return err
	}

	return r.Store.UpdateQuote(ctx, q)
}

func (r *recordingStore) CreateRevision(ctx context.Context, rev domain.QuoteRevision) (domain.QuoteRevision, error) {
	if err := r.record("create revision"); err != nil {
		return domain.QuoteRevision{}, err
	}

	return r.Store.CreateRevision(ctx, rev)
}

func (r *recordingStore) UpdateRevision(ctx context.Context, rev domain.QuoteRevision) error {
	if err := r.record("update revision"); err != nil {
		return err
	}

	return r.Store.UpdateRevision(ctx, rev)
}

func (r *recordingStore) DeleteRevisionChildren(ctx context.Context, set ports.ChildRecordSet, revisionID string) error {
	if err := r.record("delete " + string(set)); err != nil {
		return err
	}

	return r.Store.DeleteRevisionChildren(ctx, set, revisionID)
}

func (r *recordingStore) InsertItems(ctx context.Context, revisionID string, items []domain.RevisionItem) error {
	if err := r.record("insert quote_items"); err != nil {
		return err
	}

	return r.Store.InsertItems(ctx, revisionID, items)
}

func (r *recordingStore) InsertPaymentTerms(ctx context.Context, revisionID string, terms []domain.PaymentTerm) error {
	if err := r.record("insert payment_terms"); err != nil {
		return err
	}

	return r.Store.InsertPaymentTerms(ctx, revisionID, terms)
}

func (r *recordingStore) InsertLegalTerms(ctx context.Context, revisionID, content string) error {
	if err := r.record("insert legal_terms"); err != nil {
		return err
	}

	return r.Store.InsertLegalTerms(ctx, revisionID, content)
}

func (r *recordingStore) InsertClientComment(ctx context.Context, revisionID, content string) error {
	if err := r.record("insert client_comments"); err != nil {
		return err
	}

	return r.Store.InsertClientComment(ctx, revisionID, content)
}

func (r *recordingStore) FindQuoteByNumber(ctx context.Context, number string) (domain.PersistedQuote, error) {
	if err := r.record("find quote"); err != nil {
		return domain.PersistedQuote{}, err
	}

	return r.Store.FindQuoteByNumber(ctx, number)
}

func (r *recordingStore) CountItems(ctx context.Context, revisionID string) (int, error) {
	if err := r.record("count items"); err != nil {
		return 0, err
	}

	return r.Store.CountItems(ctx, revisionID)
}

// sampleDraft returns a saveable draft with two items and a balanced schedule.
func sampleDraft(t *testing.T, number string) *domain.QuoteDraft {
	t.Helper()

	d := domain.NewQuoteDraft("owner-1", dec("0.08"))
	d.ApplyHeader(domain.DraftHeaderPatch{
		ClientName:  ptr("Acme Corp"),
		ClientEmail: ptr("billing@acme.test"),
		QuoteNumber: ptr(number),
		LegalTerms:  ptr("Net 30"),
	})

	if _, err := d.UpdateLineItem(d.Items[0].ID, domain.LineItemPatch{
		Description: ptr("Design"),
		Quantity:    ptr(2),
		UnitPrice:   ptr(dec("100")),
	}); err != nil {
		t.Fatalf("update line item: %v", err)
	}

	if _, err := d.AddLineItem("Hosting", 1, dec("50")); err != nil {
		t.Fatalf("add line item: %v", err)
	}

	d.SetTaxEnabled(true)

	for _, pct := range []string{"60", "40"} {
		e := d.AddScheduleEntry()
		if _, err := d.UpdateScheduleEntry(e.ID, domain.ScheduleEntryPatch{Percentage: ptr(pct)}); err != nil {
			t.Fatalf("update schedule entry: %v", err)
		}
	}

	return d
}

func newQuoteService(store ports.Store, opts ...func(*QuoteServiceConfig)) *QuoteService {
	cfg := QuoteServiceConfig{
		Store:  store,
		Logger: discardLogger(),
		Now:    func() time.Time { return fixedNow },
	}
	for _, o := range opts {
		o(&cfg)
	}

	return NewQuoteService(cfg)
}
