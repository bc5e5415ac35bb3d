// Package memory provides an in-process record store for development and tests.
//
// It keeps the same record sets as the hosted store and follows the same rules:
// quote numbers are unique, lookups that match nothing return domain.ErrNotFound,
// and child rows are returned in position order. Nothing survives a restart.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// Store is a map-backed ports.Store. It also implements ports.ViewTracker.
type Store struct {
	mu sync.RWMutex

	clients   map[string]domain.Client
	quotes    map[string]domain.PersistedQuote
	revisions map[string]domain.QuoteRevision
	items     map[string][]domain.RevisionItem
	terms     map[string][]domain.PaymentTerm
	legal     map[string]domain.LegalTerms
	comments  map[string][]domain.ClientComment
	feedback  map[string][]domain.ClientFeedback

	now func() time.Time
}

var (
	_ ports.Store       = (*Store)(nil)
	_ ports.ViewTracker = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		clients:   make(map[string]domain.Client),
		quotes:    make(map[string]domain.PersistedQuote),
		revisions: make(map[string]domain.QuoteRevision),
		items:     make(map[string][]domain.RevisionItem),
		terms:     make(map[string][]domain.PaymentTerm),
		legal:     make(map[string]domain.LegalTerms),
		comments:  make(map[string][]domain.ClientComment),
		feedback:  make(map[string][]domain.ClientFeedback),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FindClientByName implements ports.ClientStore.
func (s *Store) FindClientByName(_ context.Context, name string) (domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		if c.Name == name {
			return c, nil
		}
	}

	return domain.Client{}, domain.NewNotFoundError("client", name)
}

// CreateClient implements ports.ClientStore.
func (s *Store) CreateClient(_ context.Context, c domain.Client) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	s.clients[c.ID] = c

	return c, nil
}

// SearchClients implements ports.ClientStore.
func (s *Store) SearchClients(_ context.Context, prefix string, limit int) ([]domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(prefix)
	out := []domain.Client{}

	for _, c := range s.clients {
		if strings.HasPrefix(strings.ToLower(c.Name), lower) {
			out = append(out, c)
		}
	}

	slices.SortFunc(out, func(a, b domain.Client) int { return cmp.Compare(a.Name, b.Name) })

	return truncate(out, limit), nil
}

// FindQuoteByNumber implements ports.QuoteStore.
func (s *Store) FindQuoteByNumber(_ context.Context, number string) (domain.PersistedQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quotes {
		if q.QuoteNumber == number {
			return q, nil
		}
	}

	return domain.PersistedQuote{}, domain.NewNotFoundError("quote", number)
}

// FindQuoteByID implements ports.QuoteStore.
func (s *Store) FindQuoteByID(_ context.Context, id string) (domain.PersistedQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[id]
	if !ok {
		return domain.PersistedQuote{}, domain.NewNotFoundError("quote", id)
	}

	return q, nil
}

// CreateQuote implements ports.QuoteStore. A duplicate quote number is a conflict.
func (s *Store) CreateQuote(_ context.Context, q domain.PersistedQuote) (domain.PersistedQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.quotes {
		if existing.QuoteNumber == q.QuoteNumber {
			return domain.PersistedQuote{}, domain.NewConflictError("quote", "quote number "+q.QuoteNumber+" already exists")
		}
	}

	now := s.now()
	q.ID = uuid.NewString()
	q.CreatedAt, q.UpdatedAt = now, now
	s.quotes[q.ID] = q

	return q, nil
}

// UpdateQuote implements ports.QuoteStore.
func (s *Store) UpdateQuote(_ context.Context, q domain.PersistedQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.quotes[q.ID]
	if !ok {
		return domain.NewNotFoundError("quote", q.ID)
	}

	existing.ClientID = q.ClientID
	existing.Status = q.Status
	existing.CurrentRevision = q.CurrentRevision
	existing.UpdatedAt = s.now()
	s.quotes[q.ID] = existing

	return nil
}

// SearchQuotes implements ports.QuoteStore.
func (s *Store) SearchQuotes(_ context.Context, query string, limit int) ([]domain.QuoteSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.QuoteSummary{}

	for _, q := range s.quotes {
		if !strings.Contains(strings.ToLower(q.QuoteNumber), strings.ToLower(query)) {
			continue
		}

		out = append(out, domain.QuoteSummary{
			QuoteID:     q.ID,
			QuoteNumber: q.QuoteNumber,
			ClientName:  s.clients[q.ClientID].Name,
			Status:      q.Status,
			UpdatedAt:   q.UpdatedAt,
		})
	}

	slices.SortFunc(out, func(a, b domain.QuoteSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.QuoteNumber, b.QuoteNumber)
	})

	return truncate(out, limit), nil
}

// FindRevision implements ports.RevisionStore.
func (s *Store) FindRevision(_ context.Context, quoteID string, number int) (domain.QuoteRevision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.revisions {
		if r.QuoteID == quoteID && r.RevisionNumber == number {
			return r, nil
		}
	}

	return domain.QuoteRevision{}, domain.NewNotFoundError("quote revision", quoteID)
}

// CreateRevision implements ports.RevisionStore.
func (s *Store) CreateRevision(_ context.Context, r domain.QuoteRevision) (domain.QuoteRevision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[r.QuoteID]; !ok {
		return domain.QuoteRevision{}, domain.NewNotFoundError("quote", r.QuoteID)
	}

	now := s.now()
	r.ID = uuid.NewString()
	r.CreatedAt, r.UpdatedAt = now, now
	s.revisions[r.ID] = r

	return r, nil
}

// UpdateRevision implements ports.RevisionStore. View counters are left as stored.
func (s *Store) UpdateRevision(_ context.Context, r domain.QuoteRevision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.revisions[r.ID]
	if !ok {
		return domain.NewNotFoundError("quote revision", r.ID)
	}

	r.QuoteID = existing.QuoteID
	r.RevisionNumber = existing.RevisionNumber
	r.ViewCount = existing.ViewCount
	r.LastViewedAt = existing.LastViewedAt
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now()
	s.revisions[r.ID] = r

	return nil
}

// ListRevisions implements ports.RevisionStore.
func (s *Store) ListRevisions(_ context.Context, quoteID string) ([]domain.RevisionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.RevisionSummary{}

	for _, r := range s.revisions {
		if r.QuoteID == quoteID {
			out = append(out, domain.RevisionSummary{
				ID:             r.ID,
				QuoteID:        r.QuoteID,
				RevisionNumber: r.RevisionNumber,
				UpdatedAt:      r.UpdatedAt,
			})
		}
	}

	slices.SortFunc(out, func(a, b domain.RevisionSummary) int {
		return cmp.Compare(b.RevisionNumber, a.RevisionNumber)
	})

	return out, nil
}

// DeleteRevisionChildren implements ports.RevisionStore.
func (s *Store) DeleteRevisionChildren(_ context.Context, set ports.ChildRecordSet, revisionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch set {
	case ports.RecordSetItems:
		delete(s.items, revisionID)
	case ports.RecordSetPaymentTerms:
		delete(s.terms, revisionID)
	case ports.RecordSetLegalTerms:
		delete(s.legal, revisionID)
	case ports.RecordSetClientComments:
		delete(s.comments, revisionID)
	default:
		return domain.NewValidationErrorWithValue("record_set", "unknown record set", string(set))
	}

	return nil
}

// InsertItems implements ports.RevisionStore.
func (s *Store) InsertItems(_ context.Context, revisionID string, items []domain.RevisionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		it.ID = uuid.NewString()
		it.RevisionID = revisionID
		s.items[revisionID] = append(s.items[revisionID], it)
	}

	return nil
}

// InsertPaymentTerms implements ports.RevisionStore.
func (s *Store) InsertPaymentTerms(_ context.Context, revisionID string, terms []domain.PaymentTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range terms {
		t.ID = uuid.NewString()
		t.RevisionID = revisionID
		s.terms[revisionID] = append(s.terms[revisionID], t)
	}

	return nil
}

// InsertLegalTerms implements ports.RevisionStore.
func (s *Store) InsertLegalTerms(_ context.Context, revisionID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.legal[revisionID] = domain.LegalTerms{ID: uuid.NewString(), RevisionID: revisionID, Content: content}

	return nil
}

// InsertClientComment implements ports.RevisionStore.
func (s *Store) InsertClientComment(_ context.Context, revisionID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments[revisionID] = append(s.comments[revisionID], domain.ClientComment{
		ID:         uuid.NewString(),
		RevisionID: revisionID,
		Content:    content,
		CreatedAt:  s.now(),
	})

	return nil
}

// CountItems implements ports.RevisionStore.
func (s *Store) CountItems(_ context.Context, revisionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items[revisionID]), nil
}

// LoadRevisionBundle implements ports.RevisionStore.
func (s *Store) LoadRevisionBundle(_ context.Context, revisionID string) (domain.RevisionBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rev, ok := s.revisions[revisionID]
	if !ok {
		return domain.RevisionBundle{}, domain.NewNotFoundError("quote revision", revisionID)
	}

	quote := s.quotes[rev.QuoteID]

	b := domain.RevisionBundle{
		Revision:     rev,
		Quote:        quote,
		Client:       s.clients[quote.ClientID],
		Items:        slices.Clone(s.items[revisionID]),
		PaymentTerms: slices.Clone(s.terms[revisionID]),
		Comments:     slices.Clone(s.comments[revisionID]),
	}

	slices.SortStableFunc(b.Items, func(a, c domain.RevisionItem) int { return cmp.Compare(a.Position, c.Position) })
	slices.SortStableFunc(b.PaymentTerms, func(a, c domain.PaymentTerm) int { return cmp.Compare(a.Position, c.Position) })

	if lt, ok := s.legal[revisionID]; ok {
		b.LegalTerms = &lt
	}

	return b, nil
}

// InsertFeedback implements ports.FeedbackStore.
func (s *Store) InsertFeedback(_ context.Context, f domain.ClientFeedback) (domain.ClientFeedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = uuid.NewString()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.now()
	}

	s.feedback[f.RevisionID] = append(s.feedback[f.RevisionID], f)

	return f, nil
}

// ListFeedback implements ports.FeedbackStore, oldest first.
func (s *Store) ListFeedback(_ context.Context, revisionID string) ([]domain.ClientFeedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.feedback[revisionID])
	if out == nil {
		out = []domain.ClientFeedback{}
	}

	return out, nil
}

// TrackView implements ports.ViewTracker.
func (s *Store) TrackView(_ context.Context, revisionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev, ok := s.revisions[revisionID]
	if !ok {
		return false, nil
	}

	now := s.now()
	rev.ViewCount++
	rev.LastViewedAt = &now
	s.revisions[revisionID] = rev

	return true, nil
}

// Ping implements the readiness check. The memory store is always reachable.
func (s *Store) Ping(context.Context) error {
	return nil
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}

	return rows
}
