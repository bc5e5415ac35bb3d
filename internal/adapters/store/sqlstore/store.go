// Package sqlstore implements the record store with gorm over PostgreSQL or SQLite.
//
// It keeps the table layout of the hosted store, so a database migrated here
// can also be served through PostgREST.
package sqlstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

// Store is a ports.Store and ports.ViewTracker on a gorm connection.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var (
	_ ports.Store       = (*Store)(nil)
	_ ports.ViewTracker = (*Store)(nil)
)

// New wraps an open connection. See Open.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Ping checks the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// mapError converts gorm errors into domain errors.
func mapError(err error, op, table, entity, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NewNotFoundError(entity, key)
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return domain.NewConflictError(entity, "duplicate key")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NewConflictError(entity, "referenced record does not exist")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return domain.NewValidationErrorWithValue(table, "check constraint violated", key)
	default:
		return domain.NewStoreError(op, table, err)
	}
}

// FindClientByName implements ports.ClientStore. The oldest match wins.
func (s *Store) FindClientByName(ctx context.Context, name string) (domain.Client, error) {
	var m clientModel

	err := s.db.WithContext(ctx).Where("name = ?", name).Order("created_at asc").First(&m).Error
	if err != nil {
		return domain.Client{}, mapError(err, "select", "clients", "client", name)
	}

	return m.toDomain(), nil
}

// CreateClient implements ports.ClientStore.
func (s *Store) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	m := clientModel{Name: c.Name, Email: c.Email}

	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Client{}, mapError(err, "insert", "clients", "client", c.Name)
	}

	return m.toDomain(), nil
}

// SearchClients implements ports.ClientStore with a case-insensitive prefix match.
func (s *Store) SearchClients(ctx context.Context, prefix string, limit int) ([]domain.Client, error) {
	var rows []clientModel

	q := s.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(strings.TrimSpace(prefix)))+"%").
		Order("name asc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&rows).Error; err != nil {
		return nil, mapError(err, "select", "clients", "client", prefix)
	}

	out := make([]domain.Client, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}

	return out, nil
}

// FindQuoteByNumber implements ports.QuoteStore.
func (s *Store) FindQuoteByNumber(ctx context.Context, number string) (domain.PersistedQuote, error) {
	var m quoteModel

	if err := s.db.WithContext(ctx).Where("quote_number = ?", number).First(&m).Error; err != nil {
		return domain.PersistedQuote{}, mapError(err, "select", "quotes", "quote", number)
	}

	return m.toDomain(), nil
}

// FindQuoteByID implements ports.QuoteStore.
func (s *Store) FindQuoteByID(ctx context.Context, id string) (domain.PersistedQuote, error) {
	var m quoteModel

	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return domain.PersistedQuote{}, mapError(err, "select", "quotes", "quote", id)
	}

	return m.toDomain(), nil
}

// CreateQuote implements ports.QuoteStore.
func (s *Store) CreateQuote(ctx context.Context, q domain.PersistedQuote) (domain.PersistedQuote, error) {
	m := quoteModel{
		QuoteNumber:     q.QuoteNumber,
		ClientID:        q.ClientID,
		Status:          string(q.Status),
		CurrentRevision: q.CurrentRevisionNumber(),
	}

	if err := s.db.WithContext(ctx).Omit("Client").Create(&m).Error; err != nil {
		return domain.PersistedQuote{}, mapError(err, "insert", "quotes", "quote", q.QuoteNumber)
	}

	return m.toDomain(), nil
}

// UpdateQuote implements ports.QuoteStore.
func (s *Store) UpdateQuote(ctx context.Context, q domain.PersistedQuote) error {
	res := s.db.WithContext(ctx).Model(&quoteModel{}).Where("id = ?", q.ID).Updates(map[string]any{
		"client_id":        q.ClientID,
		"status":           string(q.Status),
		"current_revision": q.CurrentRevisionNumber(),
		"updated_at":       s.now(),
	})
	if res.Error != nil {
		return mapError(res.Error, "update", "quotes", "quote", q.ID)
	}

	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("quote", q.ID)
	}

	return nil
}

// SearchQuotes implements ports.QuoteStore.
func (s *Store) SearchQuotes(ctx context.Context, query string, limit int) ([]domain.QuoteSummary, error) {
	var rows []quoteModel

	q := s.db.WithContext(ctx).Preload("Client").Order("updated_at desc, quote_number asc")
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where(`LOWER(quote_number) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(query))+"%")
	}

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Find(&rows).Error; err != nil {
		return nil, mapError(err, "select", "quotes", "quote", query)
	}

	out := make([]domain.QuoteSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QuoteSummary{
			QuoteID:     r.ID,
			QuoteNumber: r.QuoteNumber,
			ClientName:  r.Client.Name,
			Status:      domain.QuoteStatus(r.Status),
			UpdatedAt:   r.UpdatedAt,
		})
	}

	return out, nil
}

// FindRevision implements ports.RevisionStore.
func (s *Store) FindRevision(ctx context.Context, quoteID string, number int) (domain.QuoteRevision, error) {
	var m revisionModel

	err := s.db.WithContext(ctx).Where("quote_id = ? AND revision_number = ?", quoteID, number).First(&m).Error
	if err != nil {
		return domain.QuoteRevision{}, mapError(err, "select", "quote_revisions", "quote revision", quoteID)
	}

	return m.toDomain(), nil
}

// CreateRevision implements ports.RevisionStore.
func (s *Store) CreateRevision(ctx context.Context, r domain.QuoteRevision) (domain.QuoteRevision, error) {
	m := newRevisionModel(r)

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		return domain.QuoteRevision{}, mapError(err, "insert", "quote_revisions", "quote revision", r.QuoteID)
	}

	return m.toDomain(), nil
}

// UpdateRevision implements ports.RevisionStore.
func (s *Store) UpdateRevision(ctx context.Context, r domain.QuoteRevision) error {
	cols := newRevisionModel(r).editableColumns()
	cols["updated_at"] = s.now()

	res := s.db.WithContext(ctx).Model(&revisionModel{}).Where("id = ?", r.ID).Updates(cols)
	if res.Error != nil {
		return mapError(res.Error, "update", "quote_revisions", "quote revision", r.ID)
	}

	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("quote revision", r.ID)
	}

	return nil
}

// ListRevisions implements ports.RevisionStore.
func (s *Store) ListRevisions(ctx context.Context, quoteID string) ([]domain.RevisionSummary, error) {
	var rows []revisionModel

	err := s.db.WithContext(ctx).
		Select("id", "quote_id", "revision_number", "updated_at").
		Where("quote_id = ?", quoteID).
		Order("revision_number desc").
		Find(&rows).Error
	if err != nil {
		return nil, mapError(err, "select", "quote_revisions", "quote revision", quoteID)
	}

	out := make([]domain.RevisionSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RevisionSummary{
			ID:             r.ID,
			QuoteID:        r.QuoteID,
			RevisionNumber: r.RevisionNumber,
			UpdatedAt:      r.UpdatedAt,
		})
	}

	return out, nil
}

func childModel(set ports.ChildRecordSet) (any, bool) {
	switch set {
	case ports.RecordSetItems:
		return &itemModel{}, true
	case ports.RecordSetPaymentTerms:
		return &termModel{}, true
	case ports.RecordSetLegalTerms:
		return &legalModel{}, true
	case ports.RecordSetClientComments:
		return &commentModel{}, true
	default:
		return nil, false
	}
}

// DeleteRevisionChildren implements ports.RevisionStore.
func (s *Store) DeleteRevisionChildren(ctx context.Context, set ports.ChildRecordSet, revisionID string) error {
	model, ok := childModel(set)
	if !ok {
		return domain.NewValidationErrorWithValue("record_set", "unknown record set", string(set))
	}

	err := s.db.WithContext(ctx).Where("quote_revision_id = ?", revisionID).Delete(model).Error

	return mapError(err, "delete", string(set), string(set), revisionID)
}

// InsertItems implements ports.RevisionStore.
func (s *Store) InsertItems(ctx context.Context, revisionID string, items []domain.RevisionItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]itemModel, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemModel{
			RevisionID:  revisionID,
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}

	err := s.db.WithContext(ctx).Create(&rows).Error

	return mapError(err, "insert", "quote_items", "quote item", revisionID)
}

// InsertPaymentTerms implements ports.RevisionStore.
func (s *Store) InsertPaymentTerms(ctx context.Context, revisionID string, terms []domain.PaymentTerm) error {
	if len(terms) == 0 {
		return nil
	}

	rows := make([]termModel, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, termModel{
			RevisionID:  revisionID,
			Position:    t.Position,
			Percentage:  t.Percentage,
			Description: t.Description,
		})
	}

	err := s.db.WithContext(ctx).Create(&rows).Error

	return mapError(err, "insert", "payment_terms", "payment term", revisionID)
}

// InsertLegalTerms implements ports.RevisionStore.
func (s *Store) InsertLegalTerms(ctx context.Context, revisionID, content string) error {
	err := s.db.WithContext(ctx).Create(&legalModel{RevisionID: revisionID, Content: content}).Error

	return mapError(err, "insert", "legal_terms", "legal terms", revisionID)
}

// InsertClientComment implements ports.RevisionStore.
func (s *Store) InsertClientComment(ctx context.Context, revisionID, content string) error {
	err := s.db.WithContext(ctx).Create(&commentModel{RevisionID: revisionID, Content: content}).Error

	return mapError(err, "insert", "client_comments", "client comment", revisionID)
}

// CountItems implements ports.RevisionStore.
func (s *Store) CountItems(ctx context.Context, revisionID string) (int, error) {
	var n int64

	err := s.db.WithContext(ctx).Model(&itemModel{}).Where("quote_revision_id = ?", revisionID).Count(&n).Error
	if err != nil {
		return 0, mapError(err, "count", "quote_items", "quote item", revisionID)
	}

	return int(n), nil
}

// LoadRevisionBundle implements ports.RevisionStore.
func (s *Store) LoadRevisionBundle(ctx context.Context, revisionID string) (domain.RevisionBundle, error) {
	var m revisionModel

	err := s.db.WithContext(ctx).
		Preload("Quote.Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("PaymentTerms", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("LegalTerms", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Where("id = ?", revisionID).
		First(&m).Error
	if err != nil {
		return domain.RevisionBundle{}, mapError(err, "select", "quote_revisions", "quote revision", revisionID)
	}

	return m.toBundle(), nil
}

// InsertFeedback implements ports.FeedbackStore.
func (s *Store) InsertFeedback(ctx context.Context, f domain.ClientFeedback) (domain.ClientFeedback, error) {
	m := feedbackModel{
		QuoteID:     f.QuoteID,
		RevisionID:  f.RevisionID,
		ClientEmail: f.ClientEmail,
		Action:      string(f.Action),
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
	}

	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.ClientFeedback{}, mapError(err, "insert", "client_feedback", "client feedback", f.RevisionID)
	}

	return m.toDomain(), nil
}

// ListFeedback implements ports.FeedbackStore, oldest first.
func (s *Store) ListFeedback(ctx context.Context, revisionID string) ([]domain.ClientFeedback, error) {
	var rows []feedbackModel

	err := s.db.WithContext(ctx).Where("quote_revision_id = ?", revisionID).Order("created_at asc").Find(&rows).Error
	if err != nil {
		return nil, mapError(err, "select", "client_feedback", "client feedback", revisionID)
	}

	out := make([]domain.ClientFeedback, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}

	return out, nil
}

// TrackView implements ports.ViewTracker. It bumps the counter without touching updated_at.
func (s *Store) TrackView(ctx context.Context, revisionID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&revisionModel{}).Where("id = ?", revisionID).UpdateColumns(map[string]any{
		"view_count":     gorm.Expr("view_count + 1"),
		"last_viewed_at": s.now(),
	})
	if res.Error != nil {
		return false, mapError(res.Error, "update", "quote_revisions", "quote revision", revisionID)
	}

	return res.RowsAffected == 1, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
