// Package postgrest implements the record store and view tracker on top of a
// hosted PostgREST API such as Supabase.
//
// Every call goes through clients.Client, so reads and deletes are retried and
// all calls share one circuit breaker. Single-row reads ask for an object
// response; PostgREST answers 406 / PGRST116 when nothing matched, which the
// store reports as domain.ErrNotFound.
package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jsamuelsen/quotedesk/internal/adapters/clients"
	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

const (
	restPrefix = "/rest/v1/"

	mediaObject = "application/vnd.pgrst.object+json"

	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
	preferCountExact     = "count=exact"

	// trackViewFunction is the stored procedure that bumps a revision's view counter.
	trackViewFunction = "track_quote_view"
)

// Table names.
const (
	tableClients   = "clients"
	tableQuotes    = "quotes"
	tableRevisions = "quote_revisions"
	tableFeedback  = "client_feedback"
)

// bundleSelect embeds a revision's parents and children in one read.
const bundleSelect = "*,quote:quotes(*,client:clients(*)),quote_items(*),payment_terms(*),legal_terms(*),client_comments(*)"

// Config configures a Store.
type Config struct {
	// APIKey is sent as both the apikey header and the bearer token.
	APIKey string

	// Schema selects a non-default schema through the profile headers.
	Schema string

	Logger *slog.Logger
}

// Store is a ports.Store and ports.ViewTracker backed by PostgREST.
type Store struct {
	client *clients.Client
	schema string
	logger *slog.Logger
	now    func() time.Time
}

var (
	_ ports.Store       = (*Store)(nil)
	_ ports.ViewTracker = (*Store)(nil)
)

// AuthFunc returns the clients.Config hook that authenticates requests with key.
func AuthFunc(key string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("apikey", key)
		r.Header.Set("Authorization", "Bearer "+key)
	}
}

// New creates a store. The client should be built with AuthFunc(cfg.APIKey).
func New(client *clients.Client, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("postgrest: client is required")
	}

	if cfg.APIKey == "" {
		return nil, errors.New("postgrest: api key is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	schema := cfg.Schema
	if schema == "public" {
		schema = ""
	}

	return &Store{
		client: client,
		schema: schema,
		logger: logger.With(slog.String("component", "postgrest.Store")),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// call is one request plus what to report when it fails.
type call struct {
	op     string
	table  string
	entity string
	key    string

	method string
	path   string
	query  url.Values
	header http.Header
	body   any
}

func (s *Store) send(ctx context.Context, c call) (*http.Response, error) {
	header := c.header
	if header == nil {
		header = http.Header{}
	}

	if s.schema != "" {
		header.Set("Accept-Profile", s.schema)
		header.Set("Content-Profile", s.schema)
	}

	path := c.path
	if path == "" {
		path = restPrefix + c.table
	}

	resp, err := s.client.Send(ctx, clients.Request{
		Method: c.method,
		Path:   path,
		Query:  c.query,
		Header: header,
		Body:   c.body,
	})
	if err != nil {
		return nil, domain.NewStoreError(c.op, c.table, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer closeBody(resp, s.logger)

		apiErr := parseAPIError(resp)
		mapped := mapAPIError(apiErr, c.op, c.table, c.entity, c.key)

		if !domain.IsNotFound(mapped) {
			s.logger.ErrorContext(ctx, "store request failed",
				slog.String("op", c.op),
				slog.String("table", c.table),
				slog.Int("status", apiErr.Status),
				slog.String("code", apiErr.Code),
				slog.String("message", apiErr.Message),
				slog.String("details", apiErr.Details),
				slog.String("hint", apiErr.Hint),
			)
		}

		return nil, mapped
	}

	return resp, nil
}

// do sends c and decodes a JSON body into out when out is non-nil.
func (s *Store) do(ctx context.Context, c call, out any) error {
	resp, err := s.send(ctx, c)
	if err != nil {
		return err
	}
	defer closeBody(resp, s.logger)

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewStoreError(c.op, c.table, fmt.Errorf("decoding response: %w", err))
	}

	return nil
}

func (s *Store) selectOne(ctx context.Context, table, entity, key string, query url.Values, out any) error {
	return s.do(ctx, call{
		op: "select", table: table, entity: entity, key: key,
		method: http.MethodGet,
		query:  query,
		header: http.Header{"Accept": {mediaObject}},
	}, out)
}

func (s *Store) selectMany(ctx context.Context, table string, query url.Values, out any) error {
	return s.do(ctx, call{op: "select", table: table, entity: table, method: http.MethodGet, query: query}, out)
}

func (s *Store) insertOne(ctx context.Context, table, entity string, row, out any) error {
	return s.do(ctx, call{
		op: "insert", table: table, entity: entity,
		method: http.MethodPost,
		query:  url.Values{"select": {"*"}},
		header: http.Header{"Prefer": {preferRepresentation}, "Accept": {mediaObject}},
		body:   row,
	}, out)
}

func (s *Store) insertMany(ctx context.Context, table string, rows any) error {
	return s.do(ctx, call{
		op: "insert", table: table, entity: table,
		method: http.MethodPost,
		header: http.Header{"Prefer": {preferMinimal}},
		body:   rows,
	}, nil)
}

// update patches the rows matching filter and reports NotFound when none matched.
func (s *Store) update(ctx context.Context, table, entity, key string, filter url.Values, patch any) error {
	filter.Set("select", "id")

	var updated []struct {
		ID string `json:"id"`
	}

	err := s.do(ctx, call{
		op: "update", table: table, entity: entity, key: key,
		method: http.MethodPatch,
		query:  filter,
		header: http.Header{"Prefer": {preferRepresentation}},
		body:   patch,
	}, &updated)
	if err != nil {
		return err
	}

	if len(updated) == 0 {
		return domain.NewNotFoundError(entity, key)
	}

	return nil
}

func eq(v string) string {
	return "eq." + v
}

// FindClientByName implements ports.ClientStore.
func (s *Store) FindClientByName(ctx context.Context, name string) (domain.Client, error) {
	var row clientRow

	err := s.selectOne(ctx, tableClients, "client", name, url.Values{
		"select": {"*"},
		"name":   {eq(name)},
		"order":  {"created_at.asc"},
		"limit":  {"1"},
	}, &row)
	if err != nil {
		return domain.Client{}, err
	}

	return row.toDomain(), nil
}

// CreateClient implements ports.ClientStore.
func (s *Store) CreateClient(ctx context.Context, c domain.Client) (domain.Client, error) {
	var row clientRow
	if err := s.insertOne(ctx, tableClients, "client", clientRow{Name: c.Name, Email: c.Email}, &row); err != nil {
		return domain.Client{}, err
	}

	return row.toDomain(), nil
}

// SearchClients implements ports.ClientStore.
func (s *Store) SearchClients(ctx context.Context, prefix string, limit int) ([]domain.Client, error) {
	q := url.Values{
		"select": {"*"},
		"name":   {"ilike." + likePattern(prefix, false)},
		"order":  {"name.asc"},
	}
	setLimit(q, limit)

	var rows []clientRow
	if err := s.selectMany(ctx, tableClients, q, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Client, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}

	return out, nil
}

// FindQuoteByNumber implements ports.QuoteStore.
func (s *Store) FindQuoteByNumber(ctx context.Context, number string) (domain.PersistedQuote, error) {
	var row quoteRow

	err := s.selectOne(ctx, tableQuotes, "quote", number, url.Values{
		"select":       {"*"},
		"quote_number": {eq(number)},
	}, &row)
	if err != nil {
		return domain.PersistedQuote{}, err
	}

	return row.toDomain(), nil
}

// FindQuoteByID implements ports.QuoteStore.
func (s *Store) FindQuoteByID(ctx context.Context, id string) (domain.PersistedQuote, error) {
	var row quoteRow

	err := s.selectOne(ctx, tableQuotes, "quote", id, url.Values{"select": {"*"}, "id": {eq(id)}}, &row)
	if err != nil {
		return domain.PersistedQuote{}, err
	}

	return row.toDomain(), nil
}

// CreateQuote implements ports.QuoteStore. A duplicate quote number is a conflict.
func (s *Store) CreateQuote(ctx context.Context, q domain.PersistedQuote) (domain.PersistedQuote, error) {
	var row quoteRow
	if err := s.insertOne(ctx, tableQuotes, "quote", newQuoteRow(q), &row); err != nil {
		return domain.PersistedQuote{}, err
	}

	return row.toDomain(), nil
}

// UpdateQuote implements ports.QuoteStore.
func (s *Store) UpdateQuote(ctx context.Context, q domain.PersistedQuote) error {
	return s.update(ctx, tableQuotes, "quote", q.ID, url.Values{"id": {eq(q.ID)}}, quotePatch{
		ClientID:        q.ClientID,
		Status:          string(q.Status),
		CurrentRevision: q.CurrentRevisionNumber(),
		UpdatedAt:       s.now(),
	})
}

// SearchQuotes implements ports.QuoteStore.
func (s *Store) SearchQuotes(ctx context.Context, query string, limit int) ([]domain.QuoteSummary, error) {
	q := url.Values{
		"select": {"id,quote_number,status,updated_at,client:clients(name)"},
		"order":  {"updated_at.desc,quote_number.asc"},
	}
	if query != "" {
		q.Set("quote_number", "ilike."+likePattern(query, true))
	}

	setLimit(q, limit)

	var rows []quoteRow
	if err := s.selectMany(ctx, tableQuotes, q, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.QuoteSummary, 0, len(rows))
	for _, r := range rows {
		sum := domain.QuoteSummary{
			QuoteID:     r.ID,
			QuoteNumber: r.QuoteNumber,
			Status:      domain.QuoteStatus(r.Status),
			UpdatedAt:   r.UpdatedAt,
		}
		if r.Client != nil {
			sum.ClientName = r.Client.Name
		}

		out = append(out, sum)
	}

	return out, nil
}

// FindRevision implements ports.RevisionStore.
func (s *Store) FindRevision(ctx context.Context, quoteID string, number int) (domain.QuoteRevision, error) {
	var row revisionRow

	err := s.selectOne(ctx, tableRevisions, "quote revision", quoteID, url.Values{
		"select":          {"*"},
		"quote_id":        {eq(quoteID)},
		"revision_number": {eq(strconv.Itoa(number))},
	}, &row)
	if err != nil {
		return domain.QuoteRevision{}, err
	}

	return row.toDomain(), nil
}

// CreateRevision implements ports.RevisionStore.
func (s *Store) CreateRevision(ctx context.Context, r domain.QuoteRevision) (domain.QuoteRevision, error) {
	var row revisionRow

	err := s.insertOne(ctx, tableRevisions, "quote revision", revisionInsert{
		QuoteID:        r.QuoteID,
		RevisionNumber: r.RevisionNumber,
		revisionFields: newRevisionFields(r),
	}, &row)
	if err != nil {
		return domain.QuoteRevision{}, err
	}

	return row.toDomain(), nil
}

// UpdateRevision implements ports.RevisionStore. View counters are not part of the patch.
func (s *Store) UpdateRevision(ctx context.Context, r domain.QuoteRevision) error {
	return s.update(ctx, tableRevisions, "quote revision", r.ID, url.Values{"id": {eq(r.ID)}}, revisionPatch{
		revisionFields: newRevisionFields(r),
		UpdatedAt:      s.now(),
	})
}

// ListRevisions implements ports.RevisionStore.
func (s *Store) ListRevisions(ctx context.Context, quoteID string) ([]domain.RevisionSummary, error) {
	var rows []revisionRow

	err := s.selectMany(ctx, tableRevisions, url.Values{
		"select":   {"id,quote_id,revision_number,updated_at"},
		"quote_id": {eq(quoteID)},
		"order":    {"revision_number.desc"},
	}, &rows)
	if err != nil {
		return nil, err
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

// DeleteRevisionChildren implements ports.RevisionStore.
func (s *Store) DeleteRevisionChildren(ctx context.Context, set ports.ChildRecordSet, revisionID string) error {
	switch set {
	case ports.RecordSetItems, ports.RecordSetPaymentTerms, ports.RecordSetLegalTerms, ports.RecordSetClientComments:
	default:
		return domain.NewValidationErrorWithValue("record_set", "unknown record set", string(set))
	}

	return s.do(ctx, call{
		op: "delete", table: string(set), entity: string(set),
		method: http.MethodDelete,
		query:  url.Values{"quote_revision_id": {eq(revisionID)}},
		header: http.Header{"Prefer": {preferMinimal}},
	}, nil)
}

// InsertItems implements ports.RevisionStore.
func (s *Store) InsertItems(ctx context.Context, revisionID string, items []domain.RevisionItem) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]itemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow{
			RevisionID:  revisionID,
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}

	return s.insertMany(ctx, string(ports.RecordSetItems), rows)
}

// InsertPaymentTerms implements ports.RevisionStore.
func (s *Store) InsertPaymentTerms(ctx context.Context, revisionID string, terms []domain.PaymentTerm) error {
	if len(terms) == 0 {
		return nil
	}

	rows := make([]termRow, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, termRow{
			RevisionID:  revisionID,
			Position:    t.Position,
			Percentage:  t.Percentage,
			Description: t.Description,
		})
	}

	return s.insertMany(ctx, string(ports.RecordSetPaymentTerms), rows)
}

// InsertLegalTerms implements ports.RevisionStore.
func (s *Store) InsertLegalTerms(ctx context.Context, revisionID, content string) error {
	return s.insertMany(ctx, string(ports.RecordSetLegalTerms), []textRow{{RevisionID: revisionID, Content: content}})
}

// InsertClientComment implements ports.RevisionStore.
func (s *Store) InsertClientComment(ctx context.Context, revisionID, content string) error {
	return s.insertMany(ctx, string(ports.RecordSetClientComments), []textRow{{RevisionID: revisionID, Content: content}})
}

// CountItems implements ports.RevisionStore with a HEAD request and an exact count.
func (s *Store) CountItems(ctx context.Context, revisionID string) (int, error) {
	table := string(ports.RecordSetItems)

	resp, err := s.send(ctx, call{
		op: "count", table: table, entity: table,
		method: http.MethodHead,
		query:  url.Values{"select": {"id"}, "quote_revision_id": {eq(revisionID)}},
		header: http.Header{"Prefer": {preferCountExact}},
	})
	if err != nil {
		return 0, err
	}
	defer closeBody(resp, s.logger)

	n, err := parseContentRangeTotal(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, domain.NewStoreError("count", table, err)
	}

	return n, nil
}

// LoadRevisionBundle implements ports.RevisionStore with a single embedded read.
func (s *Store) LoadRevisionBundle(ctx context.Context, revisionID string) (domain.RevisionBundle, error) {
	var row bundleRow

	err := s.selectOne(ctx, tableRevisions, "quote revision", revisionID, url.Values{
		"select":                {bundleSelect},
		"id":                    {eq(revisionID)},
		"quote_items.order":     {"position.asc"},
		"payment_terms.order":   {"position.asc"},
		"client_comments.order": {"created_at.asc"},
	}, &row)
	if err != nil {
		return domain.RevisionBundle{}, err
	}

	return row.toDomain(), nil
}

// InsertFeedback implements ports.FeedbackStore.
func (s *Store) InsertFeedback(ctx context.Context, f domain.ClientFeedback) (domain.ClientFeedback, error) {
	var row feedbackRow

	err := s.insertOne(ctx, tableFeedback, "client feedback", feedbackRow{
		QuoteID:     f.QuoteID,
		RevisionID:  f.RevisionID,
		ClientEmail: f.ClientEmail,
		Action:      string(f.Action),
		Comment:     f.Comment,
		CreatedAt:   f.CreatedAt,
	}, &row)
	if err != nil {
		return domain.ClientFeedback{}, err
	}

	return row.toDomain(), nil
}

// ListFeedback implements ports.FeedbackStore, oldest first.
func (s *Store) ListFeedback(ctx context.Context, revisionID string) ([]domain.ClientFeedback, error) {
	var rows []feedbackRow

	err := s.selectMany(ctx, tableFeedback, url.Values{
		"select":            {"*"},
		"quote_revision_id": {eq(revisionID)},
		"order":             {"created_at.asc"},
	}, &rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ClientFeedback, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}

	return out, nil
}

// TrackView implements ports.ViewTracker through the track_quote_view RPC.
func (s *Store) TrackView(ctx context.Context, revisionID string) (bool, error) {
	var recorded bool

	err := s.do(ctx, call{
		op: "rpc", table: trackViewFunction, entity: "quote revision", key: revisionID,
		method: http.MethodPost,
		path:   restPrefix + "rpc/" + trackViewFunction,
		body:   map[string]string{"revision_id": revisionID},
	}, &recorded)

	return recorded, err
}

// Ping implements the readiness check. An open circuit fails without a request.
func (s *Store) Ping(ctx context.Context) error {
	if snap := s.client.Circuit(); snap.State == clients.StateOpen {
		return fmt.Errorf("postgrest circuit open until %s", snap.RetryAt.Format(time.RFC3339))
	}

	return s.do(ctx, call{
		op: "ping", table: tableQuotes, entity: "quote",
		method: http.MethodGet,
		query:  url.Values{"select": {"id"}, "limit": {"1"}},
	}, nil)
}

// likePattern builds an ilike operand. PostgREST uses * as the wildcard; the
// characters that delimit filter syntax are dropped from user input.
func likePattern(s string, contains bool) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '*', '%', ',', '(', ')', '"', '\\':
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(s))

	if contains {
		return "*" + s + "*"
	}

	return s + "*"
}

func setLimit(q url.Values, limit int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

// parseContentRangeTotal reads the total from "0-4/5" or "*/0".
func parseContentRangeTotal(h string) (int, error) {
	_, total, ok := strings.Cut(h, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("content-range %q has no exact count", h)
	}

	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("content-range %q: %w", h, err)
	}

	return n, nil
}

func closeBody(resp *http.Response, logger *slog.Logger) {
	_, _ = io.Copy(io.Discard, resp.Body)

	if err := resp.Body.Close(); err != nil {
		logger.Debug("failed to close response body", slog.Any("error", err))
	}
}
