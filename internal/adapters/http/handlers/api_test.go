package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotedesk/internal/adapters/store/memory"
	"github.com/jsamuelsen/quotedesk/internal/app"
	"github.com/jsamuelsen/quotedesk/internal/domain"
	"github.com/jsamuelsen/quotedesk/internal/mocks"
	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/ports"
)

type harness struct {
	t        *testing.T
	engine   *gin.Engine
	store    *memory.Store
	notifier *mocks.MockNotifier
	renderer *mocks.MockDocumentRenderer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()

	quotes := app.NewQuoteService(app.QuoteServiceConfig{Store: store, Logger: logger})

	notifier := mocks.NewMockNotifier(t)
	drafts := app.NewDraftService(app.DraftServiceConfig{
		Quotes:         quotes,
		Notifier:       notifier,
		DefaultTaxRate: decimal.RequireFromString("0.08"),
		PublicBaseURL:  "https://quotes.test",
		Logger:         logger,
	})

	renderer := mocks.NewMockDocumentRenderer(t)
	renderer.EXPECT().Format().Return("pdf").Maybe()

	views := app.NewClientViewService(app.ClientViewConfig{
		Store:     store,
		Renderers: []ports.DocumentRenderer{renderer},
		Logger:    logger,
	})

	engine := gin.New()
	engine.Use(middleware.Identity(config.IdentityConfig{DefaultOwner: "anonymous"}))

	api := engine.Group("/api/v1")
	NewDraftHandler(drafts).RegisterRoutes(api.Group("/drafts"))
	NewQuoteHandler(quotes).RegisterRoutes(api)

	cv := NewClientViewHandler(views, "")
	cv.RegisterRoutes(api.Group("/client"))
	engine.GET("/", cv.Root)

	return &harness{t: t, engine: engine, store: store, notifier: notifier, renderer: renderer}
}

// do sends a request as user and decodes a JSON response into out when out is non-nil.
func (h *harness) do(method, path, user string, body any, out any) *httptest.ResponseRecorder {
	h.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if user != "" {
		req.Header.Set("X-User-ID", user)
	}

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		// Fields dropped by omitempty must not survive from an earlier response.
		reflect.ValueOf(out).Elem().SetZero()
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}

	return w
}

// savedDraft creates a draft for user with one priced item and saves it as number.
func (h *harness) savedDraft(user, number string) (dto.DraftResponse, dto.SaveResponse) {
	h.t.Helper()

	var d dto.DraftResponse
	require.Equal(h.t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/drafts", user, nil, &d).Code)

	base := "/api/v1/drafts/" + d.ID

	w := h.do(http.MethodPatch, base, user, map[string]any{
		"client_name":  "Acme Corp",
		"client_email": "buyer@acme.test",
		"quote_number": number,
	}, nil)
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodPatch, base+"/items/"+d.Items[0].ID, user, map[string]any{
		"description": "Website redesign",
		"quantity":    2,
		"unit_price":  "125.00",
	}, nil)
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())

	var saved dto.SaveResponse
	w = h.do(http.MethodPost, base+"/save", user, nil, &saved)
	require.Contains(h.t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())

	return d, saved
}

func TestDraftHandler_CreateAndGet(t *testing.T) {
	h := newHarness(t)

	var created dto.DraftResponse
	w := h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &created)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/v1/drafts/"+created.ID, w.Header().Get("Location"))
	assert.Len(t, created.Items, 1)
	assert.Equal(t, "8", created.TaxPercent)
	assert.False(t, created.TaxEnabled)
	assert.Equal(t, "0.00", created.Totals.Total)

	var got dto.DraftResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/drafts/"+created.ID, "alice", nil, &got).Code)
	assert.Equal(t, created.ID, got.ID)
}

func TestDraftHandler_OwnerScoping(t *testing.T) {
	h := newHarness(t)

	var created dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &created)

	var errResp dto.ErrorResponse
	w := h.do(http.MethodGet, "/api/v1/drafts/"+created.ID, "bob", nil, &errResp)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, errResp.Error.Code)

	w = h.do(http.MethodGet, "/api/v1/drafts/missing", "alice", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftHandler_LineItems(t *testing.T) {
	h := newHarness(t)

	var d dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &d)
	base := "/api/v1/drafts/" + d.ID

	w := h.do(http.MethodPost, base+"/items", "alice", map[string]any{
		"description": "Hosting",
		"quantity":    3,
		"unit_price":  "10.005",
	}, &d)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, d.Items, 2)
	assert.Equal(t, "30.02", d.Items[1].Total)

	w = h.do(http.MethodPost, base+"/items", "alice", nil, &d)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, d.Items[2].Quantity)

	w = h.do(http.MethodPatch, base+"/items/"+d.Items[1].ID, "alice", map[string]any{"unit_price": "abc"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodDelete, base+"/items/"+d.Items[2].ID, "alice", nil, &d)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, d.Items, 2)

	h.do(http.MethodDelete, base+"/items/"+d.Items[1].ID, "alice", nil, &d)

	var errResp dto.ErrorResponse
	w = h.do(http.MethodDelete, base+"/items/"+d.Items[0].ID, "alice", nil, &errResp)
	assert.Equal(t, http.StatusConflict, w.Code, "the last line item stays")
}

func TestDraftHandler_TaxRateStaging(t *testing.T) {
	h := newHarness(t)

	var d dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &d)
	base := "/api/v1/drafts/" + d.ID

	h.do(http.MethodPatch, base+"/items/"+d.Items[0].ID, "alice", map[string]any{"unit_price": "100"}, nil)
	require.Equal(t, http.StatusOK, h.do(http.MethodPut, base+"/tax", "alice", map[string]any{"enabled": true}, &d).Code)
	assert.Equal(t, "8.00", d.Totals.Tax)

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, base+"/tax-rate", "alice", map[string]any{"percent": "10"}, &d).Code)
	assert.Equal(t, "10", d.StagedPercent)
	assert.Equal(t, "8.00", d.Totals.Tax, "a staged rate does not change totals")

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, base+"/tax-rate/confirm", "alice", nil, &d).Code)
	assert.Empty(t, d.StagedPercent)
	assert.Equal(t, "10", d.TaxPercent)
	assert.Equal(t, "110.00", d.Totals.Total)

	h.do(http.MethodPost, base+"/tax-rate", "alice", map[string]any{"percent": "20"}, nil)
	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, base+"/tax-rate", "alice", nil, &d).Code)
	assert.Equal(t, "10", d.TaxPercent)

	assert.Equal(t, http.StatusBadRequest,
		h.do(http.MethodPut, base+"/tax", "alice", map[string]any{}, nil).Code, "enabled is required")
	assert.Equal(t, http.StatusBadRequest,
		h.do(http.MethodPost, base+"/tax-rate", "alice", map[string]any{"percent": "-1"}, nil).Code)
}

func TestDraftHandler_Schedule(t *testing.T) {
	h := newHarness(t)

	var d dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &d)
	base := "/api/v1/drafts/" + d.ID

	h.do(http.MethodPost, base+"/schedule", "alice", nil, &d)
	h.do(http.MethodPost, base+"/schedule", "alice", nil, &d)
	require.Len(t, d.Schedule, 2)

	h.do(http.MethodPatch, base+"/schedule/"+d.Schedule[0].ID, "alice",
		map[string]any{"percentage": "30", "description": "Deposit"}, &d)
	h.do(http.MethodPatch, base+"/schedule/"+d.Schedule[1].ID, "alice", map[string]any{"percentage": "lots"}, &d)

	assert.Equal(t, dto.ScheduleStatusResponse{Total: "30.00", Balanced: false}, d.ScheduleStatus)

	h.do(http.MethodPatch, base+"/schedule/"+d.Schedule[1].ID, "alice", map[string]any{"percentage": "70"}, &d)
	assert.True(t, d.ScheduleStatus.Balanced)
	assert.Equal(t, "100.00", d.ScheduleStatus.Total)

	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, base+"/schedule/"+d.Schedule[0].ID, "alice", nil, &d).Code)
	assert.Len(t, d.Schedule, 1)
}

func TestDraftHandler_ScheduleTotalHasTwoDecimals(t *testing.T) {
	h := newHarness(t)

	var d dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &d)
	assert.Equal(t, "0.00", d.ScheduleStatus.Total)

	base := "/api/v1/drafts/" + d.ID

	for _, pct := range []string{"60", "40"} {
		h.do(http.MethodPost, base+"/schedule", "alice", nil, &d)
		entry := d.Schedule[len(d.Schedule)-1]
		require.Equal(t, http.StatusOK,
			h.do(http.MethodPatch, base+"/schedule/"+entry.ID, "alice", map[string]any{"percentage": pct}, &d).Code)
	}

	assert.Equal(t, dto.ScheduleStatusResponse{Total: "100.00", Balanced: true}, d.ScheduleStatus)

	h.do(http.MethodPatch, base+"/schedule/"+d.Schedule[1].ID, "alice", map[string]any{"percentage": "30"}, &d)
	assert.Equal(t, dto.ScheduleStatusResponse{Total: "90.00", Balanced: false}, d.ScheduleStatus)
}

func TestDraftHandler_Save(t *testing.T) {
	h := newHarness(t)

	d, saved := h.savedDraft("alice", "Q-100")

	assert.True(t, saved.QuoteCreated)
	assert.True(t, saved.ClientCreated)
	assert.Equal(t, 1, saved.ItemCount)
	assert.Equal(t, "250.00", saved.Totals.Total)
	assert.Equal(t, "Quote created", saved.Message)
	require.NotNil(t, saved.Draft.Saved)
	assert.Equal(t, "https://quotes.test/?revision="+saved.RevisionID, saved.Draft.Saved.ClientLink)

	var again dto.SaveResponse
	w := h.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/save", "alice", nil, &again)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, again.QuoteCreated)
	assert.Equal(t, saved.RevisionID, again.RevisionID, "saves rewrite the current revision")
}

func TestDraftHandler_Save_Validation(t *testing.T) {
	h := newHarness(t)

	var d dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &d)

	var errResp dto.ErrorResponse
	w := h.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/save", "alice", nil, &errResp)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorCodeValidation, errResp.Error.Code)
	assert.Contains(t, errResp.Error.Details, "quote_number")
}

func TestDraftHandler_Send(t *testing.T) {
	h := newHarness(t)

	var unsaved dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &unsaved)
	assert.Equal(t, http.StatusConflict,
		h.do(http.MethodPost, "/api/v1/drafts/"+unsaved.ID+"/send", "alice", nil, nil).Code)

	d, saved := h.savedDraft("alice", "Q-200")

	sentAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	h.notifier.EXPECT().
		SendQuote(mock.Anything, mock.MatchedBy(func(m ports.QuoteEmail) bool {
			return m.To == "buyer@acme.test" && m.QuoteURL == "https://quotes.test/?revision="+saved.RevisionID
		})).
		Return(ports.Delivery{Channel: "smtp", SentAt: sentAt}, nil).
		Once()

	var delivery dto.DeliveryResponse
	w := h.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/send", "alice", nil, &delivery)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "smtp", delivery.Channel)

	var q dto.QuoteResponse
	h.do(http.MethodGet, "/api/v1/quotes/Q-200", "alice", nil, &q)
	assert.Equal(t, "sent", q.Status)
}

func TestDraftHandler_Send_NotifierFailure(t *testing.T) {
	h := newHarness(t)

	d, _ := h.savedDraft("alice", "Q-201")

	h.notifier.EXPECT().SendQuote(mock.Anything, mock.Anything).
		Return(ports.Delivery{}, errors.New("smtp: 421 try later")).Once()

	assert.Equal(t, http.StatusInternalServerError,
		h.do(http.MethodPost, "/api/v1/drafts/"+d.ID+"/send", "alice", nil, nil).Code)

	var q dto.QuoteResponse
	h.do(http.MethodGet, "/api/v1/quotes/Q-201", "alice", nil, &q)
	assert.Equal(t, "draft", q.Status, "the quote is only marked sent after delivery")
}

func TestDraftHandler_Open(t *testing.T) {
	h := newHarness(t)

	_, saved := h.savedDraft("alice", "Q-300")

	var other dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "bob", nil, &other)

	var opened dto.DraftResponse
	w := h.do(http.MethodPost, "/api/v1/drafts/"+other.ID+"/open", "bob", map[string]any{"quote_number": "Q-300"}, &opened)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, other.ID, opened.ID)
	assert.Equal(t, "Acme Corp", opened.ClientName)
	assert.Equal(t, "Website redesign", opened.Items[0].Description)
	require.NotNil(t, opened.Saved)
	assert.Equal(t, saved.RevisionID, opened.Saved.RevisionID)

	var sel dto.SelectionResponse
	h.do(http.MethodGet, "/api/v1/drafts/"+other.ID+"/selection", "bob", nil, &sel)
	assert.Equal(t, domain.SelectionLoaded.String(), sel.State)
	assert.Equal(t, saved.RevisionID, sel.RevisionID)

	assert.Equal(t, http.StatusNotFound,
		h.do(http.MethodPost, "/api/v1/drafts/"+other.ID+"/open", "bob", map[string]any{"quote_number": "Q-404"}, nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		h.do(http.MethodPost, "/api/v1/drafts/"+other.ID+"/open", "bob", map[string]any{"quote_number": " "}, nil).Code)
}

func TestDraftHandler_Delete(t *testing.T) {
	h := newHarness(t)

	var d dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &d)

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/v1/drafts/"+d.ID, "alice", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/v1/drafts/"+d.ID, "alice", nil, nil).Code)
}

func TestDraftHandler_UpdateHeader(t *testing.T) {
	h := newHarness(t)

	var d dto.DraftResponse
	h.do(http.MethodPost, "/api/v1/drafts", "alice", nil, &d)
	base := "/api/v1/drafts/" + d.ID

	w := h.do(http.MethodPatch, base, "alice", map[string]any{
		"expires_at": "2026-12-31",
		"notes":      "Prices exclude travel",
		"recurring":  map[string]any{"enabled": true, "amount": "49.9", "period": "monthly"},
	}, &d)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2026-12-31", d.ExpiresAt)
	assert.Equal(t, "49.90", d.Recurring.Amount)

	h.do(http.MethodPatch, base, "alice", map[string]any{"expires_at": ""}, &d)
	assert.Empty(t, d.ExpiresAt)
	assert.Equal(t, "Prices exclude travel", d.Notes, "absent fields are unchanged")

	assert.Equal(t, http.StatusBadRequest,
		h.do(http.MethodPatch, base, "alice", map[string]any{"expires_at": "31/12/2026"}, nil).Code)
}

func TestQuoteHandler_Lookups(t *testing.T) {
	h := newHarness(t)

	_, saved := h.savedDraft("alice", "Q-400")

	var list dto.ListResponse[dto.QuoteSummaryResponse]
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/quotes?q=Q-4", "alice", nil, &list).Code)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Acme Corp", list.Items[0].ClientName)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/v1/quotes?limit=500", "alice", nil, nil).Code)

	var revs dto.ListResponse[dto.RevisionSummaryResponse]
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/quotes/Q-400/revisions", "alice", nil, &revs).Code)
	require.Equal(t, 1, revs.Count)
	assert.Equal(t, saved.RevisionID, revs.Items[0].ID)

	var view dto.ClientViewResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/revisions/"+saved.RevisionID, "alice", nil, &view).Code)
	assert.Equal(t, "250.00", view.Totals.Subtotal)

	var clients dto.ListResponse[dto.ClientResponse]
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/clients?q=Acm", "alice", nil, &clients).Code)
	require.Equal(t, 1, clients.Count)
	assert.Equal(t, "buyer@acme.test", clients.Items[0].Email)

	var history dto.ListResponse[dto.HistoryEntryResponse]
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/quotes/Q-400/history", "alice", nil, &history).Code)
	assert.Equal(t, 0, history.Count, "no local history store is configured")

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/v1/quotes/Q-404", "alice", nil, nil).Code)
}

func TestQuoteHandler_SetStatus(t *testing.T) {
	h := newHarness(t)

	h.savedDraft("alice", "Q-500")

	var q dto.QuoteResponse
	w := h.do(http.MethodPut, "/api/v1/quotes/Q-500/status", "alice", map[string]any{"status": "accepted"}, &q)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", q.Status)

	assert.Equal(t, http.StatusBadRequest,
		h.do(http.MethodPut, "/api/v1/quotes/Q-500/status", "alice", map[string]any{"status": "archived"}, nil).Code)
}

func TestClientViewHandler(t *testing.T) {
	h := newHarness(t)

	_, saved := h.savedDraft("alice", "Q-600")
	revPath := "/api/v1/client/revisions/" + saved.RevisionID

	var view dto.ClientViewResponse
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, revPath, "", nil, &view).Code)
	assert.Equal(t, "Q-600", view.QuoteNumber)
	assert.Equal(t, []string{"pdf"}, view.Documents)
	assert.Empty(t, view.Feedback)

	var fb dto.FeedbackResponse
	w := h.do(http.MethodPost, revPath+"/feedback", "", map[string]any{
		"client_email": "buyer@acme.test",
		"action":       "request_revision",
		"comment":      "Can we split the payment?",
	}, &fb)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "REQUEST_REVISION", fb.Action)

	var q dto.QuoteResponse
	h.do(http.MethodGet, "/api/v1/quotes/Q-600", "alice", nil, &q)
	assert.Equal(t, "revision_requested", q.Status)

	h.do(http.MethodGet, revPath, "", nil, &view)
	require.Len(t, view.Feedback, 1)

	var errResp dto.ErrorResponse
	w = h.do(http.MethodPost, revPath+"/feedback", "", map[string]any{
		"client_email": "buyer@acme.test",
		"action":       "MAYBE",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errResp.Error.Details, "action")

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/v1/client/revisions/nope", "", nil, nil).Code)
}

func TestClientViewHandler_Export(t *testing.T) {
	h := newHarness(t)

	_, saved := h.savedDraft("alice", "Q-700")

	h.renderer.EXPECT().Render(mock.Anything, mock.MatchedBy(func(v domain.ClientView) bool {
		return v.Bundle.Revision.ID == saved.RevisionID
	})).Return(ports.Document{
		Filename:    "quote-Q-700-r1.pdf",
		ContentType: "application/pdf",
		Body:        []byte("%PDF-1.3"),
	}, nil).Once()

	w := h.do(http.MethodGet, "/api/v1/client/revisions/"+saved.RevisionID+"/export/PDF", "", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="quote-Q-700-r1.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())

	assert.Equal(t, http.StatusBadRequest,
		h.do(http.MethodGet, "/api/v1/client/revisions/"+saved.RevisionID+"/export/docx", "", nil, nil).Code)
}

func TestClientViewHandler_Root(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/?revision=rev%201", "", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/client/revisions/rev%201", w.Header().Get("Location"))

	w = h.do(http.MethodGet, "/", "", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/api/v1/drafts", w.Header().Get("Location"))
}
