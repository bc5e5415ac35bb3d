package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotedesk/internal/app"
	"github.com/jsamuelsen/quotedesk/internal/domain"
)

// QuoteHandler serves lookups of persisted quotes, revisions and clients.
type QuoteHandler struct {
	quotes *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(quotes *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// RegisterRoutes registers the lookup routes under rg, normally /api/v1.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", h.Search)
	rg.GET("/quotes/:number", h.Get)
	rg.GET("/quotes/:number/revisions", h.Revisions)
	rg.GET("/quotes/:number/history", h.History)
	rg.PUT("/quotes/:number/status", h.SetStatus)
	rg.GET("/revisions/:id", h.Revision)
	rg.GET("/clients", h.SearchClients)
}

// Search handles GET /api/v1/quotes?q=&limit=.
// Matches quote numbers and client names, most recently updated first.
//
// @Summary Search quotes
// @Tags quotes
// @Produce json
// @Param q query string false "Quote number or client name fragment"
// @Param limit query int false "Maximum results (1-100)"
// @Success 200 {object} dto.ListResponse[dto.QuoteSummaryResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	found, err := h.quotes.SearchQuotes(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.NewQuoteSummaries(found)))
}

// Get handles GET /api/v1/quotes/:number.
//
// @Summary Get a quote by number
// @Tags quotes
// @Produce json
// @Param number path string true "Quote number"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{number} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	q, err := h.quotes.FindQuote(c.Request.Context(), c.Param("number"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// Revisions handles GET /api/v1/quotes/:number/revisions, newest first.
func (h *QuoteHandler) Revisions(c *gin.Context) {
	ctx := c.Request.Context()

	q, err := h.quotes.FindQuote(ctx, c.Param("number"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	revs, err := h.quotes.ListRevisions(ctx, q.ID)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.NewRevisionSummaries(revs)))
}

// History handles GET /api/v1/quotes/:number/history.
// It lists the saves recorded locally by this service.
func (h *QuoteHandler) History(c *gin.Context) {
	entries, err := h.quotes.History(c.Request.Context(), c.Param("number"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.NewHistory(entries)))
}

// SetStatus handles PUT /api/v1/quotes/:number/status.
func (h *QuoteHandler) SetStatus(c *gin.Context) {
	var req dto.StatusRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	ctx := c.Request.Context()

	q, err := h.quotes.FindQuote(ctx, c.Param("number"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if err := h.quotes.SetStatus(ctx, q.ID, domain.QuoteStatus(req.Status)); err != nil {
		dto.HandleError(c, err)
		return
	}

	q.Status = domain.QuoteStatus(req.Status)

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// Revision handles GET /api/v1/revisions/:id.
// It returns the revision as the editor sees it, without recording a view.
func (h *QuoteHandler) Revision(c *gin.Context) {
	bundle, err := h.quotes.LoadRevision(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewClientViewResponse(domain.NewClientView(bundle, nil), nil))
}

// SearchClients handles GET /api/v1/clients?q=.
// Matches client names by prefix.
//
// @Summary Search clients
// @Tags clients
// @Produce json
// @Param q query string false "Name prefix"
// @Param limit query int false "Maximum results (1-100)"
// @Success 200 {object} dto.ListResponse[dto.ClientResponse]
// @Router /api/v1/clients [get]
func (h *QuoteHandler) SearchClients(c *gin.Context) {
	var req dto.SearchRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	found, err := h.quotes.SearchClients(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(dto.NewClients(found)))
}
