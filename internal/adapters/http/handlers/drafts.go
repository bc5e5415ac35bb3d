package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotedesk/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotedesk/internal/app"
	"github.com/jsamuelsen/quotedesk/internal/domain"
)

// DraftHandler serves the quote editor. Every route acts on a draft owned by the caller.
type DraftHandler struct {
	drafts *app.DraftService
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(drafts *app.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// RegisterRoutes registers the editor routes under rg, normally /api/v1/drafts.
func (h *DraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.UpdateHeader)
	rg.DELETE("/:id", h.Delete)

	rg.POST("/:id/items", h.AddLineItem)
	rg.PATCH("/:id/items/:itemId", h.UpdateLineItem)
	rg.DELETE("/:id/items/:itemId", h.RemoveLineItem)

	rg.PUT("/:id/tax", h.SetTax)
	rg.POST("/:id/tax-rate", h.StageTaxRate)
	rg.POST("/:id/tax-rate/confirm", h.ConfirmTaxRate)
	rg.DELETE("/:id/tax-rate", h.CancelTaxRate)

	rg.POST("/:id/schedule", h.AddScheduleEntry)
	rg.PATCH("/:id/schedule/:entryId", h.UpdateScheduleEntry)
	rg.DELETE("/:id/schedule/:entryId", h.RemoveScheduleEntry)

	rg.POST("/:id/save", h.Save)
	rg.POST("/:id/send", h.Send)
	rg.POST("/:id/open", h.Open)
	rg.GET("/:id/selection", h.Selection)
}

func (h *DraftHandler) respond(c *gin.Context, status int, d *domain.QuoteDraft, err error) {
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(status, dto.NewDraftResponse(d, h.drafts.ClientLink))
}

// Create handles POST /api/v1/drafts.
// It starts a draft with one empty line item.
//
// @Summary Start a quote draft
// @Tags drafts
// @Produce json
// @Success 201 {object} dto.DraftResponse
// @Router /api/v1/drafts [post]
func (h *DraftHandler) Create(c *gin.Context) {
	d := h.drafts.Create(c.Request.Context(), middleware.Owner(c))

	c.Header("Location", c.FullPath()+"/"+d.ID)
	h.respond(c, http.StatusCreated, d, nil)
}

// Get handles GET /api/v1/drafts/:id.
//
// @Summary Get a draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.DraftResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	d, err := h.drafts.Get(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	h.respond(c, http.StatusOK, d, err)
}

// Delete handles DELETE /api/v1/drafts/:id. Persisted quotes are not touched.
func (h *DraftHandler) Delete(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), middleware.Owner(c), c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateHeader handles PATCH /api/v1/drafts/:id.
// Only the fields present in the body change.
//
// @Summary Edit draft fields
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param body body dto.HeaderRequest true "Fields to change"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/drafts/{id} [patch]
func (h *DraftHandler) UpdateHeader(c *gin.Context) {
	var req dto.HeaderRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	d, err := h.drafts.UpdateHeader(c.Request.Context(), middleware.Owner(c), c.Param("id"), req.Patch())
	h.respond(c, http.StatusOK, d, err)
}

// AddLineItem handles POST /api/v1/drafts/:id/items.
// Missing fields start as an empty description, quantity 1 and price 0.
func (h *DraftHandler) AddLineItem(c *gin.Context) {
	var req dto.LineItemRequest
	if c.Request.ContentLength != 0 {
		if err := dto.BindAndValidate(c, &req); err != nil {
			dto.HandleBindError(c, err)
			return
		}
	}

	patch := req.Patch()

	desc := ""
	if patch.Description != nil {
		desc = *patch.Description
	}

	qty := 1
	if patch.Quantity != nil {
		qty = *patch.Quantity
	}

	price := decimal.Zero
	if patch.UnitPrice != nil {
		price = *patch.UnitPrice
	}

	d, err := h.drafts.AddLineItem(c.Request.Context(), middleware.Owner(c), c.Param("id"), desc, qty, price)
	h.respond(c, http.StatusCreated, d, err)
}

// UpdateLineItem handles PATCH /api/v1/drafts/:id/items/:itemId.
// The item and draft totals are recomputed.
//
// @Summary Edit a line item
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param itemId path string true "Line item ID"
// @Param body body dto.LineItemRequest true "Fields to change"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/drafts/{id}/items/{itemId} [patch]
func (h *DraftHandler) UpdateLineItem(c *gin.Context) {
	var req dto.LineItemRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	d, err := h.drafts.UpdateLineItem(c.Request.Context(), middleware.Owner(c), c.Param("id"), c.Param("itemId"), req.Patch())
	h.respond(c, http.StatusOK, d, err)
}

// RemoveLineItem handles DELETE /api/v1/drafts/:id/items/:itemId.
// Removing the last item is rejected.
func (h *DraftHandler) RemoveLineItem(c *gin.Context) {
	d, err := h.drafts.RemoveLineItem(c.Request.Context(), middleware.Owner(c), c.Param("id"), c.Param("itemId"))
	h.respond(c, http.StatusOK, d, err)
}

// SetTax handles PUT /api/v1/drafts/:id/tax.
func (h *DraftHandler) SetTax(c *gin.Context) {
	var req dto.TaxRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	d, err := h.drafts.SetTaxEnabled(c.Request.Context(), middleware.Owner(c), c.Param("id"), *req.Enabled)
	h.respond(c, http.StatusOK, d, err)
}

// StageTaxRate handles POST /api/v1/drafts/:id/tax-rate.
// The rate is held until confirmed and does not affect totals yet.
//
// @Summary Stage a tax rate
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param body body dto.TaxRateRequest true "Rate in percent"
// @Success 200 {object} dto.DraftResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/drafts/{id}/tax-rate [post]
func (h *DraftHandler) StageTaxRate(c *gin.Context) {
	var req dto.TaxRateRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	d, err := h.drafts.StageTaxRate(c.Request.Context(), middleware.Owner(c), c.Param("id"), req.Rate())
	h.respond(c, http.StatusOK, d, err)
}

// ConfirmTaxRate handles POST /api/v1/drafts/:id/tax-rate/confirm.
func (h *DraftHandler) ConfirmTaxRate(c *gin.Context) {
	d, err := h.drafts.ConfirmTaxRate(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	h.respond(c, http.StatusOK, d, err)
}

// CancelTaxRate handles DELETE /api/v1/drafts/:id/tax-rate.
func (h *DraftHandler) CancelTaxRate(c *gin.Context) {
	d, err := h.drafts.CancelTaxRate(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	h.respond(c, http.StatusOK, d, err)
}

// AddScheduleEntry handles POST /api/v1/drafts/:id/schedule.
func (h *DraftHandler) AddScheduleEntry(c *gin.Context) {
	d, err := h.drafts.AddScheduleEntry(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	h.respond(c, http.StatusCreated, d, err)
}

// UpdateScheduleEntry handles PATCH /api/v1/drafts/:id/schedule/:entryId.
func (h *DraftHandler) UpdateScheduleEntry(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	d, err := h.drafts.UpdateScheduleEntry(
		c.Request.Context(), middleware.Owner(c), c.Param("id"), c.Param("entryId"), req.Patch())
	h.respond(c, http.StatusOK, d, err)
}

// RemoveScheduleEntry handles DELETE /api/v1/drafts/:id/schedule/:entryId.
func (h *DraftHandler) RemoveScheduleEntry(c *gin.Context) {
	d, err := h.drafts.RemoveScheduleEntry(c.Request.Context(), middleware.Owner(c), c.Param("id"), c.Param("entryId"))
	h.respond(c, http.StatusOK, d, err)
}

// Save handles POST /api/v1/drafts/:id/save.
// The draft is written as the current revision of its quote number.
//
// @Summary Save a draft
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.SaveResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/drafts/{id}/save [post]
func (h *DraftHandler) Save(c *gin.Context) {
	result, d, err := h.drafts.Save(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	status := http.StatusOK
	if result.QuoteCreated {
		status = http.StatusCreated
	}

	c.JSON(status, dto.NewSaveResponse(result, dto.NewDraftResponse(d, h.drafts.ClientLink)))
}

// Send handles POST /api/v1/drafts/:id/send.
// The draft must have been saved. The quote is marked sent once the email is out.
//
// @Summary Email the quote to the client
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} dto.DeliveryResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/drafts/{id}/send [post]
func (h *DraftHandler) Send(c *gin.Context) {
	delivery, err := h.drafts.Send(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDeliveryResponse(delivery))
}

// Open handles POST /api/v1/drafts/:id/open.
// The latest revision of the quote replaces the draft content. A later open
// on the same draft wins and this one answers 409.
//
// @Summary Open an existing quote in a draft
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param body body dto.OpenQuoteRequest true "Quote number"
// @Success 200 {object} dto.DraftResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/drafts/{id}/open [post]
func (h *DraftHandler) Open(c *gin.Context) {
	var req dto.OpenQuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	d, err := h.drafts.Open(c.Request.Context(), middleware.Owner(c), c.Param("id"), req.QuoteNumber)
	h.respond(c, http.StatusOK, d, err)
}

// Selection handles GET /api/v1/drafts/:id/selection.
func (h *DraftHandler) Selection(c *gin.Context) {
	snap, err := h.drafts.Selection(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSelectionResponse(snap))
}
