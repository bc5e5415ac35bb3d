package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotedesk/internal/app"
)

// ClientPrefix is where the client-facing routes live.
const ClientPrefix = "/api/v1/client"

// ClientViewHandler serves the read-only quote page clients reach from their email link.
type ClientViewHandler struct {
	views *app.ClientViewService

	// editorPath is where the root redirects without a revision parameter.
	editorPath string
}

// NewClientViewHandler creates a new client view handler. editorPath defaults to /api/v1/drafts.
func NewClientViewHandler(views *app.ClientViewService, editorPath string) *ClientViewHandler {
	if editorPath == "" {
		editorPath = "/api/v1/drafts"
	}

	return &ClientViewHandler{views: views, editorPath: editorPath}
}

// RegisterRoutes registers the client routes under rg, normally /api/v1/client.
func (h *ClientViewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/revisions/:id", h.Get)
	rg.GET("/revisions/:id/export/:format", h.Export)
	rg.POST("/revisions/:id/feedback", h.Feedback)
}

// Root handles GET /. Client links carry ?revision=<id> and are sent to the
// client view. Anything else goes to the editor.
func (h *ClientViewHandler) Root(c *gin.Context) {
	if rev := strings.TrimSpace(c.Query("revision")); rev != "" {
		c.Redirect(http.StatusFound, ClientPrefix+"/revisions/"+url.PathEscape(rev))
		return
	}

	c.Redirect(http.StatusFound, h.editorPath)
}

// Get handles GET /api/v1/client/revisions/:id.
// Opening the page records a view in the background.
//
// @Summary Show a quote revision to the client
// @Tags client
// @Produce json
// @Param id path string true "Revision ID"
// @Success 200 {object} dto.ClientViewResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/client/revisions/{id} [get]
func (h *ClientViewHandler) Get(c *gin.Context) {
	view, err := h.views.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewClientViewResponse(view, h.views.Formats()))
}

// Export handles GET /api/v1/client/revisions/:id/export/:format.
// The document is sent as an attachment.
//
// @Summary Download a quote revision
// @Tags client
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Revision ID"
// @Param format path string true "pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/client/revisions/{id}/export/{format} [get]
func (h *ClientViewHandler) Export(c *gin.Context) {
	doc, err := h.views.Render(c.Request.Context(), c.Param("id"), c.Param("format"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// Feedback handles POST /api/v1/client/revisions/:id/feedback.
// ACCEPT, DECLINE and REQUEST_REVISION move the quote to the matching status.
//
// @Summary Respond to a quote
// @Tags client
// @Accept json
// @Produce json
// @Param id path string true "Revision ID"
// @Param body body dto.FeedbackRequest true "Client response"
// @Success 201 {object} dto.FeedbackResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/client/revisions/{id}/feedback [post]
func (h *ClientViewHandler) Feedback(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	fb, err := h.views.SubmitFeedback(c.Request.Context(), app.FeedbackInput{
		RevisionID:  c.Param("id"),
		ClientEmail: req.ClientEmail,
		Action:      req.Action,
		Comment:     req.Comment,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewFeedbackResponse(fb))
}
