package report

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/schuttebj/linc-print-gateway/pkg/response"
	"github.com/schuttebj/linc-print-gateway/pkg/statuscolor"
)

// Handler wires HTTP routes to the Service.
type Handler struct {
	service *Service
}

// NewHandler returns a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts report routes behind auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authed := rg.Group("", authMW)
	authed.POST("/reports", h.submit)
	authed.GET("/reports", h.list)
	authed.GET("/reports/:id", h.get)
}

func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	var submitter *uuid.UUID
	if id := response.MustUserID(c); id != uuid.Nil {
		submitter = &id
	} else {
		return
	}
	rpt, err := h.service.Submit(c.Request.Context(), response.BearerFromContext(c), submitter, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Location", "/api/v1/reports/"+rpt.ID.String())
	c.JSON(http.StatusCreated, decorated(rpt))
}

func (h *Handler) list(c *gin.Context) {
	filter := Filter{
		Status: c.Query("status"),
		Limit:  response.GetLimit(c, 20, 100),
		Offset: response.GetOffset(c),
	}
	reports, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	items := make([]gin.H, len(reports))
	for i := range reports {
		items[i] = decorated(&reports[i])
	}
	response.Paginated(c, items, total, filter.Offset, filter.Limit)
}

func (h *Handler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "report")
		return
	}
	rpt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, decorated(rpt))
}

// decorated pairs a report with its display color for the Kanban view.
func decorated(rpt *Report) gin.H {
	return gin.H{
		"report":       rpt,
		"status_color": statuscolor.ForIssue(rpt.Status),
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "report")
	case errors.Is(err, ErrBackendRejected):
		response.BadGateway(c, "report rejected by backend")
	case errors.Is(err, ErrBackendUnavailable):
		response.ServiceUnavailable(c, "issue backend unreachable")
	default:
		response.InternalServerError(c, err)
	}
}
