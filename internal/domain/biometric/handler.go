package biometric

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schuttebj/linc-print-gateway/pkg/response"
)

// Handler wires HTTP routes to the Service.
type Handler struct {
	service *Service
}

// NewHandler returns a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts biometric routes behind auth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	authed := rg.Group("/biometrics", authMW)
	authed.GET("/agent/status", h.agentStatus)
	authed.POST("/capture", h.capture)
	authed.POST("/verify", h.verify)
}

func (h *Handler) agentStatus(c *gin.Context) {
	status, err := h.service.AgentStatus(c.Request.Context())
	if err != nil {
		// Report the outage as data, not as an error: the admin UI
		// polls this endpoint to drive the scanner indicator.
		c.JSON(http.StatusOK, gin.H{"connected": false})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) capture(c *gin.Context) {
	template, err := h.service.Capture(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": template})
}

type verifyRequest struct {
	PersonID string `json:"person_id" binding:"required"`
}

func (h *Handler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}
	res, err := h.service.Verify(c.Request.Context(), response.BearerFromContext(c), req.PersonID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAgentUnavailable):
		response.ServiceUnavailable(c, "fingerprint agent unreachable")
	case errors.Is(err, ErrCaptureFailed):
		response.Conflict(c, "CAPTURE_FAILED", "fingerprint capture failed")
	case errors.Is(err, ErrVerifyFailed):
		response.BadGateway(c, "fingerprint verification failed")
	default:
		response.InternalServerError(c, err)
	}
}
