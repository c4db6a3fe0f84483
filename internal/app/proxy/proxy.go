package proxy

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schuttebj/linc-print-gateway/internal/infrastructure/backend"
	"github.com/schuttebj/linc-print-gateway/pkg/response"
)

// Handler forwards CRUD traffic verbatim to the LINC backend. Users,
// locations and persons are owned upstream; the gateway contributes
// nothing but the forwarding wrapper.
type Handler struct {
	backend *backend.Client
	logger  *zap.Logger
}

// NewHandler returns a proxy Handler.
func NewHandler(client *backend.Client, logger *zap.Logger) *Handler {
	return &Handler{backend: client, logger: logger}
}

// RegisterRoutes mounts the passthrough trees. Auth endpoints forward
// without local gating since login itself happens upstream.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.Any("/auth/*path", h.forward("/auth"))

	authed := rg.Group("", authMW)
	authed.Any("/users/*path", h.forward("/users"))
	authed.Any("/locations/*path", h.forward("/locations"))
	authed.Any("/persons/*path", h.forward("/persons"))
}

func (h *Handler) forward(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := prefix + c.Param("path")
		resp, err := h.backend.Forward(
			c.Request.Context(),
			c.Request.Method,
			path,
			c.Request.URL.Query(),
			c.Request.Body,
			response.BearerFromContext(c),
			c.ContentType(),
		)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("proxy forward failed", zap.String("path", path), zap.Error(err))
			}
			response.ServiceUnavailable(c, "backend unreachable")
			return
		}
		defer resp.Body.Close()
		c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, nil)
	}
}
