package diagnostics

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler exposes health + debug endpoints around the capture buffer.
type Handler struct {
	buffer *LogBuffer
}

// NewHandler returns handler.
func NewHandler(buffer *LogBuffer) *Handler {
	return &Handler{buffer: buffer}
}

// RegisterPublic attaches non-auth endpoints.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.POST("/debug/client-logs", h.ingest)
}

// RegisterProtected attaches debug endpoints requiring admin auth.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.GET("/debug/logs", h.logs)
	rg.GET("/debug/logs/stats", h.stats)
	rg.DELETE("/debug/logs", h.clear)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// logs returns formatted lines, optionally filtered with
// ?level=error,warn and/or trimmed with ?recent=20.
func (h *Handler) logs(c *gin.Context) {
	if raw := c.Query("level"); raw != "" {
		levels := make([]Level, 0, 4)
		for _, part := range strings.Split(raw, ",") {
			l := Level(strings.ToLower(strings.TrimSpace(part)))
			if l.Valid() {
				levels = append(levels, l)
			}
		}
		c.JSON(http.StatusOK, gin.H{"logs": h.buffer.GetByLevel(levels...)})
		return
	}
	if raw := c.Query("recent"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			n = 0
		}
		c.JSON(http.StatusOK, gin.H{"logs": h.buffer.GetRecent(n)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": h.buffer.GetAll()})
}

func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.buffer.Stats())
}

func (h *Handler) clear(c *gin.Context) {
	h.buffer.Clear()
	c.Status(http.StatusNoContent)
}

// clientLogLine is one console line shipped from the admin UI.
type clientLogLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ingest accepts console lines from the browser so they sit alongside
// server-side captures in issue reports. Unknown levels fold into "log".
func (h *Handler) ingest(c *gin.Context) {
	var body struct {
		Lines []clientLogLine `json:"lines" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_payload"})
		return
	}
	accepted := 0
	for _, line := range body.Lines {
		level := Level(strings.ToLower(line.Level))
		if !level.Valid() {
			level = LevelLog
		}
		h.buffer.Capture(level, line.Message)
		accepted++
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": accepted})
}
