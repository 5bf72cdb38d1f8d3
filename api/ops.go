package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is anything with a cheap liveness probe (the pgx pool, the redis
// client).
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter exposes the wire server's registry to the stats endpoint.
type SessionCounter interface {
	Count() int
	Tags() []string
}

// OpsHandler serves the operational HTTP surface: health, session stats and
// Prometheus metrics. It is entirely separate from the wire protocol.
type OpsHandler struct {
	db       Pinger
	cache    Pinger
	sessions SessionCounter
}

func NewOpsHandler(db, cache Pinger, sessions SessionCounter) *OpsHandler {
	return &OpsHandler{db: db, cache: cache, sessions: sessions}
}

func (h *OpsHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.health)
	router.GET("/stats", h.stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *OpsHandler) health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "component": "database", "error": err.Error()})
			return
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "component": "cache", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OpsHandler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.sessions.Count(),
		"tags":     h.sessions.Tags(),
	})
}
