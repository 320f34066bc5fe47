package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dependency reports whether one backing service is reachable.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	deps []Dependency
}

func NewHealthHandler(deps ...Dependency) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()
	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for _, p := range h.deps {
		if err := p.Check(ctx); err != nil {
			body[p.Name] = "unavailable"
			body["status"] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		body[p.Name] = "connected"
	}
	c.JSON(status, body)
}
