package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
	"github.com/PancyStudios/CapsFridayBot/pkg/warnings"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Moderator is the part of the moderation engine exposed over HTTP
type Moderator interface {
	Active() bool
	Window() time.Duration
	Status(ctx context.Context, identity string) (moderation.WarningStatus, error)
	Forgive(ctx context.Context, identity string) error
}

// BotStatus reports whether the chat connection is ready
type BotStatus interface {
	IsReady() bool
}

// Deps are the components the API routes read from
type Deps struct {
	Moderator Moderator
	Store     warnings.HealthChecker
	Bot       BotStatus
	Gatherer  prometheus.Gatherer
	Location  *time.Location
	// APIToken protects the warning routes; when empty they reject every request
	APIToken string
}

const healthTimeout = 2 * time.Second

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, deps Deps) {
	h := &handlers{deps: deps}
	if h.deps.Location == nil {
		h.deps.Location = time.UTC
	}

	api := s.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/status", h.status)

		protected := api.Group("/warnings", bearerAuth(deps.APIToken))
		protected.GET("/:identity", h.getWarning)
		protected.DELETE("/:identity", h.deleteWarning)
	}

	if deps.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
}

const bearerPrefix = "Bearer "

// bearerAuth requires "Authorization: Bearer <token>". An empty token disables the routes.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "API_TOKEN no configurado, rutas de avisos deshabilitadas.",
			})
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Token de acceso inválido o ausente.",
			})
			return
		}

		got := strings.TrimPrefix(header, bearerPrefix)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Token de acceso inválido o ausente.",
			})
			return
		}
		c.Next()
	}
}

type handlers struct {
	deps Deps
}

// health returns a simple health check response
func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "CapsFriday bot is running",
	})
}

// status returns the policy, store and bot state
func (h *handlers) status(c *gin.Context) {
	storeOnline := true
	storeStatus := "connected"
	if h.deps.Store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.deps.Store.Health(ctx); err != nil {
			storeOnline = false
			storeStatus = err.Error()
		}
	}

	botOnline := h.deps.Bot != nil && h.deps.Bot.IsReady()

	overall := "ok"
	if !storeOnline || !botOnline {
		overall = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": overall,
		"policy": gin.H{
			"active":   h.deps.Moderator.Active(),
			"window":   h.deps.Moderator.Window().String(),
			"timezone": h.deps.Location.String(),
		},
		"store": gin.H{
			"status":   storeStatus,
			"isOnline": storeOnline,
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

func (h *handlers) getWarning(c *gin.Context) {
	st, err := h.deps.Moderator.Status(c.Request.Context(), c.Param("identity"))
	if err != nil {
		storageFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *handlers) deleteWarning(c *gin.Context) {
	identity := warnings.NormalizeIdentity(c.Param("identity"))
	if err := h.deps.Moderator.Forgive(c.Request.Context(), identity); err != nil {
		storageFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"identity": identity,
		"deleted":  true,
	})
}

func storageFailure(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if warnings.IsStorageError(err) {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"message": err.Error(),
	})
}
