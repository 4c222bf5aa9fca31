package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/trackclub/dropbot/src/dropbot/components/round"
	"github.com/trackclub/dropbot/src/dropbot/config"
	"github.com/trackclub/dropbot/src/dropbot/data"
)

// New builds the admin/status API. It is the operator surface for
// forcing rounds on and off and inspecting game state.
func New(cfg config.Config, store *data.Store, manager *round.Manager) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	g.Use(cors.Default())

	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	h := handlers{store: store, manager: manager}
	api := g.Group("/api/v1", bearerAuth(cfg.APIToken))
	api.GET("/status", h.status)
	api.POST("/rounds/start", h.startRound)
	api.POST("/rounds/end", h.endRound)

	return g
}

// bearerAuth guards the admin routes with the static operator token.
// With no token configured the routes are disabled outright.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "admin API disabled: no api_token configured"})
			return
		}
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "bad token"})
			return
		}
		c.Next()
	}
}
