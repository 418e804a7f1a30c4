// Package web provides API routes for the web server.
package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/leveling"
)

const (
	defaultLeaderboard = 10
	maxLeaderboard     = 100
)

// ReadyFunc reports whether the gateway connection is up
type ReadyFunc func() bool

// SetupAPIRoutes sets up the API routes and the metrics endpoint
func SetupAPIRoutes(s *Server, b *bot.Bot, ready ReadyFunc) {
	api := s.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/status", statusHandler(b, ready))
		api.GET("/leaderboard", leaderboardHandler(b))
		api.GET("/users/:id", userHandler(b))
	}

	s.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "VeilleBot is running",
	})
}

// statusHandler returns the bot and its collaborators' status
func statusHandler(b *bot.Bot, ready ReadyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"bot": gin.H{
				"isOnline": ready != nil && ready(),
			},
			"xp": gin.H{
				"trackedUsers": b.XP.Count(),
				"perLevel":     b.XP.PerLevel(),
			},
			"warns": gin.H{
				"total": b.Warns.Count(),
			},
			"archive": gin.H{"enabled": b.Archive != nil},
			"scraper": gin.H{"enabled": b.Scraper.Enabled()},
			"mqtt":    gin.H{"enabled": b.Publisher.Enabled()},
		})
	}
}

// leaderboardHandler returns the top users, ?limit= defaults to 10
func leaderboardHandler(b *bot.Bot) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultLeaderboard
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxLeaderboard {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Bad Request",
					"message": "limit doit être un entier entre 1 et 100.",
					"status":  http.StatusBadRequest,
				})
				return
			}
			limit = n
		}

		entries := b.XP.Leaderboard(limit)
		c.JSON(http.StatusOK, gin.H{
			"total":   b.XP.Count(),
			"entries": entries,
		})
	}
}

// userHandler returns a user's points and level. Unknown users have zero points.
func userHandler(b *bot.Bot) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" || strings.Trim(id, "0123456789") != "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "L'identifiant doit être numérique.",
				"status":  http.StatusBadRequest,
			})
			return
		}

		points := b.XP.Points(id)
		c.JSON(http.StatusOK, gin.H{
			"userId": id,
			"points": points,
			"level":  b.XP.Level(id),
			"toNext": leveling.ToNext(points, b.XP.PerLevel()),
			"warns":  len(b.Warns.List(id)),
		})
	}
}
