// Package web provides the bot's HTTP API with routing and middleware.
// It uses Gin framework for high-performance web handling.
package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// Options configures a Server
type Options struct {
	// WebhookURL receives a copy of every request when set.
	WebhookURL string
	// AllowedHosts is a regular expression the Host header must match.
	// Empty allows every host.
	AllowedHosts string
	// RatePerMinute is the sustained request budget per client IP.
	// Zero or less disables rate limiting.
	RatePerMinute int
}

// Server represents the web server
type Server struct {
	engine           *gin.Engine
	httpServer       *http.Server
	webhookURL       string
	allowedHostRegex *regexp.Regexp
	client           *http.Client
}

// NewServer creates a new web server. It fails only when AllowedHosts is not
// a valid regular expression.
func NewServer(opts Options) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:     engine,
		webhookURL: opts.WebhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
	if opts.AllowedHosts != "" {
		re, err := regexp.Compile(opts.AllowedHosts)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed hosts pattern: %w", err)
		}
		s.allowedHostRegex = re
	}

	// Apply middlewares
	s.engine.Use(s.logsMiddleware())
	if opts.RatePerMinute > 0 {
		s.engine.Use(rateLimitMiddleware(opts.RatePerMinute, time.Now))
	}

	// Set up error handlers
	s.setupErrorHandlers()

	return s, nil
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// logsMiddleware logs incoming requests and rejects unknown hosts
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		host := c.Request.Host

		if s.allowedHostRegex == nil || s.allowedHostRegex.MatchString(host) {
			logger.Debug(fmt.Sprintf("[LOG] New request: %s %s", c.Request.Method, c.Request.URL.Path), "WebServer")
			s.mirror(c, false)
			c.Next()
			return
		}

		logger.Warn(fmt.Sprintf("[LOG] Suspicious request: %s %s%s | %s", c.Request.Method, host, c.Request.URL.Path, c.ClientIP()), "WebServer")
		s.mirror(c, true)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Hôte non autorisé.",
			"status":  http.StatusForbidden,
		})
	}
}

// mirror copies the request's metadata to the webhook in the background
func (s *Server) mirror(c *gin.Context, suspicious bool) {
	if s.webhookURL == "" {
		return
	}

	title := fmt.Sprintf("💫 | Nouvelle requête %s", c.Request.Method)
	color := 0x00AE86 // Green
	if suspicious {
		title = fmt.Sprintf("💫 | Requête suspecte rejetée : %s %s", c.Request.Method, c.Request.URL.Path)
		color = 0xFFA500 // Orange
	}

	headers, _ := json.Marshal(c.Request.Header)
	query := c.Request.URL.RawQuery
	if query == "" {
		query = "{}"
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{map[string]interface{}{
			"title": title,
			"description": fmt.Sprintf(
				"> **Route :** `%s`\n> **IP :** `%s`\n> **Headers :** ```%s``` \n> **Query :** ```%s```",
				c.Request.URL.Path,
				c.ClientIP(),
				string(headers),
				query,
			),
			"color":     color,
			"timestamp": time.Now().Format(time.RFC3339),
		}},
	}

	go s.send(payload)
}

func (s *Server) send(payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

// limiterIdle is how long an IP's limiter is kept without traffic
const limiterIdle = 10 * time.Minute

// rateLimitMiddleware gives every client IP a token bucket refilled at
// perMinute tokens per minute, with a burst of perMinute.
func rateLimitMiddleware(perMinute int, now func() time.Time) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var mu sync.Mutex
	clients := make(map[string]*client)
	lastPrune := now()

	every := rate.Every(time.Minute / time.Duration(perMinute))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		t := now()

		mu.Lock()
		if t.Sub(lastPrune) > limiterIdle {
			for k, v := range clients {
				if t.Sub(v.lastSeen) > limiterIdle {
					delete(clients, k)
				}
			}
			lastPrune = t
		}
		cl, ok := clients[ip]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(every, perMinute)}
			clients[ip] = cl
		}
		cl.lastSeen = t
		allowed := cl.limiter.AllowN(t, 1)
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Trop de requêtes, réessayez plus tard.",
			})
			return
		}

		c.Next()
	}
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	s.engine.HandleMethodNotAllowed = true

	// 404 handler
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "La route demandée n'existe pas.",
			"status":  http.StatusNotFound,
		})
	})

	// 405 handler
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "Cette méthode HTTP n'est pas permise pour cette route.",
			"status":  http.StatusMethodNotAllowed,
		})
	})
}

// Start serves on port until Shutdown is called
func (s *Server) Start(port string) error {
	s.httpServer = s.newHTTPServer(port)
	return serve(s.httpServer)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(port string) {
	srv := s.newHTTPServer(port)
	s.httpServer = srv
	go func() {
		if err := serve(srv); err != nil {
			logger.Error(fmt.Sprintf("Error starting web server: %v", err), "WebServer")
		}
	}()
}

func (s *Server) newHTTPServer(port string) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func serve(srv *http.Server) error {
	logger.Info(fmt.Sprintf("🚀 Server listening on http://localhost%s", srv.Addr), "WebServer")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Group creates a new router group
func (s *Server) Group(path string, handlers ...gin.HandlerFunc) *gin.RouterGroup {
	return s.engine.Group(path, handlers...)
}

// GET registers a GET route
func (s *Server) GET(path string, handlers ...gin.HandlerFunc) {
	s.engine.GET(path, handlers...)
}
