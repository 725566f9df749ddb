// Package server exposes the HTTP API. Routes mirror the proxy surface the
// frontend expects: search, paginated category listing, event detail,
// leaderboard, saved queries and the assistant endpoints.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pulsepoly/pulsepoly/internal/assistant"
	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
	"github.com/pulsepoly/pulsepoly/internal/search"
)

// LeaderboardSource is the data-api surface the server needs.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, timeframe string, limit int) ([]models.LeaderboardEntry, error)
}

// AssistantSource covers the assistant endpoints. Implementations may
// return assistant.ErrDisabled when no API key is configured.
type AssistantSource interface {
	Commentary(ctx context.Context, ev *models.Event) (string, error)
	Chat(ctx context.Context, message string) (string, error)
	SuggestCategory(ctx context.Context, query string, categories []models.Category) (string, error)
}

// SavedQueryStore is the saved-query surface the server needs.
type SavedQueryStore interface {
	List() []models.SavedQuery
	TogglePin(id string) (*models.SavedQuery, error)
	Remove(id string) error
	Clear() error
}

type Server struct {
	svc       *search.Service
	board     LeaderboardSource
	assistant AssistantSource
	saved     SavedQueryStore
	log       *logrus.Logger
}

func New(svc *search.Service, board LeaderboardSource, assistant AssistantSource, saved SavedQueryStore, log *logrus.Logger) *Server {
	return &Server{
		svc:       svc,
		board:     board,
		assistant: assistant,
		saved:     saved,
		log:       log,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/public-search", s.handleSearch)
		api.GET("/gamma/events/pagination", s.handleBrowse)
		api.GET("/aggregator/events", s.handleAggregated)
		api.GET("/events/:id", s.handleEvent)
		api.GET("/categories", s.handleCategories)
		api.GET("/leaderboard", s.handleLeaderboard)

		api.GET("/saved-queries", s.handleSavedList)
		api.POST("/saved-queries/:id/pin", s.handleSavedPin)
		api.DELETE("/saved-queries/:id", s.handleSavedRemove)
		api.DELETE("/saved-queries", s.handleSavedClear)

		api.POST("/assistant/analyze/:id", s.handleAnalyze)
		api.POST("/assistant/chat", s.handleChat)
		api.GET("/assistant/suggest-category", s.handleSuggestCategory)
	}

	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("Request handled")
	}
}

func (s *Server) handleSearch(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	result, err := s.svc.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleBrowse(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	category := c.DefaultQuery("category", search.CategoryAll)
	result, err := s.svc.Browse(c.Request.Context(), category, page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAggregated(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	result, err := s.svc.Aggregated(c.Request.Context(), page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleEvent(c *gin.Context) {
	ev, err := s.svc.EventByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": search.Categories()})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	entries, err := s.board.Leaderboard(c.Request.Context(), c.DefaultQuery("timeframe", "all"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (s *Server) handleSavedList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"savedQueries": s.saved.List()})
}

func (s *Server) handleSavedPin(c *gin.Context) {
	q, err := s.saved.TogglePin(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) handleSavedRemove(c *gin.Context) {
	if err := s.saved.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSavedClear(c *gin.Context) {
	if err := s.saved.Clear(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	ev, err := s.svc.EventByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	commentary, err := s.assistant.Commentary(c.Request.Context(), ev)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commentary": commentary})
}

func (s *Server) handleChat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	reply, err := s.assistant.Chat(c.Request.Context(), req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (s *Server) handleSuggestCategory(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	category, err := s.assistant.SuggestCategory(c.Request.Context(), query, search.Categories())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// fail maps internal errors onto API responses. Transport-level upstream
// failures get a connectivity message so the client can distinguish "the
// upstream is down" from "the request was wrong".
func (s *Server) fail(c *gin.Context, err error) {
	var statusErr *httpx.StatusError
	switch {
	case errors.Is(err, httpx.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, assistant.ErrDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant is not configured"})
	case errors.Is(err, httpx.ErrUnavailable):
		s.log.WithError(err).Warn("Upstream unreachable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service unreachable, please retry"})
	case errors.As(err, &statusErr):
		s.log.WithError(err).Warn("Upstream error")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream service returned an error"})
	default:
		s.log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func pageParam(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return 0, false
	}
	return page, true
}
