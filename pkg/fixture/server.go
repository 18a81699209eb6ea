// Package fixture runs an in-process stand-in for the payer knowledge base
// API. It implements the same wire contract over a small canned rule table,
// which makes it useful both as a local development backend and as the HTTP
// peer in client tests. The scoring is a toy keyword overlap; the real
// retrieval ranking lives server-side and is out of scope here.
package fixture

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridianclaims/payerkb/pkg/kb"
)

const defaultTopK = 5

// errorResponse mirrors the backend's error body shape.
type errorResponse struct {
	Error string `json:"error"`
}

// Server is the fixture API server.
type Server struct {
	logger *zap.Logger
	app    *fiber.App

	mu        sync.Mutex
	nextQuery int64
	histories map[string][]kb.HistoryEntry
	feedback  map[int64]int
}

// New creates a fixture server with all routes registered.
func New(logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		logger:    logger,
		app:       app,
		histories: make(map[string][]kb.HistoryEntry),
		feedback:  make(map[int64]int),
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(kb.Health{Status: "healthy"})
	})

	app.Post("/chat/query", s.handleChatQuery)
	app.Get("/chat/history/:session_id", s.handleChatHistory)
	app.Post("/chat/feedback", s.handleFeedback)
	app.Get("/payers", s.handlePayers)
	app.Get("/alerts", s.handleAlerts)
	app.Get("/stats", s.handleStats)

	return s
}

// Listen serves on addr until the process exits.
func (s *Server) Listen(addr string) error {
	s.logger.Info("fixture knowledge base listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App { return s.app }

// handleChatQuery scores the canned rules against the query, synthesizes a
// short answer from the best match, and maintains per-session history.
func (s *Server) handleChatQuery(c *fiber.Ctx) error {
	start := time.Now()

	var req kb.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "query must not be empty"})
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sources := s.retrieve(req)
	answer := s.answer(req.Query, sources)

	s.mu.Lock()
	s.nextQuery++
	queryID := s.nextQuery
	s.histories[sessionID] = append(s.histories[sessionID], kb.HistoryEntry{
		Query:     req.Query,
		Response:  answer,
		Timestamp: start.UTC().Format(time.RFC3339),
		Sources:   sources,
	})
	s.mu.Unlock()

	if !req.IncludeSources {
		sources = []kb.Source{}
	}

	s.logger.Debug("fixture query answered",
		zap.String("session_id", sessionID),
		zap.Int("num_sources", len(sources)),
	)

	return c.JSON(kb.QueryResponse{
		Response:       answer,
		Sources:        sources,
		SessionID:      sessionID,
		QueryID:        queryID,
		ResponseTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		NumSources:     len(sources),
	})
}

// retrieve scores rules by keyword overlap with the query, honoring the
// payer and rule-type filters, and returns the top matches best first.
func (s *Server) retrieve(req kb.QueryRequest) []kb.Source {
	words := strings.Fields(strings.ToLower(req.Query))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[strings.Trim(w, "?.,!'\"")] = true
	}

	var sources []kb.Source
	for _, r := range fixtureRules {
		if req.PayerName != nil && !strings.EqualFold(r.PayerName, *req.PayerName) {
			continue
		}
		if req.RuleType != nil && r.RuleType != *req.RuleType {
			continue
		}

		hits := 0
		for _, kw := range r.Keywords {
			if seen[kw] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}

		score := 0.45 + 0.1*float64(hits)
		if score > 0.98 {
			score = 0.98
		}
		combined := score
		similarity := score - 0.05

		sources = append(sources, kb.Source{
			RuleID:          r.ID,
			PayerName:       r.PayerName,
			RuleType:        r.RuleType,
			Title:           r.Title,
			ContentExcerpt:  r.Content,
			EffectiveDate:   r.EffectiveDate,
			SourceURL:       r.SourceURL,
			SimilarityScore: &similarity,
			CombinedScore:   &combined,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return *sources[i].CombinedScore > *sources[j].CombinedScore
	})
	if len(sources) > defaultTopK {
		sources = sources[:defaultTopK]
	}
	return sources
}

// answer builds a short markdown response from the best-matching rule.
func (s *Server) answer(query string, sources []kb.Source) string {
	if len(sources) == 0 {
		return "I could not find any payer rules matching that question. Try naming the payer or rule type directly."
	}
	top := sources[0]
	return fmt.Sprintf("**%s — %s**\n\n%s\n\n*Effective %s. See the cited sources for details.*",
		top.PayerName, top.Title, top.ContentExcerpt, top.EffectiveDate)
}

func (s *Server) handleChatHistory(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	limit := c.QueryInt("limit", 10)

	s.mu.Lock()
	history := s.histories[sessionID]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]kb.HistoryEntry, len(history))
	copy(out, history)
	s.mu.Unlock()

	return c.JSON(kb.HistoryResponse{SessionID: sessionID, History: out})
}

func (s *Server) handleFeedback(c *fiber.Ctx) error {
	var req kb.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "rating must be between 1 and 5"})
	}

	s.mu.Lock()
	s.feedback[req.QueryID] = req.Rating
	s.mu.Unlock()

	return c.JSON(map[string]string{"status": "success"})
}

func (s *Server) handlePayers(c *fiber.Ctx) error {
	counts := make(map[string]int)
	for _, r := range fixtureRules {
		counts[r.PayerName]++
	}

	payers := make([]kb.Payer, len(fixturePayers))
	copy(payers, fixturePayers)
	for i := range payers {
		payers[i].TotalRules = counts[payers[i].Name]
	}
	return c.JSON(payers)
}

func (s *Server) handleAlerts(c *fiber.Ctx) error {
	unreadOnly := c.QueryBool("unread_only", false)
	limit := c.QueryInt("limit", 50)

	alerts := make([]kb.Alert, 0, len(fixtureAlerts))
	for _, a := range fixtureAlerts {
		if unreadOnly && a.IsRead {
			continue
		}
		alerts = append(alerts, a)
		if len(alerts) == limit {
			break
		}
	}
	return c.JSON(alerts)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	byType := make(map[string]int)
	for _, r := range fixtureRules {
		byType[r.RuleType]++
	}

	unread := 0
	for _, a := range fixtureAlerts {
		if !a.IsRead {
			unread++
		}
	}

	return c.JSON(kb.Stats{
		TotalPayers:      len(fixturePayers),
		TotalRules:       len(fixtureRules),
		UnreadAlerts:     unread,
		ScrapeJobsLast7d: 4,
		RulesByType:      byType,
	})
}
