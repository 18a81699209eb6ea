// Package kb provides typed access to the payer knowledge base HTTP API:
// the chat query endpoint plus the read-only dashboard endpoints.
package kb

// QueryRequest is the body for POST /chat/query.
type QueryRequest struct {
	Query          string  `json:"query"`                // The user's question
	SessionID      *string `json:"session_id"`           // Correlates turns server-side; null lets the server mint one
	PayerName      *string `json:"payer_name,omitempty"` // Optional payer filter; absent when unset
	RuleType       *string `json:"rule_type,omitempty"`  // Optional rule-type filter; absent when unset
	IncludeSources bool    `json:"include_sources"`      // Whether to return source citations
}

// QueryResponse is the body returned by POST /chat/query.
type QueryResponse struct {
	Response       string   `json:"response"`         // Synthesized answer text (markdown)
	Sources        []Source `json:"sources"`          // Supporting excerpts, in backend rank order
	SessionID      string   `json:"session_id"`       // Session id to carry into the next turn
	QueryID        int64    `json:"query_id"`         // Server-side id of this exchange, used for feedback
	ResponseTimeMs float64  `json:"response_time_ms"` // Backend-measured latency
	NumSources     int      `json:"num_sources,omitempty"`
}

// Source is a cited knowledge-base excerpt returned with an answer.
// The score fields are pointers because the backend may omit either one;
// ranking falls back from combined to similarity to zero.
type Source struct {
	RuleID          int64    `json:"rule_id"`
	PayerName       string   `json:"payer_name"`
	RuleType        string   `json:"rule_type"`
	Title           string   `json:"title,omitempty"`
	ContentExcerpt  string   `json:"content_excerpt,omitempty"`
	EffectiveDate   string   `json:"effective_date,omitempty"`
	SourceURL       string   `json:"source_url,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	CombinedScore   *float64 `json:"combined_score,omitempty"`
}

// Payer is one entry from GET /payers.
type Payer struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Website    string `json:"website,omitempty"`
	Priority   string `json:"priority,omitempty"`
	IsActive   bool   `json:"is_active"`
	TotalRules int    `json:"total_rules"`
}

// Alert is one entry from GET /alerts.
type Alert struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"` // "critical", "warning", or "info"
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// Stats is the body of GET /stats.
type Stats struct {
	TotalPayers      int            `json:"total_payers"`
	TotalRules       int            `json:"total_rules"`
	UnreadAlerts     int            `json:"unread_alerts"`
	ScrapeJobsLast7d int            `json:"scrape_jobs_last_7_days"`
	RulesByType      map[string]int `json:"rules_by_type"`
}

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"` // "healthy" when the backend is fully up
}

// HistoryEntry is one past exchange from GET /chat/history/{session_id}.
type HistoryEntry struct {
	Query     string   `json:"query"`
	Response  string   `json:"response"`
	Timestamp string   `json:"timestamp"`
	Sources   []Source `json:"sources,omitempty"`
}

// HistoryResponse is the body of GET /chat/history/{session_id}.
type HistoryResponse struct {
	SessionID string         `json:"session_id"`
	History   []HistoryEntry `json:"history"`
}

// FeedbackRequest is the body for POST /chat/feedback.
type FeedbackRequest struct {
	QueryID      int64  `json:"query_id"`
	Rating       int    `json:"rating"` // 1-5
	FeedbackText string `json:"feedback_text,omitempty"`
}
