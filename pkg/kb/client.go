package kb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Filters narrows a chat query to one payer and/or rule type. Empty fields
// are omitted from the request entirely, not sent as empty strings.
type Filters struct {
	PayerName string
	RuleType  string
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL of the knowledge base API (e.g. "http://localhost:8000").
	BaseURL string

	// Timeout for each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// OmitSources turns off source citations in responses. The zero value
	// requests them, which is what every caller in this repo wants.
	OmitSources bool
}

// DefaultTimeout bounds a single query round trip. Retrieval plus LLM
// generation can take a while on cold caches.
const DefaultTimeout = 60 * time.Second

// Client talks to the knowledge base API. It is safe for concurrent use.
type Client struct {
	config     ClientConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewClient creates a Client with source citations enabled.
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Query sends a question to the chat endpoint. Input that is empty after
// trimming is rejected locally with no network call. All transport, status,
// and decode failures are folded into the Result; Query never panics or
// returns an error past this boundary.
func (c *Client) Query(ctx context.Context, query string, sessionID string, filters Filters) Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{Rejected: true}
	}

	req := QueryRequest{
		Query:          query,
		IncludeSources: !c.config.OmitSources,
	}
	if sessionID != "" {
		req.SessionID = &sessionID
	}
	if filters.PayerName != "" {
		req.PayerName = &filters.PayerName
	}
	if filters.RuleType != "" {
		req.RuleType = &filters.RuleType
	}

	body, err := json.Marshal(req)
	if err != nil {
		// A QueryRequest is always marshalable; treat this as a payload bug.
		return c.failure(ReasonBadPayload, fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/query", bytes.NewReader(body))
	if err != nil {
		return c.failure(ReasonNetwork, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending chat query",
		zap.String("query_preview", truncate(query, 80)),
		zap.Bool("has_session", req.SessionID != nil),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.failure(ReasonNetwork, fmt.Errorf("do request: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return c.failure(ReasonNetwork, fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return c.failure(ReasonServerStatus,
			fmt.Errorf("server returned %d: %s", httpResp.StatusCode, truncate(string(respBody), 200)))
	}

	var resp QueryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return c.failure(ReasonBadPayload, fmt.Errorf("unmarshal response: %w", err))
	}

	c.logger.Debug("chat query answered",
		zap.Int("num_sources", len(resp.Sources)),
		zap.Float64("response_time_ms", resp.ResponseTimeMs),
	)

	return Result{Response: &resp}
}

// Payers fetches the active payer list.
func (c *Client) Payers(ctx context.Context) ([]Payer, error) {
	var payers []Payer
	if err := c.getJSON(ctx, "/payers", &payers); err != nil {
		return nil, err
	}
	return payers, nil
}

// Alerts fetches the alert feed, newest first.
func (c *Client) Alerts(ctx context.Context, unreadOnly bool, limit int) ([]Alert, error) {
	params := url.Values{}
	params.Set("unread_only", strconv.FormatBool(unreadOnly))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var alerts []Alert
	if err := c.getJSON(ctx, "/alerts?"+params.Encode(), &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Stats fetches the aggregate statistics snapshot.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.getJSON(ctx, "/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks whether the backend reports itself healthy.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// History fetches past exchanges for a session, oldest first.
func (c *Client) History(ctx context.Context, sessionID string, limit int) (*HistoryResponse, error) {
	path := "/chat/history/" + url.PathEscape(sessionID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp HistoryResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Feedback submits a 1-5 rating for a past query. The rating is validated
// locally so an out-of-range value never reaches the wire.
func (c *Client) Feedback(ctx context.Context, queryID int64, rating int, text string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	body, err := json.Marshal(FeedbackRequest{QueryID: queryID, Rating: rating, FeedbackText: text})
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/feedback", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		respBody, _ := io.ReadAll(httpResp.Body)
		return fmt.Errorf("server returned %d: %s", httpResp.StatusCode, truncate(string(respBody), 200))
	}

	return nil
}

// getJSON fetches a path and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return fmt.Errorf("server returned %d: %s", httpResp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

func (c *Client) failure(reason FailureReason, err error) Result {
	c.logger.Warn("chat query failed",
		zap.String("reason", string(reason)),
		zap.Error(err),
	)
	return Result{Failure: &Failure{Reason: reason, Err: err}}
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
