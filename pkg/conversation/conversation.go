// Package conversation owns the ordered list of chat turns and the lifecycle
// of the request in flight. It is the single writer of session identity and
// turn order; the network client and the UI both work through its
// transitions.
//
// A Conversation is not safe for concurrent use. It is designed to be driven
// from a single event loop (the TUI's update function); resolutions arriving
// from other goroutines must be delivered into that loop first.
package conversation

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meridianclaims/payerkb/pkg/kb"
	"github.com/meridianclaims/payerkb/pkg/ranking"
	"github.com/meridianclaims/payerkb/pkg/session"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// State is the lifecycle of the request in flight.
type State int

const (
	// StateIdle means no request is outstanding.
	StateIdle State = iota

	// StateSending means one request is outstanding. Further submits are
	// queued behind it, never sent concurrently.
	StateSending
)

// ApologyText is the fixed user-facing message for any failed exchange.
// The underlying reason goes to the logger, never to the user.
const ApologyText = "Sorry, I couldn't get an answer to that just now. Please try again in a moment."

// Turn is one message in the conversation. Turns are immutable once created
// and the conversation is append-only.
type Turn struct {
	ID        int64 // monotonic, client-generated
	Role      Role
	Text      string
	Sources   []ranking.Ranked // assistant turns only; already normalized
	CreatedAt time.Time
}

// Dispatch is a request the caller must send. It carries the generation at
// submit time so a resolution that arrives after Clear can be recognized as
// stale and discarded.
type Dispatch struct {
	Query      string
	SessionID  session.ID
	Generation uint64
}

// Conversation is the chat state machine.
type Conversation struct {
	logger *zap.Logger

	turns      []Turn
	state      State
	sessionID  session.ID
	queue      []string // questions waiting behind the in-flight request
	generation uint64
	nextTurnID int64

	lastFailure   kb.FailureReason
	failureLogged bool

	now func() time.Time
}

// New creates an empty conversation with a fresh session id.
func New(logger *zap.Logger) *Conversation {
	return &Conversation{
		logger:    logger,
		state:     StateIdle,
		sessionID: session.New(),
		now:       time.Now,
	}
}

// Turns returns a copy of the turn list, oldest first.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// State returns the current lifecycle state.
func (c *Conversation) State() State { return c.state }

// SessionID returns the live session id.
func (c *Conversation) SessionID() session.ID { return c.sessionID }

// QueuedCount reports how many submits are waiting behind the in-flight
// request.
func (c *Conversation) QueuedCount() int { return len(c.queue) }

// LastFailure returns the reason of the most recent failed exchange, if any
// has failed since the conversation was created or cleared. This is the
// diagnostics hook; rendering never uses it.
func (c *Conversation) LastFailure() (kb.FailureReason, bool) {
	return c.lastFailure, c.failureLogged
}

// Submit accepts user input. Whitespace-only input is swallowed: no turn,
// no dispatch, no error. Otherwise, if the conversation is idle the user
// turn is appended and a Dispatch is returned for the caller to send. If a
// request is already in flight the question is queued; its user turn and
// dispatch are produced when the in-flight request resolves, which keeps
// every assistant turn adjacent to its own user turn.
func (c *Conversation) Submit(text string) (Dispatch, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Dispatch{}, false
	}

	if c.state == StateSending {
		c.queue = append(c.queue, text)
		c.logger.Debug("query queued behind in-flight request",
			zap.Int("queue_depth", len(c.queue)),
		)
		return Dispatch{}, false
	}

	return c.dispatch(text), true
}

// Resolve applies a successful response for the given dispatch. A dispatch
// from a superseded generation (the conversation was cleared while it was in
// flight) is discarded whole: no turn, no session adoption. On a live
// dispatch it appends exactly one assistant turn with normalized sources,
// adopts the server's session id, and hands back the next queued question as
// a new Dispatch if one is waiting.
func (c *Conversation) Resolve(d Dispatch, resp *kb.QueryResponse) (Dispatch, bool) {
	if c.stale(d) {
		return Dispatch{}, false
	}

	c.appendTurn(RoleAssistant, resp.Response, ranking.Normalize(resp.Sources))
	c.sessionID = session.Adopt(c.sessionID, session.ID(resp.SessionID))
	c.state = StateIdle

	c.logger.Debug("assistant turn appended",
		zap.Int64("query_id", resp.QueryID),
		zap.Int("num_sources", len(resp.Sources)),
		zap.Float64("response_time_ms", resp.ResponseTimeMs),
	)

	return c.popQueue()
}

// Fail applies a failed response for the given dispatch. Stale dispatches
// are discarded exactly as in Resolve. On a live dispatch it appends one
// assistant turn carrying the fixed apology and no sources, records the
// reason for diagnostics, and hands back the next queued question if any.
func (c *Conversation) Fail(d Dispatch, reason kb.FailureReason) (Dispatch, bool) {
	if c.stale(d) {
		return Dispatch{}, false
	}

	c.appendTurn(RoleAssistant, ApologyText, nil)
	c.lastFailure = reason
	c.failureLogged = true
	c.state = StateIdle

	c.logger.Warn("exchange failed",
		zap.String("reason", string(reason)),
		zap.String("query_preview", preview(d.Query)),
	)

	return c.popQueue()
}

// Clear resets the conversation: turns emptied, queue dropped, a new session
// id issued. The generation bump makes any still-outstanding request's
// eventual resolution a no-op, so a cleared conversation can never resurrect
// a turn.
func (c *Conversation) Clear() {
	c.generation++
	c.turns = nil
	c.queue = nil
	c.state = StateIdle
	c.sessionID = session.New()
	c.lastFailure = ""
	c.failureLogged = false

	c.logger.Debug("conversation cleared", zap.Uint64("generation", c.generation))
}

func (c *Conversation) stale(d Dispatch) bool {
	if d.Generation == c.generation {
		return false
	}
	c.logger.Debug("discarding resolution for cleared conversation",
		zap.Uint64("dispatch_generation", d.Generation),
		zap.Uint64("current_generation", c.generation),
	)
	return true
}

func (c *Conversation) dispatch(text string) Dispatch {
	c.appendTurn(RoleUser, text, nil)
	c.state = StateSending
	return Dispatch{
		Query:      text,
		SessionID:  c.sessionID,
		Generation: c.generation,
	}
}

func (c *Conversation) popQueue() (Dispatch, bool) {
	if len(c.queue) == 0 {
		return Dispatch{}, false
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	return c.dispatch(next), true
}

func (c *Conversation) appendTurn(role Role, text string, sources []ranking.Ranked) {
	c.nextTurnID++
	c.turns = append(c.turns, Turn{
		ID:        c.nextTurnID,
		Role:      role,
		Text:      text,
		Sources:   sources,
		CreatedAt: c.now(),
	})
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= 80 {
		return s
	}
	return s[:80] + "..."
}
