// Package conversation implements the chat state machine: the message log,
// the loading flag, the per-answer feedback set and the regeneration slot.
//
// Every operation has two phases. The before-call phase (Submit, Regenerate,
// Feedback) checks preconditions, mutates state and returns a *Request, or nil
// when the call is a no-op. Request.Do performs the network call without
// touching state and may run on any goroutine. Resolve applies the Outcome.
// Rendering surfaces observe Snapshots and never mutate state.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/zizi-chat/internal/client"
	"github.com/raphaelgruber/zizi-chat/internal/metrics"
	"github.com/raphaelgruber/zizi-chat/internal/models"
)

// NoIndex marks the regeneration slot as empty.
const NoIndex = -1

// Backend is the remote chat service. *client.Client satisfies it.
type Backend interface {
	Chat(ctx context.Context, query string) (*client.ChatResponse, error)
	SendFeedback(ctx context.Context, fb client.FeedbackRequest) error
}

// Options configures a Conversation. The zero value is usable.
type Options struct {
	// Greeting is the seed message at index 0. Defaults to models.DefaultGreeting.
	Greeting string

	Logger  *slog.Logger
	Metrics *metrics.Collector

	// Observer is called with a fresh snapshot after every state change.
	// It runs outside the lock on the goroutine that caused the change.
	Observer func(Snapshot)
}

// Conversation owns the state of one chat session. All methods are thread-safe.
type Conversation struct {
	backend  Backend
	logger   *slog.Logger
	metrics  *metrics.Collector
	observer func(Snapshot)

	mu              sync.Mutex
	log             []models.Message
	feedbackGiven   map[int]bool
	feedbackPending map[int]bool
	generation      map[int]int
	loading         bool
	regenerating    int
	closed          bool
}

// New creates a conversation seeded with the greeting message.
func New(backend Backend, opts Options) *Conversation {
	greeting := opts.Greeting
	if greeting == "" {
		greeting = models.DefaultGreeting
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Conversation{
		backend:         backend,
		logger:          logger,
		metrics:         opts.Metrics,
		observer:        opts.Observer,
		log:             []models.Message{models.NewBotMessage(greeting)},
		feedbackGiven:   make(map[int]bool),
		feedbackPending: make(map[int]bool),
		generation:      make(map[int]int),
		regenerating:    NoIndex,
	}
}

// =============================================================================
// BEFORE-CALL PHASE
// =============================================================================

// Submit appends the user message, sets loading and returns the chat request.
// Returns nil when text is blank or a submit is already in flight.
func (c *Conversation) Submit(text string) *Request {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed || c.loading {
		c.mu.Unlock()
		return nil
	}
	c.log = append(c.log, models.NewUserMessage(text))
	c.loading = true
	index := len(c.log) // where the answer will land
	c.mu.Unlock()

	c.logger.Debug("query submitted", "index", index, "query_len", len(text))
	c.notify()

	return &Request{op: OpSubmit, index: index, query: text, backend: c.backend}
}

// Regenerate marks index as regenerating and returns a chat request for the
// message's stored query. Returns nil unless index holds a bot message with a
// query and no other regeneration is in flight.
func (c *Conversation) Regenerate(index int) *Request {
	c.mu.Lock()
	if c.closed || c.regenerating != NoIndex || !c.validIndex(index) || !c.log[index].CanRegenerate() {
		c.mu.Unlock()
		return nil
	}
	query := c.log[index].Query
	c.regenerating = index
	gen := c.generation[index]
	c.mu.Unlock()

	c.logger.Debug("regenerating answer", "index", index)
	c.notify()

	return &Request{op: OpRegenerate, index: index, query: query, generation: gen, backend: c.backend}
}

// Feedback returns a feedback request for the bot message at index.
// Returns nil for the seed message, non-bot messages, unknown kinds, and
// answers whose feedback is recorded or already in flight.
func (c *Conversation) Feedback(index int, kind models.FeedbackKind) *Request {
	if !kind.Valid() {
		return nil
	}

	c.mu.Lock()
	if c.closed || index == 0 || !c.validIndex(index) || !c.log[index].IsBot() ||
		c.feedbackGiven[index] || c.feedbackPending[index] {
		c.mu.Unlock()
		return nil
	}
	msg := c.log[index]
	c.feedbackPending[index] = true
	gen := c.generation[index]
	c.mu.Unlock()

	return &Request{
		op:         OpFeedback,
		index:      index,
		query:      msg.Query,
		generation: gen,
		backend:    c.backend,
		feedback: client.FeedbackRequest{
			Query:    msg.Query,
			Answer:   msg.Content,
			Source:   msg.Source,
			Feedback: kind,
		},
	}
}

// =============================================================================
// AFTER-RESOLUTION PHASE
// =============================================================================

// Resolve applies the outcome of a request. Loading and the regeneration slot
// are always released. A chat reply without a response object counts as a
// failure. Outcomes arriving after Close are dropped and not timed.
func (c *Conversation) Resolve(out Outcome) {
	if out.Op != OpFeedback && out.Err == nil && (out.Response == nil || out.Response.Response == nil) {
		out.Response, out.Err = nil, client.ErrNoResponse
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.metrics != nil {
		c.metrics.RecordTiming(out.Op.String(), out.Duration, out.Err)
	}

	switch out.Op {
	case OpSubmit:
		c.resolveSubmit(out)
	case OpRegenerate:
		c.resolveRegenerate(out)
	case OpFeedback:
		c.resolveFeedback(out)
	}
	c.mu.Unlock()

	c.notify()
}

// Caller must hold c.mu.
func (c *Conversation) resolveSubmit(out Outcome) {
	c.loading = false

	if out.Err != nil {
		c.logger.Warn("chat request failed", "index", out.Index, "error", out.Err)
		c.log = append(c.log, models.NewBotMessage(models.FailureText))
		return
	}

	answer := *out.Response.Response
	c.log = append(c.log, models.NewAnswer(out.Query, answer.Answer, answer.Source))
	c.logger.Info("answer received", "index", len(c.log)-1, "duration_ms", out.Duration.Milliseconds())
}

// Caller must hold c.mu.
func (c *Conversation) resolveRegenerate(out Outcome) {
	c.regenerating = NoIndex

	if out.Err != nil {
		c.logger.Error("regeneration failed", "index", out.Index, "error", out.Err)
		return
	}
	if !c.validIndex(out.Index) || !c.log[out.Index].IsBot() {
		return
	}

	answer := *out.Response.Response
	c.log[out.Index].ApplyAnswer(answer.Answer, answer.Source)
	delete(c.feedbackGiven, out.Index)
	c.generation[out.Index]++
	c.logger.Info("answer regenerated", "index", out.Index, "duration_ms", out.Duration.Milliseconds())
}

// Caller must hold c.mu.
func (c *Conversation) resolveFeedback(out Outcome) {
	delete(c.feedbackPending, out.Index)

	if out.Err != nil {
		c.logger.Error("feedback failed", "index", out.Index, "error", out.Err)
		return
	}
	if c.generation[out.Index] != out.Generation {
		c.logger.Debug("dropping feedback for regenerated answer", "index", out.Index)
		return
	}
	c.feedbackGiven[out.Index] = true
	c.logger.Info("feedback recorded", "index", out.Index)
}

// =============================================================================
// SYNCHRONOUS HELPERS
// =============================================================================

// SubmitQuery runs a full submit and reports whether anything happened.
func (c *Conversation) SubmitQuery(ctx context.Context, text string) bool {
	return c.run(ctx, c.Submit(text))
}

// RegenerateAnswer runs a full regeneration and reports whether anything happened.
func (c *Conversation) RegenerateAnswer(ctx context.Context, index int) bool {
	return c.run(ctx, c.Regenerate(index))
}

// SubmitFeedback runs a full feedback call and reports whether anything happened.
func (c *Conversation) SubmitFeedback(ctx context.Context, index int, kind models.FeedbackKind) bool {
	return c.run(ctx, c.Feedback(index, kind))
}

func (c *Conversation) run(ctx context.Context, req *Request) bool {
	if req == nil {
		return false
	}
	c.Resolve(req.Do(ctx))
	return true
}

// =============================================================================
// STATE ACCESS
// =============================================================================

// Snapshot returns a copy of the current state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close discards the conversation. Later outcomes are ignored and new
// operations are no-ops.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Conversation) snapshotLocked() Snapshot {
	msgs := make([]models.Message, len(c.log))
	copy(msgs, c.log)

	given := make(map[int]bool, len(c.feedbackGiven))
	for i, v := range c.feedbackGiven {
		given[i] = v
	}

	return Snapshot{
		Messages:      msgs,
		FeedbackGiven: given,
		Loading:       c.loading,
		Regenerating:  c.regenerating,
	}
}

func (c *Conversation) notify() {
	if c.observer == nil {
		return
	}
	c.observer(c.Snapshot())
}

// Caller must hold c.mu.
func (c *Conversation) validIndex(i int) bool {
	return i >= 0 && i < len(c.log)
}

// =============================================================================
// REQUESTS AND OUTCOMES
// =============================================================================

// Op identifies the operation a request belongs to.
type Op int

const (
	OpSubmit Op = iota
	OpRegenerate
	OpFeedback
)

// String returns the metrics name of the operation.
func (o Op) String() string {
	switch o {
	case OpSubmit:
		return metrics.OpChat
	case OpRegenerate:
		return metrics.OpRegenerate
	case OpFeedback:
		return metrics.OpFeedback
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Request is the network half of an operation.
type Request struct {
	op         Op
	index      int
	query      string
	generation int
	feedback   client.FeedbackRequest
	backend    Backend
}

// Op returns the operation kind.
func (r *Request) Op() Op { return r.op }

// Index returns the log index the request concerns. For a submit this is the
// index the answer will occupy.
func (r *Request) Index() int { return r.index }

// Do performs the network call. It touches no conversation state, so it can
// run off the UI goroutine. A panicking backend is reported as an error.
func (r *Request) Do(ctx context.Context) (out Outcome) {
	out = Outcome{Op: r.op, Index: r.index, Query: r.query, Generation: r.generation}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			out.Response = nil
			out.Err = fmt.Errorf("backend panic: %v", p)
		}
		out.Duration = time.Since(start)
	}()

	switch r.op {
	case OpSubmit, OpRegenerate:
		out.Response, out.Err = r.backend.Chat(ctx, r.query)
	case OpFeedback:
		out.Err = r.backend.SendFeedback(ctx, r.feedback)
	default:
		out.Err = fmt.Errorf("unknown operation %s", r.op)
	}
	return out
}

// Outcome is the result of Request.Do, applied with Conversation.Resolve.
type Outcome struct {
	Op         Op
	Index      int
	Query      string
	Generation int
	Response   *client.ChatResponse
	Err        error
	Duration   time.Duration
}
