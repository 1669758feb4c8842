package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/zizi-chat/internal/client"
	"github.com/raphaelgruber/zizi-chat/internal/conversation"
)

// testBackend is an in-process chat server that answers every query the same way.
type testBackend struct {
	srv *httptest.Server

	mu        sync.Mutex
	answer    string
	source    string
	fail      bool
	queued    []string // answers served before falling back to answer
	queries   []string
	feedbacks []client.FeedbackRequest
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{answer: "Early Childhood Development.", source: "Zizi Report 2021"}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *testBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fail {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	switch r.URL.Path {
	case client.ChatPath:
		var req client.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		b.queries = append(b.queries, req.Query)
		answer := b.answer
		if len(b.queued) > 0 {
			answer, b.queued = b.queued[0], b.queued[1:]
		}
		_ = json.NewEncoder(w).Encode(client.ChatResponse{
			Response: &client.Answer{Answer: answer, Source: b.source},
		})
	case client.FeedbackPath:
		var fb client.FeedbackRequest
		_ = json.NewDecoder(r.Body).Decode(&fb)
		b.feedbacks = append(b.feedbacks, fb)
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func (b *testBackend) set(fn func(b *testBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *testBackend) feedbackCalls() []client.FeedbackRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]client.FeedbackRequest(nil), b.feedbacks...)
}

func (b *testBackend) client() *client.Client {
	return client.New(b.srv.URL, client.Options{Timeout: 5 * time.Second})
}

func (b *testBackend) factory() conversationFactory {
	c := b.client()
	return func(observer func(conversation.Snapshot)) *conversation.Conversation {
		return conversation.New(c, conversation.Options{Observer: observer})
	}
}
