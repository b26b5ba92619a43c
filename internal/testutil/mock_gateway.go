// Package testutil provides testing utilities for the LLM cache client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockGateway is a configurable fake OpenAI-compatible gateway for tests.
// It counts requests, which lets tests prove the compute-once guarantee
// of the response cache, and can inject latency and failures.
type MockGateway struct {
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc

	content   string
	delay     time.Duration
	failCount int
	failWith  int

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockGateway creates a mock gateway answering every completion request
// with the given assistant content.
func NewMockGateway(content string) *MockGateway {
	mock := &MockGateway{
		handlers: make(map[string]http.HandlerFunc),
		content:  content,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()

		handler, custom := mock.handlers[r.URL.Path]
		delay := mock.delay
		failing := mock.failCount != 0
		failWith := mock.failWith
		if mock.failCount > 0 {
			mock.failCount--
		}
		content := mock.content
		mock.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		if custom {
			handler(w, r)
			return
		}

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(failWith)
			fmt.Fprintf(w, `{"error": {"message": "injected failure", "code": %d}}`, failWith)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, CompletionJSON(content))
	}))

	return mock
}

// URL returns the mock server URL (use it as the gateway base URL).
func (m *MockGateway) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGateway) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and injected behavior.
func (m *MockGateway) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.delay = 0
	m.failCount = 0
}

// SetContent changes the assistant content served by the default handler.
func (m *MockGateway) SetContent(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
}

// SetDelay adds artificial latency to every response, simulating a slow
// model backend so cached reads are measurably faster.
func (m *MockGateway) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// FailTimes makes the next n requests fail with the given status code.
// n < 0 fails every request until Reset.
func (m *MockGateway) FailTimes(status, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = status
	m.failCount = n
}

// SetHandler installs a custom handler for a specific path.
func (m *MockGateway) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// GetRequestCount returns the number of requests the server has received.
func (m *MockGateway) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// CompletionJSON builds a minimal OpenAI-style chat completion payload
// carrying the given assistant content.
func CompletionJSON(content string) string {
	return fmt.Sprintf(`{
  "id": "chatcmpl-test",
  "object": "chat.completion",
  "model": "llama3",
  "choices": [
    {
      "index": 0,
      "message": {"role": "assistant", "content": %q},
      "finish_reason": "stop"
    }
  ],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`, content)
}
