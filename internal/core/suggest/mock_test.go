package suggest

import (
	"context"
	"sync"

	"github.com/agenthands/ontoscope/internal/notify"
	"github.com/agenthands/ontoscope/internal/render"
)

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
	Prompts       []string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string, severity notify.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

type stubRenderer struct {
	mu         sync.Mutex
	frames     []render.Frame
	highlights []render.Highlight
	clears     int
}

func (r *stubRenderer) Draw(ctx context.Context, f render.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *stubRenderer) Highlight(ctx context.Context, h render.Highlight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlights = append(r.highlights, h)
	return nil
}

func (r *stubRenderer) ClearHighlights(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	return nil
}

func (r *stubRenderer) clearCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}
