package render

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// Scheduler serializes draw requests against a renderer whose surface may
// be mid-replacement. Each submission gets a monotonically increasing
// generation token; a submission superseded by a newer one is abandoned
// instead of drawing a stale graph over a fresher one. Draw failures are
// retried a bounded number of times with increasing backoff before
// surfacing ErrRenderTargetUnavailable.
type Scheduler struct {
	mu         sync.Mutex
	renderer   Renderer
	generation atomic.Uint64
	attempts   int
	backoff    time.Duration
	log        *zap.Logger

	// Sleep is swapped in tests to avoid real delays.
	Sleep func(time.Duration)
}

func NewScheduler(renderer Renderer, attempts int, backoff time.Duration, log *zap.Logger) *Scheduler {
	if attempts < 1 {
		attempts = 1
	}
	return &Scheduler{
		renderer: renderer,
		attempts: attempts,
		backoff:  backoff,
		log:      log,
		Sleep:    time.Sleep,
	}
}

// SetRenderer swaps the drawing target (e.g. on websocket reconnect).
func (s *Scheduler) SetRenderer(r Renderer) {
	s.mu.Lock()
	s.renderer = r
	s.mu.Unlock()
}

// Attached reports whether a drawing surface is currently connected.
func (s *Scheduler) Attached() bool {
	return s.target() != nil
}

func (s *Scheduler) target() Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer
}

// Submit draws the frame, retrying transient failures. A nil return with
// no draw happens when a newer submission superseded this one.
func (s *Scheduler) Submit(ctx context.Context, frame Frame) error {
	gen := s.generation.Add(1)
	frame.Generation = gen

	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if s.generation.Load() != gen {
			// Superseded: abandon rather than apply out of order.
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r := s.target()
		if r == nil {
			lastErr = fmt.Errorf("no renderer attached")
		} else if lastErr = r.Draw(ctx, frame); lastErr == nil {
			return nil
		}
		if attempt < s.attempts-1 {
			s.Sleep(s.backoff * time.Duration(attempt+1))
		}
	}
	if s.log != nil {
		s.log.Warn("render target unavailable after retries",
			zap.Uint64("generation", gen),
			zap.Int("attempts", s.attempts),
			zap.Error(lastErr))
	}
	return fmt.Errorf("%w after %d attempts: %v", model.ErrRenderTargetUnavailable, s.attempts, lastErr)
}

// Highlight forwards a highlight request; highlight traffic is best
// effort and does not go through the retry loop.
func (s *Scheduler) Highlight(ctx context.Context, h Highlight) {
	if r := s.target(); r != nil {
		if err := r.Highlight(ctx, h); err != nil && s.log != nil {
			s.log.Debug("highlight request dropped", zap.Error(err))
		}
	}
}

func (s *Scheduler) ClearHighlights(ctx context.Context) {
	if r := s.target(); r != nil {
		if err := r.ClearHighlights(ctx); err != nil && s.log != nil {
			s.log.Debug("clear-highlights request dropped", zap.Error(err))
		}
	}
}
