// Package session drives the interactive "drag to connect" gesture: a
// small state machine between the drawing surface's pointer events and
// the graph store.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/ontoscope/internal/config"
	"github.com/agenthands/ontoscope/internal/core/graph"
	"github.com/agenthands/ontoscope/internal/core/model"
	"github.com/agenthands/ontoscope/internal/core/scoring"
	"github.com/agenthands/ontoscope/internal/notify"
	"github.com/agenthands/ontoscope/internal/persist"
	"github.com/agenthands/ontoscope/internal/render"
)

type State string

const (
	StateDisabled       State = "disabled"
	StateIdle           State = "idle"
	StateDragging       State = "dragging"
	StateAwaitingCommit State = "awaiting_commit"
)

// ConnectionDetails are the caller-supplied attributes of a committed
// connection.
type ConnectionDetails struct {
	Label       string            `json:"label"`
	Kind        model.EdgeKind    `json:"kind"`
	Cardinality model.Cardinality `json:"cardinality"`
	Description string            `json:"description"`
	AISuggested bool              `json:"ai_suggested"`
}

// Session is the connection-creation state machine for one domain's
// graph. All mutation runs synchronously inside the event callback;
// the mutex only guards against timer callbacks racing pointer events.
type Session struct {
	mu sync.Mutex

	state    State
	sourceID string
	targetID string

	store     *graph.Store
	ledger    *graph.Ledger
	scheduler *render.Scheduler
	notifier  notify.Notifier
	persister *persist.Store // nil: local-only mode
	domainID  string
	editor    config.EditorConfig
	log       *zap.Logger

	candidates []model.Candidate

	panelTimer     *time.Timer
	highlightTimer *time.Timer
}

func New(store *graph.Store, ledger *graph.Ledger, scheduler *render.Scheduler, notifier notify.Notifier, persister *persist.Store, domainID string, editor config.EditorConfig, log *zap.Logger) *Session {
	return &Session{
		state:     StateDisabled,
		store:     store,
		ledger:    ledger,
		scheduler: scheduler,
		notifier:  notifier,
		persister: persister,
		domainID:  domainID,
		editor:    editor,
		log:       log,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Candidates returns the candidates computed for the current drag.
func (s *Session) Candidates() []model.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Enable switches connect mode on. Enabling an already-enabled session
// is a no-op.
func (s *Session) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDisabled {
		s.state = StateIdle
	}
}

// Disable switches connect mode off. An in-flight drag is cancelled
// first.
func (s *Session) Disable(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDragging || s.state == StateAwaitingCommit {
		s.cancelLocked(ctx)
	}
	s.state = StateDisabled
}

// BeginDrag starts a connection drag from the given node. Valid only in
// the idle state. Candidates are scored immediately and highlighted by
// confidence bucket; the suggestion panel auto-dismisses after the
// configured timeout if untouched.
func (s *Session) BeginDrag(ctx context.Context, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return fmt.Errorf("begin drag: invalid in state %s", s.state)
	}
	source, ok := s.store.Node(nodeID)
	if !ok {
		return fmt.Errorf("begin drag: %s: %w", nodeID, model.ErrNodeNotFound)
	}

	s.state = StateDragging
	s.sourceID = nodeID
	s.candidates = scoring.Score(source, s.store.Nodes())

	shown := s.candidates
	if len(shown) > scoring.DisplayLimit {
		shown = shown[:scoring.DisplayLimit]
	}
	for _, c := range shown {
		s.scheduler.Highlight(ctx, render.Highlight{
			NodeID: c.TargetNodeID,
			Bucket: render.CandidateBucket(model.Bucket(c.Confidence)),
		})
	}

	s.stopPanelTimer()
	s.panelTimer = time.AfterFunc(s.editor.PanelTimeout(), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateDragging {
			return
		}
		s.scheduler.ClearHighlights(context.Background())
		s.candidates = nil
	})

	return nil
}

// UpdateDragTarget moves the ghost-line endpoint. Valid only while
// dragging; no state change.
func (s *Session) UpdateDragTarget(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging {
		return fmt.Errorf("update drag target: invalid in state %s", s.state)
	}
	frame := render.BuildFrame(s.store.Nodes(), s.store.Edges())
	frame.Ghost = &render.GhostLine{SourceID: s.sourceID, X: x, Y: y}
	return s.scheduler.Submit(ctx, frame)
}

// EndDrag finishes a drag over targetNodeID (empty for a release over
// empty space). Releasing over nothing or over the source node cancels;
// otherwise the session awaits connection details from the caller.
func (s *Session) EndDrag(ctx context.Context, targetNodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging {
		return fmt.Errorf("end drag: invalid in state %s", s.state)
	}
	if targetNodeID == "" || targetNodeID == s.sourceID {
		s.cancelLocked(ctx)
		return nil
	}
	if _, ok := s.store.Node(targetNodeID); !ok {
		s.cancelLocked(ctx)
		return fmt.Errorf("end drag: %s: %w", targetNodeID, model.ErrNodeNotFound)
	}
	s.targetID = targetNodeID
	s.state = StateAwaitingCommit
	return nil
}

// Commit creates the pending edge with the provided details. Valid only
// while awaiting commit. The local mutation and the ledger record always
// come first; persistence is attempted afterwards and its failure is
// notified without rollback.
func (s *Session) Commit(ctx context.Context, details ConnectionDetails) (model.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingCommit {
		return model.Edge{}, fmt.Errorf("commit: invalid in state %s", s.state)
	}
	return s.commitLocked(ctx, details)
}

// QuickConnect commits straight from a ranked candidate, bypassing the
// details-entry step. Valid while dragging or awaiting commit.
func (s *Session) QuickConnect(ctx context.Context, c model.Candidate) (model.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateDragging && s.state != StateAwaitingCommit {
		return model.Edge{}, fmt.Errorf("quick connect: invalid in state %s", s.state)
	}
	if c.TargetNodeID == s.sourceID {
		s.cancelLocked(ctx)
		return model.Edge{}, fmt.Errorf("quick connect: %w", model.ErrSelfLoop)
	}
	s.targetID = c.TargetNodeID
	s.state = StateAwaitingCommit
	return s.commitLocked(ctx, ConnectionDetails{
		Label:       c.RelationshipName,
		Kind:        model.EdgeKindRelationship,
		Cardinality: model.OneToMany,
		AISuggested: true,
	})
}

func (s *Session) commitLocked(ctx context.Context, details ConnectionDetails) (model.Edge, error) {
	before, err := s.store.Snapshot()
	if err != nil {
		s.notifier.Notify("Could not snapshot the graph; connection aborted", notify.SeverityError)
		return model.Edge{}, err
	}

	edge := model.Edge{
		SourceID:    s.sourceID,
		TargetID:    s.targetID,
		Kind:        details.Kind,
		Label:       details.Label,
		Cardinality: details.Cardinality,
		Description: details.Description,
		IsNew:       true,
	}
	created, added, err := s.store.AddEdge(edge)
	if err != nil {
		s.notifier.Notify(fmt.Sprintf("Connection rejected: %v", err), notify.SeverityError)
		s.cancelLocked(ctx)
		return model.Edge{}, err
	}
	if added {
		after, snapErr := s.store.Snapshot()
		if snapErr != nil {
			// An unrecordable mutation cannot be undone safely.
			s.store.Restore(before)
			s.notifier.Notify("Could not record the connection; change reverted", notify.SeverityError)
			s.cancelLocked(ctx)
			return model.Edge{}, snapErr
		}
		s.ledger.Record(model.MutationConnect, before, after, "")
	} else {
		s.notifier.Notify("Connection already exists", notify.SeverityInfo)
	}

	s.finishGesture()

	if added && s.persister != nil && s.domainID != "" {
		if err := s.persister.CreateRelationship(ctx, s.domainID, persist.RelationshipRecord{
			ID:             created.ID,
			Name:           created.Label,
			Kind:           string(created.Kind),
			Description:    created.Description,
			SourceEntityID: created.SourceID,
			TargetEntityID: created.TargetID,
			Cardinality:    string(created.Cardinality),
			IsAISuggested:  details.AISuggested,
		}); err != nil {
			// Local-first: the edge stays even though the backend call
			// failed. Flag the divergence, do not roll back.
			if s.log != nil {
				s.log.Warn("relationship persisted locally only",
					zap.String("edge_id", created.ID),
					zap.String("domain_id", s.domainID),
					zap.Error(err))
			}
			s.notifier.Notify("Connection saved locally but not persisted to backend", notify.SeverityWarning)
		} else {
			s.notifier.Notify(fmt.Sprintf("Connection %q persisted", created.Label), notify.SeveritySuccess)
		}
	}

	if added {
		s.scheduler.Highlight(ctx, render.Highlight{EdgeID: created.ID, Bucket: render.HighlightNew})
		s.stopHighlightTimer()
		s.highlightTimer = time.AfterFunc(s.editor.EdgeHighlight(), func() {
			s.scheduler.ClearHighlights(context.Background())
		})
	}

	if err := s.scheduler.Submit(ctx, render.BuildFrame(s.store.Nodes(), s.store.Edges())); err != nil {
		// The edge exists regardless; the surface just missed a frame.
		s.notifier.Notify("Drawing surface unavailable; the graph will refresh on reconnect", notify.SeverityWarning)
	}
	return created, nil
}

// Cancel aborts an in-flight drag or pending commit.
func (s *Session) Cancel(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateDragging || s.state == StateAwaitingCommit {
		s.cancelLocked(ctx)
	}
}

// cancelLocked clears ghost line, highlights and timers, and returns the
// session to idle. Caller holds the mutex.
func (s *Session) cancelLocked(ctx context.Context) {
	s.finishGesture()
	s.scheduler.ClearHighlights(ctx)
	frame := render.BuildFrame(s.store.Nodes(), s.store.Edges())
	if err := s.scheduler.Submit(ctx, frame); err != nil && s.log != nil {
		s.log.Debug("redraw after cancel failed", zap.Error(err))
	}
}

func (s *Session) finishGesture() {
	s.stopPanelTimer()
	s.sourceID = ""
	s.targetID = ""
	s.candidates = nil
	s.state = StateIdle
}

// Invalidate stops all pending timers, for when the active graph is
// swapped out underneath the session.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopPanelTimer()
	s.stopHighlightTimer()
	if s.state == StateDragging || s.state == StateAwaitingCommit {
		s.sourceID = ""
		s.targetID = ""
		s.candidates = nil
		s.state = StateIdle
	}
}

func (s *Session) stopPanelTimer() {
	if s.panelTimer != nil {
		s.panelTimer.Stop()
		s.panelTimer = nil
	}
}

func (s *Session) stopHighlightTimer() {
	if s.highlightTimer != nil {
		s.highlightTimer.Stop()
		s.highlightTimer = nil
	}
}
