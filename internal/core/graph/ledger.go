package graph

import (
	"sync"
	"time"

	"github.com/agenthands/ontoscope/internal/core/model"
)

// Ledger records before/after snapshots per mutation and supports
// single-step undo. Records are append-only and retained for history
// display; undo only ever pops the most recent one. There is no redo.
type Ledger struct {
	mu      sync.Mutex
	store   *Store
	applied *model.AppliedSet
	records []model.ChangeRecord
	nextID  int64

	Now func() time.Time
}

func NewLedger(store *Store, applied *model.AppliedSet) *Ledger {
	return &Ledger{
		store:   store,
		applied: applied,
		nextID:  1,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record appends a change record. suggestionID is empty for direct edits.
func (l *Ledger) Record(kind model.MutationKind, before, after model.GraphSnapshot, suggestionID string) model.ChangeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := model.ChangeRecord{
		ID:           l.nextID,
		Kind:         kind,
		Timestamp:    l.Now(),
		Before:       before,
		After:        after,
		SuggestionID: suggestionID,
	}
	l.nextID++
	l.records = append(l.records, rec)
	return rec
}

// UndoLast pops the most recent record, restores its before snapshot and,
// when the record came from a suggestion, makes that suggestion eligible
// for re-application. Returns nil when there is nothing to undo; that is
// a user-facing no-op, not an error.
func (l *Ledger) UndoLast() *model.ChangeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.records) == 0 {
		return nil
	}
	rec := l.records[len(l.records)-1]
	l.records = l.records[:len(l.records)-1]
	l.store.Restore(rec.Before)
	if rec.SuggestionID != "" && l.applied != nil {
		l.applied.Remove(rec.SuggestionID)
	}
	return &rec
}

// History returns the retained records, oldest first.
func (l *Ledger) History() []model.ChangeRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.ChangeRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
