// Package suggest applies and generates AI ontology suggestions.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/ontoscope/internal/core/graph"
	"github.com/agenthands/ontoscope/internal/core/model"
	"github.com/agenthands/ontoscope/internal/notify"
	"github.com/agenthands/ontoscope/internal/persist"
	"github.com/agenthands/ontoscope/internal/render"
)

// Properties attached to an edge when an enhancement suggestion asks for
// quantity tracking.
var quantityEdgeProperties = []string{"quantity", "unit_price", "discount"}

var defaultClassProperties = []string{"id", "created_date"}

const defaultRelationName = "relates_to"

// Applier validates and applies one suggestion against the graph store,
// recording every mutation in the ledger so it can be undone. Each
// suggestion applies at most once; undo releases it again.
type Applier struct {
	Store    *graph.Store
	Ledger   *graph.Ledger
	Applied  *model.AppliedSet
	Notifier notify.Notifier

	// Persister is optional; nil means local-only mode.
	Persister *persist.Store
	DomainID  string

	// Scheduler is optional; when set, an applied suggestion redraws the
	// surface and highlights the affected elements, with the highlight
	// cleared after HighlightDecay.
	Scheduler      *render.Scheduler
	HighlightDecay time.Duration

	// NodeSpacing is the horizontal gap for newly placed class nodes.
	NodeSpacing float64

	UUIDGenerator func() string
	Log           *zap.Logger

	highlightTimer *time.Timer
}

func NewApplier(store *graph.Store, ledger *graph.Ledger, applied *model.AppliedSet, notifier notify.Notifier, log *zap.Logger) *Applier {
	return &Applier{
		Store:         store,
		Ledger:        ledger,
		Applied:       applied,
		Notifier:      notifier,
		NodeSpacing:   250,
		UUIDGenerator: func() string { return uuid.New().String() },
		Log:           log,
	}
}

// Apply dispatches on the suggestion kind. It returns true when the
// graph was mutated. An already-applied suggestion reports and returns
// false without touching the graph; validation failures return an error
// and leave the graph unchanged.
func (a *Applier) Apply(ctx context.Context, s model.Suggestion) (bool, error) {
	if a.Store == nil {
		return false, fmt.Errorf("apply suggestion: no graph selected")
	}
	if a.Applied.Has(s.ID) {
		a.Notifier.Notify(fmt.Sprintf("Suggestion %q already applied", s.Title), notify.SeverityInfo)
		return false, nil
	}

	switch s.Kind {
	case model.SuggestionOntologyClass:
		return a.applyClass(ctx, s)
	case model.SuggestionProperty:
		return a.applyProperty(ctx, s)
	case model.SuggestionRelationship:
		return a.applyRelationship(ctx, s)
	case model.SuggestionEnhancement:
		return a.applyEnhancement(ctx, s)
	default:
		return false, fmt.Errorf("apply suggestion %s: kind %q: %w", s.ID, s.Kind, model.ErrInvalidSuggestionType)
	}
}

func (a *Applier) applyClass(ctx context.Context, s model.Suggestion) (bool, error) {
	label := s.ClassName
	if label == "" {
		label = DeriveClassLabel(s.Title)
	}
	if label == "" {
		return false, fmt.Errorf("apply class suggestion %s: no class name", s.ID)
	}
	if _, exists := a.Store.NodeByLabel(label); exists {
		a.Notifier.Notify(fmt.Sprintf("An entity named %q already exists", label), notify.SeverityWarning)
		return false, fmt.Errorf("apply class suggestion %s: %q: %w", s.ID, label, model.ErrDuplicateNodeName)
	}

	props := s.Properties
	if len(props) == 0 {
		props = ParseBracketList(s.Implementation)
	}
	if len(props) == 0 {
		props = defaultClassProperties
	}

	before, err := a.Store.Snapshot()
	if err != nil {
		return false, err
	}
	node := model.Node{
		ID:          a.UUIDGenerator(),
		Kind:        model.NodeKindClass,
		Label:       label,
		Description: s.Description,
		Properties:  props,
		Position:    model.Position{X: a.Store.MaxX() + a.NodeSpacing, Y: 100},
		IsNew:       true,
	}
	created, err := a.Store.AddNode(node)
	if err != nil {
		return false, err
	}
	if err := a.finish(ctx, s, before); err != nil {
		return false, err
	}

	a.persistEntity(ctx, created)
	a.flash(ctx, render.Highlight{NodeID: created.ID, Bucket: render.HighlightNew})
	a.Notifier.Notify(fmt.Sprintf("Added entity %q", label), notify.SeveritySuccess)
	return true, nil
}

func (a *Applier) applyProperty(ctx context.Context, s model.Suggestion) (bool, error) {
	target, err := a.resolveNode(s.TargetNode, 0)
	if err != nil {
		return false, fmt.Errorf("apply property suggestion %s: %w", s.ID, err)
	}

	propName := s.PropertyName
	if propName == "" {
		propName = PropertyAfterAdd(s.Implementation)
	}
	if propName == "" {
		a.Notifier.Notify("Could not determine a property name from the suggestion", notify.SeverityWarning)
		return false, nil
	}
	for _, p := range target.Properties {
		if strings.EqualFold(p, propName) {
			// Already present: deliberate no-op, not an error.
			a.Notifier.Notify(fmt.Sprintf("%q already has property %q", target.Label, propName), notify.SeverityInfo)
			return false, nil
		}
	}

	before, err := a.Store.Snapshot()
	if err != nil {
		return false, err
	}
	props := append(append([]string{}, target.Properties...), propName)
	if _, err := a.Store.EditNode(target.ID, graph.NodePatch{Properties: &props}); err != nil {
		return false, err
	}
	if err := a.finish(ctx, s, before); err != nil {
		return false, err
	}

	a.flash(ctx, render.Highlight{NodeID: target.ID, Bucket: render.HighlightModified})
	a.Notifier.Notify(fmt.Sprintf("Added property %q to %q", propName, target.Label), notify.SeveritySuccess)
	return true, nil
}

func (a *Applier) applyRelationship(ctx context.Context, s model.Suggestion) (bool, error) {
	source, err := a.resolveNode(s.SourceNode, 0)
	if err != nil {
		return false, fmt.Errorf("apply relationship suggestion %s: source: %w", s.ID, model.ErrUnresolvableSuggestionEndpoints)
	}
	target, err := a.resolveNode(s.TargetNode, 1)
	if err != nil || target.ID == source.ID {
		return false, fmt.Errorf("apply relationship suggestion %s: target: %w", s.ID, model.ErrUnresolvableSuggestionEndpoints)
	}

	label := s.RelationshipName
	if label == "" {
		label = RelationNameAfterAdd(s.Implementation)
	}
	if label == "" {
		label = defaultRelationName
	}

	cardinality := s.Cardinality
	if cardinality == "" {
		if strings.Contains(strings.ToLower(s.Description), "quantity") {
			cardinality = model.Attributed
		} else {
			cardinality = model.OneToMany
		}
	}

	before, err := a.Store.Snapshot()
	if err != nil {
		return false, err
	}
	edge := model.Edge{
		ID:          a.UUIDGenerator(),
		SourceID:    source.ID,
		TargetID:    target.ID,
		Kind:        model.EdgeKindRelationship,
		Label:       label,
		Cardinality: cardinality,
		Description: s.Description,
		IsNew:       true,
	}
	created, added, err := a.Store.AddEdge(edge)
	if err != nil {
		return false, err
	}
	if !added {
		a.Notifier.Notify(fmt.Sprintf("Relationship %q already exists", label), notify.SeverityInfo)
		return false, nil
	}
	if err := a.finish(ctx, s, before); err != nil {
		return false, err
	}

	a.persistRelationship(ctx, created)
	a.flash(ctx, render.Highlight{EdgeID: created.ID, Bucket: render.HighlightNew})
	a.Notifier.Notify(fmt.Sprintf("Added relationship %q", label), notify.SeveritySuccess)
	return true, nil
}

func (a *Applier) applyEnhancement(ctx context.Context, s model.Suggestion) (bool, error) {
	desc := strings.ToLower(s.Description)
	var match *model.Edge
	for _, e := range a.Store.Edges() {
		if e.Label != "" && strings.Contains(desc, strings.ToLower(e.Label)) {
			found := e
			match = &found
			break
		}
	}
	if match == nil {
		// Nothing to enhance: no-op, not an error.
		a.Notifier.Notify("No matching relationship found for this enhancement", notify.SeverityInfo)
		return false, nil
	}
	if !strings.Contains(desc, "quantity") {
		a.Notifier.Notify("Enhancement not recognized; nothing changed", notify.SeverityInfo)
		return false, nil
	}

	before, err := a.Store.Snapshot()
	if err != nil {
		return false, err
	}
	if _, err := a.Store.SetEdgeProperties(match.ID, quantityEdgeProperties); err != nil {
		return false, err
	}
	if err := a.finish(ctx, s, before); err != nil {
		return false, err
	}

	a.flash(ctx, render.Highlight{EdgeID: match.ID, Bucket: render.HighlightModified})
	a.Notifier.Notify(fmt.Sprintf("Enhanced relationship %q with quantity attributes", match.Label), notify.SeveritySuccess)
	return true, nil
}

// finish records the mutation and marks the suggestion applied. If the
// after snapshot cannot be taken the mutation is rolled back: a change
// the ledger cannot record cannot be undone later.
func (a *Applier) finish(ctx context.Context, s model.Suggestion, before model.GraphSnapshot) error {
	after, err := a.Store.Snapshot()
	if err != nil {
		a.Store.Restore(before)
		return err
	}
	a.Ledger.Record(model.MutationApplySuggestion, before, after, s.ID)
	a.Applied.Add(s.ID)
	return nil
}

// flash redraws the surface and highlights the elements the suggestion
// touched. The highlight decays after HighlightDecay; a fresh apply
// restarts the clock.
func (a *Applier) flash(ctx context.Context, highlights ...render.Highlight) {
	if a.Scheduler == nil || !a.Scheduler.Attached() {
		return
	}
	if err := a.Scheduler.Submit(ctx, render.BuildFrame(a.Store.Nodes(), a.Store.Edges())); err != nil {
		if a.Log != nil {
			a.Log.Debug("redraw after suggestion not delivered", zap.Error(err))
		}
	}
	for _, h := range highlights {
		a.Scheduler.Highlight(ctx, h)
	}
	if a.HighlightDecay <= 0 {
		return
	}
	if a.highlightTimer != nil {
		a.highlightTimer.Stop()
	}
	sched := a.Scheduler
	a.highlightTimer = time.AfterFunc(a.HighlightDecay, func() {
		sched.ClearHighlights(context.Background())
	})
}

// resolveNode finds a node by id or label; an empty ref falls back to
// the node at the given insertion index.
func (a *Applier) resolveNode(ref string, fallbackIndex int) (model.Node, error) {
	if ref != "" {
		if n, ok := a.Store.Node(ref); ok {
			return n, nil
		}
		if n, ok := a.Store.NodeByLabel(ref); ok {
			return n, nil
		}
		return model.Node{}, fmt.Errorf("%q: %w", ref, model.ErrNodeNotFound)
	}
	nodes := a.Store.Nodes()
	if fallbackIndex >= len(nodes) {
		return model.Node{}, model.ErrNodeNotFound
	}
	return nodes[fallbackIndex], nil
}

func (a *Applier) persistEntity(ctx context.Context, n model.Node) {
	if a.Persister == nil || a.DomainID == "" {
		return
	}
	err := a.Persister.CreateEntity(ctx, a.DomainID, persist.EntityRecord{
		ID:            n.ID,
		Name:          n.Label,
		Kind:          string(n.Kind),
		Description:   n.Description,
		Properties:    n.Properties,
		X:             n.Position.X,
		Y:             n.Position.Y,
		IsAISuggested: true,
	})
	if err != nil {
		if a.Log != nil {
			a.Log.Warn("entity persisted locally only", zap.String("node_id", n.ID), zap.Error(err))
		}
		a.Notifier.Notify("Entity saved locally but not persisted to backend", notify.SeverityWarning)
	}
}

func (a *Applier) persistRelationship(ctx context.Context, e model.Edge) {
	if a.Persister == nil || a.DomainID == "" {
		return
	}
	err := a.Persister.CreateRelationship(ctx, a.DomainID, persist.RelationshipRecord{
		ID:             e.ID,
		Name:           e.Label,
		Kind:           string(e.Kind),
		Description:    e.Description,
		SourceEntityID: e.SourceID,
		TargetEntityID: e.TargetID,
		Cardinality:    string(e.Cardinality),
		IsAISuggested:  true,
	})
	if err != nil {
		if a.Log != nil {
			a.Log.Warn("relationship persisted locally only", zap.String("edge_id", e.ID), zap.Error(err))
		}
		a.Notifier.Notify("Relationship saved locally but not persisted to backend", notify.SeverityWarning)
	}
}
