// Package server exposes the ontology editor over HTTP: a REST surface
// for domains, graph mutation, suggestions and undo, plus a websocket
// channel per domain that carries render frames out and pointer events
// back in.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/agenthands/ontoscope/internal/config"
	"github.com/agenthands/ontoscope/internal/core/community"
	"github.com/agenthands/ontoscope/internal/core/graph"
	"github.com/agenthands/ontoscope/internal/core/model"
	"github.com/agenthands/ontoscope/internal/core/scoring"
	"github.com/agenthands/ontoscope/internal/core/session"
	"github.com/agenthands/ontoscope/internal/core/suggest"
	"github.com/agenthands/ontoscope/internal/driver"
	"github.com/agenthands/ontoscope/internal/llm"
	"github.com/agenthands/ontoscope/internal/notify"
	"github.com/agenthands/ontoscope/internal/persist"
	"github.com/agenthands/ontoscope/internal/render"
)

// Workspace is the full editing context for one domain: its graph, its
// change ledger, its connection session and its render pipeline. Every
// handler resolves a workspace first; nothing graph-related is global.
// The mutex serializes REST mutations so every ledger record's
// before/after snapshots bracket exactly one change.
type Workspace struct {
	mu        sync.Mutex
	Domain    model.Domain
	Store     *graph.Store
	Ledger    *graph.Ledger
	Applied   *model.AppliedSet
	Applier   *suggest.Applier
	Session   *session.Session
	Scheduler *render.Scheduler
	Notifier  *switchableNotifier
}

// switchableNotifier fans notifications out to the log and, when a
// drawing surface is connected, to its websocket.
type switchableNotifier struct {
	mu       sync.Mutex
	ws       *render.WSRenderer
	fallback notify.Notifier
}

func (n *switchableNotifier) Notify(message string, severity notify.Severity) {
	n.fallback.Notify(message, severity)
	n.mu.Lock()
	ws := n.ws
	n.mu.Unlock()
	if ws != nil {
		_ = ws.Notify(message, string(severity))
	}
}

func (n *switchableNotifier) attach(ws *render.WSRenderer) {
	n.mu.Lock()
	n.ws = ws
	n.mu.Unlock()
}

type Server struct {
	cfg       *config.Config
	log       *zap.Logger
	gen       *suggest.Generator
	persister *persist.Store // nil: local-only mode
	detector  community.Detector
	upgrader  websocket.Upgrader

	mu          sync.Mutex
	workspaces  map[string]*Workspace
	domainOrder []string

	UUIDGenerator func() string
	Now           func() time.Time
}

// NewServer wires the whole editor together from configuration. The
// Memgraph backend and the LLM provider are both optional: without a
// configured URI the editor runs local-only, and without a provider the
// suggestion generator serves the built-in demo set.
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	applyEnvOverrides(cfg)

	var persister *persist.Store
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, log)
		if err != nil {
			log.Warn("memgraph unavailable, running local-only", zap.String("uri", cfg.Memgraph.URI), zap.Error(err))
		} else {
			if err := d.BuildIndices(context.Background()); err != nil {
				log.Warn("failed to build indices", zap.Error(err))
			}
			persister = persist.NewStore(d)
		}
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		return nil, err
	}
	if llmClient == nil {
		log.Info("no LLM provider configured, suggestions run in demo mode")
	}

	s := &Server{
		cfg:           cfg,
		log:           log,
		gen:           suggest.NewGenerator(llmClient, cfg.Suggestions, cfg.LLM.Model, log),
		persister:     persister,
		detector:      community.NewDetector(),
		upgrader:      websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		workspaces:    make(map[string]*Workspace),
		UUIDGenerator: func() string { return uuid.New().String() },
		Now:           time.Now,
	}
	s.seedDemoDomains()
	s.hydrateFromBackend(context.Background())
	return s, nil
}

// hydrateFromBackend merges each domain's persisted graph into its
// workspace. Records the seeds already cover are skipped; hydrated
// elements carry no ledger records, so history starts clean.
func (s *Server) hydrateFromBackend(ctx context.Context) {
	if s.persister == nil {
		return
	}
	s.mu.Lock()
	order := append([]string(nil), s.domainOrder...)
	s.mu.Unlock()

	for _, id := range order {
		ws, ok := s.workspace(id)
		if !ok {
			continue
		}
		entities, relationships, err := s.persister.ListDomain(ctx, id)
		if err != nil {
			s.log.Warn("could not hydrate domain from backend", zap.String("domain_id", id), zap.Error(err))
			continue
		}
		ws.mu.Lock()
		for _, rec := range entities {
			if _, exists := ws.Store.Node(rec.ID); exists {
				continue
			}
			_, err := ws.Store.AddNode(model.Node{
				ID:          rec.ID,
				Kind:        model.NodeKind(rec.Kind),
				Label:       rec.Name,
				Description: rec.Description,
				Properties:  rec.Properties,
				Position:    model.Position{X: rec.X, Y: rec.Y},
			})
			if err != nil {
				s.log.Warn("skipping persisted entity", zap.String("entity_id", rec.ID), zap.Error(err))
			}
		}
		for _, rec := range relationships {
			_, _, err := ws.Store.AddEdge(model.Edge{
				ID:          rec.ID,
				SourceID:    rec.SourceEntityID,
				TargetID:    rec.TargetEntityID,
				Kind:        model.EdgeKind(rec.Kind),
				Label:       rec.Name,
				Cardinality: model.ParseCardinality(rec.Cardinality),
				Description: rec.Description,
			})
			if err != nil {
				s.log.Warn("skipping persisted relationship", zap.String("relationship_id", rec.ID), zap.Error(err))
			}
		}
		ws.mu.Unlock()
	}
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Memgraph.Password = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	ontology := r.Group("/ontology")
	{
		ontology.GET("/domains", s.ListDomains)
		ontology.POST("/domains", s.CreateDomain)
		ontology.GET("/domains/:id", s.GetDomain)
		ontology.GET("/domains/:id/graph", s.GetGraph)
		ontology.POST("/domains/:id/graph", s.LoadGraph)
		ontology.GET("/domains/:id/visualization", s.GetVisualization)
		ontology.POST("/domains/:id/entities", s.CreateEntity)
		ontology.PUT("/domains/:id/entities/:entityID", s.UpdateEntity)
		ontology.DELETE("/domains/:id/entities/:entityID", s.DeleteEntity)
		ontology.POST("/domains/:id/relationships", s.CreateRelationship)
		ontology.DELETE("/domains/:id/relationships/:relationshipID", s.DeleteRelationship)
		ontology.POST("/domains/:id/undo", s.Undo)
		ontology.GET("/domains/:id/history", s.History)
		ontology.GET("/domains/:id/candidates/:nodeID", s.GetCandidates)
		ontology.POST("/domains/:id/connect-mode", s.SetConnectMode)
		ontology.POST("/domains/:id/connections/commit", s.CommitConnection)
		ontology.POST("/domains/:id/connections/quick", s.QuickConnect)
		ontology.POST("/domains/:id/suggestions/apply", s.ApplySuggestion)
		ontology.GET("/stats", s.Stats)
	}

	r.POST("/suggestions/generate", s.GenerateSuggestions)
	r.GET("/suggestions/history", s.SuggestionHistory)
	r.GET("/ws/ontology/:id", s.Websocket)

	return r
}

// newWorkspace builds the per-domain editing context. Caller holds s.mu.
func (s *Server) newWorkspace(d model.Domain) *Workspace {
	store := graph.NewStore()
	store.UUIDGenerator = s.UUIDGenerator
	applied := model.NewAppliedSet()
	ledger := graph.NewLedger(store, applied)
	notifier := &switchableNotifier{fallback: notify.NewLogNotifier(s.log)}
	scheduler := render.NewScheduler(nil, s.cfg.Editor.RenderAttempts, s.cfg.Editor.RenderBackoff(), s.log)

	applier := suggest.NewApplier(store, ledger, applied, notifier, s.log)
	applier.Persister = s.persister
	applier.DomainID = d.ID
	applier.Scheduler = scheduler
	applier.HighlightDecay = s.cfg.Editor.GraphHighlight()
	applier.NodeSpacing = s.cfg.Editor.NodeSpacing
	applier.UUIDGenerator = s.UUIDGenerator

	sess := session.New(store, ledger, scheduler, notifier, s.persister, d.ID, s.cfg.Editor, s.log)

	ws := &Workspace{
		Domain:    d,
		Store:     store,
		Ledger:    ledger,
		Applied:   applied,
		Applier:   applier,
		Session:   sess,
		Scheduler: scheduler,
		Notifier:  notifier,
	}
	s.workspaces[d.ID] = ws
	s.domainOrder = append(s.domainOrder, d.ID)
	return ws
}

func (s *Server) workspace(id string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[id]
	return ws, ok
}

// Workspace exposes a domain's editing context, mainly for tests.
func (s *Server) Workspace(id string) (*Workspace, bool) {
	return s.workspace(id)
}

func (s *Server) domains() []model.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Domain, 0, len(s.domainOrder))
	for _, id := range s.domainOrder {
		out = append(out, s.workspaces[id].Domain)
	}
	return out
}

// ---- domains ----

func (s *Server) ListDomains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"domains": s.domains()})
}

type CreateDomainRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (s *Server) CreateDomain(c *gin.Context) {
	var req CreateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	now := s.Now()
	d := model.Domain{
		ID:          s.UUIDGenerator(),
		Name:        req.Name,
		Description: req.Description,
		Status:      model.DomainDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.newWorkspace(d)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, d)
}

func (s *Server) GetDomain(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"domain":             ws.Domain,
		"entity_count":       ws.Store.NodeCount(),
		"relationship_count": ws.Store.EdgeCount(),
	})
}

// ---- graph ----

func (s *Server) GetGraph(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"nodes": ws.Store.Nodes(),
		"edges": ws.Store.Edges(),
	})
}

// LoadGraph replaces the domain's graph with the posted document. All
// three input shapes are accepted; the previous graph is recoverable
// through undo.
func (s *Server) LoadGraph(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	before, err := ws.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not snapshot graph"})
		return
	}
	if err := ws.Store.Load(raw); err != nil {
		s.renderError(c, err)
		return
	}
	after, err := ws.Store.Snapshot()
	if err != nil {
		ws.Store.Restore(before)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record graph load"})
		return
	}
	ws.Ledger.Record(model.MutationLoadGraph, before, after, "")
	ws.Session.Invalidate()

	c.JSON(http.StatusOK, gin.H{
		"nodes_loaded": ws.Store.NodeCount(),
		"edges_loaded": ws.Store.EdgeCount(),
	})
}

// GetVisualization returns the render frame plus cluster assignments.
func (s *Server) GetVisualization(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	nodes := ws.Store.Nodes()
	edges := ws.Store.Edges()
	frame := render.BuildFrame(nodes, edges)
	clusters := community.Assign(s.detector, nodes, edges)
	c.JSON(http.StatusOK, gin.H{
		"frame":    frame,
		"clusters": clusters,
	})
}

// ---- entities ----

type CreateEntityRequest struct {
	Label       string          `json:"label" binding:"required"`
	Kind        model.NodeKind  `json:"kind"`
	Description string          `json:"description"`
	Properties  []string        `json:"properties"`
	Position    *model.Position `json:"position"`
}

func (s *Server) CreateEntity(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	var req CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	n := model.Node{
		Kind:        req.Kind,
		Label:       req.Label,
		Description: req.Description,
		Properties:  req.Properties,
		IsNew:       true,
	}
	if req.Position != nil {
		n.Position = *req.Position
	} else {
		n.Position = model.Position{X: ws.Store.MaxX() + s.cfg.Editor.NodeSpacing, Y: 100}
	}
	if n.Kind == "" {
		n.Kind = model.NodeKindClass
	}

	created, err := mutate(ws, model.MutationAddNode, func() (model.Node, error) {
		return ws.Store.AddNode(n)
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.persistEntity(c.Request.Context(), ws, created, false)
	c.JSON(http.StatusCreated, created)
}

func (s *Server) UpdateEntity(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	var patch graph.NodePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	updated, err := mutate(ws, model.MutationEditNode, func() (model.Node, error) {
		return ws.Store.EditNode(c.Param("entityID"), patch)
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.persistEntity(c.Request.Context(), ws, updated, false)
	c.JSON(http.StatusOK, updated)
}

func (s *Server) DeleteEntity(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	entityID := c.Param("entityID")

	_, err := mutate(ws, model.MutationDeleteNode, func() (struct{}, error) {
		return struct{}{}, ws.Store.DeleteNode(entityID)
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	if s.persister != nil {
		if err := s.persister.DeleteEntity(c.Request.Context(), ws.Domain.ID, entityID); err != nil {
			s.log.Warn("entity deleted locally only", zap.String("entity_id", entityID), zap.Error(err))
			ws.Notifier.Notify("Entity deleted locally but not in the backend", notify.SeverityWarning)
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": entityID})
}

// ---- relationships ----

type CreateRelationshipRequest struct {
	SourceID    string `json:"source_id" binding:"required"`
	TargetID    string `json:"target_id" binding:"required"`
	Label       string `json:"label" binding:"required"`
	Kind        string `json:"kind"`
	Cardinality string `json:"cardinality"`
	Description string `json:"description"`
}

func (s *Server) CreateRelationship(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	var req CreateRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	e := model.Edge{
		SourceID:    req.SourceID,
		TargetID:    req.TargetID,
		Label:       req.Label,
		Kind:        model.EdgeKind(req.Kind),
		Cardinality: model.ParseCardinality(req.Cardinality),
		Description: req.Description,
		IsNew:       true,
	}
	if e.Kind == "" {
		e.Kind = model.EdgeKindRelationship
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	before, err := ws.Store.Snapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not snapshot graph"})
		return
	}
	created, added, err := ws.Store.AddEdge(e)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if added {
		after, snapErr := ws.Store.Snapshot()
		if snapErr != nil {
			ws.Store.Restore(before)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record relationship"})
			return
		}
		ws.Ledger.Record(model.MutationAddEdge, before, after, "")
		s.persistRelationship(c.Request.Context(), ws, created, false)
	}

	c.JSON(http.StatusCreated, gin.H{"relationship": created, "created": added})
}

func (s *Server) DeleteRelationship(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	relID := c.Param("relationshipID")

	_, err := mutate(ws, model.MutationDeleteEdge, func() (struct{}, error) {
		return struct{}{}, ws.Store.DeleteEdge(relID)
	})
	if err != nil {
		s.renderError(c, err)
		return
	}

	if s.persister != nil {
		if err := s.persister.DeleteRelationship(c.Request.Context(), ws.Domain.ID, relID); err != nil {
			s.log.Warn("relationship deleted locally only", zap.String("relationship_id", relID), zap.Error(err))
			ws.Notifier.Notify("Relationship deleted locally but not in the backend", notify.SeverityWarning)
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": relID})
}

// ---- undo ----

func (s *Server) Undo(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	ws.mu.Lock()
	rec := ws.Ledger.UndoLast()
	ws.mu.Unlock()
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"undone": false})
		return
	}
	ws.Session.Invalidate()
	s.redraw(c.Request.Context(), ws)
	c.JSON(http.StatusOK, gin.H{"undone": true, "kind": rec.Kind})
}

// History returns the domain's retained change records, oldest first.
// Snapshots stay server-side; only the record metadata is serialized.
func (s *Server) History(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": ws.Ledger.History()})
}

// ---- candidates and the connection session ----

func (s *Server) GetCandidates(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	node, found := ws.Store.Node(c.Param("nodeID"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	candidates := scoring.Score(node, ws.Store.Nodes())
	if len(candidates) > scoring.DisplayLimit {
		candidates = candidates[:scoring.DisplayLimit]
	}
	type rankedCandidate struct {
		model.Candidate
		Bucket model.ConfidenceBucket `json:"bucket"`
	}
	out := make([]rankedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, rankedCandidate{Candidate: cand, Bucket: model.Bucket(cand.Confidence)})
	}
	c.JSON(http.StatusOK, gin.H{"candidates": out})
}

type ConnectModeRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) SetConnectMode(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	var req ConnectModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Enabled {
		ws.Session.Enable()
	} else {
		ws.Session.Disable(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"state": ws.Session.State()})
}

func (s *Server) CommitConnection(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	var details session.ConnectionDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ws.mu.Lock()
	edge, err := ws.Session.Commit(c.Request.Context(), details)
	ws.mu.Unlock()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, edge)
}

func (s *Server) QuickConnect(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	var cand model.Candidate
	if err := c.ShouldBindJSON(&cand); err != nil || cand.TargetNodeID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ws.mu.Lock()
	edge, err := ws.Session.QuickConnect(c.Request.Context(), cand)
	ws.mu.Unlock()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, edge)
}

// ---- suggestions ----

func (s *Server) GenerateSuggestions(c *gin.Context) {
	var req suggest.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	resp, err := s.gen.Generate(c.Request.Context(), req)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ApplySuggestion(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	var sg model.Suggestion
	if err := c.ShouldBindJSON(&sg); err != nil || sg.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ws.mu.Lock()
	applied, err := ws.Applier.Apply(c.Request.Context(), sg)
	ws.mu.Unlock()
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied, "suggestion_id": sg.ID})
}

// SuggestionHistory returns previously generated suggestion batches.
func (s *Server) SuggestionHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": s.gen.History()})
}

// ---- stats ----

func (s *Server) Stats(c *gin.Context) {
	s.mu.Lock()
	stats := model.OntologyStats{TotalDomains: len(s.workspaces)}
	for _, ws := range s.workspaces {
		stats.TotalEntities += ws.Store.NodeCount()
		stats.TotalRelationships += ws.Store.EdgeCount()
		stats.TotalProperties += ws.Store.PropertyCount()
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, stats)
}

// ---- websocket ----

// Websocket attaches a drawing surface to a domain's workspace. Frames
// and highlights flow out, pointer events flow into the connection
// session. Connect mode is enabled for the lifetime of the socket.
func (s *Server) Websocket(c *gin.Context) {
	ws, ok := s.workspace(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	renderer := render.NewWSRenderer(conn, s.log)
	ws.Scheduler.SetRenderer(renderer)
	ws.Notifier.attach(renderer)
	ws.Session.Enable()

	ctx := c.Request.Context()
	if err := ws.Scheduler.Submit(ctx, render.BuildFrame(ws.Store.Nodes(), ws.Store.Edges())); err != nil {
		s.log.Warn("initial frame not delivered", zap.Error(err))
	}

	handler := render.EventHandler{
		NodeClicked: func(nodeID string) {
			// Tap-to-connect: first tap picks the source, second the target.
			if ws.Session.State() == session.StateDragging {
				if err := ws.Session.EndDrag(ctx, nodeID); err != nil {
					s.log.Debug("tap target rejected", zap.String("node_id", nodeID), zap.Error(err))
				}
				return
			}
			if err := ws.Session.BeginDrag(ctx, nodeID); err != nil {
				s.log.Debug("tap source rejected", zap.String("node_id", nodeID), zap.Error(err))
			}
		},
		DragStart: func(nodeID string, x, y float64) {
			if err := ws.Session.BeginDrag(ctx, nodeID); err != nil {
				s.log.Debug("drag start rejected", zap.String("node_id", nodeID), zap.Error(err))
			}
		},
		DragMove: func(x, y float64) {
			_ = ws.Session.UpdateDragTarget(ctx, x, y)
		},
		DragEnd: func(targetNodeID string) {
			if err := ws.Session.EndDrag(ctx, targetNodeID); err != nil {
				s.log.Debug("drag end rejected", zap.String("target_id", targetNodeID), zap.Error(err))
			}
		},
		Cancel: func() {
			ws.Session.Cancel(ctx)
		},
	}

	if err := renderer.ReadLoop(ctx, handler); err != nil {
		s.log.Debug("websocket read loop ended", zap.Error(err))
	}

	ws.Session.Cancel(context.Background())
	ws.Scheduler.SetRenderer(nil)
	ws.Notifier.attach(nil)
	renderer.Close()
}

// ---- helpers ----

// mutate runs fn between before/after snapshots and records the change.
// A snapshot failure after the mutation rolls the graph back so the
// ledger never misses a mutation. The workspace lock keeps concurrent
// requests against the same domain from interleaving their snapshots.
func mutate[T any](ws *Workspace, kind model.MutationKind, fn func() (T, error)) (T, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	var zero T
	before, err := ws.Store.Snapshot()
	if err != nil {
		return zero, err
	}
	out, err := fn()
	if err != nil {
		return zero, err
	}
	after, err := ws.Store.Snapshot()
	if err != nil {
		ws.Store.Restore(before)
		return zero, err
	}
	ws.Ledger.Record(kind, before, after, "")
	return out, nil
}

func (s *Server) redraw(ctx context.Context, ws *Workspace) {
	if !ws.Scheduler.Attached() {
		return
	}
	if err := ws.Scheduler.Submit(ctx, render.BuildFrame(ws.Store.Nodes(), ws.Store.Edges())); err != nil {
		s.log.Debug("redraw not delivered", zap.Error(err))
	}
}

func (s *Server) persistEntity(ctx context.Context, ws *Workspace, n model.Node, aiSuggested bool) {
	if s.persister == nil {
		return
	}
	rec := persist.EntityRecord{
		ID:            n.ID,
		Name:          n.Label,
		Kind:          string(n.Kind),
		Description:   n.Description,
		Properties:    n.Properties,
		X:             n.Position.X,
		Y:             n.Position.Y,
		IsAISuggested: aiSuggested,
	}
	if err := s.persister.CreateEntity(ctx, ws.Domain.ID, rec); err != nil {
		s.log.Warn("entity persisted locally only", zap.String("entity_id", n.ID), zap.Error(err))
		ws.Notifier.Notify("Entity saved locally but not persisted to backend", notify.SeverityWarning)
	}
}

func (s *Server) persistRelationship(ctx context.Context, ws *Workspace, e model.Edge, aiSuggested bool) {
	if s.persister == nil {
		return
	}
	rec := persist.RelationshipRecord{
		ID:             e.ID,
		Name:           e.Label,
		Kind:           string(e.Kind),
		Description:    e.Description,
		SourceEntityID: e.SourceID,
		TargetEntityID: e.TargetID,
		Cardinality:    string(e.Cardinality),
		IsAISuggested:  aiSuggested,
	}
	if err := s.persister.CreateRelationship(ctx, ws.Domain.ID, rec); err != nil {
		s.log.Warn("relationship persisted locally only", zap.String("relationship_id", e.ID), zap.Error(err))
		ws.Notifier.Notify("Relationship saved locally but not persisted to backend", notify.SeverityWarning)
	}
}

func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrNodeNotFound), errors.Is(err, model.ErrEdgeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrDuplicateNodeName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrSelfLoop),
		errors.Is(err, model.ErrInvalidGraphShape),
		errors.Is(err, model.ErrInvalidSuggestionType),
		errors.Is(err, model.ErrUnresolvableSuggestionEndpoints):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ---- demo seed ----

// seedDemoDomains mirrors the sample ontologies new installs ship with.
func (s *Server) seedDemoDomains() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	seed := func(id, name, desc string, status model.DomainStatus) *Workspace {
		return s.newWorkspace(model.Domain{
			ID:          id,
			Name:        name,
			Description: desc,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	customer := seed("customer-domain", "Customer Domain", "Customer management and order tracking", model.DomainActive)
	custNode, _ := customer.Store.AddNode(model.Node{
		ID:         "customer",
		Kind:       model.NodeKindClass,
		Label:      "Customer",
		Properties: []string{"id", "name", "email", "created_date"},
		Position:   model.Position{X: 100, Y: 100},
	})
	orderNode, _ := customer.Store.AddNode(model.Node{
		ID:         "order",
		Kind:       model.NodeKindClass,
		Label:      "Order",
		Properties: []string{"id", "order_date", "total_amount", "status"},
		Position:   model.Position{X: 350, Y: 100},
	})
	customer.Store.AddEdge(model.Edge{
		SourceID:    custNode.ID,
		TargetID:    orderNode.ID,
		Kind:        model.EdgeKindRelationship,
		Label:       "places_order",
		Cardinality: model.OneToMany,
	})

	catalog := seed("product-catalog", "Product Catalog", "Products, categories and inventory", model.DomainActive)
	prod, _ := catalog.Store.AddNode(model.Node{
		ID:         "product",
		Kind:       model.NodeKindClass,
		Label:      "Product",
		Properties: []string{"id", "name", "price", "sku"},
		Position:   model.Position{X: 100, Y: 100},
	})
	cat, _ := catalog.Store.AddNode(model.Node{
		ID:         "category",
		Kind:       model.NodeKindClass,
		Label:      "Category",
		Properties: []string{"id", "name"},
		Position:   model.Position{X: 350, Y: 100},
	})
	catalog.Store.AddEdge(model.Edge{
		SourceID:    cat.ID,
		TargetID:    prod.ID,
		Kind:        model.EdgeKindRelationship,
		Label:       "categorizes",
		Cardinality: model.OneToMany,
	})

	financial := seed("financial-data", "Financial Data", "Accounts, transactions and invoicing", model.DomainDraft)
	acct, _ := financial.Store.AddNode(model.Node{
		ID:         "account",
		Kind:       model.NodeKindClass,
		Label:      "Account",
		Properties: []string{"id", "account_number", "balance"},
		Position:   model.Position{X: 100, Y: 100},
	})
	txn, _ := financial.Store.AddNode(model.Node{
		ID:         "transaction",
		Kind:       model.NodeKindClass,
		Label:      "Transaction",
		Properties: []string{"id", "amount", "transaction_date"},
		Position:   model.Position{X: 350, Y: 100},
	})
	financial.Store.AddEdge(model.Edge{
		SourceID:    acct.ID,
		TargetID:    txn.ID,
		Kind:        model.EdgeKindRelationship,
		Label:       "has_transaction",
		Cardinality: model.OneToMany,
	})
}
