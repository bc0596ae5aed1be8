package suggest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/ontoscope/internal/config"
	"github.com/agenthands/ontoscope/internal/core/common"
	"github.com/agenthands/ontoscope/internal/core/model"
	"github.com/agenthands/ontoscope/internal/llm"
)

const defaultMaxSuggestions = 5

type GenerateRequest struct {
	Context string               `json:"context"`
	Kind    model.SuggestionKind `json:"suggestion_type"`
	Domain  string               `json:"domain,omitempty"`
	Max     int                  `json:"max_suggestions,omitempty"`
}

type GenerateResponse struct {
	Suggestions      []model.Suggestion `json:"suggestions"`
	TotalSuggestions int                `json:"total_suggestions"`
	GenerationTimeMs float64            `json:"generation_time_ms"`
	ModelUsed        string             `json:"model_used"`
	Timestamp        time.Time          `json:"timestamp"`
}

type suggestionList struct {
	Suggestions []model.Suggestion `json:"suggestions"`
}

// Generator produces ontology suggestions with an LLM, falling back to
// the built-in demo set when no model is configured or the response
// cannot be parsed.
type Generator struct {
	LLM      llm.LLMClient // nil: demo mode
	Reranker llm.RerankerClient
	Prompts  config.SuggestionPrompts
	Model    string

	UUIDGenerator func() string
	Log           *zap.Logger

	historyMu sync.Mutex
	history   []GenerateResponse
}

func NewGenerator(client llm.LLMClient, prompts config.SuggestionPrompts, modelName string, log *zap.Logger) *Generator {
	g := &Generator{
		LLM:           client,
		Prompts:       prompts,
		Model:         modelName,
		UUIDGenerator: func() string { return uuid.New().String() },
		Log:           log,
	}
	if client != nil {
		g.Reranker = llm.NewSimpleLLMReranker(client)
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	start := time.Now()
	if req.Max <= 0 {
		req.Max = defaultMaxSuggestions
	}
	switch req.Kind {
	case model.SuggestionOntologyClass, model.SuggestionProperty,
		model.SuggestionRelationship, model.SuggestionEnhancement:
	default:
		return GenerateResponse{}, fmt.Errorf("generate suggestions: kind %q: %w", req.Kind, model.ErrInvalidSuggestionType)
	}

	suggestions, modelUsed := g.generate(ctx, req)

	if len(suggestions) > req.Max {
		suggestions = g.rerank(ctx, req.Context, suggestions)[:req.Max]
	}
	for i := range suggestions {
		if suggestions[i].ID == "" {
			suggestions[i].ID = fmt.Sprintf("ai_%s", g.UUIDGenerator()[:8])
		}
		suggestions[i].Kind = req.Kind
	}

	resp := GenerateResponse{
		Suggestions:      suggestions,
		TotalSuggestions: len(suggestions),
		GenerationTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		ModelUsed:        modelUsed,
		Timestamp:        time.Now().UTC(),
	}
	g.historyMu.Lock()
	g.history = append(g.history, resp)
	g.historyMu.Unlock()
	return resp, nil
}

func (g *Generator) generate(ctx context.Context, req GenerateRequest) ([]model.Suggestion, string) {
	if g.LLM == nil {
		return DemoSuggestions(req.Kind), "demo"
	}

	prompt := g.buildPrompt(req)
	response, err := g.LLM.Generate(ctx, prompt)
	if err != nil {
		if g.Log != nil {
			g.Log.Warn("suggestion generation failed, using demo set", zap.Error(err))
		}
		return DemoSuggestions(req.Kind), "demo_fallback"
	}

	parsed, err := common.ParseJSON[suggestionList](response)
	if err != nil || len(parsed.Suggestions) == 0 {
		if g.Log != nil {
			g.Log.Warn("could not parse suggestion response, using demo set", zap.Error(err))
		}
		return DemoSuggestions(req.Kind), "demo_fallback"
	}
	return parsed.Suggestions, g.Model
}

// rerank orders suggestions by relevance to the request context. On any
// reranker trouble the original order stands.
func (g *Generator) rerank(ctx context.Context, query string, suggestions []model.Suggestion) []model.Suggestion {
	if g.Reranker == nil || query == "" || len(suggestions) < 2 {
		return suggestions
	}
	docs := make([]string, len(suggestions))
	for i, s := range suggestions {
		docs[i] = fmt.Sprintf("%s: %s", s.Title, s.Description)
	}
	indices, err := g.Reranker.Rank(ctx, query, docs)
	if err != nil {
		return suggestions
	}
	var out []model.Suggestion
	seen := make(map[int]bool)
	for _, idx := range indices {
		if idx >= 0 && idx < len(suggestions) && !seen[idx] {
			out = append(out, suggestions[idx])
			seen[idx] = true
		}
	}
	for i, s := range suggestions {
		if !seen[i] {
			out = append(out, s)
		}
	}
	return out
}

func (g *Generator) buildPrompt(req GenerateRequest) string {
	template := ""
	switch req.Kind {
	case model.SuggestionOntologyClass:
		template = g.Prompts.OntologyClass
	case model.SuggestionProperty:
		template = g.Prompts.Property
	case model.SuggestionRelationship:
		template = g.Prompts.Relationship
	case model.SuggestionEnhancement:
		template = g.Prompts.Enhancement
	}
	domain := req.Domain
	if domain == "" {
		domain = "general"
	}
	if template != "" {
		return fmt.Sprintf(template, req.Max, req.Context, domain)
	}
	return fmt.Sprintf(`You are an expert ontology engineer. Generate %d %s suggestions for the following context.

Context: %s
Domain: %s

Return a JSON object {"suggestions": [...]} where each suggestion has
"title", "description", "confidence" (0-1), "implementation" (free text),
"rationale" and, where applicable, structured fields "class_name",
"properties", "property_name", "source_node", "target_node",
"relationship_name" and "cardinality".
Return only valid JSON without any additional text.`, req.Max, req.Kind, req.Context, domain)
}

// History returns previously generated responses, oldest first.
func (g *Generator) History() []GenerateResponse {
	g.historyMu.Lock()
	defer g.historyMu.Unlock()
	out := make([]GenerateResponse, len(g.history))
	copy(out, g.history)
	return out
}
