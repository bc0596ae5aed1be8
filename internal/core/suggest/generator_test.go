package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/ontoscope/internal/config"
	"github.com/agenthands/ontoscope/internal/core/model"
)

func TestGenerateDemoModeWithoutLLM(t *testing.T) {
	g := NewGenerator(nil, config.SuggestionPrompts{}, "", nil)

	resp, err := g.Generate(context.Background(), GenerateRequest{
		Context: "customer ontology",
		Kind:    model.SuggestionOntologyClass,
	})

	assert.NoError(t, err)
	assert.Equal(t, "demo", resp.ModelUsed)
	assert.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "cls_001", resp.Suggestions[0].ID)
	assert.Equal(t, len(resp.Suggestions), resp.TotalSuggestions)
}

func TestGenerateParsesLLMResponse(t *testing.T) {
	mock := &MockLLM{Response: `Here you go:
	{"suggestions": [
		{"title": "Add Warehouse Entity", "description": "Stock locations", "confidence": 0.9, "class_name": "Warehouse"}
	]}`}
	g := NewGenerator(mock, config.SuggestionPrompts{}, "test-model", nil)
	g.UUIDGenerator = func() string { return "0123456789abcdef" }

	resp, err := g.Generate(context.Background(), GenerateRequest{
		Context: "inventory",
		Kind:    model.SuggestionOntologyClass,
	})

	assert.NoError(t, err)
	assert.Equal(t, "test-model", resp.ModelUsed)
	assert.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Warehouse", resp.Suggestions[0].ClassName)
	// Missing ids are synthesized, and the kind is stamped on.
	assert.Equal(t, "ai_01234567", resp.Suggestions[0].ID)
	assert.Equal(t, model.SuggestionOntologyClass, resp.Suggestions[0].Kind)
}

func TestGenerateFallsBackOnLLMError(t *testing.T) {
	mock := &MockLLM{Err: errors.New("provider down")}
	g := NewGenerator(mock, config.SuggestionPrompts{}, "test-model", nil)

	resp, err := g.Generate(context.Background(), GenerateRequest{
		Context: "anything",
		Kind:    model.SuggestionRelationship,
	})

	assert.NoError(t, err)
	assert.Equal(t, "demo_fallback", resp.ModelUsed)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestGenerateFallsBackOnGarbageResponse(t *testing.T) {
	mock := &MockLLM{Response: "I cannot help with that."}
	g := NewGenerator(mock, config.SuggestionPrompts{}, "test-model", nil)

	resp, err := g.Generate(context.Background(), GenerateRequest{
		Context: "anything",
		Kind:    model.SuggestionProperty,
	})

	assert.NoError(t, err)
	assert.Equal(t, "demo_fallback", resp.ModelUsed)
}

func TestGenerateRejectsUnknownKind(t *testing.T) {
	g := NewGenerator(nil, config.SuggestionPrompts{}, "", nil)

	_, err := g.Generate(context.Background(), GenerateRequest{Kind: "mystery"})

	assert.ErrorIs(t, err, model.ErrInvalidSuggestionType)
}

func TestGenerateTruncatesWithReranker(t *testing.T) {
	mock := &MockLLM{ResponseQueue: []string{
		`{"suggestions": [
			{"title": "A", "description": "first"},
			{"title": "B", "description": "second"},
			{"title": "C", "description": "third"}
		]}`,
		// Reranker pass: prefer the last suggestion.
		`2, 0, 1`,
	}}
	g := NewGenerator(mock, config.SuggestionPrompts{}, "test-model", nil)

	resp, err := g.Generate(context.Background(), GenerateRequest{
		Context: "pick the best",
		Kind:    model.SuggestionOntologyClass,
		Max:     2,
	})

	assert.NoError(t, err)
	assert.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "C", resp.Suggestions[0].Title)
	assert.Equal(t, "A", resp.Suggestions[1].Title)
}

func TestGenerateUsesConfiguredPromptTemplate(t *testing.T) {
	mock := &MockLLM{Response: `{"suggestions": [{"title": "X"}]}`}
	prompts := config.SuggestionPrompts{
		OntologyClass: "Suggest %d classes for context %q in domain %q.",
	}
	g := NewGenerator(mock, prompts, "test-model", nil)

	_, err := g.Generate(context.Background(), GenerateRequest{
		Context: "retail",
		Kind:    model.SuggestionOntologyClass,
		Domain:  "commerce",
		Max:     3,
	})

	assert.NoError(t, err)
	assert.Len(t, mock.Prompts, 1)
	assert.Equal(t, `Suggest 3 classes for context "retail" in domain "commerce".`, mock.Prompts[0])
}

func TestGenerateKeepsHistory(t *testing.T) {
	g := NewGenerator(nil, config.SuggestionPrompts{}, "", nil)
	ctx := context.Background()

	g.Generate(ctx, GenerateRequest{Kind: model.SuggestionOntologyClass})
	g.Generate(ctx, GenerateRequest{Kind: model.SuggestionEnhancement})

	hist := g.History()
	assert.Len(t, hist, 2)
	assert.Equal(t, model.SuggestionOntologyClass, hist[0].Suggestions[0].Kind)
}
