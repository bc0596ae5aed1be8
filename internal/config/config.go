package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port string `toml:"port"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// EditorConfig tunes the interactive connection flow: timer durations,
// render retry behavior and node placement spacing.
type EditorConfig struct {
	PanelTimeoutSeconds   int     `toml:"panel_timeout_seconds"`
	EdgeHighlightSeconds  int     `toml:"edge_highlight_seconds"`
	GraphHighlightSeconds int     `toml:"graph_highlight_seconds"`
	RenderAttempts        int     `toml:"render_attempts"`
	RenderBackoffMillis   int     `toml:"render_backoff_millis"`
	NodeSpacing           float64 `toml:"node_spacing"`
}

func (e EditorConfig) PanelTimeout() time.Duration {
	return time.Duration(e.PanelTimeoutSeconds) * time.Second
}

func (e EditorConfig) EdgeHighlight() time.Duration {
	return time.Duration(e.EdgeHighlightSeconds) * time.Second
}

func (e EditorConfig) GraphHighlight() time.Duration {
	return time.Duration(e.GraphHighlightSeconds) * time.Second
}

func (e EditorConfig) RenderBackoff() time.Duration {
	return time.Duration(e.RenderBackoffMillis) * time.Millisecond
}

// SuggestionPrompts holds one prompt template per suggestion kind. Each
// template receives (max suggestions, context, domain) via fmt.Sprintf.
type SuggestionPrompts struct {
	OntologyClass string `toml:"ontology_class"`
	Property      string `toml:"property"`
	Relationship  string `toml:"relationship"`
	Enhancement   string `toml:"enhancement"`
}

type Config struct {
	Server      ServerConfig      `toml:"server"`
	LLM         LLMConfig         `toml:"llm"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Editor      EditorConfig      `toml:"editor"`
	Suggestions SuggestionPrompts `toml:"suggestions"`
}

func DefaultEditor() EditorConfig {
	return EditorConfig{
		PanelTimeoutSeconds:   15,
		EdgeHighlightSeconds:  3,
		GraphHighlightSeconds: 10,
		RenderAttempts:        5,
		RenderBackoffMillis:   100,
		NodeSpacing:           250,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration usable without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	d := DefaultEditor()
	if cfg.Editor.PanelTimeoutSeconds == 0 {
		cfg.Editor.PanelTimeoutSeconds = d.PanelTimeoutSeconds
	}
	if cfg.Editor.EdgeHighlightSeconds == 0 {
		cfg.Editor.EdgeHighlightSeconds = d.EdgeHighlightSeconds
	}
	if cfg.Editor.GraphHighlightSeconds == 0 {
		cfg.Editor.GraphHighlightSeconds = d.GraphHighlightSeconds
	}
	if cfg.Editor.RenderAttempts == 0 {
		cfg.Editor.RenderAttempts = d.RenderAttempts
	}
	if cfg.Editor.RenderBackoffMillis == 0 {
		cfg.Editor.RenderBackoffMillis = d.RenderBackoffMillis
	}
	if cfg.Editor.NodeSpacing == 0 {
		cfg.Editor.NodeSpacing = d.NodeSpacing
	}
}
