package scanning

import (
	"fmt"
	"log/slog"
	"os"
)

// Config selects and configures a Scanner implementation
type Config struct {
	Type        string // "gemini" or "ollama"
	GeminiKey   string
	GeminiModel string
	OllamaURL   string
	OllamaModel string
}

// New builds the Scanner described by cfg. An empty Gemini key falls back to
// the GEMINI_API_KEY environment variable.
func New(cfg Config) (Scanner, error) {
	switch cfg.Type {
	case "gemini", "":
		apiKey := cfg.GeminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini api key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", cfg.GeminiModel)
		return NewGemini(apiKey, cfg.GeminiModel)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("invalid scanner type %q: must be gemini or ollama", cfg.Type)
	}
}
