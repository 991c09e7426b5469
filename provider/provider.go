package provider

import (
	"context"
	"fmt"

	"github.com/pndinxx/courserank/config"
	gemini_provider "github.com/pndinxx/courserank/provider/gemini"
	openai_provider "github.com/pndinxx/courserank/provider/openai"
)

// LLMProvider generates text for a prompt against a configured model name.
// Implementations translate the abstract model name to the provider's API
// model identifier. Any transport, quota or model error surfaces as a plain
// error; callers decide whether to escalate to another model.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string, model string) (string, error)
	AvailableModels() []string
}

// NewLLMProvider creates an LLM provider based on configuration. The first
// configured provider wins; multi-provider routing happens at the model
// router level, not here.
func NewLLMProvider(cfg config.LLMConfig) (LLMProvider, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured")
	}
	for _, p := range cfg.Providers {
		switch p.Type {
		case "gemini":
			return gemini_provider.NewClient(p), nil
		case "openai":
			return openai_provider.NewClient(p), nil
		default:
			return nil, fmt.Errorf("unsupported LLM provider type: %s", p.Type)
		}
	}
	return nil, fmt.Errorf("no valid LLM providers found")
}
