package reason

import (
	"fmt"
	"strings"

	"github.com/dkaryakin/inflow/internal/model"
)

// NewProvider creates a reasoning provider based on configuration.
// An empty provider name returns (nil, nil): reasoning disabled is a valid
// state, and every pipeline stage has a documented fallback for it.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown reasoning provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.ReasonConfig to reason.Config
func ConfigFromModel(mc model.ReasonConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}
