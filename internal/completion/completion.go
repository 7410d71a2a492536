// Package completion provides the intent.Completer implementations backed
// by hosted language models.
package completion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"productif-agent/internal/intent"
	"productif-agent/pkg/circuitbreaker"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config 补全服务配置
type Config struct {
	Provider string                `yaml:"provider"` // openai / gemini / none
	Model    string                `yaml:"model"`
	APIKey   string                `yaml:"api_key"`
	BaseURL  string                `yaml:"base_url"`
	Timeout  time.Duration         `yaml:"timeout"`
	Breaker  circuitbreaker.Config `yaml:"breaker"`
}

// New builds the completer for cfg.Provider. An empty or "none" provider,
// or a provider without credentials, yields intent.Unavailable so that the
// agent keeps working on explicit commands only.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (intent.Completer, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderGemini:
		if cfg.APIKey == "" {
			logger.Warn("completion provider has no api key, free-form messages will fall back to chat",
				zap.String("provider", cfg.Provider))
			return intent.Unavailable{}, nil
		}
	case "", ProviderNone:
		logger.Info("no completion provider configured")
		return intent.Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}

	var inner intent.Completer
	var err error
	if cfg.Provider == ProviderOpenAI {
		inner, err = NewOpenAI(cfg)
	} else {
		inner, err = NewGemini(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("completion provider ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))
	return NewGuarded(cfg.Provider, inner, cfg.Breaker), nil
}
