package corrector

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"latex-corrector/internal/config"
	"latex-corrector/internal/logger"
	"latex-corrector/internal/types"
)

// NewChatModel builds the chat model of the configured provider.
// Both providers speak the OpenAI chat completions protocol; copilot targets
// the GitHub Models endpoint with a GitHub token.
func NewChatModel(ctx context.Context, cm *config.ConfigManager) (ChatModel, error) {
	provider := cm.GetProvider()
	switch provider {
	case config.ProviderOpenAI, config.ProviderCopilot:
	default:
		return nil, types.NewAppErrorWithDetails(
			types.ErrProviderUnavailable,
			"unknown AI provider",
			fmt.Sprintf("%q (expected %q or %q)", provider, config.ProviderOpenAI, config.ProviderCopilot),
			nil,
		)
	}

	apiKey := cm.GetAPIKey()
	if apiKey == "" {
		envVar := config.EnvOpenAIAPIKey
		if provider == config.ProviderCopilot {
			envVar = config.EnvGitHubToken
		}
		return nil, types.NewAppErrorWithDetails(
			types.ErrConfig,
			"API key not configured",
			fmt.Sprintf("set it with 'corriger config set-key' or the %s environment variable", envVar),
			nil,
		)
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:   cm.GetModel(),
		APIKey:  apiKey,
		BaseURL: cm.GetBaseURL(),
	}

	chatModel, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		logger.Error("failed to create chat model", err, logger.String("provider", provider))
		return nil, types.NewAppError(types.ErrProviderUnavailable, "failed to create chat model", err)
	}

	logger.Info("chat model ready",
		logger.String("provider", provider),
		logger.String("model", chatModelConfig.Model),
		logger.String("baseURL", chatModelConfig.BaseURL))
	return chatModel, nil
}
