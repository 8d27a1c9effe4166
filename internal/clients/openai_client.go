package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
	openAIRetryAttempts  = 3
)

// OpenAISummarizer is the non-streaming alternative to the Ollama backend,
// selected with SUMMARY_BACKEND=openai.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, model string) (*OpenAISummarizer, error) {
	if apiKey == "" {
		return nil, errors.New("[OpenAISummarizer] missing OPENAI_API_KEY in environment variables")
	}

	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{
		Timeout: openAIRequestTimeout,
	}

	slog.Info("[OpenAISummarizer] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", openAIRequestTimeout),
		slog.String("model", model))

	return &OpenAISummarizer{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (s *OpenAISummarizer) Generate(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	var lastErr error
	backoff := INITIAL_BACKOFF

	for attempt := 1; attempt <= openAIRetryAttempts; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.model,
			Temperature: float32(opts.Temperature),
			MaxTokens:   opts.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("[OpenAISummarizer] response carried no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		slog.Warn("[OpenAISummarizer] Completion failed, will retry",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}

	return "", lastErr
}
