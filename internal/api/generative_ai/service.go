package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/capstone-2025-fall/trib-go/internal/types"
)

var _ Generator = (*AIClient)(nil)

// Generator is the black-box generation contract the itinerary service
// consumes: structured prompt in, free-text out, types.ErrLLMCall on
// transport/rate-limit failure.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

// AIClient wraps the Gemini client with an exponential-backoff retry layer.
// This transport retry is distinct from, and nested inside, the business-rule
// retry loop in the itinerary service.
type AIClient struct {
	client      *genai.Client
	model       string
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

func NewAIClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*AIClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client:      client,
		model:       model,
		logger:      logger,
		maxAttempts: 5,
		baseDelay:   2 * time.Second,
		maxDelay:    60 * time.Second,
	}, nil
}

// GenerateContent calls the model, retrying retryable failures with
// exponential backoff (2s, 4s, 8s, 16s, 32s, capped at the max delay). The
// final failure is wrapped in types.ErrLLMCall.
func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	delay := ai.baseDelay
	var lastErr error

	for attempt := 1; attempt <= ai.maxAttempts; attempt++ {
		result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
		if err == nil {
			return result.Text(), nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == ai.maxAttempts {
			break
		}
		ai.logger.Warn("Gemini call failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", types.ErrLLMCall, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
		if delay > ai.maxDelay {
			delay = ai.maxDelay
		}
	}
	return "", fmt.Errorf("%w: %v", types.ErrLLMCall, lastErr)
}

// isRetryable reports whether the error looks like a transient transport or
// rate-limit condition (5xx, 429, timeouts). Client errors other than 429 are
// not retried.
func isRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{"429", "500", "502", "503", "504", "RESOURCE_EXHAUSTED", "UNAVAILABLE", "DEADLINE_EXCEEDED"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
