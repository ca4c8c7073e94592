package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/creatorscout/internal/domain"
	"github.com/kailas-cloud/creatorscout/internal/domain/platform"
	"github.com/kailas-cloud/creatorscout/internal/logger"
	"github.com/kailas-cloud/creatorscout/internal/metrics"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxKeywords = 5
)

const systemPrompt = `You help find social media creators. Given a topic, an optional location ` +
	`and a platform, reply with a JSON object {"keywords": [...]} holding 3 to 5 short search ` +
	`keywords a creator in that niche would use in their bio or captions. No hashtags, no explanations.`

// Suggester proposes search keywords with an OpenAI-compatible chat model.
type Suggester struct {
	client      *openai.Client
	model       string
	maxKeywords int
}

// Config holds the chat model settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxKeywords int
}

// NewSuggester creates a keyword suggester. A missing key is a configuration error.
func NewSuggester(cfg *Config) (*Suggester, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: openai api key is required", domain.ErrConfiguration)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	limit := cfg.MaxKeywords
	if limit <= 0 {
		limit = defaultMaxKeywords
	}
	return &Suggester{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxKeywords: limit,
	}, nil
}

// SuggestKeywords implements discovery.KeywordSuggester.
func (s *Suggester) SuggestKeywords(
	ctx context.Context, topic, location string, p platform.Platform,
) ([]string, error) {
	user := fmt.Sprintf("topic: %s\nlocation: %s\nplatform: %s", topic, location, p)
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.2,
	})
	if err != nil {
		metrics.KeywordSuggestionsTotal.WithLabelValues(s.model, "error").Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.KeywordSuggestionsTotal.WithLabelValues(s.model, "error").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrProviderError)
	}

	metrics.KeywordSuggestionsTotal.WithLabelValues(s.model, "success").Inc()
	if resp.Usage.TotalTokens > 0 {
		metrics.KeywordSuggestionTokensTotal.WithLabelValues(s.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.KeywordSuggestionTokensTotal.WithLabelValues(s.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	kws, err := s.parseKeywords(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("suggested keywords", zap.Strings("keywords", kws))
	return kws, nil
}

func (s *Suggester) parseKeywords(content string) ([]string, error) {
	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("decode keyword suggestion: %v: %w", err, domain.ErrProviderError)
	}
	out := make([]string, 0, len(parsed.Keywords))
	seen := make(map[string]struct{}, len(parsed.Keywords))
	for _, k := range parsed.Keywords {
		k = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(k), "#"))
		if k == "" {
			continue
		}
		lower := strings.ToLower(k)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, k)
		if len(out) == s.maxKeywords {
			break
		}
	}
	return out, nil
}

// parseAPIError wraps API failures as provider errors with the upstream status.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := extractDetail(reqErr.Body)
		if msg == "" {
			msg = string(reqErr.Body)
		}
		return &domain.ProviderError{Provider: "openai", StatusCode: reqErr.HTTPStatusCode, Message: msg}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.ProviderError{Provider: "openai", StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	return fmt.Errorf("keyword suggestion failed: %v: %w", err, domain.ErrProviderError)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
