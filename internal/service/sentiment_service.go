package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/solodevhq/megaphone/configs"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

type SentimentResult struct {
	Score float64 `json:"sentiment_score"`
	Label string  `json:"sentiment_label"`
}

// SentimentService classifies free text. Callers treat failure as non-fatal:
// a comment is stored either way, sentiment fields just stay null.
type SentimentService interface {
	Classify(ctx context.Context, text, textContext string) (*SentimentResult, error)
}

type sentimentService struct {
	llm llms.Model
}

func NewSentimentService(cfg config.Config) (SentimentService, error) {
	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIKey),
		openai.WithModel(cfg.OpenAIModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai model: %w", err)
	}
	return &sentimentService{llm: llm}, nil
}

const sentimentPrompt = `Analyze the sentiment of this %s.

Text: %q

Respond with only a JSON object of the form {"sentiment_score": <float between -1.0 and 1.0>, "sentiment_label": "<positive|negative|neutral|mixed>"}.`

func (s *sentimentService) Classify(ctx context.Context, text, textContext string) (*SentimentResult, error) {
	if textContext == "" {
		textContext = "comment"
	}

	prompt := fmt.Sprintf(sentimentPrompt, textContext, text)
	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithMaxTokens(200))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var result SentimentResult
	if err := json.Unmarshal([]byte(extractJSON(completion)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse sentiment response: %w", err)
	}

	if result.Score < -1 || result.Score > 1 {
		return nil, fmt.Errorf("sentiment score %f out of range", result.Score)
	}

	return &result, nil
}

// extractJSON trims markdown fences models sometimes wrap around JSON output.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
