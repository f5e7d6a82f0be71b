package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/practiceforum/internal/agent/providers"
	"anoa.com/practiceforum/pkg/apperror"
)

const (
	defaultTitleMasterPrompt   = "Generate a creative title for a daily writing block. The title should be concise (5-10 words) and inspiring for writers."
	defaultContentMasterPrompt = "Generate creative writing content that would be interesting to translate."

	maxTitleLength    = 100
	maxContentTokens  = 4096
	tokensPerWord     = 5
	sentenceCutoffPct = 0.8
)

var (
	titleConstraints = providers.Constraints{Temperature: 0.7, MaxTokens: 50}
	errEmptyOutput   = errors.New("generator returned empty text")
)

// ContentGenerator turns schedule prompts into block titles and post bodies.
type ContentGenerator struct {
	generator           providers.TextGenerator
	titleMasterPrompt   string
	contentMasterPrompt string
	timeout             time.Duration
}

func NewContentGenerator(generator providers.TextGenerator, titleMasterPrompt, contentMasterPrompt string, timeout time.Duration) *ContentGenerator {
	if titleMasterPrompt == "" {
		titleMasterPrompt = defaultTitleMasterPrompt
	}
	if contentMasterPrompt == "" {
		contentMasterPrompt = defaultContentMasterPrompt
	}
	return &ContentGenerator{
		generator:           generator,
		titleMasterPrompt:   titleMasterPrompt,
		contentMasterPrompt: contentMasterPrompt,
		timeout:             timeout,
	}
}

func (g *ContentGenerator) call(ctx context.Context, prompt string, c providers.Constraints) (string, error) {
	if g.generator == nil {
		return "", apperror.NewExternalServiceError("text generator", errors.New("no generator configured"))
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.generator.Generate(ctx, prompt, c)
	if err != nil {
		var extErr *apperror.ExternalServiceError
		if errors.As(err, &extErr) {
			return "", err
		}
		return "", apperror.NewExternalServiceError("text generator", err)
	}
	return text, nil
}

// Title generates a block title for date. Callers fall back to a formatted date on error.
func (g *ContentGenerator) Title(ctx context.Context, prompt string, date time.Time) (string, error) {
	full := fmt.Sprintf("%s\n\nDate: %s\nUser Instructions: %s",
		g.titleMasterPrompt, date.Format("Monday, January 2, 2006"), prompt)

	text, err := g.call(ctx, full, titleConstraints)
	if err != nil {
		return "", err
	}

	title := CleanTitle(text)
	if title == "" {
		return "", apperror.NewExternalServiceError("text generator", errEmptyOutput)
	}
	return title, nil
}

// Content generates a post body of at most maxWords words.
func (g *ContentGenerator) Content(ctx context.Context, prompt string, minWords, maxWords int) (string, error) {
	full := fmt.Sprintf("%s\n\nUser Instructions: %s\n\nPlease generate content between %d and %d words.",
		g.contentMasterPrompt, prompt, minWords, maxWords)

	tokens := maxWords * tokensPerWord
	if tokens > maxContentTokens {
		tokens = maxContentTokens
	}

	text, err := g.call(ctx, full, providers.Constraints{Temperature: 0.8, MaxTokens: int32(tokens)})
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperror.NewExternalServiceError("text generator", errEmptyOutput)
	}
	if CountWords(text) > maxWords {
		text = TruncateWords(text, maxWords)
	}
	return text, nil
}

// CleanTitle strips one pair of surrounding quotes and caps the length.
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, `"'`)
	s = strings.TrimRight(s, `"'`)
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > maxTitleLength {
		s = strings.TrimSpace(string(runes[:maxTitleLength]))
	}
	return s
}

// TruncateWords keeps the first maxWords words. When the last period sits in
// the final fifth of the result, the text is cut just after it.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}

	truncated := strings.Join(words[:maxWords], " ")
	if idx := strings.LastIndex(truncated, "."); idx >= 0 && float64(idx) > float64(len(truncated))*sentenceCutoffPct {
		truncated = truncated[:idx+1]
	}
	return truncated
}

func CountWords(s string) int {
	return len(strings.Fields(s))
}
