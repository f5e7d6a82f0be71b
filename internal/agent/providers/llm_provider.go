package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anoa.com/practiceforum/pkg/apperror"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiService = "gemini"

// Constraints bound a single generation call.
type Constraints struct {
	Temperature float32
	MaxTokens   int32
}

// TextGenerator is the external text generator the scheduler calls for titles and content.
// Implementations return an *apperror.ExternalServiceError on failure.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, c Constraints) (string, error)
	Close()
}

// GeminiProvider implements TextGenerator on Google Gemini.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a Gemini client. modelName defaults to gemini-2.5-flash.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, apperror.NewConfigurationError("text generator", "GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperror.NewExternalServiceError(geminiService, err)
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

// Generate implements TextGenerator. A model is built per call since
// GenerativeModel settings are not safe to mutate across goroutines.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string, c Constraints) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(c.Temperature)
	if c.MaxTokens > 0 {
		model.SetMaxOutputTokens(c.MaxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperror.NewExternalServiceError(geminiService, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", apperror.NewExternalServiceError(geminiService, errors.New("no response from LLM"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", apperror.NewExternalServiceError(geminiService, fmt.Errorf("no text content in response"))
	}
	return text, nil
}

// Close implements TextGenerator
func (g *GeminiProvider) Close() {
	g.client.Close()
}
