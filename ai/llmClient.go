// Package ai adapts an external text-generation capability into structured
// report enrichment. Everything here is presentation-only: nothing in this
// package may alter a run's decision.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// NarrativeGenerator is the narrow contract the core consumes. prompt in,
// raw model text out.
type NarrativeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient implements NarrativeGenerator on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

const defaultGeminiModel = "gemini-2.0-flash"

// NewGeminiClientFromEnv builds a client from GEMINI_API_KEY / GEMINI_MODEL.
func NewGeminiClientFromEnv(ctx context.Context) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}

	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.2),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("model returned an empty response")
	}
	return text, nil
}

// decodeJSONResponse parses a model response into out. Gemini honors the JSON
// MIME type, but fenced output from other providers is tolerated too.
func decodeJSONResponse(raw string, out any) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), out); err != nil {
		return fmt.Errorf("model returned non-JSON response: %w", err)
	}
	return nil
}
