package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel   = "gemini-2.0-flash"
	requestTimeout = 30 * time.Second
)

// ErrEmptyResponse indicates the model returned no usable candidate.
var ErrEmptyResponse = errors.New("empty response from model")

// GeminiGenerator is a thin wrapper around the official genai client.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator. The model defaults
// to gemini-2.0-flash when empty.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("genai api key is required")
	}

	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate answers the query grounded on the retrieved context documents.
// Transient failures are retried once.
func (g *GeminiGenerator) Generate(ctx context.Context, query string, contextDocs []string) (string, error) {
	prompt := buildRAGPrompt(query, contextDocs)

	text, err := g.generateOnce(ctx, prompt, "")
	if err != nil {
		text, err = g.generateOnce(ctx, prompt, "")
	}

	return text, err
}

// GenerateJSON requests an application/json response for the prompt plus a
// serialized input payload. Transient failures are retried once.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	encoded, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generator input: %w", err)
	}

	full := prompt + "\n\nINPUT:\n" + string(encoded)

	text, err := g.generateOnce(ctx, full, "application/json")
	if err != nil {
		text, err = g.generateOnce(ctx, full, "application/json")
	}

	if err != nil {
		return nil, err
	}

	return json.RawMessage(text), nil
}

func (g *GeminiGenerator) generateOnce(ctx context.Context, prompt, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var config *genai.GenerateContentConfig
	if mimeType != "" {
		config = &genai.GenerateContentConfig{ResponseMIMEType: mimeType}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, config)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func buildRAGPrompt(query string, contextDocs []string) string {
	var b strings.Builder

	b.WriteString("You are an assistant for a microfinance loan onboarding workflow. ")
	b.WriteString("Answer the user's question in one or two plain English sentences. ")
	b.WriteString("Use the context below when it is relevant; otherwise answer from general knowledge.\n")

	if len(contextDocs) > 0 {
		b.WriteString("\nCONTEXT:\n")

		for _, doc := range contextDocs {
			b.WriteString("- ")
			b.WriteString(doc)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQUESTION: ")
	b.WriteString(query)

	return b.String()
}
