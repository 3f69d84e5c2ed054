package language

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	transcribeTimeout = 15 * time.Second
	translateTimeout  = 10 * time.Second
	synthesizeTimeout = 10 * time.Second
)

// Transcriber converts spoken audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, lang Language) (string, error)
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target Language) (string, error)
}

// Synthesizer renders text to spoken audio and returns the raw bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang Language) ([]byte, error)
}

// HTTPTranscriber calls an external ASR service. English input uses the
// general-purpose model; the other languages use a multilingual model
// configured per language.
type HTTPTranscriber struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPTranscriber(baseURL string) *HTTPTranscriber {
	return &HTTPTranscriber{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: transcribeTimeout},
	}
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio []byte, lang Language) (string, error) {
	model := "general"
	if lang != English && lang != "" {
		model = "multilingual-" + lang.Code()
	}

	payload := map[string]string{
		"audio": base64.StdEncoding.EncodeToString(audio),
		"model": model,
	}

	var result struct {
		Text string `json:"text"`
	}

	if err := postJSON(ctx, t.httpClient, t.baseURL+"/v1/transcribe", payload, &result); err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return result.Text, nil
}

// HTTPTranslator calls an external machine-translation service.
type HTTPTranslator struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPTranslator(baseURL string) *HTTPTranslator {
	return &HTTPTranslator{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: translateTimeout},
	}
}

func (t *HTTPTranslator) Translate(ctx context.Context, text string, source, target Language) (string, error) {
	payload := map[string]string{
		"text":   text,
		"source": source.Code(),
		"target": target.Code(),
	}

	var result struct {
		Text string `json:"text"`
	}

	if err := postJSON(ctx, t.httpClient, t.baseURL+"/v1/translate", payload, &result); err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	return result.Text, nil
}

// HTTPSynthesizer calls an external TTS service and returns the audio bytes.
type HTTPSynthesizer struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPSynthesizer(baseURL string) *HTTPSynthesizer {
	return &HTTPSynthesizer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: synthesizeTimeout},
	}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string, lang Language) ([]byte, error) {
	body, err := json.Marshal(map[string]string{
		"text":     text,
		"language": lang.Code(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("synthesis returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}

	return audio, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
