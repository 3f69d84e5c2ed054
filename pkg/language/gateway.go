package language

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
)

// AudioStore persists synthesized audio and returns a URL clients can fetch.
type AudioStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// Input is what a caller hands to Ingest: text or audio, plus an optional
// declared language. A zero Declared means auto-detect.
type Input struct {
	Text     string
	Audio    []byte
	Declared Language
}

// IngestResult carries the English form of the input and the language the
// reply should be rendered in.
type IngestResult struct {
	EnglishText string
	Detected    Language
}

// EgressResult carries the localized reply text and, when synthesis
// succeeded, a URL to the spoken form.
type EgressResult struct {
	Text     string
	AudioURL string
}

// Gateway wraps the external speech and translation collaborators around the
// English-only core.
type Gateway struct {
	detector    *Detector
	transcriber Transcriber
	translator  Translator
	synthesizer Synthesizer
	audio       AudioStore
	logger      *slog.Logger
}

func NewGateway(detector *Detector, transcriber Transcriber, translator Translator,
	synthesizer Synthesizer, audio AudioStore, logger *slog.Logger) *Gateway {
	return &Gateway{
		detector:    detector,
		transcriber: transcriber,
		translator:  translator,
		synthesizer: synthesizer,
		audio:       audio,
		logger:      logger.With("module", "language"),
	}
}

// Ingest transcribes audio if present, detects the language, and translates
// the text to English. An empty transcription yields English with empty text;
// the caller decides whether to prompt for clarification. A translation
// failure falls back to the untranslated text.
func (g *Gateway) Ingest(ctx context.Context, input Input) (IngestResult, error) {
	text := input.Text

	if len(input.Audio) > 0 {
		transcript, err := g.transcriber.Transcribe(ctx, input.Audio, input.Declared)
		if err != nil {
			return IngestResult{}, fmt.Errorf("failed to transcribe audio: %w", err)
		}

		text = transcript
	}

	if text == "" {
		return IngestResult{EnglishText: "", Detected: English}, nil
	}

	detected := input.Declared
	if detected == "" {
		var err error

		detected, err = g.detector.Detect(ctx, text)
		if err != nil {
			return IngestResult{}, fmt.Errorf("failed to detect language: %w", err)
		}
	}

	if detected == English {
		return IngestResult{EnglishText: text, Detected: English}, nil
	}

	english, err := g.translator.Translate(ctx, text, detected, English)
	if err != nil {
		g.logger.WarnContext(ctx, "Inbound translation failed, using untranslated text",
			"language", detected, "error", err)

		return IngestResult{EnglishText: text, Detected: detected}, nil
	}

	return IngestResult{EnglishText: english, Detected: detected}, nil
}

// Egress localizes the English reply into the target language and synthesizes
// it to audio. Translation failures fall back to the English text; synthesis
// failures return an empty audio URL without failing the call.
func (g *Gateway) Egress(ctx context.Context, englishText string, target Language) (EgressResult, error) {
	if englishText == "" {
		return EgressResult{}, nil
	}

	text := englishText

	if target != English && target != "" {
		translated, err := g.translator.Translate(ctx, englishText, English, target)
		if err != nil {
			g.logger.WarnContext(ctx, "Outbound translation failed, replying in English",
				"language", target, "error", err)
		} else {
			text = translated
		}
	}

	audioURL := g.synthesize(ctx, text, target)

	return EgressResult{Text: text, AudioURL: audioURL}, nil
}

func (g *Gateway) synthesize(ctx context.Context, text string, target Language) string {
	if g.synthesizer == nil || g.audio == nil {
		return ""
	}

	if target == "" {
		target = English
	}

	audio, err := g.synthesizer.Synthesize(ctx, text, target)
	if err != nil {
		g.logger.WarnContext(ctx, "Audio synthesis failed", "language", target, "error", err)

		return ""
	}

	// Stable path: identical text and language always land on the same key.
	key := fmt.Sprintf("tts/%s/%x.mp3", target.Code(), sha256.Sum256([]byte(text)))

	if err := g.audio.Put(ctx, key, audio, "audio/mpeg"); err != nil {
		g.logger.WarnContext(ctx, "Failed to store synthesized audio", "key", key, "error", err)

		return ""
	}

	url, err := g.audio.URL(ctx, key)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to sign audio URL", "key", key, "error", err)

		return ""
	}

	return url
}
