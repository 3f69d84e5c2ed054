package language

import (
	"context"
	"fmt"
	"sort"

	"github.com/sahayakhq/sahayak/pkg/retrieval"
)

const defaultNeighbors = 5

type corpusEntry struct {
	language Language
	vector   []float32
}

// Detector classifies text into one of the supported languages by cosine
// nearest neighbors over an embedded phrase corpus.
type Detector struct {
	embedder  retrieval.Embedder
	entries   []corpusEntry
	neighbors int
}

// NewDetector embeds the phrase corpus up front so detection needs a single
// embedding call per query.
func NewDetector(ctx context.Context, embedder retrieval.Embedder) (*Detector, error) {
	var texts []string

	var languages []Language

	for _, lang := range Supported() {
		for _, phrase := range detectionCorpus[lang] {
			texts = append(texts, phrase)
			languages = append(languages, lang)
		}
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed detection corpus: %w", err)
	}

	entries := make([]corpusEntry, len(vectors))
	for i, vector := range vectors {
		entries[i] = corpusEntry{language: languages[i], vector: vector}
	}

	return &Detector{embedder: embedder, entries: entries, neighbors: defaultNeighbors}, nil
}

// Detect returns the majority language of the query's nearest corpus phrases.
// Ties break to English.
func (d *Detector) Detect(ctx context.Context, text string) (Language, error) {
	if text == "" {
		return English, nil
	}

	vector, err := d.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	type scored struct {
		language Language
		score    float64
	}

	ranked := make([]scored, len(d.entries))
	for i, entry := range d.entries {
		ranked[i] = scored{language: entry.language, score: retrieval.Cosine(vector, entry.vector)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	k := d.neighbors
	if k > len(ranked) {
		k = len(ranked)
	}

	votes := make(map[Language]int, k)
	for _, neighbor := range ranked[:k] {
		votes[neighbor.language]++
	}

	best := English
	bestVotes := 0
	tied := false

	for _, lang := range Supported() {
		switch {
		case votes[lang] > bestVotes:
			best = lang
			bestVotes = votes[lang]
			tied = false
		case votes[lang] == bestVotes && votes[lang] > 0 && lang != best:
			tied = true
		}
	}

	if tied {
		return English, nil
	}

	return best, nil
}
