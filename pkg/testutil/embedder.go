// Package testutil provides deterministic collaborator fakes for testing.
package testutil

import (
	"context"
	"hash/fnv"
	"strings"
)

const wordEmbedderDims = 64

// WordEmbedder is a deterministic bag-of-words embedder. Texts sharing words
// get similar vectors, which makes cosine nearest-neighbor behave sensibly in
// tests without any external model.
type WordEmbedder struct{}

// Embed hashes each word of the text into a fixed-dimension count vector.
func (WordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vector := make([]float32, wordEmbedderDims)

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'()")
		if word == "" {
			continue
		}

		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		vector[h.Sum32()%wordEmbedderDims]++
	}

	return vector, nil
}

// EmbedBatch embeds every text independently.
func (e WordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}

		vectors[i] = vector
	}

	return vectors, nil
}
