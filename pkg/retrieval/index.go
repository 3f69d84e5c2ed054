// Package retrieval maps free-form English queries to catalog action ids by
// cosine similarity over embeddings.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/sahayakhq/sahayak/pkg/models"
)

// DefaultMinScore is the cosine similarity below which the index reports no
// match and the caller falls back to generation.
const DefaultMinScore = 0.35

// ErrNoMatch indicates the best candidate scored below the minimum.
var ErrNoMatch = errors.New("no action matched the query")

// Embedder produces fixed-dimension embeddings. Implementations must be safe
// for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Match is one scored candidate.
type Match struct {
	ActionID string
	Score    float64
}

type entry struct {
	actionID string
	vector   []float32
}

// Index is the immutable nearest-neighbor index over action descriptions.
// Built once at startup; Search never mutates it.
type Index struct {
	embedder Embedder
	minScore float64
	entries  []entry
	logger   *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithMinScore overrides the no-match threshold.
func WithMinScore(score float64) Option {
	return func(ix *Index) {
		ix.minScore = score
	}
}

// NewIndex embeds every action once and builds the in-memory index.
func NewIndex(ctx context.Context, embedder Embedder, actions []*models.Action, logger *slog.Logger, opts ...Option) (*Index, error) {
	ix := &Index{
		embedder: embedder,
		minScore: DefaultMinScore,
		logger:   logger.With("module", "retrieval"),
	}

	for _, opt := range opts {
		opt(ix)
	}

	texts := make([]string, len(actions))
	for i, action := range actions {
		texts[i] = IndexText(action)
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed action descriptions: %w", err)
	}

	if len(vectors) != len(actions) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d actions", len(vectors), len(actions))
	}

	ix.entries = make([]entry, len(actions))
	for i, action := range actions {
		ix.entries[i] = entry{actionID: action.ID, vector: vectors[i]}
	}

	ix.logger.InfoContext(ctx, "Retrieval index built", "actions", len(actions), "min_score", ix.minScore)

	return ix, nil
}

// IndexText composes the text an action is indexed under.
func IndexText(action *models.Action) string {
	uiID := ""
	if action.UIID != nil {
		uiID = *action.UIID
	}

	return fmt.Sprintf("ACTION: %s: %s UI_ID: %s", action.ID, action.Description, uiID)
}

// Search returns the top-k candidates ordered by descending score.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches := make([]Match, 0, len(ix.entries))
	for _, e := range ix.entries {
		matches = append(matches, Match{ActionID: e.actionID, Score: Cosine(vector, e.vector)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}

	return matches, nil
}

// BestMatch returns the top candidate, or ErrNoMatch when it scores below
// the configured minimum.
func (ix *Index) BestMatch(ctx context.Context, query string) (Match, error) {
	matches, err := ix.Search(ctx, query, 1)
	if err != nil {
		return Match{}, err
	}

	if len(matches) == 0 || matches[0].Score < ix.minScore {
		score := 0.0
		if len(matches) > 0 {
			score = matches[0].Score
		}

		ix.logger.DebugContext(ctx, "Retrieval miss", "query", query, "best_score", score)

		return Match{}, ErrNoMatch
	}

	return matches[0], nil
}

// Cosine computes cosine similarity between two vectors. Mismatched or zero
// vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
