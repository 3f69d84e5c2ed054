// Package generation provides the LLM collaborator used when retrieval cannot
// resolve a catalog action.
package generation

import (
	"context"
	"encoding/json"
)

// Generator produces free-text answers and structured JSON from an LLM. The
// pipelines only ever call it as a fallback; a miss here is a hard failure
// for the request, never for the process.
type Generator interface {
	// Generate answers a query in English, grounded on the supplied
	// context documents.
	Generate(ctx context.Context, query string, contextDocs []string) (string, error)

	// GenerateJSON sends a prompt plus an input payload and requests a JSON
	// response.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}
