// Package answer turns retrieved chunks and a question into a streamed,
// context-grounded answer.
package answer

import (
	"context"

	"github.com/seanblong/podsearch/internal/ai"
	"github.com/seanblong/podsearch/pkg/models"
)

type Generator struct {
	Client ai.Client
}

func NewGenerator(client ai.Client) *Generator {
	return &Generator{Client: client}
}

// Stream generates the answer for query grounded in chunks, delivering
// ordered text fragments through emit. Concatenating all fragments in order
// yields the full answer.
func (g *Generator) Stream(ctx context.Context, query string, chunks []models.RetrievedChunk, emit func(string) error) error {
	return g.Client.StreamAnswer(ctx, SystemPrompt, BuildPrompt(query, chunks), emit)
}
