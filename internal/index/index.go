// Package index is the vector similarity index the retriever and the
// ingestion pipeline talk to.
package index

import (
	"context"

	"github.com/seanblong/podsearch/pkg/models"
)

// Vector is one embedded chunk ready for upsert.
type Vector struct {
	ID     string
	Values []float32
	Chunk  models.Chunk
}

// Match is one ranked result from a similarity query.
type Match struct {
	ID    string
	Score float64
	Chunk models.Chunk
}

// Index defines the vector index contract. Query returns up to topK
// matches, highest similarity first.
type Index interface {
	Upsert(ctx context.Context, vectors []Vector) error
	Query(ctx context.Context, vec []float32, topK int) ([]Match, error)
}
