// Package retrieval embeds a query and fetches the nearest transcript
// chunks from the vector index.
package retrieval

import (
	"context"
	"fmt"

	"github.com/seanblong/podsearch/internal/ai"
	"github.com/seanblong/podsearch/internal/index"
	"github.com/seanblong/podsearch/pkg/models"
)

// DefaultTopK is how many chunks a query retrieves by default.
const DefaultTopK = 4

type Retriever struct {
	Client ai.Client
	Index  index.Index
}

func New(client ai.Client, idx index.Index) *Retriever {
	return &Retriever{Client: client, Index: idx}
}

// Retrieve returns up to topK chunks relevant to the query, best match
// first. An empty result is a valid outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := r.Client.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.Index.Query(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	out := make([]models.RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		out = append(out, models.RetrievedChunk{
			Chunk:      m.Chunk,
			Score:      m.Score,
			YoutubeURL: WatchURL(m.Chunk.VideoID, m.Chunk.TimestampSeconds),
		})
	}
	return out, nil
}

// WatchURL builds a video link that jumps to the chunk's anchor timestamp.
func WatchURL(videoID string, seconds int) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s&t=%ds", videoID, seconds)
}
