package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/podsearch/internal/ai"
	"github.com/seanblong/podsearch/internal/index"
	"github.com/seanblong/podsearch/pkg/models"
)

const (
	// DefaultBatchSize bounds one embedding request / index upsert.
	DefaultBatchSize = 100
	// DefaultBatchDelay spaces batches to respect provider rate limits.
	DefaultBatchDelay = 500 * time.Millisecond
)

// Pipeline embeds chunks and upserts them into the vector index. Ingestion
// is a supervised offline job: any unrecovered batch error aborts the run
// rather than leaving the index partially, silently stale.
type Pipeline struct {
	Client     ai.Client
	Index      index.Index
	BatchSize  int
	BatchDelay time.Duration
}

func NewPipeline(client ai.Client, idx index.Index) *Pipeline {
	return &Pipeline{
		Client:     client,
		Index:      idx,
		BatchSize:  DefaultBatchSize,
		BatchDelay: DefaultBatchDelay,
	}
}

// Run processes chunks in fixed-size batches with a small inter-batch delay.
func (p *Pipeline) Run(ctx context.Context, chunks []models.Chunk) error {
	size := p.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vecs, err := p.Client.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}

		vectors := make([]index.Vector, len(batch))
		for i, c := range batch {
			vectors[i] = index.Vector{ID: c.ID, Values: vecs[i], Chunk: c}
		}
		if err := p.Index.Upsert(ctx, vectors); err != nil {
			return fmt.Errorf("upsert batch at %d: %w", start, err)
		}

		log.Info().Int("done", end).Int("total", len(chunks)).Msg("ingested batch")

		if end < len(chunks) && p.BatchDelay > 0 {
			select {
			case <-time.After(p.BatchDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
