package index

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/seanblong/podsearch/pkg/models"
)

// Store implements Index on Postgres with the pgvector extension.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store instance connected to the given database URL.
func New(ctx context.Context, url string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: p}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Migrate applies the schema for the given embedding dimension.
func (s *Store) Migrate(ctx context.Context, dim int) error {
	q := `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunks (
  id                 TEXT PRIMARY KEY,
  episode_slug       TEXT NOT NULL,
  guest              TEXT,
  title              TEXT,
  video_id           TEXT,
  speaker            TEXT,
  ts                 TEXT,
  ts_seconds         INT,
  content            TEXT,
  embedding          vector(%d),
  created_at         TIMESTAMP WITH TIME ZONE DEFAULT now()
);

CREATE INDEX IF NOT EXISTS chunks_episode_slug_idx
  ON chunks (episode_slug);

CREATE INDEX IF NOT EXISTS chunks_embedding_idx
  ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
`
	_, err := s.pool.Exec(ctx, fmt.Sprintf(q, dim))
	return err
}

// Upsert inserts or replaces vectors. Callers batch; each call is one
// round trip per batch.
func (s *Store) Upsert(ctx context.Context, vectors []Vector) error {
	const q = `
		INSERT INTO chunks (
			id, episode_slug, guest, title, video_id, speaker, ts, ts_seconds,
			content, embedding, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())
		ON CONFLICT (id) DO UPDATE SET
			episode_slug = EXCLUDED.episode_slug,
			guest        = EXCLUDED.guest,
			title        = EXCLUDED.title,
			video_id     = EXCLUDED.video_id,
			speaker      = EXCLUDED.speaker,
			ts           = EXCLUDED.ts,
			ts_seconds   = EXCLUDED.ts_seconds,
			content      = EXCLUDED.content,
			embedding    = EXCLUDED.embedding,
			created_at   = chunks.created_at;`

	batch := &pgx.Batch{}
	for _, v := range vectors {
		c := v.Chunk
		batch.Queue(q,
			v.ID, c.EpisodeSlug, c.Guest, c.Title, c.VideoID, c.Speaker,
			c.Timestamp, c.TimestampSeconds, c.Text, pgvector.NewVector(v.Values),
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range vectors {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Query returns the topK nearest chunks by cosine similarity, best first.
func (s *Store) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	const q = `
		SELECT id, episode_slug, guest, title, video_id, speaker, ts, ts_seconds,
		       content,
		       1 - (embedding <=> $1) AS score
		FROM chunks
		ORDER BY embedding <=> $1
		LIMIT $2;`

	rows, err := s.pool.Query(ctx, q, pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var c models.Chunk
		var score float64
		if err := rows.Scan(
			&c.ID, &c.EpisodeSlug, &c.Guest, &c.Title, &c.VideoID, &c.Speaker,
			&c.Timestamp, &c.TimestampSeconds, &c.Text, &score,
		); err != nil {
			return nil, err
		}
		out = append(out, Match{ID: c.ID, Score: score, Chunk: c})
	}
	return out, rows.Err()
}

// Ping checks the database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
