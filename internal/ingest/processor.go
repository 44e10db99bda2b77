// Package ingest walks a transcript corpus, chunks each episode, and feeds
// the embedding/upsert pipeline.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/karrick/godirwalk"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"github.com/seanblong/podsearch/internal/transcript"
	"github.com/seanblong/podsearch/pkg/models"
)

// TranscriptFile is the per-episode transcript filename inside each
// episode directory.
const TranscriptFile = "transcript.md"

// FileSystemWalker defines the interface for walking directories
type FileSystemWalker interface {
	Walk(root string, options *godirwalk.Options) error
}

// FileReader defines the interface for reading files
type FileReader interface {
	ReadFile(filename string) ([]byte, error)
}

// DefaultFileSystemWalker implements FileSystemWalker using godirwalk
type DefaultFileSystemWalker struct{}

func (d *DefaultFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return godirwalk.Walk(root, options)
}

// DefaultFileReader implements FileReader using os
type DefaultFileReader struct{}

func (d *DefaultFileReader) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// Processor turns a directory of per-episode transcripts into a flat chunk
// list. A failing episode is logged and skipped; it never aborts the batch.
type Processor struct {
	Root          string
	MaxTokens     int
	OverlapTokens int
	Workers       int
	Walker        FileSystemWalker
	FileReader    FileReader
}

// NewProcessor creates a Processor with default chunking parameters.
func NewProcessor(root string) *Processor {
	return &Processor{
		Root:          root,
		MaxTokens:     transcript.DefaultMaxTokens,
		OverlapTokens: transcript.DefaultOverlapTokens,
		Workers:       4,
		Walker:        &DefaultFileSystemWalker{},
		FileReader:    &DefaultFileReader{},
	}
}

type episode struct {
	slug string
	path string
}

// Chunks walks the corpus and returns every chunk, episodes in walk order
// and chunks in transcript order within each episode.
func (p *Processor) Chunks(ctx context.Context) ([]models.Chunk, error) {
	var episodes []episode
	err := p.Walker.Walk(p.Root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de != nil && de.IsDir() {
				return nil
			}
			if filepath.Base(path) != TranscriptFile {
				return nil
			}
			episodes = append(episodes, episode{
				slug: filepath.Base(filepath.Dir(path)),
				path: path,
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(episodes, func(i, j int) bool { return episodes[i].slug < episodes[j].slug })

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([][]models.Chunk, len(episodes))
	var wg sync.WaitGroup
	for i, ep := range episodes {
		if ctx.Err() != nil {
			break
		}
		i, ep := i, ep
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = p.processEpisode(ep)
		}); err != nil {
			wg.Done()
			log.Warn().Err(err).Str("episode", ep.slug).Msg("failed to schedule episode")
		}
	}
	wg.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var all []models.Chunk
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// processEpisode reads, parses, and chunks one transcript. Every failure
// mode degrades to zero chunks for that episode.
func (p *Processor) processEpisode(ep episode) []models.Chunk {
	raw, err := p.FileReader.ReadFile(ep.path)
	if err != nil {
		log.Warn().Err(err).Str("episode", ep.slug).Msg("failed to read transcript, skipping")
		return nil
	}

	meta, body, err := transcript.SplitFrontMatter(string(raw))
	if err != nil {
		log.Warn().Err(err).Str("episode", ep.slug).Msg("failed to parse front matter, skipping")
		return nil
	}

	turns := transcript.ParseTurns(body)
	if len(turns) == 0 {
		log.Warn().Str("episode", ep.slug).Msg("no speaker turns found, skipping")
		return nil
	}

	chunks := transcript.ChunkTurns(turns, meta, ep.slug, p.MaxTokens, p.OverlapTokens)
	log.Info().Str("episode", ep.slug).Int("turns", len(turns)).Int("chunks", len(chunks)).Msg("processed episode")
	return chunks
}
