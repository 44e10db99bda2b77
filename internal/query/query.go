// Package query coordinates a question through rate limiting, response
// caching, retrieval, and streamed answer generation.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/podsearch/internal/ratelimit"
	"github.com/seanblong/podsearch/internal/retrieval"
	"github.com/seanblong/podsearch/pkg/models"
)

// Sentinel outcomes, distinct from system errors.
var (
	ErrEmptyQuery = errors.New("query is required")
	ErrNoContent  = errors.New("no relevant content found")
)

// RateLimitedError reports a rejected request with its remaining quota.
type RateLimitedError struct {
	Remaining int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, %d remaining", e.Remaining)
}

// EventType discriminates stream events on the wire.
type EventType string

const (
	EventSources EventType = "sources"
	EventStart   EventType = "start"
	EventText    EventType = "text"
	EventDone    EventType = "done"
)

// Event is one element of the answer stream. The stream always carries one
// sources event first, then start, then text fragments in production order,
// then a terminal done.
type Event struct {
	Type    EventType       `json:"type"`
	Text    string          `json:"data,omitempty"`
	Sources []models.Source `json:"sources,omitempty"`
}

// Answer is the outcome of Ask. Either Cached is set with the stored
// response, or Events streams a freshly generated one.
type Answer struct {
	Cached   bool
	Response string
	Sources  []models.Source
	Events   <-chan Event
}

// Retriever fetches relevant chunks for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error)
}

// Generator streams a grounded answer for a query over chunks.
type Generator interface {
	Stream(ctx context.Context, query string, chunks []models.RetrievedChunk, emit func(string) error) error
}

// Limiter checks per-identity quota.
type Limiter interface {
	Check(ctx context.Context, identity string) ratelimit.Verdict
}

// Cache stores completed answers.
type Cache interface {
	Get(ctx context.Context, query string) (*models.CachedResult, bool)
	Put(ctx context.Context, query, response string, sources []models.Source)
}

const snippetLen = 200

// Orchestrator wires the query-time pipeline together. Each Ask is an
// independent task; shared state lives only in the external stores.
type Orchestrator struct {
	Limiter   Limiter
	Cache     Cache
	Retriever Retriever
	Generator Generator
	TopK      int
}

// Ask runs the pipeline for one question. Expected rejections surface as
// ErrEmptyQuery, *RateLimitedError, or ErrNoContent; anything else is a
// system failure the caller should treat generically.
func (o *Orchestrator) Ask(ctx context.Context, query, identity string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	verdict := o.Limiter.Check(ctx, identity)
	if !verdict.Allowed {
		return nil, &RateLimitedError{Remaining: verdict.Remaining}
	}

	if cached, ok := o.Cache.Get(ctx, query); ok {
		log.Debug().Str("identity", identity).Msg("cache hit")
		return &Answer{Cached: true, Response: cached.Response, Sources: cached.Sources}, nil
	}

	topK := o.TopK
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	chunks, err := o.Retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	if len(chunks) == 0 {
		return nil, ErrNoContent
	}

	sources := Sources(chunks)
	events := make(chan Event)
	go o.stream(ctx, query, chunks, sources, events)

	return &Answer{Sources: sources, Events: events}, nil
}

// stream produces the event sequence and writes the completed answer back
// to the cache. A cancelled consumer stops production promptly; partial
// answers are discarded, never cached.
func (o *Orchestrator) stream(ctx context.Context, query string, chunks []models.RetrievedChunk, sources []models.Source, events chan<- Event) {
	defer close(events)

	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(Event{Type: EventSources, Sources: sources}) {
		return
	}
	if !send(Event{Type: EventStart}) {
		return
	}

	var full strings.Builder
	err := o.Generator.Stream(ctx, query, chunks, func(frag string) error {
		if !send(Event{Type: EventText, Text: frag}) {
			return context.Cause(ctx)
		}
		full.WriteString(frag)
		return nil
	})
	if err != nil {
		// Streaming already started; the failure is logged and the stream
		// is closed cleanly after the terminal marker.
		log.Error().Err(err).Msg("answer generation failed mid-stream")
	}

	if !send(Event{Type: EventDone}) {
		return
	}

	if err == nil && ctx.Err() == nil && full.Len() > 0 {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.Cache.Put(writeCtx, query, full.String(), sources)
	}
}

// Sources summarizes chunks into citation entries with bounded snippets.
func Sources(chunks []models.RetrievedChunk) []models.Source {
	out := make([]models.Source, 0, len(chunks))
	for _, c := range chunks {
		snippet := c.Text
		if len(snippet) > snippetLen {
			snippet = snippet[:snippetLen]
		}
		out = append(out, models.Source{
			Guest:      c.Guest,
			Title:      c.Title,
			Timestamp:  c.Timestamp,
			YoutubeURL: c.YoutubeURL,
			Speaker:    c.Speaker,
			Snippet:    snippet + "...",
		})
	}
	return out
}
