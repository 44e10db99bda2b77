package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/spf13/pflag"

	"github.com/seanblong/podsearch/internal/ai"
	"github.com/seanblong/podsearch/internal/answer"
	"github.com/seanblong/podsearch/internal/config"
	"github.com/seanblong/podsearch/internal/identity"
	"github.com/seanblong/podsearch/internal/index"
	"github.com/seanblong/podsearch/internal/kv"
	"github.com/seanblong/podsearch/internal/query"
	"github.com/seanblong/podsearch/internal/ratelimit"
	"github.com/seanblong/podsearch/internal/respcache"
	"github.com/seanblong/podsearch/internal/retrieval"
)

type askRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// wireEvent is the JSON shape of one SSE event.
type wireEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func clientConfigFor(cfg config.Specification) (*ai.ClientConfig, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return &ai.ClientConfig{
			APIKey:      cfg.APIKey,
			EmbedModel:  cfg.EmbedModel,
			AnswerModel: cfg.AnswerModel,
			Dim:         cfg.Dim,
			ProjectID:   cfg.ProjectID,
			Provider:    ai.ProviderOpenAI,
		}, nil
	case "vertexai", "google":
		return &ai.ClientConfig{
			APIKey:      cfg.APIKey,
			EmbedModel:  cfg.EmbedModel,
			AnswerModel: cfg.AnswerModel,
			Dim:         cfg.Dim,
			ProjectID:   cfg.ProjectID,
			Location:    cfg.Location,
			Provider:    ai.ProviderVertexAI,
		}, nil
	case "stub":
		return &ai.ClientConfig{
			Dim:      cfg.Dim,
			Provider: ai.ProviderStub,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev wireEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func main() {
	// Create flagset for configuration
	fs := pflag.NewFlagSet("podsearch-api", pflag.ExitOnError)

	// Load configuration
	cfg, err := config.Load("", fs)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	fs.Usage = cfg.Usage

	// Set up logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level '%s': %v", cfg.LogLevel, err)
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Str("provider", cfg.Provider).Str("log_level", cfg.LogLevel).Msg("starting podsearch api")

	clientConfig, err := clientConfigFor(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx := context.Background()
	st, err := index.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	c, err := ai.NewClient(clientConfig)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}

	dim := c.Dim()
	logger.Info().Int("embedding_dim", dim).Str("embed_model", clientConfig.EmbedModel).Msg("AI client initialized")

	if err := st.Migrate(ctx, dim); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Cache and rate limiting are optional: without Redis both fail open.
	var store kv.Store
	if cfg.RedisURL != "" {
		rs, err := kv.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid redis URL: %v", err)
		}
		defer rs.Close()
		store = rs
	} else {
		logger.Warn().Msg("no redis configured, caching and rate limiting disabled")
	}

	resolver := identity.NewResolver(cfg.JwtSecret)
	orchestrator := &query.Orchestrator{
		Limiter:   ratelimit.New(store),
		Cache:     respcache.New(store),
		Retriever: retrieval.New(c, st),
		Generator: answer.NewGenerator(c),
		TopK:      cfg.TopK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	mux.HandleFunc("/suggestions", func(w http.ResponseWriter, r *http.Request) {
		n := 4
		if v := r.URL.Query().Get("n"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
				n = parsed
			}
		}
		writeJSON(w, http.StatusOK, answer.RandomQuestions(n))
	})

	mux.HandleFunc("/ask", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		start := time.Now()

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Query is required"})
			return
		}
		who := resolver.FromRequest(r, req.UserID)

		ans, err := orchestrator.Ask(r.Context(), req.Query, who)
		if err != nil {
			var rle *query.RateLimitedError
			switch {
			case errors.Is(err, query.ErrEmptyQuery):
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Query is required"})
			case errors.As(err, &rle):
				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":     "Rate limit exceeded. Please try again later.",
					"remaining": rle.Remaining,
				})
			case errors.Is(err, query.ErrNoContent):
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "No relevant content found for your query."})
			default:
				hlog.FromRequest(r).Error().Err(err).Msg("query pipeline failed")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "An error occurred processing your request"})
			}
			return
		}

		if ans.Cached {
			w.Header().Set("X-Cache", "HIT")
			writeJSON(w, http.StatusOK, map[string]any{
				"cached":   true,
				"response": ans.Response,
				"sources":  ans.Sources,
			})
			hlog.FromRequest(r).Info().Str("path", "/ask").Bool("cached", true).Dur("dur", time.Since(start)).Msg("served")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Streaming unsupported"})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Cache", "MISS")

		for ev := range ans.Events {
			var wire wireEvent
			switch ev.Type {
			case query.EventSources:
				wire = wireEvent{Type: "sources", Data: ev.Sources}
			case query.EventText:
				wire = wireEvent{Type: "text", Data: ev.Text}
			default:
				wire = wireEvent{Type: string(ev.Type)}
			}
			if err := writeEvent(w, flusher, wire); err != nil {
				// Consumer is gone; the orchestrator notices via context.
				hlog.FromRequest(r).Debug().Err(err).Msg("client disconnected mid-stream")
				break
			}
		}

		hlog.FromRequest(r).Info().Str("path", "/ask").Bool("cached", false).Dur("dur", time.Since(start)).Msg("served")
	})

	handler := hlog.NewHandler(logger)(
		hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
			logger.Info().Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Int("size", size).Dur("dur", dur).Msg("http")
		})(mux),
	)

	address := fmt.Sprintf(":%d", cfg.Port)
	s := &http.Server{Addr: address, Handler: handler}
	logger.Info().Str("addr", s.Addr).Msg("api server listening")
	log.Fatal(s.ListenAndServe())
}
