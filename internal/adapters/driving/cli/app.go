package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	embedding "github.com/recapd/recapd/internal/adapters/driven/embedding/ollama"
	"github.com/recapd/recapd/internal/adapters/driven/index/vecstore"
	"github.com/recapd/recapd/internal/adapters/driven/insight"
	insightollama "github.com/recapd/recapd/internal/adapters/driven/insight/ollama"
	insightopenai "github.com/recapd/recapd/internal/adapters/driven/insight/openai"
	"github.com/recapd/recapd/internal/adapters/driven/storage/sqlite"
	"github.com/recapd/recapd/internal/adapters/driven/transcriber/whispercpp"
	"github.com/recapd/recapd/internal/config"
	"github.com/recapd/recapd/internal/core/ports/driven"
	"github.com/recapd/recapd/internal/core/ports/driving"
	"github.com/recapd/recapd/internal/core/services"
	"github.com/recapd/recapd/internal/logger"
)

// pingMaxElapsed bounds the startup wait for Ollama.
const pingMaxElapsed = 30 * time.Second

// app wires the full service graph from configuration. Commands build
// one, use the services they need, and Close it.
type app struct {
	cfg      config.Config
	log      *logrus.Entry
	store    *sqlite.Store
	embedder driven.EmbeddingService
	intake   driving.IntakeService
	runner   driving.PipelineRunner
	search   driving.SearchService
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Environment: cfg.Log.Environment,
		Level:       cfg.Log.Level,
	})

	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	transcriber := whispercpp.New(whispercpp.Config{
		Binary:    cfg.Transcriber.Binary,
		ModelPath: cfg.Transcriber.ModelPath,
	})

	insights, err := insight.New(insight.Config{
		Provider: cfg.Insights.Provider,
		Ollama: insightollama.Config{
			BaseURL: cfg.Insights.OllamaBaseURL,
			Model:   cfg.Insights.OllamaModel,
		},
		OpenAI: insightopenai.Config{
			APIKey: cfg.Insights.OpenAIAPIKey,
			Model:  cfg.Insights.OpenAIModel,
		},
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	embedder := embedding.New(embedding.Config{
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})
	indexer := vecstore.New(embedder, store)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		embedder: embedder,
		intake:   services.NewIntake(store, cfg.Storage.UploadDir),
		runner:   services.NewPipeline(store, transcriber, insights, indexer, log),
		search:   services.NewSearch(indexer),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// waitForOllama pings the embedding endpoint with exponential backoff
// until it answers or the wait budget runs out.
func (a *app) waitForOllama(ctx context.Context) error {
	op := func() error {
		return a.embedder.Ping(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = pingMaxElapsed

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	return nil
}
