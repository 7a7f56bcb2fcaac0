package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/relaymind/autopilot/internal/pipeline"
	"github.com/relaymind/autopilot/internal/store"
	anthropicpkg "github.com/relaymind/autopilot/pkg/anthropic"
	"github.com/relaymind/autopilot/pkg/mailbox"
)

// pipelineEnv holds the initialized store and pipeline needed by the
// run/batch/serve commands.
type pipelineEnv struct {
	Store  store.Store
	Runner *pipeline.Runner
	Batch  *pipeline.Batch
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "autopilot.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, the mailbox source, the model client, and
// the runner/batch pair. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewRateLimited(
		anthropicpkg.NewClient(cfg.Anthropic.Key),
		cfg.Anthropic.RequestsPerSecond,
	)

	source := mailbox.NewGmailSource(
		cfg.Mailbox.CredentialsFile,
		cfg.Mailbox.TokenDir,
		cfg.Mailbox.LabelPrefix,
	)

	requester := pipeline.NewRequester(anthropicClient, cfg.Anthropic, cfg.Pipeline)
	scheduler := pipeline.NewScheduler(st, cfg.Policy)
	runner := pipeline.NewRunner(source, st, requester, scheduler, pipeline.NewLogNotifier(), cfg.Pipeline)
	batch := pipeline.NewBatch(st, runner, cfg.Batch)

	return &pipelineEnv{
		Store:  st,
		Runner: runner,
		Batch:  batch,
	}, nil
}
