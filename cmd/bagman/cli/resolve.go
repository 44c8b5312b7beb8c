package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bagman/internal/catalog"
	catalogelastic "bagman/internal/catalog/elastic"
	catalogfile "bagman/internal/catalog/file"
	catalogmemory "bagman/internal/catalog/memory"
	catalogmongo "bagman/internal/catalog/mongo"
	"bagman/internal/config"
	"bagman/internal/orchestrator"
	"bagman/internal/reader/mcap"
	"bagman/internal/recording"
	"bagman/internal/storage"

	"github.com/spf13/cobra"
)

// loadConfig reads the config file named by the persistent --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openCatalog constructs the configured catalog backend. Backend dispatch
// is a static switch on the type tag; there is no registry or dynamic
// loading.
func openCatalog(ctx context.Context, cfg catalog.Config, logger *slog.Logger) (catalog.Store, error) {
	switch cfg.Backend {
	case "file", "":
		return catalogfile.NewStore(cfg.URI), nil
	case "memory":
		return catalogmemory.NewStore(), nil
	case "mongodb":
		return catalogmongo.NewStore(ctx, cfg, logger)
	case "elasticsearch":
		return catalogelastic.NewStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported catalog backend type %q", cfg.Backend)
	}
}

// connectCatalog opens the configured backend and verifies connectivity.
// A backend that is reachable but not provisioned is provisioned on the
// spot; unreachable or unauthorized backends fail fast.
func connectCatalog(ctx context.Context, cfg catalog.Config, logger *slog.Logger) (catalog.Store, error) {
	store, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	err = store.IsConnected(ctx)
	switch {
	case err == nil:
		return store, nil
	case errors.Is(err, catalog.ErrNotProvisioned):
		if err := store.Provision(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("provision catalog: %w", err)
		}
		return store, nil
	default:
		_ = store.Close(ctx)
		return nil, err
	}
}

// environment bundles the wired components backing one CLI invocation.
type environment struct {
	cfg   config.Config
	store catalog.Store
	root  *storage.Root
	orch  *orchestrator.Orchestrator
}

// resolve loads config and wires storage, catalog, and orchestrator.
// Callers must Close the environment when done.
func resolve(cmd *cobra.Command, logger *slog.Logger) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	store, err := connectCatalog(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	root := storage.New(cfg.StorageRoot, cfg.LogPattern, logger)
	aggregator := recording.NewAggregator(mcap.New(), logger)
	orch := orchestrator.New(store, root, aggregator, orchestrator.Options{
		MetadataFile: cfg.MetadataFile,
		SortKey:      cfg.SortKey,
		Columns:      cfg.Columns,
	}, logger)

	return &environment{cfg: cfg, store: store, root: root, orch: orch}, nil
}

func (e *environment) Close(ctx context.Context) {
	_ = e.store.Close(ctx)
}
