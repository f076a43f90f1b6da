package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/chartrec/internal/adapters/fetch"
	"github.com/okian/chartrec/internal/adapters/repository"
	service "github.com/okian/chartrec/internal/app"
	"github.com/okian/chartrec/internal/config"
	"github.com/okian/chartrec/internal/domain/catalog"
	"github.com/okian/chartrec/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	dbPath     string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "chartrec",
		Short:        "Keep your best achievement rate on every chart",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML or TOML config file (overrides CHARTREC_CONFIG)")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "Path to the SQLite database (overrides CHARTREC_DB_PATH)")

	root.AddCommand(
		newServeCmd(c),
		newListCmd(c),
		newAddCmd(c),
		newRemoveCmd(c),
		newImportCmd(c),
		newFetchCmd(c),
		newSearchCmd(c),
	)
	return root
}

// setup loads configuration and initializes logging. Server logs go to
// stdout; every other command logs to stderr so its output stays clean.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}

	var w io.Writer = cmd.ErrOrStderr()
	if cmd.Name() == "serve" {
		w = cmd.OutOrStdout()
	}
	if err := logger.InitWithWriter(w, cfg.LogFormat); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// openService wires the catalog, store and fetcher from configuration and
// starts the service. Callers must Stop it.
func (c *cli) openService(ctx context.Context) (*service.Service, error) {
	cfg := c.cfg
	log := logger.Get()

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithDropUnplayed(cfg.DropUnplayed),
		service.WithSearchOptions(cfg.SearchOptions()),
		service.WithMaxImportBytes(int(cfg.MaxImportBytes)),
	}

	if cfg.CatalogPath != "" {
		cat, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		opts = append(opts, service.WithCatalog(cat))
	}

	if cfg.FetchURL != "" {
		opts = append(opts, service.WithFetcher(fetch.New(
			fetch.WithURL(cfg.FetchURL),
			fetch.WithTimeout(time.Duration(cfg.FetchTimeoutMS)*time.Millisecond),
			fetch.WithMaxBytes(cfg.MaxImportBytes),
			fetch.WithLogger(log.Named("fetch")),
		)))
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		p, err := repository.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		dbPath = p
	}
	store, err := repository.OpenSQLite(ctx, dbPath, repository.WithLogger(log.Named("repository")))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	opts = append(opts, service.WithStore(store))

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("start service: %w", err)
	}
	return svc, nil
}
