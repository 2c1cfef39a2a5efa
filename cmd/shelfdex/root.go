package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/app"
	"github.com/kailas-cloud/shelfdex/internal/config"
	logpkg "github.com/kailas-cloud/shelfdex/internal/logger"
	chiTransport "github.com/kailas-cloud/shelfdex/internal/transport/chi"
	"github.com/kailas-cloud/shelfdex/internal/version"
)

// services is what the one-shot commands need.
type services struct {
	documents chiTransport.DocumentService
	search    chiTransport.SearchService
	bulk      chiTransport.BulkLoader
	close     func()
}

// opener builds services from the resolved configuration.
type opener func(ctx context.Context, cfg config.Config, logger *zap.Logger) (*services, error)

func openServices(ctx context.Context, cfg config.Config, logger *zap.Logger) (*services, error) {
	a, err := app.Build(ctx, cfg, nil, logger)
	if err != nil {
		return nil, err
	}
	return &services{documents: a.Documents, search: a.Search, bulk: a.Bulk, close: a.Close}, nil
}

// rootOptions carries the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	env        string
	logLevel   string
	open       opener
}

// envName returns --env, falling back to $ENV and then "local".
func (o *rootOptions) envName() string {
	if o.env != "" {
		return o.env
	}
	return config.GetEnv()
}

// loadConfig reads --config when set, otherwise config/<env>.yaml.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load(o.envName())
}

// withServices loads config, opens the services, runs fn and closes them.
func (o *rootOptions) withServices(cmd *cobra.Command, fn func(*services) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	level := o.logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logpkg.NewCLI(level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, err := o.open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	if svc.close != nil {
		defer svc.close()
	}
	return fn(svc)
}

func newRootCmd(open opener) *cobra.Command {
	opts := &rootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "shelfdex",
		Short: "Embedding-augmented book index over Redis",
		Long: `shelfdex stores book documents in a Redis Query Engine index, embeds their
text with an OpenAI-compatible or langchaingo provider, and serves lexical and
vector search.

Examples:
  shelfdex serve                          # HTTP API on :8080
  shelfdex load books.json                # bulk load a JSON array
  shelfdex search title dune              # lexical match on one field
  shelfdex knn --query "desert planet"    # vector search by text`,
		Version:      version.String(),
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", "", "environment name (default $ENV or local)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newLoadCmd(opts),
		newCreateCmd(opts),
		newGetCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newListCmd(opts),
		newSearchCmd(opts),
		newKNNCmd(opts),
	)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
