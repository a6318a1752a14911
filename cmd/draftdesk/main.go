package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"draft-desk/internal/config"
	"draft-desk/internal/importer"
	"draft-desk/internal/logger"
	web "draft-desk/internal/server"
	"draft-desk/internal/service"
	"draft-desk/internal/store"
	"draft-desk/internal/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg     config.Config
	log     *zap.Logger
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "draftdesk",
	Short:         "draftdesk - draft, edit and publish content items",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		log, err = logger.New(cfg.LogLevel, cfg.LogDev)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// loadConfig layers flags that were set explicitly over .env and environment values.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	c, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(cmd, &c)
	return c, c.Validate()
}

// applyFlags copies explicitly set flags into c. Flag types are fixed by
// registerFlags, so the getters can't fail.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		c.Storage, _ = flags.GetString("storage")
	}
	if flags.Changed("data-file") {
		c.DataFile, _ = flags.GetString("data-file")
	}
	if flags.Changed("badger") {
		c.BadgerPath, _ = flags.GetString("badger")
	}
	if flags.Changed("redis") {
		c.RedisAddr, _ = flags.GetString("redis")
	}
	if flags.Changed("redis-key") {
		c.RedisKey, _ = flags.GetString("redis-key")
	}
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-dev") {
		c.LogDev, _ = flags.GetBool("log-dev")
	}
	if flags.Changed("enforce-image-limits") {
		c.EnforceImageLimits, _ = flags.GetBool("enforce-image-limits")
	}
	if flags.Changed("import-timeout") {
		c.ImportTimeout, _ = flags.GetDuration("import-timeout")
	}
	if flags.Changed("addr") {
		c.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("max-body-bytes") {
		c.MaxBodyBytes, _ = flags.GetInt64("max-body-bytes")
	}
}

func registerFlags(root, serve *cobra.Command) {
	def := config.Default()
	pf := root.PersistentFlags()
	pf.StringVar(&envFile, "env-file", "", "Path to a .env file (default .env)")
	pf.String("storage", def.Storage, "Storage backend: file, badger or redis")
	pf.String("data-file", def.DataFile, "Path to the JSON drafts file")
	pf.String("badger", def.BadgerPath, "Path to BadgerDB data directory")
	pf.String("redis", def.RedisAddr, "Address of Redis server")
	pf.String("redis-key", def.RedisKey, "Redis key holding the drafts collection")
	pf.String("log-level", def.LogLevel, "Log level")
	pf.Bool("log-dev", def.LogDev, "Human-readable development logs")
	pf.Bool("enforce-image-limits", def.EnforceImageLimits, "Check image type and size, not just count")
	pf.Duration("import-timeout", def.ImportTimeout, "Timeout for fetching imported articles")

	serve.Flags().String("addr", def.Addr, "HTTP listen address")
	serve.Flags().Int64("max-body-bytes", def.MaxBodyBytes, "Maximum request body size")
}

// app bundles what every subcommand needs.
type app struct {
	store    *store.CollectionStore
	drafts   *service.DraftService
	importer *importer.Importer
}

func openApp(ctx context.Context) (*app, error) {
	st, err := store.Open(ctx, cfg.StoreOptions(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}
	drafts := service.NewDraftService(st, validation.DefaultRules(),
		validation.Options{EnforceImagePayloads: cfg.EnforceImageLimits}, log)
	return &app{
		store:    st,
		drafts:   drafts,
		importer: importer.NewImporter(drafts, log, cfg.ImportTimeout),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Warn("Closing store failed", zap.Error(err))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if bm, ok := a.store.Medium().(*store.BadgerMedium); ok {
			go bm.CollectGarbage(ctx, 5*time.Minute, log)
		}

		srv := web.NewServer(a.drafts, a.importer, log, cfg.MaxBodyBytes)
		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start(cfg.Addr)
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			log.Info("Shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return err
		}
		log.Info("Goodbye!")
		return nil
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	registerFlags(rootCmd, serveCmd)

	rootCmd.AddCommand(serveCmd)
	addDraftCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
