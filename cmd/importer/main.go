package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grocerlist/usdaimport/config"
	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/grocerlist/usdaimport/internal/infrastructure/lookup"
	"github.com/grocerlist/usdaimport/internal/infrastructure/schema"
	"github.com/grocerlist/usdaimport/internal/infrastructure/storage"
	"github.com/grocerlist/usdaimport/internal/infrastructure/usda"
	"github.com/grocerlist/usdaimport/internal/logging"
	"github.com/grocerlist/usdaimport/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Import USDA FoodData Central into the grocery catalogue",
	Long: `Pages through the USDA FoodData Central search API, filters, classifies,
validates and deduplicates every record, and writes the catalogue snapshot.

The API key is read from FDC_API_KEY or GROCERLIST_USDA_API_KEY, optionally
via .env.local or .env.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runImport,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	// The credential check happens here, before any network I/O
	cfg, err := config.LoadImporter()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Server.Environment, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tables := (&lookup.Loader{
		CategoryMapPath: cfg.Paths.CategoryMap,
		SeasonMapPath:   cfg.Paths.SeasonMap,
		Logger:          logger,
	}).Load()

	validator, err := schema.NewValidatorFromFile(cfg.Paths.Schema)
	if err != nil {
		return err
	}

	client := usda.NewClient(usda.ClientConfig{
		APIKey:    cfg.USDA.APIKey,
		BaseURL:   cfg.USDA.BaseURL,
		PageSize:  cfg.USDA.PageSize,
		DataTypes: cfg.USDA.DataTypes,
		PageDelay: cfg.USDA.PageDelay,
		Timeout:   cfg.USDA.Timeout,
	}, logger)
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}

	store := storage.NewFileStore(cfg.Paths.Output)

	pipeline := usecase.NewImportPipeline(
		client,
		usecase.NewClassifier(tables),
		validator,
		store,
		usecase.ImportConfig{
			MaxPages:               cfg.USDA.MaxPages,
			MaxConsecutiveFailures: cfg.USDA.MaxConsecutiveFailures,
		},
		logger,
	)

	if cfg.Mirror.Driver != "" {
		mirror, err := storage.OpenSQLMirror(cmd.Context(), cfg.Mirror.Driver, cfg.Mirror.DSN)
		if err != nil {
			// The JSON snapshot is the source of truth; run without the mirror
			logger.Error("SQL mirror unavailable", zap.String("driver", cfg.Mirror.Driver), zap.Error(err))
		} else {
			defer mirror.Close()
			pipeline.WithMirror(mirror)
		}
	}

	summary, err := pipeline.Run(cmd.Context())
	if summary != nil {
		summary.Print(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nSnapshot written to %s\n", store.Path())
	return nil
}

// compile-time checks that the infrastructure satisfies the pipeline ports
var (
	_ domain.FoodSource     = (*usda.Client)(nil)
	_ domain.ItemValidator  = (*schema.Validator)(nil)
	_ domain.SnapshotStore  = (*storage.FileStore)(nil)
	_ domain.SnapshotMirror = (*storage.SQLMirror)(nil)
)
