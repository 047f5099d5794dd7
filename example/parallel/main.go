package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carbocation/pedcall/pipeline"
	"github.com/carbocation/pedcall/sitestore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	storePath  string
	configPath string
	workers    int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "parallel",
	Short: "Call every site of a site store for one family",
	Long: `Calls the family described by --config at every site of --store, using one
worker per CPU unless the config or --workers says otherwise, and writes one
tab-separated line per site to stdout in store order. The store may be a
gs://bucket/object path.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCalls,
}

func init() {
	rootCmd.Flags().StringVar(&storePath, "store", "", "Filename of the site store to process")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Filename of the YAML run config")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Number of workers (overrides the config when positive)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.MarkFlagRequired("store")
	rootCmd.MarkFlagRequired("config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCalls(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := sitestore.ExpandPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	local, cleanup, err := sitestore.Fetch(ctx, storePath)
	if err != nil {
		return err
	}
	defer cleanup()
	logger.Debug("Opening store", zap.String("path", local), zap.String("driver", sitestore.WhichSQLiteDriver()))

	store, err := sitestore.Open(local)
	if err != nil {
		return err
	}
	defer store.Close()

	samples, err := sitestore.ReadSamples(store)
	if err != nil {
		return err
	}
	n, err := store.Count()
	if err != nil {
		return err
	}
	logger.Info("Opened store",
		zap.String("filename", store.Metadata.Filename),
		zap.Stringer("created", store.Metadata.IndexCreationTime),
		zap.Int("samples", len(samples)),
		zap.Int("sites", n))

	// Column names do not depend on the chromosome.
	ped, err := pipeline.BuildFamily(cfg, samples, "1")
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	if _, err := fmt.Fprintln(w, pipeline.Header(cfg, ped)); err != nil {
		return err
	}

	sr := store.NewSiteReader()
	defer sr.Close()

	return pipeline.Run(ctx, logger, cfg, samples, sr, func(r *pipeline.Result) error {
		_, err := fmt.Fprintln(w, r.Format())
		return err
	})
}
