package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carbocation/pedcall/sitestore"
	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose         bool
	samplesPath     string
	sitesPath       string
	storePath       string
	compressionName string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "indexing",
	Short: "Import a tab-separated likelihood file into a new site store",
	Long: `Reads a samples file (id, sex, diseased) and a sites file whose header is
site, chromosome, position, alleles followed by one column per sample, and
writes them to a new SQLite site store. Sites files ending in .gz or .zst are
decompressed on the fly.`,
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
	RunE: runImport,
}

func init() {
	rootCmd.Flags().StringVar(&samplesPath, "samples", "", "Filename of the samples file")
	rootCmd.Flags().StringVar(&sitesPath, "sites", "", "Filename of the sites file to import")
	rootCmd.Flags().StringVar(&storePath, "store", "", "Filename of the site store to create (default: sites file + .db)")
	rootCmd.Flags().StringVar(&compressionName, "compression", sitestore.CompressionZStandard.String(), "Likelihood block compression: none, zlib or zstd")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.MarkFlagRequired("samples")
	rootCmd.MarkFlagRequired("sites")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	if storePath == "" {
		storePath = sitesPath + ".db"
	}
	for _, p := range []*string{&samplesPath, &sitesPath, &storePath} {
		expanded, err := sitestore.ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}

	compression, err := sitestore.ParseCompression(compressionName)
	if err != nil {
		return pfx.Err(err)
	}

	sf, err := os.Open(samplesPath)
	if err != nil {
		return pfx.Err(err)
	}
	defer sf.Close()
	samples, err := sitestore.ParseSamples(sf)
	if err != nil {
		return err
	}
	logger.Info("Read samples", zap.Int("samples", len(samples)), zap.String("path", samplesPath))

	in, err := openSites(sitesPath)
	if err != nil {
		return err
	}
	defer in.Close()

	store, err := sitestore.Create(storePath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Debug("Created store", zap.String("path", storePath), zap.String("driver", sitestore.WhichSQLiteDriver()))

	n, err := sitestore.Import(store, in, samples, compression)
	if err != nil {
		return err
	}

	logger.Info("Imported sites",
		zap.Int("sites", n),
		zap.String("store", storePath),
		zap.Stringer("compression", compression))
	return nil
}

type sitesFile struct {
	io.Reader
	closers []func() error
}

func (f *sitesFile) Close() error {
	var first error
	for _, c := range f.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openSites(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	out := &sitesFile{Reader: f, closers: []func() error{f.Close}}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, pfx.Err(err)
		}
		out.Reader = gz
		out.closers = append([]func() error{gz.Close}, out.closers...)
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, pfx.Err(err)
		}
		out.Reader = zr
		out.closers = append([]func() error{func() error { zr.Close(); return nil }}, out.closers...)
	}

	return out, nil
}
