package main

import (
	"fmt"
	"os"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/mendel"
	"github.com/carbocation/pedcall/pipeline"
	"github.com/carbocation/pedcall/sitestore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose   bool
	storePath string
	maxSites  int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the samples and first sites of a site store",
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
	RunE: runInspect,
}

func init() {
	rootCmd.Flags().StringVar(&storePath, "store", "sites.db", "Filename of the site store to inspect")
	rootCmd.Flags().IntVar(&maxSites, "sites", 10, "Number of sites to print")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	local, cleanup, err := sitestore.Fetch(cmd.Context(), storePath)
	if err != nil {
		return err
	}
	defer cleanup()

	store, err := sitestore.Open(local)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("Opened store",
		zap.String("filename", store.Metadata.Filename),
		zap.Stringer("created", store.Metadata.IndexCreationTime))

	samples, err := sitestore.ReadSamples(store)
	if err != nil {
		logger.Warn("Could not read samples", zap.Error(err))
	} else {
		i := 0
		for _, sample := range samples {
			fmt.Println(i, sample.SampleID, sample.Sex, sample.Diseased)
			i++

			if i > 10 {
				break
			}
		}
		if i > 0 {
			logger.Info("Saw up to", zap.String("sample", samples[i-1].SampleID))
		}

		logger.Info("Iterated over samples", zap.Int("samples", i))
	}

	sr := store.NewSiteReader()
	defer sr.Close()
	for i := 1; i <= maxSites; i++ {
		site := sr.Read()
		if site == nil {
			break
		}

		fmt.Printf("%d) %s %s:%d alleles=%d\n", i, site.ID, site.Chromosome, site.Position, site.NAlleles)
		code := mendel.NewDiploidCode(int(site.NAlleles))
		for j, sl := range site.Likelihoods {
			switch {
			case sl.Ploidy == mendel.None:
				fmt.Printf("\t%d) %s\n", j, "not present")
			case sl.Missing:
				fmt.Printf("\t%d) %s\n", j, "is missing")
			default:
				m := pedcall.NewLikelihoodModel(sl.Ploidy, 0, sl.LogLikelihoods)
				h, odds := m.BestSingleHypothesis()
				fmt.Printf("\t%d) %s %.3f\n", j, pipeline.Genotype(code, sl.Ploidy, h), odds)
			}
		}
	}

	if sr.Error() != nil {
		logger.Error("Site reader failed", zap.Error(sr.Error()))
		return sr.Error()
	}
	return nil
}
