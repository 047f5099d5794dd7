package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carbocation/pedcall"
	"github.com/carbocation/pedcall/sitestore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SiteSource yields sites until Read returns nil; Error then reports why.
// *sitestore.SiteReader is a SiteSource.
type SiteSource interface {
	Read() *sitestore.Site
	Error() error
}

// Run calls every site of src with cfg.Workers workers and hands the results
// to write one at a time, in the order src produced the sites. The first
// error from src, a site or write stops the run.
func Run(ctx context.Context, logger *zap.Logger, cfg *Config, samples []sitestore.Sample, src SiteSource, write func(*Result) error) error {
	type job struct {
		seq  int
		site *sitestore.Site
	}
	type outcome struct {
		seq    int
		result *Result
	}

	start := time.Now()
	peds := &pedigrees{cfg: cfg, samples: samples}
	jobs := make(chan job)
	outcomes := make(chan outcome)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for seq := 0; ; seq++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			site := src.Read()
			if site == nil {
				return src.Error()
			}
			select {
			case jobs <- job{seq: seq, site: site}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	logger.Info("Launching workers", zap.Int("workers", cfg.Workers))
	var workers sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for j := range jobs {
				ped, err := peds.get(j.site.Chromosome)
				if err != nil {
					return fmt.Errorf("chromosome %s: %w", j.site.Chromosome, err)
				}
				res, err := CallSite(cfg, ped, j.site)
				if err != nil {
					return err
				}
				if cfg.Disease && res.Disease == nil {
					logger.Warn("Skipped disease model",
						zap.String("site", j.site.ID),
						zap.Uint16("alleles", j.site.NAlleles),
						zap.Int("max_alleles", pedcall.MaxDiseaseAlleles))
				}
				select {
				case outcomes <- outcome{seq: j.seq, result: res}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		workers.Wait()
		close(outcomes)
		return nil
	})

	written := 0
	g.Go(func() error {
		// Results arrive in any order; hold them until their turn.
		pending := make(map[int]*Result)
		for o := range outcomes {
			pending[o.seq] = o.result
			for {
				res, ok := pending[written]
				if !ok {
					break
				}
				delete(pending, written)
				if err := write(res); err != nil {
					return err
				}
				logger.Debug("Called site",
					zap.String("site", res.Site.ID),
					zap.String("chromosome", res.Site.Chromosome),
					zap.Uint32("position", res.Site.Position),
					zap.Float64("non_identity", res.NonIdentity))
				written++
			}
		}
		return nil
	})

	err := g.Wait()
	logger.Info("Finished calling sites",
		zap.Int("sites", written),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return err
}
