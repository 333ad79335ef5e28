package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

var prefetchCmd = &cobra.Command{
	Use:   "prefetch",
	Short: "Warm today's cache for the configured provinces",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := cfg.Prefetch.Concurrency
		if concurrency <= 0 {
			concurrency = 1
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(concurrency)

		for _, province := range cfg.Prefetch.Provinces {
			g.Go(func() error {
				bundle, err := env.runner.Search(ctx, province, model.MetricAQI)
				if err != nil {
					// One bad province must not abort the sweep.
					zap.L().Error("prefetch: province failed",
						zap.String("province", province),
						zap.Error(err),
					)
					return nil
				}
				zap.L().Info("prefetch: province cached",
					zap.String("province", bundle.Province),
					zap.Int("total", bundle.TotalCount),
				)
				return nil
			})
		}

		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(prefetchCmd)
}
