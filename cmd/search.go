package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

var searchMetric string

var searchCmd = &cobra.Command{
	Use:   "search <province>",
	Short: "Search a province and print the ranked bundle as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		metric, err := model.ParseMetric(searchMetric)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		bundle, err := env.runner.Search(cmd.Context(), args[0], metric)
		if err != nil {
			return err
		}

		zap.L().Info("search complete",
			zap.String("province", bundle.Province),
			zap.Int("total", bundle.TotalCount),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundle); err != nil {
			return eris.Wrap(err, "encode bundle")
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchMetric, "metric", "aqi", "ranking metric: aqi, pm25 or pm10")
	rootCmd.AddCommand(searchCmd)
}
