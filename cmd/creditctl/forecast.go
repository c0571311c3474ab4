package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"CrediTech/internal/domain/repository"
	"CrediTech/internal/service/bcb"
	icache "CrediTech/internal/service/cache"
	"CrediTech/internal/services/forecast"
	"CrediTech/internal/services/history"
	"CrediTech/internal/services/model"
)

func forecastCmd(g *globalFlags) *cobra.Command {
	var (
		category string
		days     int
		offline  bool
		epochs   int
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Load one category, train its model and print a forecast",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			cat, ok := cfg.Category(category)
			if !ok {
				return fmt.Errorf("unknown category %q", category)
			}
			l := g.logger()
			rng := g.rand(cfg)

			var source repository.SeriesSource
			if !offline {
				source = bcb.New(cfg.BCB.BaseURL, cfg.BCB.Timeout,
					bcb.WithRetries(cfg.BCB.Retries),
					bcb.WithCache(icache.NewTTLCache(), cfg.BCB.CacheTTL),
					bcb.WithLogger(l))
			}
			loader := history.NewLoader(source,
				history.NewGenerator(rng, cfg.Analytics.SyntheticDays, time.Now),
				history.NewStore(),
				history.LoaderConfig{
					PolicySeriesID: cfg.BCB.PolicySeriesID,
					PriceSeriesID:  cfg.BCB.PriceSeriesID,
					FetchTimeout:   cfg.BCB.Timeout,
					HistoryYears:   cfg.BCB.HistoryYears,
				},
				history.WithLoaderLogger(l))
			res := loader.Load(cmd.Context(), cat)

			t := cfg.Analytics.Training
			if epochs > 0 {
				t.Epochs = epochs
			}
			reg := model.NewRegistry(loader.Store(), model.TrainConfig{
				Epochs:          t.Epochs,
				BatchSize:       t.BatchSize,
				LearningRate:    t.LearningRate,
				ValidationSplit: t.ValidationSplit,
				Dropout:         t.Dropout,
			}, rng, l, nil)
			entry, err := reg.Train(cmd.Context(), cat.Key)
			if err != nil {
				return err
			}

			f, err := forecast.NewEngine(reg, rng, time.Now, nil).Predict(cat.Key, days)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Source   string           `json:"source"`
				Training model.TrainStats `json:"training"`
				Forecast interface{}      `json:"forecast"`
			}{string(res.Source), entry.Stats, f})
		},
	}
	cmd.Flags().StringVar(&category, "category", "veiculo-financiamento", "category key")
	cmd.Flags().IntVarP(&days, "days", "d", 7, "forecast horizon in days")
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the central bank API and synthesize the series")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "override training epochs")
	return cmd
}
