package main

import (
	"github.com/spf13/cobra"

	"CrediTech/internal/services/cluster"
)

func clustersCmd(g *globalFlags) *cobra.Command {
	var k, population int
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Segment a synthetic borrower population and print the clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config()
			if err != nil {
				return err
			}
			cc := cfg.Analytics.Clustering
			if k > 0 {
				cc.K = k
			}
			if population > 0 {
				cc.Population = population
			}
			c := cluster.NewClusterer(cluster.Config{K: cc.K, Population: cc.Population, MaxIterations: cc.MaxIterations}, g.rand(cfg), g.logger())
			set, err := c.Build(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), set)
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of clusters")
	cmd.Flags().IntVarP(&population, "population", "n", 0, "synthetic population size")
	return cmd
}
