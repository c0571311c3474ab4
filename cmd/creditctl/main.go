package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"CrediTech/pkg/config"
	applogger "CrediTech/pkg/logger"
	"CrediTech/pkg/util"
)

var Version = "dev"

type globalFlags struct {
	configPath string
	seed       int64
	verbose    bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "creditctl",
		Short:         "Offline access to the CrediTech analytics engines",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (defaults apply when empty)")
	root.PersistentFlags().Int64Var(&g.seed, "seed", 0, "random seed; overrides analytics.seed")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(assessCmd(g))
	root.AddCommand(clustersCmd(g))
	root.AddCommand(forecastCmd(g))
	return root
}

func (g *globalFlags) config() (*config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		if cfg, err = config.LoadWithEnv(g.configPath); err != nil {
			return nil, err
		}
	}
	if g.seed != 0 {
		cfg.Analytics.Seed = g.seed
	}
	return cfg, nil
}

func (g *globalFlags) rand(cfg *config.Config) *util.Rand {
	return util.NewRand(cfg.Analytics.Seed)
}

func (g *globalFlags) logger() *applogger.Logger {
	if !g.verbose {
		return applogger.Nop()
	}
	l, err := applogger.New(&applogger.Config{Level: "debug", Format: "console", Output: "stderr"})
	if err != nil {
		return applogger.Nop()
	}
	return l
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
