package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/speedtype/internal/config"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/stats"
)

const (
	defaultStatsLast   = 10
	defaultCurveWindow = 5
)

var (
	statsUser        string
	statsLast        int
	statsCurveWindow int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's typing history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVarP(&statsUser, "user", "u", "", "username (default: practice.username from config)")
	cmd.Flags().IntVar(&statsLast, "last", defaultStatsLast, "number of recent results to list")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for the WPM trend")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &statsUser, fileCfg.Practice.Username)
	username := strings.TrimSpace(statsUser)
	if username == "" {
		return fmt.Errorf("--user is required (or set practice.username in the config)")
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := openStore(fileCfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, model.StatsConfig{
		Username:    username,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return report.Render(cmd.OutOrStdout(), statsCurveWindow, stats.TrendWidth())
}
