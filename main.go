package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"engagement-insights/config"
	"engagement-insights/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger

	sourceFlag   string
	analysisFlag string
	portFlag     string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "engagement",
	Short: "Post engagement insights for carousel, reels and static posts",
	Long: `Asks for a post type, fetches its engagement records and renders either
locally computed averages or the insight returned by a remote workflow.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if sourceFlag != "" {
			cfg.EngagementSource = sourceFlag
		}
		if analysisFlag != "" {
			cfg.AnalysisMode = analysisFlag
		}
		if portFlag != "" {
			cfg.HTTPPort = portFlag
		}
		if logLevelFlag != "" {
			cfg.LogLevel = logLevelFlag
		}
		logger = utils.NewLoggerTo(os.Stderr, cfg.LogLevel)
		gin.SetMode(cfg.GinMode)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "Engagement source: mock, csv or postgres (env ENGAGEMENT_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&analysisFlag, "analysis", "", "Analysis mode: local or remote (env ANALYSIS_MODE)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (env LOG_LEVEL)")

	runCmd.Flags().IntVarP(&timesFlag, "times", "n", 0, "Number of clicks to serve (0 = until end of input)")
	serveCmd.Flags().StringVarP(&portFlag, "port", "p", "", "HTTP port (env HTTP_PORT)")
	flowstubCmd.Flags().StringVarP(&portFlag, "port", "p", "", "HTTP port (env HTTP_PORT)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(flowstubCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
