package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/longball/internal/config"
	applogger "github.com/yourusername/longball/internal/logger"
	"github.com/yourusername/longball/internal/metrics"
	"github.com/yourusername/longball/internal/pipeline"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	eventPath  string
	todayPath  string
	outputDir  string
	topN       int
	logger     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().StringVar(&eventPath, "event", "", "Override event table source (file or URL)")
	runCmd.Flags().StringVar(&todayPath, "today", "", "Override today table source (file or URL)")
	runCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Override output directory")
	runCmd.Flags().IntVarP(&topN, "top-n", "n", 0, "Override leaderboard size")
}

var rootCmd = &cobra.Command{
	Use:   "predict",
	Short: "Home run prediction pipeline",
	Long:  `Train the home run ensemble on historical event data and score today's players.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = applogger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one prediction run",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPipeline(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("predict %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	rootCmd.AddCommand(runCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	applyOverrides()
	return config.Validate(cfg)
}

// applyOverrides lets CLI flags win over file and environment values.
func applyOverrides() {
	if eventPath != "" {
		cfg.Data.EventPath = eventPath
	}
	if todayPath != "" {
		cfg.Data.TodayPath = todayPath
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if topN > 0 {
		cfg.Output.TopN = topN
	}
}

func runPipeline(ctx context.Context) error {
	if cfg.Metrics.Enabled {
		startMetricsServer()
	}

	p := pipeline.New(cfg, logger)
	result, err := p.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("Pipeline run failed")
		return err
	}

	if err := pipeline.Export(result, cfg.Output.Dir); err != nil {
		logger.WithError(err).Error("Failed to write run artifacts")
		return err
	}

	printSummary(result)
	return nil
}

func startMetricsServer() {
	metrics.InitRegistry()
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Warn("Metrics server stopped")
		}
	}()
	logger.WithField("addr", addr).Info("Metrics server listening")
}

func printSummary(result *pipeline.Result) {
	fmt.Printf("Run %s complete\n", result.RunID)
	fmt.Printf("  Features: %d retained, %d dropped\n",
		len(result.Reconciliation.Retained), len(result.Reconciliation.Dropped))
	trained := 0
	for _, fr := range result.FitResults {
		if fr.OK() {
			trained++
		}
	}
	fmt.Printf("  Models: %d/%d trained\n", trained, len(result.FitResults))
	fmt.Printf("  Validation AUC %.4f, log loss %.4f\n", result.ValidationAUC, result.ValidationLoss)
	if result.HasGap {
		fmt.Printf("  Confidence gap after top %d: %.4f\n", len(result.TopN), result.ConfidenceGap)
	}

	fmt.Printf("\nTop %d players:\n", len(result.TopN))
	for _, e := range result.TopN {
		fmt.Printf("  %2d. %-24s %.4f (x%.3f -> %.4f)\n",
			e.Rank, e.PlayerName, e.Probability, e.Multiplier, e.Final)
	}
}
