package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"anxiety-service/internal/config"
	"anxiety-service/internal/server"
)

const version = "1.0.0"

var (
	flagConfig   string
	flagListen   string
	flagModelDir string
	flagRedis    string
	flagWatch    bool
)

var rootCmd = &cobra.Command{
	Use:   "anxiety-service",
	Short: "Behavioral anxiety detection backend for IDE telemetry",
	Long: `anxiety-service turns keystroke and compile telemetry from an IDE
session into an anxiety estimate and an actionable hint, served over a
local HTTP/JSON channel.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("anxiety-service %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	rootCmd.Flags().StringVar(&flagListen, "listen", "", "local address to listen on")
	rootCmd.Flags().StringVar(&flagModelDir, "model-dir", "", "model directory to load at startup")
	rootCmd.Flags().StringVar(&flagRedis, "redis", "", "redis address for the recent-prediction cache")
	rootCmd.Flags().BoolVar(&flagWatch, "watch", false, "reload the model when its directory changes")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.ListenAddr = flagListen
	}
	if flagModelDir != "" {
		cfg.ModelDir = flagModelDir
	}
	if flagRedis != "" {
		cfg.RedisAddr = flagRedis
	}
	if flagWatch {
		cfg.WatchModelDir = true
	}

	logger, err := cfg.Logging.BuildLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	// When a model directory is configured, load it up front so the IDE
	// does not need to send an explicit initialize request. Loading
	// fails closed.
	if cfg.ModelDir != "" {
		if err := srv.Initialize(cfg.ModelDir); err != nil {
			return fmt.Errorf("loading model from %s: %w", cfg.ModelDir, err)
		}
	} else {
		logger.Info("no model directory configured, waiting for initialize request")
	}

	if err := srv.Run(); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
