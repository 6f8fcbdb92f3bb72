// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pixel8 CLI. It uploads a photo
// to the analysis service and renders the generated article in the
// terminal, as Markdown, HTML, JSON or YAML, or as a PDF.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pixel8/internal/logging"
	"github.com/pdiddy/pixel8/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appConfig is loaded once in PersistentPreRunE.
	appConfig types.Config

	// logger is the structured debug log; never nil after startup.
	logger = logging.Nop()
)

// rootCmd is the base command for the pixel8 CLI.
var rootCmd = &cobra.Command{
	Use:   "pixel8",
	Short: "Turn a photo into a news article",
	Long: `pixel8 uploads a JPG or PNG photo to the Pixel8 analysis service, which
recognizes people and objects in it and writes a short news article about
the scene. The article can be printed, saved as Markdown or HTML, or
exported to Article.pdf.

Use "pixel8 upload <image>" for a one-shot run or "pixel8 tui" for the
interactive interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		appConfig = cfg

		l, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("opening log: %w", err)
		}
		logger = l
		logger.Debug("starting", "command", cmd.Name(), "version", version)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Close()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pixel8.yaml or ~/.config/pixel8/pixel8.yaml)")
	rootCmd.PersistentFlags().String("log-dir", "", "write the debug log to DIR/debug.log instead of stderr")
	rootCmd.PersistentFlags().String("log-level", "", "log level: DEBUG, INFO, WARN or ERROR (default WARN)")

	viper.BindPFlag("logging.dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pixel8")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pixel8"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
