// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pixel8/internal/export"
	"github.com/pdiddy/pixel8/internal/flow"
	"github.com/pdiddy/pixel8/internal/tui"
	"github.com/pdiddy/pixel8/internal/upload"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal interface",
	Long: `Tui opens a full-screen interface: type the path of a photo, accept the
consent notice and start the upload. The generated article opens in a
scrollable view where "d" saves Article.pdf and "u" uploads another photo.

Logs go to stderr by default, which corrupts the display; set --log-dir
when debugging.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().String("endpoint", "", "analysis service base URL")
	tuiCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 5m)")
	tuiCmd.Flags().String("output-dir", "", "directory for Article.pdf (default .)")

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	applyUploadFlags(cmd, &cfg)

	client := &http.Client{Timeout: cfg.Upload.Timeout}
	landing := flow.NewLanding(upload.New(client, cfg.Upload, logger), cfg.Upload, logger)
	art := flow.NewArticle(cfg.Upload.MaxFileSizeBytes)
	exporter := export.New(cfg.Export, client, nil, logger)

	m := tui.NewModel(cmd.Context(), landing, art, exporter, logger)
	return tui.Run(cmd.Context(), m)
}
