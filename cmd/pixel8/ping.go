// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pixel8/internal/upload"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the analysis service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		applyUploadFlags(cmd, &cfg)

		client := &http.Client{Timeout: cfg.Upload.Timeout}
		msg, err := upload.New(client, cfg.Upload, logger).Ping(cmd.Context())
		if err != nil {
			return fmt.Errorf("pinging %s: %w", cfg.Upload.BaseURL, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Upload.BaseURL, msg)
		return nil
	},
}

func init() {
	pingCmd.Flags().String("endpoint", "", "analysis service base URL")
	pingCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 5m)")

	rootCmd.AddCommand(pingCmd)
}
