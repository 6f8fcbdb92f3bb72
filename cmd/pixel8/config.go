// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pixel8/pkg/types"
)

// bindEnv maps nested keys to PIXEL8_-prefixed variables, e.g.
// upload.base_url to PIXEL8_UPLOAD_BASE_URL.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("PIXEL8")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// export.user_agent has no default so that it follows
	// upload.user_agent when unset.
	_ = v.BindEnv("export.user_agent")
}

// registerDefaults makes every config key known to v so environment
// variables such as PIXEL8_UPLOAD_BASE_URL are seen by Unmarshal.
func registerDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("upload.base_url", d.Upload.BaseURL)
	v.SetDefault("upload.timeout", d.Upload.Timeout)
	v.SetDefault("upload.user_agent", d.Upload.UserAgent)
	v.SetDefault("upload.max_file_size_bytes", d.Upload.MaxFileSizeBytes)
	v.SetDefault("upload.progress_cap", d.Upload.ProgressCap)
	v.SetDefault("upload.processing_tick", d.Upload.ProcessingTick)
	v.SetDefault("upload.processing_step", d.Upload.ProcessingStep)
	v.SetDefault("export.output_dir", d.Export.OutputDir)
	v.SetDefault("export.file_name", d.Export.FileName)
	v.SetDefault("export.attribution", d.Export.Attribution)
	v.SetDefault("export.image_scale", d.Export.ImageScale)
	v.SetDefault("logging.dir", d.Logging.Dir)
	v.SetDefault("logging.level", d.Logging.Level)
}

// loadConfig reads the merged file, environment and bound-flag settings
// into a types.Config with defaults applied.
func loadConfig(v *viper.Viper) (types.Config, error) {
	registerDefaults(v)

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// applyUploadFlags overrides cfg with the --endpoint and --timeout flags
// when they were set on cmd.
func applyUploadFlags(cmd *cobra.Command, cfg *types.Config) {
	if f := cmd.Flags().Lookup("endpoint"); f != nil && f.Changed {
		cfg.Upload.BaseURL = f.Value.String()
	}
	if cmd.Flags().Changed("timeout") {
		if d, err := cmd.Flags().GetDuration("timeout"); err == nil && d > 0 {
			cfg.Upload.Timeout = d
		}
	}
	if cmd.Flags().Changed("output-dir") {
		if dir, err := cmd.Flags().GetString("output-dir"); err == nil && dir != "" {
			cfg.Export.OutputDir = dir
		}
	}
}
