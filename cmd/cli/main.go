package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ddp_extract/internal/extract"
	"ddp_extract/internal/utils"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	baseName := filepath.Base(os.Args[0])

	rootCmd := &cobra.Command{
		Use:   baseName + " -f <export.zip> [-f <export.zip> ...] -o <output_folder> [--format json|yaml] [-gc auto|include|exclude] [-t personal_info,likes]",
		Short: "Extract pseudonymized donation tables from Instagram data download packages",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			viper.SetEnvPrefix("ddp_extract")
			viper.AutomaticEnv()
			if configPath := viper.GetString("config"); configPath != "" {
				viper.SetConfigFile(configPath)
				if readErr := viper.ReadInConfig(); readErr != nil {
					return fmt.Errorf("read config %q: %w", configPath, readErr)
				}
			}
			cfg := extract.ConfigFromViper(viper.GetViper())
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return extract.Run(extract.ConfigFromViper(viper.GetViper()))
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringSliceP("file", "f", nil, "Path to an export ZIP archive; repeat -f for several (required)")
	rootCmd.Flags().StringP("output", "o", "", "Output folder for the per-archive reports (required)")
	rootCmd.Flags().String("format", extract.FormatJSON, "Report format: json or yaml")
	rootCmd.Flags().String("groups", "auto",
		"Group conversations: auto keeps them for JSON exports and drops them for HTML exports; include or exclude forces either")
	rootCmd.Flags().StringSliceP("table", "t", nil,
		"Only keep these tables (comma-separated or repeated flag): personal_info, message_summary, likes, topics, interests")
	rootCmd.Flags().String("catalog", "", "YAML file replacing the embedded export catalog")
	rootCmd.Flags().String("variants", "", "YAML file replacing the embedded key-variant table")
	rootCmd.Flags().String("generator", "", "HTML export generator version; empty selects the newest known")
	rootCmd.Flags().Int("workers", 0, "Archives analyzed in parallel; 0 uses one per CPU")
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.Flags().Bool("tracking", false, "Include the diagnostic events in every report")
	rootCmd.Flags().String("config", "", "Optional config file (yaml, json or toml) with the same keys as the flags")

	for _, name := range []string{"file", "output", "format", "groups", "table", "catalog", "variants", "generator", "workers", "log-level", "tracking", "config"} {
		_ = viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Support -gc shorthand → --groups
	rootCmd.SetArgs(utils.NormalizeGCShorthand(os.Args[1:]))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
