package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tsanders/sonar-android-lint/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	configPath string
	baseDir    string
	verbose    bool
	properties []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sonar-android-lint",
		Short: "Import Android Lint reports as SonarQube issues",
		Long: `sonar-android-lint translates the XML report written by Android Lint into
SonarQube generic external issues, one issue per reported location, under the
android-lint rule repository.

It also manages the android-lint quality profile (lint.xml import/export) and can
ask an AI provider for remediation hints on the imported findings.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .sonar-android-lint.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseDir, "base-dir", "", "Project root directory (default from config, then current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringArrayVarP(&properties, "define", "D", nil, "Analysis property as key=value (repeatable)")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sonar-android-lint %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger installs a text handler on stderr as the default slog logger
func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig loads the config file and applies command line overrides
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if err := cfg.ApplyProperties(properties); err != nil {
		return nil, err
	}
	if baseDir != "" {
		cfg.Paths.BaseDir = baseDir
	}
	if cfg.Verbose && !verbose {
		setupLogger(true)
	}
	return cfg, nil
}
