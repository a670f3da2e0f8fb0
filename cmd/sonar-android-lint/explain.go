package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tsanders/sonar-android-lint/pkg/config"
	"github.com/tsanders/sonar-android-lint/pkg/explain"
	"github.com/tsanders/sonar-android-lint/pkg/prompt"
	"github.com/tsanders/sonar-android-lint/pkg/provider"
	"github.com/tsanders/sonar-android-lint/pkg/provider/claude"
	"github.com/tsanders/sonar-android-lint/pkg/provider/openai"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
)

var (
	providerName   string
	model          string
	maxCost        float64
	maxRules       int
	maxLocations   int
	explainOutput  string
	promptTemplate string
)

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Import the Android Lint report and ask an AI provider for remediation hints",
		Long: `Runs the same import as "analyze", groups the resulting findings by rule and
asks an AI provider for one remediation hint per rule. Hints are written as Markdown.

Providers:
  claude     Anthropic Claude (ANTHROPIC_API_KEY)
  openai     OpenAI (OPENAI_API_KEY)
  groq, together, openrouter, ollama, lmstudio
             OpenAI-compatible endpoints (OPENAI_API_KEY, not needed for local servers)

Examples:
  sonar-android-lint explain --max-cost 0.50
  sonar-android-lint explain --provider ollama --max-rules 5`,
		RunE: runExplain,
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "AI provider (default from config: claude)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (provider-specific default if omitted)")
	cmd.Flags().Float64Var(&maxCost, "max-cost", 0, "Maximum cost in USD (0 = config value or no limit)")
	cmd.Flags().IntVar(&maxRules, "max-rules", 0, "Maximum number of rules to explain (0 = config value or no limit)")
	cmd.Flags().IntVar(&maxLocations, "max-locations", explain.DefaultMaxLocations, "Locations sent to the provider per rule")
	cmd.Flags().StringVar(&explainOutput, "explain-output", "", "Markdown output file (default from config)")
	cmd.Flags().StringVar(&promptTemplate, "prompt-template", "", "Custom prompt template file")

	return cmd
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if providerName != "" {
		cfg.Provider.Name = providerName
	}
	if model != "" {
		cfg.Provider.Model = model
	}
	if maxCost > 0 {
		cfg.Explain.MaxCost = maxCost
	}
	if maxRules > 0 {
		cfg.Explain.MaxRules = maxRules
	}
	if explainOutput != "" {
		cfg.Explain.Output = explainOutput
	}

	ux.PrintHeader("sonar-android-lint explain")

	p, err := createProvider(cfg.Provider, promptTemplate)
	if err != nil {
		ux.PrintError("%v", err)
		return err
	}
	ux.PrintInfo("Provider: %s", p.Name())

	run, err := runImport(cfg, &ux.ConsoleProgressWriter{})
	if err != nil {
		ux.PrintError("%v", err)
		return err
	}
	printImportSummary(run)

	findings := run.result.Findings()
	if len(findings) == 0 {
		ux.PrintInfo("No findings to explain")
		return nil
	}

	explainer, err := explain.New(explain.Config{
		Provider:     p,
		Repository:   run.repo,
		MaxCost:      cfg.Explain.MaxCost,
		MaxRules:     cfg.Explain.MaxRules,
		MaxLocations: maxLocations,
		Progress:     &ux.ConsoleProgressWriter{},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := explainer.Run(ctx, findings)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		ux.PrintWarning("Explain run interrupted: %v", err)
	}

	out := cfg.Explain.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(run.baseDir, out)
	}
	if err := explain.WriteFile(out, result); err != nil {
		return err
	}

	ux.PrintSection("Hints")
	ux.PrintSummaryTable([][]string{
		{"Explained", ux.Success(fmt.Sprintf("%d", result.Explained))},
		{"Failed", ux.Error(fmt.Sprintf("%d", result.Failed))},
		{"Not explained", fmt.Sprintf("%d", result.NotExplained)},
		{"Cost", ux.FormatCost(result.TotalCost)},
		{"Tokens", fmt.Sprintf("%d", result.TotalTokens)},
	})
	if result.StoppedByCost {
		ux.PrintWarning("Stopped at the cost limit of %s", ux.FormatCost(cfg.Explain.MaxCost))
	}
	ux.PrintSuccess("Wrote hints to %s", out)
	return nil
}

// createProvider builds the configured provider, loading custom prompt templates when given
func createProvider(cfg config.ProviderConfig, templatePath string) (provider.Provider, error) {
	pcfg := provider.Config{
		Name:        cfg.Name,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	}

	if templatePath != "" {
		templates, err := prompt.Load(prompt.Config{Provider: cfg.Name, ExplainPath: templatePath})
		if err != nil {
			return nil, err
		}
		pcfg.Templates = templates
	}

	switch cfg.Name {
	case "claude", "":
		return claude.New(pcfg)
	case "openai":
		return openai.New(pcfg)
	default:
		if _, ok := provider.ProviderPresets[cfg.Name]; ok {
			return openai.New(pcfg)
		}
		supported := append([]string{"claude", "openai"}, provider.PresetNames()...)
		return nil, fmt.Errorf("unknown provider: %s (supported: %s)", cfg.Name, strings.Join(supported, ", "))
	}
}
