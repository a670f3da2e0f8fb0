package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
	"gopkg.in/yaml.v3"
)

var (
	rulesTag    string
	rulesFormat string
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules [repository:rule]",
		Short: "List the android-lint rule repository, or show one rule",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRules,
	}

	cmd.Flags().StringVar(&rulesTag, "tag", "", "Only list rules carrying this tag")
	cmd.Flags().StringVar(&rulesFormat, "format", "table", "Output format: table or yaml")

	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	repo, err := rules.DefaultRepository()
	if err != nil {
		return fmt.Errorf("failed to load rule repository: %w", err)
	}

	if len(args) == 1 {
		return showRule(cmd, repo, args[0])
	}

	list := repo.Rules()
	if rulesTag != "" {
		list = repo.FilterByTag(rulesTag)
	}

	switch rulesFormat {
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(list)
	case "table":
	default:
		return fmt.Errorf("unknown format %q (expected table or yaml)", rulesFormat)
	}

	ux.PrintSection(fmt.Sprintf("%s (%d rules)", repo.Name, len(list)))
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{
			rules.NewKey(repo.Key, r.Key).String(),
			ux.FormatSeverity(r.Severity),
			strings.ToLower(r.Type),
			r.Name,
		})
	}
	ux.PrintSummaryTable(rows)
	return nil
}

// showRule prints one rule looked up by its full key, e.g. android-lint:NewApi
func showRule(cmd *cobra.Command, repo *rules.Repository, arg string) error {
	key, err := rules.ParseKey(arg)
	if err != nil {
		return err
	}
	if !repo.Has(key) {
		return fmt.Errorf("unknown rule %s", key)
	}
	rule, _ := repo.Rule(key.Rule)

	if rulesFormat == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rule)
	}

	ux.PrintSection(key.String())
	ux.PrintSummaryTable([][]string{
		{"Name", rule.Name},
		{"Severity", ux.FormatSeverity(rule.Severity)},
		{"Type", strings.ToLower(rule.Type)},
		{"Category", rule.Category},
		{"Tags", strings.Join(rule.Tags, ", ")},
		{"Effort", fmt.Sprintf("%d min", rule.EffortMinutes())},
	})
	if rule.Description != "" {
		fmt.Fprintf(ux.Out, "\n%s\n", rule.Description)
	}
	return nil
}
