package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tsanders/sonar-android-lint/pkg/config"
	"github.com/tsanders/sonar-android-lint/pkg/inputfile"
	"github.com/tsanders/sonar-android-lint/pkg/report"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/sensor"
	"github.com/tsanders/sonar-android-lint/pkg/sonar"
	"github.com/tsanders/sonar-android-lint/pkg/translator"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
)

var (
	outputPath string
	htmlPath   string
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Translate an Android Lint report into SonarQube generic issues",
		Long: `Reads the Android Lint XML report named by sonar.android.lint.report
(default build/outputs/lint-results.xml, relative to the project root), resolves
every reported location against the project's main source files and writes the
resulting issues in SonarQube's generic issue format.

Example:
  sonar-android-lint analyze --base-dir app -D sonar.android.lint.report=build/reports/lint-results-debug.xml`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Generic issue JSON file (default from config)")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write an HTML summary to this file")

	return cmd
}

// importRun is the outcome of one sensor execution
type importRun struct {
	id         string
	cfg        *config.Config
	baseDir    string
	reportPath string
	repo       *rules.Repository
	collector  *sonar.Collector
	result     *translator.Result
	duration   time.Duration
}

// runImport indexes the project and executes the sensor
func runImport(cfg *config.Config, progress ux.ProgressWriter) (*importRun, error) {
	start := time.Now()
	id := uuid.NewString()
	logger := slog.Default().With("run", id)

	base, err := filepath.Abs(cfg.Paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	repo, err := rules.DefaultRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to load rule repository: %w", err)
	}

	desc := sensor.Describe()
	props := cfg.MergedProperties(sensor.DefaultProperties())
	if !sensor.ShouldExecute(props) {
		return nil, fmt.Errorf("property %s is empty, nothing to import", desc.RequiredProperty)
	}

	languages := desc.Languages
	if cfg.Index.IncludeTests {
		logger.Debug("Indexing test sources too")
	}
	idx, err := inputfile.Build(inputfile.Config{
		BaseDir:    base,
		Languages:  languages,
		Exclusions: cfg.Index.Exclusions,
		MainOnly:   desc.MainFilesOnly && !cfg.Index.IncludeTests,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index project: %w", err)
	}
	logger.Info("Project indexed", "base_dir", base, "files", idx.Len())
	for _, p := range idx.Paths() {
		logger.Debug("Indexed file", "path", p)
	}

	collector := sonar.NewCollector(repo)
	s, err := sensor.New(sensor.Config{
		BaseDir:    base,
		Properties: props,
		Resolver:   idx,
		Sink:       collector,
		Logger:     logger,
		Progress:   progress,
	})
	if err != nil {
		return nil, err
	}

	if info, err := os.Stat(s.ReportPath()); err == nil && !info.IsDir() {
		logger.Info("Sensor started", "sensor", desc.Name, "report", s.ReportPath(), "size", ux.FormatSize(info.Size()))
	} else {
		logger.Info("Sensor started", "sensor", desc.Name)
	}
	result, err := s.Execute()
	if err != nil {
		return nil, err
	}

	return &importRun{
		id:         id,
		cfg:        cfg,
		baseDir:    base,
		reportPath: s.ReportPath(),
		repo:       repo,
		collector:  collector,
		result:     result,
		duration:   time.Since(start),
	}, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if outputPath != "" {
		cfg.Paths.Output = outputPath
	}
	if htmlPath != "" {
		cfg.Paths.HTML = htmlPath
	}

	ux.PrintHeader("sonar-android-lint analyze")

	run, err := runImport(cfg, &ux.ConsoleProgressWriter{})
	if err != nil {
		ux.PrintError("%v", err)
		return err
	}

	out := cfg.Paths.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(run.baseDir, out)
	}
	if err := run.collector.WriteFile(out); err != nil {
		return err
	}

	printImportSummary(run)
	ux.PrintSuccess("Wrote %s issue(s) to %s", ux.FormatCount(run.collector.Len()), out)

	if cfg.Paths.HTML != "" {
		summary := report.NewSummary(run.result, run.repo)
		summary.RunID = run.id
		summary.ProjectDir = run.baseDir
		summary.ReportPath = run.reportPath
		summary.OutputPath = out
		summary.Duration = run.duration

		htmlOut := cfg.Paths.HTML
		if !filepath.IsAbs(htmlOut) {
			htmlOut = filepath.Join(run.baseDir, htmlOut)
		}
		written, err := report.GenerateHTML(summary, htmlOut)
		if err != nil {
			return err
		}
		ux.PrintSuccess("HTML summary: %s", written)
	}

	return nil
}

// printImportSummary prints the run counters and the per-severity breakdown
func printImportSummary(run *importRun) {
	ux.PrintSection("Summary")
	ux.PrintSummaryTable([][]string{
		{"Run", ux.Dim(run.id)},
		{"Report", run.reportPath},
		{"Locations", ux.FormatCount(run.result.Lookups)},
		{"Findings", ux.Success(ux.FormatCount(run.result.Emitted))},
		{"Skipped", ux.Warning(ux.FormatCount(run.result.Skipped))},
		{"Rejected", ux.Error(ux.FormatCount(run.result.Rejected))},
		{"Duration", ux.FormatDuration(run.duration)},
	})

	counts := run.collector.CountBySeverity()
	if len(counts) > 0 {
		ux.PrintSection("By severity")
		var rows [][]string
		for i := len(rules.Severities) - 1; i >= 0; i-- {
			sev := rules.Severities[i]
			if counts[sev] == 0 {
				continue
			}
			rows = append(rows, []string{ux.FormatSeverity(sev), ux.FormatCount(counts[sev])})
		}
		ux.PrintSummaryTable(rows)
	}

	if byRule := run.collector.CountByRule(); len(byRule) > 0 {
		ux.PrintSection("Top rules")
		ux.PrintSummaryTable(topRules(run.repo, byRule, topRuleCount))
	}

	if skipped := run.result.SkippedFiles(); len(skipped) > 0 {
		ux.PrintSection("Files not found in the project")
		for _, f := range skipped {
			ux.PrintWarning("%s", f)
		}
	}
	fmt.Fprintln(ux.Out)
}

// topRuleCount bounds the per-rule table of the console summary
const topRuleCount = 10

// topRules returns up to n rows of rule key and count, most findings first then by key
func topRules(repo *rules.Repository, counts map[string]int, n int) [][]string {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{rules.NewKey(repo.Key, id).String(), ux.FormatCount(counts[id])})
	}
	return rows
}
