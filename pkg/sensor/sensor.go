// Package sensor runs the Android Lint import as one step of a project analysis: it locates the
// configured report, translates it against the project's file index and hands findings to a sink.
package sensor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tsanders/sonar-android-lint/pkg/lint"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/translator"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
)

const (
	// Name identifies the sensor in logs and summaries
	Name = "AndroidLint"

	// ReportPathProperty is the analysis property holding the report location
	ReportPathProperty = "sonar.android.lint.report"

	// DefaultReportPath is where the Android Gradle plugin writes the XML report
	DefaultReportPath = "build/outputs/lint-results.xml"
)

// Descriptor describes when the sensor applies
type Descriptor struct {
	Name             string
	Languages        []string
	MainFilesOnly    bool
	RequiredProperty string
}

// Describe returns the sensor descriptor
func Describe() Descriptor {
	return Descriptor{
		Name:             Name,
		Languages:        []string{"java", "xml"},
		MainFilesOnly:    true,
		RequiredProperty: ReportPathProperty,
	}
}

// DefaultProperties returns the property defaults the sensor declares
func DefaultProperties() map[string]string {
	return map[string]string{
		ReportPathProperty: DefaultReportPath,
	}
}

// ShouldExecute reports whether the report property is set
func ShouldExecute(props map[string]string) bool {
	return props[ReportPathProperty] != ""
}

// ReportPath returns the cleaned report location. Relative values are resolved against baseDir.
func ReportPath(props map[string]string, baseDir string) string {
	path := props[ReportPathProperty]
	if path == "" {
		path = DefaultReportPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Clean(path)
}

// Config configures a Sensor
type Config struct {
	BaseDir    string                  // Project root, report paths are relative to it
	Properties map[string]string       // Analysis properties
	Resolver   translator.FileResolver // Required
	Sink       translator.FindingSink  // Required
	Logger     *slog.Logger
	Progress   ux.ProgressWriter
}

// Sensor imports one Android Lint report per Execute call
type Sensor struct {
	config Config
}

// New creates a Sensor
func New(config Config) (*Sensor, error) {
	if config.Resolver == nil {
		return nil, fmt.Errorf("file resolver is required")
	}
	if config.Sink == nil {
		return nil, fmt.Errorf("finding sink is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Progress == nil {
		config.Progress = &ux.NoOpProgressWriter{}
	}
	if config.Properties == nil {
		config.Properties = DefaultProperties()
	}
	return &Sensor{config: config}, nil
}

// Describe returns the sensor descriptor
func (s *Sensor) Describe() Descriptor {
	return Describe()
}

// ReportPath returns the report location this sensor reads
func (s *Sensor) ReportPath() string {
	return ReportPath(s.config.Properties, s.config.BaseDir)
}

// Execute translates the configured report. A missing or unreadable report returns an error
// matching lint.ErrReportUnreadable and emits no findings.
func (s *Sensor) Execute() (*translator.Result, error) {
	path := s.ReportPath()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.config.Logger.Warn("Android Lint report not found, check the report property",
			"property", ReportPathProperty,
			"path", path)
		if err == nil {
			err = fmt.Errorf("path is a directory")
		}
		return nil, &lint.ReportError{Path: path, Err: err}
	}

	t, err := translator.New(translator.Config{
		Resolver:   s.config.Resolver,
		Sink:       s.config.Sink,
		Repository: rules.RepositoryKey,
		Logger:     s.config.Logger.With("sensor", Name),
		Progress:   s.config.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	return t.Process(path)
}
