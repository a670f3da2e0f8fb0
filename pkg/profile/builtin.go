package profile

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
)

// BuiltInName is the name of the default profile
const BuiltInName = "Android Lint"

//go:embed android_lint_sonar_way.xml
var sonarWay []byte

// BuiltIn creates the default "Android Lint" profile for java by importing the embedded lint.xml
func BuiltIn(importer *Importer) (*Profile, error) {
	importer.logger.Info("Creating Android Lint profile")

	messages := &ValidationMessages{}
	imported := importer.ImportProfile(bytes.NewReader(sonarWay), messages)
	if imported == nil {
		return nil, fmt.Errorf("failed to create built-in profile: %s", strings.Join(messages.Errors, "; "))
	}
	for _, w := range messages.Warnings {
		importer.logger.Warn("Built-in profile", "warning", w)
	}

	p := New(BuiltInName, "java")
	p.Default = true
	for _, ar := range imported.ActiveRules {
		p.Activate(ar.Repository, ar.Key, ar.Severity)
	}
	return p, nil
}
