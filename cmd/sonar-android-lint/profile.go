package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tsanders/sonar-android-lint/pkg/profile"
	"github.com/tsanders/sonar-android-lint/pkg/rules"
	"github.com/tsanders/sonar-android-lint/pkg/ux"
	"gopkg.in/yaml.v3"
)

var (
	profileFrom   string
	profileOutput string
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Import, export and show android-lint quality profiles",
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a profile as an Android Lint lint.xml",
		Long: `Writes a quality profile as a lint.xml configuration. Every rule of the
repository is listed; rules the profile does not activate are set to "ignore".

By default the built-in "Android Lint" profile is exported. Use --from to export a
profile previously saved as YAML by "profile import".`,
		Args: cobra.NoArgs,
		RunE: runProfileExport,
	}
	exportCmd.Flags().StringVar(&profileFrom, "from", "", "Profile YAML file (default: built-in profile)")
	exportCmd.Flags().StringVarP(&profileOutput, "output", "o", "", "Write lint.xml here instead of stdout")

	importCmd := &cobra.Command{
		Use:   "import <lint.xml>",
		Short: "Read an Android Lint lint.xml into a profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileImport,
	}
	importCmd.Flags().StringVarP(&profileOutput, "output", "o", "", "Write the profile YAML here instead of stdout")

	defaultCmd := &cobra.Command{
		Use:   "default",
		Short: "Show the built-in Android Lint profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := rules.DefaultRepository()
			if err != nil {
				return fmt.Errorf("failed to load rule repository: %w", err)
			}
			p, err := profile.BuiltIn(profile.NewImporter(repo, slog.Default()))
			if err != nil {
				return err
			}
			return writeProfileYAML(cmd.OutOrStdout(), p)
		},
	}

	cmd.AddCommand(exportCmd, importCmd, defaultCmd)
	return cmd
}

func runProfileExport(cmd *cobra.Command, args []string) error {
	repo, err := rules.DefaultRepository()
	if err != nil {
		return fmt.Errorf("failed to load rule repository: %w", err)
	}

	var p *profile.Profile
	if profileFrom != "" {
		data, err := os.ReadFile(profileFrom)
		if err != nil {
			return fmt.Errorf("failed to read profile: %w", err)
		}
		p = &profile.Profile{}
		if err := yaml.Unmarshal(data, p); err != nil {
			return fmt.Errorf("failed to parse profile: %w", err)
		}
	} else {
		p, err = profile.BuiltIn(profile.NewImporter(repo, slog.Default()))
		if err != nil {
			return err
		}
	}

	return withOutput(cmd.OutOrStdout(), profileOutput, func(w io.Writer) error {
		return profile.NewExporter(repo).ExportProfile(p, w)
	})
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	repo, err := rules.DefaultRepository()
	if err != nil {
		return fmt.Errorf("failed to load rule repository: %w", err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open lint configuration: %w", err)
	}
	defer f.Close()

	if profileOutput == "" {
		// keep stdout for the YAML document
		ux.Out = cmd.ErrOrStderr()
	}

	var messages profile.ValidationMessages
	p := profile.NewImporter(repo, slog.Default()).ImportProfile(f, &messages)

	for _, info := range messages.Infos {
		ux.PrintInfo("%s", info)
	}
	for _, w := range messages.Warnings {
		ux.PrintWarning("%s", w)
	}
	for _, e := range messages.Errors {
		ux.PrintError("%s", e)
	}
	if messages.HasErrors() || p == nil {
		return fmt.Errorf("failed to import %s", args[0])
	}

	p.Name = filepath.Base(args[0])
	return withOutput(cmd.OutOrStdout(), profileOutput, func(w io.Writer) error {
		return writeProfileYAML(w, p)
	})
}

func writeProfileYAML(w io.Writer, p *profile.Profile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return enc.Close()
}

// withOutput runs write against path, or against stdout when path is empty
func withOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	ux.PrintSuccess("Wrote %s", path)
	return nil
}
