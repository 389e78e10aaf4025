package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
	"github.com/lazyanubis/ic-canister-kit/internal/store"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
}

// BuildEntry is the outcome for one source file.
type BuildEntry struct {
	Source   string `json:"source"`
	Hash     string `json:"hash,omitempty"`
	Output   string `json:"output,omitempty"`
	Archived bool   `json:"archived,omitempty"`
	Cached   bool   `json:"cached,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`

	Warnings []compiler.Warning `json:"warnings,omitempty"`
}

// BuildReport is the JSON payload of the build command.
type BuildReport struct {
	Entries []BuildEntry `json:"entries"`
	Built   int          `json:"built"`
	Failed  int          `json:"failed"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Parse every source listed in a candid.cue manifest",
		Long: `Parse every Candid source listed in <dir>/candid.cue.

Sources may name .did files or directories; directories are searched
recursively for .did files. Canonical text is written to the manifest's
output directory and every result is archived when a database is set.
All sources are processed even when some fail.

Example candid.cue:
  sources:  ["ledger.did", "canisters"]
  output:   "canonical"
  database: "candid.db"

Exit codes:
  0 - All sources parsed
  1 - One or more sources failed to parse
  2 - Command error (missing or invalid manifest, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runBuild(opts, dir, cmd)
		},
	}

	return cmd
}

func runBuild(opts *BuildOptions, dir string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	manifest, err := LoadManifest(dir)
	if err != nil {
		formatter.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading manifest", err)
	}

	sources, err := expandSources(manifest.Sources)
	if err != nil {
		formatter.Error(ErrCodeScanError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scanning sources", err)
	}
	if len(sources) == 0 {
		formatter.Error(ErrCodeNoFiles, fmt.Sprintf("no .did files found in %s", dir), nil)
		return NewExitError(ExitCommandError, "no sources")
	}

	loader, err := NewLoader(manifest.CacheSize, compiler.Options{Strict: manifest.Strict}, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "creating loader", err)
	}

	var st *store.Store
	if manifest.Database != "" {
		st, err = store.Open(manifest.Database)
		if err != nil {
			formatter.Error(ErrCodeDatabase, fmt.Sprintf("opening archive: %v", err), nil)
			return WrapExitError(ExitCommandError, "opening archive", err)
		}
		defer st.Close()
	}

	if manifest.Output != "" {
		if err := os.MkdirAll(manifest.Output, 0755); err != nil {
			formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("creating output directory: %v", err), nil)
			return WrapExitError(ExitCommandError, "creating output directory", err)
		}
	}

	report := BuildReport{Entries: make([]BuildEntry, 0, len(sources))}
	for _, source := range sources {
		entry := buildSource(cmd, loader, st, manifest.Output, source)
		if entry.Error == "" {
			report.Built++
		} else {
			report.Failed++
		}
		report.Entries = append(report.Entries, entry)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		outputBuildText(formatter, report)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d source(s) failed", report.Failed))
	}
	return nil
}

// buildSource parses one file and writes its outputs. Failures are
// recorded in the entry so the remaining sources still run.
func buildSource(cmd *cobra.Command, loader *Loader, st *store.Store, outputDir, source string) BuildEntry {
	entry := BuildEntry{Source: source}
	hits := loader.Hits()

	res, err := loader.LoadFile(source, nil)
	if err != nil {
		entry.Error = err.Error()
		entry.Code = errorCode(err)
		return entry
	}
	entry.Hash = res.Hash
	entry.Cached = loader.Hits() > hits
	entry.Warnings = res.Warnings

	if outputDir != "" {
		entry.Output = filepath.Join(outputDir, filepath.Base(source))
		if err := os.WriteFile(entry.Output, []byte(candid.Emit(res.Service)+"\n"), 0644); err != nil {
			entry.Error = fmt.Sprintf("writing output: %v", err)
			entry.Code = ErrCodeWriteFailed
			return entry
		}
	}

	if st != nil {
		_, inserted, err := writeResult(cmd.Context(), st, source, res)
		if err != nil {
			entry.Error = err.Error()
			entry.Code = ErrCodeDatabase
			return entry
		}
		entry.Archived = inserted
	}
	return entry
}

// expandSources replaces directories with the .did files beneath them.
func expandSources(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := FindSources(p)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

func outputBuildText(formatter *OutputFormatter, report BuildReport) {
	w := formatter.Writer
	for _, e := range report.Entries {
		if e.Error != "" {
			fmt.Fprintln(w, formatter.Fail(e.Source))
			fmt.Fprintf(w, "  [%s] %s\n", e.Code, e.Error)
			continue
		}
		fmt.Fprintln(w, formatter.Ok(fmt.Sprintf("%s %s", e.Source, shortHash(e.Hash))))
		for _, warn := range e.Warnings {
			fmt.Fprintf(w, "  warning %s: %s\n", warn.Code, warn.Message)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Build Summary: %d built, %d failed\n", report.Built, report.Failed)
}
