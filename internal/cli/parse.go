package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Output   string // canonical text output path
	Database string // archive path
	Strict   bool
}

// ParseReport is the JSON payload of a successful parse.
type ParseReport struct {
	Source    string             `json:"source"`
	Hash      string             `json:"hash"`
	Canonical string             `json:"canonical"`
	Methods   map[string]string  `json:"methods"`
	Aliases   []string           `json:"aliases"`
	Warnings  []compiler.Warning `json:"warnings"`
	ArchiveID string             `json:"archive_id,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a Candid file and print its canonical form",
		Long: `Parse a Candid service description and print the canonical text.

Use "-" to read from standard input. With --format json the hash,
method table, alias names and warnings are printed as well.

Examples:
  candid parse ledger.did
  candid parse ledger.did -o ledger.canonical.did
  candid parse ledger.did --db candid.db --format json
  cat ledger.did | candid parse -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical text to this file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "archive the result in this database")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject duplicate method names")

	return cmd
}

func runParse(opts *ParseOptions, path string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	loader, err := NewLoader(1, compiler.Options{Strict: opts.Strict}, newLogger(opts.RootOptions, cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "creating loader", err)
	}

	res, err := loader.LoadFile(path, cmd.InOrStdin())
	if err != nil {
		return reportLoadError(formatter, err)
	}

	report := newParseReport(path, res)
	for _, w := range res.Warnings {
		formatter.VerboseLog("warning %s: %s", w.Code, w.Message)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(report.Canonical+"\n"), 0644); err != nil {
			formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
		formatter.VerboseLog("Wrote canonical text to %s", opts.Output)
	}

	if opts.Database != "" {
		stored, inserted, err := archive(cmd.Context(), opts.Database, path, res)
		if err != nil {
			formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "archiving schema", err)
		}
		report.ArchiveID = stored.ID
		formatter.VerboseLog("Archived as %s (seq %d, new=%t)", stored.ID, stored.Seq, inserted)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintln(formatter.Writer, report.Canonical)
	return nil
}

func newParseReport(source string, res *compiler.Result) ParseReport {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []compiler.Warning{}
	}
	aliases := res.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	return ParseReport{
		Source:    source,
		Hash:      res.Hash,
		Canonical: candid.Emit(res.Service),
		Methods:   res.Methods,
		Aliases:   aliases,
		Warnings:  warnings,
	}
}

// reportLoadError prints a load failure and maps it to an exit code:
// unreadable input is a command error, a parse failure is a validation
// failure.
func reportLoadError(formatter *OutputFormatter, err error) error {
	code := errorCode(err)
	var details any
	var ce *compiler.Error
	if errors.As(err, &ce) {
		details = map[string]any{"kind": ce.Kind, "name": ce.Name, "offset": ce.Offset, "near": ce.Near}
	}
	formatter.Error(code, err.Error(), details)

	if code == ErrCodeParseFailed {
		return WrapExitError(ExitFailure, "parse failed", err)
	}
	return WrapExitError(ExitCommandError, "loading source", err)
}
