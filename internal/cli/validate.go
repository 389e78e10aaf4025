package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// ValidationReport is the JSON payload of the validate command.
type ValidationReport struct {
	Valid    bool                       `json:"valid"`
	Hash     string                     `json:"hash"`
	Methods  int                        `json:"methods"`
	Aliases  int                        `json:"aliases"`
	Errors   []compiler.ValidationError `json:"errors"`
	Cycles   []compiler.CycleInfo       `json:"cycles"`
	Warnings []compiler.Warning         `json:"warnings"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a Candid file without printing it",
		Long: `Parse a Candid file, check the canonical-form invariants of the
result and report recursive alias groups.

Exit codes:
  0 - Valid
  1 - Parse failure or invariant violation
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject duplicate method names")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	loader, err := NewLoader(1, compiler.Options{Strict: opts.Strict}, newLogger(opts.RootOptions, cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "creating loader", err)
	}
	res, err := loader.LoadFile(path, cmd.InOrStdin())
	if err != nil {
		return reportLoadError(formatter, err)
	}

	report := ValidationReport{
		Hash:     res.Hash,
		Methods:  len(res.Service.Methods),
		Aliases:  len(res.Aliases),
		Errors:   compiler.Validate(res.Service),
		Cycles:   compiler.AnalyzeCycles(res.Raw),
		Warnings: res.Warnings,
	}
	if report.Errors == nil {
		report.Errors = []compiler.ValidationError{}
	}
	if report.Warnings == nil {
		report.Warnings = []compiler.Warning{}
	}
	report.Valid = len(report.Errors) == 0

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		outputValidationText(formatter, path, report)
	}

	if !report.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(report.Errors)))
	}
	return nil
}

func outputValidationText(formatter *OutputFormatter, path string, report ValidationReport) {
	w := formatter.Writer
	if report.Valid {
		fmt.Fprintln(w, formatter.Ok(fmt.Sprintf("%s is valid: %d method(s), %d alias(es)", path, report.Methods, report.Aliases)))
	} else {
		fmt.Fprintln(w, formatter.Fail(fmt.Sprintf("%s has %d invariant violation(s)", path, len(report.Errors))))
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}

	if len(report.Cycles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recursive aliases:")
		for _, c := range report.Cycles {
			fmt.Fprintf(w, "  %s\n", c.Message)
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "  %s: %s\n", warn.Code, warn.Message)
		}
	}
}
