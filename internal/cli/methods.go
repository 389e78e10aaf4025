package cli

import (
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

// MethodsOptions holds flags for the methods command.
type MethodsOptions struct {
	*RootOptions
	Strict bool
}

// MethodRow is one entry of the method table.
type MethodRow struct {
	Name       string `json:"name"`
	Signature  string `json:"signature"`
	Annotation string `json:"annotation,omitempty"`
}

// NewMethodsCommand creates the methods command.
func NewMethodsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MethodsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "methods <file>",
		Short: "Print the method table of a Candid service",
		Long: `Print each method of the service with its canonical signature,
sorted by method name.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMethods(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject duplicate method names")

	return cmd
}

func runMethods(opts *MethodsOptions, path string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	loader, err := NewLoader(1, compiler.Options{Strict: opts.Strict}, newLogger(opts.RootOptions, cmd.ErrOrStderr()))
	if err != nil {
		return WrapExitError(ExitCommandError, "creating loader", err)
	}
	res, err := loader.LoadFile(path, cmd.InOrStdin())
	if err != nil {
		return reportLoadError(formatter, err)
	}

	rows := lo.Map(res.Service.Methods, func(m candid.Method, _ int) MethodRow {
		return MethodRow{
			Name:       m.Name,
			Signature:  candid.Signature(m.Func),
			Annotation: m.Func.Annotation.String(),
		}
	})

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}

	table := tablewriter.NewWriter(formatter.Writer)
	table.SetHeader([]string{"Method", "Signature"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range rows {
		table.Append([]string{candid.QuoteLabel(row.Name), row.Signature})
	}
	table.Render()
	return nil
}
