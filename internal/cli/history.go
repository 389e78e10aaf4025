package cli

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/lazyanubis/ic-canister-kit/internal/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <source>",
		Short: "List archived versions of a source",
		Long: `List every distinct service archived from a source, oldest first.

A new entry appears only when the canonical hash changes, so the list
shows how an interface evolved.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}
	addDatabaseFlag(cmd, opts)

	return cmd
}

func runHistory(opts *ArchiveOptions, source string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	st, err := openArchive(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	schemas, err := st.ListSchemas(cmd.Context(), source)
	if err != nil {
		formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading archive", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(lo.Map(schemas, func(s store.Schema, _ int) SchemaView {
			return newSchemaView(s)
		}))
	}

	table := tablewriter.NewWriter(formatter.Writer)
	table.SetHeader([]string{"Seq", "Hash", "Methods", "ID"})
	table.SetAutoFormatHeaders(false)
	for _, s := range schemas {
		table.Append([]string{
			strconv.FormatInt(s.Seq, 10),
			shortHash(s.Hash),
			strconv.Itoa(len(s.Methods)),
			s.ID,
		})
	}
	table.Render()
	return nil
}
