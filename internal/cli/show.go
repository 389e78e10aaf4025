package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazyanubis/ic-canister-kit/internal/store"
)

// SchemaView is the JSON shape of an archived schema.
type SchemaView struct {
	ID          string            `json:"id"`
	Hash        string            `json:"hash"`
	Source      string            `json:"source"`
	Seq         int64             `json:"seq"`
	Canonical   string            `json:"canonical"`
	Methods     map[string]string `json:"methods"`
	Aliases     []string          `json:"aliases"`
	ToolVersion string            `json:"tool_version"`
	FormVersion string            `json:"form_version"`
}

func newSchemaView(s store.Schema) SchemaView {
	return SchemaView{
		ID:          s.ID,
		Hash:        s.Hash,
		Source:      s.Source,
		Seq:         s.Seq,
		Canonical:   s.Canonical,
		Methods:     s.Methods,
		Aliases:     s.Aliases,
		ToolVersion: s.ToolVersion,
		FormVersion: s.FormVersion,
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <hash>",
		Short: "Print an archived schema by hash",
		Long: `Print the canonical text of an archived schema.

When the same service was archived from several sources the most
recent entry is shown.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}
	addDatabaseFlag(cmd, opts)

	return cmd
}

func runShow(opts *ArchiveOptions, hash string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.RootOptions, cmd)

	st, err := openArchive(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	schema, err := st.ReadSchema(cmd.Context(), hash)
	if errors.Is(err, store.ErrNotFound) {
		formatter.Error(ErrCodeNotFound, fmt.Sprintf("no schema with hash %s", hash), nil)
		return WrapExitError(ExitFailure, "schema not found", err)
	}
	if err != nil {
		formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading archive", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(newSchemaView(schema))
	}

	w := formatter.Writer
	fmt.Fprintf(w, "# source: %s\n", schema.Source)
	fmt.Fprintf(w, "# seq:    %d\n", schema.Seq)
	fmt.Fprintf(w, "# id:     %s\n", schema.ID)
	fmt.Fprintln(w, schema.Canonical)
	return nil
}
