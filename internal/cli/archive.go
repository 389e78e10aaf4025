package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
	"github.com/lazyanubis/ic-canister-kit/internal/store"
)

// archive stores a parse result in the database at dbPath.
func archive(ctx context.Context, dbPath, source string, res *compiler.Result) (store.Schema, bool, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return store.Schema{}, false, fmt.Errorf("open archive: %w", err)
	}
	defer st.Close()

	return writeResult(ctx, st, source, res)
}

func writeResult(ctx context.Context, st *store.Store, source string, res *compiler.Result) (store.Schema, bool, error) {
	return st.WriteSchema(ctx, store.Schema{
		Hash:      res.Hash,
		Source:    source,
		Canonical: candid.Emit(res.Service),
		Methods:   res.Methods,
		Aliases:   res.Aliases,
	})
}

// ArchiveOptions holds flags shared by the archive query commands.
type ArchiveOptions struct {
	*RootOptions
	Database string
}

func addDatabaseFlag(cmd *cobra.Command, opts *ArchiveOptions) {
	cmd.Flags().StringVar(&opts.Database, "db", "candid.db", "archive database path")
}

// openArchive opens the archive for reading and reports failures.
func openArchive(formatter *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		formatter.Error(ErrCodeDatabase, fmt.Sprintf("opening archive: %v", err), nil)
		return nil, WrapExitError(ExitCommandError, "opening archive", err)
	}
	return st, nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
