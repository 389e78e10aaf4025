package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
	"github.com/lazyanubis/ic-canister-kit/internal/store"
)

// Harness runs scenarios against a shared archive.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a harness over st. A nil logger discards output.
func New(st *store.Store, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{store: st, logger: logger}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory archive for isolation.
//
// Execution flow:
// 1. Read the scenario's Candid text
// 2. Compile it
// 3. Compare the outcome with the expect clause
// 4. On success, check invariants, the round-trip law and the archive
//
// Errors are returned only when the scenario cannot be executed at all
// (unreadable file, archive failure); failed expectations are reported in
// the result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	return New(st, nil).Run(context.Background(), scenario)
}

// Run executes one scenario. See the package-level Run.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	src, err := scenario.source()
	if err != nil {
		return nil, err
	}

	result := NewResult(scenario.Name)
	h.logger.Debug("running scenario", "name", scenario.Name, "strict", scenario.Strict)

	res, err := compiler.Compile(src, compiler.Options{Strict: scenario.Strict})
	if err != nil {
		result.Snapshot.ErrorKind = string(compiler.KindOf(err))
		for _, e := range checkFailure(scenario.Expect, err) {
			result.AddError(e.Error())
		}
		return result, nil
	}

	result.Snapshot.Hash = res.Hash
	result.Snapshot.Canonical = candid.Emit(res.Service)
	result.Snapshot.Methods = res.Methods
	result.Snapshot.Aliases = res.Aliases
	result.Snapshot.RecursionCount = candid.RecursionCount(res.Service)
	result.Snapshot.Warnings = res.Warnings

	for _, e := range checkSuccess(scenario.Expect, res) {
		result.AddError(e.Error())
	}
	for _, e := range checkInvariants(res) {
		result.AddError(e.Error())
	}

	if err := h.checkArchive(ctx, scenario, res, result); err != nil {
		return nil, err
	}

	h.logger.Debug("scenario finished", "name", scenario.Name, "pass", result.Pass)
	return result, nil
}

// checkArchive writes the result to the archive and reads it back.
func (h *Harness) checkArchive(ctx context.Context, scenario *Scenario, res *compiler.Result, result *Result) error {
	stored, _, err := h.store.WriteSchema(ctx, store.Schema{
		Hash:      res.Hash,
		Source:    "scenario:" + scenario.Name,
		Canonical: result.Snapshot.Canonical,
		Methods:   res.Methods,
		Aliases:   res.Aliases,
	})
	if err != nil {
		return fmt.Errorf("failed to archive scenario: %w", err)
	}

	read, err := h.store.ReadSchema(ctx, res.Hash)
	if err != nil {
		return fmt.Errorf("failed to read archived scenario: %w", err)
	}
	if read.Canonical != stored.Canonical {
		result.AddError((&AssertionError{
			Type:     "archive",
			Expected: stored.Canonical,
			Actual:   read.Canonical,
		}).Error())
	}
	return nil
}
