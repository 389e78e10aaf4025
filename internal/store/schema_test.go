package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

func TestWriteSchema_AssignsIdentity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	stored, inserted, err := s.WriteSchema(ctx, createTestSchema("h1", "a.did"))
	require.NoError(t, err)
	assert.True(t, inserted)

	id, err := uuid.Parse(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, int64(1), stored.Seq)
	assert.Equal(t, candid.ToolVersion, stored.ToolVersion)
	assert.Equal(t, candid.FormVersion, stored.FormVersion)
}

func TestWriteSchema_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, inserted, err := s.WriteSchema(ctx, createTestSchema("h1", "a.did"))
	require.NoError(t, err)
	require.True(t, inserted)

	again, inserted, err := s.WriteSchema(ctx, createTestSchema("h1", "a.did"))
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first, again)

	n, err := s.CountSchemas(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteSchema_SameHashOtherSource(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.WriteSchema(ctx, createTestSchema("h1", "a.did"))
	require.NoError(t, err)
	second, inserted, err := s.WriteSchema(ctx, createTestSchema("h1", "b.did"))
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(2), second.Seq)
}

func TestReadSchema(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.WriteSchema(ctx, createTestSchema("h1", "a.did"))
	require.NoError(t, err)
	latest, _, err := s.WriteSchema(ctx, createTestSchema("h1", "b.did"))
	require.NoError(t, err)

	got, err := s.ReadSchema(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, latest, got)
	assert.Equal(t, map[string]string{"greet": "(text) -> (text) query"}, got.Methods)
	assert.Equal(t, []string{"Name"}, got.Aliases)
}

func TestReadSchema_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadSchema(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSchemas_Ordering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, hash := range []string{"h3", "h1", "h2"} {
		_, _, err := s.WriteSchema(ctx, createTestSchema(hash, "a.did"))
		require.NoError(t, err)
	}
	_, _, err := s.WriteSchema(ctx, createTestSchema("other", "b.did"))
	require.NoError(t, err)

	list, err := s.ListSchemas(ctx, "a.did")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"h3", "h1", "h2"}, []string{list[0].Hash, list[1].Hash, list[2].Hash})
	assert.Less(t, list[0].Seq, list[1].Seq)
	assert.Less(t, list[1].Seq, list[2].Seq)
}

func TestListSchemas_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	list, err := s.ListSchemas(context.Background(), "nothing.did")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestWriteSchema_EmptyTables(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, _, err := s.WriteSchema(ctx, Schema{Hash: "h", Source: "empty.did", Canonical: "service {  }"})
	require.NoError(t, err)

	got, err := s.ReadSchema(ctx, "h")
	require.NoError(t, err)
	assert.NotNil(t, got.Methods)
	assert.Empty(t, got.Methods)
	assert.Equal(t, []string{}, got.Aliases)
}

func TestMarshalMethods_Deterministic(t *testing.T) {
	a, err := marshalMethods(map[string]string{"b": "() -> ()", "a": "(nat) -> (nat) query"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"(nat) -> (nat) query","b":"() -> ()"}`, a)
}
