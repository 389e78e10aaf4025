package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

func TestLoaderCache(t *testing.T) {
	loader, err := NewLoader(2, compiler.Options{}, nil)
	require.NoError(t, err)

	first, err := loader.Load("a.did", []byte(pingSource))
	require.NoError(t, err)
	second, err := loader.Load("b.did", []byte(pingSource))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.CacheLen())
	assert.Equal(t, 1, loader.Hits())

	_, err = loader.Load("c.did", []byte(mutualSource))
	require.NoError(t, err)
	_, err = loader.Load("d.did", []byte("service : {}"))
	require.NoError(t, err)
	assert.Equal(t, 2, loader.CacheLen(), "cache is bounded")
}

func TestLoaderFailuresAreNotCached(t *testing.T) {
	loader, err := NewLoader(0, compiler.Options{}, nil)
	require.NoError(t, err)

	_, err = loader.Load("bad.did", []byte("service : { f : (Nope) -> () }"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeParseFailed, errorCode(err))
	assert.True(t, compiler.IsKind(err, compiler.KindMissingType))
	assert.Equal(t, 0, loader.CacheLen())
}

func TestLoaderLoadFile(t *testing.T) {
	loader, err := NewLoader(0, compiler.Options{}, nil)
	require.NoError(t, err)

	res, err := loader.LoadFile("-", strings.NewReader(pingSource))
	require.NoError(t, err)
	assert.Equal(t, "(text) -> (text) query", res.Methods["test"])

	_, err = loader.LoadFile(filepath.Join(t.TempDir(), "missing.did"), nil)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, errorCode(err))
}

func TestFindSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.did", pingSource)
	writeFile(t, dir, "nested/b.did", pingSource)
	writeFile(t, dir, "nested/c.txt", "")

	files, err := FindSources(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.did"), filepath.Join(dir, "nested", "b.did")}, files)
}
