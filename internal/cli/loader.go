package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

// DefaultCacheSize is the parse cache capacity when none is configured.
const DefaultCacheSize = 128

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No source files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeParseFailed = "E008" // Candid parse failed
	ErrCodeInvalid     = "E009" // Canonical-form violation
	ErrCodeDatabase    = "E010" // Archive open/read/write failed

	// Manifest errors
	ErrCodeManifestSources = "E101" // sources missing or empty
	ErrCodeManifestField   = "E102" // field has the wrong type
	ErrCodeManifestCache   = "E103" // cache_size not positive
)

// LoadError represents an error that occurred while loading a source.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader reads and compiles Candid sources. Results are cached by the
// content hash of the source text, so identical files are parsed once.
type Loader struct {
	opts   compiler.Options
	cache  *lru.Cache[string, *compiler.Result]
	hits   int
	logger *slog.Logger
}

// NewLoader creates a loader with an LRU cache of size entries
// (DefaultCacheSize when size <= 0). A nil logger discards output.
func NewLoader(size int, opts compiler.Options, logger *slog.Logger) (*Loader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *compiler.Result](size)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{opts: opts, cache: cache, logger: logger}, nil
}

// LoadFile reads path ("-" for stdin) and compiles it.
func (l *Loader) LoadFile(path string, stdin io.Reader) (*compiler.Result, error) {
	var (
		src []byte
		err error
	)
	if path == "-" {
		src, err = io.ReadAll(stdin)
	} else {
		src, err = os.ReadFile(path)
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "file not found", Path: path, Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading file: %v", err), Path: path, Err: err}
	}
	return l.Load(path, src)
}

// Load compiles src, consulting the cache first. name is used for
// logging and error messages only.
func (l *Loader) Load(name string, src []byte) (*compiler.Result, error) {
	key := candid.SourceHash(src)
	if res, ok := l.cache.Get(key); ok {
		l.hits++
		l.logger.Debug("parse cache hit", "source", name, "key", key[:12])
		return res, nil
	}

	res, err := compiler.Compile(string(src), l.opts)
	if err != nil {
		l.logger.Debug("parse failed", "source", name, "kind", compiler.KindOf(err))
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: err.Error(), Path: name, Err: err}
	}

	l.cache.Add(key, res)
	l.logger.Debug("parsed", "source", name, "methods", len(res.Service.Methods), "hash", res.Hash[:12])
	return res, nil
}

// Hits returns how many loads were served from the cache.
func (l *Loader) Hits() int {
	return l.hits
}

// CacheLen returns the number of cached results.
func (l *Loader) CacheLen() int {
	return l.cache.Len()
}

// FindSources walks dir and returns all .did file paths.
func FindSources(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".did" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// errorCode extracts the CLI error code from an error.
func errorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	var manifestErr *ManifestError
	if errors.As(err, &manifestErr) {
		return manifestErr.Code
	}
	return ErrCodeGeneric
}
