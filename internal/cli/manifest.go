package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
)

// ManifestFile is the project manifest name looked up by build.
const ManifestFile = "candid.cue"

// Manifest is the project configuration read from candid.cue.
//
//	sources:    ["ledger.did"]  // required, non-empty
//	output:     "out"           // optional, canonical files written here
//	strict:     false           // optional
//	database:   "candid.db"     // optional, archive every parse
//	cache_size: 64              // optional
//
// Relative paths are resolved against the manifest's directory.
type Manifest struct {
	Dir       string
	Sources   []string
	Output    string
	Strict    bool
	Database  string
	CacheSize int
}

// ManifestError reports an invalid manifest field with its CUE position.
type ManifestError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *ManifestError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadManifest reads dir/candid.cue.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &ManifestError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest not found: %s", path)}
	}
	if err != nil {
		return nil, &ManifestError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading manifest: %v", err)}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &ManifestError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return parseManifest(value, dir)
}

func parseManifest(value cue.Value, dir string) (*Manifest, error) {
	m := &Manifest{Dir: dir, CacheSize: DefaultCacheSize}

	sources := value.LookupPath(cue.ParsePath("sources"))
	if !sources.Exists() {
		return nil, &ManifestError{Code: ErrCodeManifestSources, Field: "sources", Message: "sources is required", Pos: value.Pos()}
	}
	iter, err := sources.List()
	if err != nil {
		return nil, fieldError("sources", "must be a list of strings", sources)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fieldError("sources", "must be a list of strings", iter.Value())
		}
		m.Sources = append(m.Sources, resolvePath(dir, s))
	}
	if len(m.Sources) == 0 {
		return nil, &ManifestError{Code: ErrCodeManifestSources, Field: "sources", Message: "sources must not be empty", Pos: sources.Pos()}
	}

	if v := value.LookupPath(cue.ParsePath("output")); v.Exists() {
		s, err := v.String()
		if err != nil {
			return nil, fieldError("output", "must be a string", v)
		}
		m.Output = resolvePath(dir, s)
	}

	if v := value.LookupPath(cue.ParsePath("strict")); v.Exists() {
		b, err := v.Bool()
		if err != nil {
			return nil, fieldError("strict", "must be a bool", v)
		}
		m.Strict = b
	}

	if v := value.LookupPath(cue.ParsePath("database")); v.Exists() {
		s, err := v.String()
		if err != nil {
			return nil, fieldError("database", "must be a string", v)
		}
		m.Database = resolvePath(dir, s)
	}

	if v := value.LookupPath(cue.ParsePath("cache_size")); v.Exists() {
		n, err := v.Int64()
		if err != nil {
			return nil, fieldError("cache_size", "must be an integer", v)
		}
		if n <= 0 {
			return nil, &ManifestError{Code: ErrCodeManifestCache, Field: "cache_size", Message: "cache_size must be positive", Pos: v.Pos()}
		}
		m.CacheSize = int(n)
	}

	return m, nil
}

func fieldError(field, message string, v cue.Value) *ManifestError {
	return &ManifestError{
		Code:    ErrCodeManifestField,
		Field:   field,
		Message: field + " " + message,
		Pos:     v.Pos(),
	}
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
