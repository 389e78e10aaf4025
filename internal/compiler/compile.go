package compiler

import (
	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

// Warning codes (W001-W099)
const (
	WarnDuplicateMethod = "W001" // method name declared twice, last one kept
)

// Options tunes parsing.
type Options struct {
	// Strict turns duplicate method names into parse errors.
	Strict bool
}

// Warning is a non-fatal finding recorded during parsing.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Offset  int    `json:"offset" yaml:"offset"`
}

// Result is the output of a successful compilation.
type Result struct {
	// Service is the resolved, canonical service.
	Service candid.Service

	// Methods maps method names to their rendered signatures.
	Methods map[string]string

	// Aliases lists declared type names in declaration order.
	Aliases []string

	// Hash is the canonical identity of Service.
	Hash string

	// Warnings holds non-fatal findings.
	Warnings []Warning

	// Raw is the first-pass store, kept for alias analysis.
	Raw *RawStore
}

// Parse compiles Candid text with default options and returns the service.
func Parse(src string) (candid.Service, error) {
	res, err := Compile(src, Options{})
	if err != nil {
		return candid.Service{}, err
	}
	return res.Service, nil
}

// Compile parses Candid text: zero or more "type" declarations followed by
// exactly one service block.
//
// The algorithm:
//  1. Capture every declaration into the raw store, unresolved
//  2. Parse the service block into raw signatures
//  3. Resolve each signature with a fresh recursion context
func Compile(src string, opts Options) (*Result, error) {
	p := newParser(src, opts)

	for {
		ok, err := p.s.skipKeyword("type ")
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := p.parseDeclaration(); err != nil {
			return nil, err
		}
	}

	ok, err := p.s.skipKeyword("service")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.s.errorf(KindParse, "expected \"type\" or \"service\"")
	}
	raw, err := p.parseServiceBody()
	if err != nil {
		return nil, err
	}
	if err := p.s.skipSeparators(';'); err != nil {
		return nil, err
	}
	if !p.s.eof() {
		return nil, p.s.errorf(KindParse, "unexpected input after service")
	}

	svc, err := newResolver(p.raw).resolveService(raw)
	if err != nil {
		return nil, err
	}

	return &Result{
		Service:  svc,
		Methods:  candid.MethodTable(svc),
		Aliases:  p.raw.Names(),
		Hash:     candid.Hash(svc),
		Warnings: p.warnings,
		Raw:      p.raw,
	}, nil
}

// ParseType parses and resolves a standalone type expression against an
// optional set of alias declarations, e.g. ParseType("vec T", "type T = nat").
func ParseType(expr string, decls string) (candid.Type, error) {
	p := newParser(decls, Options{})
	for {
		ok, err := p.s.skipKeyword("type ")
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := p.parseDeclaration(); err != nil {
			return nil, err
		}
	}
	if !p.s.eof() {
		return nil, p.s.errorf(KindParse, "expected \"type\"")
	}

	p.s = newScanner(expr)
	raw, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.s.skipTrivia(); err != nil {
		return nil, err
	}
	if !p.s.eof() {
		return nil, p.s.errorf(KindParse, "unexpected input after type")
	}
	r := newResolver(p.raw)
	t, err := r.resolveType(raw)
	if err != nil {
		return nil, err
	}
	r.next = 0
	return r.renumber(t), nil
}
