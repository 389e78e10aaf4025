package compiler

import (
	"slices"
	"strconv"
	"strings"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

// RawStore holds the first-pass capture: each declared alias mapped to its
// unresolved tree. Raw trees may contain candid.Reference leaves.
type RawStore struct {
	names []string
	types map[string]candid.Type
}

// NewRawStore creates an empty store.
func NewRawStore() *RawStore {
	return &RawStore{types: make(map[string]candid.Type)}
}

// Has reports whether name has been declared.
func (r *RawStore) Has(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Lookup returns the raw tree declared for name.
func (r *RawStore) Lookup(name string) (candid.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Names returns alias names in declaration order.
func (r *RawStore) Names() []string {
	return slices.Clone(r.names)
}

// Len returns the number of declared aliases.
func (r *RawStore) Len() int {
	return len(r.names)
}

func (r *RawStore) declare(name string, t candid.Type) {
	r.names = append(r.names, name)
	r.types[name] = t
}

// References returns the distinct alias names referenced from the raw tree
// of name, in first-seen order.
func (r *RawStore) References(name string) []string {
	t, ok := r.types[name]
	if !ok {
		return nil
	}
	var refs []string
	seen := make(map[string]bool)
	candid.Walk(t, func(t candid.Type) bool {
		if ref, ok := t.(candid.Reference); ok && !seen[ref.Name] {
			seen[ref.Name] = true
			refs = append(refs, ref.Name)
		}
		return true
	})
	return refs
}

// rawService is the service block before resolution. Method types are
// raw Func trees.
type rawService struct {
	initArgs []candid.Type
	methods  []candid.Method
}

const (
	binderPrefix  = "μrec_"
	backRefPrefix = "rec_"
)

// parser drives the scanner over declarations and type expressions.
type parser struct {
	s        *scanner
	raw      *RawStore
	opts     Options
	binders  []int // μ binder ids in scope, innermost last
	warnings []Warning
}

func newParser(src string, opts Options) *parser {
	return &parser{s: newScanner(src), raw: NewRawStore(), opts: opts}
}

// parseDeclaration parses "NAME = TYPEEXPR" after the "type " keyword.
func (p *parser) parseDeclaration() error {
	if err := p.s.skipTrivia(); err != nil {
		return err
	}
	at := p.s.mark()
	name, _, err := p.s.readIdentifier()
	if err != nil {
		return err
	}
	if p.raw.Has(name) {
		p.s.reset(at)
		return p.s.errorf(KindParse, "type %s is repeated", name)
	}
	if err := p.s.consume("="); err != nil {
		return err
	}
	t, err := p.parseType()
	if err != nil {
		return err
	}
	p.raw.declare(name, t)
	return p.s.skipSeparators(';')
}

// parseType parses one type expression, dispatching on its first word.
func (p *parser) parseType() (candid.Type, error) {
	if err := p.s.skipTrivia(); err != nil {
		return nil, err
	}
	if p.s.hasPrefix(binderPrefix) {
		return p.parseBinder()
	}
	name, quoted, err := p.s.readIdentifier()
	if err != nil {
		return nil, err
	}
	if quoted {
		return candid.Reference{Name: name}, nil
	}

	switch name {
	case "blob":
		return candid.Blob(), nil
	case "vec":
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return candid.Vec{Elem: elem}, nil
	case "opt":
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return candid.Opt{Elem: elem}, nil
	case "record":
		return p.parseRecord()
	case "variant":
		return p.parseVariant()
	case "func":
		f, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		return f, nil
	case "service":
		svc, err := p.parseServiceBody()
		if err != nil {
			return nil, err
		}
		return candid.Service{InitArgs: svc.initArgs, Methods: svc.methods}, nil
	}

	if kind, ok := candid.LookupPrimitive(name); ok {
		return candid.Prim(kind), nil
	}
	if id, ok := p.boundBackRef(name); ok {
		return candid.BackRef{ID: id}, nil
	}
	return candid.Reference{Name: name}, nil
}

// parseBinder parses "μrec_N.TYPE".
func (p *parser) parseBinder() (candid.Type, error) {
	p.s.pos += len([]rune(binderPrefix))
	digits := p.s.readDigits()
	if digits == "" {
		return nil, p.s.errorf(KindParse, "expected recursion id after %s", binderPrefix)
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return nil, p.s.errorf(KindParse, "invalid recursion id %s", digits)
	}
	if !p.s.at('.') {
		return nil, p.s.errorf(KindParse, "expected \".\" after %s%s", binderPrefix, digits)
	}
	p.s.pos++

	p.binders = append(p.binders, id)
	body, err := p.parseType()
	p.binders = p.binders[:len(p.binders)-1]
	if err != nil {
		return nil, err
	}
	return candid.Recursion{ID: id, Body: body}, nil
}

// boundBackRef reports whether name is "rec_N" with N bound by an
// enclosing μ binder. Unbound rec_N names are ordinary alias references.
func (p *parser) boundBackRef(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, backRefPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	id, err := strconv.Atoi(digits)
	if err != nil || strconv.Itoa(id) != digits {
		return 0, false
	}
	return id, slices.Contains(p.binders, id)
}

// parseRecord parses the braces of a record. A first field of the form
// "label :" selects a labeled Record, anything else a positional Tuple.
// "record {}" is the empty Record.
func (p *parser) parseRecord() (candid.Type, error) {
	if err := p.s.consume("{"); err != nil {
		return nil, err
	}
	closed, err := p.s.peek('}')
	if err != nil {
		return nil, err
	}
	if closed {
		p.s.pos++
		return candid.Record{}, nil
	}

	labeled, err := p.labelFollows()
	if err != nil {
		return nil, err
	}
	if !labeled {
		return p.parseTupleFields()
	}

	var fields []candid.Field
	seen := make(map[string]bool)
	for {
		closed, err := p.s.peek('}')
		if err != nil {
			return nil, err
		}
		if closed {
			p.s.pos++
			break
		}
		at := p.s.mark()
		label, _, err := p.s.readIdentifier()
		if err != nil {
			return nil, err
		}
		if seen[label] {
			p.s.reset(at)
			return nil, p.s.errorf(KindParse, "field %s is repeated", label)
		}
		seen[label] = true
		if err := p.s.consume(":"); err != nil {
			return nil, err
		}
		t, err := p.parsePayload()
		if err != nil {
			return nil, err
		}
		fields = append(fields, candid.Field{Label: label, Type: t})
		if err := p.s.skipSeparators(';'); err != nil {
			return nil, err
		}
	}
	return candid.NewRecord(fields...), nil
}

func (p *parser) parseTupleFields() (candid.Type, error) {
	var elems []candid.Type
	for {
		closed, err := p.s.peek('}')
		if err != nil {
			return nil, err
		}
		if closed {
			p.s.pos++
			return candid.Tuple{Elems: elems}, nil
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
		if err := p.s.skipSeparators(';'); err != nil {
			return nil, err
		}
	}
}

// labelFollows looks ahead for "identifier :" and restores the cursor.
func (p *parser) labelFollows() (bool, error) {
	if err := p.s.skipTrivia(); err != nil {
		return false, err
	}
	at := p.s.mark()
	defer p.s.reset(at)
	if p.s.hasPrefix(binderPrefix) {
		return false, nil
	}
	if _, _, err := p.s.readIdentifier(); err != nil {
		return false, nil
	}
	return p.s.peek(':')
}

// parseVariant parses "{ tag; tag : T; ... }".
func (p *parser) parseVariant() (candid.Type, error) {
	if err := p.s.consume("{"); err != nil {
		return nil, err
	}
	var cases []candid.Case
	seen := make(map[string]bool)
	for {
		closed, err := p.s.peek('}')
		if err != nil {
			return nil, err
		}
		if closed {
			p.s.pos++
			break
		}
		at := p.s.mark()
		label, _, err := p.s.readIdentifier()
		if err != nil {
			return nil, err
		}
		if seen[label] {
			p.s.reset(at)
			return nil, p.s.errorf(KindParse, "tag %s is repeated", label)
		}
		seen[label] = true

		c := candid.Case{Label: label}
		typed, err := p.s.peek(':')
		if err != nil {
			return nil, err
		}
		if typed {
			p.s.pos++
			if c.Type, err = p.parsePayload(); err != nil {
				return nil, err
			}
		}
		cases = append(cases, c)
		if err := p.s.skipSeparators(';'); err != nil {
			return nil, err
		}
	}
	return candid.NewVariant(cases...), nil
}

// parsePayload parses a field or tag payload. A bare alias name followed
// by another ':' keeps the type after it as a fallback for when the name
// does not resolve.
func (p *parser) parsePayload() (candid.Type, error) {
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	ref, ok := t.(candid.Reference)
	if !ok {
		return t, nil
	}
	stray, err := p.s.peek(':')
	if err != nil || !stray {
		return t, err
	}
	p.s.pos++
	if ref.Fallback, err = p.parseType(); err != nil {
		return nil, err
	}
	return ref, nil
}

// parseFunc parses "( ARGS ) -> ( RETS ) [query|oneway]".
func (p *parser) parseFunc() (candid.Func, error) {
	args, err := p.parseArgList()
	if err != nil {
		return candid.Func{}, err
	}
	if err := p.s.consume("->"); err != nil {
		return candid.Func{}, err
	}
	rets, err := p.parseArgList()
	if err != nil {
		return candid.Func{}, err
	}
	f := candid.Func{Args: args, Rets: rets}
	if ok, err := p.s.skipKeyword("query"); err != nil {
		return candid.Func{}, err
	} else if ok {
		f.Annotation = candid.AnnotationQuery
		return f, nil
	}
	if ok, err := p.s.skipKeyword("oneway"); err != nil {
		return candid.Func{}, err
	} else if ok {
		f.Annotation = candid.AnnotationOneway
	}
	return f, nil
}

// parseArgList parses "( [name :] T, ... )". Argument names are discarded.
func (p *parser) parseArgList() ([]candid.Type, error) {
	if err := p.s.consume("("); err != nil {
		return nil, err
	}
	var out []candid.Type
	for {
		if err := p.s.skipSeparators(','); err != nil {
			return nil, err
		}
		if p.s.at(')') {
			p.s.pos++
			return out, nil
		}
		named, err := p.labelFollows()
		if err != nil {
			return nil, err
		}
		if named {
			if _, _, err := p.s.readIdentifier(); err != nil {
				return nil, err
			}
			if err := p.s.consume(":"); err != nil {
				return nil, err
			}
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

// parseServiceBody parses what follows the "service" keyword:
// "[: ( INIT_ARGS ) ->] { METHOD; ... }".
func (p *parser) parseServiceBody() (*rawService, error) {
	if err := p.s.skipTrivia(); err != nil {
		return nil, err
	}
	svc := &rawService{}
	switch {
	case p.s.at(':'):
		p.s.pos++
		hasArgs, err := p.s.peek('(')
		if err != nil {
			return nil, err
		}
		if hasArgs {
			if svc.initArgs, err = p.parseArgList(); err != nil {
				return nil, err
			}
			if err := p.s.consume("->"); err != nil {
				return nil, err
			}
		}
	case p.s.at('{'):
	default:
		return nil, p.s.errorf(KindParse, "expected \":\" or \"{\" after service")
	}

	if err := p.s.consume("{"); err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for {
		closed, err := p.s.peek('}')
		if err != nil {
			return nil, err
		}
		if closed {
			p.s.pos++
			break
		}
		at := p.s.mark()
		name, _, err := p.s.readIdentifier()
		if err != nil {
			return nil, err
		}
		if err := p.s.consume(":"); err != nil {
			return nil, err
		}
		f, err := p.parseFunc()
		if err != nil {
			return nil, err
		}
		m := candid.Method{Name: name, Func: f}
		if i, dup := index[name]; dup {
			if err := p.duplicateMethod(name, at); err != nil {
				return nil, err
			}
			svc.methods[i] = m
		} else {
			index[name] = len(svc.methods)
			svc.methods = append(svc.methods, m)
		}
		if err := p.s.skipSeparators(';'); err != nil {
			return nil, err
		}
	}
	svc.methods = candid.NewService(nil, svc.methods...).Methods
	return svc, nil
}

// duplicateMethod records a repeated method name. The later declaration
// wins unless strict mode is on.
func (p *parser) duplicateMethod(name string, at int) error {
	if p.opts.Strict {
		p.s.reset(at)
		return p.s.errorf(KindParse, "method %s is repeated", name)
	}
	p.warnings = append(p.warnings, Warning{
		Code:    WarnDuplicateMethod,
		Message: "method " + name + " is repeated; the last declaration wins",
		Offset:  at,
	})
	return nil
}
