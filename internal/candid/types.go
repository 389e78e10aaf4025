package candid

import (
	"cmp"
	"slices"
)

// PrimitiveKind tags a Candid scalar type.
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	Nat
	Int
	Nat8
	Nat16
	Nat32
	Nat64
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	Null
	Text
	Principal
	Unknown
	Empty
	Reserved
)

var primitiveNames = [...]string{
	Bool:      "bool",
	Nat:       "nat",
	Int:       "int",
	Nat8:      "nat8",
	Nat16:     "nat16",
	Nat32:     "nat32",
	Nat64:     "nat64",
	Int8:      "int8",
	Int16:     "int16",
	Int32:     "int32",
	Int64:     "int64",
	Float32:   "float32",
	Float64:   "float64",
	Null:      "null",
	Text:      "text",
	Principal: "principal",
	Unknown:   "unknown",
	Empty:     "empty",
	Reserved:  "reserved",
}

// String returns the Candid keyword for the kind.
func (k PrimitiveKind) String() string {
	if k < 0 || int(k) >= len(primitiveNames) {
		return "unknown"
	}
	return primitiveNames[k]
}

// LookupPrimitive maps a keyword to its kind.
func LookupPrimitive(name string) (PrimitiveKind, bool) {
	for i, n := range primitiveNames {
		if n == name {
			return PrimitiveKind(i), true
		}
	}
	return 0, false
}

// Annotation is the effect annotation attached to a function signature.
type Annotation int

const (
	AnnotationNone Annotation = iota
	AnnotationQuery
	AnnotationOneway
)

// String returns the annotation keyword, or "" for AnnotationNone.
func (a Annotation) String() string {
	switch a {
	case AnnotationQuery:
		return "query"
	case AnnotationOneway:
		return "oneway"
	default:
		return ""
	}
}

// Type is a sealed interface over the Candid type tree.
// Only the types in this file implement it.
type Type interface {
	candidType() // Sealed - only these types implement it
}

// Primitive is a scalar leaf.
type Primitive struct {
	Kind PrimitiveKind
}

func (Primitive) candidType() {}

// Vec is a homogeneous sequence.
type Vec struct {
	Elem Type
}

func (Vec) candidType() {}

// Opt is an optional value.
type Opt struct {
	Elem Type
}

func (Opt) candidType() {}

// Field is one labeled member of a Record.
type Field struct {
	Label string
	Type  Type
}

// Record is a labeled aggregate. Fields are sorted by label.
type Record struct {
	Fields []Field
}

func (Record) candidType() {}

// Tuple is a positional record; element order is significant.
type Tuple struct {
	Elems []Type
}

func (Tuple) candidType() {}

// Case is one tag of a Variant. Type is nil when the tag has no payload.
type Case struct {
	Label string
	Type  Type
}

// Variant is a tagged union. Cases are sorted by label.
type Variant struct {
	Cases []Case
}

func (Variant) candidType() {}

// Func is a function signature.
type Func struct {
	Args       []Type
	Rets       []Type
	Annotation Annotation
}

func (Func) candidType() {}

// Method is a named function signature of a service.
type Method struct {
	Name string
	Func Func
}

// Service lists methods sorted by name, with optional init arguments.
type Service struct {
	InitArgs []Type
	Methods  []Method
}

func (Service) candidType() {}

// Recursion marks the head of a recursive tree. Name is the alias that
// introduced it, or "" when the binder came from μ notation.
type Recursion struct {
	ID   int
	Name string
	Body Type
}

func (Recursion) candidType() {}

// BackRef points at the enclosing Recursion with the same ID.
type BackRef struct {
	ID int
}

func (BackRef) candidType() {}

// Reference is an unresolved alias use. It only appears in raw trees
// held by the compiler; resolution eliminates it.
type Reference struct {
	Name string
	// Fallback is the type parsed after a stray ':' following the name.
	// The resolver uses it only when Name does not resolve.
	Fallback Type
}

func (Reference) candidType() {}

// NewRecord builds a Record with fields sorted by label.
func NewRecord(fields ...Field) Record {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b Field) int { return cmp.Compare(a.Label, b.Label) })
	return Record{Fields: sorted}
}

// NewVariant builds a Variant with cases sorted by label.
func NewVariant(cases ...Case) Variant {
	sorted := slices.Clone(cases)
	slices.SortStableFunc(sorted, func(a, b Case) int { return cmp.Compare(a.Label, b.Label) })
	return Variant{Cases: sorted}
}

// NewService builds a Service with methods sorted by name.
func NewService(initArgs []Type, methods ...Method) Service {
	sorted := slices.Clone(methods)
	slices.SortStableFunc(sorted, func(a, b Method) int { return cmp.Compare(a.Name, b.Name) })
	return Service{InitArgs: initArgs, Methods: sorted}
}

// Prim is shorthand for Primitive{Kind: k}.
func Prim(k PrimitiveKind) Primitive {
	return Primitive{Kind: k}
}

// Blob is the desugared form of the blob keyword: vec nat8.
func Blob() Vec {
	return Vec{Elem: Prim(Nat8)}
}

// Method looks up a method by name.
func (s Service) Method(name string) (Func, bool) {
	i, ok := slices.BinarySearchFunc(s.Methods, name, func(m Method, n string) int {
		return cmp.Compare(m.Name, n)
	})
	if !ok {
		return Func{}, false
	}
	return s.Methods[i].Func, true
}
