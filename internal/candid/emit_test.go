package candid

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func TestEmit(t *testing.T) {
	nat := Prim(Nat)
	text := Prim(Text)

	tests := []struct {
		name string
		t    Type
		want string
	}{
		{"primitive", Prim(Principal), "principal"},
		{"vec", Vec{Elem: nat}, "vec nat"},
		{"blob", Blob(), "vec nat8"},
		{"opt", Opt{Elem: Opt{Elem: text}}, "opt opt text"},
		{"empty record", Record{}, "record {  }"},
		{"record", NewRecord(Field{Label: "b", Type: text}, Field{Label: "a", Type: nat}), "record { a : nat; b : text; }"},
		{"quoted labels", NewRecord(Field{Label: "with space", Type: nat}, Field{Label: "opt", Type: nat}), `record { "opt" : nat; "with space" : nat; }`},
		{"tuple", Tuple{Elems: []Type{nat, text}}, "record { nat; text; }"},
		{"empty variant", Variant{}, "variant {  }"},
		{"variant", NewVariant(Case{Label: "ok", Type: nat}, Case{Label: "err"}), "variant { err; ok : nat; }"},
		{"func", Func{Args: []Type{nat, text}, Rets: []Type{nat}}, "func (nat, text) -> (nat)"},
		{"query func", Func{Annotation: AnnotationQuery}, "func () -> () query"},
		{"oneway func", Func{Args: []Type{nat}, Annotation: AnnotationOneway}, "func (nat) -> () oneway"},
		{"service", NewService(nil, Method{Name: "b", Func: Func{}}, Method{Name: "a", Func: Func{Rets: []Type{nat}}}), "service { a : () -> (nat); b : () -> (); }"},
		{"service with init", NewService([]Type{text}), "service : (text) -> {  }"},
		{"recursion", Recursion{ID: 3, Name: "L", Body: Opt{Elem: BackRef{ID: 3}}}, "μrec_3.opt rec_3"},
		{"reference", Reference{Name: "Account"}, "Account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Emit(tt.t))
		})
	}
}

func TestEmitPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { Emit(nil) })
}

func TestSignature(t *testing.T) {
	f := Func{Args: []Type{Prim(Text)}, Rets: []Type{Prim(Text)}, Annotation: AnnotationQuery}
	assert.Equal(t, "(text) -> (text) query", Signature(f))
}

func TestMethodTable(t *testing.T) {
	svc := NewService(nil,
		Method{Name: "get", Func: Func{Rets: []Type{Prim(Nat)}, Annotation: AnnotationQuery}},
		Method{Name: "set", Func: Func{Args: []Type{Prim(Nat)}}},
	)

	assert.Equal(t, map[string]string{
		"get": "() -> (nat) query",
		"set": "(nat) -> ()",
	}, MethodTable(svc))
	assert.Empty(t, MethodTable(Service{}))
}

func TestEmitGolden(t *testing.T) {
	account := NewRecord(
		Field{Label: "owner", Type: Prim(Principal)},
		Field{Label: "subaccount", Type: Opt{Elem: Blob()}},
	)
	tree := Recursion{ID: 0, Name: "Tree", Body: NewVariant(
		Case{Label: "leaf"},
		Case{Label: "node", Type: Tuple{Elems: []Type{BackRef{ID: 0}, Prim(Int), BackRef{ID: 0}}}},
	)}
	svc := NewService([]Type{account},
		Method{Name: "balance_of", Func: Func{Args: []Type{account}, Rets: []Type{Prim(Nat)}, Annotation: AnnotationQuery}},
		Method{Name: "notify", Func: Func{Args: []Type{Func{Args: []Type{Prim(Text)}, Annotation: AnnotationOneway}}}},
		Method{Name: "tree", Func: Func{Rets: []Type{tree}}},
	)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "ledger_service", []byte(Emit(svc)+"\n"))
}
