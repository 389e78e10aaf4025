package candid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChildren(t *testing.T) {
	nat := Prim(Nat)

	assert.Empty(t, Children(nat))
	assert.Empty(t, Children(BackRef{ID: 0}))
	assert.Equal(t, []Type{nat}, Children(Vec{Elem: nat}))
	assert.Equal(t, []Type{nat}, Children(NewVariant(Case{Label: "a"}, Case{Label: "b", Type: nat})))
	assert.Equal(t, []Type{nat, Prim(Text)}, Children(Func{Args: []Type{nat}, Rets: []Type{Prim(Text)}}))
	assert.Equal(t, []Type{nat}, Children(Reference{Name: "X", Fallback: nat}))
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := Vec{Elem: Opt{Elem: Prim(Nat)}}

	var seen []string
	Walk(tree, func(t Type) bool {
		seen = append(seen, Emit(t))
		_, isOpt := t.(Opt)
		return !isOpt
	})
	assert.Equal(t, []string{"vec opt nat", "opt nat"}, seen)
}

func TestRecursionCount(t *testing.T) {
	inner := Recursion{ID: 1, Body: Opt{Elem: BackRef{ID: 1}}}
	outer := Recursion{ID: 0, Body: Tuple{Elems: []Type{inner, BackRef{ID: 0}}}}

	assert.Equal(t, 0, RecursionCount(Prim(Nat)))
	assert.Equal(t, 2, RecursionCount(outer))
}

func TestFreeBackRefs(t *testing.T) {
	tests := []struct {
		name string
		t    Type
		want []int
	}{
		{"closed", Recursion{ID: 0, Body: Opt{Elem: BackRef{ID: 0}}}, nil},
		{"open", NewRecord(Field{Label: "a", Type: BackRef{ID: 2}}), []int{2}},
		{"partly bound", Recursion{ID: 0, Body: Tuple{Elems: []Type{BackRef{ID: 0}, BackRef{ID: 1}, BackRef{ID: 1}}}}, []int{1}},
		{"bound only inside", Tuple{Elems: []Type{Recursion{ID: 0, Body: BackRef{ID: 0}}, BackRef{ID: 0}}}, []int{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FreeBackRefs(tt.t))
		})
	}
}
