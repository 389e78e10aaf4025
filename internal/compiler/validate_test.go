package compiler

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

func codes(errs []ValidationError) []string {
	return lo.Map(errs, func(e ValidationError, _ int) string { return e.Code })
}

func TestValidate(t *testing.T) {
	nat := candid.Prim(candid.Nat)

	tests := []struct {
		name string
		t    candid.Type
		want []string
	}{
		{
			name: "canonical record",
			t:    candid.NewRecord(candid.Field{Label: "b", Type: nat}, candid.Field{Label: "a", Type: nat}),
		},
		{
			name: "unsorted labels",
			t:    candid.Record{Fields: []candid.Field{{Label: "b", Type: nat}, {Label: "a", Type: nat}}},
			want: []string{ErrUnsortedLabels},
		},
		{
			name: "duplicate tag",
			t:    candid.Variant{Cases: []candid.Case{{Label: "a"}, {Label: "a"}}},
			want: []string{ErrDuplicateLabel},
		},
		{
			name: "reference left",
			t:    candid.Vec{Elem: candid.Reference{Name: "T"}},
			want: []string{ErrUnresolvedRef},
		},
		{
			name: "unbound back-reference",
			t:    candid.Opt{Elem: candid.BackRef{ID: 0}},
			want: []string{ErrUnboundBackRef},
		},
		{
			name: "recursion without back-reference",
			t:    candid.Recursion{ID: 0, Body: nat},
			want: []string{ErrEmptyRecursion},
		},
		{
			name: "sparse ids",
			t:    candid.Recursion{ID: 1, Body: candid.Opt{Elem: candid.BackRef{ID: 1}}},
			want: []string{ErrRecursionIDs},
		},
		{
			name: "repeated ids",
			t: candid.Tuple{Elems: []candid.Type{
				candid.Recursion{ID: 0, Body: candid.Opt{Elem: candid.BackRef{ID: 0}}},
				candid.Recursion{ID: 0, Body: candid.Opt{Elem: candid.BackRef{ID: 0}}},
			}},
			want: []string{ErrRecursionIDs},
		},
		{
			name: "unsorted methods",
			t: candid.Service{Methods: []candid.Method{
				{Name: "z"},
				{Name: "a"},
			}},
			want: []string{ErrUnsortedMethods},
		},
		{
			name: "duplicate methods",
			t: candid.Service{Methods: []candid.Method{
				{Name: "a"},
				{Name: "a"},
			}},
			want: []string{ErrDuplicateMethod},
		},
		{
			name: "nil payload",
			t:    candid.Vec{},
			want: []string{ErrNilType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, codes(Validate(tt.t)))
		})
	}
}

func TestValidationErrorString(t *testing.T) {
	err := ValidationError{Field: "$.a", Message: "bad", Code: ErrNilType}
	assert.Equal(t, "[E209] $.a: bad", err.Error())
}
