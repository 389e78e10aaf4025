package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCycles(t *testing.T) {
	tests := []struct {
		name     string
		decls    string
		want     [][]string
		messages []string
	}{
		{
			name:  "acyclic",
			decls: `type A = vec B; type B = nat;`,
			want:  [][]string{},
		},
		{
			name:     "self",
			decls:    `type L = opt record { head : nat; tail : L };`,
			want:     [][]string{{"L", "L"}},
			messages: []string{"Self-recursive type: L → L"},
		},
		{
			name:     "mutual",
			decls:    `type B = record { a : A }; type A = record { b : B };`,
			want:     [][]string{{"B", "A", "B"}},
			messages: []string{"Mutually recursive types: B → A → B"},
		},
		{
			name:  "missing names are not cycles",
			decls: `type A = vec Missing;`,
			want:  [][]string{},
		},
		{
			name:  "two groups",
			decls: `type X = opt X; type P = record { q : Q }; type Q = variant { p : P; stop };`,
			want:  [][]string{{"X", "X"}, {"P", "Q", "P"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycles := AnalyzeCycles(rawStore(t, tt.decls))
			paths := [][]string{}
			for _, c := range cycles {
				paths = append(paths, c.Path)
			}
			assert.ElementsMatch(t, tt.want, paths)
			for i, msg := range tt.messages {
				require.Greater(t, len(cycles), i)
				assert.Equal(t, msg, cycles[i].Message)
			}
		})
	}
}

func TestAnalyzeCyclesEmpty(t *testing.T) {
	assert.Empty(t, AnalyzeCycles(nil))
	assert.Empty(t, AnalyzeCycles(NewRawStore()))
}
