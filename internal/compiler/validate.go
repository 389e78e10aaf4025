package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

// Validation error codes (E200-E299)
const (
	ErrUnsortedLabels  = "E201" // record/variant labels not ascending
	ErrDuplicateLabel  = "E202" // label repeated within a record/variant
	ErrUnresolvedRef   = "E203" // Reference left in a resolved tree
	ErrUnboundBackRef  = "E204" // BackRef without a matching ancestor
	ErrEmptyRecursion  = "E205" // Recursion whose body never refers back
	ErrRecursionIDs    = "E206" // recursion ids not dense or repeated
	ErrUnsortedMethods = "E207" // service methods not ascending
	ErrDuplicateMethod = "E208" // method name repeated
	ErrNilType         = "E209" // missing sub-tree
)

// ValidationError represents a canonical-form violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a resolved tree against the canonical-form invariants.
// Returns all errors found (does not fail-fast).
//
// Checked invariants:
//   - labels in every Record and Variant are unique and strictly ascending
//   - service methods are unique and ascending
//   - no Reference remains
//   - every BackRef lies inside a Recursion with the same id
//   - every Recursion body contains a BackRef to it
//   - recursion ids form {0..n-1} with no duplicates
func Validate(t candid.Type) []ValidationError {
	v := &validator{bound: make(map[int]int), used: make(map[int]bool)}
	v.visit(t, "$")

	counts := lo.CountValues(v.ids)
	for _, id := range lo.Uniq(v.ids) {
		if counts[id] > 1 {
			v.add("$", ErrRecursionIDs, fmt.Sprintf("recursion id %d used %d times", id, counts[id]))
		}
	}
	sorted := slices.Sorted(slices.Values(lo.Uniq(v.ids)))
	for i, id := range sorted {
		if id != i {
			v.add("$", ErrRecursionIDs, fmt.Sprintf("recursion ids are not dense: expected %d, found %d", i, id))
			break
		}
	}
	return v.errs
}

type validator struct {
	errs  []ValidationError
	bound map[int]int  // id -> open Recursion count on the current path
	used  map[int]bool // id -> BackRef seen under the innermost open binder
	ids   []int        // Recursion ids in visit order
}

func (v *validator) add(field, code, message string) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: message, Code: code})
}

func (v *validator) visit(t candid.Type, path string) {
	switch n := t.(type) {
	case nil:
		v.add(path, ErrNilType, "missing type")
	case candid.Primitive:
	case candid.Vec:
		v.visit(n.Elem, path+".vec")
	case candid.Opt:
		v.visit(n.Elem, path+".opt")
	case candid.Record:
		labels := lo.Map(n.Fields, func(f candid.Field, _ int) string { return f.Label })
		v.checkLabels(path, labels)
		for _, f := range n.Fields {
			v.visit(f.Type, path+"."+f.Label)
		}
	case candid.Tuple:
		for i, e := range n.Elems {
			v.visit(e, fmt.Sprintf("%s[%d]", path, i))
		}
	case candid.Variant:
		labels := lo.Map(n.Cases, func(c candid.Case, _ int) string { return c.Label })
		v.checkLabels(path, labels)
		for _, c := range n.Cases {
			if c.Type != nil {
				v.visit(c.Type, path+"."+c.Label)
			}
		}
	case candid.Func:
		v.visitFunc(n, path)
	case candid.Service:
		for i, a := range n.InitArgs {
			v.visit(a, fmt.Sprintf("%s.init[%d]", path, i))
		}
		names := lo.Map(n.Methods, func(m candid.Method, _ int) string { return m.Name })
		for _, dup := range lo.FindDuplicates(names) {
			v.add(path, ErrDuplicateMethod, fmt.Sprintf("method %q is repeated", dup))
		}
		if !slices.IsSorted(names) {
			v.add(path, ErrUnsortedMethods, "methods are not sorted by name")
		}
		for _, m := range n.Methods {
			v.visitFunc(m.Func, path+"."+m.Name)
		}
	case candid.Recursion:
		v.ids = append(v.ids, n.ID)
		outer := v.used[n.ID]
		v.used[n.ID] = false
		v.bound[n.ID]++
		v.visit(n.Body, fmt.Sprintf("%s.μrec_%d", path, n.ID))
		v.bound[n.ID]--
		if !v.used[n.ID] {
			v.add(path, ErrEmptyRecursion, fmt.Sprintf("recursion %d has no back-reference", n.ID))
		}
		v.used[n.ID] = outer
	case candid.BackRef:
		if v.bound[n.ID] == 0 {
			v.add(path, ErrUnboundBackRef, fmt.Sprintf("rec_%d has no enclosing recursion", n.ID))
			return
		}
		v.used[n.ID] = true
	case candid.Reference:
		v.add(path, ErrUnresolvedRef, fmt.Sprintf("unresolved reference %s", n.Name))
	default:
		v.add(path, ErrNilType, fmt.Sprintf("unknown node %T", t))
	}
}

func (v *validator) visitFunc(f candid.Func, path string) {
	for i, a := range f.Args {
		v.visit(a, fmt.Sprintf("%s.args[%d]", path, i))
	}
	for i, r := range f.Rets {
		v.visit(r, fmt.Sprintf("%s.rets[%d]", path, i))
	}
}

// checkLabels reports duplicates and ordering problems in one label list.
func (v *validator) checkLabels(path string, labels []string) {
	for _, dup := range lo.FindDuplicates(labels) {
		v.add(path, ErrDuplicateLabel, fmt.Sprintf("label %q is repeated", dup))
	}
	for i := 1; i < len(labels); i++ {
		if strings.Compare(labels[i-1], labels[i]) > 0 {
			v.add(path, ErrUnsortedLabels, fmt.Sprintf("label %q comes after %q", labels[i], labels[i-1]))
			return
		}
	}
}
