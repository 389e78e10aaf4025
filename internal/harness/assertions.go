package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
	"github.com/lazyanubis/ic-canister-kit/internal/compiler"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Type     string // Expectation that failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkFailure compares a parse error with the expect clause.
func checkFailure(expect Expect, err error) []error {
	kind := string(compiler.KindOf(err))
	if expect.ErrorKind == "" {
		return []error{&AssertionError{
			Type:     "parse",
			Expected: "success",
			Actual:   err.Error(),
		}}
	}
	if kind != expect.ErrorKind {
		return []error{&AssertionError{
			Type:     "error_kind",
			Expected: expect.ErrorKind,
			Actual:   fmt.Sprintf("%s (%v)", kind, err),
		}}
	}
	return nil
}

// checkSuccess compares a compiled result with the expect clause.
func checkSuccess(expect Expect, res *compiler.Result) []error {
	var errs []error

	if expect.ErrorKind != "" {
		errs = append(errs, &AssertionError{
			Type:     "error_kind",
			Expected: expect.ErrorKind,
			Actual:   "success",
		})
	}

	if expect.Methods != nil && !maps.Equal(expect.Methods, res.Methods) {
		errs = append(errs, &AssertionError{
			Type:     "methods",
			Expected: formatMethods(expect.Methods),
			Actual:   formatMethods(res.Methods),
		})
	}

	if expect.Canonical != "" {
		if got := candid.Emit(res.Service); got != strings.TrimSpace(expect.Canonical) {
			errs = append(errs, &AssertionError{
				Type:     "canonical",
				Expected: strings.TrimSpace(expect.Canonical),
				Actual:   got,
			})
		}
	}

	if expect.RecursionCount != nil {
		if got := candid.RecursionCount(res.Service); got != *expect.RecursionCount {
			errs = append(errs, &AssertionError{
				Type:     "recursion_count",
				Expected: fmt.Sprint(*expect.RecursionCount),
				Actual:   fmt.Sprint(got),
			})
		}
	}

	if expect.Warnings != nil {
		codes := lo.Map(res.Warnings, func(w compiler.Warning, _ int) string { return w.Code })
		if !slices.Equal(expect.Warnings, codes) {
			errs = append(errs, &AssertionError{
				Type:     "warnings",
				Expected: strings.Join(expect.Warnings, ", "),
				Actual:   strings.Join(codes, ", "),
			})
		}
	}

	return errs
}

// checkInvariants verifies the canonical form and the round-trip law on a
// successfully parsed service.
func checkInvariants(res *compiler.Result) []error {
	var errs []error

	for _, v := range compiler.Validate(res.Service) {
		errs = append(errs, fmt.Errorf("invariant: %w", v))
	}

	text := candid.Emit(res.Service)
	again, err := compiler.Compile(text, compiler.Options{})
	if err != nil {
		return append(errs, fmt.Errorf("round trip: re-parse of canonical text failed: %w", err))
	}
	if !candid.Equivalent(res.Service, again.Service) {
		errs = append(errs, &AssertionError{
			Type:     "round_trip",
			Expected: text,
			Actual:   candid.Emit(again.Service),
		})
	} else if emitted := candid.Emit(again.Service); emitted != text {
		errs = append(errs, &AssertionError{
			Type:     "idempotence",
			Expected: text,
			Actual:   emitted,
		})
	}

	return errs
}

func formatMethods(methods map[string]string) string {
	lines := make([]string, 0, len(methods))
	for _, name := range slices.Sorted(maps.Keys(methods)) {
		lines = append(lines, name+" : "+methods[name])
	}
	return "{" + strings.Join(lines, "; ") + "}"
}
