// Package candid provides the canonical type tree for Candid service
// descriptions.
//
// This package contains the data model, the canonical emitter and identity
// helpers only. All other internal packages import candid; candid imports
// nothing internal.
//
// Key design constraints:
//   - Type is a closed sum; every traversal switches over all variants
//   - Record and Variant labels are unique and sorted at construction time
//   - Reference only exists inside the compiler's raw store, never in a
//     resolved tree
//   - Recursion ids are dense per service (0..n-1, allocation order)
//   - Emit is total and deterministic; it is the reference normal form
package candid
