package compiler

import (
	"fmt"
	"strings"
)

// CycleInfo describes one group of mutually recursive aliases.
//
// Recursive aliases are legal Candid; the report is informational and
// helps explain where the resolver will insert Recursion nodes.
type CycleInfo struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeCycles reports the recursive alias groups of a raw store.
//
// The algorithm:
//  1. Build alias → referenced aliases graph from the raw trees
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// Nodes are visited in declaration order so the report is deterministic.
// An acyclic store returns an empty list.
func AnalyzeCycles(raw *RawStore) []CycleInfo {
	if raw == nil || raw.Len() == 0 {
		return []CycleInfo{}
	}

	order := raw.Names()
	graph := buildReferenceGraph(raw)
	sccs := tarjanSCC(order, graph)

	cycles := []CycleInfo{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, cycleSCCToInfo(scc, order, graph))
		}
	}
	return cycles
}

// referenceGraph maps alias → aliases referenced from its raw tree.
type referenceGraph map[string][]string

// buildReferenceGraph keeps only edges to declared aliases; references to
// missing names are resolver errors, not cycles.
func buildReferenceGraph(raw *RawStore) referenceGraph {
	graph := make(referenceGraph)
	for _, name := range raw.Names() {
		graph[name] = []string{}
		for _, ref := range raw.References(name) {
			if raw.Has(ref) {
				graph[name] = append(graph[name], ref)
			}
		}
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph referenceGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of alias names.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(order []string, graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToInfo converts an SCC to a CycleInfo. The path starts at the
// member declared first.
func cycleSCCToInfo(scc, order []string, graph referenceGraph) CycleInfo {
	if len(scc) == 1 {
		name := scc[0]
		return CycleInfo{
			Path:    []string{name, name},
			Message: fmt.Sprintf("Self-recursive type: %s → %s", name, name),
		}
	}

	path := reconstructCyclePath(firstDeclared(scc, order), scc, graph)
	return CycleInfo{
		Path:    path,
		Message: fmt.Sprintf("Mutually recursive types: %s", strings.Join(path, " → ")),
	}
}

func firstDeclared(scc, order []string) string {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	for _, n := range order {
		if members[n] {
			return n
		}
	}
	return scc[0]
}

// reconstructCyclePath follows edges inside the SCC from start until it
// returns to start or runs out of unvisited members.
func reconstructCyclePath(start string, scc []string, graph referenceGraph) []string {
	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
