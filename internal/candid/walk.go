package candid

// Children returns the direct sub-trees of t in emission order.
// Payload-less variant cases contribute nothing.
func Children(t Type) []Type {
	switch v := t.(type) {
	case Vec:
		return []Type{v.Elem}
	case Opt:
		return []Type{v.Elem}
	case Record:
		out := make([]Type, 0, len(v.Fields))
		for _, f := range v.Fields {
			out = append(out, f.Type)
		}
		return out
	case Tuple:
		return v.Elems
	case Variant:
		var out []Type
		for _, c := range v.Cases {
			if c.Type != nil {
				out = append(out, c.Type)
			}
		}
		return out
	case Func:
		out := make([]Type, 0, len(v.Args)+len(v.Rets))
		out = append(out, v.Args...)
		return append(out, v.Rets...)
	case Service:
		out := append([]Type{}, v.InitArgs...)
		for _, m := range v.Methods {
			out = append(out, m.Func)
		}
		return out
	case Recursion:
		return []Type{v.Body}
	case Reference:
		if v.Fallback != nil {
			return []Type{v.Fallback}
		}
		return nil
	default:
		return nil
	}
}

// Walk visits t depth-first, left to right. Returning false from fn skips
// the children of the visited node.
func Walk(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	for _, c := range Children(t) {
		Walk(c, fn)
	}
}

// RecursionCount returns the number of Recursion nodes in t.
func RecursionCount(t Type) int {
	n := 0
	Walk(t, func(t Type) bool {
		if _, ok := t.(Recursion); ok {
			n++
		}
		return true
	})
	return n
}

// FreeBackRefs returns the ids of BackRef leaves in t that are not bound
// by a Recursion inside t, in first-seen order.
func FreeBackRefs(t Type) []int {
	var free []int
	seen := make(map[int]bool)
	var visit func(Type, map[int]int)
	visit = func(t Type, bound map[int]int) {
		switch v := t.(type) {
		case BackRef:
			if bound[v.ID] == 0 && !seen[v.ID] {
				seen[v.ID] = true
				free = append(free, v.ID)
			}
			return
		case Recursion:
			bound[v.ID]++
			visit(v.Body, bound)
			bound[v.ID]--
			return
		}
		for _, c := range Children(t) {
			visit(c, bound)
		}
	}
	visit(t, make(map[int]int))
	return free
}
