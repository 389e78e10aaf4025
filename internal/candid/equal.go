package candid

// Equivalent reports whether a and b have the same shape. Recursion ids
// and recursion name annotations are ignored; the binder topology must
// match (every BackRef in a points at the binder that corresponds to the
// one its counterpart in b points at).
func Equivalent(a, b Type) bool {
	return equivalent(a, b, map[int]int{}, map[int]int{})
}

// ab maps an id bound in a to the id bound at the same position in b;
// ba is the inverse. Both are restored on the way out of a binder.
func equivalent(a, b Type, ab, ba map[int]int) bool {
	switch x := a.(type) {
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Kind == y.Kind
	case Vec:
		y, ok := b.(Vec)
		return ok && equivalent(x.Elem, y.Elem, ab, ba)
	case Opt:
		y, ok := b.(Opt)
		return ok && equivalent(x.Elem, y.Elem, ab, ba)
	case Record:
		y, ok := b.(Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Label != y.Fields[i].Label || !equivalent(x.Fields[i].Type, y.Fields[i].Type, ab, ba) {
				return false
			}
		}
		return true
	case Tuple:
		y, ok := b.(Tuple)
		return ok && equivalentList(x.Elems, y.Elems, ab, ba)
	case Variant:
		y, ok := b.(Variant)
		if !ok || len(x.Cases) != len(y.Cases) {
			return false
		}
		for i := range x.Cases {
			cx, cy := x.Cases[i], y.Cases[i]
			if cx.Label != cy.Label || (cx.Type == nil) != (cy.Type == nil) {
				return false
			}
			if cx.Type != nil && !equivalent(cx.Type, cy.Type, ab, ba) {
				return false
			}
		}
		return true
	case Func:
		y, ok := b.(Func)
		return ok && equivalentFunc(x, y, ab, ba)
	case Service:
		y, ok := b.(Service)
		if !ok || len(x.Methods) != len(y.Methods) || !equivalentList(x.InitArgs, y.InitArgs, ab, ba) {
			return false
		}
		for i := range x.Methods {
			if x.Methods[i].Name != y.Methods[i].Name || !equivalentFunc(x.Methods[i].Func, y.Methods[i].Func, ab, ba) {
				return false
			}
		}
		return true
	case Recursion:
		y, ok := b.(Recursion)
		if !ok {
			return false
		}
		prevAB, hadAB := ab[x.ID]
		prevBA, hadBA := ba[y.ID]
		ab[x.ID], ba[y.ID] = y.ID, x.ID
		eq := equivalent(x.Body, y.Body, ab, ba)
		restore(ab, x.ID, prevAB, hadAB)
		restore(ba, y.ID, prevBA, hadBA)
		return eq
	case BackRef:
		y, ok := b.(BackRef)
		if !ok {
			return false
		}
		bx, okx := ab[x.ID]
		by, oky := ba[y.ID]
		if !okx && !oky {
			// both free: compare literally
			return x.ID == y.ID
		}
		return okx && oky && bx == y.ID && by == x.ID
	case Reference:
		y, ok := b.(Reference)
		return ok && x.Name == y.Name
	default:
		return false
	}
}

func equivalentFunc(x, y Func, ab, ba map[int]int) bool {
	return x.Annotation == y.Annotation &&
		equivalentList(x.Args, y.Args, ab, ba) &&
		equivalentList(x.Rets, y.Rets, ab, ba)
}

func equivalentList(xs, ys []Type, ab, ba map[int]int) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !equivalent(xs[i], ys[i], ab, ba) {
			return false
		}
	}
	return true
}

func restore(m map[int]int, k, prev int, had bool) {
	if had {
		m[k] = prev
		return
	}
	delete(m, k)
}
