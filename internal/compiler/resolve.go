package compiler

import (
	"fmt"
	"slices"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

// binder maps a μ binder id from the source text to the id allocated for
// it in the resolved tree.
type binder struct {
	src int
	id  int
}

// resolver is the second pass. It turns raw trees into canonical trees
// free of Reference, inserting Recursion/BackRef pairs at cycles.
//
// State carried across calls:
//   - resolved: closed trees of aliases already resolved (memoization)
//   - path: aliases currently being resolved, outermost first
//   - recIDs: aliases on path that were found to be recursive
//   - binders: μ binders currently open
//
// path, recIDs and binders are reset per signature; resolved and the id
// counter live for the whole service.
type resolver struct {
	raw      *RawStore
	resolved map[string]candid.Type
	path     []string
	recIDs   map[string]int
	binders  []binder
	next     int
}

func newResolver(raw *RawStore) *resolver {
	return &resolver{
		raw:      raw,
		resolved: make(map[string]candid.Type),
		recIDs:   make(map[string]int),
	}
}

// fresh starts a new recursion context for one signature.
func (r *resolver) fresh() {
	r.path = r.path[:0]
	clear(r.recIDs)
	r.binders = r.binders[:0]
}

// resolveService resolves init args and every method, each with its own
// recursion context.
func (r *resolver) resolveService(svc *rawService) (candid.Service, error) {
	out := candid.Service{}
	for _, a := range svc.initArgs {
		r.fresh()
		t, err := r.resolveType(a)
		if err != nil {
			return candid.Service{}, err
		}
		out.InitArgs = append(out.InitArgs, t)
	}
	for _, m := range svc.methods {
		r.fresh()
		f, err := r.resolveFunc(m.Func)
		if err != nil {
			return candid.Service{}, fmt.Errorf("method %s: %w", m.Name, err)
		}
		out.Methods = append(out.Methods, candid.Method{Name: m.Name, Func: f})
	}
	return r.preorder(out), nil
}

// preorder renumbers every Recursion of svc from 0 in emission order: init
// args first, then methods by name, outer binders before inner ones.
func (r *resolver) preorder(svc candid.Service) candid.Service {
	r.next = 0
	svc.InitArgs = r.renumberAll(svc.InitArgs)
	for i, m := range svc.Methods {
		svc.Methods[i].Func = candid.Func{
			Args:       r.renumberAll(m.Func.Args),
			Rets:       r.renumberAll(m.Func.Rets),
			Annotation: m.Func.Annotation,
		}
	}
	return svc
}

func (r *resolver) renumberAll(ts []candid.Type) []candid.Type {
	if ts == nil {
		return nil
	}
	out := make([]candid.Type, len(ts))
	for i, t := range ts {
		out[i] = r.renumber(t)
	}
	return out
}

// resolveName resolves an alias by name.
func (r *resolver) resolveName(name string) (candid.Type, error) {
	if t, ok := r.resolved[name]; ok {
		return r.renumber(t), nil
	}
	if slices.Contains(r.path, name) {
		if id, ok := r.recIDs[name]; ok {
			return candid.BackRef{ID: id}, nil
		}
		id, err := r.bind(name)
		if err != nil {
			return nil, err
		}
		return candid.BackRef{ID: id}, nil
	}

	raw, ok := r.raw.Lookup(name)
	if !ok {
		return nil, newMissingTypeError(name)
	}
	r.path = append(r.path, name)
	body, err := r.resolveType(raw)
	if err != nil {
		return nil, err
	}
	if err := r.pop(); err != nil {
		return nil, err
	}

	if _, recursive := r.recIDs[name]; recursive {
		id, err := r.unbind(name)
		if err != nil {
			return nil, err
		}
		return candid.Recursion{ID: id, Name: name, Body: body}, nil
	}
	// A body that still points at an open binder above it is not closed
	// and must not be reused elsewhere.
	if len(candid.FreeBackRefs(body)) == 0 {
		r.resolved[name] = body
	}
	return body, nil
}

// resolveType walks a raw tree structurally.
func (r *resolver) resolveType(t candid.Type) (candid.Type, error) {
	switch v := t.(type) {
	case candid.Primitive:
		return v, nil
	case candid.Vec:
		elem, err := r.resolveType(v.Elem)
		if err != nil {
			return nil, err
		}
		return candid.Vec{Elem: elem}, nil
	case candid.Opt:
		elem, err := r.resolveType(v.Elem)
		if err != nil {
			return nil, err
		}
		return candid.Opt{Elem: elem}, nil
	case candid.Record:
		if len(v.Fields) == 0 {
			return candid.Record{}, nil
		}
		fields := make([]candid.Field, len(v.Fields))
		for i, f := range v.Fields {
			ft, err := r.resolveType(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = candid.Field{Label: f.Label, Type: ft}
		}
		return candid.Record{Fields: fields}, nil
	case candid.Tuple:
		elems, err := r.resolveList(v.Elems)
		if err != nil {
			return nil, err
		}
		return candid.Tuple{Elems: elems}, nil
	case candid.Variant:
		if len(v.Cases) == 0 {
			return candid.Variant{}, nil
		}
		cases := make([]candid.Case, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = candid.Case{Label: c.Label}
			if c.Type == nil {
				continue
			}
			ct, err := r.resolveType(c.Type)
			if err != nil {
				return nil, err
			}
			cases[i].Type = ct
		}
		return candid.Variant{Cases: cases}, nil
	case candid.Func:
		return r.resolveFunc(v)
	case candid.Service:
		args, err := r.resolveList(v.InitArgs)
		if err != nil {
			return nil, err
		}
		var methods []candid.Method
		for _, m := range v.Methods {
			f, err := r.resolveFunc(m.Func)
			if err != nil {
				return nil, err
			}
			methods = append(methods, candid.Method{Name: m.Name, Func: f})
		}
		return candid.Service{InitArgs: args, Methods: methods}, nil
	case candid.Reference:
		return r.resolveReference(v)
	case candid.Recursion:
		return r.resolveBinder(v)
	case candid.BackRef:
		for i := len(r.binders) - 1; i >= 0; i-- {
			if r.binders[i].src == v.ID {
				return candid.BackRef{ID: r.binders[i].id}, nil
			}
		}
		return nil, newResolverError(KindCommon, "", fmt.Sprintf("rec_%d is not bound", v.ID))
	default:
		return nil, newResolverError(KindCommon, "", fmt.Sprintf("unexpected raw node %T", t))
	}
}

func (r *resolver) resolveFunc(f candid.Func) (candid.Func, error) {
	args, err := r.resolveList(f.Args)
	if err != nil {
		return candid.Func{}, err
	}
	rets, err := r.resolveList(f.Rets)
	if err != nil {
		return candid.Func{}, err
	}
	return candid.Func{Args: args, Rets: rets, Annotation: f.Annotation}, nil
}

func (r *resolver) resolveList(ts []candid.Type) ([]candid.Type, error) {
	if ts == nil {
		return nil, nil
	}
	out := make([]candid.Type, len(ts))
	for i, t := range ts {
		rt, err := r.resolveType(t)
		if err != nil {
			return nil, err
		}
		out[i] = rt
	}
	return out, nil
}

// resolveReference handles an alias use inside a raw tree. When the alias
// is missing and the parser captured a fallback type, the fallback is
// resolved instead.
func (r *resolver) resolveReference(ref candid.Reference) (candid.Type, error) {
	if id, ok := r.recIDs[ref.Name]; ok {
		return candid.BackRef{ID: id}, nil
	}
	if slices.Contains(r.path, ref.Name) {
		id, err := r.bind(ref.Name)
		if err != nil {
			return nil, err
		}
		return candid.BackRef{ID: id}, nil
	}
	if ref.Fallback != nil && !r.raw.Has(ref.Name) {
		return r.resolveType(ref.Fallback)
	}
	return r.resolveName(ref.Name)
}

// resolveBinder renumbers a μ binder read from the source. A binder whose
// body never mentions it is dropped so every Recursion keeps a BackRef.
func (r *resolver) resolveBinder(rec candid.Recursion) (candid.Type, error) {
	if !mentions(rec.Body, rec.ID) {
		return r.resolveType(rec.Body)
	}
	id := r.allocate()
	r.binders = append(r.binders, binder{src: rec.ID, id: id})
	body, err := r.resolveType(rec.Body)
	r.binders = r.binders[:len(r.binders)-1]
	if err != nil {
		return nil, err
	}
	return candid.Recursion{ID: id, Body: body}, nil
}

// mentions reports whether a BackRef to id occurs in t outside any inner
// binder that shadows id.
func mentions(t candid.Type, id int) bool {
	switch v := t.(type) {
	case candid.BackRef:
		return v.ID == id
	case candid.Recursion:
		if v.ID == id {
			return false
		}
	}
	for _, c := range candid.Children(t) {
		if mentions(c, id) {
			return true
		}
	}
	return false
}

func (r *resolver) allocate() int {
	id := r.next
	r.next++
	return id
}

// bind allocates a recursion id for an alias found to re-enter itself.
func (r *resolver) bind(name string) (int, error) {
	if _, ok := r.recIDs[name]; ok {
		return 0, newResolverError(KindDuplicateRecursionBinding, name,
			fmt.Sprintf("recursion binding for %s already exists", name))
	}
	id := r.allocate()
	r.recIDs[name] = id
	return id, nil
}

func (r *resolver) unbind(name string) (int, error) {
	id, ok := r.recIDs[name]
	if !ok {
		return 0, newResolverError(KindMissingRecursionBinding, name,
			fmt.Sprintf("no recursion binding for %s", name))
	}
	delete(r.recIDs, name)
	return id, nil
}

func (r *resolver) pop() error {
	if len(r.path) == 0 {
		return newResolverError(KindEmptyPathPop, "", "resolution path is empty")
	}
	r.path = r.path[:len(r.path)-1]
	return nil
}

// renumber returns t with every Recursion given a fresh id, so a cached
// tree reused in several places never repeats an id.
func (r *resolver) renumber(t candid.Type) candid.Type {
	if candid.RecursionCount(t) == 0 {
		return t
	}
	return r.renumberIn(t, map[int]int{})
}

func (r *resolver) renumberIn(t candid.Type, ids map[int]int) candid.Type {
	switch v := t.(type) {
	case candid.Recursion:
		prev, had := ids[v.ID]
		ids[v.ID] = r.allocate()
		out := candid.Recursion{ID: ids[v.ID], Name: v.Name, Body: r.renumberIn(v.Body, ids)}
		if had {
			ids[v.ID] = prev
		} else {
			delete(ids, v.ID)
		}
		return out
	case candid.BackRef:
		if id, ok := ids[v.ID]; ok {
			return candid.BackRef{ID: id}
		}
		return v
	case candid.Vec:
		return candid.Vec{Elem: r.renumberIn(v.Elem, ids)}
	case candid.Opt:
		return candid.Opt{Elem: r.renumberIn(v.Elem, ids)}
	case candid.Record:
		if len(v.Fields) == 0 {
			return v
		}
		fields := make([]candid.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = candid.Field{Label: f.Label, Type: r.renumberIn(f.Type, ids)}
		}
		return candid.Record{Fields: fields}
	case candid.Tuple:
		return candid.Tuple{Elems: r.renumberList(v.Elems, ids)}
	case candid.Variant:
		if len(v.Cases) == 0 {
			return v
		}
		cases := make([]candid.Case, len(v.Cases))
		for i, c := range v.Cases {
			cases[i] = candid.Case{Label: c.Label}
			if c.Type != nil {
				cases[i].Type = r.renumberIn(c.Type, ids)
			}
		}
		return candid.Variant{Cases: cases}
	case candid.Func:
		return r.renumberFunc(v, ids)
	case candid.Service:
		var methods []candid.Method
		for _, m := range v.Methods {
			methods = append(methods, candid.Method{Name: m.Name, Func: r.renumberFunc(m.Func, ids)})
		}
		return candid.Service{InitArgs: r.renumberList(v.InitArgs, ids), Methods: methods}
	default:
		return t
	}
}

func (r *resolver) renumberFunc(f candid.Func, ids map[int]int) candid.Func {
	return candid.Func{
		Args:       r.renumberList(f.Args, ids),
		Rets:       r.renumberList(f.Rets, ids),
		Annotation: f.Annotation,
	}
}

func (r *resolver) renumberList(ts []candid.Type, ids map[int]int) []candid.Type {
	if ts == nil {
		return nil
	}
	out := make([]candid.Type, len(ts))
	for i, t := range ts {
		out[i] = r.renumberIn(t, ids)
	}
	return out
}
