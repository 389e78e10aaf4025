package candid

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Emit renders a type in canonical Candid text. It is total: any tree
// built from this package's constructors renders, including raw trees.
//
// Rendering rules:
//   - record { a : nat; b : text; }   labeled fields, labels quoted if needed
//   - record { nat; text; }           tuples
//   - variant { a; b : nat; }         payload-less tags have no colon
//   - func (A, B) -> (R) query        annotation suffix only when present
//   - service : (A) -> { m : (A) -> (); }
//   - μrec_0.T and rec_0              recursion binder and back-reference
func Emit(t Type) string {
	var b strings.Builder
	emit(&b, t)
	return b.String()
}

func emit(b *strings.Builder, t Type) {
	switch v := t.(type) {
	case Primitive:
		b.WriteString(v.Kind.String())
	case Vec:
		b.WriteString("vec ")
		emit(b, v.Elem)
	case Opt:
		b.WriteString("opt ")
		emit(b, v.Elem)
	case Record:
		b.WriteString("record { ")
		for i, f := range v.Fields {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(QuoteLabel(f.Label))
			b.WriteString(" : ")
			emit(b, f.Type)
			b.WriteByte(';')
		}
		b.WriteString(" }")
	case Tuple:
		b.WriteString("record { ")
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteByte(' ')
			}
			emit(b, e)
			b.WriteByte(';')
		}
		b.WriteString(" }")
	case Variant:
		b.WriteString("variant { ")
		for i, c := range v.Cases {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(QuoteLabel(c.Label))
			if c.Type != nil {
				b.WriteString(" : ")
				emit(b, c.Type)
			}
			b.WriteByte(';')
		}
		b.WriteString(" }")
	case Func:
		b.WriteString("func ")
		b.WriteString(Signature(v))
	case Service:
		b.WriteString("service ")
		if len(v.InitArgs) > 0 {
			b.WriteString(": ")
			b.WriteString(typeList(v.InitArgs))
			b.WriteString(" -> ")
		}
		b.WriteString("{ ")
		for i, m := range v.Methods {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(QuoteLabel(m.Name))
			b.WriteString(" : ")
			b.WriteString(Signature(m.Func))
			b.WriteByte(';')
		}
		b.WriteString(" }")
	case Recursion:
		fmt.Fprintf(b, "μrec_%d.", v.ID)
		emit(b, v.Body)
	case BackRef:
		fmt.Fprintf(b, "rec_%d", v.ID)
	case Reference:
		b.WriteString(QuoteLabel(v.Name))
	default:
		panic(fmt.Sprintf("candid: unhandled type %T", t))
	}
}

// Signature renders a function without the leading "func " keyword.
func Signature(f Func) string {
	s := typeList(f.Args) + " -> " + typeList(f.Rets)
	if a := f.Annotation.String(); a != "" {
		s += " " + a
	}
	return s
}

func typeList(ts []Type) string {
	return "(" + strings.Join(lo.Map(ts, func(t Type, _ int) string { return Emit(t) }), ", ") + ")"
}

// MethodTable maps each method name to its rendered signature.
func MethodTable(s Service) map[string]string {
	table := make(map[string]string, len(s.Methods))
	for _, m := range s.Methods {
		table[m.Name] = Signature(m.Func)
	}
	return table
}
