// Package types implements the ScriptLang type lattice: base kinds, structs, fixed
// arrays, references and function signatures, together with slot-size, equality and
// assignability rules (§3, §4.3).
//
// A [Type] is a tagged value modeled the way the teacher repo models its own tagged
// AST and object values (a Go interface with one concrete struct per variant,
// switched over with a type switch) rather than as a class hierarchy, per the
// visitor guidance in §9.
package types

import (
	"fmt"
	"strings"
)

// BasicKind enumerates the one-slot base kinds.
type BasicKind int

const (
	INT BasicKind = iota
	FLOAT
	BOOL
	STRING
	ANY
)

// String renders a basic kind using the ScriptLang keyword spelling.
func (k BasicKind) String() string {
	switch k {
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case BOOL:
		return "BOOL"
	case STRING:
		return "STRING"
	case ANY:
		return "ANY"
	default:
		return "INVALID"
	}
}

// Type is the common interface implemented by every type-lattice variant.
type Type interface {
	// Size returns the number of 8-byte VM slots a value of this type occupies.
	// Function types have no runtime representation and return 0.
	Size() int
	// String renders the type the way it would be written in ScriptLang source.
	String() string
	isType()
}

// Basic is a one-slot primitive type.
type Basic struct {
	Kind BasicKind
}

func (*Basic) isType()      {}
func (b *Basic) Size() int  { return 1 }
func (b *Basic) String() string { return b.Kind.String() }

// Field is one named, typed member of a Struct, in declaration order.
type Field struct {
	Name string
	Type Type
}

// Struct is a named aggregate of fields, laid out in declaration order.
// Invariant T7: no Field.Type may be a *Ref.
type Struct struct {
	Name   string
	Fields []Field
}

func (*Struct) isType() {}

// Size is the sum of every field's size.
func (s *Struct) Size() int {
	return s.sizeGuarded(map[*Struct]bool{})
}

// sizeGuarded walks Fields tracking the structs already on the current path,
// so a cyclic Struct graph that slipped past sema's cycle check (it should
// always have been cut to an Unresolved placeholder) returns 0 for the
// repeated member instead of recursing forever.
func (s *Struct) sizeGuarded(visiting map[*Struct]bool) int {
	if visiting[s] {
		return 0
	}
	visiting[s] = true
	total := 0
	for _, f := range s.Fields {
		if st, ok := f.Type.(*Struct); ok {
			total += st.sizeGuarded(visiting)
			continue
		}
		total += f.Type.Size()
	}
	return total
}

func (s *Struct) String() string { return s.Name }

// FieldOffset returns the cumulative slot offset of the named field and whether it
// exists.
func (s *Struct) FieldOffset(name string) (int, Type, bool) {
	offset := 0
	for _, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return offset, f.Type, true
		}
		offset += f.Type.Size()
	}
	return 0, nil, false
}

// Array is a fixed-length homogeneous sequence. Invariant T3: Length >= 1. The
// leading slot of its runtime representation holds the length (§4.7), hence Size is
// 1 + Length*Elem.Size().
type Array struct {
	Elem   Type
	Length int
}

func (*Array) isType()     {}
func (a *Array) Size() int { return 1 + a.Length*a.Elem.Size() }
func (a *Array) String() string {
	return fmt.Sprintf("%s[%d]", a.Elem, a.Length)
}

// Ref is a one-slot reference to another type. Invariant T2: Elem must not itself be
// a *Ref.
type Ref struct {
	Elem Type
}

func (*Ref) isType()      {}
func (r *Ref) Size() int  { return 1 }
func (r *Ref) String() string { return "REF<" + r.Elem.String() + ">" }

// Param is one parameter slot of a Function type: a type plus its declared name
// (names participate in diagnostics, not in the type's identity).
type Param struct {
	Name string
	Type Type
}

// Function is a procedure or function signature: an optional return type plus an
// ordered parameter list. Function has no runtime slot representation.
type Function struct {
	Return Type // nil for a PROC
	Params []Param
}

func (*Function) isType()      {}
func (f *Function) Size() int  { return 0 }
func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Type.String() + " " + p.Name
	}
	ret := "PROC"
	if f.Return != nil {
		ret = "FUNC " + f.Return.String()
	}
	return fmt.Sprintf("%s(%s)", ret, strings.Join(parts, ", "))
}

// Unresolved is a placeholder standing in for a type name that has not yet been
// looked up in the symbol table. First-pass registration produces types that may
// contain Unresolved nodes nested arbitrarily deep; ResolveTypes (§4.2) replaces
// them in place.
type Unresolved struct {
	Name string
}

func (*Unresolved) isType()      {}
func (u *Unresolved) Size() int  { return 0 }
func (u *Unresolved) String() string { return "unresolved(" + u.Name + ")" }

// IsUnresolved reports whether t is an *Unresolved node. It does not look inside
// container types.
func IsUnresolved(t Type) bool {
	_, ok := t.(*Unresolved)
	return ok
}

// Predeclared basic-type singletons (§4.1). They are not entered into any symbol
// table: the First Pass maps the INT/FLOAT/BOOL/STRING/ANY type names to them
// directly.
var (
	Int    = &Basic{Kind: INT}
	Float  = &Basic{Kind: FLOAT}
	Bool   = &Basic{Kind: BOOL}
	String = &Basic{Kind: STRING}
	Any    = &Basic{Kind: ANY}
)

// Equal reports whether a and b are structurally identical, recursively, per the
// "same variant, recursively" clause of §4.3(i). Function types compare by
// parameter/return shape only — names are not part of a Function's identity.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *Basic:
		bv, ok := b.(*Basic)
		return ok && av.Kind == bv.Kind
	case *Struct:
		bv, ok := b.(*Struct)
		if !ok || !strings.EqualFold(av.Name, bv.Name) || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if !strings.EqualFold(av.Fields[i].Name, bv.Fields[i].Name) || !Equal(av.Fields[i].Type, bv.Fields[i].Type) {
				return false
			}
		}
		return true
	case *Array:
		bv, ok := b.(*Array)
		return ok && av.Length == bv.Length && Equal(av.Elem, bv.Elem)
	case *Ref:
		bv, ok := b.(*Ref)
		return ok && Equal(av.Elem, bv.Elem)
	case *Function:
		bv, ok := b.(*Function)
		if !ok || len(av.Params) != len(bv.Params) {
			return false
		}
		if (av.Return == nil) != (bv.Return == nil) {
			return false
		}
		if av.Return != nil && !Equal(av.Return, bv.Return) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i].Type, bv.Params[i].Type) {
				return false
			}
		}
		return true
	case *Unresolved:
		bv, ok := b.(*Unresolved)
		return ok && strings.EqualFold(av.Name, bv.Name)
	default:
		return false
	}
}

// IsNumeric reports whether t is INT or FLOAT.
func IsNumeric(t Type) bool {
	b, ok := t.(*Basic)
	return ok && (b.Kind == INT || b.Kind == FLOAT)
}

// IsBool reports whether t is BOOL.
func IsBool(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.Kind == BOOL
}

// IsAny reports whether t is the ANY basic type.
func IsAny(t Type) bool {
	b, ok := t.(*Basic)
	return ok && b.Kind == ANY
}

// AssignableConsiderRefs controls whether Assignable applies the Ref-aliasing clause
// of §4.3(ii). The source leaves this IsAssignableFrom(considerReferences)
// distinction ambiguous between assignment and return contexts (§9 Open
// Questions); the decision made here: considerReferences is true for plain and
// compound assignment, local initializers, call arguments and vector components,
// and false for RETURN, so a Ref can never silently satisfy a by-value return.
type AssignableConsiderRefs bool

const (
	ConsiderRefs   AssignableConsiderRefs = true
	IgnoreRefs     AssignableConsiderRefs = false
)

// Assignable reports whether a value of type src may be assigned/bound to a
// destination of type dst, per §4.3.
func Assignable(dst, src Type, refs AssignableConsiderRefs) bool {
	if Equal(dst, src) {
		return true
	}

	if refs == ConsiderRefs {
		if dr, ok := dst.(*Ref); ok {
			if Equal(dr.Elem, src) {
				return true
			}
			if sr, ok := src.(*Ref); ok && Equal(dr.Elem, sr.Elem) {
				return true
			}
		}
	}

	// (iii) ANY / Ref(ANY) destinations accept any one-slot source.
	if IsAny(dst) && src.Size() == 1 {
		return true
	}
	if dr, ok := dst.(*Ref); ok && IsAny(dr.Elem) && src.Size() == 1 {
		return true
	}
	// (T4) a Ref<ANY> source aliases into an ANY destination.
	if IsAny(dst) {
		if sr, ok := src.(*Ref); ok && IsAny(sr.Elem) {
			return true
		}
	}

	return false
}
