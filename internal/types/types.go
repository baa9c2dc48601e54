package types

// Type represents a static type of the expression language.
type Type interface {
	String() string
	// IsType is a marker method to ensure type safety.
	IsType()
}

// Primitive represents a type without components.
type Primitive struct {
	Name string
}

func (p *Primitive) String() string { return p.Name }
func (p *Primitive) IsType()        {}

// Common primitive instances
var (
	TypeUnit  = &Primitive{Name: "Unit"}
	TypeInt64 = &Primitive{Name: "Int64"}
)

// TypeOf is the type of a value that is itself a type.
type TypeOf struct {
	Inner Type
}

func (t *TypeOf) String() string { return "Type(" + t.Inner.String() + ")" }
func (t *TypeOf) IsType()        {}

// Array is a homogeneous array type.
type Array struct {
	Elem Type
}

func (a *Array) String() string { return "Array(" + a.Elem.String() + ")" }
func (a *Array) IsType()        {}

// NewTypeOf returns the type of values denoting inner.
func NewTypeOf(inner Type) *TypeOf { return &TypeOf{Inner: inner} }

// NewArray returns the array type over elem.
func NewArray(elem Type) *Array { return &Array{Elem: elem} }

// Equal reports structural equality: same variant and recursively equal components.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Name == y.Name
	case *TypeOf:
		y, ok := b.(*TypeOf)
		return ok && Equal(x.Inner, y.Inner)
	case *Array:
		y, ok := b.(*Array)
		return ok && Equal(x.Elem, y.Elem)
	default:
		return false
	}
}

// AsTypeOf returns the denoted type when t is Type(T).
func AsTypeOf(t Type) (Type, bool) {
	if x, ok := t.(*TypeOf); ok {
		return x.Inner, true
	}
	return nil, false
}

// AsArray returns the element type when t is Array(T).
func AsArray(t Type) (Type, bool) {
	if x, ok := t.(*Array); ok {
		return x.Elem, true
	}
	return nil, false
}

// IsInt64 reports whether t is Int64.
func IsInt64(t Type) bool {
	return Equal(t, TypeInt64)
}
