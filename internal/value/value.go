package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asurkis/experimental-interpreter/internal/types"
)

type Kind int

const (
	KindUnit Kind = iota
	KindInt64
	KindType
	KindArray
)

// Value is a runtime value. Arrays have value semantics: use Clone before
// handing out a value that is also stored elsewhere.
type Value struct {
	Kind  Kind
	Int   int64
	Type  types.Type
	Array []Value
}

func Unit() Value                { return Value{Kind: KindUnit} }
func Int64(n int64) Value        { return Value{Kind: KindInt64, Int: n} }
func TypeVal(t types.Type) Value { return Value{Kind: KindType, Type: t} }
func ArrayVal(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{Kind: KindArray, Array: elems}
}

// Zero returns the default value of t.
func Zero(t types.Type) Value {
	switch t.(type) {
	case *types.TypeOf:
		return TypeVal(types.TypeUnit)
	case *types.Array:
		return ArrayVal(nil)
	}
	if types.IsInt64(t) {
		return Int64(0)
	}
	return Unit()
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	if v.Kind != KindArray {
		return v
	}
	elems := make([]Value, len(v.Array))
	for i, e := range v.Array {
		elems[i] = e.Clone()
	}
	return ArrayVal(elems)
}

func (v Value) String() string {
	switch v.Kind {
	case KindUnit:
		return "unit"
	case KindInt64:
		return strconv.FormatInt(v.Int, 10)
	case KindType:
		return v.Type.String()
	case KindArray:
		parts := make([]string, 0, len(v.Array)+1)
		parts = append(parts, "array")
		for _, e := range v.Array {
			parts = append(parts, e.String())
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("<unknown:%d>", v.Kind)
	}
}

func (v Value) KindName() string {
	switch v.Kind {
	case KindUnit:
		return "Unit"
	case KindInt64:
		return "Int64"
	case KindType:
		return "Type"
	case KindArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Equal compares two values for deep equality.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindUnit:
		return true
	case KindInt64:
		return a.Int == b.Int
	case KindType:
		return types.Equal(a.Type, b.Type)
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Conforms reports whether the runtime shape of v matches the static type t.
func Conforms(v Value, t types.Type) bool {
	switch tt := t.(type) {
	case *types.TypeOf:
		return v.Kind == KindType && types.Equal(v.Type, tt.Inner)
	case *types.Array:
		if v.Kind != KindArray {
			return false
		}
		for _, e := range v.Array {
			if !Conforms(e, tt.Elem) {
				return false
			}
		}
		return true
	}
	if types.IsInt64(t) {
		return v.Kind == KindInt64
	}
	return v.Kind == KindUnit
}

// StaticType infers the static type of a value. Empty arrays are Array(Unit).
func StaticType(v Value) types.Type {
	switch v.Kind {
	case KindInt64:
		return types.TypeInt64
	case KindType:
		return types.NewTypeOf(v.Type)
	case KindArray:
		if len(v.Array) == 0 {
			return types.NewArray(types.TypeUnit)
		}
		return types.NewArray(StaticType(v.Array[0]))
	default:
		return types.TypeUnit
	}
}
