package value

import "github.com/asurkis/experimental-interpreter/internal/types"

// Binding is a name bound before the program starts.
type Binding struct {
	Name  string
	Value Value
}

// Prelude returns the identifiers bound at program start, in slot order.
func Prelude() []Binding {
	return []Binding{
		{Name: "i64", Value: TypeVal(types.TypeInt64)},
	}
}
