package types

import "testing"

func TestEqualIsStructural(t *testing.T) {
	tests := []struct {
		a, b Type
		want bool
	}{
		{TypeInt64, TypeInt64, true},
		{TypeInt64, &Primitive{Name: "Int64"}, true},
		{TypeUnit, TypeInt64, false},
		{NewArray(TypeInt64), NewArray(TypeInt64), true},
		{NewArray(NewArray(TypeInt64)), NewArray(NewArray(TypeInt64)), true},
		{NewArray(TypeInt64), NewArray(TypeUnit), false},
		{NewArray(TypeInt64), TypeInt64, false},
		{NewTypeOf(TypeInt64), NewTypeOf(TypeInt64), true},
		{NewTypeOf(TypeInt64), NewArray(TypeInt64), false},
		{NewTypeOf(NewArray(TypeInt64)), NewTypeOf(NewArray(TypeUnit)), false},
	}

	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Fatalf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := Equal(tt.b, tt.a); got != tt.want {
			t.Fatalf("Equal(%s, %s) is not symmetric", tt.b, tt.a)
		}
	}
}

func TestString(t *testing.T) {
	typ := NewTypeOf(NewArray(NewArray(TypeInt64)))
	if got, want := typ.String(), "Type(Array(Array(Int64)))"; got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestAccessors(t *testing.T) {
	if inner, ok := AsTypeOf(NewTypeOf(TypeUnit)); !ok || inner != TypeUnit {
		t.Fatalf("AsTypeOf failed")
	}
	if _, ok := AsTypeOf(TypeInt64); ok {
		t.Fatalf("Int64 is not a type of a type")
	}
	if elem, ok := AsArray(NewArray(TypeInt64)); !ok || !IsInt64(elem) {
		t.Fatalf("AsArray failed")
	}
	if _, ok := AsArray(TypeUnit); ok {
		t.Fatalf("Unit is not an array")
	}
}
