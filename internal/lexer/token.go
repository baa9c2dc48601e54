package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Span represents the source location of a token tree node
type Span struct {
	Filename string // optional source filename for diagnostics
	Line     int    // 1-based line number
	Column   int    // 1-based column number, counted in runes
	Start    int    // index in []rune
	End      int    // exclusive end index
}

// String returns "line:col".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// Node is a token tree node: an atom, a parenthesized list or an integer literal.
type Node interface {
	Span() Span
	String() string
	tokenNode()
}

// Atom is any word that is not an integer literal.
type Atom struct {
	Text string
	span Span
}

// List is a parenthesized sequence of nodes.
type List struct {
	Items []Node
	span  Span
}

// Int is a word that parsed as a base-10 signed 64-bit integer.
type Int struct {
	Value int64
	span  Span
}

// NewAtom constructs an atom node.
func NewAtom(text string, span Span) *Atom { return &Atom{Text: text, span: span} }

// NewList constructs a list node.
func NewList(items []Node, span Span) *List { return &List{Items: items, span: span} }

// NewInt constructs an integer literal node.
func NewInt(value int64, span Span) *Int { return &Int{Value: value, span: span} }

func (a *Atom) Span() Span { return a.span }
func (l *List) Span() Span { return l.span }
func (i *Int) Span() Span  { return i.span }

func (*Atom) tokenNode() {}
func (*List) tokenNode() {}
func (*Int) tokenNode()  {}

func (a *Atom) String() string { return a.Text }
func (i *Int) String() string  { return strconv.FormatInt(i.Value, 10) }

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Describe renders a node with its variant names, e.g. List(Atom("+"), Int(1)).
func Describe(n Node) string {
	switch n := n.(type) {
	case *Atom:
		return fmt.Sprintf("Atom(%q)", n.Text)
	case *Int:
		return fmt.Sprintf("Int(%d)", n.Value)
	case *List:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = Describe(item)
		}
		return "List(" + strings.Join(parts, ", ") + ")"
	default:
		return "<nil>"
	}
}

// parseInteger accepts an optional leading '-' followed by decimal digits.
func parseInteger(word string) (int64, bool) {
	digits := strings.TrimPrefix(word, "-")
	if digits == "" {
		return 0, false
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
