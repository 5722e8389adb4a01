package directive

import (
	"strings"

	"github.com/dgallion1/specgest/internal/doctree"
)

// Pairing is a directive paragraph matched with the table right after it.
type Pairing struct {
	Directive string
	Table     *doctree.Node
}

// DirectiveText reports whether n is a directive paragraph and returns the
// trimmed directive name.
func DirectiveText(n *doctree.Node) (string, bool) {
	if !n.Is(doctree.KindParagraph) {
		return "", false
	}
	first := n.FirstChild()
	if !first.Is(doctree.KindText) || !strings.HasPrefix(first.Value, Marker) {
		return "", false
	}
	return strings.TrimSpace(first.Value), true
}

// NextTable returns the sibling after index in parent when it is a table.
func NextTable(parent *doctree.Node, index int) (*doctree.Node, bool) {
	if parent == nil || index < 0 {
		return nil, false
	}
	next := parent.Child(index + 1)
	if !next.Is(doctree.KindTable) {
		return nil, false
	}
	return next, true
}

// Pair matches n, the index-th child of parent, with the table that
// immediately follows it. Only the next sibling is considered.
func Pair(n, parent *doctree.Node, index int) (Pairing, bool) {
	name, ok := DirectiveText(n)
	if !ok {
		return Pairing{}, false
	}
	table, ok := NextTable(parent, index)
	if !ok {
		return Pairing{}, false
	}
	return Pairing{Directive: name, Table: table}, true
}
