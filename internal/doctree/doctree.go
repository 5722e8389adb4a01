// Package doctree is the normalized block/inline tree every parser produces.
package doctree

// Kind identifies the type of a Node.
type Kind string

const (
	KindDocument      Kind = "document"
	KindParagraph     Kind = "paragraph"
	KindHeading       Kind = "heading"
	KindTable         Kind = "table"
	KindTableRow      Kind = "tableRow"
	KindTableCell     Kind = "tableCell"
	KindText          Kind = "text"
	KindEmphasis      Kind = "emphasis"
	KindStrong        Kind = "strong"
	KindDelete        Kind = "delete"
	KindLink          Kind = "link"
	KindImage         Kind = "image"
	KindInlineCode    Kind = "inlineCode"
	KindCode          Kind = "code"
	KindList          Kind = "list"
	KindListItem      Kind = "listItem"
	KindBlockquote    Kind = "blockquote"
	KindThematicBreak Kind = "thematicBreak"
	KindHTML          Kind = "html"
	KindBreak         Kind = "break"
	KindOther         Kind = "other"
)

// Node is a block or inline element of a parsed document.
type Node struct {
	Kind     Kind
	Value    string  // Literal content for text, inlineCode, code and html nodes
	Line     int     // 1-based source line (0 if unknown)
	Children []*Node // Child nodes in document order
}

// Child returns the i-th child, or nil if i is out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	return n.Child(0)
}

// Is reports whether n is non-nil and of kind k.
func (n *Node) Is(k Kind) bool {
	return n != nil && n.Kind == k
}

// Walk visits every node under root in pre-order. The root itself is
// visited with index -1 and a nil parent.
func Walk(root *Node, fn func(n *Node, index int, parent *Node)) {
	if root == nil {
		return
	}
	var walk func(n *Node, index int, parent *Node)
	walk = func(n *Node, index int, parent *Node) {
		fn(n, index, parent)
		for i, c := range n.Children {
			walk(c, i, n)
		}
	}
	walk(root, -1, nil)
}
