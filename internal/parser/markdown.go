package parser

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/dgallion1/specgest/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MarkdownParser handles Markdown files using goldmark with GFM tables.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseMarkdown(src), nil
}

// ParseMarkdown parses src and normalizes the goldmark AST into a doctree.
// Markdown parsing never fails; malformed input degrades to paragraphs.
func ParseMarkdown(src []byte) *doctree.Node {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(src))

	c := &mdConverter{src: src, lineStarts: lineStarts(src)}
	root := &doctree.Node{Kind: doctree.KindDocument, Line: 1}
	root.Children = c.blocks(doc)
	return root
}

type mdConverter struct {
	src        []byte
	lineStarts []int
}

// blocks converts the children of a block container.
func (c *mdConverter) blocks(parent ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Type() == ast.TypeInline {
			// Tight list items can mix inline content into a block container.
			out = c.appendInline(out, n)
			continue
		}
		out = append(out, c.block(n))
	}
	return out
}

func (c *mdConverter) block(n ast.Node) *doctree.Node {
	out := &doctree.Node{Kind: doctree.KindOther, Line: c.line(n)}

	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		out.Kind = doctree.KindParagraph
		out.Children = c.inlines(n)
	case *ast.Heading:
		out.Kind = doctree.KindHeading
		out.Children = c.inlines(n)
	case *extast.Table:
		out.Kind = doctree.KindTable
		out.Children = c.blocks(n)
	case *extast.TableHeader, *extast.TableRow:
		out.Kind = doctree.KindTableRow
		out.Children = c.blocks(n)
	case *extast.TableCell:
		out.Kind = doctree.KindTableCell
		out.Children = c.inlines(n)
	case *ast.List:
		out.Kind = doctree.KindList
		out.Children = c.blocks(n)
	case *ast.ListItem:
		out.Kind = doctree.KindListItem
		out.Children = c.blocks(n)
	case *ast.Blockquote:
		out.Kind = doctree.KindBlockquote
		out.Children = c.blocks(n)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		out.Kind = doctree.KindCode
		out.Value = strings.TrimSuffix(c.linesValue(n), "\n")
	case *ast.HTMLBlock:
		out.Kind = doctree.KindHTML
		v := c.linesValue(n)
		if node.HasClosure() {
			v += string(node.ClosureLine.Value(c.src))
		}
		out.Value = strings.TrimSuffix(v, "\n")
	case *ast.ThematicBreak:
		out.Kind = doctree.KindThematicBreak
	default:
		out.Children = c.blocks(n)
	}
	return out
}

// inlines converts the inline children of n, merging adjacent text runs.
func (c *mdConverter) inlines(n ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		out = c.appendInline(out, ch)
	}
	if len(out) > 0 {
		if last := out[len(out)-1]; last.Kind == doctree.KindText {
			last.Value = strings.TrimRight(last.Value, "\n")
		}
	}
	return out
}

// appendInline converts n onto out. A hard line break ends its text run
// with a separate break node.
func (c *mdConverter) appendInline(out []*doctree.Node, n ast.Node) []*doctree.Node {
	out = appendInline(out, c.inline(n))
	if t, ok := n.(*ast.Text); ok && t.HardLineBreak() {
		out = append(out, &doctree.Node{Kind: doctree.KindBreak, Line: c.line(n)})
	}
	return out
}

func (c *mdConverter) inline(n ast.Node) *doctree.Node {
	out := &doctree.Node{Kind: doctree.KindOther, Line: c.line(n)}

	switch node := n.(type) {
	case *ast.Text:
		out.Kind = doctree.KindText
		if node.IsRaw() {
			out.Value = string(node.Value(c.src))
		} else {
			out.Value = decodeText(node.Value(c.src))
		}
		if node.SoftLineBreak() {
			out.Value += "\n"
		}
	case *ast.String:
		out.Kind = doctree.KindText
		out.Value = string(node.Value)
	case *ast.Emphasis:
		out.Kind = doctree.KindEmphasis
		if node.Level >= 2 {
			out.Kind = doctree.KindStrong
		}
		out.Children = c.inlines(n)
	case *extast.Strikethrough:
		out.Kind = doctree.KindDelete
		out.Children = c.inlines(n)
	case *ast.Link:
		out.Kind = doctree.KindLink
		out.Value = string(node.Destination)
		out.Children = c.inlines(n)
	case *ast.AutoLink:
		out.Kind = doctree.KindLink
		out.Value = string(node.URL(c.src))
		out.Children = []*doctree.Node{{Kind: doctree.KindText, Value: string(node.Label(c.src)), Line: out.Line}}
	case *ast.Image:
		out.Kind = doctree.KindImage
		out.Value = string(node.Destination)
	case *ast.CodeSpan:
		out.Kind = doctree.KindInlineCode
		var buf bytes.Buffer
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			switch t := ch.(type) {
			case *ast.Text:
				buf.Write(t.Value(c.src))
			case *ast.String:
				buf.Write(t.Value)
			}
		}
		out.Value = buf.String()
	case *ast.RawHTML:
		out.Kind = doctree.KindHTML
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(c.src))
		}
		out.Value = buf.String()
	default:
		out.Children = c.inlines(n)
	}
	return out
}

// decodeText resolves backslash escapes and character references, which
// goldmark leaves in the source and only decodes when rendering.
func decodeText(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}

// linesValue concatenates the raw source lines of a block node.
func (c *mdConverter) linesValue(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return buf.String()
}

// line returns the 1-based source line where n starts, or 0 if unknown.
func (c *mdConverter) line(n ast.Node) int {
	off, ok := startOffset(n)
	if !ok {
		return 0
	}
	return sort.Search(len(c.lineStarts), func(i int) bool { return c.lineStarts[i] > off })
}

// startOffset finds the first source byte offset attached to n or any of
// its descendants. Tables carry no segments of their own; their cells do.
func startOffset(n ast.Node) (int, bool) {
	switch node := n.(type) {
	case *ast.Text:
		return node.Segment.Start, true
	case *ast.RawHTML:
		if node.Segments.Len() > 0 {
			return node.Segments.At(0).Start, true
		}
	}
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if off, ok := startOffset(ch); ok {
			return off, true
		}
	}
	return 0, false
}

// lineStarts returns the byte offset at which each line of src begins.
func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return starts
}
