package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/specgest/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Word documents have no source lines, so
// a node's Line is the 1-based position of its top-level body item.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	// The zip reader needs random access.
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	return docxTree(doc), nil
}

// docxTree converts the body of a parsed Word document.
func docxTree(doc *docx.Docx) *doctree.Node {
	root := &doctree.Node{Kind: doctree.KindDocument, Line: 1}

	for i, item := range doc.Document.Body.Items {
		line := i + 1
		switch it := item.(type) {
		case *docx.Paragraph:
			inl := docxInlines(it, line)
			// Empty paragraphs are Word's blank lines; they must not
			// separate a directive from its table.
			if len(inl) == 0 {
				continue
			}
			kind := doctree.KindParagraph
			if docxHeadingLevel(it) > 0 {
				kind = doctree.KindHeading
			}
			root.Children = append(root.Children, &doctree.Node{Kind: kind, Line: line, Children: inl})
		case *docx.Table:
			root.Children = append(root.Children, docxTable(it, line))
		}
	}
	return root
}

func docxTable(t *docx.Table, line int) *doctree.Node {
	table := &doctree.Node{Kind: doctree.KindTable, Line: line}
	for _, tr := range t.TableRows {
		row := &doctree.Node{Kind: doctree.KindTableRow, Line: line}
		for _, tc := range tr.TableCells {
			cell := &doctree.Node{Kind: doctree.KindTableCell, Line: line}
			for j, para := range tc.Paragraphs {
				if j > 0 {
					cell.Children = appendInline(cell.Children, &doctree.Node{Kind: doctree.KindText, Value: "\n", Line: line})
				}
				for _, in := range docxInlines(para, line) {
					cell.Children = appendInline(cell.Children, in)
				}
			}
			cell.Children = trimInlineEdges(cell.Children)
			row.Children = append(row.Children, cell)
		}
		table.Children = append(table.Children, row)
	}
	return table
}

// docxInlines converts the runs and hyperlinks of a paragraph.
func docxInlines(para *docx.Paragraph, line int) []*doctree.Node {
	var out []*doctree.Node
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			if t := docxRunText(c); t != "" {
				out = appendInline(out, &doctree.Node{Kind: doctree.KindText, Value: t, Line: line})
			}
		case *docx.Hyperlink:
			link := &doctree.Node{Kind: doctree.KindLink, Line: line}
			if t := docxRunText(&c.Run); t != "" {
				link.Children = []*doctree.Node{{Kind: doctree.KindText, Value: t, Line: line}}
			}
			out = append(out, link)
		}
	}
	return trimInlineEdges(out)
}

func docxRunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			buf.WriteString(t.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if strings.HasPrefix(style, "heading") && len(style) == len("heading")+1 {
		if d := style[len(style)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}
