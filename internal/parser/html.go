package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/specgest/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// HTMLParser handles HTML files. x/net/html keeps no source positions, so
// every node has Line 0.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	doc, err := html.Parse(decodeHTML(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := &doctree.Node{Kind: doctree.KindDocument}
	if body := findBody(doc); body != nil {
		root.Children = htmlBlocks(body)
	} else {
		root.Children = htmlBlocks(doc)
	}
	return root, nil
}

// decodeHTML returns a UTF-8 reader over data. Legacy pages (Shift_JIS,
// EUC-JP) are decoded from their BOM or meta tag; windows-1252 is only
// the fallback guess and loses to valid UTF-8.
func decodeHTML(data []byte) io.Reader {
	enc, name, _ := charset.DetermineEncoding(data, "text/html")
	if name == "utf-8" || (name == "windows-1252" && utf8.Valid(data)) {
		return bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	}
	return enc.NewDecoder().Reader(bytes.NewReader(data))
}

// htmlBlocks converts the children of a block container. Generic
// containers are flattened so their blocks become siblings.
func htmlBlocks(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	var pending []*doctree.Node // loose inline content

	flush := func() {
		pending = trimInlineEdges(pending)
		if len(pending) > 0 {
			out = append(out, &doctree.Node{Kind: doctree.KindParagraph, Children: pending})
		}
		pending = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode || (c.Type == html.ElementNode && isInlineTag(c.Data)) {
			if in := htmlInline(c); in != nil {
				pending = appendInline(pending, in)
			}
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}
		flush()

		switch c.Data {
		case "script", "style", "head", "template", "noscript":
		case "p":
			out = append(out, &doctree.Node{Kind: doctree.KindParagraph, Children: htmlInlines(c)})
		case "h1", "h2", "h3", "h4", "h5", "h6":
			out = append(out, &doctree.Node{Kind: doctree.KindHeading, Children: htmlInlines(c)})
		case "table":
			out = append(out, htmlTable(c))
		case "ul", "ol":
			list := &doctree.Node{Kind: doctree.KindList}
			for li := c.FirstChild; li != nil; li = li.NextSibling {
				if li.Type == html.ElementNode && li.Data == "li" {
					list.Children = append(list.Children, &doctree.Node{Kind: doctree.KindListItem, Children: htmlBlocks(li)})
				}
			}
			out = append(out, list)
		case "blockquote":
			out = append(out, &doctree.Node{Kind: doctree.KindBlockquote, Children: htmlBlocks(c)})
		case "pre":
			out = append(out, &doctree.Node{Kind: doctree.KindCode, Value: strings.TrimSuffix(textContent(c), "\n")})
		case "hr":
			out = append(out, &doctree.Node{Kind: doctree.KindThematicBreak})
		default:
			out = append(out, htmlBlocks(c)...)
		}
	}
	flush()
	return out
}

// htmlTable collects rows from the table and its row groups in order.
func htmlTable(n *html.Node) *doctree.Node {
	table := &doctree.Node{Kind: doctree.KindTable}
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				collect(c)
			case "tr":
				row := &doctree.Node{Kind: doctree.KindTableRow}
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
						row.Children = append(row.Children, &doctree.Node{Kind: doctree.KindTableCell, Children: htmlInlines(td)})
					}
				}
				table.Children = append(table.Children, row)
			}
		}
	}
	collect(n)
	return table
}

// htmlInlines converts the inline content of n, trimmed at the edges.
func htmlInlines(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if in := htmlInline(c); in != nil {
			out = appendInline(out, in)
		}
	}
	return trimInlineEdges(out)
}

func htmlInline(n *html.Node) *doctree.Node {
	switch n.Type {
	case html.TextNode:
		return &doctree.Node{Kind: doctree.KindText, Value: collapseSpace(n.Data)}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "br":
		return &doctree.Node{Kind: doctree.KindText, Value: "\n"}
	case "em", "i":
		return &doctree.Node{Kind: doctree.KindEmphasis, Children: htmlInlines(n)}
	case "strong", "b":
		return &doctree.Node{Kind: doctree.KindStrong, Children: htmlInlines(n)}
	case "del", "s":
		return &doctree.Node{Kind: doctree.KindDelete, Children: htmlInlines(n)}
	case "a":
		return &doctree.Node{Kind: doctree.KindLink, Value: attr(n, "href"), Children: htmlInlines(n)}
	case "img":
		return &doctree.Node{Kind: doctree.KindImage, Value: attr(n, "src")}
	case "code":
		return &doctree.Node{Kind: doctree.KindInlineCode, Value: textContent(n)}
	case "script", "style":
		return nil
	}
	// span, abbr, small and friends contribute their text.
	return &doctree.Node{Kind: doctree.KindText, Value: collapseSpace(textContent(n))}
}

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "br": true, "code": true, "del": true,
	"em": true, "i": true, "img": true, "kbd": true, "mark": true, "s": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true, "u": true,
}

func isInlineTag(tag string) bool {
	return inlineTags[tag]
}

// collapseSpace folds whitespace runs into a single space, as browsers do.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
