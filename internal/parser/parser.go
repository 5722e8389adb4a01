package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/specgest/internal/doctree"
)

// ErrUnsupportedExtension is returned by ForFile for unknown file types.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// Parser converts raw document bytes into a document tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Node, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".txt":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// appendInline appends n to nodes, merging it into a preceding text node.
func appendInline(nodes []*doctree.Node, n *doctree.Node) []*doctree.Node {
	if n.Kind == doctree.KindText && len(nodes) > 0 {
		if last := nodes[len(nodes)-1]; last.Kind == doctree.KindText {
			last.Value += n.Value
			return nodes
		}
	}
	return append(nodes, n)
}

// trimInlineEdges strips leading whitespace from a leading text node and
// trailing whitespace from a trailing one, dropping nodes left empty.
func trimInlineEdges(nodes []*doctree.Node) []*doctree.Node {
	if len(nodes) > 0 && nodes[0].Kind == doctree.KindText {
		nodes[0].Value = strings.TrimLeft(nodes[0].Value, " \t\r\n")
		if nodes[0].Value == "" {
			nodes = nodes[1:]
		}
	}
	if len(nodes) > 0 && nodes[len(nodes)-1].Kind == doctree.KindText {
		last := nodes[len(nodes)-1]
		last.Value = strings.TrimRight(last.Value, " \t\r\n")
		if last.Value == "" {
			nodes = nodes[:len(nodes)-1]
		}
	}
	return nodes
}
