package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/specgest/internal/doctree"
	"github.com/fumiama/go-docx"
)

func TestDocxTree_DirectiveTable(t *testing.T) {
	doc := docx.New()
	doc.AddParagraph().AddText("@Button")
	doc.AddParagraph() // blank line in Word
	tbl := doc.AddTable(2, 3, 0, nil)
	for i, h := range []string{"項目ID", "項目名", "イベント名"} {
		tbl.TableRows[0].TableCells[i].AddParagraph().AddText(h)
	}
	tbl.TableRows[1].TableCells[0].AddParagraph().AddText("BTN001")
	tbl.TableRows[1].TableCells[1].AddParagraph().AddText("登録")

	root := docxTree(doc)

	if len(root.Children) != 2 {
		t.Fatalf("expected blank paragraph to be dropped, got %d children", len(root.Children))
	}
	para := root.Children[0]
	if para.Kind != doctree.KindParagraph || para.FirstChild().Value != "@Button" {
		t.Errorf("expected paragraph %q, got %+v", "@Button", para)
	}
	if para.Line != 1 {
		t.Errorf("expected paragraph at item 1, got %d", para.Line)
	}

	table := root.Children[1]
	if table.Kind != doctree.KindTable {
		t.Fatalf("expected table, got %q", table.Kind)
	}
	if table.Line != 3 {
		t.Errorf("expected table at item 3, got %d", table.Line)
	}
	header := cellTexts(table.Children[0])
	if strings.Join(header, ",") != "項目ID,項目名,イベント名" {
		t.Errorf("unexpected header %v", header)
	}
	data := table.Children[1]
	if len(data.Children[2].Children) != 0 {
		t.Errorf("expected empty third cell, got %+v", data.Children[2].Children)
	}
}

func TestDocxTree_MultiParagraphCell(t *testing.T) {
	doc := docx.New()
	tbl := doc.AddTable(1, 1, 0, nil)
	cell := tbl.TableRows[0].TableCells[0]
	cell.AddParagraph().AddText("first")
	cell.AddParagraph().AddText("second")

	root := docxTree(doc)
	got := root.Children[0].Children[0].Children[0]
	if len(got.Children) != 1 || got.Children[0].Value != "first\nsecond" {
		t.Errorf("expected merged %q, got %+v", "first\nsecond", got.Children)
	}
}

func TestDOCXParser_InvalidInput(t *testing.T) {
	p := &DOCXParser{}
	_, err := p.Parse(strings.NewReader("not a zip"), "bad.docx")
	if err == nil {
		t.Fatal("expected error for non-docx input")
	}
	if !strings.Contains(err.Error(), "parse docx") {
		t.Errorf("expected wrapped parse error, got %v", err)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"spec.md", "*parser.MarkdownParser"},
		{"SPEC.MARKDOWN", "*parser.MarkdownParser"},
		{"notes.txt", "*parser.MarkdownParser"},
		{"page.html", "*parser.HTMLParser"},
		{"page.htm", "*parser.HTMLParser"},
		{"design.docx", "*parser.DOCXParser"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			p, err := ForFile(tt.filename)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var got string
			switch p.(type) {
			case *MarkdownParser:
				got = "*parser.MarkdownParser"
			case *HTMLParser:
				got = "*parser.HTMLParser"
			case *DOCXParser:
				got = "*parser.DOCXParser"
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if !IsSupportedExtension(tt.filename) {
				t.Errorf("expected %q to be supported", tt.filename)
			}
		})
	}
}

func TestForFile_Unsupported(t *testing.T) {
	_, err := ForFile("report.pdf")
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("expected ErrUnsupportedExtension, got %v", err)
	}
	if IsSupportedExtension("report.pdf") {
		t.Error("expected .pdf to be unsupported")
	}
}
