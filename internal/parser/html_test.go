package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/specgest/internal/doctree"
	"golang.org/x/text/encoding/japanese"
)

func TestHTMLParser_DirectiveTable(t *testing.T) {
	input := `<html><head><title>Screen</title></head><body>
<div class="section">
  <p>  @Button
  </p>
  <table>
    <thead><tr><th>項目ID</th><th>項目名</th><th>イベント名</th></tr></thead>
    <tbody><tr><td>BTN001</td><td><em>登録</em></td><td>onClick_save</td></tr></tbody>
  </table>
</div>
</body></html>`

	p := &HTMLParser{}
	root, err := p.Parse(strings.NewReader(input), "screen.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(root.Children) != 2 {
		t.Fatalf("expected div to flatten into paragraph and table, got %d children", len(root.Children))
	}

	para := root.Children[0]
	if para.Kind != doctree.KindParagraph || para.FirstChild().Value != "@Button" {
		t.Errorf("expected paragraph %q, got %+v", "@Button", para)
	}

	table := root.Children[1]
	if table.Kind != doctree.KindTable {
		t.Fatalf("expected table, got %q", table.Kind)
	}
	if table.Line != 0 {
		t.Errorf("expected unknown line 0, got %d", table.Line)
	}
	if len(table.Children) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Children))
	}

	header := cellTexts(table.Children[0])
	want := []string{"項目ID", "項目名", "イベント名"}
	for i, w := range want {
		if header[i] != w {
			t.Errorf("header[%d]: expected %q, got %q", i, w, header[i])
		}
	}

	data := table.Children[1]
	if got := data.Children[1].FirstChild().Kind; got != doctree.KindEmphasis {
		t.Errorf("expected emphasis cell, got %q", got)
	}
}

func TestHTMLParser_LooseInlineBecomesParagraph(t *testing.T) {
	input := `<body>@TextBox<table><tr><td>項目ID</td></tr></table></body>`
	p := &HTMLParser{}
	root, err := p.Parse(strings.NewReader(input), "loose.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Children))
	}
	if root.Children[0].Kind != doctree.KindParagraph {
		t.Errorf("expected wrapped paragraph, got %q", root.Children[0].Kind)
	}
	if root.Children[0].FirstChild().Value != "@TextBox" {
		t.Errorf("expected %q, got %q", "@TextBox", root.Children[0].FirstChild().Value)
	}
}

func TestHTMLParser_SkipsScripts(t *testing.T) {
	input := `<body><script>var x = "@Button";</script><p>hello   <b>world</b></p></body>`
	p := &HTMLParser{}
	root, err := p.Parse(strings.NewReader(input), "s.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected only the paragraph, got %d children", len(root.Children))
	}
	para := root.Children[0]
	if para.FirstChild().Value != "hello " {
		t.Errorf("expected collapsed %q, got %q", "hello ", para.FirstChild().Value)
	}
	if para.Child(1).Kind != doctree.KindStrong {
		t.Errorf("expected strong, got %q", para.Child(1).Kind)
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a  b", "a b"},
		{"\n\ta\n", " a "},
		{"項目 ID", "項目 ID"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := collapseSpace(tt.in); got != tt.want {
			t.Errorf("collapseSpace(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestHTMLParser_ShiftJIS(t *testing.T) {
	page := `<html><head><meta charset="Shift_JIS"></head><body><p>@Button</p>` +
		`<table><tr><th>項目ID</th><th>項目名</th></tr><tr><td>B1</td><td>登録</td></tr></table></body></html>`
	encoded, err := japanese.ShiftJIS.NewEncoder().String(page)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	p := &HTMLParser{}
	root, err := p.Parse(strings.NewReader(encoded), "legacy.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("expected paragraph and table, got %d children", len(root.Children))
	}
	header := cellTexts(root.Children[1].Children[0])
	if header[0] != "項目ID" || header[1] != "項目名" {
		t.Errorf("expected decoded headers, got %v", header)
	}
	if got := cellTexts(root.Children[1].Children[1])[1]; got != "登録" {
		t.Errorf("expected %q, got %q", "登録", got)
	}
}
