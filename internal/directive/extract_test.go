package directive

import (
	"testing"

	"github.com/dgallion1/specgest/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(v string) *doctree.Node {
	return &doctree.Node{Kind: doctree.KindText, Value: v}
}

func cell(children ...*doctree.Node) *doctree.Node {
	return &doctree.Node{Kind: doctree.KindTableCell, Children: children}
}

func row(values ...string) *doctree.Node {
	r := &doctree.Node{Kind: doctree.KindTableRow}
	for _, v := range values {
		if v == "" {
			r.Children = append(r.Children, cell())
			continue
		}
		r.Children = append(r.Children, cell(text(v)))
	}
	return r
}

func table(rows ...*doctree.Node) *doctree.Node {
	return &doctree.Node{Kind: doctree.KindTable, Children: rows}
}

func para(v string) *doctree.Node {
	return &doctree.Node{Kind: doctree.KindParagraph, Children: []*doctree.Node{text(v)}}
}

func TestCellText(t *testing.T) {
	emph := &doctree.Node{Kind: doctree.KindEmphasis, Children: []*doctree.Node{text("hidden")}}

	assert.Equal(t, "plain", CellText(cell(text("plain"))))
	assert.Equal(t, "", CellText(cell()))
	assert.Equal(t, "", CellText(cell(emph)))
	assert.Equal(t, "", CellText(cell(emph, text("after"))), "only the first child counts")
	assert.Equal(t, "", CellText(nil))
}

func TestHeaders(t *testing.T) {
	assert.Equal(t, []string{"a", "", "c"}, Headers(table(row("a", "", "c"), row("1"))))
	assert.Equal(t, []string{}, Headers(table()))
	assert.Equal(t, []string{}, Headers(nil))
}

func TestRows(t *testing.T) {
	tbl := table(
		row("a", "b"),
		row("1", "2", "3"),
		row("4"),
		row(),
	)
	got := Rows(tbl, Headers(tbl))

	require.Len(t, got, 3)
	assert.Equal(t, Row{"a": "1", "b": "2"}, got[0], "extra cells are dropped")
	assert.Equal(t, Row{"a": "4", "b": ""}, got[1])
	assert.Equal(t, Row{"a": "", "b": ""}, got[2])
}

func TestRows_DuplicateHeaderKeepsFirstColumn(t *testing.T) {
	tbl := table(row("a", "a"), row("first", "second"))
	got := Rows(tbl, Headers(tbl))
	assert.Equal(t, []Row{{"a": "first"}}, got)
}

func TestRows_HeaderOnly(t *testing.T) {
	got := Rows(table(row("a")), []string{"a"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPair(t *testing.T) {
	tbl := table(row("a"))
	root := &doctree.Node{Kind: doctree.KindDocument, Children: []*doctree.Node{
		para("intro"),
		para("  @Button  "),
		para("@Orphan"),
		para("@Button"),
		tbl,
	}}

	_, ok := Pair(root.Children[0], root, 0)
	assert.False(t, ok, "not a directive")

	_, ok = Pair(root.Children[2], root, 2)
	assert.False(t, ok, "next sibling is a paragraph")

	p, ok := Pair(root.Children[3], root, 3)
	require.True(t, ok)
	assert.Equal(t, "@Button", p.Directive)
	assert.Same(t, tbl, p.Table)

	_, ok = Pair(root, nil, -1)
	assert.False(t, ok, "root has no parent")

	_, ok = Pair(tbl, root, 4)
	assert.False(t, ok)
}

func TestDirectiveText(t *testing.T) {
	tests := []struct {
		name string
		node *doctree.Node
		want string
		ok   bool
	}{
		{"plain", para("@Button"), "@Button", true},
		{"trailing space", para("@TextBox \t"), "@TextBox", true},
		{"leading space is not a directive", para(" @Button"), "", false},
		{"no marker", para("Button"), "", false},
		{"heading", &doctree.Node{Kind: doctree.KindHeading, Children: []*doctree.Node{text("@Button")}}, "", false},
		{"emphasis first", &doctree.Node{Kind: doctree.KindParagraph, Children: []*doctree.Node{
			{Kind: doctree.KindEmphasis, Children: []*doctree.Node{text("@Button")}},
		}}, "", false},
		{"empty paragraph", &doctree.Node{Kind: doctree.KindParagraph}, "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DirectiveText(tt.node)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_HandBuiltTree(t *testing.T) {
	tbl := table(row("項目ID", "項目名", "桁数"), row("T1", "name", "10"))
	tbl.Line = 12
	root := &doctree.Node{Kind: doctree.KindDocument, Children: []*doctree.Node{para("@TextBox"), tbl}}

	c := &Collector{}
	got := NewExtractor(WithReporter(c)).Extract(root)

	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].Line)
	assert.Equal(t, []Row{{"項目ID": "T1", "項目名": "name", "桁数": "10"}}, got[0].Rows)
	assert.Zero(t, c.Len())
}

func TestExtract_NilRoot(t *testing.T) {
	got := NewExtractor().Extract(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
