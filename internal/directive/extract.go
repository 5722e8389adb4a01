package directive

import (
	"github.com/dgallion1/specgest/internal/doctree"
)

// CellText returns the value of the cell's first child when it is plain
// text. Anything else (no children, emphasis, links, images) yields "".
func CellText(cell *doctree.Node) string {
	first := cell.FirstChild()
	if !first.Is(doctree.KindText) {
		return ""
	}
	return first.Value
}

// Headers returns the cell texts of the table's first row.
func Headers(table *doctree.Node) []string {
	head := table.FirstChild()
	if head == nil {
		return []string{}
	}
	return rowTexts(head)
}

// Rows returns every row after the first, keyed by header position. Missing
// cells map to "", cells beyond the header count are dropped, and a
// repeated header name keeps the value of its first column.
func Rows(table *doctree.Node, headers []string) []Row {
	if table == nil || len(table.Children) < 2 {
		return []Row{}
	}
	rows := make([]Row, 0, len(table.Children)-1)
	for _, r := range table.Children[1:] {
		cells := rowTexts(r)
		row := make(Row, len(headers))
		for i, h := range headers {
			if _, seen := row[h]; seen {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func rowTexts(row *doctree.Node) []string {
	out := make([]string, 0, len(row.Children))
	for _, cell := range row.Children {
		out = append(out, CellText(cell))
	}
	return out
}
