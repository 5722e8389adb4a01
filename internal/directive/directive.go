// Package directive extracts directive tables from a document tree.
//
// A directive table is a paragraph whose text starts with Marker (for
// example "@Button") immediately followed by a table. Each pairing becomes
// a ParsedDirective, and its header row is checked against the directive's
// schema in a Registry. Schema mismatches are reported to a Reporter as
// Diagnostics; they never change or suppress the extracted record.
package directive

// Marker is the character that starts a directive paragraph.
const Marker = "@"

// Row maps a header name to the text of the cell in that column.
type Row map[string]string

// ParsedDirective is one directive paragraph and the table that follows it.
type ParsedDirective struct {
	Directive string   `json:"directive" yaml:"directive"`
	Line      int      `json:"line" yaml:"line"` // 1-based line of the table, 0 if unknown
	Headers   []string `json:"headers" yaml:"headers"`
	Rows      []Row    `json:"rows" yaml:"rows"`
}
