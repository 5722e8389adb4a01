package directive

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// GlobalHeaders are required on every table whose directive has a schema.
var GlobalHeaders = []string{"項目ID", "項目名"}

// specificHeaders lists the extra required columns per directive. Adding a
// directive here is how a new schema is introduced.
var specificHeaders = map[string][]string{
	"@Button":  {"イベント名"},
	"@TextBox": {"桁数"},
}

var defaultRegistry = NewRegistry(GlobalHeaders, specificHeaders)

// Registry holds the header schema of each known directive. It is never
// modified after construction and is safe for concurrent use.
type Registry struct {
	global   []string
	specific map[string][]string
}

// DefaultRegistry returns the compiled-in schema registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry from global and per-directive headers.
// The inputs are copied.
func NewRegistry(global []string, specific map[string][]string) *Registry {
	r := &Registry{
		global:   slices.Clone(global),
		specific: make(map[string][]string, len(specific)),
	}
	for name, headers := range specific {
		r.specific[name] = slices.Clone(headers)
	}
	return r
}

// Global returns a copy of the global headers.
func (r *Registry) Global() []string {
	return slices.Clone(r.global)
}

// Specific returns a copy of the directive's own headers.
func (r *Registry) Specific(directive string) ([]string, bool) {
	h, ok := r.specific[directive]
	if !ok {
		return nil, false
	}
	return slices.Clone(h), true
}

// Allowed returns the global headers followed by the directive's own
// headers. It reports false for directives with no schema.
func (r *Registry) Allowed(directive string) ([]string, bool) {
	specific, ok := r.specific[directive]
	if !ok {
		return nil, false
	}
	allowed := make([]string, 0, len(r.global)+len(specific))
	allowed = append(allowed, r.global...)
	return append(allowed, specific...), true
}

// Directives returns the names of all directives with a schema, sorted.
func (r *Registry) Directives() []string {
	names := make([]string, 0, len(r.specific))
	for name := range r.specific {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks observed headers against the directive's schema. It
// returns at most one missing-header and one invalid-header diagnostic.
// Unregistered directives are not checked.
func (r *Registry) Validate(directive string, headers []string, line int) []Diagnostic {
	allowed, ok := r.Allowed(directive)
	if !ok {
		return nil
	}

	var missing []string
	for _, h := range allowed {
		if !slices.Contains(headers, h) {
			missing = append(missing, h)
		}
	}

	// Unlabeled columns are tolerated.
	var invalid []string
	for _, h := range headers {
		if h != "" && !slices.Contains(allowed, h) {
			invalid = append(invalid, h)
		}
	}

	var diags []Diagnostic
	if len(missing) > 0 {
		diags = append(diags, Diagnostic{Check: CheckMissing, Directive: directive, Headers: missing, Line: line})
	}
	if len(invalid) > 0 {
		diags = append(diags, Diagnostic{Check: CheckInvalid, Directive: directive, Headers: invalid, Line: line})
	}
	return diags
}

// Check names the schema rule a Diagnostic reports on.
type Check string

const (
	CheckMissing Check = "missing" // required header absent
	CheckInvalid Check = "invalid" // header not in the schema
)

// Diagnostic is a non-fatal schema mismatch found on a directive table.
type Diagnostic struct {
	Check     Check    `json:"check" yaml:"check"`
	Directive string   `json:"directive" yaml:"directive"`
	Headers   []string `json:"headers" yaml:"headers"`
	Line      int      `json:"line" yaml:"line"`
}

func (d Diagnostic) String() string {
	joined := strings.Join(d.Headers, ", ")
	switch d.Check {
	case CheckMissing:
		return fmt.Sprintf("%s table is missing required headers: %s (line %d)", d.Directive, joined, d.Line)
	case CheckInvalid:
		return fmt.Sprintf("%s table has headers that are not allowed: %s (line %d)", d.Directive, joined, d.Line)
	default:
		return fmt.Sprintf("%s table failed %s check: %s (line %d)", d.Directive, d.Check, joined, d.Line)
	}
}
