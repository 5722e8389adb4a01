package directive

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	LogReporter(log).Report(Diagnostic{Check: CheckInvalid, Directive: "@Button", Headers: []string{"x"}, Line: 4})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "directive=@Button")
	assert.Contains(t, out, "check=invalid")
	assert.Contains(t, out, "line=4")
}

func TestMultiReporter(t *testing.T) {
	a, b := &Collector{}, &Collector{}
	var calls int
	r := MultiReporter(a, nil, b, ReporterFunc(func(Diagnostic) { calls++ }))

	r.Report(Diagnostic{Directive: "@Button"})

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 1, calls)
}

func TestCollector_Concurrent(t *testing.T) {
	c := &Collector{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Report(Diagnostic{Directive: "@Button"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}

func TestCollector_DiagnosticsIsCopy(t *testing.T) {
	c := &Collector{}
	c.Report(Diagnostic{Directive: "@A"})
	d := c.Diagnostics()
	d[0].Directive = "@B"
	require.Len(t, c.Diagnostics(), 1)
	assert.Equal(t, "@A", c.Diagnostics()[0].Directive)
}

func TestNewExtractor_DefaultReporterLogs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	NewExtractor().Parse("@Button\n| 項目ID |\n|---|\n| x |\n")

	assert.True(t, strings.Contains(buf.String(), "missing required headers"))
}
