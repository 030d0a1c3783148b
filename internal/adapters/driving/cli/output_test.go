package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

func TestRenderHighlights(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		ranges   []domain.Range
		limit    int
		expected string
	}{
		{name: "plain", text: "bridge", limit: 100, expected: "bridge"},
		{name: "bracketed", text: "bridge pier", ranges: []domain.Range{{Start: 7, End: 11}}, limit: 100, expected: "bridge [pier]"},
		{name: "cjk", text: "大桥检测", ranges: []domain.Range{{Start: 2, End: 4}}, limit: 100, expected: "大桥[检测]"},
		{name: "astral counts two units", text: "𠀀桥", ranges: []domain.Range{{Start: 2, End: 3}}, limit: 100, expected: "𠀀[桥]"},
		{name: "flattened", text: "a\r\nb\tc", limit: 100, expected: "a b c"},
		{name: "truncated", text: "abcdef", ranges: []domain.Range{{Start: 1, End: 5}}, limit: 3, expected: "a[bc]…"},
		{name: "cut at segment boundary", text: "abcdef", ranges: []domain.Range{{Start: 3, End: 6}}, limit: 3, expected: "abc…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderHighlights(tt.text, tt.ranges, false, tt.limit))
		})
	}
}

func TestRenderHighlights_Color(t *testing.T) {
	out := renderHighlights("bridge pier", []domain.Range{{Start: 7, End: 11}}, true, 100)

	assert.Contains(t, out, "pier")
	assert.NotContains(t, out, "[pier]")
}

func TestColorEnabled_Buffer(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(new(bytes.Buffer))

	assert.False(t, colorEnabled(cmd))
}

func TestLocation(t *testing.T) {
	clearServices(t)
	_, offset := location().Zone()
	assert.Equal(t, 8*3600, offset)

	m := setupTestServices(t)
	m.settings.settings.UTCOffsetHours = 0
	_, offset = location().Zone()
	assert.Equal(t, 0, offset)
	assert.Equal(t, "1970-01-01", formatDay(0))
}

func TestProgressPrinter(t *testing.T) {
	buf := new(bytes.Buffer)
	p := newProgressPrinter(buf)

	p.Print(domain.ProgressEvent{Operation: "import", Current: 1, Total: 4, Step: "extract", Message: "a.zip"})
	// Dropped by the rate limit.
	p.Print(domain.ProgressEvent{Operation: "import", Current: 2, Total: 4, Step: "extract", Message: "b.zip"})
	p.Print(domain.ProgressEvent{Operation: "import", Current: 4, Total: 4, Step: "done", Message: "4 archives", Complete: true})

	out := buf.String()
	assert.Contains(t, out, "import  25% extract: a.zip")
	assert.NotContains(t, out, "b.zip")
	assert.Contains(t, out, "import 100% done: 4 archives")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressPrinter_ZeroTotal(t *testing.T) {
	buf := new(bytes.Buffer)

	newProgressPrinter(buf).Print(domain.ProgressEvent{Operation: "scan", Step: "walk", Message: "/in"})

	assert.Contains(t, buf.String(), "scan   0% walk: /in")
}

func TestOutputJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	err := outputJSON(cmd, map[string]int{"n": 1})

	assert.NoError(t, err)
	assert.Equal(t, "{\n  \"n\": 1\n}\n", buf.String())
}
