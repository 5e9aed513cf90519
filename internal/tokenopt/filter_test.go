package tokenopt

import (
	"fmt"
	"strings"
	"testing"
)

func TestFilterPassthroughWithinBudget(t *testing.T) {
	f := NewOutputFilter()

	output := strings.Repeat("line\n", 59) + "line"
	if got := f.Filter(output); got != output {
		t.Error("output within the line budget must pass through unchanged")
	}
	if got := f.Filter(""); got != "" {
		t.Errorf("empty input = %q, want empty", got)
	}
}

func TestFilterKeepsErrorsAndTail(t *testing.T) {
	f := NewOutputFilter()

	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, fmt.Sprintf("neutral output number %d", i))
	}
	lines[40] = "error: something broke at step 40"
	got := f.Filter(strings.Join(lines, "\n"))

	if !strings.Contains(got, "error: something broke at step 40") {
		t.Error("high-value error line was dropped")
	}
	for i := 185; i < 200; i++ {
		if !strings.Contains(got, fmt.Sprintf("neutral output number %d", i)) {
			t.Errorf("recent line %d was dropped", i)
		}
	}
	if !strings.Contains(got, "lines omitted)") {
		t.Error("dropped stretches should leave an omission marker")
	}
	if n := len(strings.Split(got, "\n")); n > f.maxLines*2 {
		t.Errorf("filtered output has %d lines, far over budget", n)
	}
}

func TestFilterKeepsProtocolLines(t *testing.T) {
	f := NewOutputFilter()

	var lines []string
	for i := 0; i < 150; i++ {
		lines = append(lines, fmt.Sprintf("build step %d", i))
	}
	lines[5] = "STAGE=coding;CMD=go build ./..."

	got := f.Filter(strings.Join(lines, "\n"))
	if !strings.Contains(got, "STAGE=coding;CMD=go build ./...") {
		t.Error("protocol lines must survive filtering")
	}
}

func TestFoldRepetitive(t *testing.T) {
	f := NewOutputFilter()

	var lines []string
	lines = append(lines, "starting download now")
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("downloading chunk %d of 30 from mirror", i))
	}
	lines = append(lines, "download complete")

	got := f.FoldRepetitive(strings.Join(lines, "\n"))

	if !strings.Contains(got, "(29 similar lines)") {
		t.Errorf("missing fold marker in:\n%s", got)
	}
	if !strings.Contains(got, "downloading chunk 0 of 30 from mirror") {
		t.Error("first line of the run should survive")
	}
	if !strings.Contains(got, "starting download now") || !strings.Contains(got, "download complete") {
		t.Error("surrounding lines should survive")
	}
	if n := len(strings.Split(got, "\n")); n != 4 {
		t.Errorf("folded output has %d lines, want 4", n)
	}
}

func TestFoldRepetitiveKeepsShortRuns(t *testing.T) {
	f := NewOutputFilter()

	output := strings.Join([]string{
		"fetching package alpha now",
		"fetching package alpha now",
		"fetching package alpha now",
		"done with everything",
		"one more line",
	}, "\n")

	got := f.FoldRepetitive(output)
	if strings.Contains(got, "similar lines") {
		t.Errorf("runs of 3 or fewer should not fold:\n%s", got)
	}
	if got != output {
		t.Errorf("short runs should pass through unchanged, got:\n%s", got)
	}
}

func TestFoldRepetitiveShortInput(t *testing.T) {
	f := NewOutputFilter()

	output := "a\nb\nc"
	if got := f.FoldRepetitive(output); got != output {
		t.Error("inputs under 5 lines pass through unchanged")
	}
}
