package tokenopt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var lowValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*$`),
	regexp.MustCompile(`^(DEBUG|TRACE|VERBOSE):`),
	regexp.MustCompile(`^\s*\d+%.*\|.*\|`),
	regexp.MustCompile(`^npm (WARN|notice)`),
	regexp.MustCompile(`^\s*at\s+.*\(.*:\d+:\d+\)`),
	regexp.MustCompile(`^info:`),
	regexp.MustCompile(`^\s*\^+\s*$`),
}

var highValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(error|Error|ERROR)`),
	regexp.MustCompile(`(fail|Fail|FAIL)`),
	regexp.MustCompile(`(success|Success|SUCCESS)`),
	regexp.MustCompile(`^(STAGE|CMD)=`),
	regexp.MustCompile(`(warning|Warning|WARNING)`),
	regexp.MustCompile(`(panic|Panic|PANIC)`),
	regexp.MustCompile(`\?\s*\[`),
	regexp.MustCompile(`(test|Test).*passed`),
	regexp.MustCompile(`(test|Test).*failed`),
}

var (
	foldDigitsRe = regexp.MustCompile(`\d+`)
	foldClockRe  = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
)

// OutputFilter shrinks terminal output before it reaches an agent,
// keeping error lines, protocol lines, and the recent tail.
type OutputFilter struct {
	maxLines   int
	keepRecent int
}

// NewOutputFilter returns a filter with the stock budget of 60 kept
// lines, 15 of them reserved for the tail.
func NewOutputFilter() *OutputFilter {
	return &OutputFilter{maxLines: 60, keepRecent: 15}
}

// Filter keeps the highest-value lines of output, up to the line
// budget. Output already within budget passes through untouched.
// Dropped stretches are replaced with an omission marker.
func (f *OutputFilter) Filter(output string) string {
	if output == "" {
		return ""
	}

	lines := strings.Split(output, "\n")
	if len(lines) <= f.maxLines {
		return output
	}

	type scored struct {
		score int
		index int
	}
	ranked := make([]scored, len(lines))
	for i, line := range lines {
		ranked[i] = scored{score: scoreLine(line, i, len(lines)), index: i}
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].score != ranked[b].score {
			return ranked[a].score > ranked[b].score
		}
		return ranked[a].index < ranked[b].index
	})

	selected := make(map[int]bool)
	for i := max(0, len(lines)-f.keepRecent); i < len(lines); i++ {
		selected[i] = true
	}
	for _, s := range ranked {
		if len(selected) >= f.maxLines {
			break
		}
		if s.score > 0 {
			selected[s.index] = true
		}
	}

	indices := make([]int, 0, len(selected))
	for idx := range selected {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var result []string
	prev := -1
	for _, idx := range indices {
		if prev >= 0 && idx-prev > 1 {
			result = append(result, fmt.Sprintf("  ... (%d lines omitted)", idx-prev-1))
		}
		result = append(result, lines[idx])
		prev = idx
	}
	return strings.Join(result, "\n")
}

// scoreLine rates one line: high-value matches add 10, low-value
// matches subtract 5, and later lines earn up to 3 positional points.
func scoreLine(line string, index, total int) int {
	score := 0
	for _, re := range highValuePatterns {
		if re.MatchString(line) {
			score += 10
			break
		}
	}
	for _, re := range lowValuePatterns {
		if loc := re.FindStringIndex(line); loc != nil && loc[0] == 0 {
			score -= 5
			break
		}
	}
	score += int(float64(index) / float64(total) * 3)
	return score
}

// FoldRepetitive collapses runs of near-identical lines, such as
// repeated progress logs, into a single line plus a count marker.
// Lines are compared by their first 60 characters with digits and
// clock times normalized away; runs shorter than 3 stay intact.
func (f *OutputFilter) FoldRepetitive(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) < 5 {
		return output
	}

	var result []string
	var run []string
	prevPattern := ""

	flush := func() {
		if len(run) == 0 {
			return
		}
		// Short runs are not worth a marker.
		if len(run) <= 3 {
			result = append(result, run...)
		} else {
			result = append(result, run[0])
			result = append(result, fmt.Sprintf("  ... (%d similar lines)", len(run)-1))
		}
		run = run[:0]
	}

	for _, line := range lines {
		pattern := foldPattern(line)
		if pattern == prevPattern && len(pattern) > 10 {
			run = append(run, line)
			continue
		}
		flush()
		run = append(run, line)
		prevPattern = pattern
	}
	flush()

	return strings.Join(result, "\n")
}

func foldPattern(line string) string {
	head := line
	if len(head) > 60 {
		head = head[:60]
	}
	head = foldClockRe.ReplaceAllString(head, "TIME")
	return foldDigitsRe.ReplaceAllString(head, "N")
}
