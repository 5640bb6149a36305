package fileio

import (
	"sort"
	"strings"
)

// Line is one line of a manifest with its terminator kept apart, so that
// rewriting the text never changes line endings.
type Line struct {
	Text   string
	Ending string
}

// SplitLines splits content into lines, keeping "\n" or "\r\n" endings.
func SplitLines(content string) []Line {
	var lines []Line
	for content != "" {
		idx := strings.IndexByte(content, '\n')
		if idx < 0 {
			lines = append(lines, Line{Text: content})
			break
		}
		text := content[:idx]
		ending := "\n"
		if strings.HasSuffix(text, "\r") {
			text = text[:len(text)-1]
			ending = "\r\n"
		}
		lines = append(lines, Line{Text: text, Ending: ending})
		content = content[idx+1:]
	}
	return lines
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []Line) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line.Text)
		sb.WriteString(line.Ending)
	}
	return sb.String()
}

// LineAt returns the 1-based line number containing byte offset.
func LineAt(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n") + 1
}

// Span is a byte range of a manifest to be replaced by Text.
type Span struct {
	Start int
	End   int
	Text  string
}

// ApplySpans replaces every span in content. Spans must not overlap; they
// are applied from the end so earlier offsets stay valid.
func ApplySpans(content string, spans []Span) string {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })
	for _, span := range sorted {
		content = content[:span.Start] + span.Text + content[span.End:]
	}
	return content
}
