package mdtemplate

import "strings"

// fenceRange is a byte span covering one fenced code block, including its
// delimiter lines.
type fenceRange struct{ start, end int }

// fencedRanges finds every ```/~~~-delimited block in text. An unterminated
// fence runs to end of text (matches the common markdown-renderer rule).
func fencedRanges(text string) []fenceRange {
	var ranges []fenceRange
	lines := splitKeepEnds(text)

	offset := 0
	var openDelim string
	var openOffset int
	open := false

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if !open {
			if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
				openDelim = trimmed[:3]
				openOffset = offset
				open = true
			}
		} else {
			if strings.HasPrefix(trimmed, openDelim) {
				ranges = append(ranges, fenceRange{start: openOffset, end: offset + len(line)})
				open = false
			}
		}
		offset += len(line)
	}
	if open {
		ranges = append(ranges, fenceRange{start: openOffset, end: len(text)})
	}
	return ranges
}

// splitKeepEnds splits text into lines, each retaining its trailing '\n'
// (the last line may lack one).
func splitKeepEnds(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
