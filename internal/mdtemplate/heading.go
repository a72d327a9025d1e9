package mdtemplate

import (
	"regexp"
	"strings"
)

var atxHeadingRe = regexp.MustCompile(`^(#{1,6})(\s+.*)?$`)
var setextUnderlineEq = regexp.MustCompile(`^=+\s*$`)
var setextUnderlineDash = regexp.MustCompile(`^-+\s*$`)

type headingLine struct {
	lineIndex int
	level     int
}

// NormalizeHeadings implements spec.md §4.11's markdown heading
// normalization. singleFile marks a group_size==1 inclusion, the only
// case strip_h1 is honored even when requested. Returns the rewritten
// text and the metadata keys md.removed_h1 / md.shifted.
func NormalizeHeadings(text string, maxHeadingLevel int, stripH1Requested, singleFile bool) (string, map[string]any) {
	if maxHeadingLevel > 6 {
		maxHeadingLevel = 6
	}
	if maxHeadingLevel < 1 {
		maxHeadingLevel = 1
	}

	lines := splitLinesNoEnds(text)
	lines = convertSetext(lines)

	inFence := make([]bool, len(lines))
	markFencedLines(lines, inFence)

	var headings []headingLine
	for i, l := range lines {
		if inFence[i] {
			continue
		}
		if m := atxHeadingRe.FindStringSubmatch(l); m != nil {
			headings = append(headings, headingLine{lineIndex: i, level: len(m[1])})
		}
	}

	meta := map[string]any{"md.removed_h1": 0, "md.shifted": false}

	removedH1 := false
	if stripH1Requested && singleFile && len(headings) > 0 && headings[0].level == 1 {
		removeLine := headings[0].lineIndex
		lines = append(lines[:removeLine], lines[removeLine+1:]...)
		headings = headings[1:]
		for i := range headings {
			headings[i].lineIndex--
		}
		removedH1 = true
	}
	if removedH1 {
		meta["md.removed_h1"] = 1
	}

	if len(headings) > 0 {
		minLvl := headings[0].level
		for _, h := range headings {
			if h.level < minLvl {
				minLvl = h.level
			}
		}
		shift := maxHeadingLevel - minLvl
		if shift != 0 {
			meta["md.shifted"] = true
			for _, h := range headings {
				newLevel := h.level + shift
				if newLevel > 6 {
					newLevel = 6
				}
				if newLevel < 1 {
					newLevel = 1
				}
				lines[h.lineIndex] = rewriteHeadingLevel(lines[h.lineIndex], newLevel)
			}
		}
	}

	out := strings.Join(lines, "\n")
	return out, meta
}

func rewriteHeadingLevel(line string, level int) string {
	m := atxHeadingRe.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	rest := m[2]
	return strings.Repeat("#", level) + rest
}

func splitLinesNoEnds(text string) []string {
	return strings.Split(text, "\n")
}

// convertSetext rewrites `Title\n===` / `Title\n---` pairs into ATX `#
// Title` / `## Title` before heading detection runs (spec.md §4.11 step 3).
func convertSetext(lines []string) []string {
	out := make([]string, 0, len(lines))
	i := 0
	for i < len(lines) {
		if i+1 < len(lines) && strings.TrimSpace(lines[i]) != "" {
			next := lines[i+1]
			if setextUnderlineEq.MatchString(next) {
				out = append(out, "# "+strings.TrimSpace(lines[i]))
				i += 2
				continue
			}
			if setextUnderlineDash.MatchString(next) {
				out = append(out, "## "+strings.TrimSpace(lines[i]))
				i += 2
				continue
			}
		}
		out = append(out, lines[i])
		i++
	}
	return out
}

// markFencedLines sets inFence[i] for every line inside a fenced block,
// including the delimiter lines themselves.
func markFencedLines(lines []string, inFence []bool) {
	open := false
	var delim string
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if !open {
			if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
				open = true
				delim = trimmed[:3]
				inFence[i] = true
				continue
			}
		} else {
			inFence[i] = true
			if strings.HasPrefix(trimmed, delim) {
				open = false
			}
		}
	}
}
