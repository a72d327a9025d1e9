package mdtemplate

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a heading's text into its anchor slug: lowercased,
// non-alphanumeric runs collapsed to a single '-', per the GLOSSARY.
func Slugify(heading string) string {
	s := strings.ToLower(strings.TrimSpace(heading))
	s = nonAlnumRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ExtractAnchor returns the subtree of text rooted at the heading whose
// slug matches anchor: the heading line plus every line up to (not
// including) the next heading at the same level or shallower, outside
// fenced blocks.
func ExtractAnchor(text, anchor string) (string, bool) {
	lines := splitLinesNoEnds(text)
	inFence := make([]bool, len(lines))
	markFencedLines(lines, inFence)

	startIdx := -1
	startLevel := 0
	for i, l := range lines {
		if inFence[i] {
			continue
		}
		m := atxHeadingRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		headingText := strings.TrimSpace(m[2])
		if Slugify(headingText) == anchor {
			startIdx = i
			startLevel = len(m[1])
			break
		}
	}
	if startIdx < 0 {
		return "", false
	}

	end := len(lines)
	for i := startIdx + 1; i < len(lines); i++ {
		if inFence[i] {
			continue
		}
		m := atxHeadingRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		if len(m[1]) <= startLevel {
			end = i
			break
		}
	}
	return strings.Join(lines[startIdx:end], "\n"), true
}
