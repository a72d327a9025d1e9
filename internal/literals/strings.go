package literals

import (
	"strings"
	"unicode/utf8"

	"github.com/lg-tool/lg/internal/types"
)

const ellipsis = "…"

// span is a byte range within a string literal's content that must not be
// split by truncation (an interpolation hole).
type span struct{ start, end int }

// interpolationSpans finds every occurrence of each configured marker
// pair within content. Markers with a non-empty Close scan to the next
// Close; markers with an empty Close (bare "$name" forms) scan to the end
// of the following identifier run.
func interpolationSpans(content string, markers []types.InterpolationMarker) []span {
	var spans []span
	for _, m := range markers {
		if m.Open == "" {
			continue
		}
		i := 0
		for {
			idx := strings.Index(content[i:], m.Open)
			if idx < 0 {
				break
			}
			start := i + idx
			if m.Close != "" {
				closeIdx := strings.Index(content[start+len(m.Open):], m.Close)
				if closeIdx < 0 {
					break
				}
				end := start + len(m.Open) + closeIdx + len(m.Close)
				spans = append(spans, span{start, end})
				i = end
				continue
			}
			// Bare-identifier form: $name. Scan identifier chars after Open.
			end := start + len(m.Open)
			for end < len(content) && isIdentByte(content[end]) {
				end++
			}
			spans = append(spans, span{start, end})
			i = end
		}
	}
	return spans
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// safeBoundary pulls cut back to the nearest UTF-8 rune boundary, then
// further back out of any interpolation span it would otherwise bisect.
func safeBoundary(content string, cut int, spans []span) int {
	if cut > len(content) {
		cut = len(content)
	}
	for cut > 0 && cut < len(content) && !utf8.RuneStart(content[cut]) {
		cut--
	}
	for _, s := range spans {
		if cut > s.start && cut < s.end {
			cut = s.start
		}
	}
	return cut
}

// TruncateResult describes one Pass-1 string shrink.
type TruncateResult struct {
	NewText       string // full replacement text: opening + truncated content + ellipsis + closing
	TrailingNote  string // trailing comment text to append, when PlaceholderPosition != NONE
	RemovedTokens int
	Trimmed       bool
}

// TruncateString implements spec.md §4.6 Pass 1 for one string-category
// literal. content is the text strictly between opening and closing
// delimiters. indent is only used for multiline overhead accounting.
func TruncateString(content, opening, closing, indent string, multiline bool, budget int, counter TokenCounter, pattern *types.LiteralPattern) TruncateResult {
	originalTokens := counter.Count(opening + content + closing)
	if originalTokens <= budget {
		return TruncateResult{NewText: opening + content + closing, Trimmed: false}
	}

	placeholder := ellipsis
	ov := overhead(counter, opening, closing, placeholder, indent, multiline)
	contentBudget := budget - ov
	if contentBudget < 0 {
		contentBudget = 0
	}

	spans := interpolationSpans(content, pattern.InterpolationMarkers)

	lo, hi := 0, len(content)
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		cut := safeBoundary(content, mid, spans)
		if counter.Count(content[:cut]) <= contentBudget {
			if cut > best {
				best = cut
			}
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	cut := safeBoundary(content, best, spans)
	truncated := content[:cut]

	newText := opening + truncated + placeholder + closing
	removed := originalTokens - counter.Count(newText)

	result := TruncateResult{NewText: newText, Trimmed: true, RemovedTokens: removed}
	if pattern.PlaceholderPosition != types.PlaceholderNone && pattern.CommentName != "" {
		result.TrailingNote = pattern.CommentName
	}
	return result
}
