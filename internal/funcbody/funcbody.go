// Package funcbody implements the Function-Body Optimizer (C7): it strips
// or trims function/method bodies discovered by the Element Collector
// according to a per-section policy, always preserving a docstring that
// precedes the stripped range.
package funcbody

import (
	"regexp"

	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/types"
)

// Policy selects how a function body is treated.
type Policy string

const (
	PolicyKeep     Policy = "keep"
	PolicyStripAll Policy = "strip_all"
	PolicyTrim     Policy = "trim"
)

// Config is one section's function-body optimizer settings.
type Config struct {
	Policy         Policy
	TrimMaxLines   int // only consulted when Policy == PolicyTrim
	ExceptPatterns []*regexp.Regexp
	KeepAnnotated  []string // decorator/annotation names that force a keep
	Placeholder    string   // e.g. "// ... body omitted"
}

// newlineOffsets returns the byte offset of every '\n' in src, used to
// compute how many lines a range spans.
func newlineOffsets(src []byte) []int {
	var offs []int
	for i, b := range src {
		if b == '\n' {
			offs = append(offs, i)
		}
	}
	return offs
}

func lineSpan(offs []int, r types.ByteRange) int {
	count := 1
	for _, o := range offs {
		if o > r.Start && o < r.End {
			count++
		}
	}
	return count
}

// decoratorText extracts the verbatim text of an element's decorator
// ranges, used to test KeepAnnotated.
func decoratorText(src []byte, elem types.Element) []string {
	var out []string
	for _, r := range elem.DecoratorRanges {
		out = append(out, string(src[r.Start:r.End]))
	}
	return out
}

// shouldPreserve runs the except_patterns/keep_annotated evaluators in
// order; the first hit wins (spec.md §4.7).
func shouldPreserve(src []byte, elem types.Element, cfg Config) bool {
	for _, re := range cfg.ExceptPatterns {
		if re.MatchString(elem.Name) {
			return true
		}
	}
	if len(cfg.KeepAnnotated) > 0 {
		for _, d := range decoratorText(src, elem) {
			for _, name := range cfg.KeepAnnotated {
				if containsIdent(d, name) {
					return true
				}
			}
		}
	}
	return false
}

func containsIdent(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// Run applies cfg to every function-like element in elems that has a
// body, registering a strip edit on buf where the policy calls for one.
func Run(src []byte, elems []types.Element, cfg Config, buf *editbuf.Buffer) {
	if cfg.Policy == PolicyKeep {
		return
	}
	offs := newlineOffsets(src)

	for _, el := range elems {
		if !el.HasBody || el.BodyRange == nil {
			continue
		}
		if lineSpan(offs, *el.BodyRange) <= 1 {
			continue // single-line bodies are always kept
		}
		if shouldPreserve(src, el, cfg) {
			continue
		}

		stripStart := el.BodyRange.Start
		if el.DocstringRange != nil && el.DocstringRange.End > stripStart && el.DocstringRange.End <= el.BodyRange.End {
			stripStart = el.DocstringRange.End
		}
		stripRange := types.ByteRange{Start: stripStart, End: el.BodyRange.End}
		if stripRange.Len() <= 0 {
			continue
		}

		switch cfg.Policy {
		case PolicyStripAll:
			_ = buf.AddReplacement(stripRange.Start, stripRange.End, cfg.Placeholder, "func-body-strip")
		case PolicyTrim:
			if lineSpan(offs, stripRange) <= cfg.TrimMaxLines {
				continue
			}
			_ = buf.AddReplacement(stripRange.Start, stripRange.End, cfg.Placeholder, "func-body-trim")
		}
	}
}
