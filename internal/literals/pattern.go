// Package literals implements the Literal Optimizer (C6): Pass 1 shrinks
// over-budget string literals, Pass 2 runs depth-first budget-aware
// selection over top-level collection literals. Both passes register their
// changes as edits on an editbuf.Buffer rather than mutating text directly.
package literals

import "github.com/lg-tool/lg/internal/types"

// LanguageLiteralDescriptor maps a language's AST node kinds onto the
// shared literal-handling patterns (spec.md §4.6).
type LanguageLiteralDescriptor struct {
	Patterns map[string]*types.LiteralPattern // keyed by tree-sitter node kind
}

// PatternFor returns the pattern registered for a tree-sitter node kind, if
// any.
func (d LanguageLiteralDescriptor) PatternFor(nodeKind string) (*types.LiteralPattern, bool) {
	p, ok := d.Patterns[nodeKind]
	return p, ok
}

// overhead computes the fixed token cost a literal's opening, closing, and
// placeholder impose, independent of the content kept.
func overhead(counter TokenCounter, opening, closing, placeholder, indent string, multiline bool) int {
	n := counter.Count(opening) + counter.Count(closing)
	if placeholder != "" {
		n += counter.Count(placeholder)
	}
	if multiline && indent != "" {
		n += counter.Count(indent)
	}
	return n
}

// TokenCounter is the literal optimizer's narrow dependency on a
// tokenizer — just enough to cost strings, never more.
type TokenCounter interface {
	Count(text string) int
}
