package literals

import (
	"strings"

	"github.com/lg-tool/lg/internal/types"
)

// NestedClassifier lets a language descriptor tell the Element Parser how
// a bare `{...}`/`[...]` span or a `name(...)` call should be treated as a
// nested literal, without the parser needing AST access (spec.md §4.6
// Pass 2 operates on the text already extracted from the tree-sitter
// node, so nested detection here is structural, not grammar-driven).
type NestedClassifier struct {
	BracePattern    *types.LiteralPattern // pattern for a `{...}` nested span
	BracketPattern  *types.LiteralPattern // pattern for a `[...]` nested span
	FactoryWrappers map[string]*types.LiteralPattern
}

// ParseElements splits content (the literal's inner text, between its
// opening and closing delimiters) into top-level elements, honoring
// string delimiters and bracket depth, and recognizing nested structures.
func ParseElements(content string, pattern *types.LiteralPattern, nested NestedClassifier) []types.LiteralElement {
	chunks := splitTopLevel(content, pattern.Separator)

	var out []types.LiteralElement
	offset := 0
	for _, raw := range chunks {
		start := offset
		offset += len(raw)
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		rng := types.ByteRange{Start: start, End: start + len(raw)}

		elem := types.LiteralElement{Text: trimmed, Range: rng}

		if pattern.KVSeparator != "" {
			if k, v, ok := splitKV(trimmed, pattern.KVSeparator); ok {
				elem.Key = k
				elem.Text = v
				elem.Nested = classifyNested(v, nested)
				out = append(out, elem)
				continue
			}
		}

		elem.Nested = classifyNested(trimmed, nested)
		out = append(out, elem)
	}
	return out
}

// classifyNested detects whether text is itself a collection or a
// configured factory call, and if so parses it recursively.
func classifyNested(text string, nc NestedClassifier) *types.ParsedLiteral {
	if name, inner, ok := matchFactoryCall(text, nc.FactoryWrappers); ok {
		p := nc.FactoryWrappers[name]
		return &types.ParsedLiteral{
			OriginalText: text,
			Category:     types.CategoryFactoryCall,
			Pattern:      p,
			Wrapper:      name,
			Opening:      name + "(",
			Closing:      ")",
			Content:      ParseElements(inner, p, nc),
		}
	}

	if nc.BracePattern != nil && strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") && balanced(text) {
		inner := text[1 : len(text)-1]
		return &types.ParsedLiteral{
			OriginalText: text,
			Category:     nc.BracePattern.Category,
			Pattern:      nc.BracePattern,
			Opening:      "{",
			Closing:      "}",
			Content:      ParseElements(inner, nc.BracePattern, nc),
		}
	}
	if nc.BracketPattern != nil && strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") && balanced(text) {
		inner := text[1 : len(text)-1]
		return &types.ParsedLiteral{
			OriginalText: text,
			Category:     nc.BracketPattern.Category,
			Pattern:      nc.BracketPattern,
			Opening:      "[",
			Closing:      "]",
			Content:      ParseElements(inner, nc.BracketPattern, nc),
		}
	}
	return nil
}

func matchFactoryCall(text string, wrappers map[string]*types.LiteralPattern) (name, inner string, ok bool) {
	if len(wrappers) == 0 {
		return "", "", false
	}
	open := strings.IndexByte(text, '(')
	if open <= 0 || !strings.HasSuffix(text, ")") {
		return "", "", false
	}
	candidate := text[:open]
	if !isIdentifier(candidate) {
		return "", "", false
	}
	if _, ok := wrappers[candidate]; !ok {
		return "", "", false
	}
	return candidate, text[open+1 : len(text)-1], true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// balanced reports whether text's bracket nesting returns to zero only at
// its very end (i.e. the outer pair truly encloses everything).
func balanced(text string) bool {
	depth := 0
	inStr := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inStr != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == inStr {
				inStr = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inStr = c
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
			if depth == 0 && i != len(text)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// splitKV splits a single top-level element on the first occurrence of
// sep that is outside a string and outside any bracket pair.
func splitKV(text, sep string) (key, value string, ok bool) {
	depth := 0
	inStr := byte(0)
	for i := 0; i+len(sep) <= len(text); i++ {
		c := text[i]
		if inStr != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == inStr {
				inStr = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inStr = c
			continue
		case '{', '[', '(':
			depth++
			continue
		case '}', ']', ')':
			depth--
			continue
		}
		if depth == 0 && text[i:i+len(sep)] == sep {
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+len(sep):]), true
		}
	}
	return "", "", false
}

// splitTopLevel splits content on sep, ignoring occurrences inside string
// literals or nested bracket pairs, mirroring the Element Parser's
// bracket-depth and string-delimiter rules (spec.md §4.6 step 1).
func splitTopLevel(content, sep string) []string {
	if sep == "" {
		if strings.TrimSpace(content) == "" {
			return nil
		}
		return []string{content}
	}
	var chunks []string
	depth := 0
	inStr := byte(0)
	last := 0
	for i := 0; i < len(content); i++ {
		c := content[i]
		if inStr != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == inStr {
				inStr = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inStr = c
			continue
		case '{', '[', '(':
			depth++
			continue
		case '}', ']', ')':
			depth--
			continue
		}
		if depth == 0 && i+len(sep) <= len(content) && content[i:i+len(sep)] == sep {
			chunks = append(chunks, content[last:i])
			last = i + len(sep)
			i += len(sep) - 1
		}
	}
	if last <= len(content) {
		tail := content[last:]
		if strings.TrimSpace(tail) != "" {
			chunks = append(chunks, tail)
		}
	}
	return chunks
}
