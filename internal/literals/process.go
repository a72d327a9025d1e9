package literals

import (
	"strings"

	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/types"
)

// Node is one literal candidate handed to the optimizer by the language
// adapter: a byte range plus the AST node kind that selects its pattern,
// and whether it sits inside another collection (Pass 2 only touches
// top-level collections).
type Node struct {
	Range       types.ByteRange
	ASTKind     string
	TopLevel    bool
	IsMultiline bool
	BaseIndent  string
	ElementIndent string
}

// Run executes both passes over source for one file's literal nodes,
// registering every shrink as an edit on buf. Nodes must already be in
// document order; Pass 2 skips any collection range contained in an edit
// Pass 1 already registered (spec.md §4.6: "skip any collection strictly
// contained in an already-edited string range").
func Run(source []byte, nodes []Node, desc LanguageLiteralDescriptor, nc NestedClassifier, budgetPerNode int, counter TokenCounter, buf *editbuf.Buffer) {
	// Pass 1: strings.
	for _, n := range nodes {
		pattern, ok := desc.PatternFor(n.ASTKind)
		if !ok || pattern.Category != types.CategoryString {
			continue
		}
		runString(source, n, pattern, budgetPerNode, counter, buf)
	}

	// Pass 2: top-level collections only.
	for _, n := range nodes {
		if !n.TopLevel {
			continue
		}
		pattern, ok := desc.PatternFor(n.ASTKind)
		if !ok || pattern.Category == types.CategoryString {
			continue
		}
		if overlapsExistingEdit(buf, n.Range) {
			continue
		}
		runCollection(source, n, pattern, nc, budgetPerNode, counter, buf)
	}
}

func overlapsExistingEdit(buf *editbuf.Buffer, rng types.ByteRange) bool {
	for _, e := range buf.Edits() {
		if e.Range.Contains(rng) {
			return true
		}
	}
	return false
}

func runString(source []byte, n Node, pattern *types.LiteralPattern, budget int, counter TokenCounter, buf *editbuf.Buffer) {
	raw := string(source[n.Range.Start:n.Range.End])
	open, closeDelim := pattern.OpenDelim, pattern.CloseDelim
	if !strings.HasPrefix(raw, open) || !strings.HasSuffix(raw, closeDelim) || len(raw) < len(open)+len(closeDelim) {
		return
	}
	content := raw[len(open) : len(raw)-len(closeDelim)]

	res := TruncateString(content, open, closeDelim, n.ElementIndent, n.IsMultiline, budget, counter, pattern)
	if !res.Trimmed {
		return
	}

	_ = buf.AddReplacement(n.Range.Start, n.Range.End, res.NewText, "literal-string")
	if res.TrailingNote != "" {
		_ = buf.AddInsertion(n.Range.End, trailingComment(res.TrailingNote, res.RemovedTokens), "literal-string-note")
	}
}

// trailingComment formats the post-literal note per spec.md §4.6 step 6,
// e.g. `// literal string (−41 tokens)`.
func trailingComment(name string, removedTokens int) string {
	return " // " + name + " (−" + itoa(removedTokens) + " tokens)"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func runCollection(source []byte, n Node, pattern *types.LiteralPattern, nc NestedClassifier, budget int, counter TokenCounter, buf *editbuf.Buffer) {
	raw := string(source[n.Range.Start:n.Range.End])
	open, closeDelim := pattern.OpenDelim, pattern.CloseDelim
	if !strings.HasPrefix(raw, open) || !strings.HasSuffix(raw, closeDelim) {
		return
	}
	content := raw[len(open) : len(raw)-len(closeDelim)]

	elements := ParseElements(content, pattern, nc)
	if len(elements) == 0 {
		return
	}

	placeholderOverhead := 0
	if pattern.PlaceholderTemplate != "" {
		placeholderOverhead = counter.Count(pattern.PlaceholderTemplate)
	}
	contentBudget := budget - counter.Count(open) - counter.Count(closeDelim) - placeholderOverhead
	if contentBudget < 10 {
		contentBudget = 10
	}

	sel := SelectDFS(elements, pattern.KVSeparator, contentBudget, pattern.MinElements, counter, nc)
	if len(sel.Removed) == 0 {
		return // nothing trimmed: zero savings, no edit (spec.md §4.6 tie-break)
	}

	pl := &types.ParsedLiteral{
		OriginalText:  raw,
		Range:         n.Range,
		Category:      pattern.Category,
		Pattern:       pattern,
		Opening:       open,
		Closing:       closeDelim,
		Content:       elements,
		IsMultiline:   n.IsMultiline,
		BaseIndent:    n.BaseIndent,
		ElementIndent: n.ElementIndent,
	}

	newText := Format(pl, sel, counter)
	if newText == raw {
		return
	}

	from := 0
	nestedAt := func(nr types.ByteRange) (int, int, bool) {
		// Format builds newText from the original source, so each nested
		// Pass-1 edit is located by finding its original text verbatim in
		// newText, scanning forward in document order. Zero-width edits
		// (Pass-1 trailing notes) have no text to find and are dropped.
		if nr.Len() == 0 {
			return 0, 0, false
		}
		orig := string(source[nr.Start:nr.End])
		idx := strings.Index(newText[from:], orig)
		if idx < 0 {
			return 0, 0, false
		}
		start := from + idx
		from = start + len(orig)
		return start, from, true
	}

	_ = buf.AddReplacementComposingNested(n.Range.Start, n.Range.End, newText, "literal-collection", nestedAt)

	if pattern.CommentName != "" {
		_ = buf.AddInsertion(n.Range.End, trailingComment(pattern.CommentName, sel.TokensRemoved), "literal-collection-note")
	}
}
