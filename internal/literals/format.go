package literals

import (
	"fmt"
	"strings"

	"github.com/lg-tool/lg/internal/types"
)

// inlineThreshold is the character-length cap under which a fully-kept
// nested structure stays inline even though its parent renders multiline
// (spec.md §4.6 step 4).
const inlineThreshold = 60

// Format reconstructs one literal's text from its parse tree and the DFS
// selection computed over its top-level elements.
func Format(pl *types.ParsedLiteral, sel *types.DFSSelection, counter TokenCounter) string {
	keptStarts := make(map[int]bool, len(sel.Kept))
	for _, k := range sel.Kept {
		keptStarts[k.Range.Start] = true
	}

	var parts []string
	for i, el := range pl.Content {
		if !keptStarts[el.Range.Start] {
			continue
		}
		text := el.Text
		if el.Nested != nil {
			if nestedSel, ok := sel.NestedSelections[i]; ok {
				text = Format(el.Nested, nestedSel, counter)
			} else {
				text = inlineOrAsIs(el.Nested.OriginalText)
			}
		}
		if el.Key != "" {
			parts = append(parts, el.Key+pl.Pattern.KVSeparator+text)
		} else {
			parts = append(parts, text)
		}
	}

	removedCount := len(sel.Removed)
	var placeholder string
	if removedCount > 0 && pl.Pattern.PlaceholderPosition != types.PlaceholderNone && pl.Pattern.PlaceholderTemplate != "" {
		placeholder = fmt.Sprintf(pl.Pattern.PlaceholderTemplate, removedCount, sel.TokensRemoved)
	}

	sep := pl.Pattern.Separator
	var joiner string
	if pl.IsMultiline {
		joiner = sep + "\n" + pl.ElementIndent
	} else {
		joiner = sep + " "
	}
	body := strings.Join(parts, joiner)

	switch pl.Pattern.PlaceholderPosition {
	case types.PlaceholderEnd:
		if placeholder != "" {
			if body != "" {
				if pl.Wrapper == "" {
					body += sep
				}
				if pl.IsMultiline {
					body += "\n" + pl.ElementIndent
				} else {
					body += " "
				}
			}
			body += placeholder
		}
	case types.PlaceholderMiddleComment:
		if placeholder != "" {
			if pl.IsMultiline {
				if body != "" {
					body += sep
				}
				body += "\n" + pl.ElementIndent + placeholder
			} else {
				body += sep + " /* " + placeholder + " */"
			}
		}
	}

	opening, closing := pl.Opening, pl.Closing
	if pl.Wrapper != "" {
		opening = pl.Wrapper + "("
		closing = ")"
	}

	if pl.IsMultiline {
		return opening + "\n" + pl.ElementIndent + body + "\n" + pl.BaseIndent + closing
	}
	return opening + body + closing
}

// inlineOrAsIs is used when a nested structure was fully kept (no
// recursive selection was run for it because it fit as a single unit). A
// short original collapses onto one line so it reads as a single element
// of its parent; anything past inlineThreshold keeps its own formatting.
func inlineOrAsIs(text string) string {
	if len(text) <= inlineThreshold {
		return strings.Join(strings.Fields(text), " ")
	}
	return text
}
