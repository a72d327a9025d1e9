package literals

import "github.com/lg-tool/lg/internal/types"

// elementText is what counts toward an element's token cost: the
// key/value pair when present, otherwise the bare text.
func elementText(kvSep string, el types.LiteralElement) string {
	if el.Key != "" {
		return el.Key + kvSep + el.Text
	}
	return el.Text
}

// SelectDFS implements spec.md §4.6 step 3: depth-first, budget-aware
// selection over one collection's elements. minElements forces the first
// N elements to be kept regardless of cost (spec.md's "forced-keep").
// When a kept element carries a nested structure, SelectDFS recurses with
// whatever budget remains, and the nested selection's actual cost (not
// the unshrunk original) is what gets charged against this level.
func SelectDFS(elements []types.LiteralElement, kvSep string, budget, minElements int, counter TokenCounter, nc NestedClassifier) *types.DFSSelection {
	sel := &types.DFSSelection{NestedSelections: map[int]*types.DFSSelection{}}
	remaining := budget
	exhausted := false

	for i, el := range elements {
		if exhausted {
			sel.Removed = append(sel.Removed, el)
			sel.TokensRemoved += counter.Count(elementText(kvSep, el))
			continue
		}

		forced := len(sel.Kept) < minElements
		plainCost := counter.Count(elementText(kvSep, el))

		if el.Nested != nil && (plainCost > remaining) && !forced {
			nestedBudget := remaining
			if nestedBudget < 0 {
				nestedBudget = 0
			}
			childSel := SelectDFS(el.Nested.Content, el.Nested.Pattern.KVSeparator, nestedBudget, 0, counter, nc)
			shrinkCost := counter.Count(el.Nested.Opening) + counter.Count(el.Nested.Closing) + childSel.TokensKept
			if el.Key != "" {
				shrinkCost += counter.Count(el.Key + kvSep)
			}
			if shrinkCost <= remaining {
				sel.Kept = append(sel.Kept, el)
				sel.NestedSelections[i] = childSel
				sel.TokensKept += shrinkCost
				remaining -= shrinkCost
				if childSel.BudgetExhausted {
					sel.BudgetExhausted = true
				}
				continue
			}
		}

		if plainCost <= remaining || forced {
			sel.Kept = append(sel.Kept, el)
			sel.TokensKept += plainCost
			remaining -= plainCost
			continue
		}

		exhausted = true
		sel.BudgetExhausted = true
		sel.Removed = append(sel.Removed, el)
		sel.TokensRemoved += plainCost
	}

	sel.Total = len(elements)
	sel.RemainingBudget = remaining
	return sel
}
