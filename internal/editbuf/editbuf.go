// Package editbuf implements the Edit Buffer (C4): byte-range replacements
// and insertions over one file's original text, with overlap detection and
// a single-pass apply. A "composing" edit may enclose narrower edits that
// were registered earlier; its own replacement text has those nested
// edits' effects substituted back in before the buffer considers it for
// overlap against anything else.
package editbuf

import (
	"sort"

	"github.com/lg-tool/lg/internal/errs"
	"github.com/lg-tool/lg/internal/types"
)

// Kind distinguishes a byte-range replacement from a pure insertion.
type Kind int

const (
	KindReplacement Kind = iota
	KindInsertion
)

// Edit is one registered change.
type Edit struct {
	Kind      Kind
	Range     types.ByteRange // for KindInsertion, Range.Start == Range.End == the insertion point
	NewText   string
	Tag       string
	Composing bool
}

// Buffer accumulates edits against one immutable original text and
// produces the final text in Apply.
type Buffer struct {
	original []byte
	edits    []Edit
}

func New(original []byte) *Buffer {
	return &Buffer{original: original}
}

// AddReplacement registers a non-composing replacement of [start,end).
// Overlapping it with any other previously-registered non-composing edit
// is a fatal programming error (spec.md §4.4).
func (b *Buffer) AddReplacement(start, end int, newText, tag string) error {
	return b.add(Edit{Kind: KindReplacement, Range: types.ByteRange{Start: start, End: end}, NewText: newText, Tag: tag})
}

// AddInsertion registers a zero-width insertion at pos.
func (b *Buffer) AddInsertion(pos int, text, tag string) error {
	return b.add(Edit{Kind: KindInsertion, Range: types.ByteRange{Start: pos, End: pos}, NewText: text, Tag: tag})
}

// AddReplacementComposingNested registers a wide replacement that may
// enclose edits already registered. newText should already reflect the
// wide edit's own content; nested edits strictly inside [start,end) are
// located, and their replacement text is substituted into newText at the
// position each nested range would occupy, using nestedTextAt to map an
// enclosed source range to where it appears inside newText.
//
// nestedTextAt receives the original source range of each enclosed edit,
// and must return the [start,
// end) offsets *within newText* where that nested range's content was
// placed (verbatim) by the caller when it built newText, so the buffer can
// splice the nested edit's NewText in at exactly that spot. Composing
// edits that enclose nothing behave like a plain replacement.
func (b *Buffer) AddReplacementComposingNested(start, end int, newText, tag string, nestedTextAt func(nestedRange types.ByteRange) (newTextStart, newTextEnd int, ok bool)) error {
	wideRange := types.ByteRange{Start: start, End: end}

	var enclosed []Edit
	for _, e := range b.edits {
		if wideRange.Contains(e.Range) && e.Range != wideRange {
			enclosed = append(enclosed, e)
		}
	}

	// Splice nested edits' replacement text into newText from the
	// rightmost offset to the leftmost, so earlier splices don't shift
	// the offsets of ones still pending.
	type splice struct {
		start, end int
		text       string
	}
	var splices []splice
	for _, e := range enclosed {
		if nestedTextAt == nil {
			continue
		}
		ns, ne, ok := nestedTextAt(e.Range)
		if !ok {
			continue
		}
		splices = append(splices, splice{ns, ne, e.NewText})
	}
	sort.Slice(splices, func(i, j int) bool { return splices[i].start > splices[j].start })
	for _, s := range splices {
		if s.start < 0 || s.end > len(newText) || s.start > s.end {
			continue
		}
		newText = newText[:s.start] + s.text + newText[s.end:]
	}

	// Remove the enclosed edits: the wide edit now subsumes them.
	if len(enclosed) > 0 {
		kept := b.edits[:0]
		enclosedSet := make(map[int]bool, len(enclosed))
		for _, e := range enclosed {
			enclosedSet[e.Range.Start] = true
		}
		for _, e := range b.edits {
			skip := false
			for _, en := range enclosed {
				if e.Range == en.Range && e.NewText == en.NewText {
					skip = true
					break
				}
			}
			if !skip {
				kept = append(kept, e)
			}
		}
		b.edits = kept
	}

	return b.add(Edit{Kind: KindReplacement, Range: wideRange, NewText: newText, Tag: tag, Composing: true})
}

func (b *Buffer) add(e Edit) error {
	for _, existing := range b.edits {
		if existing.Composing || e.Composing {
			// Composing edits are allowed to enclose narrower edits;
			// true overlap (neither containing the other) is still fatal.
			if existing.Range.Contains(e.Range) || e.Range.Contains(existing.Range) {
				continue
			}
		}
		if existing.Range.Overlaps(e.Range) {
			return &errs.EditOverlapError{
				A: [2]int{existing.Range.Start, existing.Range.End},
				B: [2]int{e.Range.Start, e.Range.End},
			}
		}
	}
	b.edits = append(b.edits, e)
	return nil
}

// Edits returns the currently-registered edits, for callers that need to
// inspect what has been queued (e.g. the literal optimizer checking
// whether a range already has a Pass-1 string edit before running Pass 2).
func (b *Buffer) Edits() []Edit {
	return b.edits
}

// Apply produces the final text: original bytes outside any edit, each
// edit's NewText at its position, edits applied in start-byte order.
func (b *Buffer) Apply() string {
	sorted := make([]Edit, len(b.edits))
	copy(sorted, b.edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Range.Start != sorted[j].Range.Start {
			return sorted[i].Range.Start < sorted[j].Range.Start
		}
		return sorted[i].Range.End < sorted[j].Range.End
	})

	var out []byte
	cursor := 0
	for _, e := range sorted {
		if e.Range.Start < cursor {
			continue // fully subsumed by a prior wider edit; already handled
		}
		out = append(out, b.original[cursor:e.Range.Start]...)
		out = append(out, e.NewText...)
		cursor = e.Range.End
	}
	out = append(out, b.original[cursor:]...)
	return string(out)
}
