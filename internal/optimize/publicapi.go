// Package optimize implements the Public-API filter, Comments policy, and
// Imports classifier (C8): three independent passes over the elements the
// Collector (C5) found, each registering its own edits.
package optimize

import (
	"fmt"
	"sort"

	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/types"
)

// PublicAPIConfig controls which element kinds the filter applies to and
// how adjacent removals are grouped.
type PublicAPIConfig struct {
	Kinds        map[types.ElementKind]struct{}
	GroupWithinLines int // adjacent removals within this many lines merge into one placeholder
	Placeholder  string  // printf template: "... %d %s omitted (%d lines)"
}

func lineOfOffset(offs []int, off int) int {
	lo, hi := 0, len(offs)
	for lo < hi {
		mid := (lo + hi) / 2
		if offs[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func newlineOffsets(src []byte) []int {
	var offs []int
	for i, b := range src {
		if b == '\n' {
			offs = append(offs, i)
		}
	}
	return offs
}

// RunPublicAPI removes non-public elements of the configured kinds,
// grouping adjacent removals into a single omission placeholder
// (spec.md §4.8, testable scenario 6).
func RunPublicAPI(src []byte, elems []types.Element, cfg PublicAPIConfig, buf *editbuf.Buffer) {
	offs := newlineOffsets(src)

	var targets []types.Element
	for _, e := range elems {
		if _, ok := cfg.Kinds[e.Kind]; !ok {
			continue
		}
		if e.Visibility {
			continue
		}
		targets = append(targets, e)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Range.Start < targets[j].Range.Start })

	i := 0
	for i < len(targets) {
		j := i + 1
		totalLines := lineOfOffset(offs, targets[i].Range.End) - lineOfOffset(offs, targets[i].Range.Start) + 1
		groupEnd := targets[i].Range.End
		kind := targets[i].Kind
		for j < len(targets) && targets[j].Kind == kind {
			gapLines := lineOfOffset(offs, targets[j].Range.Start) - lineOfOffset(offs, groupEnd)
			if gapLines > cfg.GroupWithinLines {
				break
			}
			totalLines += lineOfOffset(offs, targets[j].Range.End) - lineOfOffset(offs, targets[j].Range.Start) + 1
			groupEnd = targets[j].Range.End
			j++
		}

		count := j - i
		label := pluralKind(kind, count)
		placeholder := fmt.Sprintf(cfg.Placeholder, count, label, totalLines)
		_ = buf.AddReplacement(targets[i].Range.Start, groupEnd, placeholder, "public-api-omit")
		i = j
	}
}

func pluralKind(k types.ElementKind, count int) string {
	s := string(k)
	if count != 1 {
		s += "s"
	}
	return s
}
