package optimize

import (
	"fmt"

	"github.com/lg-tool/lg/internal/editbuf"
	"github.com/lg-tool/lg/internal/types"
)

// ImportClassifier decides whether one import element refers to an
// external (stdlib/third-party) module or a local (relative/in-repo) one.
// Language adapters supply the concrete rule (e.g. a leading '.' for Go,
// Python and JS/TS; a leading '.' or '"' for the generic adapters).
type ImportClassifier func(importText string) (local bool)

// ImportsConfig controls whether consecutive local imports get summarized.
type ImportsConfig struct {
	StripLocal  bool
	Classify    ImportClassifier
	Placeholder string // printf template: "# ... %d imports omitted (%d lines)"
}

// RunImports summarizes consecutive runs of local import elements into a
// single placeholder when StripLocal is set (spec.md §4.8).
func RunImports(src []byte, elems []types.Element, cfg ImportsConfig, buf *editbuf.Buffer) {
	if !cfg.StripLocal || cfg.Classify == nil {
		return
	}
	offs := newlineOffsets(src)

	var imports []types.Element
	for _, e := range elems {
		if e.Kind == types.ElementImport {
			imports = append(imports, e)
		}
	}

	i := 0
	for i < len(imports) {
		text := string(src[imports[i].Range.Start:imports[i].Range.End])
		if !cfg.Classify(text) {
			i++
			continue
		}
		j := i + 1
		groupEnd := imports[i].Range.End
		for j < len(imports) {
			t := string(src[imports[j].Range.Start:imports[j].Range.End])
			if !cfg.Classify(t) {
				break
			}
			gapLines := lineOfOffset(offs, imports[j].Range.Start) - lineOfOffset(offs, groupEnd)
			if gapLines > 1 {
				break
			}
			groupEnd = imports[j].Range.End
			j++
		}

		count := j - i
		if count < 2 {
			i = j
			continue
		}
		totalLines := lineOfOffset(offs, groupEnd) - lineOfOffset(offs, imports[i].Range.Start) + 1
		placeholder := fmt.Sprintf(cfg.Placeholder, count, totalLines)
		_ = buf.AddReplacement(imports[i].Range.Start, groupEnd, placeholder, "imports-omit")
		i = j
	}
}
