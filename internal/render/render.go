// Package render implements the Renderer (C13): turns a Plan and its
// processed blobs into the final document text.
package render

import (
	"sort"
	"strings"

	"github.com/lg-tool/lg/internal/types"
)

// Group is one fenced or mixed-block group of blobs sharing a language.
type Group struct {
	Lang    string
	Entries []types.ProcessedBlob
}

// Plan is the renderer's sole input besides the blobs themselves.
type Plan struct {
	MDOnly  bool
	UseFence bool
	Groups  []Group
}

const fileMarkerPrefix = "# —— FILE: "
const fileMarkerSuffix = " ——"

// Render implements spec.md §4.12. Blobs within each group are assumed
// already in stable (section, rel_path) order.
func Render(plan Plan) types.RenderedDocument {
	var b strings.Builder
	var blocks []types.RenderBlock

	for gi, g := range plan.Groups {
		if gi > 0 {
			b.WriteString("\n")
		}

		if plan.UseFence {
			b.WriteString("```")
			b.WriteString(g.Lang)
			b.WriteString("\n")
			var paths []string
			for i, blob := range g.Entries {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString(fileMarker(blob.RelPath))
				b.WriteString(blob.ProcessedText)
				paths = append(paths, blob.RelPath)
			}
			b.WriteString("\n```\n")
			var groupText strings.Builder
			for _, blob := range g.Entries {
				groupText.WriteString(blob.ProcessedText)
			}
			blocks = append(blocks, types.RenderBlock{Lang: g.Lang, Text: groupText.String(), FilePaths: paths})
			continue
		}

		if plan.MDOnly {
			for i, blob := range g.Entries {
				if i > 0 {
					b.WriteString("\n\n")
				}
				b.WriteString(blob.ProcessedText)
			}
			continue
		}

		for i, blob := range g.Entries {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(fileMarker(blob.RelPath))
			b.WriteString(blob.ProcessedText)
		}
	}

	text := b.String()
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return types.RenderedDocument{Text: text, Blocks: blocks}
}

func fileMarker(relPath string) string {
	return fileMarkerPrefix + relPath + fileMarkerSuffix + "\n"
}

// GroupBlobs buckets already-ordered blobs by language, preserving the
// incoming order within each group (spec.md §5: "within a fenced group,
// original order").
func GroupBlobs(blobs []types.ProcessedBlob) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, blob := range blobs {
		if gi, ok := idx[blob.Language]; ok {
			groups[gi].Entries = append(groups[gi].Entries, blob)
			continue
		}
		idx[blob.Language] = len(groups)
		groups = append(groups, Group{Lang: blob.Language, Entries: []types.ProcessedBlob{blob}})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Lang < groups[j].Lang })
	return groups
}
