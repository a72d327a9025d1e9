package mdtemplate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanBracedAndBarePlaceholders(t *testing.T) {
	phs := Scan("see ${tpl:intro} and $section here")
	require.Len(t, phs, 2)
	require.Equal(t, "tpl:intro", phs[0].Name)
	require.True(t, phs[0].Braced)
	require.Equal(t, "section", phs[1].Name)
	require.False(t, phs[1].Braced)
}

func TestScanIgnoresPlaceholdersInFence(t *testing.T) {
	text := "before\n```\n${not:a placeholder}\n```\nafter ${tpl:real}"
	phs := Scan(text)
	require.Len(t, phs, 1)
	require.Equal(t, "tpl:real", phs[0].Name)
}

func TestNormalizeHeadingsSingleFileStripsH1(t *testing.T) {
	out, meta := NormalizeHeadings("# Title\n## Subtitle\n### Subsubtitle", 3, true, true)
	require.Equal(t, "### Subtitle\n#### Subsubtitle", out)
	require.Equal(t, 1, meta["md.removed_h1"])
	require.Equal(t, true, meta["md.shifted"])
}

func TestNormalizeHeadingsGroupedKeepsH1(t *testing.T) {
	out, meta := NormalizeHeadings("# Title\n## Subtitle\n### Subsubtitle", 3, true, false)
	require.Equal(t, "### Title\n#### Subtitle\n##### Subsubtitle", out)
	require.Equal(t, 0, meta["md.removed_h1"])
	require.Equal(t, true, meta["md.shifted"])
}

func TestNormalizeHeadingsNeverTouchesFence(t *testing.T) {
	text := "# Title\n```\n# not a heading\n```\n## Real"
	out, _ := NormalizeHeadings(text, 3, false, false)
	require.Contains(t, out, "# not a heading")
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "getting-started", Slugify("Getting Started!"))
}

func TestExtractAnchorStopsAtSiblingHeading(t *testing.T) {
	text := "# Guide\n## Install\ncontent here\n## Usage\nmore content"
	sub, ok := ExtractAnchor(text, "install")
	require.True(t, ok)
	require.Equal(t, "## Install\ncontent here", sub)
}
