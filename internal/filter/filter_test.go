package filter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/types"
)

func TestIncludesBlockMode(t *testing.T) {
	root := &types.FilterNode{
		Mode:  types.FilterBlock,
		Block: []string{"**/*_test.go", "**/vendor/**"},
	}
	e := New(root)
	require.True(t, e.Includes("main.go"))
	require.False(t, e.Includes("main_test.go"))
	require.False(t, e.Includes("vendor/pkg/x.go"))
}

func TestIncludesAllowModeEmptyWarns(t *testing.T) {
	root := &types.FilterNode{Mode: types.FilterAllow}
	e := New(root)
	require.False(t, e.Includes("main.go"))
	require.Len(t, e.Warnings(), 1)
}

func TestChildOverridesParent(t *testing.T) {
	root := &types.FilterNode{
		Mode:  types.FilterBlock,
		Children: map[string]*types.FilterNode{
			"internal": {
				Mode:  types.FilterAllow,
				Allow: []string{"internal/core/*.go"},
			},
		},
	}
	e := New(root)
	require.True(t, e.Includes("cmd/main.go"))
	require.True(t, e.Includes("internal/core/a.go"))
	require.False(t, e.Includes("internal/other/a.go"))
}

func TestMayDescendPruning(t *testing.T) {
	root := &types.FilterNode{
		Mode: types.FilterBlock,
		Children: map[string]*types.FilterNode{
			"dead": {Mode: types.FilterAllow}, // empty allow: denies everything under it
		},
	}
	e := New(root)
	require.True(t, e.MayDescend("src"))
	require.False(t, e.MayDescend("dead"))
}
