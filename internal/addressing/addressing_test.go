package addressing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/types"
)

func TestParseBasicSection(t *testing.T) {
	pp, err := Parse("web-src", types.ResourceSection)
	require.NoError(t, err)
	require.Equal(t, "web-src", pp.Path)
	require.False(t, pp.OriginExplicit)
}

func TestParseOriginBracket(t *testing.T) {
	pp, err := Parse("@[apps/web]:web-intro", types.ResourceTemplate)
	require.NoError(t, err)
	require.Equal(t, "apps/web", pp.Origin)
	require.Equal(t, "web-intro", pp.Path)
}

func TestParseEmptyOriginIsError(t *testing.T) {
	_, err := Parse("@:name", types.ResourceTemplate)
	require.Error(t, err)
}

func TestParseMdAnchorAndParams(t *testing.T) {
	pp, err := Parse("guide#install,strip_h1:true,level:2", types.ResourceMarkdown)
	require.NoError(t, err)
	require.Equal(t, "guide", pp.Path)
	require.Equal(t, "install", pp.Anchor)
	require.Equal(t, true, pp.Parameters["strip_h1"])
	require.Equal(t, 2, pp.Parameters["level"])
}

func TestParseMdInvalidLevelIsError(t *testing.T) {
	_, err := Parse("guide#install,level:abc", types.ResourceMarkdown)
	require.Error(t, err)
}

type fakeLocator map[string]string

func (f fakeLocator) FindScope(dir string) (string, bool) {
	cfg, ok := f[dir]
	return cfg, ok
}

func TestResolveSelfOrigin(t *testing.T) {
	pp, err := Parse("sub/dir", types.ResourceTemplate)
	require.NoError(t, err)
	ctx := Context{RepoRoot: "/repo", ScopeDir: "/repo", CfgRoot: "/repo/lg-cfg", CurrentDir: ""}
	res, err := Resolve(pp, ctx, fakeLocator{})
	require.NoError(t, err)
	require.Equal(t, "sub/dir.tpl.md", res.ResourceRel)
}

func TestResolveTraversalEscapeIsFatal(t *testing.T) {
	pp, err := Parse("../../etc/passwd", types.ResourceTemplate)
	require.NoError(t, err)
	ctx := Context{RepoRoot: "/repo", ScopeDir: "/repo", CfgRoot: "/repo/lg-cfg", CurrentDir: ""}
	_, err = Resolve(pp, ctx, fakeLocator{})
	require.Error(t, err)
}

func TestResolveNamedOrigin(t *testing.T) {
	pp, err := Parse("@apps/web:web-intro", types.ResourceTemplate)
	require.NoError(t, err)
	ctx := Context{RepoRoot: "/repo", ScopeDir: "/repo", CfgRoot: "/repo/lg-cfg", CurrentDir: ""}
	loc := fakeLocator{"/repo/apps/web": "/repo/apps/web/lg-cfg"}
	res, err := Resolve(pp, ctx, loc)
	require.NoError(t, err)
	require.Equal(t, "/repo/apps/web/lg-cfg", res.CfgRoot)
	require.Equal(t, "web-intro.tpl.md", res.ResourceRel)
}
