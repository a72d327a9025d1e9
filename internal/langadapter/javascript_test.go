package langadapter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lg-tool/lg/internal/optimize"
)

func TestJSFamilyRegistration(t *testing.T) {
	for _, ext := range []string{".js", ".jsx", ".mjs"} {
		a, ok := ForExtension(ext)
		require.True(t, ok, "extension %s should resolve", ext)
		require.Equal(t, "javascript", a.Name)
	}

	ts, ok := ForExtension(".ts")
	require.True(t, ok)
	require.Equal(t, "typescript", ts.Name)

	tsx, ok := ForExtension(".tsx")
	require.True(t, ok)
	require.Same(t, ts, tsx, ".ts and .tsx share one registered adapter")
}

func TestJavascriptAdapterRun(t *testing.T) {
	a, ok := ForExtension(".js")
	require.True(t, ok)

	src := []byte(`import { helper } from "./helper";

class Widget {
  constructor() {
    this.value = 1;
  }

  render() {
    const items = ["a", "b", "c", "d"];
    return items.join(",");
  }

  #privateHelper() {
    return null;
  }
}

function greet(name) {
  return ` + "`Hello ${name}!`" + `;
}
`)

	res, err := Run(a, src, "widget.js", OptimizerConfig{
		Comments: &optimize.CommentsConfig{Policy: optimize.CommentKeepDoc},
	}, zeroCounter{})
	require.NoError(t, err)
	require.Contains(t, res.ProcessedText, "class Widget")
	require.Contains(t, res.ProcessedText, "function greet")
}

func TestJSMethodIsPublicExcludesPrivateAndConstructor(t *testing.T) {
	require.True(t, jsMethodIsPublic(nil, nil, "render"))
	require.False(t, jsMethodIsPublic(nil, nil, "constructor"))
	require.False(t, jsMethodIsPublic(nil, nil, "#privateHelper"))
}

func TestAlwaysPublic(t *testing.T) {
	require.True(t, alwaysPublic(nil, nil, "anything"))
}
