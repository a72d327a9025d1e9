package langadapter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructuralAdaptersRegistered(t *testing.T) {
	cases := []struct {
		ext  string
		lang string
	}{
		{".rs", "rust"},
		{".java", "java"},
		{".cpp", "cpp"},
		{".h", "cpp"},
		{".cs", "csharp"},
		{".zig", "zig"},
		{".php", "php"},
	}
	for _, c := range cases {
		a, ok := ForExtension(c.ext)
		require.True(t, ok, "extension %s should resolve", c.ext)
		require.Equal(t, c.lang, a.Name)
	}
}

func TestRustAdapterRun(t *testing.T) {
	a, ok := ForExtension(".rs")
	require.True(t, ok)

	src := []byte(`use std::fmt;

struct Point {
    x: i32,
    y: i32,
}

trait Shape {
    fn area(&self) -> f64;
}

fn make_point(x: i32, y: i32) -> Point {
    Point { x, y }
}
`)
	res, err := Run(a, src, "lib.rs", OptimizerConfig{}, zeroCounter{})
	require.NoError(t, err)
	require.Contains(t, res.ProcessedText, "struct Point")
	require.Contains(t, res.ProcessedText, "fn make_point")
}

func TestPHPMethodIsPublicExcludesConstructor(t *testing.T) {
	require.True(t, phpMethodIsPublic(nil, nil, "doThing"))
	require.False(t, phpMethodIsPublic(nil, nil, "__construct"))
}

func TestGenericImportClassifierDotOrQuotePrefix(t *testing.T) {
	a, ok := ForExtension(".java")
	require.True(t, ok)
	require.True(t, a.ImportClassifier(".relative"))
	require.True(t, a.ImportClassifier(`"quoted"`))
	require.False(t, a.ImportClassifier("com.example.Thing"))
}
