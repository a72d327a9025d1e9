package types

// ResourceKind is the kind of resource an address refers to.
type ResourceKind string

const (
	ResourceSection    ResourceKind = "section"
	ResourceTemplate   ResourceKind = "tpl"
	ResourceContext    ResourceKind = "ctx"
	ResourceMarkdown   ResourceKind = "md"
	ResourceMarkdownExternal ResourceKind = "md_external"
)

// ParsedPath is the result of parsing a raw `${...}` reference body.
type ParsedPath struct {
	Kind           ResourceKind
	Origin         string
	OriginExplicit bool
	Path           string
	IsAbsolute     bool
	Anchor         string
	Parameters     map[string]any
}

// ResolvedPath is a ParsedPath resolved against an AddressingContext.
type ResolvedPath struct {
	ScopeDir     string
	ScopeRel     string
	CfgRoot      string
	ResourcePath string // absolute filesystem path
	ResourceRel  string // relative to CfgRoot
	CanonicalID  string // populated for section kind
}

// DirectoryContext is one frame of the addressing stack: the scope
// (origin) currently active and the directory-within-cfg relative paths
// resolve against.
type DirectoryContext struct {
	Origin            string
	CurrentDirWithinCfg string
	CfgRoot           string
}
