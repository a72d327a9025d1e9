// Package config loads the lg-cfg/ tree: global settings, section
// fragments, and the addressable template/context/markdown sources. It
// supplies already-typed config objects to the pipeline orchestrator; it
// never decides inclusion itself (that is the Filter Engine's job).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lg-tool/lg/internal/errs"
	"github.com/lg-tool/lg/internal/types"
)

// CurrentSchemaVersion is the schema version this loader understands.
// A config.yaml declaring a different version raises a ConfigError.
const CurrentSchemaVersion = 6

// Config is the fully-loaded configuration for one scope's lg-cfg/ tree.
type Config struct {
	CfgRoot     string // absolute path to this scope's lg-cfg/
	ScopeRoot   string // absolute path to the directory lg-cfg/ lives under
	SchemaVersion int
	DefaultModel  string
	DefaultCtxLimit int
	Sections    map[string]*types.Section // keyed by canonical id
	Gitignore   *GitignoreMatcher
}

// rawGlobalConfig mirrors lg-cfg/config.yaml.
type rawGlobalConfig struct {
	SchemaVersion int    `yaml:"schema_version"`
	Model         string `yaml:"model"`
	CtxLimit      int    `yaml:"ctx_limit"`
}

// rawFilterNode mirrors one FilterNode in a *.sec.yaml fragment.
type rawFilterNode struct {
	Mode     string                    `yaml:"mode"`
	Allow    []string                  `yaml:"allow"`
	Block    []string                  `yaml:"block"`
	Children map[string]*rawFilterNode `yaml:"children"`
}

type rawLangCfg struct {
	EmptyPolicy string `yaml:"empty_policy"`
	MaxTokens   int    `yaml:"max_tokens"`
}

type rawSection struct {
	Extensions      []string               `yaml:"extensions"`
	Filters         *rawFilterNode         `yaml:"filters"`
	CodeFence       *bool                  `yaml:"code_fence"`
	SkipEmpty       *bool                  `yaml:"skip_empty"`
	LanguageOptions map[string]rawLangCfg  `yaml:"language_options"`
}

// rawSectionsFile mirrors sections.yaml or one *.sec.yaml fragment, which
// may define multiple sections.
type rawSectionsFile struct {
	Sections map[string]rawSection `yaml:"sections"`
}

// Load reads lg-cfg/ under scopeRoot (scopeRoot/lg-cfg/config.yaml,
// sections.yaml, and any *.sec.yaml fragment).
func Load(scopeRoot string) (*Config, error) {
	cfgRoot := filepath.Join(scopeRoot, "lg-cfg")
	info, err := os.Stat(cfgRoot)
	if err != nil || !info.IsDir() {
		return nil, &errs.ConfigError{Path: cfgRoot, Msg: "lg-cfg/ not found"}
	}

	cfg := &Config{
		CfgRoot:         cfgRoot,
		ScopeRoot:       scopeRoot,
		SchemaVersion:   CurrentSchemaVersion,
		DefaultCtxLimit: 128000,
		Sections:        map[string]*types.Section{},
	}

	if err := loadGlobal(cfg); err != nil {
		return nil, err
	}

	if err := loadSectionFile(cfg, filepath.Join(cfgRoot, "sections.yaml"), ""); err != nil {
		return nil, err
	}

	fragments, err := filepath.Glob(filepath.Join(cfgRoot, "*.sec.yaml"))
	if err != nil {
		return nil, &errs.ConfigError{Path: cfgRoot, Msg: "glob *.sec.yaml", Err: err}
	}
	sort.Strings(fragments)
	for _, fragPath := range fragments {
		rel, _ := filepath.Rel(cfgRoot, fragPath)
		if err := loadSectionFile(cfg, fragPath, rel); err != nil {
			return nil, err
		}
	}

	gm, err := NewGitignoreMatcher(scopeRoot)
	if err != nil {
		return nil, &errs.ConfigError{Path: scopeRoot, Msg: "load .gitignore", Err: err}
	}
	cfg.Gitignore = gm

	return cfg, nil
}

func loadGlobal(cfg *Config) error {
	path := filepath.Join(cfg.CfgRoot, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errs.ConfigError{Path: path, Msg: "read config.yaml", Err: err}
	}

	var raw rawGlobalConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &errs.ConfigError{Path: path, Msg: "parse config.yaml", Err: err}
	}
	if raw.SchemaVersion != 0 && raw.SchemaVersion != CurrentSchemaVersion {
		return &errs.ConfigError{Path: path, Msg: fmt.Sprintf("unsupported schema_version %d (expected %d)", raw.SchemaVersion, CurrentSchemaVersion)}
	}
	if raw.Model != "" {
		cfg.DefaultModel = raw.Model
	}
	if raw.CtxLimit != 0 {
		cfg.DefaultCtxLimit = raw.CtxLimit
	}
	return nil
}

func loadSectionFile(cfg *Config, path, fragmentRel string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errs.ConfigError{Path: path, Msg: "read section file", Err: err}
	}

	var raw rawSectionsFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &errs.ConfigError{Path: path, Msg: "parse section file", Err: err}
	}

	multi := len(raw.Sections) > 1
	names := make([]string, 0, len(raw.Sections))
	for name := range raw.Sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rs := raw.Sections[name]
		canonicalID := name
		if multi && fragmentRel != "" {
			canonicalID = fragmentRel + "#" + name
		}
		if _, exists := cfg.Sections[canonicalID]; exists {
			return &errs.ConfigError{Path: path, Msg: fmt.Sprintf("duplicate canonical section id %q", canonicalID)}
		}
		sec, err := buildSection(name, canonicalID, rs)
		if err != nil {
			return &errs.ConfigError{Path: path, Msg: fmt.Sprintf("section %q", name), Err: err}
		}
		cfg.Sections[canonicalID] = sec
	}
	return nil
}

func buildSection(name, canonicalID string, rs rawSection) (*types.Section, error) {
	exts := make(map[string]struct{}, len(rs.Extensions))
	for _, e := range rs.Extensions {
		exts[e] = struct{}{}
	}

	filters, err := buildFilterNode(rs.Filters)
	if err != nil {
		return nil, err
	}

	codeFence := true
	if rs.CodeFence != nil {
		codeFence = *rs.CodeFence
	}
	skipEmpty := true
	if rs.SkipEmpty != nil {
		skipEmpty = *rs.SkipEmpty
	}

	langOpts := make(map[string]types.LangCfg, len(rs.LanguageOptions))
	for lang, lc := range rs.LanguageOptions {
		policy := types.EmptyInherit
		switch lc.EmptyPolicy {
		case "include":
			policy = types.EmptyInclude
		case "exclude":
			policy = types.EmptyExclude
		}
		langOpts[lang] = types.LangCfg{EmptyPolicy: policy, MaxTokens: lc.MaxTokens}
	}

	return &types.Section{
		Name:            name,
		CanonicalID:     canonicalID,
		Extensions:      exts,
		Filters:         filters,
		CodeFence:       codeFence,
		SkipEmpty:       skipEmpty,
		LanguageOptions: langOpts,
	}, nil
}

func buildFilterNode(raw *rawFilterNode) (*types.FilterNode, error) {
	if raw == nil {
		return &types.FilterNode{Mode: types.FilterBlock}, nil
	}
	mode := types.FilterBlock
	if raw.Mode == "allow" {
		mode = types.FilterAllow
	}
	node := &types.FilterNode{
		Mode:     mode,
		Allow:    raw.Allow,
		Block:    raw.Block,
		Children: map[string]*types.FilterNode{},
	}
	for dir, childRaw := range raw.Children {
		child, err := buildFilterNode(childRaw)
		if err != nil {
			return nil, err
		}
		node.Children[dir] = child
	}
	return node, nil
}
