package config

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// GitignoreMatcher parses a repo's root .gitignore and answers whether a
// relative path should be ignored. It is consumed by the Manifest Builder
// (C2) in addition to the section's own FilterNode tree.
type GitignoreMatcher struct {
	patterns []gitignorePattern

	regexCache sync.Map
}

type patternKind int

const (
	kindExact patternKind = iota
	kindPrefix
	kindSuffix
	kindRegex
)

type gitignorePattern struct {
	raw       string
	negate    bool
	directory bool
	absolute  bool

	kind     patternKind
	prefix   string
	suffix   string
	compiled *regexp.Regexp
}

// NewGitignoreMatcher loads root/.gitignore if present; a missing file is
// not an error and yields a matcher with no patterns.
func NewGitignoreMatcher(root string) (*GitignoreMatcher, error) {
	m := &GitignoreMatcher{}
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, m.parsePattern(line))
	}
	return m, sc.Err()
}

func (m *GitignoreMatcher) parsePattern(line string) gitignorePattern {
	p := gitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.absolute = true
		line = line[1:]
	}
	p.raw = line
	p.kind, p.prefix, p.suffix, p.compiled = m.classify(line)
	return p
}

func (m *GitignoreMatcher) classify(pattern string) (patternKind, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return kindExact, pattern, pattern, nil
	}
	if strings.Contains(pattern, "*") && !strings.ContainsAny(pattern, "?[") {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return kindSuffix, "", pattern[1:], nil
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return kindPrefix, pattern[:len(pattern)-1], "", nil
		}
	}
	regexPattern := globToRegex(pattern)
	if cached, ok := m.regexCache.Load(regexPattern); ok {
		return kindRegex, "", "", cached.(*regexp.Regexp)
	}
	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return kindExact, pattern, pattern, nil
	}
	m.regexCache.Store(regexPattern, compiled)
	return kindRegex, "", "", compiled
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

// ShouldIgnore reports whether path (POSIX, repo-root-relative) is ignored.
// Later patterns override earlier ones, and a "!" pattern un-ignores.
func (m *GitignoreMatcher) ShouldIgnore(p string, isDir bool) bool {
	p = filepath.ToSlash(p)
	ignored := false
	for _, pat := range m.patterns {
		if m.matches(pat, p, isDir) {
			ignored = !pat.negate
		}
	}
	return ignored
}

func (m *GitignoreMatcher) matches(p gitignorePattern, path string, isDir bool) bool {
	if p.directory {
		if isDir {
			return m.fastMatch(p, path) || m.underDirPattern(p, path)
		}
		return m.underDirPattern(p, path)
	}
	if p.absolute {
		return m.fastMatch(p, path)
	}
	if m.fastMatch(p, path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		if m.fastMatch(p, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

func (m *GitignoreMatcher) underDirPattern(p gitignorePattern, path string) bool {
	return strings.HasPrefix(path, p.raw+"/")
}

func (m *GitignoreMatcher) fastMatch(p gitignorePattern, path string) bool {
	switch p.kind {
	case kindExact:
		return p.raw == path
	case kindPrefix:
		return strings.HasPrefix(path, p.prefix)
	case kindSuffix:
		return strings.HasSuffix(path, p.suffix)
	case kindRegex:
		return p.compiled.MatchString(path)
	}
	return false
}
