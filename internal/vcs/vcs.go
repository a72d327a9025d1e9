// Package vcs supplies the "changed-file set" collaborator the Manifest
// Builder consumes in mode=changes. It is deliberately thin: a single
// method returning POSIX-relative paths.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Provider answers which files changed within a repository root.
type Provider interface {
	ChangedFiles(ctx context.Context, root string) (map[string]struct{}, error)
}

// GitProvider shells out to `git diff` against a base ref (default: HEAD)
// plus the staged changes and the working tree's untracked files.
type GitProvider struct {
	BaseRef string // e.g. "origin/main"; empty uses HEAD
}

func (g *GitProvider) ChangedFiles(ctx context.Context, root string) (map[string]struct{}, error) {
	changed := map[string]struct{}{}

	base := g.BaseRef
	if base == "" {
		base = "HEAD"
	}

	if err := g.collect(ctx, root, changed, "diff", "--name-only", base); err != nil {
		return nil, err
	}
	if err := g.collect(ctx, root, changed, "diff", "--name-only", "--cached"); err != nil {
		return nil, err
	}
	if err := g.collect(ctx, root, changed, "ls-files", "--others", "--exclude-standard"); err != nil {
		return nil, err
	}

	return changed, nil
}

func (g *GitProvider) collect(ctx context.Context, root string, into map[string]struct{}, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = root
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		// Not a git repo, or no commits yet: treat as "nothing changed"
		// rather than failing the whole run.
		return nil
	}
	sc := bufioScanLines(stdout.String())
	for _, line := range sc {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		into[filepath.ToSlash(line)] = struct{}{}
	}
	return nil
}

func bufioScanLines(s string) []string {
	return strings.Split(s, "\n")
}

// NullProvider reports no changes; used when mode=changes is requested
// without a configured VCS backend.
type NullProvider struct{}

func (NullProvider) ChangedFiles(ctx context.Context, root string) (map[string]struct{}, error) {
	return map[string]struct{}{}, nil
}

var _ Provider = (*GitProvider)(nil)
var _ Provider = NullProvider{}

// ErrNoProvider is returned by orchestration code that requires a VCS
// provider in mode=changes but was not given one.
var ErrNoProvider = fmt.Errorf("mode=changes requires a vcs.Provider")
