// Package addressing implements the Addressing system (C11): parsing
// `${...}` reference bodies into a ParsedPath, and resolving a ParsedPath
// against a directory-context stack into a ResolvedPath.
package addressing

import (
	"strconv"
	"strings"

	"github.com/lg-tool/lg/internal/errs"
	"github.com/lg-tool/lg/internal/types"
)

// Parse parses the raw body of a placeholder (already stripped of its
// tpl/ctx/md prefix and `[...]`/`:` delimiter by the template engine) into
// a ParsedPath for the given resource kind.
func Parse(raw string, kind types.ResourceKind) (types.ParsedPath, error) {
	pp := types.ParsedPath{Kind: kind}

	rest := raw

	if strings.HasPrefix(rest, "@[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return pp, &errs.PathParseError{Raw: raw, Pos: 0, Msg: "unterminated @[origin]"}
		}
		origin := rest[2:end]
		if origin == "" {
			return pp, &errs.PathParseError{Raw: raw, Pos: 1, Msg: "empty origin"}
		}
		pp.Origin = origin
		pp.OriginExplicit = true
		rest = strings.TrimPrefix(rest[end+1:], ":")
	} else if strings.HasPrefix(rest, "@") {
		colon := strings.IndexByte(rest, ':')
		if colon < 0 {
			return pp, &errs.PathParseError{Raw: raw, Pos: 0, Msg: "@origin without trailing ':'"}
		}
		origin := rest[1:colon]
		if origin == "" {
			return pp, &errs.PathParseError{Raw: raw, Pos: 1, Msg: "empty origin"}
		}
		pp.Origin = origin
		pp.OriginExplicit = true
		rest = rest[colon+1:]
	}

	pathPart := rest
	if kind == types.ResourceMarkdown || kind == types.ResourceMarkdownExternal {
		if hash := strings.IndexByte(rest, '#'); hash >= 0 {
			pathPart = rest[:hash]
			tail := rest[hash+1:]
			anchor, params, err := parseMdTail(raw, tail)
			if err != nil {
				return pp, err
			}
			pp.Anchor = anchor
			pp.Parameters = params
		}
	}

	if strings.HasPrefix(pathPart, "/") {
		pp.IsAbsolute = true
		pathPart = strings.TrimPrefix(pathPart, "/")
	}
	pp.Path = pathPart

	return pp, nil
}

// parseMdTail parses `anchor,param:value,param:value` into a slug anchor
// and a typed parameter map (spec.md §4.10: strip_h1 bool, level int,
// everything else a free-form string).
func parseMdTail(raw, tail string) (string, map[string]any, error) {
	parts := strings.Split(tail, ",")
	anchor := parts[0]
	params := map[string]any{}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, ":", 2)
		key := kv[0]
		if len(kv) == 1 {
			params[key] = true
			continue
		}
		val := kv[1]
		switch key {
		case "strip_h1":
			params[key] = val == "true" || val == "1"
		case "level":
			n, err := strconv.Atoi(val)
			if err != nil {
				return "", nil, &errs.PathParseError{Raw: raw, Pos: 0, Msg: "invalid integer for 'level': " + val}
			}
			params[key] = n
		default:
			params[key] = val
		}
	}
	return anchor, params, nil
}
