// Package nolint provides in-source suppression of lint findings through
// `//nolint` comments.
package nolint

import (
	"go/ast"
	"go/token"
	"math"
	"strings"
)

const nolintPrefix = "//nolint"

// Manager holds the nolint scopes of one parsed file and answers whether a
// reported position is suppressed.
type Manager struct {
	// scopes maps filename to the nolint scopes found in it.
	scopes map[string][]scope
}

type scope struct {
	// rules is the set of suppressed rule names; empty means all rules.
	rules     map[string]struct{}
	startLine int
	endLine   int
}

// ParseComments collects the nolint directives of the given file. A directive
// before the package clause suppresses the whole file; any other directive
// covers its own line and the line below it, so both trailing comments and
// comments placed above a declaration work.
func ParseComments(f *ast.File, fset *token.FileSet) *Manager {
	manager := &Manager{scopes: make(map[string][]scope)}
	if f == nil || fset == nil {
		return manager
	}

	packageLine := fset.Position(f.Package).Line

	for _, cg := range f.Comments {
		for _, comment := range cg.List {
			rules, ok := parseDirective(comment.Text)
			if !ok {
				continue
			}

			pos := fset.Position(comment.Slash)
			s := scope{rules: rules, startLine: pos.Line, endLine: pos.Line + 1}
			if pos.Line < packageLine {
				s.startLine = 1
				s.endLine = math.MaxInt32
			}

			manager.scopes[pos.Filename] = append(manager.scopes[pos.Filename], s)
		}
	}

	return manager
}

// IsNolinted reports whether a finding of the given rule at pos is suppressed.
func (m *Manager) IsNolinted(pos token.Position, rule string) bool {
	for _, s := range m.scopes[pos.Filename] {
		if pos.Line < s.startLine || pos.Line > s.endLine {
			continue
		}
		if len(s.rules) == 0 {
			return true
		}
		if _, ok := s.rules[rule]; ok {
			return true
		}
	}
	return false
}

// parseDirective extracts the rule names from a nolint comment. It returns
// false for comments that are not nolint directives, including malformed
// ones; a malformed directive must not silently suppress everything.
func parseDirective(text string) (map[string]struct{}, bool) {
	if !strings.HasPrefix(text, nolintPrefix) {
		return nil, false
	}

	rest := text[len(nolintPrefix):]
	if rest == "" {
		return map[string]struct{}{}, true
	}

	// Anything but a rule list after the prefix is some other comment that
	// merely starts with the word nolint.
	if rest[0] != ':' {
		return nil, false
	}

	rules := make(map[string]struct{})
	for _, name := range strings.Split(rest[1:], ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			rules[name] = struct{}{}
		}
	}
	if len(rules) == 0 {
		return nil, false
	}

	return rules, true
}
