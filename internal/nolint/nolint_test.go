package nolint

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(t *testing.T, code string) (*Manager, *token.FileSet) {
	t.Helper()

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, "test.go", code, parser.ParseComments)
	require.NoError(t, err)

	return ParseComments(node, fset), fset
}

func TestIsNolinted(t *testing.T) {
	t.Parallel()

	code := `package main

//nolint:boxed-return
func a() *int { return nil }

func b() *int { return nil } //nolint

//nolint:other-rule
func c() *int { return nil }

func d() *int { return nil }
`

	mgr, _ := parseSource(t, code)

	pos := func(line int) token.Position {
		return token.Position{Filename: "test.go", Line: line, Column: 10}
	}

	// directive above the declaration
	assert.True(t, mgr.IsNolinted(pos(4), "boxed-return"))

	// bare trailing directive suppresses every rule
	assert.True(t, mgr.IsNolinted(pos(6), "boxed-return"))

	// directive names a different rule
	assert.False(t, mgr.IsNolinted(pos(9), "boxed-return"))

	// no directive at all
	assert.False(t, mgr.IsNolinted(pos(11), "boxed-return"))
}

func TestFileLevelDirective(t *testing.T) {
	t.Parallel()

	code := `//nolint:boxed-return
package main

func a() *int { return nil }
`

	mgr, _ := parseSource(t, code)

	assert.True(t, mgr.IsNolinted(token.Position{Filename: "test.go", Line: 4, Column: 10}, "boxed-return"))
	assert.False(t, mgr.IsNolinted(token.Position{Filename: "test.go", Line: 4, Column: 10}, "other-rule"))
}

func TestParseDirective(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		ok    bool
		rules int
	}{
		{name: "bare directive", text: "//nolint", ok: true, rules: 0},
		{name: "single rule", text: "//nolint:boxed-return", ok: true, rules: 1},
		{name: "rule list", text: "//nolint:boxed-return, other", ok: true, rules: 2},
		{name: "unrelated comment", text: "// nolint is spelled without a space", ok: false},
		{name: "missing rules after colon", text: "//nolint:", ok: false},
		{name: "prose starting with the prefix", text: "//nolinter docs", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rules, ok := parseDirective(tc.text)
			assert.Equal(t, tc.ok, ok)
			if ok {
				assert.Len(t, rules, tc.rules)
			}
		})
	}
}
