package lints

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	tt "github.com/boxlint/boxlint/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestSource(t *testing.T, code string) (*ast.File, *token.FileSet) {
	t.Helper()

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, "test.go", code, parser.ParseComments)
	require.NoError(t, err)

	return node, fset
}

func TestDetectBoxedReturns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		code               string
		avoidExported      bool
		expectedIssues     int
		expectedSuggestion string
	}{
		{
			name: "free function returning pointer to sized type",
			code: `
package main

func newGreeting() *string {
	s := "Hello, world!"
	return &s
}
`,
			expectedIssues:     1,
			expectedSuggestion: "string",
		},
		{
			name: "value return is fine",
			code: `
package main

func newGreeting() string {
	return "Hello, world!"
}
`,
			expectedIssues: 0,
		},
		{
			name: "no declared return type",
			code: `
package main

func greet() {
	println("hi")
}
`,
			expectedIssues: 0,
		},
		{
			name: "pointer to interface payload is not reported",
			code: `
package main

type speaker interface {
	speak() string
}

func pick() *speaker {
	return nil
}
`,
			expectedIssues: 0,
		},
		{
			name: "pointer to type parameter is not reported",
			code: `
package main

func zero[T any]() *T {
	var v T
	return &v
}
`,
			expectedIssues: 0,
		},
		{
			name: "interface method declaration is reported",
			code: `
package main

type counter interface {
	next() *uint32
}
`,
			expectedIssues:     1,
			expectedSuggestion: "uint32",
		},
		{
			name: "method dictated by an interface is suppressed",
			code: `
package main

type result struct{ n int }

type builder interface {
	build() *result
}

type sliceBuilder struct{}

func (sliceBuilder) build() *result {
	return &result{}
}
`,
			// one finding, on the interface declaration only
			expectedIssues:     1,
			expectedSuggestion: "result",
		},
		{
			name: "inherent method is reported",
			code: `
package main

type counter struct{ n int }

func (c *counter) snapshot() *int {
	v := c.n
	return &v
}
`,
			expectedIssues:     1,
			expectedSuggestion: "int",
		},
		{
			name: "exported function suppressed under exported API policy",
			code: `
package main

func NewGreeting() *string {
	s := "hi"
	return &s
}
`,
			avoidExported:  true,
			expectedIssues: 0,
		},
		{
			name: "exported function reported when policy is off",
			code: `
package main

func NewGreeting() *string {
	s := "hi"
	return &s
}
`,
			avoidExported:      false,
			expectedIssues:     1,
			expectedSuggestion: "string",
		},
		{
			name: "unexported sibling still reported under exported API policy",
			code: `
package main

func NewGreeting() *string {
	s := "hi"
	return &s
}

func newGreeting() *string {
	s := "hi"
	return &s
}
`,
			avoidExported:      true,
			expectedIssues:     1,
			expectedSuggestion: "string",
		},
		{
			name: "unexported method on exported type is not part of the API surface",
			code: `
package main

type Counter struct{ n int }

func (c Counter) peek() *int {
	v := c.n
	return &v
}
`,
			avoidExported:      true,
			expectedIssues:     1,
			expectedSuggestion: "int",
		},
		{
			name: "only the pointer result of a multi-value return is reported",
			code: `
package main

import "errors"

type point struct{ x, y int }

func locate() (*point, error) {
	return nil, errors.New("not found")
}
`,
			expectedIssues:     1,
			expectedSuggestion: "point",
		},
		{
			name: "named pointer type is a deliberate abstraction",
			code: `
package main

type state struct{ n int }

type handle *state

func open() handle {
	return nil
}
`,
			expectedIssues: 0,
		},
		{
			name: "alias of a pointer type is still a box",
			code: `
package main

type boxed = *string

func fetch() boxed {
	return nil
}
`,
			expectedIssues:     1,
			expectedSuggestion: "string",
		},
		{
			name: "embedded interface does not re-report the embedder",
			code: `
package main

type inner interface {
	next() *uint64
}

type outer interface {
	inner
}
`,
			// the finding belongs to the declaring interface
			expectedIssues:     1,
			expectedSuggestion: "uint64",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			node, fset := parseTestSource(t, tc.code)

			issues, err := DetectBoxedReturns("test.go", node, fset, tt.SeverityInfo, tc.avoidExported)
			require.NoError(t, err)
			require.Len(t, issues, tc.expectedIssues)

			for _, issue := range issues {
				assert.Equal(t, "boxed-return", issue.Rule)
				assert.Equal(t, "performance", issue.Category)
				assert.Equal(t, tt.SeverityInfo, issue.Severity)
				assert.Zero(t, issue.Confidence, "boxed-return must never be machine-applicable")
				assert.Contains(t, issue.Message, "boxed return of the sized type")
				assert.NotEmpty(t, issue.Note)
				if tc.expectedSuggestion != "" {
					assert.Equal(t, tc.expectedSuggestion, issue.Suggestion)
				}
			}
		})
	}
}

func TestDetectBoxedReturnsAnchor(t *testing.T) {
	t.Parallel()

	code := `
package main

func newCount() *int {
	n := 0
	return &n
}
`

	node, fset := parseTestSource(t, code)

	issues, err := DetectBoxedReturns("test.go", node, fset, tt.SeverityInfo, false)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	// anchored at the return type, not at the whole signature
	assert.Equal(t, 4, issues[0].Start.Line)
	assert.Equal(t, 17, issues[0].Start.Column)
	assert.Equal(t, 21, issues[0].End.Column)
}

func TestDetectBoxedReturnsIdempotent(t *testing.T) {
	t.Parallel()

	code := `
package main

type pair struct{ a, b int }

func makePair() *pair {
	return &pair{}
}

func keepPair() pair {
	return pair{}
}
`

	node, fset := parseTestSource(t, code)

	first, err := DetectBoxedReturns("test.go", node, fset, tt.SeverityInfo, true)
	require.NoError(t, err)

	second, err := DetectBoxedReturns("test.go", node, fset, tt.SeverityInfo, true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGoTypeOracle(t *testing.T) {
	t.Parallel()

	oracle := goTypeOracle{}

	str := types.Typ[types.String]
	boxed := types.NewPointer(str)

	assert.True(t, oracle.IsBox(boxed))
	assert.False(t, oracle.IsBox(str))
	assert.Equal(t, str, oracle.Payload(boxed))
	assert.Nil(t, oracle.Payload(str))

	assert.True(t, oracle.IsSized(str))
	assert.False(t, oracle.IsSized(nil))

	iface := types.NewInterfaceType(nil, nil)
	iface.Complete()
	assert.False(t, oracle.IsSized(iface))

	tparam := types.NewTypeParam(types.NewTypeName(token.NoPos, nil, "T", nil), iface)
	assert.False(t, oracle.IsSized(tparam))

	assert.Equal(t, "string", oracle.Render(str))
}
