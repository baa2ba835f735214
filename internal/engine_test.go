package internal

import (
	"os"
	"path/filepath"
	"testing"

	tt "github.com/boxlint/boxlint/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, rules map[string]tt.ConfigRule, opts tt.Options) *Engine {
	t.Helper()

	engine, err := NewEngine(rules, opts)
	require.NoError(t, err)

	return engine
}

func TestEngineRunSource(t *testing.T) {
	t.Parallel()

	code := []byte(`package main

func newCount() *int {
	n := 0
	return &n
}
`)

	engine := newTestEngine(t, nil, tt.Options{})

	issues, err := engine.RunSource(code)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "boxed-return", issues[0].Rule)
	assert.Equal(t, tt.SeverityInfo, issues[0].Severity)
}

func TestEngineRunFile(t *testing.T) {
	t.Parallel()

	code := `package main

func newCount() *int {
	n := 0
	return &n
}
`
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))

	engine := newTestEngine(t, nil, tt.Options{})

	issues, err := engine.Run(path)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, path, issues[0].Filename)
}

func TestEngineRejectsNonGoFiles(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, tt.Options{})

	_, err := engine.Run("config.yaml")
	assert.Error(t, err)
}

func TestEngineIgnoreRule(t *testing.T) {
	t.Parallel()

	code := []byte(`package main

func newCount() *int {
	n := 0
	return &n
}
`)

	engine := newTestEngine(t, nil, tt.Options{})
	engine.IgnoreRule("boxed-return")

	issues, err := engine.RunSource(code)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestEngineNolintFiltering(t *testing.T) {
	t.Parallel()

	code := []byte(`package main

//nolint:boxed-return
func newCount() *int {
	n := 0
	return &n
}

func newTotal() *int {
	n := 0
	return &n
}
`)

	engine := newTestEngine(t, nil, tt.Options{})

	issues, err := engine.RunSource(code)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 9, issues[0].Start.Line)
}

func TestEngineSeverityConfig(t *testing.T) {
	t.Parallel()

	code := []byte(`package main

func newCount() *int {
	n := 0
	return &n
}
`)

	rules := map[string]tt.ConfigRule{
		"boxed-return": {Severity: tt.SeverityWarning},
	}

	engine := newTestEngine(t, rules, tt.Options{})

	issues, err := engine.RunSource(code)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
}

func TestEngineSeverityOff(t *testing.T) {
	t.Parallel()

	code := []byte(`package main

func newCount() *int {
	n := 0
	return &n
}
`)

	rules := map[string]tt.ConfigRule{
		"boxed-return": {Severity: tt.SeverityOff},
	}

	engine := newTestEngine(t, rules, tt.Options{})

	issues, err := engine.RunSource(code)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestEngineExportedAPIOption(t *testing.T) {
	t.Parallel()

	code := []byte(`package main

func NewCount() *int {
	n := 0
	return &n
}
`)

	strict := newTestEngine(t, nil, tt.Options{AvoidBreakingExportedAPI: true})
	issues, err := strict.RunSource(code)
	require.NoError(t, err)
	assert.Empty(t, issues)

	relaxed := newTestEngine(t, nil, tt.Options{AvoidBreakingExportedAPI: false})
	issues, err = relaxed.RunSource(code)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}
