package internal

import (
	"go/ast"
	"go/token"

	"github.com/boxlint/boxlint/internal/lints"
	tt "github.com/boxlint/boxlint/internal/types"
)

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	// Severity returns the severity the rule reports with.
	Severity() tt.Severity

	// SetSeverity overrides the reporting severity.
	SetSeverity(tt.Severity)
}

// BoxedReturnRule flags declared return types that box a fixed-size payload
// behind a pointer. It is advisory by default and never auto-applied.
type BoxedReturnRule struct {
	severity tt.Severity

	// AvoidBreakingExportedAPI suppresses findings on exported signatures.
	AvoidBreakingExportedAPI bool
}

func NewBoxedReturnRule() LintRule {
	return &BoxedReturnRule{
		severity:                 tt.SeverityInfo,
		AvoidBreakingExportedAPI: true,
	}
}

func (r *BoxedReturnRule) Check(filename string, node *ast.File, fset *token.FileSet) ([]tt.Issue, error) {
	return lints.DetectBoxedReturns(filename, node, fset, r.severity, r.AvoidBreakingExportedAPI)
}

func (r *BoxedReturnRule) Name() string {
	return "boxed-return"
}

func (r *BoxedReturnRule) Severity() tt.Severity {
	return r.severity
}

func (r *BoxedReturnRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}
