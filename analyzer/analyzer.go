// Package analyzer exposes the boxed-return check as a standard go/analysis
// pass, so it can be driven by singlechecker, unitchecker, gopls or any
// other analysis host.
package analyzer

import (
	"fmt"
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/boxlint/boxlint/internal/lints"
	tt "github.com/boxlint/boxlint/internal/types"
)

const doc = `boxedreturn reports return types that box a fixed-size payload behind a pointer

Returning *T forces a heap allocation and deallocation on every call when T
has a statically known size; returning T by value avoids both. The rewrite is
never offered as an automatic fix: it obligates changes to every return
statement in the function and to every caller.`

// Analyzer is the boxed-return check in go/analysis form.
var Analyzer = newAnalyzer()

func newAnalyzer() *analysis.Analyzer {
	a := &analysis.Analyzer{
		Name:     "boxedreturn",
		Doc:      doc,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
	}

	avoid := a.Flags.Bool("avoid-breaking-exported-api", true,
		"do not report exported functions and methods")

	a.Run = func(pass *analysis.Pass) (any, error) {
		return run(pass, *avoid)
	}

	return a
}

func run(pass *analysis.Pass, avoidBreakingExportedAPI bool) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.File)(nil),
	}

	insp.Preorder(nodeFilter, func(node ast.Node) {
		file := node.(*ast.File)
		filename := pass.Fset.Position(file.Pos()).Filename

		lints.VisitBoxedReturns(
			filename, file, pass.Fset, pass.TypesInfo, pass.Pkg,
			tt.SeverityInfo, avoidBreakingExportedAPI,
			func(expr ast.Expr, issue tt.Issue) {
				pass.Report(analysis.Diagnostic{
					Pos:      expr.Pos(),
					End:      expr.End(),
					Category: issue.Category,
					// No SuggestedFixes on purpose: hosts treat those as
					// machine-applicable, and this rewrite is not.
					Message: fmt.Sprintf("%s; consider returning `%s` (%s)",
						issue.Message, issue.Suggestion, issue.Note),
				})
			})
	})

	return nil, nil
}
