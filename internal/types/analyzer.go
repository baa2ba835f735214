package types

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	gotypes "go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// RunAnalyzer type-checks the given source, runs the analyzer over it and
// returns the reported diagnostics as issues. It exists so analyzers can be
// exercised in tests without spinning up the full go/packages loader.
func RunAnalyzer(code string, analyzer *analysis.Analyzer) ([]Issue, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", code, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	info := &gotypes.Info{
		Types: make(map[ast.Expr]gotypes.TypeAndValue),
		Defs:  make(map[*ast.Ident]gotypes.Object),
		Uses:  make(map[*ast.Ident]gotypes.Object),
	}

	// Best effort: incomplete type information must degrade to fewer
	// diagnostics, not to a failed run.
	conf := gotypes.Config{Importer: importer.Default(), Error: func(error) {}}
	pkg, _ := conf.Check("p", fset, []*ast.File{file}, info)

	var issues []Issue
	pass := &analysis.Pass{
		Analyzer:   analyzer,
		Fset:       fset,
		Files:      []*ast.File{file},
		Pkg:        pkg,
		TypesInfo:  info,
		TypesSizes: gotypes.SizesFor("gc", "amd64"),
		ResultOf:   make(map[*analysis.Analyzer]any),
		Report: func(d analysis.Diagnostic) {
			end := d.End
			if !end.IsValid() {
				end = d.Pos
			}

			issues = append(issues, Issue{
				Rule:     analyzer.Name,
				Category: d.Category,
				Message:  d.Message,
				Start:    fset.Position(d.Pos),
				End:      fset.Position(end),
			})
		},
	}

	for _, req := range analyzer.Requires {
		if req == inspect.Analyzer {
			pass.ResultOf[req] = inspector.New([]*ast.File{file})
		}
	}

	if _, err := analyzer.Run(pass); err != nil {
		return nil, err
	}

	return issues, nil
}
