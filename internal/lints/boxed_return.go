package lints

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/token"
	"go/types"

	tt "github.com/boxlint/boxlint/internal/types"
)

const (
	boxedReturnRuleName = "boxed-return"
	boxedReturnCategory = "performance"

	boxedReturnNote = "changing this return type also requires updating " +
		"every return statement in this function and every caller"
)

// TypeOracle answers the type-level questions behind the boxed-return check.
// The production implementation is backed by go/types; tests can substitute
// a fake to drive the decision chain directly.
type TypeOracle interface {
	// IsBox reports whether t is a single-owner heap indirection around
	// another type.
	IsBox(t types.Type) bool

	// Payload returns the type inside the box, or nil if t is not a box.
	Payload(t types.Type) types.Type

	// IsSized reports whether a value of type t has a fixed size known at
	// the declaration site.
	IsSized(t types.Type) bool

	// Render returns the human-readable form of t used in messages and
	// suggestions.
	Render(t types.Type) string
}

// goTypeOracle is the go/types-backed oracle. A box is a plain pointer type;
// named pointer types are a deliberate abstraction and stay untouched.
type goTypeOracle struct {
	pkg *types.Package
}

func (o goTypeOracle) IsBox(t types.Type) bool {
	_, ok := types.Unalias(t).(*types.Pointer)
	return ok
}

func (o goTypeOracle) Payload(t types.Type) types.Type {
	ptr, ok := types.Unalias(t).(*types.Pointer)
	if !ok {
		return nil
	}
	return ptr.Elem()
}

// IsSized treats interfaces and type parameters as dynamically sized:
// pointing at such a payload is frequently the only way to hand it out, so
// those returns are never reported.
func (o goTypeOracle) IsSized(t types.Type) bool {
	if t == nil {
		return false
	}

	if _, ok := types.Unalias(t).(*types.TypeParam); ok {
		return false
	}

	switch u := t.Underlying().(type) {
	case *types.Interface:
		return false
	case *types.Basic:
		return u.Kind() != types.Invalid
	}

	return true
}

func (o goTypeOracle) Render(t types.Type) string {
	return types.TypeString(t, types.RelativeTo(o.pkg))
}

// DetectBoxedReturns reports declared return types that wrap a fixed-size
// payload in a pointer, forcing a heap allocation and deallocation on every
// call. The suggested rewrite is textual only: the signature change ripples
// into the function body and all call sites, so the finding always carries
// zero fix confidence.
func DetectBoxedReturns(
	filename string,
	node *ast.File,
	fset *token.FileSet,
	severity tt.Severity,
	avoidBreakingExportedAPI bool,
) ([]tt.Issue, error) {
	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}

	// Best effort: incomplete type information downgrades to fewer findings,
	// never to a failed lint run.
	conf := types.Config{Importer: importer.Default(), Error: func(error) {}}
	pkg, _ := conf.Check("", fset, []*ast.File{node}, info)

	return CheckBoxedReturns(filename, node, fset, info, pkg, severity, avoidBreakingExportedAPI), nil
}

// CheckBoxedReturns is the typed core shared by DetectBoxedReturns and the
// go/analysis adapter.
func CheckBoxedReturns(
	filename string,
	node *ast.File,
	fset *token.FileSet,
	info *types.Info,
	pkg *types.Package,
	severity tt.Severity,
	avoidBreakingExportedAPI bool,
) []tt.Issue {
	var issues []tt.Issue
	VisitBoxedReturns(filename, node, fset, info, pkg, severity, avoidBreakingExportedAPI,
		func(_ ast.Expr, issue tt.Issue) {
			issues = append(issues, issue)
		})
	return issues
}

// VisitBoxedReturns walks one file and hands each finding to report together
// with the result type expression it is anchored at. The walk dispatches
// three signature sources into one decision routine: free functions,
// interface method declarations, and concrete methods outside any interface
// contract.
func VisitBoxedReturns(
	filename string,
	node *ast.File,
	fset *token.FileSet,
	info *types.Info,
	pkg *types.Package,
	severity tt.Severity,
	avoidBreakingExportedAPI bool,
	report func(ast.Expr, tt.Issue),
) {
	c := &boxedReturnChecker{
		filename:                 filename,
		fset:                     fset,
		info:                     info,
		pkg:                      pkg,
		oracle:                   goTypeOracle{pkg: pkg},
		severity:                 severity,
		avoidBreakingExportedAPI: avoidBreakingExportedAPI,
		report:                   report,
	}

	ast.Inspect(node, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncDecl:
			c.checkFuncDecl(n)
		case *ast.TypeSpec:
			c.checkInterfaceSpec(n)
		}
		return true
	})
}

type boxedReturnChecker struct {
	filename                 string
	fset                     *token.FileSet
	info                     *types.Info
	pkg                      *types.Package
	oracle                   TypeOracle
	severity                 tt.Severity
	avoidBreakingExportedAPI bool
	report                   func(ast.Expr, tt.Issue)
}

// checkFuncDecl handles free functions and concrete methods.
func (c *boxedReturnChecker) checkFuncDecl(fn *ast.FuncDecl) {
	if fn.Recv == nil {
		c.evaluateSignature(fn.Type, ast.IsExported(fn.Name.Name))
		return
	}

	// A method whose signature is dictated by an interface has to be fixed
	// at the interface declaration, not at each implementation; reporting it
	// here would fire once per implementing type without being actionable.
	if c.dictatedByInterface(fn) {
		return
	}

	exported := ast.IsExported(fn.Name.Name) && receiverExported(fn.Recv)
	c.evaluateSignature(fn.Type, exported)
}

// checkInterfaceSpec handles method declarations inside interface types.
// This is where the warning lands when an interface fixes the offending
// signature for all of its implementations.
func (c *boxedReturnChecker) checkInterfaceSpec(spec *ast.TypeSpec) {
	iface, ok := spec.Type.(*ast.InterfaceType)
	if !ok || iface.Methods == nil {
		return
	}

	for _, field := range iface.Methods.List {
		ftype, ok := field.Type.(*ast.FuncType)
		if !ok {
			// embedded interface, declared elsewhere
			continue
		}

		for _, name := range field.Names {
			exported := ast.IsExported(spec.Name.Name) && ast.IsExported(name.Name)
			c.evaluateSignature(ftype, exported)
		}
	}
}

// evaluateSignature runs the decision chain, cheapest condition first:
// exported-API policy, presence of declared results, then the semantic type
// queries. Every failing condition is silent suppression.
func (c *boxedReturnChecker) evaluateSignature(ftype *ast.FuncType, exported bool) {
	if c.avoidBreakingExportedAPI && exported {
		return
	}

	if ftype.Results == nil || len(ftype.Results.List) == 0 {
		return
	}

	for _, result := range ftype.Results.List {
		// Named results share one type expression per field, so each field
		// yields at most one finding.
		c.checkResult(result.Type)
	}
}

func (c *boxedReturnChecker) checkResult(expr ast.Expr) {
	tv, ok := c.info.Types[expr]
	if !ok || tv.Type == nil {
		return
	}

	ret := tv.Type
	if !c.oracle.IsBox(ret) {
		return
	}

	payload := c.oracle.Payload(ret)
	if !c.oracle.IsSized(payload) {
		return
	}

	rendered := c.oracle.Render(payload)

	// Prefer the spelling already in the source over the rendered type.
	suggestion := rendered
	if star, ok := expr.(*ast.StarExpr); ok {
		suggestion = types.ExprString(star.X)
	}

	c.report(expr, tt.Issue{
		Rule:       boxedReturnRuleName,
		Category:   boxedReturnCategory,
		Filename:   c.filename,
		Message:    fmt.Sprintf("boxed return of the sized type `%s`", rendered),
		Suggestion: suggestion,
		Note:       boxedReturnNote,
		Start:      c.fset.Position(expr.Pos()),
		End:        c.fset.Position(expr.End()),
		Severity:   c.severity,
		Confidence: 0.0,
	})
}

// dictatedByInterface reports whether fn's signature is required by an
// interface that the receiver type satisfies, looking through the package
// scope and the scopes of directly imported packages. An unresolvable
// receiver counts as dictated: no finding beats a wrong one.
func (c *boxedReturnChecker) dictatedByInterface(fn *ast.FuncDecl) bool {
	if c.pkg == nil || len(fn.Recv.List) == 0 {
		return true
	}

	recv := c.info.TypeOf(fn.Recv.List[0].Type)
	if recv == nil {
		return true
	}

	// The method set of *T includes the methods of T, so checking the
	// pointer form covers both receiver spellings.
	ptr := recv
	if _, ok := recv.(*types.Pointer); !ok {
		ptr = types.NewPointer(recv)
	}

	name := fn.Name.Name
	for _, scope := range c.interfaceScopes() {
		for _, objName := range scope.Names() {
			tn, ok := scope.Lookup(objName).(*types.TypeName)
			if !ok {
				continue
			}

			if named, ok := tn.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
				// uninstantiated generic interfaces cannot be checked
				continue
			}

			iface, ok := tn.Type().Underlying().(*types.Interface)
			if !ok || iface.NumMethods() == 0 {
				continue
			}

			if interfaceHasMethod(iface, name) && types.Implements(ptr, iface) {
				return true
			}
		}
	}

	return false
}

func (c *boxedReturnChecker) interfaceScopes() []*types.Scope {
	scopes := []*types.Scope{c.pkg.Scope()}
	for _, imp := range c.pkg.Imports() {
		scopes = append(scopes, imp.Scope())
	}
	return scopes
}

func interfaceHasMethod(iface *types.Interface, name string) bool {
	for i := range iface.NumMethods() {
		if iface.Method(i).Name() == name {
			return true
		}
	}
	return false
}

// receiverExported unwraps pointer, instantiation and grouping syntax around
// the receiver base type and reports whether that base name is exported.
func receiverExported(recv *ast.FieldList) bool {
	if len(recv.List) == 0 {
		return false
	}

	expr := recv.List[0].Type
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			return ast.IsExported(e.Name)
		default:
			return false
		}
	}
}
