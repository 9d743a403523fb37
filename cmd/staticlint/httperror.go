package main

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// handlerPkgSuffix marks the packages whose failures must go through errs.Write.
const handlerPkgSuffix = "/app/handler"

// HTTPErrorAnalyzer reports http.Error in the HTTP handler package, where
// every failure has to be rendered as the JSON error envelope.
var HTTPErrorAnalyzer = &analysis.Analyzer{
	Name:     "httperrorlint",
	Doc:      "reports http.Error in HTTP handler packages",
	Run:      runHTTPError,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runHTTPError(pass *analysis.Pass) (any, error) {
	path := strings.TrimSuffix(pass.Pkg.Path(), "_test")
	if !strings.HasSuffix(path, handlerPkgSuffix) {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if isPkgCall(pass, call, "net/http", "Error") {
			pass.Reportf(call.Pos(), "use errs.Write instead of %s", render(pass.Fset, call))
		}
	})

	return nil, nil
}
