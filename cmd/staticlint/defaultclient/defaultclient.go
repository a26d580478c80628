package defaultclient

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// CheckAnalyzer анализатор проверяющий обращения к сети в обход внедренного клиента
var CheckAnalyzer = &analysis.Analyzer{
	Name:     "defaultclient",
	Doc:      "check http.DefaultClient and package-level http request helpers usage",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// prohibited объекты net/http, работающие через http.DefaultClient
var prohibited = map[string]struct{}{
	"DefaultClient": {},
	"Get":           {},
	"Head":          {},
	"Post":          {},
	"PostForm":      {},
}

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.SelectorExpr)(nil)}, func(node ast.Node) {
		n := node.(*ast.SelectorExpr)
		obj := pass.TypesInfo.Uses[n.Sel]
		if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "net/http" {
			return
		}
		// методы (*http.Client).Get и т.п. не относятся к области пакета
		if obj.Parent() != obj.Pkg().Scope() {
			return
		}
		if _, ok := prohibited[obj.Name()]; !ok {
			return
		}

		pass.Reportf(n.Pos(), "http.%s bypasses the injected client", obj.Name())
	})

	return nil, nil
}
