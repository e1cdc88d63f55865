package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/packages"

	"featgraph/internal/fault"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// Load type-checks the packages matching patterns under dir and returns
// one Unit per file. When only is non-empty, units are restricted to
// those absolute paths. Packages with errors still yield units, with
// Unit.Err set, so the caller can decide per unit.
func Load(ctx context.Context, dir string, only map[string]bool, patterns ...string) ([]*Unit, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    loadMode,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fault.New(fault.KindFrontEnd, "load", err)
	}

	var units []*Unit
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		var pkgErr error
		if len(pkg.Errors) > 0 {
			errs := make([]error, 0, len(pkg.Errors))
			for _, e := range pkg.Errors {
				errs = append(errs, e)
			}
			pkgErr = fault.New(fault.KindFrontEnd, "typecheck", errors.Join(errs...))
		}

		for i, file := range pkg.Syntax {
			if i >= len(pkg.CompiledGoFiles) {
				break
			}
			path := pkg.CompiledGoFiles[i]
			if filepath.Ext(path) != ".go" || seen[path] {
				continue
			}
			if len(only) > 0 && !only[path] {
				continue
			}
			seen[path] = true

			u := &Unit{
				Path:    path,
				Fset:    pkg.Fset,
				File:    file,
				TokFile: pkg.Fset.File(file.Pos()),
				Pkg:     pkg.Types,
				Info:    pkg.TypesInfo,
				Err:     pkgErr,
			}
			src, err := os.ReadFile(path)
			if err != nil {
				u.Err = fault.New(fault.KindFrontEnd, "read", err).WithUnit(path)
			} else if u.TokFile != nil && len(src) != u.TokFile.Size() {
				u.Err = fault.New(fault.KindFrontEnd, "read", fmt.Errorf("source changed while loading")).WithUnit(path)
			}
			u.Src = src
			units = append(units, u)
		}
	}
	return units, nil
}
