package xast

import (
	"fmt"
	"go/ast"
	"path"
	"regexp"
	"strings"

	"github.com/donutnomad/gormskipper/internal/utils"
	"github.com/samber/lo"
)

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// ImportInfo tracks package imports and their aliases
type ImportInfo struct {
	Path  string // Full import path
	Alias string // Import alias (empty for default import name)
}

func (i ImportInfo) String() string {
	if i.HasAlias() {
		return fmt.Sprintf("%s \"%s\"", i.Alias, i.Path)
	}
	return fmt.Sprintf("\"%s\"", i.Path)
}

// HasAlias reports whether the import is renamed to something other than its package name.
func (i ImportInfo) HasAlias() bool {
	return i.Alias != "" && i.Alias != PackageName(i.Path)
}

// GetBase returns the identifier the importing file uses for the package.
func (i ImportInfo) GetBase() string {
	if i.Alias != "" {
		return i.Alias
	}
	return PackageName(i.Path)
}

// PackageName guesses the package name of an import path:
// gorm.io/gorm -> gorm, github.com/go-chi/chi/v5 -> chi, gopkg.in/yaml.v3 -> yaml.
func PackageName(importPath string) string {
	base := path.Base(importPath)
	if versionSuffix.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if idx := strings.Index(base, ".v"); idx > 0 {
		base = base[:idx]
	}
	return strings.ReplaceAll(base, "-", "")
}

type ImportInfoSlice []ImportInfo

func (s ImportInfoSlice) Find(pkg string) *ImportInfo {
	find, ok := lo.Find(s, func(item ImportInfo) bool {
		return item.GetBase() == pkg
	})
	if ok {
		return &find
	}
	return nil
}

// Map returns the imports keyed by the identifier used in the file.
// Blank and dot imports are left out.
func (s ImportInfoSlice) Map() map[string]string {
	out := make(map[string]string, len(s))
	for _, item := range s {
		base := item.GetBase()
		if base == "_" || base == "." {
			continue
		}
		out[base] = item.Path
	}
	return out
}

func (s ImportInfoSlice) From(specs []*ast.ImportSpec) ImportInfoSlice {
	var out ImportInfoSlice
	for _, n := range specs {
		// lo2 "github.com/samber/lo"
		// ↑         ↑
		// alias    path
		var alias = ""
		if n.Name != nil {
			alias = n.Name.Name
		}
		out = append(out, ImportInfo{
			Alias: alias,
			Path:  utils.RemoveQuotes(n.Path.Value),
		})
	}
	return out
}
