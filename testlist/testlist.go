package testlist

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/mod/modfile"
)

// GroupsDirective tags a test function with groups, e.g.
//
//	//testbridge:groups fast,network
const GroupsDirective = "//testbridge:groups"

// TestFunction is a top-level test function and the groups it is tagged with
type TestFunction struct {
	Name   string
	Groups []string
}

// FindTestFunctions takes a package path and working directory, and returns a list of test function names
func FindTestFunctions(pkgPath string, workingDir string) ([]string, error) {
	funcs, err := FindTests(pkgPath, workingDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(funcs))
	for i, f := range funcs {
		names[i] = f.Name
	}
	return names, nil
}

// FindTests returns the test functions of a package in file and declaration order
func FindTests(pkgPath string, workingDir string) ([]TestFunction, error) {
	pkgDir, err := PackageDir(pkgPath, workingDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package directory: %w", err)
	}

	var tests []TestFunction
	fset := token.NewFileSet()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		filePath := filepath.Join(pkgDir, entry.Name())
		f, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}

		// Traverse top-level declarations in search of test functions
		for _, decl := range f.Decls {
			funcDecl, ok := decl.(*ast.FuncDecl)
			if !ok || funcDecl.Recv != nil {
				continue
			}
			if !isTestName(funcDecl.Name.Name) {
				continue
			}
			tests = append(tests, TestFunction{
				Name:   funcDecl.Name.Name,
				Groups: parseGroups(funcDecl.Doc),
			})
		}
	}

	return tests, nil
}

// PackageDir maps a package path to its directory. Relative paths ("./pkg")
// are taken relative to workingDir; import paths must belong to the module
// declared in workingDir/go.mod.
func PackageDir(pkgPath string, workingDir string) (string, error) {
	if pkgPath == "." || strings.HasPrefix(pkgPath, "./") {
		return filepath.Join(workingDir, strings.TrimPrefix(pkgPath, "./")), nil
	}

	goModPath := filepath.Join(workingDir, "go.mod")
	goModContent, err := os.ReadFile(goModPath)
	if err != nil {
		return "", fmt.Errorf("failed to find go.mod: %w", err)
	}

	modFile, err := modfile.Parse(goModPath, goModContent, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod: %w", err)
	}

	if modFile.Module == nil || modFile.Module.Mod.Path == "" {
		return "", fmt.Errorf("could not find module name in go.mod")
	}
	moduleName := modFile.Module.Mod.Path

	// Verify that the package is indeed in the module
	if pkgPath != moduleName && !strings.HasPrefix(pkgPath, moduleName+"/") {
		return "", fmt.Errorf("package %s is not in module %s", pkgPath, moduleName)
	}

	relPath := strings.TrimPrefix(strings.TrimPrefix(pkgPath, moduleName), "/")
	if relPath == "" {
		relPath = "."
	}
	return filepath.Join(workingDir, relPath), nil
}

// FindTestPackages walks root and returns every directory holding a _test.go
// file, as "./"-prefixed paths relative to workingDir, sorted
func FindTestPackages(root string, workingDir string) ([]string, error) {
	root = strings.TrimSuffix(root, "/...")
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("directory %s does not exist: %w", root, err)
	}
	seen := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(workingDir, filepath.Dir(path))
		if err != nil {
			return err
		}
		seen["./"+filepath.ToSlash(rel)] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	pkgs := make([]string, 0, len(seen))
	for p := range seen {
		if p == "./." {
			p = "."
		}
		pkgs = append(pkgs, p)
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

// isTestName follows the go test rule: Test, optionally followed by a name not starting with a lower-case letter
func isTestName(name string) bool {
	if !strings.HasPrefix(name, "Test") || name == "TestMain" {
		return false
	}
	if len(name) == len("Test") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(name[len("Test"):])
	return !unicode.IsLower(r)
}

func parseGroups(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	var groups []string
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, GroupsDirective)
		if !ok {
			continue
		}
		for _, g := range strings.Split(rest, ",") {
			if g = strings.TrimSpace(g); g != "" {
				groups = append(groups, g)
			}
		}
	}
	return groups
}
