// Package load parses Go packages into DST without type checking.
package load

import (
	"errors"
	"fmt"
	"go/build"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// ErrNoPackage is returned when a directory holds no parseable Go files.
var ErrNoPackage = errors.New("no package found")

// PackageDST loads a package by import path and returns its DST files and FileSet.
// "." is the working directory and includes its test files; any other path
// (relative directory, local subdirectory name, or import path) excludes them.
// Files that fail to parse are skipped.
func PackageDST(importPath string) ([]*dst.File, *token.FileSet, error) {
	dir, err := packageDir(importPath)
	if err != nil {
		return nil, nil, err
	}

	goFiles, err := goFilesIn(dir, importPath == ".")
	if err != nil {
		return nil, nil, err
	}

	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	files := make([]*dst.File, 0, len(goFiles))

	for _, goFile := range goFiles {
		file, err := dec.ParseFile(goFile, nil, 0)
		if err != nil {
			continue
		}

		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w: failed to parse any .go files in %s", ErrNoPackage, dir)
	}

	return files, fset, nil
}

// ResolveLocalPackagePath returns the absolute directory of a local subdirectory
// package named importPath, or importPath itself when there is none. Only simple
// names are checked, so a local "time" shadows the standard library's.
func ResolveLocalPackagePath(importPath string) string {
	if importPath == "." || strings.Contains(importPath, "/") {
		return importPath
	}

	srcDir, err := os.Getwd()
	if err != nil {
		return importPath
	}

	localDir := filepath.Join(srcDir, importPath)

	goFiles, err := goFilesIn(localDir, false)
	if err != nil || len(goFiles) == 0 {
		return importPath
	}

	return localDir
}

// goFilesIn lists the .go files of dir.
func goFilesIn(dir string, includeTests bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	goFiles := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()

		switch {
		case entry.IsDir(), !strings.HasSuffix(name, ".go"):
			continue
		case !includeTests && strings.HasSuffix(name, "_test.go"):
			continue
		}

		goFiles = append(goFiles, filepath.Join(dir, name))
	}

	if len(goFiles) == 0 {
		return nil, fmt.Errorf("%w: no .go files in %s", ErrNoPackage, dir)
	}

	return goFiles, nil
}

// packageDir resolves importPath to a directory.
func packageDir(importPath string) (string, error) {
	srcDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	switch {
	case importPath == ".":
		return srcDir, nil
	case filepath.IsAbs(importPath):
		return importPath, nil
	case build.IsLocalImport(importPath):
		return filepath.Join(srcDir, importPath), nil
	}

	if local := ResolveLocalPackagePath(importPath); local != importPath {
		return local, nil
	}

	pkg, err := build.Import(importPath, srcDir, build.FindOnly)
	if err != nil {
		return "", fmt.Errorf("failed to find package %q: %w", importPath, err)
	}

	return pkg.Dir, nil
}
