// Package detect finds the interfaces a deep mock has to implement: the requested
// interface and every interface of the same package reachable through accessor
// methods.
package detect

import (
	"errors"
	"fmt"
	"go/token"
	"path"
	"strings"

	"github.com/dave/dst"

	astutil "github.com/toejough/deepmock/deepgen/run/0_util"
)

// Interface is one interface to implement, with embedded interfaces flattened.
type Interface struct {
	Name    string
	Methods []Method
}

// Method is one interface method. The last parameter of a variadic method is a
// *dst.Ellipsis.
type Method struct {
	Name    string
	Params  []dst.Expr
	Results []dst.Expr
	// Accessor names the same-package interface an accessor method returns. Accessors
	// take no parameters and return exactly that interface; they are treated as
	// property access rather than calls.
	Accessor string
}

// Variadic reports whether the method's last parameter is variadic.
func (m Method) Variadic() bool {
	if len(m.Params) == 0 {
		return false
	}

	_, ok := m.Params[len(m.Params)-1].(*dst.Ellipsis)

	return ok
}

// PackageLoader defines an interface for loading Go packages.
type PackageLoader interface {
	Load(importPath string) ([]*dst.File, *token.FileSet, error)
}

// Shape is the set of interfaces reachable from a root interface.
type Shape struct {
	// PkgName is the name of the package declaring the interfaces.
	PkgName string
	// Root is the requested interface's name.
	Root string
	// Interfaces holds the root first, then every accessor target in discovery order.
	Interfaces []Interface
	// Types holds every type name declared in the package.
	Types map[string]bool
	// Imports maps the package aliases used in method signatures to import paths.
	Imports map[string]string
}

// Collect finds the interface name in files and every interface reachable from it
// through accessors. When pkgName is not empty, files of other packages (such as an
// external test package) are ignored.
func Collect(files []*dst.File, name string, pkgName string) (Shape, error) {
	decls := declarations(files, pkgName)

	root, ok := decls.types[name]
	if !ok {
		return Shape{}, fmt.Errorf("%w: %s", ErrInterfaceNotFound, name)
	}

	shape := Shape{
		PkgName: root.file.Name.Name,
		Root:    name,
		Types:   make(map[string]bool, len(decls.types)),
		Imports: make(map[string]string),
	}

	for typeName := range decls.types {
		shape.Types[typeName] = true
	}

	queue := []string{name}
	queued := map[string]bool{name: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		iface, err := decls.collectInterface(current)
		if err != nil {
			return Shape{}, err
		}

		for _, method := range iface.Methods {
			decls.recordImports(current, method, shape.Imports)

			if method.Accessor != "" && !queued[method.Accessor] {
				queued[method.Accessor] = true
				queue = append(queue, method.Accessor)
			}
		}

		shape.Interfaces = append(shape.Interfaces, iface)
	}

	return shape, nil
}

// ResolveImport finds the import path for the package alias used in files: an
// import named alias, an import whose last path element is alias, or an import
// whose package clause says alias.
func ResolveImport(files []*dst.File, alias string, loader PackageLoader) (string, error) {
	var candidates []string

	for _, file := range files {
		for _, imp := range file.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			switch {
			case imp.Name != nil && imp.Name.Name == alias:
				return importPath, nil
			case imp.Name == nil && path.Base(importPath) == alias:
				return importPath, nil
			case imp.Name == nil:
				candidates = append(candidates, importPath)
			}
		}
	}

	for _, candidate := range candidates {
		loaded, _, err := loader.Load(candidate)
		if err == nil && len(loaded) > 0 && loaded[0].Name.Name == alias {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrPackageNotFound, alias)
}

// SplitQualified splits "pkg.Name" into "pkg" and "Name". An unqualified name has
// an empty package.
func SplitQualified(name string) (string, string) {
	pkg, local, ok := strings.Cut(name, ".")
	if !ok {
		return "", name
	}

	return pkg, local
}

// Exported errors.
var (
	ErrConstraint        = errors.New("type constraints are not supported")
	ErrForeignEmbed      = errors.New("embedded interfaces from other packages are not supported")
	ErrGeneric           = errors.New("generic interfaces are not supported")
	ErrInterfaceNotFound = errors.New("interface not found")
	ErrNotInterface      = errors.New("not an interface")
	ErrPackageNotFound   = errors.New("package not found in imports")
)

type declaration struct {
	spec *dst.TypeSpec
	file *dst.File
}

type declarationSet struct {
	types map[string]declaration
}

// collectInterface flattens the interface name into its method set.
func (d declarationSet) collectInterface(name string) (Interface, error) {
	iface := Interface{Name: name}

	err := d.flatten(name, &iface, map[string]bool{}, map[string]bool{})
	if err != nil {
		return Interface{}, err
	}

	return iface, nil
}

// flatten appends the methods of the interface name, and of the interfaces it
// embeds, to iface. Methods seen through more than one embedding are kept once.
func (d declarationSet) flatten(name string, iface *Interface, visited, methods map[string]bool) error {
	if visited[name] {
		return nil
	}

	visited[name] = true

	decl, ok := d.types[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInterfaceNotFound, name)
	}

	if decl.spec.TypeParams != nil {
		return fmt.Errorf("%w: %s", ErrGeneric, name)
	}

	ifaceType, ok := decl.spec.Type.(*dst.InterfaceType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotInterface, name)
	}

	if ifaceType.Methods == nil {
		return nil
	}

	for _, field := range ifaceType.Methods.List {
		if len(field.Names) == 0 {
			err := d.embed(name, field.Type, iface, visited, methods)
			if err != nil {
				return err
			}

			continue
		}

		funcType, ok := field.Type.(*dst.FuncType)
		if !ok {
			continue
		}

		for _, methodName := range field.Names {
			if methods[methodName.Name] {
				continue
			}

			methods[methodName.Name] = true
			iface.Methods = append(iface.Methods, d.method(methodName.Name, funcType))
		}
	}

	return nil
}

// embed flattens one embedded element of the interface name.
func (d declarationSet) embed(name string, expr dst.Expr, iface *Interface, visited, methods map[string]bool) error {
	switch embedded := expr.(type) {
	case *dst.Ident:
		if embedded.Name == "error" {
			if !methods["Error"] {
				methods["Error"] = true
				iface.Methods = append(iface.Methods, Method{
					Name:    "Error",
					Results: []dst.Expr{dst.NewIdent("string")},
				})
			}

			return nil
		}

		return d.flatten(embedded.Name, iface, visited, methods)
	case *dst.SelectorExpr:
		return fmt.Errorf("%w: %s embeds %s", ErrForeignEmbed, name, astutil.StringifyExpr(embedded))
	default:
		return fmt.Errorf("%w: %s", ErrConstraint, name)
	}
}

// isInterface reports whether name is a non-generic interface declared in the package.
func (d declarationSet) isInterface(name string) bool {
	decl, ok := d.types[name]
	if !ok || decl.spec.TypeParams != nil {
		return false
	}

	_, ok = decl.spec.Type.(*dst.InterfaceType)

	return ok
}

// method converts an interface method, detecting accessors.
func (d declarationSet) method(name string, funcType *dst.FuncType) Method {
	method := Method{
		Name:    name,
		Params:  expand(funcType.Params),
		Results: expand(funcType.Results),
	}

	if len(method.Params) == 0 && len(method.Results) == 1 {
		if ident, ok := method.Results[0].(*dst.Ident); ok && d.isInterface(ident.Name) {
			method.Accessor = ident.Name
		}
	}

	return method
}

// recordImports adds the imports that method's signature refers to, resolved in the
// file declaring the interface owner.
func (d declarationSet) recordImports(owner string, method Method, imports map[string]string) {
	decl, ok := d.types[owner]
	if !ok {
		return
	}

	exprs := append(append([]dst.Expr{}, method.Params...), method.Results...)

	for _, expr := range exprs {
		dst.Inspect(expr, func(node dst.Node) bool {
			selector, ok := node.(*dst.SelectorExpr)
			if !ok {
				return true
			}

			if alias, ok := selector.X.(*dst.Ident); ok {
				if _, known := imports[alias.Name]; !known {
					imports[alias.Name] = importPathFor(decl.file, alias.Name)
				}
			}

			return false
		})
	}
}

// declarations indexes the type declarations of files.
func declarations(files []*dst.File, pkgName string) declarationSet {
	decls := declarationSet{types: make(map[string]declaration)}

	for _, file := range files {
		if pkgName != "" && file.Name.Name != pkgName {
			continue
		}

		for _, decl := range file.Decls {
			genDecl, ok := decl.(*dst.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*dst.TypeSpec)
				if !ok {
					continue
				}

				if _, seen := decls.types[typeSpec.Name.Name]; !seen {
					decls.types[typeSpec.Name.Name] = declaration{spec: typeSpec, file: file}
				}
			}
		}
	}

	return decls
}

// expand lists one type per declared name.
func expand(list *dst.FieldList) []dst.Expr {
	if list == nil {
		return nil
	}

	types := make([]dst.Expr, 0, len(list.List))

	for _, field := range list.List {
		count := max(len(field.Names), 1)

		for range count {
			types = append(types, field.Type)
		}
	}

	return types
}

// importPathFor finds the path imported as alias in file. Unknown aliases are
// assumed to be standard library packages of the same name.
func importPathFor(file *dst.File, alias string) string {
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		if imp.Name != nil {
			if imp.Name.Name == alias {
				return importPath
			}

			continue
		}

		if path.Base(importPath) == alias {
			return importPath
		}
	}

	return alias
}
