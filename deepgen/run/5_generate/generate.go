// Package generate renders the Go source of deep mock implementations.
package generate

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"path"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/dst"

	astutil "github.com/toejough/deepmock/deepgen/run/0_util"
	detect "github.com/toejough/deepmock/deepgen/run/3_detect"
)

// DeepmockImport is the import path of the runtime package generated code uses.
const DeepmockImport = "github.com/toejough/deepmock"

// ErrUnexported is returned when generated code in another package would need an
// unexported type.
var ErrUnexported = errors.New("unexported type in another package")

// Options controls code generation.
type Options struct {
	// PkgName is the package the generated file belongs to.
	PkgName string
	// Name is the base name of the generated implementation; the exported
	// constructor is New<Name>.
	Name string
	// SourceAlias and SourcePath identify the interfaces' package when it differs
	// from PkgName. Both are empty for same-package generation.
	SourceAlias string
	SourcePath  string
}

// Code renders the implementation of shape as formatted Go source.
func Code(shape detect.Shape, opts Options) (string, error) {
	gen := &generator{shape: shape, opts: opts, templates: NewTemplateRegistry()}

	data, err := gen.fileData()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer

	gen.templates.WriteHeader(&buf, data)

	for _, st := range data.Structs {
		gen.templates.WriteStruct(&buf, st)

		for _, method := range st.Methods {
			gen.templates.WriteMethod(&buf, method)
		}
	}

	gen.templates.WriteConstructor(&buf, data)

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to format generated code: %w\n%s", err, buf.String())
	}

	return string(formatted), nil
}

type fileData struct {
	PkgName string
	Name    string
	Imports []importData
	Root    structData
	Structs []structData
}

type generator struct {
	shape      detect.Shape
	opts       Options
	templates  *TemplateRegistry
	unexported []string
}

// fileData assembles the template data for the whole file.
func (g *generator) fileData() (fileData, error) {
	data := fileData{
		PkgName: g.opts.PkgName,
		Name:    g.opts.Name,
		Imports: g.imports(),
	}

	for _, iface := range g.shape.Interfaces {
		data.Structs = append(data.Structs, g.structData(iface))
	}

	if len(g.unexported) > 0 {
		slices.Sort(g.unexported)

		return fileData{}, fmt.Errorf(
			"%w: %s", ErrUnexported, strings.Join(slices.Compact(g.unexported), ", "),
		)
	}

	data.Root = data.Structs[0]

	return data, nil
}

// ctorName returns the unexported constructor for the implementation of iface.
func (g *generator) ctorName(iface string) string {
	if iface == g.shape.Root {
		return "new" + g.opts.Name
	}

	return "new" + g.opts.Name + iface
}

// imports lists the runtime package, the source package and every package the
// method signatures refer to.
func (g *generator) imports() []importData {
	imports := []importData{{Path: DeepmockImport}}

	if g.opts.SourcePath != "" {
		imports = append(imports, newImport(g.opts.SourceAlias, g.opts.SourcePath))
	}

	for alias, importPath := range g.shape.Imports {
		if importPath == g.opts.SourcePath || importPath == DeepmockImport {
			continue
		}

		imports = append(imports, newImport(alias, importPath))
	}

	slices.SortFunc(imports, func(a, b importData) int { return strings.Compare(a.Path, b.Path) })

	return slices.Compact(imports)
}

// methodData assembles one method.
func (g *generator) methodData(receiver string, method detect.Method) methodData {
	data := methodData{
		Receiver: receiver,
		Name:     method.Name,
		Results:  g.results(method.Results),
	}

	if method.Accessor != "" {
		data.Accessor = true
		data.Wrap = g.ctorName(method.Accessor)

		return data
	}

	params := make([]string, len(method.Params))
	args := make([]string, len(method.Params))

	for i, param := range method.Params {
		name := "a" + strconv.Itoa(i)
		params[i] = name + " " + g.typeString(param)
		args[i] = name
	}

	data.Params = strings.Join(params, ", ")
	data.Args = callArgs(args, method.Variadic())

	for i, result := range method.Results {
		data.Returns = append(data.Returns, fmt.Sprintf("deepmock.Result[%s](out, %d)", g.typeString(result), i))
	}

	return data
}

// qualify prefixes the source alias to identifiers declared in the source package
// when generating into another package.
func (g *generator) qualify(name string) string {
	if g.opts.SourceAlias == "" || !g.shape.Types[name] {
		return name
	}

	if !token.IsExported(name) {
		g.unexported = append(g.unexported, name)
	}

	return g.opts.SourceAlias + "." + name
}

// results renders a result list, with its leading space.
func (g *generator) results(results []dst.Expr) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + g.typeString(results[0])
	}

	parts := make([]string, len(results))
	for i, result := range results {
		parts[i] = g.typeString(result)
	}

	return " (" + strings.Join(parts, ", ") + ")"
}

// structData assembles the implementation of one interface.
func (g *generator) structData(iface detect.Interface) structData {
	data := structData{
		Iface: g.qualify(iface.Name),
		Type:  lowerFirst(strings.TrimPrefix(g.ctorName(iface.Name), "new")),
		Ctor:  g.ctorName(iface.Name),
	}

	for _, method := range iface.Methods {
		data.Methods = append(data.Methods, g.methodData(data.Type, method))
	}

	return data
}

func (g *generator) typeString(expr dst.Expr) string {
	return astutil.QualifiedExpr(expr, g.qualify)
}

type importData struct {
	Alias string
	Path  string
}

type methodData struct {
	Receiver string
	Name     string
	Params   string
	Results  string
	Accessor bool
	Wrap     string
	Args     string
	Returns  []string
}

type structData struct {
	Iface   string
	Type    string
	Ctor    string
	Methods []methodData
}

// callArgs renders the arguments passed to deepmock.Call, with a leading comma. A
// variadic tail is spread so the mock sees every value positionally.
func callArgs(args []string, variadic bool) string {
	if len(args) == 0 {
		return ""
	}

	if !variadic {
		return ", " + strings.Join(args, ", ")
	}

	last := args[len(args)-1]
	fixed := args[:len(args)-1]

	if len(fixed) == 0 {
		return ", deepmock.Spread(" + last + ")..."
	}

	return ", append([]any{" + strings.Join(fixed, ", ") + "}, deepmock.Spread(" + last + ")...)..."
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToLower(r)) + s[size:]
}

// newImport names an import only when alias differs from the path's last element.
func newImport(alias, importPath string) importData {
	if alias == path.Base(importPath) {
		alias = ""
	}

	return importData{Alias: alias, Path: importPath}
}
