package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TemplateRegistry holds all parsed text templates for code generation.
// Create a registry using NewTemplateRegistry() to initialize all templates.
type TemplateRegistry struct {
	headerTmpl      *template.Template
	constructorTmpl *template.Template
	structTmpl      *template.Template
	methodTmpl      *template.Template
}

// NewTemplateRegistry creates and initializes a new template registry with all templates parsed.
// Templates are hardcoded constants, so parsing cannot fail at runtime.
func NewTemplateRegistry() *TemplateRegistry {
	funcs := template.FuncMap{"join": strings.Join}

	return &TemplateRegistry{
		headerTmpl:      template.Must(template.New("header").Funcs(funcs).Parse(headerTemplate)),
		constructorTmpl: template.Must(template.New("constructor").Funcs(funcs).Parse(constructorTemplate)),
		structTmpl:      template.Must(template.New("struct").Funcs(funcs).Parse(structTemplate)),
		methodTmpl:      template.Must(template.New("method").Funcs(funcs).Parse(methodTemplate)),
	}
}

// WriteConstructor writes the exported constructor and the init function that
// registers every generated implementation.
func (r *TemplateRegistry) WriteConstructor(buf *bytes.Buffer, data any) {
	execute(r.constructorTmpl, buf, data)
}

// WriteHeader writes the generated-code header, package clause and imports.
func (r *TemplateRegistry) WriteHeader(buf *bytes.Buffer, data any) {
	execute(r.headerTmpl, buf, data)
}

// WriteMethod writes one interface method.
func (r *TemplateRegistry) WriteMethod(buf *bytes.Buffer, data any) {
	execute(r.methodTmpl, buf, data)
}

// WriteStruct writes an implementation struct and its constructor.
func (r *TemplateRegistry) WriteStruct(buf *bytes.Buffer, data any) {
	execute(r.structTmpl, buf, data)
}

// unexported constants.
const (
	constructorTemplate = `
// New{{.Name}} returns a {{.Root.Iface}} whose methods resolve through root, such as
// the Root of a deepmock builder.
func New{{.Name}}(root deepmock.Getter) {{.Root.Iface}} {
	return {{.Root.Ctor}}(root)
}

func init() {
{{- range .Structs}}
	deepmock.Register({{.Ctor}})
{{- end}}
}
`
	headerTemplate = `// Code generated by deepgen. DO NOT EDIT.

package {{.PkgName}}

import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
`
	methodTemplate = `
func (d *{{.Receiver}}) {{.Name}}({{.Params}}){{.Results}} {
{{- if .Accessor}}
	return deepmock.Field(d.node, "{{.Name}}", {{.Wrap}})
{{- else if .Returns}}
	out := deepmock.Call(d.node, "{{.Name}}"{{.Args}})

	return {{join .Returns ", "}}
{{- else}}
	deepmock.Call(d.node, "{{.Name}}"{{.Args}})
{{- end}}
}
`
	structTemplate = `
// {{.Type}} implements {{.Iface}} over a deepmock tree.
type {{.Type}} struct {
	node deepmock.Getter
}

func {{.Ctor}}(node deepmock.Getter) {{.Iface}} {
	return &{{.Type}}{node: node}
}
`
)

func execute(tmpl *template.Template, buf *bytes.Buffer, data any) {
	err := tmpl.Execute(buf, data)
	if err != nil {
		panic(fmt.Sprintf("failed to execute %s template: %v", tmpl.Name(), err))
	}
}
