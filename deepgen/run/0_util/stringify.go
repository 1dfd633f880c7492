// Package astutil renders DST type expressions back to Go source.
package astutil

import (
	"fmt"
	"strings"

	"github.com/dave/dst"
)

// Qualifier rewrites a bare identifier, e.g. to prefix a package alias. Returning
// the name unchanged leaves it as is.
type Qualifier func(name string) string

// ExpandFieldListTypes expands a field list into individual type strings.
// For fields with multiple names (e.g., "a, b int"), outputs the type once per name.
// For unnamed fields, outputs the type once.
func ExpandFieldListTypes(fields []*dst.Field, typeFormatter func(dst.Expr) string) []string {
	var parts []string

	for _, f := range fields {
		typeStr := typeFormatter(f.Type)

		count := len(f.Names)
		if count == 0 {
			count = 1
		}

		for range count {
			parts = append(parts, typeStr)
		}
	}

	return parts
}

// FieldCount returns the number of values a field list declares.
func FieldCount(list *dst.FieldList) int {
	if list == nil {
		return 0
	}

	count := 0

	for _, field := range list.List {
		if len(field.Names) == 0 {
			count++

			continue
		}

		count += len(field.Names)
	}

	return count
}

// StringifyExpr converts a DST expression to its string representation.
func StringifyExpr(expr dst.Expr) string {
	return QualifiedExpr(expr, nil)
}

// QualifiedExpr converts a DST expression to its string representation, passing
// every bare identifier through qualify. Selector expressions are already
// qualified and are left alone. A nil qualify leaves identifiers unchanged.
//
//nolint:cyclop,funlen // Type-switch dispatcher handling all DST expression types; complexity is inherent
func QualifiedExpr(expr dst.Expr, qualify Qualifier) string {
	if expr == nil {
		return ""
	}

	render := func(e dst.Expr) string { return QualifiedExpr(e, qualify) }

	switch typedExpr := expr.(type) {
	case *dst.Ident:
		if qualify == nil {
			return typedExpr.Name
		}

		return qualify(typedExpr.Name)
	case *dst.BasicLit:
		return typedExpr.Value
	case *dst.SelectorExpr:
		return StringifyExpr(typedExpr.X) + "." + typedExpr.Sel.Name
	case *dst.StarExpr:
		return "*" + render(typedExpr.X)
	case *dst.ArrayType:
		if typedExpr.Len != nil {
			return "[" + StringifyExpr(typedExpr.Len) + "]" + render(typedExpr.Elt)
		}

		return "[]" + render(typedExpr.Elt)
	case *dst.MapType:
		return "map[" + render(typedExpr.Key) + "]" + render(typedExpr.Value)
	case *dst.ChanType:
		switch typedExpr.Dir {
		case dst.SEND:
			return "chan<- " + render(typedExpr.Value)
		case dst.RECV:
			return "<-chan " + render(typedExpr.Value)
		default:
			return "chan " + render(typedExpr.Value)
		}
	case *dst.InterfaceType:
		return interfaceType(typedExpr, render)
	case *dst.StructType:
		return structType(typedExpr, render)
	case *dst.FuncType:
		return "func" + Signature(typedExpr, render)
	case *dst.Ellipsis:
		return "..." + render(typedExpr.Elt)
	case *dst.IndexExpr:
		return render(typedExpr.X) + "[" + render(typedExpr.Index) + "]"
	case *dst.IndexListExpr:
		indices := make([]string, len(typedExpr.Indices))
		for i, idx := range typedExpr.Indices {
			indices[i] = render(idx)
		}

		return render(typedExpr.X) + "[" + strings.Join(indices, ", ") + "]"
	case *dst.ParenExpr:
		return "(" + render(typedExpr.X) + ")"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

// Signature renders the parameter and result lists of a function type, without
// the func keyword.
func Signature(funcType *dst.FuncType, render func(dst.Expr) string) string {
	var buf strings.Builder

	buf.WriteString("(")

	if funcType.Params != nil {
		buf.WriteString(strings.Join(ExpandFieldListTypes(funcType.Params.List, render), ", "))
	}

	buf.WriteString(")")

	if funcType.Results == nil {
		return buf.String()
	}

	resultParts := ExpandFieldListTypes(funcType.Results.List, render)

	switch len(resultParts) {
	case 0:
	case 1:
		buf.WriteString(" ")
		buf.WriteString(resultParts[0])
	default:
		buf.WriteString(" (")
		buf.WriteString(strings.Join(resultParts, ", "))
		buf.WriteString(")")
	}

	return buf.String()
}

// interfaceType renders an interface literal on one line.
func interfaceType(iface *dst.InterfaceType, render func(dst.Expr) string) string {
	if iface.Methods == nil || len(iface.Methods.List) == 0 {
		return "interface{}"
	}

	members := make([]string, 0, len(iface.Methods.List))

	for _, method := range iface.Methods.List {
		funcType, ok := method.Type.(*dst.FuncType)
		if !ok || len(method.Names) == 0 {
			members = append(members, render(method.Type))

			continue
		}

		members = append(members, method.Names[0].Name+Signature(funcType, render))
	}

	return "interface{ " + strings.Join(members, "; ") + " }"
}

// structType renders a struct literal on one line, keeping names and tags.
func structType(st *dst.StructType, render func(dst.Expr) string) string {
	if st.Fields == nil || len(st.Fields.List) == 0 {
		return "struct{}"
	}

	fields := make([]string, 0, len(st.Fields.List))

	for _, field := range st.Fields.List {
		var fieldStr strings.Builder

		if len(field.Names) > 0 {
			names := make([]string, len(field.Names))
			for i, name := range field.Names {
				names[i] = name.Name
			}

			fieldStr.WriteString(strings.Join(names, ", "))
			fieldStr.WriteString(" ")
		}

		fieldStr.WriteString(render(field.Type))

		if field.Tag != nil {
			fieldStr.WriteString(" ")
			fieldStr.WriteString(field.Tag.Value)
		}

		fields = append(fields, fieldStr.String())
	}

	return fmt.Sprintf("struct{ %s }", strings.Join(fields, "; "))
}
