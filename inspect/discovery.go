// Package inspect checks the templates of a Go module. It finds element templates next
// to the Go structs backing them, derives the bindable properties from struct tags,
// compiles every template and reports diagnostics and instruction tables.
package inspect

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/vcrobe/nojs-templating/binding"
	"github.com/vcrobe/nojs-templating/console"
	"github.com/vcrobe/nojs-templating/observation"
)

// Component is a template found beside a Go package.
type Component struct {
	// Element is the custom element name, the template file name without its suffix.
	Element    string
	Path       string
	Markup     string
	Package    string
	ImportPath string
	// Struct is the view-model type, empty when the package declares none.
	Struct     string
	Properties []Property
}

// Property is a bindable property declared with a bindable struct tag:
//
//	Title string `bindable:""`
//	Value string `bindable:"val,two-way,changed=OnValue"`
//	Label string `bindable:",primary"`
type Property struct {
	Name          string
	Attribute     string
	GoType        string
	Mode          binding.BindingMode
	ChangeHandler string
	Primary       bool
}

// Discover loads the packages under root and collects the templates whose file name
// matches pattern. Templates are read concurrently.
func Discover(ctx context.Context, root, pattern string) ([]Component, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles,
		Dir:     root,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var found []*Component
	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}
		dir := filepath.Dir(pkg.GoFiles[0])
		entries, err := os.ReadDir(dir)
		if err != nil {
			console.Warn("could not read directory", dir+":", err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
				continue
			}
			found = append(found, &Component{
				Element:    ElementName(entry.Name(), pattern),
				Path:       filepath.Join(dir, entry.Name()),
				Package:    pkg.Name,
				ImportPath: pkg.PkgPath,
			})
		}
		if err := inspectPackage(pkg.GoFiles, found); err != nil {
			return nil, err
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, c := range found {
		g.Go(func() error {
			data, err := os.ReadFile(c.Path)
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}
			c.Markup = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Component, 0, len(found))
	for _, c := range found {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	if len(out) == 0 {
		console.Warn("no templates matching", pattern, "were found")
	}
	return out, nil
}

// ElementName derives the element name from a template file name: the part matched by
// the pattern's leading "*", or everything before the first dot.
func ElementName(file, pattern string) string {
	name := file
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasSuffix(file, suffix) {
		name = strings.TrimSuffix(file, suffix)
	} else if i := strings.IndexByte(file, '.'); i > 0 {
		name = file[:i]
	}
	return binding.Hyphenate(name)
}

// StructName maps an element name onto the Go type expected to back it: user-card
// becomes UserCard.
func StructName(element string) string {
	return observation.ExportedName(binding.CamelCase(element))
}

// inspectPackage fills Struct and Properties of the components of one package.
func inspectPackage(goFiles []string, components []*Component) error {
	want := make(map[string]*Component)
	for _, c := range components {
		if c.Struct == "" && filepath.Dir(c.Path) == filepath.Dir(goFiles[0]) {
			want[StructName(c.Element)] = c
		}
	}
	if len(want) == 0 {
		return nil
	}

	fset := token.NewFileSet()
	for _, path := range goFiles {
		file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		ast.Inspect(file, func(n ast.Node) bool {
			spec, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			c := want[spec.Name.Name]
			st, isStruct := spec.Type.(*ast.StructType)
			if c == nil || !isStruct {
				return true
			}
			c.Struct = spec.Name.Name
			props, err := structProperties(st)
			if err != nil {
				console.Warn("struct", spec.Name.Name+":", err)
			}
			c.Properties = props
			return false
		})
	}
	return nil
}

func structProperties(st *ast.StructType) ([]Property, error) {
	var props []Property
	for _, field := range st.Fields.List {
		if field.Tag == nil || len(field.Names) == 0 {
			continue
		}
		raw, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			return props, err
		}
		value, ok := reflect.StructTag(raw).Lookup("bindable")
		if !ok {
			continue
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			p, err := parseBindable(name.Name, typeName(field.Type), value)
			if err != nil {
				return props, fmt.Errorf("field %s: %w", name.Name, err)
			}
			props = append(props, p)
		}
	}
	return props, nil
}

// parseBindable reads "attribute,mode,primary,changed=Method".
func parseBindable(field, goType, tag string) (Property, error) {
	p := Property{Name: field, GoType: goType}
	parts := strings.Split(tag, ",")
	p.Attribute = strings.TrimSpace(parts[0])
	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "primary":
			p.Primary = true
		case strings.HasPrefix(opt, "changed="):
			p.ChangeHandler = strings.TrimPrefix(opt, "changed=")
		default:
			mode, err := binding.ParseBindingMode(opt)
			if err != nil {
				return p, err
			}
			p.Mode = mode
		}
	}
	return p, nil
}

// typeName renders a field type for reports.
func typeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.ArrayType:
		return "[]" + typeName(t.Elt)
	case *ast.StarExpr:
		return "*" + typeName(t.X)
	case *ast.MapType:
		return "map[" + typeName(t.Key) + "]" + typeName(t.Value)
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name + "." + t.Sel.Name
		}
	case *ast.InterfaceType:
		return "any"
	}
	return "unknown"
}
