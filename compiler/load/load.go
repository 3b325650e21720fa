// Package load finds structs marked with the insertable directive and
// describes them for the code generator.
//
//	//sqlxplus:insertable sqlite user
//	type UserInsert struct {
//		Name      string    `db:"name"`
//		Password  string    `db:"password"`
//		CreatedAt time.Time `db:"created_at"`
//	}
package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/syssam/sqlxplus/dialect"
	"github.com/syssam/sqlxplus/internal/naming"
)

// Directive marks a struct as insertable. It takes the dialect and the
// table name as arguments.
const Directive = "//sqlxplus:insertable"

// Schema describes an insertable struct.
type Schema struct {
	Package    string // Import path; empty for files parsed outside a package load.
	PkgName    string
	Dir        string
	Name       string
	TypeParams []string // Type parameter names of a generic struct.
	Dialect    string
	Table      string
	Fields     []*Field
	Pos        string
}

// Columns returns the column names in field order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Column
	}
	return cols
}

// Field is an insert column backed by a struct field.
type Field struct {
	Name     string // Go field name
	Column   string
	Encoding string // "", "json" or "msgpack"
}

// DirectiveError reports a misplaced or malformed insertable directive.
type DirectiveError struct {
	Pos  string
	Type string
	Msg  string
}

// Error implements the error interface.
func (e *DirectiveError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("load: %s: %s: %s", e.Pos, e.Type, e.Msg)
	}
	return fmt.Sprintf("load: %s: %s", e.Pos, e.Msg)
}

// Load loads the packages matching patterns and returns their insertable
// structs.
func Load(patterns ...string) ([]*Schema, error) {
	return LoadConfig(&packages.Config{}, patterns...)
}

// LoadConfig is like Load with a custom package loading configuration, for
// example to set the working directory or build flags.
func LoadConfig(cfg *packages.Config, patterns ...string) ([]*Schema, error) {
	c := *cfg
	c.Mode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax
	if c.Fset == nil {
		c.Fset = token.NewFileSet()
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := packages.Load(&c, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: loading packages: %w", err)
	}
	var schemas []*Schema
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("load: package %s: %w", pkg.PkgPath, pkg.Errors[0])
		}
		for _, file := range pkg.Syntax {
			ss, err := ParseFile(c.Fset, file)
			if err != nil {
				return nil, err
			}
			for _, s := range ss {
				s.Package = pkg.PkgPath
			}
			schemas = append(schemas, ss...)
		}
	}
	return schemas, nil
}

// ParseFile returns the insertable structs declared in file. The file must
// be parsed with comments.
func ParseFile(fset *token.FileSet, file *ast.File) ([]*Schema, error) {
	var schemas []*Schema
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range gd.Specs {
			var doc *ast.CommentGroup
			if !gd.Lparen.IsValid() {
				doc = gd.Doc
			}
			var name string
			ts, isType := spec.(*ast.TypeSpec)
			if isType {
				name = ts.Name.Name
				if ts.Doc != nil {
					doc = ts.Doc
				}
			}
			args, ok := directive(doc)
			if !ok {
				continue
			}
			pos := fset.Position(spec.Pos())
			if !isType {
				return nil, &DirectiveError{Pos: pos.String(), Msg: "only structs can be insertable"}
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				return nil, &DirectiveError{Pos: pos.String(), Type: name, Msg: "only structs can be insertable"}
			}
			if ts.Assign.IsValid() {
				return nil, &DirectiveError{Pos: pos.String(), Type: name, Msg: "type aliases cannot be insertable"}
			}
			s, err := newSchema(pos, name, args, st)
			if err != nil {
				return nil, err
			}
			if ts.TypeParams != nil {
				for _, f := range ts.TypeParams.List {
					for _, n := range f.Names {
						s.TypeParams = append(s.TypeParams, n.Name)
					}
				}
			}
			s.PkgName = file.Name.Name
			s.Dir = filepath.Dir(pos.Filename)
			schemas = append(schemas, s)
		}
	}
	return schemas, nil
}

// directive returns the arguments of the insertable directive in doc.
func directive(doc *ast.CommentGroup) ([]string, bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		return strings.Fields(rest), true
	}
	return nil, false
}

func newSchema(pos token.Position, name string, args []string, st *ast.StructType) (*Schema, error) {
	derr := func(format string, a ...any) error {
		return &DirectiveError{Pos: pos.String(), Type: name, Msg: fmt.Sprintf(format, a...)}
	}
	if len(args) != 2 {
		return nil, derr("expected %s <dialect> <table>, got %d arguments", Directive, len(args))
	}
	d := dialect.Normalize(args[0])
	if !dialect.Valid(d) {
		return nil, derr("unknown dialect %q", args[0])
	}
	s := &Schema{Name: name, Dialect: d, Table: args[1], Pos: pos.String()}
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, derr("embedded field %s is not supported", exprString(f.Type))
		}
		tag, err := dbTag(f.Tag)
		if err != nil {
			return nil, derr("field %s: %v", f.Names[0].Name, err)
		}
		column, opts, _ := strings.Cut(tag, ",")
		if column == "-" {
			continue
		}
		var enc string
		for _, o := range strings.Split(opts, ",") {
			switch o {
			case "json", "msgpack":
				enc = o
			}
		}
		for _, n := range f.Names {
			if !n.IsExported() {
				continue
			}
			col := column
			if col == "" {
				col = naming.Snake(n.Name)
			}
			s.Fields = append(s.Fields, &Field{Name: n.Name, Column: col, Encoding: enc})
		}
	}
	if len(s.Fields) == 0 {
		return nil, derr("struct has no insertable fields")
	}
	return s, nil
}

func dbTag(lit *ast.BasicLit) (string, error) {
	if lit == nil {
		return "", nil
	}
	raw, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", fmt.Errorf("invalid struct tag %s", lit.Value)
	}
	return reflect.StructTag(raw).Get("db"), nil
}

// exprString renders a field type expression for error messages.
func exprString(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return "*" + exprString(e.X)
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	default:
		return fmt.Sprintf("%T", e)
	}
}
