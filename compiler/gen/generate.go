package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/sqlxplus/compiler/load"
	"github.com/syssam/sqlxplus/dialect"
	"github.com/syssam/sqlxplus/internal/naming"
)

const (
	rootPkg    = "github.com/syssam/sqlxplus"
	dialectPkg = "github.com/syssam/sqlxplus/dialect"
)

// dialectConst maps dialect names to their constants in the dialect package.
var dialectConst = map[string]string{
	dialect.SQLite:   "SQLite",
	dialect.MySQL:    "MySQL",
	dialect.Postgres: "Postgres",
	dialect.MSSQL:    "MSSQL",
}

// pkgSchemas is the set of insertable structs of one package directory.
type pkgSchemas struct {
	dir     string
	path    string
	name    string
	schemas []*load.Schema
}

// Generate writes one file per package directory holding the Insertable
// methods of its schemas. Packages are generated in parallel.
func Generate(ctx context.Context, cfg *Config, schemas []*load.Schema) error {
	if cfg == nil {
		return NewConfigError("Config", nil, "missing configuration")
	}
	pkgs := groupByDir(schemas)
	start := time.Now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(cfg.Workers, 1))
	for _, p := range pkgs {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return writeFile(cfg, p)
			}
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	cfg.Logger.InfoContext(ctx, "generation completed", "packages", len(pkgs), "types", len(schemas), "duration", time.Since(start))
	return nil
}

func groupByDir(schemas []*load.Schema) []*pkgSchemas {
	byDir := make(map[string]*pkgSchemas)
	for _, s := range schemas {
		p, ok := byDir[s.Dir]
		if !ok {
			p = &pkgSchemas{dir: s.Dir, path: s.Package, name: s.PkgName}
			byDir[s.Dir] = p
		}
		p.schemas = append(p.schemas, s)
	}
	pkgs := make([]*pkgSchemas, 0, len(byDir))
	for _, p := range byDir {
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].dir < pkgs[j].dir })
	return pkgs
}

func writeFile(cfg *Config, p *pkgSchemas) error {
	path := filepath.Join(p.dir, cfg.Filename)
	f, err := File(cfg, p.path, p.name, p.schemas)
	if err != nil {
		return &GenerationError{Package: p.name, File: path, Cause: err}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return &GenerationError{Package: p.name, File: path, Cause: err}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return &GenerationError{Package: p.name, File: path, Cause: err}
	}
	cfg.Logger.Debug("generated file", "file", path, "types", len(p.schemas))
	return nil
}

// File builds the generated file of one package. pkgPath may be empty when
// the import path is unknown.
func File(cfg *Config, pkgPath, pkgName string, schemas []*load.Schema) (*jen.File, error) {
	var f *jen.File
	if pkgPath != "" {
		f = jen.NewFilePathName(pkgPath, pkgName)
	} else {
		f = jen.NewFile(pkgName)
	}
	if cfg.Header != "" {
		f.HeaderComment(cfg.Header)
	}
	for _, s := range schemas {
		if err := genType(f, s); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func genType(f *jen.File, s *load.Schema) error {
	d, ok := dialectConst[s.Dialect]
	if !ok {
		return fmt.Errorf("%s: unknown dialect %q", s.Name, s.Dialect)
	}
	recv := receiver(s)

	cols := make([]jen.Code, len(s.Fields))
	vals := make([]jen.Code, len(s.Fields))
	for i, fd := range s.Fields {
		cols[i] = jen.Lit(fd.Column)
		v := jen.Id(recv).Dot(fd.Name)
		switch fd.Encoding {
		case "json":
			vals[i] = jen.Qual(rootPkg, "JSON").Call(v)
		case "msgpack":
			vals[i] = jen.Qual(rootPkg, "Msgpack").Call(v)
		default:
			vals[i] = v
		}
	}
	typ := func() *jen.Statement {
		if len(s.TypeParams) == 0 {
			return jen.Id(s.Name)
		}
		params := make([]jen.Code, len(s.TypeParams))
		for i, p := range s.TypeParams {
			params[i] = jen.Id(p)
		}
		return jen.Id(s.Name).Types(params...)
	}

	// Generic types have no instantiation to assert against.
	if len(s.TypeParams) == 0 {
		f.Var().Defs(
			jen.Id("_").Qual(rootPkg, "Insertable").Op("=").Parens(jen.Op("*").Id(s.Name)).Parens(jen.Nil()),
			jen.Id("_").Qual(rootPkg, "DialectBound").Op("=").Parens(jen.Op("*").Id(s.Name)).Parens(jen.Nil()),
		)
	}
	f.Commentf("TableName returns the table %s records are inserted into.", s.Name)
	f.Func().Params(typ()).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(s.Table)),
	)
	f.Comment("InsertColumns returns the insert columns in binding order.")
	f.Func().Params(typ()).Id("InsertColumns").Params().Index().String().Block(
		jen.Return(jen.Index().String().Values(cols...)),
	)
	f.Comment("InsertValues returns the values bound to InsertColumns.")
	f.Func().Params(jen.Id(recv).Add(typ())).Id("InsertValues").Params().Index().Id("any").Block(
		jen.Return(jen.Index().Id("any").Values(vals...)),
	)
	f.Comment("InsertDialect returns the dialect the record was generated for.")
	f.Func().Params(typ()).Id("InsertDialect").Params().String().Block(
		jen.Return(jen.Qual(dialectPkg, d)),
	)
	return nil
}

// receiver returns the receiver name of s, avoiding its type parameters and
// the packages imported by generated files.
func receiver(s *load.Schema) string {
	recv := naming.Receiver(s.Name)
	for recv == "sqlxplus" || recv == "dialect" || slices.Contains(s.TypeParams, recv) {
		recv += "_"
	}
	return recv
}
