// Package gen writes Insertable implementations for structs found by the
// load package.
//
// Every package with insertable structs gets one generated file (by default
// sqlxplus_gen.go) holding value-receiver TableName, InsertColumns,
// InsertValues and InsertDialect methods:
//
//	func (ui UserInsert) InsertValues() []any {
//		return []any{ui.Name, ui.Password, ui.CreatedAt}
//	}
//
// Packages are generated in parallel, bounded by Config.Workers.
//
//	schemas, err := load.Load("./...")
//	cfg, err := gen.NewConfig(gen.WithWorkers(4))
//	err = gen.Generate(ctx, cfg, schemas)
package gen
