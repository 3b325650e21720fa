package sqlxplus

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/schema"
)

// Verify checks that the table of v exists in the inspected schema and has
// every insert column. An empty schemaName inspects the connection's
// current schema.
//
//	insp, err := drv.Inspector()
//	err = sqlxplus.Verify(ctx, insp, sql.DefaultSchema(drv.Dialect()), UserInsert{})
func Verify(ctx context.Context, insp schema.Inspector, schemaName string, v Insertable) error {
	table := v.TableName()
	if err := checkTable(table); err != nil {
		return err
	}
	cols := v.InsertColumns()
	if len(cols) == 0 {
		return ErrNoColumns
	}
	s, err := insp.InspectSchema(ctx, schemaName, &schema.InspectOptions{Tables: []string{table}})
	if err != nil {
		if schema.IsNotExistError(err) {
			return &TableNotFoundError{Table: table, Schema: schemaName}
		}
		return fmt.Errorf("sqlxplus: inspect %s: %w", table, err)
	}
	t, ok := s.Table(table)
	if !ok {
		return &TableNotFoundError{Table: table, Schema: schemaName}
	}
	var missing []string
	for _, c := range cols {
		if _, ok := t.Column(c); !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Table: table, Columns: missing}
	}
	return nil
}
