package sqlxplus

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/syssam/sqlxplus/dialect"
	"github.com/syssam/sqlxplus/internal/naming"
)

// Record is an Insertable derived from a struct at runtime.
//
// Column names come from the `db` struct tag, or the snake_case field name
// when the tag is absent. A tag of "-" skips the field. Embedded structs
// without a tag are flattened. The tag options "json" and "msgpack" encode
// the field value when it is bound:
//
//	type Event struct {
//		ID      uuid.UUID      `db:"id"`
//		Payload map[string]any `db:"payload,json"`
//		Secret  string         `db:"-"`
//	}
//
// The table name is the result of a TableName() string method on the struct,
// or the pluralized snake_case type name ("events").
type Record struct {
	meta    *structMeta
	value   reflect.Value
	table   string
	dialect string
}

type (
	structMeta struct {
		fields  []structField
		columns []string
		table   string
	}
	structField struct {
		index    []int
		column   string
		encoding string
	}
	tabler interface{ TableName() string }
)

// metas caches struct metadata per reflect.Type.
var metas sync.Map

// Reflect derives a Record from a struct or a pointer to a struct. Values
// are read when the record is bound, so a record reflected from a pointer
// sees later changes to the struct.
func Reflect(v any) (*Record, error) {
	if r, ok := v.(*Record); ok {
		return r, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, &NotInsertableError{Type: fmt.Sprintf("%T", v)}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &NotInsertableError{Type: fmt.Sprintf("%T", v)}
	}
	meta, err := metaOf(rv.Type())
	if err != nil {
		return nil, err
	}
	return &Record{meta: meta, value: rv, table: tableOf(v, rv, meta)}, nil
}

// ReflectAll derives a Record for every element of vs.
func ReflectAll[T any](vs []T) ([]*Record, error) {
	rs := make([]*Record, len(vs))
	for i, v := range vs {
		r, err := Reflect(v)
		if err != nil {
			return nil, fmt.Errorf("sqlxplus: record %d: %w", i, err)
		}
		rs[i] = r
	}
	return rs, nil
}

// TableName implements Insertable.
func (r *Record) TableName() string { return r.table }

// InsertColumns implements Insertable.
func (r *Record) InsertColumns() []string { return slices.Clone(r.meta.columns) }

// InsertValues implements Insertable.
func (r *Record) InsertValues() []any {
	values := make([]any, len(r.meta.fields))
	for i, f := range r.meta.fields {
		var v any
		// A nil embedded pointer yields NULL for its fields.
		if fv, err := r.value.FieldByIndexErr(f.index); err == nil {
			v = fv.Interface()
		}
		switch f.encoding {
		case "json":
			v = JSON(v)
		case "msgpack":
			v = Msgpack(v)
		}
		values[i] = v
	}
	return values
}

// InsertDialect implements DialectBound. It is empty unless set with For.
func (r *Record) InsertDialect() string { return r.dialect }

// As returns a copy of the record that is inserted into table.
func (r *Record) As(table string) *Record {
	c := *r
	c.table = table
	return &c
}

// For returns a copy of the record bound to the dialect d.
func (r *Record) For(d string) *Record {
	c := *r
	c.dialect = dialect.Normalize(d)
	return &c
}

func metaOf(t reflect.Type) (*structMeta, error) {
	if m, ok := metas.Load(t); ok {
		return m.(*structMeta), nil
	}
	m := &structMeta{table: naming.Table(t.Name())}
	collectFields(t, nil, m)
	if len(m.fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, t)
	}
	actual, _ := metas.LoadOrStore(t, m)
	return actual.(*structMeta), nil
}

func collectFields(t reflect.Type, index []int, m *structMeta) {
	for i := range t.NumField() {
		f := t.Field(i)
		name, opts, _ := strings.Cut(f.Tag.Get("db"), ",")
		if name == "-" {
			continue
		}
		idx := append(slices.Clone(index), i)
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer && f.IsExported() {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFields(ft, idx, m)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = naming.Snake(f.Name)
		}
		sf := structField{index: idx, column: name}
		for _, o := range strings.Split(opts, ",") {
			switch o {
			case "json", "msgpack":
				sf.encoding = o
			}
		}
		m.fields = append(m.fields, sf)
		m.columns = append(m.columns, name)
	}
}

// tableOf resolves the table name from a TableName method with a value or
// pointer receiver, falling back to the type's default.
func tableOf(v any, rv reflect.Value, meta *structMeta) string {
	if t, ok := v.(tabler); ok {
		return t.TableName()
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	if t, ok := p.Interface().(tabler); ok {
		return t.TableName()
	}
	return meta.table
}
