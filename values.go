package sqlxplus

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoded is a column value stored in an encoded form. It is bound as a
// driver.Valuer and, when V is a pointer, scanned back with Scan.
type Encoded struct {
	V      any
	format string
}

// JSON encodes v as a JSON text column.
//
//	sqlxplus.NewQuery("INSERT INTO events (payload) VALUES (?)").Bind(sqlxplus.JSON(payload))
//	row.Scan(sqlxplus.JSON(&payload))
func JSON(v any) *Encoded { return &Encoded{V: v, format: "json"} }

// Msgpack encodes v as a MessagePack blob column.
func Msgpack(v any) *Encoded { return &Encoded{V: v, format: "msgpack"} }

// Value implements driver.Valuer.
func (e *Encoded) Value() (driver.Value, error) {
	switch e.format {
	case "json":
		b, err := json.Marshal(e.V)
		if err != nil {
			return nil, fmt.Errorf("sqlxplus: encode json: %w", err)
		}
		return string(b), nil
	case "msgpack":
		b, err := msgpack.Marshal(e.V)
		if err != nil {
			return nil, fmt.Errorf("sqlxplus: encode msgpack: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("sqlxplus: unknown encoding %q", e.format)
	}
}

// Scan implements sql.Scanner. NULL leaves V untouched.
func (e *Encoded) Scan(src any) error {
	var b []byte
	switch src := src.(type) {
	case nil:
		return nil
	case []byte:
		b = src
	case string:
		b = []byte(src)
	default:
		return fmt.Errorf("sqlxplus: cannot scan %T into %s column", src, e.format)
	}
	switch e.format {
	case "json":
		if err := json.Unmarshal(b, e.V); err != nil {
			return fmt.Errorf("sqlxplus: decode json: %w", err)
		}
	case "msgpack":
		if err := msgpack.Unmarshal(b, e.V); err != nil {
			return fmt.Errorf("sqlxplus: decode msgpack: %w", err)
		}
	default:
		return fmt.Errorf("sqlxplus: unknown encoding %q", e.format)
	}
	return nil
}
