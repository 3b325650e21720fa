package valid

import "time"

//sqlxplus:insertable sqlite user
type UserInsert struct {
	Name      string    `db:"name"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"created_at"`
}

// Event is stored in postgres.
//
//sqlxplus:insertable postgres events
type Event struct {
	ID       int64
	Payload  map[string]any    `db:"payload,json"`
	Labels   map[string]string `db:"labels,msgpack"`
	internal string
	Skipped  bool `db:"-"`
}

// User is not insertable.
type User struct {
	ID   int64
	Name string
}
