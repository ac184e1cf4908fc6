package store

import (
	"context"
	"database/sql"
)

// postgresSchema creates the single table backing PostgresStore. A NULL
// funfacts column is the "field unset" state.
const postgresSchema = `
create table if not exists states (
    state_code text primary key,
    funfacts   text[]
)`

func EnsureSchema(ctx context.Context, db *sql.DB, schema string) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
