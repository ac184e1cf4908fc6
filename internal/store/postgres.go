package store

import (
	"context"
	"database/sql"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/lib/pq"
)

var postgresLogger = loggo.GetLogger("statesapi.store.postgres")

type PostgresStore struct {
	db *sql.DB
}

// OpenPostgresStore connects with lib/pq and ensures the schema exists.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Annotate(err, "opening postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Annotate(err, "connecting to postgres")
	}
	s, err := NewPostgresStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, errors.Trace(err)
	}
	return s, nil
}

func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if err := EnsureSchema(ctx, db, postgresSchema); err != nil {
		return nil, errors.Annotate(err, "ensuring states schema")
	}
	postgresLogger.Infof("states schema ensured")
	return &PostgresStore{db: db}, nil
}

var _ Store = (*PostgresStore)(nil)

func (p *PostgresStore) FindAll(ctx context.Context) ([]StateRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
        select state_code, funfacts from states order by state_code
    `)
	if err != nil {
		return nil, errors.Annotate(err, "reading state records")
	}
	defer rows.Close()
	out := []StateRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return out, nil
}

func (p *PostgresStore) FindOne(ctx context.Context, code string) (StateRecord, error) {
	code = normalizeCode(code)
	row := p.db.QueryRowContext(ctx, `
        select state_code, funfacts from states where state_code=$1
    `, code)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StateRecord{}, notFound(code)
	} else if err != nil {
		return StateRecord{}, errors.Annotatef(err, "reading state record %q", code)
	}
	return r, nil
}

func (p *PostgresStore) SetFunFacts(ctx context.Context, code string, facts []string) (StateRecord, error) {
	postgresLogger.Debugf("setting %d fun facts for %s", len(facts), code)
	return p.upsert(ctx, code, pq.StringArray(copyFacts(facts)))
}

func (p *PostgresStore) UnsetFunFacts(ctx context.Context, code string) (StateRecord, error) {
	postgresLogger.Debugf("unsetting fun facts for %s", code)
	// A nil StringArray is written as NULL.
	return p.upsert(ctx, code, pq.StringArray(nil))
}

func (p *PostgresStore) upsert(ctx context.Context, code string, facts pq.StringArray) (StateRecord, error) {
	code = normalizeCode(code)
	row := p.db.QueryRowContext(ctx, `
        insert into states (state_code, funfacts)
        values ($1, $2)
        on conflict (state_code) do update set funfacts=excluded.funfacts
        returning state_code, funfacts
    `, code, facts)
	r, err := scanRecord(row)
	if err != nil {
		return StateRecord{}, errors.Annotatef(err, "updating state record %q", code)
	}
	return r, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (StateRecord, error) {
	var (
		r     StateRecord
		facts pq.StringArray
	)
	if err := row.Scan(&r.StateCode, &facts); err != nil {
		return StateRecord{}, err
	}
	if facts != nil {
		r.FunFacts = []string(facts)
	}
	return r, nil
}
