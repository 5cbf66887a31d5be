package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	problem          TEXT NOT NULL DEFAULT '',
	parallelism      TEXT NOT NULL DEFAULT '',
	incremental      INTEGER NOT NULL DEFAULT 1,
	started_at_unix  INTEGER NOT NULL DEFAULT 0,
	total_steps      INTEGER NOT NULL DEFAULT 0,
	total_elapsed_ns INTEGER NOT NULL DEFAULT 0,
	variables        INTEGER NOT NULL DEFAULT 0,
	clauses          INTEGER NOT NULL DEFAULT 0,
	mutexes          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS steps (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	length     INTEGER NOT NULL,
	outcome    TEXT NOT NULL,
	elapsed_ns INTEGER NOT NULL DEFAULT 0,
	variables  INTEGER NOT NULL DEFAULT 0,
	clauses    INTEGER NOT NULL DEFAULT 0,
	mutexes    INTEGER NOT NULL DEFAULT 0,
	UNIQUE(run_id, length)
);
CREATE INDEX IF NOT EXISTS idx_steps_run ON steps(run_id, length);
`

// Store is a sqlite database of planning runs.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the sqlite store at path.
func OpenStore(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(context.Background(), schemaV1); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a run and its steps, replacing any run with the same ID.
func (s *Store) Save(ctx context.Context, st *Statistics) error {
	if st.RunID == "" {
		return errors.New("statistics have no run ID")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM steps WHERE run_id = ?`, st.RunID); err != nil {
		return errors.Wrap(err, "clear steps")
	}
	const run = `INSERT OR REPLACE INTO runs (run_id, problem, parallelism, incremental, started_at_unix, total_steps, total_elapsed_ns, variables, clauses, mutexes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, run,
		st.RunID,
		st.Problem,
		st.Parallelism,
		st.Incremental,
		st.Started.Unix(),
		st.Total.Steps,
		int64(st.Total.Elapsed),
		st.Total.Variables,
		st.Total.Clauses,
		st.Total.Mutexes,
	)
	if err != nil {
		return errors.Wrap(err, "insert run")
	}
	const step = `INSERT INTO steps (run_id, length, outcome, elapsed_ns, variables, clauses, mutexes)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, p := range st.Steps {
		if _, err := tx.ExecContext(ctx, step, st.RunID, p.Length, p.Outcome, int64(p.Elapsed), p.Variables, p.Clauses, p.Mutexes); err != nil {
			return errors.Wrapf(err, "insert step %d", p.Length)
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// Load returns the run with the given ID.
func (s *Store) Load(ctx context.Context, runID string) (*Statistics, error) {
	const q = `SELECT run_id, problem, parallelism, incremental, started_at_unix FROM runs WHERE run_id = ?`
	return s.load(ctx, s.db.QueryRowContext(ctx, q, runID))
}

// Latest returns the most recently started run.
func (s *Store) Latest(ctx context.Context) (*Statistics, error) {
	const q = `SELECT run_id, problem, parallelism, incremental, started_at_unix FROM runs ORDER BY started_at_unix DESC, rowid DESC LIMIT 1`
	return s.load(ctx, s.db.QueryRowContext(ctx, q))
}

func (s *Store) load(ctx context.Context, row *sql.Row) (*Statistics, error) {
	var st Statistics
	var started int64
	if err := row.Scan(&st.RunID, &st.Problem, &st.Parallelism, &st.Incremental, &started); err != nil {
		return nil, errors.Wrap(err, "scan run")
	}
	st.Started = time.Unix(started, 0)

	const q = `SELECT length, outcome, elapsed_ns, variables, clauses, mutexes
FROM steps
WHERE run_id = ?
ORDER BY length ASC`
	rows, err := s.db.QueryContext(ctx, q, st.RunID)
	if err != nil {
		return nil, errors.Wrap(err, "list steps")
	}
	defer rows.Close()
	for rows.Next() {
		var p Step
		var elapsed int64
		if err := rows.Scan(&p.Length, &p.Outcome, &elapsed, &p.Variables, &p.Clauses, &p.Mutexes); err != nil {
			return nil, errors.Wrap(err, "scan step")
		}
		p.Elapsed = time.Duration(elapsed)
		if err := st.Append(p); err != nil {
			return nil, err
		}
	}
	return &st, rows.Err()
}
