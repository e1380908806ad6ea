package usage

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/zerr"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const poolSize = 4

const schema = `
CREATE TABLE IF NOT EXISTS daily_users (
	package_id TEXT NOT NULL,
	day        TEXT NOT NULL,
	user_hash  TEXT NOT NULL,
	weight     INTEGER NOT NULL,
	PRIMARY KEY (package_id, day, user_hash)
);
CREATE TABLE IF NOT EXISTS daily_totals (
	package_id TEXT NOT NULL,
	day        TEXT NOT NULL,
	total      INTEGER NOT NULL,
	PRIMARY KEY (package_id, day)
);
CREATE TABLE IF NOT EXISTS package_totals (
	package_id TEXT PRIMARY KEY,
	total      INTEGER NOT NULL
);
`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

// SQLiteStore keeps accounting in a SQLite database.
type SQLiteStore struct {
	pool *sqlitex.Pool
}

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrUsageStoreFailed.Error()), "path", path)
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrUsageStoreFailed.Error()), "path", path)
	}
	return &SQLiteStore{pool: pool}, nil
}

func prepareConn(conn *sqlite.Conn) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return zerr.With(err, "pragma", pragma)
		}
	}
	return sqlitex.ExecuteScript(conn, schema, nil)
}

// AddIfAbsent implements ports.UsageStore. The check and both increments run in one
// IMMEDIATE transaction.
func (s *SQLiteStore) AddIfAbsent(ctx context.Context, entry domain.DownloadAccountingEntry) (added bool, err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn,
		"INSERT OR IGNORE INTO daily_users (package_id, day, user_hash, weight) VALUES (?, ?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{entry.PackageID, entry.Day, entry.UserHash, entry.Weight}},
	)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}
	if conn.Changes() == 0 {
		return false, nil
	}

	// Totals count users; the weight is only stored.
	err = sqlitex.Execute(conn,
		`INSERT INTO daily_totals (package_id, day, total) VALUES (?, ?, 1)
		 ON CONFLICT (package_id, day) DO UPDATE SET total = total + 1`,
		&sqlitex.ExecOptions{Args: []any{entry.PackageID, entry.Day}},
	)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}

	err = sqlitex.Execute(conn,
		`INSERT INTO package_totals (package_id, total) VALUES (?, 1)
		 ON CONFLICT (package_id) DO UPDATE SET total = total + 1`,
		&sqlitex.ExecOptions{Args: []any{entry.PackageID}},
	)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}

	return true, nil
}

// Daily implements ports.UsageStore.
func (s *SQLiteStore) Daily(ctx context.Context, packageID, day string) (*domain.DailyUsage, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}
	defer s.pool.Put(conn)

	doc := &domain.DailyUsage{PackageID: packageID, Day: day, Users: map[string]int{}}

	err = sqlitex.Execute(conn,
		"SELECT user_hash, weight FROM daily_users WHERE package_id = ? AND day = ?",
		&sqlitex.ExecOptions{
			Args: []any{packageID, day},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				doc.Users[stmt.ColumnText(0)] = stmt.ColumnInt(1)
				return nil
			},
		},
	)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}

	err = sqlitex.Execute(conn,
		"SELECT total FROM daily_totals WHERE package_id = ? AND day = ?",
		&sqlitex.ExecOptions{
			Args: []any{packageID, day},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				doc.Total = stmt.ColumnInt64(0)
				return nil
			},
		},
	)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}

	return doc, nil
}

// Total implements ports.UsageStore.
func (s *SQLiteStore) Total(ctx context.Context, packageID string) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}
	defer s.pool.Put(conn)

	var total int64
	err = sqlitex.Execute(conn,
		"SELECT total FROM package_totals WHERE package_id = ?",
		&sqlitex.ExecOptions{
			Args: []any{packageID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				total = stmt.ColumnInt64(0)
				return nil
			},
		},
	)
	if err != nil {
		return 0, zerr.Wrap(err, domain.ErrUsageStoreFailed.Error())
	}
	return total, nil
}

// Close closes every pooled connection.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}
