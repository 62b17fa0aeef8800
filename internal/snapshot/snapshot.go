// Package snapshot caches the last printer enumeration in a sqlite file so
// that list positions stay stable between invocations.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"paperjet/internal/printing"
)

// DefaultTTL is how long a snapshot is served before it is ignored.
const DefaultTTL = 120 * time.Second

type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func Open(ctx context.Context, path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, ttl: ttl, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) WithTx(ctx context.Context, readOnly bool, fn func(tx *sql.Tx) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("snapshot store not initialized")
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) migrate(ctx context.Context) error {
	return s.WithTx(ctx, false, func(tx *sql.Tx) error {
		stmts := []string{
			`CREATE TABLE IF NOT EXISTS snapshots (
                server TEXT PRIMARY KEY,
                saved_at INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS snapshot_printers (
                server TEXT NOT NULL REFERENCES snapshots(server) ON DELETE CASCADE,
                position INTEGER NOT NULL,
                identifier TEXT NOT NULL,
                name TEXT NOT NULL,
                instance TEXT NOT NULL DEFAULT '',
                is_default INTEGER NOT NULL DEFAULT 0,
                options TEXT NOT NULL DEFAULT '{}',
                PRIMARY KEY (server, position)
			)`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// Save replaces the snapshot for server with printers, keeping their order.
func (s *Store) Save(ctx context.Context, server string, printers []printing.Printer) error {
	return s.WithTx(ctx, false, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE server = ?`, server); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO snapshots (server, saved_at) VALUES (?, ?)`, server, s.now().UnixNano()); err != nil {
			return err
		}
		for i, p := range printers {
			opts, err := json.Marshal(p.Options)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO snapshot_printers (server, position, identifier, name, instance, is_default, options)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				server, i, p.Identifier, p.Name, p.Instance, boolToInt(p.IsDefault), string(opts)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load returns the printers saved for server. ok is false when there is no
// snapshot for server or it is older than the TTL.
func (s *Store) Load(ctx context.Context, server string) (printers []printing.Printer, ok bool, err error) {
	err = s.WithTx(ctx, true, func(tx *sql.Tx) error {
		var savedAt int64
		err := tx.QueryRowContext(ctx, `SELECT saved_at FROM snapshots WHERE server = ?`, server).Scan(&savedAt)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if s.now().Sub(time.Unix(0, savedAt)) > s.ttl {
			return nil
		}
		rows, err := tx.QueryContext(ctx,
			`SELECT identifier, name, instance, is_default, options
             FROM snapshot_printers WHERE server = ? ORDER BY position`, server)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p printing.Printer
			var isDefault int
			var opts string
			if err := rows.Scan(&p.Identifier, &p.Name, &p.Instance, &isDefault, &opts); err != nil {
				return err
			}
			p.IsDefault = isDefault != 0
			p.Options = map[string]string{}
			if err := json.Unmarshal([]byte(opts), &p.Options); err != nil {
				return err
			}
			printers = append(printers, p)
		}
		ok = true
		return rows.Err()
	})
	if err != nil {
		return nil, false, err
	}
	return printers, ok, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
