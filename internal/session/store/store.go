package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MrJamesThe3rd/finstat/internal/report"
	"github.com/MrJamesThe3rd/finstat/internal/session"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// payload is the JSONB document stored per session.
type payload struct {
	Table  *report.Table   `json:"table"`
	Stats  report.Stats    `json:"stats"`
	Charts report.ChartSet `json:"charts"`
	Months []string        `json:"months"`
}

type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func New(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

// Migrate brings the session schema up to date. It uses its own connection
// because closing a migrate instance closes the database it runs on.
func Migrate(connStr string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("create pgx driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	doc, err := json.Marshal(payload{
		Table:  sess.Table,
		Stats:  sess.Stats,
		Charts: sess.Charts,
		Months: sess.Months,
	})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	query := `
		INSERT INTO report_sessions (id, payload, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`

	_, err = s.db.ExecContext(ctx, query, sess.ID, doc, sess.CreatedAt, sess.CreatedAt.Add(s.ttl))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	query := `
		SELECT payload, created_at
		FROM report_sessions
		WHERE id = $1 AND expires_at > NOW()
	`

	var (
		doc  []byte
		sess = session.Session{ID: id}
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}

		return nil, fmt.Errorf("getting session: %w", err)
	}

	var p payload
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}

	sess.Table = p.Table
	sess.Stats = p.Stats
	sess.Charts = p.Charts
	sess.Months = p.Months

	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM report_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}

// Purge removes expired sessions and reports how many were dropped.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM report_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}

	return res.RowsAffected()
}
