// Package session keeps analyzed tables per client so detail lookups read
// the table that produced the page being viewed.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finstat/internal/report"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is the result of one upload.
type Session struct {
	ID        uuid.UUID
	Table     *report.Table
	Stats     report.Stats
	Charts    report.ChartSet
	Months    []string
	CreatedAt time.Time
}

//go:generate mockgen -source=session.go -destination=repository_mock.go -package=session
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
