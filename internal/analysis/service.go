// Package analysis runs the load, analyze and render pipeline for an upload
// and answers detail queries against the resulting session.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finstat/internal/month"
	"github.com/MrJamesThe3rd/finstat/internal/report"
	"github.com/MrJamesThe3rd/finstat/internal/session"
)

// ErrSessionNotFound is returned when a detail query names no live session.
var ErrSessionNotFound = errors.New("no analyzed upload for this session")

// Loader turns a saved upload into a table.
type Loader interface {
	Load(path string) (*report.Table, error)
}

// Renderer draws the charts for an analyzed table.
type Renderer interface {
	Render(t *report.Table, stats report.Stats) (report.ChartSet, error)
}

// Upload is a spreadsheet received from a client.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Result is everything produced for one upload.
type Result struct {
	SessionID uuid.UUID
	Table     *report.Table
	Stats     report.Stats
	Charts    report.ChartSet
	Months    []string
	Totals    report.Totals
}

// Detail is a single month's figures. Available is false when the month is
// not in the table.
type Detail struct {
	Label     string
	Month     time.Month
	Income    float64
	Expense   float64
	Available bool
}

type Service struct {
	loader    Loader
	renderer  Renderer
	sessions  session.Repository
	uploadDir string
	now       func() time.Time
}

func NewService(loader Loader, renderer Renderer, sessions session.Repository, uploadDir string) *Service {
	return &Service{
		loader:    loader,
		renderer:  renderer,
		sessions:  sessions,
		uploadDir: uploadDir,
		now:       time.Now,
	}
}

// WithClock overrides the time source used for display labels.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Process saves, loads, analyzes and renders an upload, then stores a new
// session for it. Nothing is stored unless every step succeeds.
func (s *Service) Process(ctx context.Context, up Upload) (*Result, error) {
	path, err := s.save(up)
	if err != nil {
		return nil, err
	}

	table, err := s.loader.Load(path)
	if err != nil {
		return nil, err
	}

	months, err := month.Labels(table, s.now())
	if err != nil {
		return nil, err
	}

	stats, err := report.Analyze(table)
	if err != nil {
		return nil, err
	}

	charts, err := s.renderer.Render(table, stats)
	if err != nil {
		return nil, fmt.Errorf("rendering charts: %w", err)
	}

	sess := &session.Session{
		ID:        uuid.New(),
		Table:     table,
		Stats:     stats,
		Charts:    charts,
		Months:    months,
		CreatedAt: s.now(),
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	slog.InfoContext(ctx, "upload analyzed",
		"session", sess.ID, "file", filepath.Base(path), "rows", table.Len(),
		"avg_income", stats.FormattedAverageIncome(), "avg_expense", stats.FormattedAverageExpense())

	return toResult(sess), nil
}

// Session returns the stored result for id.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (*Result, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("loading session: %w", err)
	}

	return toResult(sess), nil
}

// Discard drops a session that a newer upload replaced. A session that is
// already gone is not an error.
func (s *Service) Discard(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Delete(ctx, id); err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("discarding session %s: %w", id, err)
	}

	return nil
}

// Details looks up the month named by a display label in the session's
// table. A month missing from the table is not an error.
func (s *Service) Details(ctx context.Context, id uuid.UUID, label string) (Detail, error) {
	m, err := month.ParseLabel(label)
	if err != nil {
		return Detail{}, err
	}

	res, err := s.Session(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Label: label, Month: m}

	rec, ok := res.Table.Find(m, m.String(), month.Resolver())
	if !ok {
		return d, nil
	}

	d.Income = rec.Income
	d.Expense = rec.Expense
	d.Available = true

	return d, nil
}

func (s *Service) save(up Upload) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	path := filepath.Join(s.uploadDir, uuid.NewString()+"_"+sanitize(up.Name))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, up.Reader); err != nil {
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	return path, nil
}

// sanitize keeps the base name of an upload, replacing anything outside
// [A-Za-z0-9._-].
func sanitize(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	clean := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}

		return '_'
	}, base)

	if clean == "" || clean == "." || clean == ".." {
		return "upload"
	}

	return clean
}

func toResult(sess *session.Session) *Result {
	return &Result{
		SessionID: sess.ID,
		Table:     sess.Table,
		Stats:     sess.Stats,
		Charts:    sess.Charts,
		Months:    sess.Months,
		Totals:    sess.Table.Totals(),
	}
}
