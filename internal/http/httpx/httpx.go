// Package httpx holds request helpers shared by the HTML and JSON handlers.
package httpx

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/month"
	"github.com/MrJamesThe3rd/finstat/internal/report"
	"github.com/MrJamesThe3rd/finstat/internal/session"
	"github.com/MrJamesThe3rd/finstat/internal/sheet"
)

var (
	ErrNoFile       = errors.New("No file uploaded")
	ErrNoFileChosen = errors.New("No file selected")
)

// StatusFor maps pipeline errors to HTTP status codes.
func StatusFor(err error) int {
	var (
		tooLarge    *http.MaxBytesError
		analysisErr *report.AnalysisError
	)

	switch {
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrNoFileChosen):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sheet.ErrLoad), errors.Is(err, month.ErrParse):
		return http.StatusBadRequest
	case errors.As(err, &analysisErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrSessionNotFound):
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}

// Message returns the text shown to the client for err. Unexpected failures
// are reported as "An error occurred" followed by the cause.
func Message(err error) string {
	if StatusFor(err) == http.StatusInternalServerError {
		return "An error occurred: " + err.Error()
	}

	return err.Error()
}

// Upload is a parsed multipart upload.
type Upload struct {
	File     multipart.File
	Name     string
	Selected report.ChartKind
}

// ParseUpload reads the "file" and "selected_graph" fields of a multipart
// request limited to maxBytes.
func ParseUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (*Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}

		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrNoFile
		}

		return nil, err
	}

	selected := report.ParseChartKind(r.FormValue("selected_graph"))

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, ErrNoFile
	}

	if header.Filename == "" {
		file.Close()
		return nil, ErrNoFileChosen
	}

	return &Upload{File: file, Name: header.Filename, Selected: selected}, nil
}

// MonthParam returns the decoded {month} URL parameter.
func MonthParam(r *http.Request) string {
	raw := chi.URLParam(r, "month")

	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}

	return raw
}

// Sessions reads and writes the session cookie.
type Sessions struct {
	tokens *session.Tokens
}

func NewSessions(tokens *session.Tokens) *Sessions {
	return &Sessions{tokens: tokens}
}

// Set issues a cookie for id.
func (s *Sessions) Set(w http.ResponseWriter, r *http.Request, id uuid.UUID) error {
	token, err := s.tokens.Sign(id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.tokens.TTL()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// ID returns the session id carried by the request. A missing or invalid
// cookie yields analysis.ErrSessionNotFound.
func (s *Sessions) ID(r *http.Request) (uuid.UUID, error) {
	c, err := r.Cookie(session.CookieName)
	if err != nil {
		return uuid.Nil, analysis.ErrSessionNotFound
	}

	id, err := s.tokens.Parse(c.Value)
	if err != nil {
		return uuid.Nil, analysis.ErrSessionNotFound
	}

	return id, nil
}
