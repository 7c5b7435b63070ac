package page

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/http/httpx"
	"github.com/MrJamesThe3rd/finstat/internal/report"
	"github.com/MrJamesThe3rd/finstat/internal/web"
)

const notAvailable = "N/A"

type Handler struct {
	svc      *analysis.Service
	sessions *httpx.Sessions
	pages    *web.Renderer
	maxBytes int64
}

func NewHandler(svc *analysis.Service, sessions *httpx.Sessions, pages *web.Renderer, maxBytes int64) *Handler {
	return &Handler{
		svc:      svc,
		sessions: sessions,
		pages:    pages,
		maxBytes: maxBytes,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.index)
	r.Post("/", h.upload)
	r.Get("/results", h.results)
	r.Get("/details/{month}", h.details)
}

type indexPage struct {
	Title string
	Error string
}

type resultsPage struct {
	Title    string
	Stats    report.Stats
	Charts   report.ChartSet
	Months   []string
	Totals   report.Totals
	Selected report.ChartKind
	Version  string
}

type detailsPage struct {
	Title     string
	Month     string
	Income    string
	Expense   string
	Available bool
	Error     string
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	h.pages.Render(w, http.StatusOK, "index.html", indexPage{Title: "Upload"})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	up, err := httpx.ParseUpload(w, r, h.maxBytes)
	if err != nil {
		h.fail(w, err)
		return
	}
	defer up.File.Close()

	res, err := h.svc.Process(r.Context(), analysis.Upload{Name: up.Name, Reader: up.File})
	if err != nil {
		h.fail(w, err)
		return
	}

	if err := h.sessions.Set(w, r, res.SessionID); err != nil {
		h.fail(w, err)
		return
	}

	if prev, err := h.sessions.ID(r); err == nil && prev != res.SessionID {
		if err := h.svc.Discard(r.Context(), prev); err != nil {
			slog.WarnContext(r.Context(), "failed to discard previous session", "session", prev, "error", err)
		}
	}

	h.pages.Render(w, http.StatusOK, "results.html", toResultsPage(res, up.Selected))
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.ID(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	res, err := h.svc.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, analysis.ErrSessionNotFound) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		h.fail(w, err)

		return
	}

	selected := report.ParseChartKind(r.URL.Query().Get("selected_graph"))
	h.pages.Render(w, http.StatusOK, "results.html", toResultsPage(res, selected))
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	label := httpx.MonthParam(r)
	page := detailsPage{Title: label, Month: label}

	id, err := h.sessions.ID(r)
	if err != nil {
		page.Error = err.Error()
		h.pages.Render(w, httpx.StatusFor(err), "month_details.html", page)

		return
	}

	d, err := h.svc.Details(r.Context(), id, label)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "failed to look up month", "month", label, "error", err)
		}

		page.Error = httpx.Message(err)
		h.pages.Render(w, httpx.StatusFor(err), "month_details.html", page)

		return
	}

	page.Available = d.Available
	page.Income, page.Expense = notAvailable, notAvailable

	if d.Available {
		page.Income = report.FormatAmount(d.Income)
		page.Expense = report.FormatAmount(d.Expense)
	}

	h.pages.Render(w, http.StatusOK, "month_details.html", page)
}

// fail reports a pipeline error as plain text with a matching status.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("failed to process upload", "error", err)
	}

	http.Error(w, httpx.Message(err), status)
}

func toResultsPage(res *analysis.Result, selected report.ChartKind) resultsPage {
	return resultsPage{
		Title:    "Results",
		Stats:    res.Stats,
		Charts:   res.Charts,
		Months:   res.Months,
		Totals:   res.Totals,
		Selected: selected,
		Version:  res.SessionID.String(),
	}
}
