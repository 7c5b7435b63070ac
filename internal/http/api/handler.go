package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/export"
	"github.com/MrJamesThe3rd/finstat/internal/http/httpx"
	"github.com/MrJamesThe3rd/finstat/internal/report"
)

type Handler struct {
	svc      *analysis.Service
	exporter *export.Service
	sessions *httpx.Sessions
	maxBytes int64
}

func NewHandler(svc *analysis.Service, exporter *export.Service, sessions *httpx.Sessions, maxBytes int64) *Handler {
	return &Handler{
		svc:      svc,
		exporter: exporter,
		sessions: sessions,
		maxBytes: maxBytes,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Get("/", h.current)
	r.Get("/details/{month}", h.details)
	r.Get("/charts.zip", h.download)
}

type statsResponse struct {
	HighestIncomeMonth  string `json:"highest_income_month"`
	LowestIncomeMonth   string `json:"lowest_income_month"`
	HighestExpenseMonth string `json:"highest_expense_month"`
	LowestExpenseMonth  string `json:"lowest_expense_month"`
	AverageIncome       string `json:"average_income"`
	AverageExpense      string `json:"average_expense"`
}

type reportResponse struct {
	SessionID uuid.UUID        `json:"session_id"`
	Selected  report.ChartKind `json:"selected_graph,omitempty"`
	Stats     statsResponse    `json:"stats"`
	Charts    report.ChartSet  `json:"charts"`
	Months    []string         `json:"months"`
	Totals    report.Totals    `json:"totals"`
}

// detailResponse carries "N/A" in Income and Expense when the month is not
// in the table.
type detailResponse struct {
	Month     string `json:"month"`
	Income    any    `json:"income"`
	Expense   any    `json:"expense"`
	Available bool   `json:"available"`
}

type errorResponse struct {
	Error string `json:"error"`
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

	resp := toReportResponse(res)
	resp.Selected = up.Selected

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	res, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(res))
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.ID(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	label := httpx.MonthParam(r)

	d, err := h.svc.Details(r.Context(), id, label)
	if err != nil {
		h.fail(w, err)
		return
	}

	resp := detailResponse{Month: label, Income: "N/A", Expense: "N/A", Available: d.Available}
	if d.Available {
		resp.Income = d.Income
		resp.Expense = d.Expense
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	res, ok := h.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"charts_%s.zip\"", time.Now().Format("20060102")))

	if err := h.exporter.Archive(w, res); err != nil {
		slog.ErrorContext(r.Context(), "failed to create zip", "session", res.SessionID, "error", err)
	}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*analysis.Result, bool) {
	id, err := h.sessions.ID(r)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}

	res, err := h.svc.Session(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return nil, false
	}

	return res, true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := httpx.StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: httpx.Message(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toReportResponse(res *analysis.Result) reportResponse {
	return reportResponse{
		SessionID: res.SessionID,
		Stats: statsResponse{
			HighestIncomeMonth:  res.Stats.HighestIncomeMonth,
			LowestIncomeMonth:   res.Stats.LowestIncomeMonth,
			HighestExpenseMonth: res.Stats.HighestExpenseMonth,
			LowestExpenseMonth:  res.Stats.LowestExpenseMonth,
			AverageIncome:       res.Stats.FormattedAverageIncome(),
			AverageExpense:      res.Stats.FormattedAverageExpense(),
		},
		Charts: res.Charts,
		Months: res.Months,
		Totals: res.Totals,
	}
}
