package http_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/export"
	"github.com/MrJamesThe3rd/finstat/internal/graph"
	finstatHttp "github.com/MrJamesThe3rd/finstat/internal/http"
	"github.com/MrJamesThe3rd/finstat/internal/http/api"
	"github.com/MrJamesThe3rd/finstat/internal/http/httpx"
	"github.com/MrJamesThe3rd/finstat/internal/http/page"
	"github.com/MrJamesThe3rd/finstat/internal/session"
	"github.com/MrJamesThe3rd/finstat/internal/session/memory"
	"github.com/MrJamesThe3rd/finstat/internal/sheet"
	"github.com/MrJamesThe3rd/finstat/internal/web"
)

const sampleCSV = "Month,Income,Expense\nJan,1000,500\nFeb,1500,300\nMar,800,900\n"

func newServer(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	graphDir := filepath.Join(dir, "graphs")

	tokens, err := session.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	pages, err := web.New()
	require.NoError(t, err)

	renderer := graph.NewRenderer(graphDir, "graphs")
	svc := analysis.NewService(sheet.NewLoader(""), renderer, memory.New(8, time.Hour), filepath.Join(dir, "upload")).
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })
	cookies := httpx.NewSessions(tokens)

	return finstatHttp.New(
		page.NewHandler(svc, cookies, pages, 1<<20),
		api.NewHandler(svc, export.NewService(renderer.Files), cookies, 1<<20),
		graphDir,
		[]string{"*"},
	)
}

func multipartBody(t *testing.T, filename, content, selected string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if selected != "" {
		require.NoError(t, mw.WriteField("selected_graph", selected))
	}

	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, srv http.Handler, target, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, filename, content, "bar")
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	return rec
}

func get(srv http.Handler, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	return rec
}

func TestPages_UploadAndDetails(t *testing.T) {
	srv := newServer(t)

	rec := upload(t, srv, "/", "budget.csv", sampleCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, "1100.00")
	assert.Contains(t, body, "566.67")
	assert.Contains(t, body, "/graphs/bar.png")
	assert.Contains(t, body, "February 2025")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = get(srv, "/details/February%202025", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1500.00")
	assert.Contains(t, rec.Body.String(), "300.00")

	rec = get(srv, "/details/July%202025", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "N/A")

	rec = get(srv, "/graphs/line.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	rec = get(srv, "/results?selected_graph=pie", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/graphs/pie.png")
}

func TestPages_Errors(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name     string
		filename string
		content  string
		want     int
	}{
		{name: "missing column", filename: "bad.csv", content: "Month,Income\nJan,1\n", want: http.StatusBadRequest},
		{name: "bad month", filename: "bad.csv", content: "Month,Income,Expense\nSmarch,1,2\n", want: http.StatusBadRequest},
		{name: "no rows", filename: "empty.csv", content: "Month,Income,Expense\n", want: http.StatusUnprocessableEntity},
		{name: "no file chosen", filename: "", content: "", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, srv, "/", tt.filename, tt.content)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestPages_ResultsWithoutSessionRedirects(t *testing.T) {
	srv := newServer(t)

	rec := get(srv, "/results", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = get(srv, "/details/January%202025", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPages_SessionsAreIsolated(t *testing.T) {
	srv := newServer(t)

	first := upload(t, srv, "/", "a.csv", sampleCSV).Result().Cookies()
	second := upload(t, srv, "/", "b.csv", "Month,Income,Expense\nApr,10,20\n").Result().Cookies()

	rec := get(srv, "/details/February%202025", first)
	assert.Contains(t, rec.Body.String(), "1500.00")

	rec = get(srv, "/details/February%202025", second)
	assert.Contains(t, rec.Body.String(), "N/A")
}

func TestAPI_Reports(t *testing.T) {
	srv := newServer(t)

	rec := upload(t, srv, "/api/v1/reports/", "budget.csv", sampleCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var created struct {
		SessionID string `json:"session_id"`
		Stats     struct {
			HighestIncomeMonth string `json:"highest_income_month"`
			AverageIncome      string `json:"average_income"`
			AverageExpense     string `json:"average_expense"`
		} `json:"stats"`
		Charts map[string]string `json:"charts"`
		Months []string          `json:"months"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	assert.NotEmpty(t, created.SessionID)
	assert.Equal(t, "Feb", created.Stats.HighestIncomeMonth)
	assert.Equal(t, "1100.00", created.Stats.AverageIncome)
	assert.Equal(t, "566.67", created.Stats.AverageExpense)
	assert.Equal(t, "graphs/hist.png", created.Charts["hist"])
	assert.Equal(t, []string{"January 2025", "February 2025", "March 2025"}, created.Months)

	cookies := rec.Result().Cookies()

	rec = get(srv, "/api/v1/reports/", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.SessionID)

	var detail map[string]any

	rec = get(srv, "/api/v1/reports/details/february%202025", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.Equal(t, 1500.0, detail["income"])
	assert.Equal(t, true, detail["available"])

	rec = get(srv, "/api/v1/reports/details/December%202025", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.Equal(t, "N/A", detail["income"])
	assert.Equal(t, "N/A", detail["expense"])
	assert.Equal(t, false, detail["available"])

	rec = get(srv, "/api/v1/reports/details/Smarch", cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ChartsArchive(t *testing.T) {
	srv := newServer(t)

	cookies := upload(t, srv, "/api/v1/reports/", "budget.csv", sampleCSV).Result().Cookies()

	rec := get(srv, "/api/v1/reports/charts.zip", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.ElementsMatch(t, []string{"line.png", "bar.png", "pie.png", "hist.png", export.SummaryFile}, names)
}

func TestAPI_Errors(t *testing.T) {
	srv := newServer(t)

	rec := get(srv, "/api/v1/reports/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	rec = upload(t, srv, "/api/v1/reports/", "empty.csv", "Month,Income,Expense\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body["error"], "table has no rows")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPages_ReuploadDiscardsPreviousSession(t *testing.T) {
	srv := newServer(t)

	first := upload(t, srv, "/", "a.csv", sampleCSV).Result().Cookies()
	require.NotEmpty(t, first)

	body, contentType := multipartBody(t, "b.csv", "Month,Income,Expense\nApr,10,20\n", "")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	for _, c := range first {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	second := rec.Result().Cookies()
	require.NotEmpty(t, second)

	assert.Equal(t, http.StatusNotFound, get(srv, "/details/February%202025", first).Code)
	assert.Equal(t, http.StatusOK, get(srv, "/details/April%202025", second).Code)
}

func TestAPI_OverflowingAmountsAreRejected(t *testing.T) {
	srv := newServer(t)

	rec := upload(t, srv, "/api/v1/reports/", "huge.csv", "Month,Income,Expense\nJan,1e400,500\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = upload(t, srv, "/api/v1/reports/", "huge.csv", "Month,Income,Expense\nJan,1.7e308,1\nFeb,1.7e308,2\n")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}
