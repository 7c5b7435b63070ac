package view

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/export"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateExporting
	exportStateResult
)

type exportKind string

const (
	exportArchive exportKind = "archive"
	exportSummary exportKind = "summary"
)

// exportInput is shared with the form, which keeps pointers into it across
// model copies.
type exportInput struct {
	path string
	kind exportKind
}

type ExportModel struct {
	CommonModel
	exportService *export.Service
	res           *analysis.Result

	state   exportState
	err     error
	form    *huh.Form
	input   *exportInput
	spinner spinner.Model
	written string
}

func NewExportModel(svc *export.Service, res *analysis.Result) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := ExportModel{
		exportService: svc,
		res:           res,
		input:         &exportInput{path: "./exports", kind: exportArchive},
		spinner:       s,
	}
	m.form = buildExportForm(m.input)

	return m
}

func (m ExportModel) Title() string { return "Export Report" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.state != exportStateExporting {
		return m, Back
	}

	switch m.state {
	case exportStateForm:
		return m.updateForm(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	}

	return m, nil
}

func (m ExportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.input.path, m.input.kind))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		m.err = result.err
		m.written = result.path

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func buildExportForm(in *exportInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[exportKind]().
				Title("What to export").
				Options(
					huh.NewOption("Charts and summary (.zip)", exportArchive),
					huh.NewOption("Summary only (.txt)", exportSummary),
				).
				Value(&in.kind),
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&in.path),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateForm:
		return paneStyle.Render(m.form.View())

	case exportStateExporting:
		return paneStyle.Render(fmt.Sprintf("%s Writing export...", m.spinner.View()))

	case exportStateResult:
		if m.err != nil {
			return paneStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			successStyle.Render("Export Complete!"),
			"",
			"Written to "+m.written,
			"",
			m.exportService.Summary(m.res),
		))
	}

	return ""
}

type exportResultMsg struct {
	path string
	err  error
}

func (m ExportModel) runExportCmd(dir string, kind exportKind) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: err}
		}

		if kind == exportSummary {
			path := filepath.Join(dir, export.SummaryFile)
			err := os.WriteFile(path, []byte(m.exportService.Summary(m.res)), 0o644)

			return exportResultMsg{path: path, err: err}
		}

		path := filepath.Join(dir, fmt.Sprintf("charts_%s.zip", time.Now().Format("20060102")))

		f, err := os.Create(path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := m.exportService.Archive(f, m.res); err != nil {
			f.Close()
			return exportResultMsg{err: err}
		}

		return exportResultMsg{path: path, err: f.Close()}
	}
}
