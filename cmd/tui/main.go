package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finstat/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/config"
	"github.com/MrJamesThe3rd/finstat/internal/export"
	"github.com/MrJamesThe3rd/finstat/internal/graph"
	"github.com/MrJamesThe3rd/finstat/internal/logging"
	"github.com/MrJamesThe3rd/finstat/internal/session/memory"
	"github.com/MrJamesThe3rd/finstat/internal/sheet"
)

const logFile = "finstat-tui.log"

type model struct {
	analysisService *analysis.Service
	exportService   *export.Service

	currentView View
	result      *analysis.Result

	openView   view.OpenModel
	reportView view.ReportModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewOpen   View = 1
	ViewReport View = 2
	ViewExport View = 3
)

func initialModel(cfg *config.Config) model {
	// Charts are addressed by their on-disk path in the terminal.
	renderer := graph.NewRenderer(cfg.Storage.GraphDir, cfg.Storage.GraphDir)

	analysisSvc := analysis.NewService(
		sheet.NewLoader(cfg.Sheet.Name),
		renderer,
		memory.New(cfg.Session.MaxSize, cfg.Session.TTL),
		cfg.Storage.UploadDir,
	)

	return model{
		analysisService: analysisSvc,
		exportService:   export.NewService(renderer.Files),
		currentView:     ViewMenu,
		openView:        view.NewOpenModel(analysisSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewOpen
				m.openView = view.NewOpenModel(m.analysisService)

				return m, m.openView.Init()
			case "2":
				if m.result == nil {
					return m, nil
				}

				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.analysisService, m.result)

				return m, m.reportView.Init()
			case "3":
				if m.result == nil {
					return m, nil
				}

				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.result)

				return m, m.exportView.Init()
			}
		}
	case view.ReportLoadedMsg:
		if m.result != nil {
			ctx, cancel := view.OpCtx()
			if err := m.analysisService.Discard(ctx, m.result.SessionID); err != nil {
				slog.Warn("failed to discard previous session", "session", m.result.SessionID, "error", err)
			}
			cancel()
		}

		m.result = msg.Result
		m.currentView = ViewReport
		m.reportView = view.NewReportModel(m.analysisService, m.result)

		return m, m.reportView.Init()
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewOpen:
		var newModel tea.Model
		newModel, cmd = m.openView.Update(msg)
		m.openView = newModel.(view.OpenModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		loaded := "No spreadsheet loaded"
		if m.result != nil {
			loaded = fmt.Sprintf("Loaded: %d months", m.result.Table.Len())
		}

		return lipgloss.NewStyle().Padding(2).Render(
			"Finstat TUI\n\n" +
				loaded + "\n\n" +
				"1. Open Spreadsheet\n" +
				"2. View Report\n" +
				"3. Export Report\n\n" +
				"q. Quit",
		)
	case ViewOpen:
		return m.openView.View()
	case ViewReport:
		return m.reportView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	logging.Setup(f, cfg.Log.Level, cfg.Log.Format)

	p := tea.NewProgram(initialModel(cfg))
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
