package view

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
)

type openState int

const (
	openStateFilePick openState = iota
	openStateProcessing
	openStateFailed
)

// OpenModel picks a spreadsheet and runs it through the analysis pipeline.
type OpenModel struct {
	CommonModel
	svc *analysis.Service

	state      openState
	filePicker filepicker.Model
	spinner    spinner.Model
	path       string
	err        error
}

func NewOpenModel(svc *analysis.Service) OpenModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".xlsx", ".xlsm", ".xltx", ".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return OpenModel{
		svc:        svc,
		filePicker: fp,
		spinner:    s,
	}
}

func (m OpenModel) Title() string { return "Open Spreadsheet" }

func (m OpenModel) ShortHelp() string {
	if m.state == openStateFailed {
		return "Esc: pick another file"
	}

	return "Esc: back | Enter: select"
}

func (m OpenModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

type processResultMsg struct {
	res *analysis.Result
	err error
}

func (m OpenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == openStateFailed {
				m.state = openStateFilePick
				m.err = nil

				return m, nil
			}

			if m.state == openStateFilePick {
				return m, Back
			}
		}

	case processResultMsg:
		if msg.err != nil {
			m.state = openStateFailed
			m.err = msg.err

			return m, nil
		}

		res := msg.res
		m.state = openStateFilePick

		return m, func() tea.Msg { return ReportLoadedMsg{Result: res} }
	}

	switch m.state {
	case openStateProcessing:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case openStateFailed:
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = openStateProcessing
		m.path = path

		return m, tea.Batch(m.spinner.Tick, m.processCmd(path))
	}

	return m, cmd
}

func (m OpenModel) processCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return processResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := OpCtx()
		defer cancel()

		res, err := m.svc.Process(ctx, analysis.Upload{Name: path, Reader: f})

		return processResultMsg{res: res, err: err}
	}
}

func (m OpenModel) View() string {
	switch m.state {
	case openStateProcessing:
		return paneStyle.Render(fmt.Sprintf("%s Analyzing %s...", m.spinner.View(), m.path))
	case openStateFailed:
		return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render(fmt.Sprintf("Error: %v", m.err)),
			"",
			mutedStyle.Render(m.ShortHelp()),
		))
	}

	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		"Pick a spreadsheet (.xlsx or .csv):",
		"",
		m.filePicker.View(),
		"",
		mutedStyle.Render(m.ShortHelp()),
	))
}
