package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/finstat/internal/analysis"
	"github.com/MrJamesThe3rd/finstat/internal/report"
)

const notAvailable = "N/A"

// ReportModel shows the stats of an analyzed upload and one row per month.
// Enter looks the selected month up again through the session.
type ReportModel struct {
	CommonModel
	svc *analysis.Service
	res *analysis.Result

	table  table.Model
	detail string
	err    error
}

func NewReportModel(svc *analysis.Service, res *analysis.Result) ReportModel {
	columns := []table.Column{
		{Title: "Month", Width: 18},
		{Title: "Income", Width: 12},
		{Title: "Expense", Width: 12},
		{Title: "Net", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := ReportModel{svc: svc, res: res, table: t}
	m.refreshTable()

	return m
}

func (m ReportModel) Title() string { return "Report" }

func (m ReportModel) ShortHelp() string {
	return "Esc: back | Enter: month details"
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

type detailMsg struct {
	detail analysis.Detail
	err    error
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailMsg:
		m.err = msg.err
		m.detail = formatDetail(msg.detail)

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-16, 3))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "enter":
			row := m.table.SelectedRow()
			if row == nil {
				return m, nil
			}

			return m, m.detailCmd(row[0])
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReportModel) detailCmd(label string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		d, err := m.svc.Details(ctx, m.res.SessionID, label)

		return detailMsg{detail: d, err: err}
	}
}

func (m *ReportModel) refreshTable() {
	rows := make([]table.Row, 0, m.res.Table.Len())

	for i, r := range m.res.Table.Records {
		label := r.Month
		if i < len(m.res.Months) {
			label = m.res.Months[i]
		}

		rows = append(rows, table.Row{
			label,
			report.FormatAmount(r.Income),
			report.FormatAmount(r.Expense),
			report.FormatAmount(r.Income - r.Expense),
		})
	}

	m.table.SetRows(rows)
}

func formatDetail(d analysis.Detail) string {
	income, expense := notAvailable, notAvailable
	if d.Available {
		income = report.FormatAmount(d.Income)
		expense = report.FormatAmount(d.Expense)
	}

	return fmt.Sprintf("%s  income %s  expense %s", d.Label, income, expense)
}

func (m ReportModel) View() string {
	st := m.res.Stats

	var sb strings.Builder
	fmt.Fprintf(&sb, "Highest income:  %s\n", st.HighestIncomeMonth)
	fmt.Fprintf(&sb, "Lowest income:   %s\n", st.LowestIncomeMonth)
	fmt.Fprintf(&sb, "Highest expense: %s\n", st.HighestExpenseMonth)
	fmt.Fprintf(&sb, "Lowest expense:  %s\n", st.LowestExpenseMonth)
	fmt.Fprintf(&sb, "Average income:  %s\n", st.FormattedAverageIncome())
	fmt.Fprintf(&sb, "Average expense: %s", st.FormattedAverageExpense())

	charts := mutedStyle.Render("Charts: " + strings.Join(m.res.Charts.Paths(), "  "))

	footer := mutedStyle.Render(m.ShortHelp())

	switch {
	case m.err != nil:
		footer = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.detail != "":
		footer = successStyle.Render(m.detail)
	}

	return paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		sb.String(),
		"",
		m.table.View(),
		"",
		charts,
		footer,
	))
}
