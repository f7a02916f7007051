package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/objtrack/objtrack/internal/engine"
	"github.com/objtrack/objtrack/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	emptyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Align(lipgloss.Center)

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	matchedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	mismatchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// rowRef maps a table row back to its unit. Symbol rows carry the owning
// unit's name so the detail pane always has a subject.
type rowRef struct {
	unit     string
	isSymbol bool
}

// Model is the interactive front-end over the view engine. All report and
// view-parameter state lives in the engine controller; the Model owns only
// terminal concerns.
type Model struct {
	controller *engine.Controller
	runner     engine.Runner

	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model

	rows []rowRef // table row -> unit mapping, rebuilt with the table

	projectDir string
	revision   string

	quitting      bool
	ready         bool
	showHelp      bool
	sourceView    bool // detail pane shows highlighted source instead of symbols
	width         int
	height        int
	statusMessage string
	statusTimeout *time.Time

	// Filter state
	filterMode  bool
	filterInput textinput.Model
}

// reportMsg carries the result of one acquisition back to the Update loop.
type reportMsg struct {
	report *types.Report
	err    error
}

type statusMsg string

// NewModel builds the TUI model around a fresh engine controller.
func NewModel(runner engine.Runner, projectDir, revision string) Model {
	columns := []table.Column{
		{Title: "Unit", Width: 50},
		{Title: "Match", Width: 10},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1).
		Align(lipgloss.Left)

	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)

	s.Cell = lipgloss.NewStyle().
		Padding(0, 1)

	t.SetStyles(s)

	// Line spinner avoids Braille characters that render poorly on some terminals
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	ti := textinput.New()
	ti.Placeholder = "Filter units..."
	ti.CharLimit = 100
	ti.Width = 50
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	return Model{
		controller:    engine.New(runner),
		runner:        runner,
		table:         t,
		spinner:       sp,
		filterInput:   ti,
		projectDir:    projectDir,
		revision:      revision,
		statusMessage: "q: quit | ?: help | j/k: navigate | enter: expand | r: re-run report",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun())
}

// startRun begins an acquisition unless one is already in flight. The run
// control is effectively disabled while Loading: Begin refuses and no
// command is issued.
func (m *Model) startRun() tea.Cmd {
	if !m.controller.Begin() {
		return nil
	}
	runner := m.runner
	return func() tea.Msg {
		report, err := runner.RunReport(context.Background())
		return reportMsg{report: report, err: err}
	}
}

// selectedUnit returns the unit name behind the table cursor, whether the
// cursor is on the unit row itself or one of its symbol rows.
func (m *Model) selectedUnit() (string, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return "", false
	}
	return m.rows[idx].unit, true
}

// rebuildTableRows re-projects the engine state into table rows. Symbol
// rows are indented under their expanded unit.
func (m *Model) rebuildTableRows() {
	vm := m.controller.ViewModel()

	var rows []table.Row
	var refs []rowRef
	for _, row := range vm.Rows {
		marker := " "
		if row.Expandable {
			marker = "+"
			if row.Expanded {
				marker = "-"
			}
		}
		rows = append(rows, table.Row{marker + " " + row.Name, row.Percent, row.Status})
		refs = append(refs, rowRef{unit: row.Name})

		for _, sym := range row.Symbols {
			rows = append(rows, table.Row{
				"    " + sym.Name,
				sym.Percent,
				fmt.Sprintf("%d/%d B", sym.BaseSize, sym.TargetSize),
			})
			refs = append(refs, rowRef{unit: row.Name, isSymbol: true})
		}
	}

	m.rows = refs
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
	m.updateViewportContent()
}

func (m *Model) setStatus(msg string, d time.Duration) {
	timeout := time.Now().Add(d)
	m.statusTimeout = &timeout
	m.statusMessage = msg
}

func (m *Model) toggleExpansion() {
	name, ok := m.selectedUnit()
	if !ok {
		return
	}
	vm := m.controller.ViewModel()
	for _, row := range vm.Rows {
		if row.Name != name {
			continue
		}
		if !row.Expandable {
			m.setStatus("Unit is fully matched; nothing to expand", 2*time.Second)
			return
		}
		break
	}
	cursor := m.table.Cursor()
	m.controller.ToggleExpansion(name)
	m.rebuildTableRows()
	m.table.SetCursor(cursor)
}

func (m *Model) applySort(key engine.SortKey) {
	m.controller.SetSort(key)
	m.rebuildTableRows()
	_, dir := m.controller.Sort()
	direction := "ascending"
	if dir == engine.Descending {
		direction = "descending"
	}
	m.setStatus(fmt.Sprintf("Sort by %s (%s)", key, direction), 3*time.Second)
}

// updateViewportContent fills the detail pane for the selected unit.
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}

	name, ok := m.selectedUnit()
	if !ok {
		m.viewport.SetContent("")
		return
	}

	if m.sourceView {
		m.viewport.SetContent(m.sourcePreview(name))
		return
	}

	vm := m.controller.ViewModel()
	for _, row := range vm.Rows {
		if row.Name != name {
			continue
		}

		var b strings.Builder
		b.WriteString(titleStyle.Render("Unit Details") + "\n\n")
		b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Unit:"), row.Name))
		b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Match:"), row.Percent))
		if row.Mismatch {
			b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Status:"), mismatchStyle.Render(row.Status)))
		} else {
			b.WriteString(fmt.Sprintf("%s %s\n", keyStyle.Render("Status:"), matchedStyle.Render(row.Status)))
		}

		switch {
		case !row.Mismatch:
			b.WriteString("\n" + dimStyle.Render("Fully matched. Nothing left to do here.") + "\n")
		case !row.Expanded:
			b.WriteString("\n" + dimStyle.Render("Press Enter to expand mismatching symbols") + "\n")
		case len(row.Symbols) == 0:
			b.WriteString("\n" + dimStyle.Render("No symbol breakdown reported for this unit") + "\n")
		default:
			b.WriteString("\n" + keyStyle.Render("Mismatching symbols:") + "\n")
			for _, sym := range row.Symbols {
				b.WriteString(fmt.Sprintf("  %s  %s  %d/%d bytes\n",
					mismatchStyle.Render(sym.Percent), sym.Name, sym.BaseSize, sym.TargetSize))
			}
		}

		m.viewport.SetContent(b.String())
		return
	}
	m.viewport.SetContent("")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if m.filterMode {
			switch msg.String() {
			case "enter":
				m.filterMode = false
				m.filterInput.Blur()
				return m, nil
			case "esc":
				m.filterMode = false
				m.filterInput.Blur()
				m.filterInput.SetValue("")
				m.controller.SetFilter("")
				m.rebuildTableRows()
				return m, nil
			default:
				m.filterInput, cmd = m.filterInput.Update(msg)
				m.controller.SetFilter(m.filterInput.Value())
				m.rebuildTableRows()
				return m, cmd
			}
		}

		loaded := m.controller.State() == engine.StateLoaded

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if runCmd := m.startRun(); runCmd != nil {
				m.setStatus("Running report...", 10*time.Second)
				return m, runCmd
			}
			return m, nil
		case "?", "h":
			m.showHelp = true
			return m, nil
		case "/":
			if loaded {
				m.filterMode = true
				m.filterInput.SetValue(m.controller.Filter())
				m.filterInput.Focus()
				return m, textinput.Blink
			}
		case "esc":
			if loaded && m.controller.Filter() != "" {
				m.controller.SetFilter("")
				m.filterInput.SetValue("")
				m.rebuildTableRows()
				m.setStatus("Filter cleared", 3*time.Second)
				return m, nil
			}
			if m.sourceView {
				m.sourceView = false
				m.updateViewportContent()
				return m, nil
			}
		case "n":
			if loaded {
				m.applySort(engine.SortByName)
				return m, nil
			}
		case "m":
			if loaded {
				m.applySort(engine.SortByMatch)
				return m, nil
			}
		case "enter", "tab":
			if loaded {
				m.toggleExpansion()
				return m, nil
			}
		case "v":
			if loaded {
				m.sourceView = !m.sourceView
				m.updateViewportContent()
				if m.sourceView {
					m.setStatus("Source preview (v or Esc to close)", 3*time.Second)
				}
				return m, nil
			}
		case "y":
			if loaded {
				return m, m.copyUnitName()
			}
		case "o":
			if loaded {
				return m, m.openEditor()
			}
		case "e":
			if loaded {
				return m, m.exportJSON()
			}
		case "down", "j", "up", "k":
			if loaded {
				m.table, cmd = m.table.Update(msg)
				m.updateViewportContent()
				return m, cmd
			}
		case "g", "home":
			if loaded {
				m.table.GotoTop()
				m.updateViewportContent()
				return m, nil
			}
		case "G", "end":
			if loaded {
				m.table.GotoBottom()
				m.updateViewportContent()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		usableWidth := m.width - 8
		matchWidth := 10
		statusWidth := 12
		nameWidth := usableWidth - matchWidth - statusWidth
		if nameWidth < 30 {
			nameWidth = 30
		}

		cols := m.table.Columns()
		cols[0].Width = nameWidth
		cols[1].Width = matchWidth
		cols[2].Width = statusWidth
		m.table.SetColumns(cols)

		summaryHeight := 1
		availableHeight := m.height - lipgloss.Height(statusStyle.Render("")) - summaryHeight
		tableHeight := int(float64(availableHeight) * 0.55)
		viewportHeight := availableHeight - tableHeight - detailPaneBorderStyle.GetVerticalFrameSize() - 1

		m.table.SetWidth(m.width)
		m.table.SetHeight(tableHeight)

		if m.viewport.Height == 0 {
			m.viewport = viewport.New(m.width, viewportHeight)
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.updateViewportContent()
		statusStyle = statusStyle.Width(m.width)

	case reportMsg:
		m.controller.Finish(msg.report, msg.err)
		m.filterInput.SetValue("")
		m.rebuildTableRows()
		vm := m.controller.ViewModel()
		switch {
		case vm.State == engine.StateError:
			m.setStatus("Report failed (r to retry)", 10*time.Second)
		case vm.Unchanged:
			m.setStatus("Report complete - no change since last run", 5*time.Second)
		default:
			m.setStatus(fmt.Sprintf("Report complete - %s matched (%s)", vm.Summary.Objects, vm.Summary.Progress), 5*time.Second)
		}

	case statusMsg:
		m.setStatus(string(msg), 3*time.Second)

	case spinner.TickMsg:
		var spinCmd tea.Cmd
		m.spinner, spinCmd = m.spinner.Update(msg)
		if m.statusTimeout != nil && time.Now().After(*m.statusTimeout) {
			m.statusTimeout = nil
			m.statusMessage = "q: quit | ?: help | j/k: navigate | enter: expand | r: re-run report"
		}
		return m, spinCmd
	}

	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	vm := m.controller.ViewModel()

	if vm.State == engine.StateLoading {
		msgContent := fmt.Sprintf("%s  Running comparison report...\n\nPlease wait", m.spinner.View())
		popupBox := popupStyle.
			Width(55).
			Align(lipgloss.Center).
			Render(msgContent)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupBox)
	}

	if m.showHelp {
		return m.helpView()
	}

	switch vm.State {
	case engine.StateNoReport:
		return m.placeholderView("No report yet.\n\nPress 'r' to run the comparison tool")
	case engine.StateError:
		return m.placeholderView("Report failed:\n\n" + vm.Error + "\n\nPress 'r' to retry, 'q' to quit")
	}

	summary := m.summaryView(vm)

	tableRender := tableBorderStyle.
		Width(m.width).
		Height(m.table.Height()).
		Render(m.table.View())

	var detailContent string
	if len(vm.Rows) == 0 {
		emptyMsg := "No units in report."
		if vm.Filter != "" {
			emptyMsg = "No units match filter.\n\nPress 'Esc' to clear filter"
		}
		detailContent = lipgloss.Place(
			m.width,
			m.viewport.Height,
			lipgloss.Center,
			lipgloss.Center,
			emptyTextStyle.Render(emptyMsg),
		)
	} else {
		detailContent = m.viewport.View()
	}

	detailRender := detailPaneBorderStyle.
		Width(m.width).
		Height(m.viewport.Height).
		Render(detailContent)

	var bottomBar string
	if m.filterMode {
		matchCount := len(vm.Rows)
		filterStatus := fmt.Sprintf(" (%d units)", matchCount)
		filterBarStyle := lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("15")).
			Width(m.width).
			Padding(0, 1)
		bottomBar = filterBarStyle.Render(m.filterInput.View() + filterStatus)
	} else {
		bottomBar = statusStyle.
			Width(m.width).
			Padding(0, 2).
			Render(m.statusMessage)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		summary,
		tableRender,
		detailRender,
		bottomBar,
	)
}

func (m Model) summaryView(vm engine.ViewModel) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Progress: %s", vm.Summary.Progress))
	parts = append(parts, fmt.Sprintf("Objects: %s", vm.Summary.Objects))
	if !vm.Summary.Timestamp.IsZero() {
		parts = append(parts, vm.Summary.Timestamp.Local().Format("Jan 2, 15:04"))
	}
	if m.revision != "" {
		parts = append(parts, m.revision)
	}
	if vm.Filter != "" {
		parts = append(parts, fmt.Sprintf("[FILTER: %q]", vm.Filter))
	}
	arrow := "^"
	if vm.SortDir == engine.Descending {
		arrow = "v"
	}
	parts = append(parts, fmt.Sprintf("[sort: %s %s]", vm.SortKey, arrow))

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 2).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("237")).
		Render(strings.Join(parts, "  |  "))
}

func (m Model) placeholderView(msg string) string {
	content := lipgloss.Place(
		m.width,
		m.height-1,
		lipgloss.Center,
		lipgloss.Center,
		emptyTextStyle.Render(msg),
	)
	status := statusStyle.
		Width(m.width).
		Padding(0, 2).
		Render(m.statusMessage)
	return lipgloss.JoinVertical(lipgloss.Left, content, status)
}

func (m Model) helpView() string {
	helpTitleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	keyColor := lipgloss.Color("10")
	descColor := lipgloss.Color("250")

	formatRow := func(key, desc string) string {
		keyStyled := lipgloss.NewStyle().Foreground(keyColor).Render(key)
		descStyled := lipgloss.NewStyle().Foreground(descColor).Render(desc)
		padding := 12 - len(key)
		if padding < 1 {
			padding = 1
		}
		return "  " + keyStyled + strings.Repeat(" ", padding) + descStyled
	}

	var lines []string
	lines = append(lines, helpTitleStyle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Navigation"))
	lines = append(lines, formatRow("j / k", "Move down / up"))
	lines = append(lines, formatRow("g / G", "First / last row"))
	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Filter & Sort"))
	lines = append(lines, formatRow("/", "Filter units by name"))
	lines = append(lines, formatRow("n", "Sort by name (again to reverse)"))
	lines = append(lines, formatRow("m", "Sort by match percent (again to reverse)"))
	lines = append(lines, formatRow("Esc", "Clear filter"))
	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Detail"))
	lines = append(lines, formatRow("Enter", "Expand/collapse mismatching symbols"))
	lines = append(lines, formatRow("v", "Preview unit source file"))
	lines = append(lines, formatRow("o", "Open unit source in $EDITOR"))
	lines = append(lines, formatRow("y", "Copy unit name"))
	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Report"))
	lines = append(lines, formatRow("r", "Re-run comparison report"))
	lines = append(lines, formatRow("e", "Export report as JSON"))
	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Other"))
	lines = append(lines, formatRow("?", "Toggle help"))
	lines = append(lines, formatRow("q", "Quit"))
	lines = append(lines, "")
	lines = append(lines, dimStyle.Italic(true).Render("Press any key to close"))

	helpContent := lipgloss.JoinVertical(lipgloss.Left, lines...)
	helpBox := popupStyle.Width(52).Padding(1, 3).Render(helpContent)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpBox)
}
