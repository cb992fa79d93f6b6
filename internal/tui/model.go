// Package tui renders the close board: five status columns over the task
// cache, with keyboard transitions, bulk mode, and a filterable list view.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/engine"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/viewstate"
)

// Tab represents a view tab
type Tab int

const (
	TabBoard Tab = iota
	TabList
)

func (t Tab) String() string {
	switch t {
	case TabBoard:
		return "Board"
	case TabList:
		return "List"
	default:
		return "Unknown"
	}
}

// Messages
type refreshedMsg struct{}
type settledMsg struct{ err error }
type errMsg error
type tickMsg time.Time

const staleCheckEvery = 2 * time.Second

// Config carries the identity and context the board displays but never
// mutates.
type Config struct {
	User      string
	BuildInfo string
	Periods   []task.Period
}

// Model is the main TUI model
type Model struct {
	eng  *engine.Engine
	view *viewstate.Controller
	hist *viewstate.History

	user      string
	buildInfo string
	periods   []task.Period

	width  int
	height int

	activeTab Tab
	col       int
	row       int

	drag     *engine.Drag
	bulkMode bool

	taskList list.Model

	creating    bool
	createInput textinput.Model

	detailID int64

	err         error
	lastRefresh time.Time
	quitting    bool
}

// New creates the board model.
func New(eng *engine.Engine, view *viewstate.Controller, cfg Config) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedListStyle
	delegate.Styles.NormalTitle = unselectedListStyle
	taskList := list.New([]list.Item{}, delegate, 0, 0)
	taskList.Title = "Close Tasks"
	taskList.SetShowStatusBar(false)
	taskList.SetFilteringEnabled(true)
	taskList.Filter = fuzzyFilter

	createInput := textinput.New()
	createInput.Placeholder = "task name"
	createInput.Prompt = "> "
	createInput.CharLimit = 120

	return Model{
		eng:         eng,
		view:        view,
		hist:        viewstate.NewHistory(view.QueryString()),
		user:        cfg.User,
		buildInfo:   cfg.BuildInfo,
		periods:     cfg.Periods,
		activeTab:   TabBoard,
		taskList:    taskList,
		createInput: createInput,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m Model) refresh() tea.Cmd {
	op := m.eng.Refresh(m.view.Filters(), m.view.ReviewActive())
	return func() tea.Msg {
		if err := op(context.Background()); err != nil {
			return errMsg(err)
		}
		return refreshedMsg{}
	}
}

func runOp(op engine.Op) tea.Cmd {
	return func() tea.Msg {
		return settledMsg{err: op(context.Background())}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(staleCheckEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.taskList.SetSize(max(1, m.width-4), max(1, m.height-7))
		return m, nil

	case refreshedMsg:
		m.err = nil
		m.lastRefresh = time.Now()
		m.clampCursor()
		m.syncList()
		if id := m.view.Highlight(); id != 0 {
			if _, ok := m.eng.Get(id); ok {
				m.detailID = id
			}
			m.view.ClearHighlight()
		}
		return m, nil

	case settledMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		// Settlement invalidated the cache on both outcomes.
		return m, m.refresh()

	case errMsg:
		m.err = msg
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tick()}
		if m.eng.Stale() {
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.creating {
		switch msg.Type {
		case tea.KeyEsc:
			m.creating = false
			m.createInput.SetValue("")
			return m, nil
		case tea.KeyEnter:
			name := strings.TrimSpace(m.createInput.Value())
			m.creating = false
			m.createInput.SetValue("")
			if name == "" {
				return m, nil
			}
			op := m.eng.RequestCreate(task.Draft{
				Name:     name,
				Owner:    m.user,
				PeriodID: m.view.PeriodID(),
			})
			return m, runOp(op)
		}
		var cmd tea.Cmd
		m.createInput, cmd = m.createInput.Update(msg)
		return m, cmd
	}

	if m.detailID != 0 {
		switch {
		case msg.Type == tea.KeyEsc, msg.Type == tea.KeyEnter,
			key.Matches(msg, keys.Quit):
			m.detailID = 0
			return m, nil
		}
		return m, nil
	}

	// While the list filter is being typed, every key belongs to the list.
	if m.activeTab == TabList && m.taskList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}

	if msg.Type == tea.KeyEsc {
		if m.drag != nil {
			m.drag = nil
			return m, nil
		}
		if m.bulkMode {
			m.bulkMode = false
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.SwitchTab):
		if m.activeTab == TabBoard {
			m.activeTab = TabList
			m.syncList()
		} else {
			m.activeTab = TabBoard
		}
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, keys.Mine):
		m.view.ToggleMine()
		m.hist.Push(m.view.QueryString())
		return m, m.refresh()

	case key.Matches(msg, keys.Reviews):
		m.view.ToggleReview()
		m.hist.Push(m.view.QueryString())
		return m, m.refresh()

	case key.Matches(msg, keys.Status):
		m.view.CycleStatus()
		m.hist.Push(m.view.QueryString())
		return m, m.refresh()

	case key.Matches(msg, keys.Dept):
		m.cycleDepartment()
		return m, m.refresh()

	case key.Matches(msg, keys.Density):
		if err := m.view.ToggleDensity(); err != nil {
			m.err = err
		}
		return m, nil

	case key.Matches(msg, keys.QuickEdit):
		m.view.ToggleQuickEdit()
		return m, nil

	case key.Matches(msg, keys.Bulk):
		m.bulkMode = !m.bulkMode
		return m, nil

	case key.Matches(msg, keys.Back):
		if q, ok := m.hist.Back(); ok {
			_ = m.view.ApplyString(q)
			return m, m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.Forward):
		if q, ok := m.hist.Forward(); ok {
			_ = m.view.ApplyString(q)
			return m, m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.New):
		m.creating = true
		m.createInput.Focus()
		return m, nil
	}

	if m.activeTab == TabList {
		return m.handleListKey(msg)
	}
	return m.handleBoardKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		if item, ok := m.taskList.SelectedItem().(taskItem); ok {
			m.detailID = item.t.ID
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		m.col--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Right):
		m.col++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Up):
		m.row--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Down):
		m.row++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.PickDrop):
		return m.handlePickDrop()

	case key.Matches(msg, keys.SelectAll):
		if m.bulkMode {
			m.view.Selection().SelectAll(m.visibleIDs())
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		if t, ok := m.selectedTask(); ok {
			m.detailID = t.ID
		}
		return m, nil
	}

	for i, binding := range keys.Digits {
		if key.Matches(msg, binding) {
			return m.handleDigit(task.AllStatuses[i])
		}
	}
	return m, nil
}

func (m Model) handlePickDrop() (tea.Model, tea.Cmd) {
	if m.bulkMode {
		if t, ok := m.selectedTask(); ok {
			m.view.Selection().Toggle(t.ID)
		}
		return m, nil
	}

	if m.drag == nil {
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		d, err := m.eng.StartDrag(t.ID)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.drag = d
		return m, nil
	}

	target := task.AllStatuses[m.col]
	op, err := m.eng.Drop(m.drag, target)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.drag = nil
	m.clampCursor()
	return m, runOp(op)
}

func (m Model) handleDigit(to task.Status) (tea.Model, tea.Cmd) {
	if m.bulkMode {
		op, err := m.eng.RequestBulkTransition(m.view.Selection().IDs(), to)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.bulkMode = false
		return m, runOp(op)
	}

	if !m.view.QuickEdit() {
		return m, nil
	}
	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	op, err := m.eng.RequestTransition(t.ID, to)
	if err != nil {
		m.err = err
		return m, nil
	}
	return m, runOp(op)
}

func (m Model) columnTasks(st task.Status) []task.Task {
	var out []task.Task
	for _, t := range m.eng.Tasks() {
		if t.Status == st {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) selectedTask() (task.Task, bool) {
	col := m.columnTasks(task.AllStatuses[m.col])
	if m.row < 0 || m.row >= len(col) {
		return task.Task{}, false
	}
	return col[m.row], true
}

func (m *Model) clampCursor() {
	if m.col < 0 {
		m.col = 0
	}
	if m.col >= len(task.AllStatuses) {
		m.col = len(task.AllStatuses) - 1
	}
	n := len(m.columnTasks(task.AllStatuses[m.col]))
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m Model) visibleIDs() []int64 {
	ts := m.eng.Tasks()
	ids := make([]int64, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	return ids
}

func (m Model) departments() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range m.eng.Tasks() {
		if t.Department == "" || seen[t.Department] {
			continue
		}
		seen[t.Department] = true
		out = append(out, t.Department)
	}
	sort.Strings(out)
	return out
}

func (m *Model) cycleDepartment() {
	depts := m.departments()
	cur := m.view.Department()
	if cur == "" {
		if len(depts) > 0 {
			m.view.SetDepartment(depts[0])
		}
		return
	}
	for i, d := range depts {
		if d == cur {
			if i+1 < len(depts) {
				m.view.SetDepartment(depts[i+1])
			} else {
				m.view.SetDepartment("")
			}
			return
		}
	}
	m.view.SetDepartment("")
}

func (m Model) periodName() string {
	id := m.view.PeriodID()
	for _, p := range m.periods {
		if id != 0 && p.ID == id {
			return p.Name
		}
		if id == 0 && p.IsActive {
			return p.Name
		}
	}
	return ""
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var content string
	switch {
	case m.detailID != 0:
		content = m.renderDetail()
	case m.activeTab == TabList:
		content = m.taskList.View()
	default:
		content = m.renderBoard()
	}

	parts := []string{header, content}
	if m.creating {
		parts = append(parts, labelStyle.Render("New task: ")+m.createInput.View())
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("⚡ Closeboard")
	if m.buildInfo != "" {
		title += " " + labelStyle.Render(m.buildInfo)
	}

	tabs := make([]string, 2)
	for i, tab := range []Tab{TabBoard, TabList} {
		style := tabStyle
		if tab == m.activeTab {
			style = activeTabStyle
		}
		tabs[i] = style.Render(tab.String())
	}

	var badges []string
	if m.view.MineActive() {
		badges = append(badges, badgeStyle.Render("MINE"))
	}
	if m.view.ReviewActive() {
		badges = append(badges, badgeStyle.Render("REVIEWS"))
	}
	if st := m.view.Status(); st != "" {
		badges = append(badges, badgeQuietStyle.Render("status: "+st.Label()))
	}
	if d := m.view.Department(); d != "" {
		badges = append(badges, badgeQuietStyle.Render("dept: "+d))
	}
	if m.bulkMode {
		badges = append(badges, badgeStyle.Render(fmt.Sprintf("BULK %d", m.view.Selection().Len())))
	}
	if m.view.QuickEdit() {
		badges = append(badges, badgeQuietStyle.Render("quick edit"))
	}
	if m.view.Density() == viewstate.DensityCompact {
		badges = append(badges, badgeQuietStyle.Render("compact"))
	}

	row := []string{title, strings.Repeat(" ", 3), lipgloss.JoinHorizontal(lipgloss.Center, tabs...)}
	if len(badges) > 0 {
		row = append(row, "  ", strings.Join(badges, " "))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, row...) + "\n"
}

func (m Model) renderFooter() string {
	var help string
	if m.drag != nil {
		if t, ok := m.eng.Get(m.drag.ID); ok {
			help = cardCarriedStyle.Render("carrying "+t.Name) +
				helpDescStyle.Render("  h/l choose column • ") +
				helpKeyStyle.Render("space") + helpDescStyle.Render(" drop • ") +
				helpKeyStyle.Render("esc") + helpDescStyle.Render(" cancel")
		}
	} else if m.bulkMode {
		help = helpKeyStyle.Render("space") + helpDescStyle.Render(" select • ") +
			helpKeyStyle.Render("a") + helpDescStyle.Render(" all • ") +
			helpKeyStyle.Render("1-5") + helpDescStyle.Render(" apply • ") +
			helpKeyStyle.Render("esc") + helpDescStyle.Render(" done")
	} else {
		help = helpKeyStyle.Render("space") + helpDescStyle.Render(" move • ") +
			helpKeyStyle.Render("m") + helpDescStyle.Render(" mine • ") +
			helpKeyStyle.Render("v") + helpDescStyle.Render(" reviews • ") +
			helpKeyStyle.Render("s") + helpDescStyle.Render(" status • ") +
			helpKeyStyle.Render("b") + helpDescStyle.Render(" bulk • ") +
			helpKeyStyle.Render("e") + helpDescStyle.Render(" edit • ") +
			helpKeyStyle.Render("n") + helpDescStyle.Render(" new • ") +
			helpKeyStyle.Render("enter") + helpDescStyle.Render(" detail • ") +
			helpKeyStyle.Render("q") + helpDescStyle.Render(" quit")
	}

	state := m.periodName()
	if q := m.view.QueryString(); q != "" {
		if state != "" {
			state += " • "
		}
		state += q
	}
	if !m.lastRefresh.IsZero() {
		if state != "" {
			state += " • "
		}
		state += fmt.Sprintf("updated %s ago", time.Since(m.lastRefresh).Round(time.Second))
	}

	lines := []string{}
	if m.err != nil {
		lines = append(lines, errorStyle.Render("✗ "+m.err.Error()))
	}
	statusLine := help
	if state != "" {
		padding := m.width - ansi.PrintableRuneWidth(help) - ansi.PrintableRuneWidth(state) - 2
		if padding < 1 {
			padding = 1
		}
		statusLine = help + strings.Repeat(" ", padding) + labelStyle.Render(state)
	}
	lines = append(lines, statusLine)
	return strings.Join(lines, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
