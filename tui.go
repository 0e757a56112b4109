package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"samparkdash/cmd"
	"samparkdash/internal/classify"
	"samparkdash/internal/config"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/indicators"
	"samparkdash/internal/sampark"
	"samparkdash/internal/session"
	"samparkdash/internal/tableutil"
)

type screen int

const (
	loginScreen screen = iota
	tableScreen
	textScreen
)

type loginStep int

const (
	phoneStep loginStep = iota
	otpStep
)

// frame is one level of the drill-down stack.
type frame struct {
	level   drilldown.Level
	id      string
	name    string
	tables  []*indicators.Table
	active  int
	summary *indicators.Summary
}

func (f *frame) table() *indicators.Table {
	if len(f.tables) == 0 {
		return nil
	}
	return f.tables[f.active]
}

// topTable is the leading table of the frame, ranked under the summary.
func (f *frame) topTable() *indicators.Table {
	for _, t := range f.tables {
		if t.Kind() == indicators.Leading {
			return t
		}
	}
	return nil
}

type model struct {
	cfg    *config.Config
	src    cmd.Source
	logger *slog.Logger
	sess   *session.Session

	screen      screen
	step        loginStep
	phone       string
	phoneInput  textinput.Model
	otpInput    textinput.Model
	searchInput textinput.Model
	searching   bool

	grid     table.Model
	viewport viewport.Model
	text     string
	stack    []frame
	col      int

	width   int
	height  int
	loading bool
	status  string
	err     error
}

type otpSentMsg struct {
	result sampark.OTPResult
	err    error
}

type loggedInMsg struct {
	sess *session.Session
	err  error
}

type datasetMsg struct {
	level drilldown.Level
	id    string
	name  string
	ds    indicators.Dataset
	push  bool
	err   error
}

type exportMsg struct {
	path string
	err  error
}

type textMsg struct {
	content string
	err     error
}

func requestOTP(src cmd.Source, phone string) tea.Cmd {
	return func() tea.Msg {
		result, err := src.RequestOTP(context.Background(), phone)
		return otpSentMsg{result: result, err: err}
	}
}

func validateOTP(src cmd.Source, cfg *config.Config, phone, otp string) tea.Cmd {
	return func() tea.Msg {
		creds, err := src.ValidateOTP(context.Background(), phone, otp)
		if err != nil {
			return loggedInMsg{err: err}
		}
		sess := session.New(creds)
		if err := session.SaveFile(cfg.SessionFile(), sess); err != nil && logger != nil {
			logger.Warn("Failed to save session", "error", err, "path", cfg.SessionFile())
		}
		return loggedInMsg{sess: sess}
	}
}

func loadDataset(dash cmd.Dashboard, level drilldown.Level, id, name string, push bool) tea.Cmd {
	return func() tea.Msg {
		ds, err := dash.Load(context.Background(), level, id)
		return datasetMsg{level: level, id: id, name: name, ds: ds, push: push, err: err}
	}
}

func exportTable(t *indicators.Table, dir string) tea.Cmd {
	records, headers, slug := t.Records(), t.Headers(), t.Slug()
	return func() tea.Msg {
		path, err := tableutil.ExportCSV(dir, slug, time.Now(), records, headers)
		return exportMsg{path: path, err: err}
	}
}

func showGuide(width int) tea.Cmd {
	return func() tea.Msg {
		content, err := renderGuide(width)
		return textMsg{content: content, err: err}
	}
}

func summarizeCmd(apiKey string, t *indicators.Table, width int) tea.Cmd {
	return func() tea.Msg {
		text, err := summarizeTable(context.Background(), apiKey, t)
		if err != nil {
			return textMsg{err: err}
		}
		content, err := renderMarkdown("# "+t.Title()+"\n\n"+text, width)
		return textMsg{content: content, err: err}
	}
}

func initialModel(cfg *config.Config, src cmd.Source, sess *session.Session) model {
	pi := textinput.New()
	pi.Placeholder = "10-digit phone number"
	pi.CharLimit = 14
	pi.Width = 30
	pi.Focus()

	oi := textinput.New()
	oi.Placeholder = "OTP"
	oi.CharLimit = 8
	oi.Width = 12

	si := textinput.New()
	si.Placeholder = "Search by name or DISE code..."
	si.CharLimit = 100
	si.Width = 40

	grid := table.New(table.WithFocused(true), table.WithHeight(15))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62"))
	grid.SetStyles(styles)

	m := model{
		cfg:         cfg,
		src:         src,
		logger:      logger,
		sess:        sess,
		phoneInput:  pi,
		otpInput:    oi,
		searchInput: si,
		grid:        grid,
		viewport:    viewport.New(80, 20),
		width:       120,
		height:      40,
	}
	if sess != nil {
		m.screen = tableScreen
		m.loading = true
	}
	return m
}

func (m model) dashboard() cmd.Dashboard {
	return cmd.Dashboard{Source: m.src, Config: m.cfg, Session: m.sess}
}

func (m model) current() *frame {
	if len(m.stack) == 0 {
		return nil
	}
	return &m.stack[len(m.stack)-1]
}

func (m model) currentTable() *indicators.Table {
	if f := m.current(); f != nil {
		return f.table()
	}
	return nil
}

func (m model) Init() tea.Cmd {
	if m.sess != nil {
		return loadDataset(m.dashboard(), drilldown.State, "", m.cfg.StateName, true)
	}
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 3
		m.grid.SetHeight(m.gridHeight())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case loginScreen:
			return m.handleLoginKeys(msg)
		case textScreen:
			return m.handleTextKeys(msg)
		}
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleTableKeys(msg)

	case otpSentMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			if logger != nil {
				logger.Error("OTP request failed", "error", msg.err)
			}
			return m, nil
		}
		m.err = nil
		m.step = otpStep
		m.status = "OTP sent to " + msg.result.PhoneNumber
		m.phoneInput.Blur()
		m.otpInput.Focus()
		return m, textinput.Blink

	case loggedInMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			if logger != nil {
				logger.Error("OTP validation failed", "error", msg.err)
			}
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.sess = msg.sess
		m.screen = tableScreen
		m.loading = true
		m.otpInput.SetValue("")
		if logger != nil {
			logger.Info("Logged in", "role", msg.sess.User.Role, "state", msg.sess.User.State)
		}
		return m, loadDataset(m.dashboard(), drilldown.State, "", m.cfg.StateName, true)

	case datasetMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			if logger != nil {
				logger.Error("Failed to load dataset", "error", msg.err, "level", msg.level.String(), "id", msg.id)
			}
			return m, nil
		}
		m.err = nil
		m.pushFrame(msg)
		return m, nil

	case exportMsg:
		switch {
		case msg.err != nil:
			m.err = fmt.Errorf("export failed: %w", msg.err)
		case msg.path == "":
			m.status = "No rows to export"
		default:
			m.status = "Exported to " + msg.path
		}
		return m, nil

	case textMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.screen = tableScreen
			return m, nil
		}
		m.text = msg.content
		m.viewport.SetContent(msg.content)
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.screen == loginScreen && m.step == phoneStep:
		m.phoneInput, cmd = m.phoneInput.Update(msg)
	case m.screen == loginScreen:
		m.otpInput, cmd = m.otpInput.Update(msg)
	case m.screen == textScreen:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// pushFrame builds the tables of a freshly loaded dataset.
func (m *model) pushFrame(msg datasetMsg) {
	opts := []indicators.Option{
		indicators.WithLevel(msg.level),
		indicators.WithPageSize(m.cfg.PageSize),
	}
	if logger != nil {
		opts = append(opts, indicators.WithLogger(logger))
	}
	f := frame{
		level:  msg.level,
		id:     msg.id,
		name:   msg.name,
		tables: indicators.Tables(msg.ds, msg.level, opts...),
	}
	if state, ok := msg.ds.(indicators.StateDataset); ok {
		s := indicators.Summarize(state.LeadingIndicators)
		f.summary = &s
		if f.name == "" {
			f.name = state.StateData.Name
		}
	}
	if district, ok := msg.ds.(indicators.DistrictDataset); ok && district.DistrictData.Name != "" {
		f.name = district.DistrictData.Name
	}

	if msg.push || len(m.stack) == 0 {
		m.stack = append(m.stack, f)
	} else {
		f.active = min(m.current().active, max(len(f.tables)-1, 0))
		m.stack[len(m.stack)-1] = f
	}
	m.col = 0
	m.grid.SetCursor(0)
	m.refreshGrid()
}

func (m model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.step == otpStep {
			m.step = phoneStep
			m.otpInput.Blur()
			m.otpInput.SetValue("")
			m.phoneInput.Focus()
			m.status = ""
			return m, textinput.Blink
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.loading {
			return m, nil
		}
		if m.step == phoneStep {
			phone, err := sampark.NormalizePhone(m.phoneInput.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			m.phone = phone
			m.loading = true
			return m, requestOTP(m.src, phone)
		}
		m.loading = true
		m.err = nil
		return m, validateOTP(m.src, m.cfg, m.phone, m.otpInput.Value())
	}

	var cmd tea.Cmd
	if m.step == phoneStep {
		m.phoneInput, cmd = m.phoneInput.Update(msg)
	} else {
		m.otpInput, cmd = m.otpInput.Update(msg)
	}
	return m, cmd
}

func (m model) handleTextKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.screen = tableScreen
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if t := m.currentTable(); t != nil {
		t.SetSearch(strings.TrimSpace(m.searchInput.Value()))
		m.grid.SetCursor(0)
		m.refreshGrid()
	}
	return m, cmd
}

func (m model) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.current()
	if f == nil || f.table() == nil {
		if msg.String() == "q" || msg.String() == "esc" {
			return m, tea.Quit
		}
		return m, nil
	}
	t := f.table()
	cols := t.Columns()
	m.status = ""

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "left", "h":
		if m.col > 0 {
			m.col--
		}
		m.refreshGrid()
		return m, nil

	case "right", "l":
		if m.col < len(cols)-1 {
			m.col++
		}
		m.refreshGrid()
		return m, nil

	case "s":
		t.Sort(cols[m.col].Key)
		m.refreshGrid()
		return m, nil

	case "n":
		page := t.View()
		t.SetPage(page.Page + 1)
		m.grid.SetCursor(0)
		m.refreshGrid()
		return m, nil

	case "p":
		page := t.View()
		t.SetPage(page.Page - 1)
		m.grid.SetCursor(0)
		m.refreshGrid()
		return m, nil

	case "/":
		m.searching = true
		m.searchInput.SetValue(t.Search())
		m.searchInput.Focus()
		return m, textinput.Blink

	case "f":
		if !t.SupportsBand() {
			m.status = "Band filter is not available for this table"
			return m, nil
		}
		t.SetBand(t.Band().Next())
		m.grid.SetCursor(0)
		m.refreshGrid()
		return m, nil

	case "u":
		subjects := append([]string{"all"}, t.Subjects()...)
		if len(subjects) == 1 {
			return m, nil
		}
		next := 0
		for i, s := range subjects {
			if strings.EqualFold(s, t.Subject()) {
				next = (i + 1) % len(subjects)
				break
			}
		}
		t.SetSubject(subjects[next])
		m.col = 0
		m.refreshGrid()
		return m, nil

	case "tab":
		if len(f.tables) > 1 {
			f.active = (f.active + 1) % len(f.tables)
			m.col = 0
			m.grid.SetCursor(0)
			m.refreshGrid()
		}
		return m, nil

	case "enter":
		rows := t.View().Rows
		cursor := m.grid.Cursor()
		if cursor < 0 || cursor >= len(rows) || rows[cursor].Target == nil {
			return m, nil
		}
		target := rows[cursor].Target
		next := f.level.Next()
		if next == drilldown.Block {
			if m.sess.District == nil {
				m.err = cmd.ErrNoDistrict
				return m, nil
			}
		}
		if next == drilldown.District {
			scoped := *m.sess
			scoped.District = &session.Selection{ID: target.ID, Name: target.Name}
			m.sess = &scoped
			if err := session.SaveFile(m.cfg.SessionFile(), m.sess); err != nil && logger != nil {
				logger.Warn("Failed to save session", "error", err, "path", m.cfg.SessionFile())
			}
		}
		m.loading = true
		m.err = nil
		return m, loadDataset(m.dashboard(), next, target.ID, target.Name, true)

	case "backspace":
		if len(m.stack) > 1 {
			m.stack = m.stack[:len(m.stack)-1]
			m.col = 0
			m.grid.SetCursor(0)
			m.refreshGrid()
		}
		return m, nil

	case "r":
		m.loading = true
		return m, loadDataset(m.dashboard(), f.level, f.id, f.name, false)

	case "c":
		if err := clipboard.WriteAll(tableutil.CSV(t.Records(), t.Headers())); err != nil {
			m.err = fmt.Errorf("clipboard: %w", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Copied %d rows", len(t.Rows()))
		return m, nil

	case "e":
		return m, exportTable(t, m.cfg.ExportDir())

	case "?":
		m.screen = textScreen
		m.loading = true
		return m, showGuide(m.width)

	case "a":
		if m.cfg.AnthropicAPIKey == "" {
			m.status = "Set ANTHROPIC_API_KEY to summarize tables"
			return m, nil
		}
		m.screen = textScreen
		m.loading = true
		m.viewport.SetContent("Summarizing...")
		return m, summarizeCmd(m.cfg.AnthropicAPIKey, t, m.width)
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m model) gridHeight() int {
	h := m.height - 16
	if f := m.current(); f != nil && f.summary != nil {
		h -= 6
	}
	return max(h, 5)
}

// tierMarks stand in for colour inside grid cells.
var tierMarks = map[classify.Tier]string{
	classify.Good:         " ✓",
	classify.Warning:      " !",
	classify.AboveAverage: " ▲",
	classify.BelowAverage: " ▼",
	classify.AtAverage:    " =",
}

// refreshGrid copies the current page into the grid.
func (m *model) refreshGrid() {
	t := m.currentTable()
	if t == nil {
		m.grid.SetRows(nil)
		m.grid.SetColumns(nil)
		return
	}
	page := t.View()
	if m.col >= len(page.Columns) {
		m.col = 0
	}

	widths := make([]int, len(page.Columns))
	for i, c := range page.Columns {
		widths[i] = lipgloss.Width(c.Title) + 2
	}
	rows := make([]table.Row, len(page.Rows))
	for r, vr := range page.Rows {
		row := make(table.Row, len(vr.Cells))
		for i, c := range vr.Cells {
			row[i] = c.Display + tierMarks[c.Tier]
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
		rows[r] = row
	}

	cols := make([]table.Column, len(page.Columns))
	for i, c := range page.Columns {
		title := c.Title
		if page.Sort != nil && page.Sort.Key == c.Key {
			if page.Sort.Direction == tableutil.Descending {
				title += " ↓"
			} else {
				title += " ↑"
			}
		}
		if i == m.col {
			title = "[" + title + "]"
		}
		cols[i] = table.Column{Title: title, Width: min(max(widths[i], lipgloss.Width(title)), 32)}
	}

	// Rows must never be wider than the columns.
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	m.grid.SetHeight(m.gridHeight())
	if m.grid.Cursor() >= len(rows) {
		m.grid.SetCursor(max(len(rows)-1, 0))
	}
}

func (m model) View() string {
	switch m.screen {
	case loginScreen:
		return m.loginView()
	case textScreen:
		return m.textView()
	}
	return m.tableView()
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func (m model) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sampark Dashboard"))
	b.WriteString("\n\n")
	if m.cfg.Demo {
		b.WriteString(mutedStyle.Render("Demo mode: any phone number and OTP will do."))
		b.WriteString("\n\n")
	}
	if m.step == phoneStep {
		b.WriteString("Phone number\n")
		b.WriteString(boxStyle.Render(m.phoneInput.View()))
	} else {
		b.WriteString("Enter the OTP sent to " + m.phone + "\n")
		b.WriteString(boxStyle.Render(m.otpInput.View()))
	}
	b.WriteString("\n")
	if m.loading {
		b.WriteString("\nPlease wait...\n")
	}
	if m.status != "" {
		b.WriteString("\n" + okStyle.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("Error: "+sampark.Message(m.err)) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("Enter: continue | Esc: back/quit | Ctrl+C: quit"))
	return b.String()
}

func (m model) textView() string {
	if m.loading && m.text == "" {
		return "Loading..."
	}
	help := mutedStyle.Render("↑/↓: scroll | Esc/q: back")
	return m.viewport.View() + "\n" + help
}

func (m model) breadcrumb() string {
	parts := make([]string, len(m.stack))
	for i, f := range m.stack {
		name := f.name
		if name == "" {
			name = f.level.String() + " " + f.id
		}
		parts[i] = name
	}
	return strings.Join(parts, " › ")
}

func (m model) tableView() string {
	var b strings.Builder

	header := titleStyle.Render("Sampark Dashboard")
	if m.sess != nil {
		header += "  " + mutedStyle.Render(m.sess.User.Name+" · "+m.sess.User.Designation)
	}
	b.WriteString(header + "\n")
	b.WriteString(m.breadcrumb() + "\n\n")

	f := m.current()
	if f == nil {
		if m.loading {
			b.WriteString("Loading...\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render("Error: "+sampark.Message(m.err)) + "\n")
		}
		return b.String()
	}

	if f.summary != nil {
		b.WriteString(SummaryCards(*f.summary))
		b.WriteString("\n")
		if top := f.topTable(); top != nil {
			b.WriteString(mutedStyle.Render("Top teacher acceptance") + "\n")
			b.WriteString(TopPerformers(top, indicators.KeyTeacherAcceptance, summaryTop, 30))
			b.WriteString("\n")
		}
	}

	tabs := make([]string, len(f.tables))
	for i, t := range f.tables {
		label := " " + t.Kind().String() + " "
		if i == f.active {
			tabs[i] = titleStyle.Render(label)
		} else {
			tabs[i] = mutedStyle.Render(label)
		}
	}
	b.WriteString(strings.Join(tabs, " ") + "\n")

	t := f.table()
	if t == nil {
		b.WriteString("No tables at this level\n")
		return b.String()
	}
	page := t.View()

	b.WriteString(lipgloss.NewStyle().Bold(true).Render(page.Title) + "\n")
	b.WriteString(mutedStyle.Render(page.Subtitle) + "\n")
	b.WriteString(m.filterLine(t, page) + "\n")
	if m.searching {
		b.WriteString(boxStyle.Render(m.searchInput.View()) + "\n")
	}

	b.WriteString(m.grid.View() + "\n")
	b.WriteString(fmt.Sprintf("Page %d of %d (%d rows)\n",
		page.Page, tableutil.DisplayPages(page.TotalPages), page.TotalItems))

	if detail := m.selectedDetail(page); detail != "" {
		b.WriteString(detail + "\n")
	}
	if m.col < len(page.Columns) {
		c := page.Columns[m.col]
		if c.Rule.Mode != classify.None {
			counts := indicators.TierCounts(t)[c.Key]
			b.WriteString(c.Title + " " + TierDistribution(counts, 30) + "\n")
		}
	}

	if m.loading {
		b.WriteString("Loading...\n")
	}
	if m.status != "" {
		b.WriteString(okStyle.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+sampark.Message(m.err)) + "\n")
	}

	b.WriteString(TierLegend() + "\n")
	help := "←/→: column | s: sort | n/p: page | /: search | f: band | u: subject | tab: table | enter: open | backspace: up | c: copy CSV | e: export | a: summarize | ?: guide | q: quit"
	b.WriteString(mutedStyle.Render(help))
	return b.String()
}

func (m model) filterLine(t *indicators.Table, page indicators.Page) string {
	parts := []string{}
	if page.Search != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", page.Search))
	}
	if t.SupportsBand() {
		parts = append(parts, "Band: "+page.Filter)
	}
	if t.Kind() == indicators.Lagging {
		parts = append(parts, "Subject: "+page.Subject)
	}
	if page.Sort != nil {
		parts = append(parts, "Sort: "+page.Sort.Key+" "+page.Sort.Direction.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return mutedStyle.Render(strings.Join(parts, " | "))
}

// selectedDetail shows the selected row with every cell boxed in its tier
// colour.
func (m model) selectedDetail(page indicators.Page) string {
	cursor := m.grid.Cursor()
	if cursor < 0 || cursor >= len(page.Rows) {
		return ""
	}
	vr := page.Rows[cursor]
	name := lipgloss.NewStyle().Bold(true).Render(vr.Name)
	if vr.Target != nil {
		name += mutedStyle.Render("  (enter to open)")
	}

	boxes := make([]string, 0, len(vr.Cells))
	for i, c := range vr.Cells {
		if i == 0 {
			continue
		}
		boxes = append(boxes, InfoBox(page.Columns[i].Title, c))
	}
	if len(boxes) == 0 {
		return name
	}
	return name + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// launchTUI starts the dashboard browser, resuming a saved session when
// there is one.
func launchTUI(cfg *config.Config, src cmd.Source, lg *slog.Logger) error {
	if lg != nil {
		logger = lg
	}
	sess, err := cmd.LoadSession(context.Background(), cfg)
	if err != nil {
		sess = nil
	}

	p := tea.NewProgram(initialModel(cfg, src, sess), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if logger != nil {
			logger.Error("TUI crashed", "error", err)
		}
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
