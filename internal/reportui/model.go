// Package reportui provides the Bubble Tea report preview.
package reportui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/minedigest/internal/digest"
	"github.com/verte-zerg/minedigest/internal/model"
	"github.com/verte-zerg/minedigest/internal/render"
	"github.com/verte-zerg/minedigest/internal/stats"
)

const (
	plotHeight   = 8
	sourceLimit  = 10
	defaultWidth = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	sentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Loader computes the report for a day.
type Loader interface {
	Preview(ctx context.Context, daysAgo int) (digest.Preview, error)
}

type keyMap struct {
	Older  key.Binding
	Newer  key.Binding
	Copy   key.Binding
	Reload key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Older, k.Newer, k.Copy, k.Reload, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Older:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "older")),
	Newer:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "newer")),
	Copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type previewMsg struct {
	daysAgo int
	preview digest.Preview
	err     error
}

// Model implements the Bubble Tea preview UI.
type Model struct {
	loader      Loader
	daysAgo     int
	maxDaysBack int

	preview digest.Preview
	loaded  bool
	errMsg  string
	notice  string

	viewport viewport.Model
	help     help.Model
	copy     func(string) error

	width  int
	height int
}

// NewModel constructs a preview starting daysAgo days back. Navigation is
// limited to today and maxDaysBack days before it.
func NewModel(loader Loader, daysAgo, maxDaysBack int) *Model {
	if maxDaysBack < 1 {
		maxDaysBack = digest.DefaultMaxDaysBack
	}
	return &Model{
		loader:      loader,
		daysAgo:     clamp(daysAgo, 0, maxDaysBack),
		maxDaysBack: maxDaysBack,
		viewport:    viewport.New(0, 0),
		help:        help.New(),
		copy:        clipboard.WriteAll,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContent()
		return m, nil
	case previewMsg:
		if msg.daysAgo != m.daysAgo {
			return m, nil
		}
		m.loaded = true
		m.preview = msg.preview
		m.errMsg = ""
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		m.renderContent()
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Older):
			return m, m.move(1)
		case key.Matches(msg, keys.Newer):
			return m, m.move(-1)
		case key.Matches(msg, keys.Reload):
			m.notice = ""
			return m, m.load()
		case key.Matches(msg, keys.Copy):
			m.copySummary()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.viewport.View(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// DaysAgo returns the day currently shown.
func (m *Model) DaysAgo() int {
	return m.daysAgo
}

func (m *Model) load() tea.Cmd {
	daysAgo := m.daysAgo
	loader := m.loader
	return func() tea.Msg {
		p, err := loader.Preview(context.Background(), daysAgo)
		return previewMsg{daysAgo: daysAgo, preview: p, err: err}
	}
}

func (m *Model) move(delta int) tea.Cmd {
	next := clamp(m.daysAgo+delta, 0, m.maxDaysBack)
	if next == m.daysAgo {
		return nil
	}
	m.daysAgo = next
	m.loaded = false
	m.preview = digest.Preview{}
	m.notice = ""
	m.renderContent()
	return m.load()
}

func (m *Model) copySummary() {
	if m.preview.Digest == nil {
		m.notice = "Nothing to copy."
		return
	}
	if err := m.copy(render.Text(m.preview.Digest.Summary)); err != nil {
		m.notice = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.notice = "Copied report to clipboard."
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 1
	if m.notice != "" || m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.viewport.Width = m.width
	m.viewport.Height = bodyHeight
	m.help.Width = m.width
}

func (m *Model) renderHeader() string {
	day := m.preview.Day
	if !m.loaded || day == "" {
		day = "loading..."
	}
	nav := activeNavStyle.Render(day)
	state := headerStyle.Render("pending")
	if m.preview.Sent {
		state = sentStyle.Render("sent")
	}
	info := headerStyle.Render(relativeDay(m.daysAgo)+"  marker: ") + state
	subtitle := ""
	if m.loaded && !m.preview.Report.Day.IsZero() {
		subtitle = m.preview.Report.Day.Format("Monday, January 2, 2006")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, nav, " ", info) + "\n" + headerStyle.Render(truncateLine(subtitle, m.width))
}

func relativeDay(daysAgo int) string {
	switch daysAgo {
	case 0:
		return "today"
	case 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", daysAgo)
	}
}

func (m *Model) renderFooter() string {
	lines := []string{m.help.ShortHelpView(keys.ShortHelp())}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(truncateLine(m.errMsg, m.width)))
	} else if m.notice != "" {
		lines = append(lines, headerStyle.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderContent() {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	m.viewport.SetContent(renderPreview(m.preview, m.loaded, m.errMsg, width))
	m.viewport.GotoTop()
}

func renderPreview(p digest.Preview, loaded bool, errMsg string, width int) string {
	switch {
	case !loaded:
		return "Loading..."
	case errMsg != "":
		return "Failed to build report."
	case p.Result.Status == model.StatsUnavailable:
		return errorStyle.Render(fmt.Sprintf("Event store unavailable: %v", p.Result.Reason))
	case p.Result.Stats.Empty():
		return "No activity recorded for this day. Nothing would be sent."
	}
	parts := []string{renderCards(p.Report, width)}
	if plot := renderTrend(p.Report.Trend, width); plot != "" {
		parts = append(parts, plot)
	}
	parts = append(parts, tableStyle.Render(strings.Join(stats.FormatSources(p.Report.Stats.Sources, sourceLimit), "\n")))
	return strings.Join(parts, "\n\n")
}

func renderCards(r model.Report, width int) string {
	st := r.Stats
	cards := []string{
		metricCard("Play Time", fmt.Sprintf("%.1f h", st.ActiveSpanHours)),
		metricCard("Characters", humanize.Comma(int64(st.TotalChars))),
		metricCard("Streak", fmt.Sprintf("%d d", r.Streak)),
		metricCard("Anki Cards", humanize.Comma(int64(st.AnkiCardCount))),
		metricCard("Games", fmt.Sprintf("%d", st.DistinctSourceCount)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderTrend(points []model.TrendPoint, width int) string {
	if len(points) == 0 {
		return ""
	}
	var buf bytes.Buffer
	title := fmt.Sprintf("Activity, past %d days", len(points))
	if err := stats.PlotTrendWithColor(&buf, title, points, stats.PlotWidthFor(width), plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render trend: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
