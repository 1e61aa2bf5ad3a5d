package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tile2048/internal/registry"
	"github.com/vovakirdan/tile2048/internal/storage"
)

const scoreLimit = 100

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Next key.Binding
	Prev key.Binding
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Up, k.Down, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
		Next: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/tab", "next board")),
		Prev: key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "prev board")),
		Back: key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc", "back")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ScoreboardModel lists the best finished games of one board at a time.
type ScoreboardModel struct {
	boards []registry.GameInfo
	board  int
	store  *storage.Store

	scores  []storage.ScoreEntry
	stats   *storage.GameStats
	loadErr error

	table table.Model
	help  help.Model
	keys  ScoreboardKeyMap

	width, height int
	quitting      bool
	goingBack     bool
}

// NewScoreboardModel creates a scoreboard showing initialID first when it is
// registered. A nil store shows an empty board.
func NewScoreboardModel(store *storage.Store, width, height int, initialID string) ScoreboardModel {
	m := ScoreboardModel{
		boards: registry.List(),
		store:  store,
		help:   help.New(),
		keys:   DefaultScoreboardKeyMap(),
		width:  width,
		height: height,
	}
	for i, b := range m.boards {
		if b.ID == initialID {
			m.board = i
		}
	}
	m.table = scoreTable(width, height)
	m.reload()
	return m
}

func scoreTable(width, height int) table.Model {
	dateW := 14
	if width > 60 {
		dateW = min(width-34, 20)
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Score", Width: 10},
			{Title: "Tile", Width: 6},
			{Title: "Date", Width: dateW},
		}),
		table.WithFocused(true),
		table.WithHeight(max(height-10, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// reload fetches scores and aggregates for the selected board.
func (m *ScoreboardModel) reload() {
	m.scores, m.stats, m.loadErr = nil, nil, nil
	if m.store != nil && len(m.boards) > 0 {
		id := m.boards[m.board].ID
		m.scores, m.loadErr = m.store.TopScores(id, scoreLimit)
		if stats, err := m.store.GameStats(id); err == nil {
			m.stats = stats
		}
	}

	rows := make([]table.Row, len(m.scores))
	for i, s := range m.scores {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			strconv.Itoa(s.Score),
			strconv.Itoa(s.MaxTile),
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *ScoreboardModel) step(delta int) {
	if n := len(m.boards); n > 0 {
		m.board = (m.board + delta + n) % n
		m.reload()
	}
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.step(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.step(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = scoreTable(m.width, m.height)
		m.reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).
		Render(centerText("HIGH SCORES", m.width)))
	b.WriteString("\n\n")

	if len(m.boards) > 0 {
		sel := fmt.Sprintf("◀  %s  ▶", m.boards[m.board].Title)
		if len(m.boards) > 1 {
			sel += dim.Render(fmt.Sprintf("  %d/%d", m.board+1, len(m.boards)))
		}
		b.WriteString(centerText(sel, m.width))
		b.WriteString("\n\n")
	}

	var body string
	switch {
	case m.loadErr != nil:
		body = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Padding(1, 2).
			Render("Could not load scores:\n" + m.loadErr.Error())
	case len(m.scores) == 0:
		body = dim.Italic(true).Padding(1, 2).
			Render("No finished games on this board yet.")
	default:
		body = m.table.View()
	}
	frame := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	b.WriteString(centerText(frame.Render(body), m.width))
	b.WriteString("\n")

	if m.stats != nil && m.stats.GamesCount > 0 {
		b.WriteString("\n")
		b.WriteString(centerText(fmt.Sprintf("games %d · best %d · best tile %d · avg %.0f",
			m.stats.GamesCount, m.stats.HighScore, m.stats.BestTile, m.stats.AvgScore), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render(m.help.View(m.keys)))
	return b.String()
}

// IsGoingBack reports whether the user asked to return to the menu.
func (m ScoreboardModel) IsGoingBack() bool { return m.goingBack }

// IsQuitting reports whether the user asked to quit entirely.
func (m ScoreboardModel) IsQuitting() bool { return m.quitting }

// RunScoreboard runs the scoreboard as its own program.
// goBack is true when the user left with back rather than quit.
func RunScoreboard(store *storage.Store, width, height int, initialID string) (goBack bool, err error) {
	final, err := tea.NewProgram(NewScoreboardModel(store, width, height, initialID), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(ScoreboardModel)
	return ok && m.IsGoingBack(), nil
}
