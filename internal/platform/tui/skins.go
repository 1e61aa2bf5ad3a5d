package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/games/t2048"
	"github.com/vovakirdan/tile2048/internal/skins"
)

// SkinsKeyMap defines the key bindings for the skin manager screen.
type SkinsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Import   key.Binding
	Reset    key.Binding
	ResetAll key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SkinsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Import, k.Reset, k.ResetAll, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k SkinsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Import, k.Reset, k.ResetAll},
		{k.Back, k.Quit},
	}
}

// DefaultSkinsKeyMap returns default key bindings.
func DefaultSkinsKeyMap() SkinsKeyMap {
	return SkinsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "prev tile"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next tile"),
		),
		Import: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("enter", "import image"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "reset tile"),
		),
		ResetAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "reset all"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// SkinsModel lists every tile value and lets the user import or reset its image.
type SkinsModel struct {
	manager    *skins.Manager
	logger     *log.Logger
	renderer   *lipgloss.Renderer
	values     []int
	cursor     int
	input      textinput.Model
	importing  bool
	confirmAll bool
	readOnly   bool
	status     string
	statusErr  bool
	help       help.Model
	keys       SkinsKeyMap
	width      int
	height     int
	done       bool
	quitting   bool
}

// NewSkinsModel creates a skins screen. A nil manager shows the default palette only.
func NewSkinsModel(manager *skins.Manager, logger *log.Logger, width, height int) SkinsModel {
	if logger == nil {
		logger = log.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "/path/to/image.png"
	ti.CharLimit = 512
	ti.Width = 48
	ti.Prompt = "file: "

	h := help.New()
	h.Width = width

	return SkinsModel{
		manager:  manager,
		logger:   logger,
		values:   slices.Clone(skins.TileValues),
		input:    ti,
		help:     h,
		keys:     DefaultSkinsKeyMap(),
		width:    width,
		height:   height,
		readOnly: manager == nil,
	}
}

// WithReadOnly returns a copy that only displays skins.
func (m SkinsModel) WithReadOnly(readOnly bool) SkinsModel {
	m.readOnly = readOnly || m.manager == nil
	return m
}

// WithRenderer returns a copy that styles output with r.
func (m SkinsModel) WithRenderer(r *lipgloss.Renderer) SkinsModel {
	m.renderer = r
	return m
}

// Init initializes the skins model.
func (m SkinsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the skins screen.
func (m SkinsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.importing {
			return m.handleImportKey(msg)
		}
		if m.confirmAll {
			return m.handleConfirmKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.importing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SkinsModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.values)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Import):
		if m.readOnly {
			m.setStatus("skins are read-only here", true)
			return m, nil
		}
		m.importing = true
		m.status = ""
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Reset):
		if m.readOnly {
			m.setStatus("skins are read-only here", true)
			return m, nil
		}
		value := m.values[m.cursor]
		if err := m.manager.Reset(value); err != nil {
			m.logger.Error("cannot reset skin", "value", value, "err", err)
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("tile %d reset", value), false)

	case key.Matches(msg, m.keys.ResetAll):
		if m.readOnly {
			m.setStatus("skins are read-only here", true)
			return m, nil
		}
		m.confirmAll = true
		m.setStatus("reset every tile image? (y/n)", false)
	}

	return m, nil
}

func (m SkinsModel) handleImportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.importing = false
		m.input.Blur()
		m.status = ""
		return m, nil

	case "enter":
		m.importing = false
		m.input.Blur()
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}
		value := m.values[m.cursor]
		if err := m.manager.ImportFile(value, path); err != nil {
			m.logger.Error("cannot import skin", "value", value, "path", path, "err", err)
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.logger.Info("skin imported", "value", value, "path", path)
		m.setStatus(fmt.Sprintf("tile %d skinned", value), false)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m SkinsModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmAll = false
	if msg.String() != "y" && msg.String() != "Y" {
		m.status = ""
		return m, nil
	}
	if err := m.manager.ResetAll(); err != nil {
		m.logger.Error("cannot reset skins", "err", err)
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.setStatus("all tiles reset", false)
	return m, nil
}

func (m *SkinsModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m SkinsModel) style() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

// swatch renders a small block in the tile's current colour.
func (m SkinsModel) swatch(value int) (string, bool) {
	var (
		c      core.Color
		custom bool
	)
	if m.manager != nil {
		if dc, ok := m.manager.TileColor(value); ok {
			c, custom = dc, true
		} else if _, ok := m.manager.Get(value); ok {
			custom = true
		}
	}
	if !c.IsRGB() {
		hex, ok := t2048.DefaultTileColors[value]
		if !ok {
			hex = "#CCCCCC"
		}
		c, _ = core.ParseHex(hex)
	}
	return m.style().Background(lipgloss.Color(c.Hex())).Render("      "), custom
}

// View renders the skins screen.
func (m SkinsModel) View() string {
	if m.quitting || m.done {
		return ""
	}

	var b strings.Builder

	titleStyle := m.style().Bold(true).Foreground(lipgloss.Color("229"))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(centerText("TILE SKINS", m.width)))
	b.WriteString("\n\n")

	selected := m.style().Bold(true).Foreground(lipgloss.Color("229"))
	dim := m.style().Foreground(lipgloss.Color("241"))

	var list strings.Builder
	for i, v := range m.values {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		sw, custom := m.swatch(v)
		label := dim.Render("default")
		if custom {
			label = "custom"
		}
		line := fmt.Sprintf("%s%5d %s %s", cursor, v, sw, label)
		if i == m.cursor {
			line = selected.Render(fmt.Sprintf("%s%5d ", cursor, v)) + sw + " " + label
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	box := m.style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 2)
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box.Render(strings.TrimRight(list.String(), "\n"))))
	b.WriteString("\n\n")

	if m.importing {
		b.WriteString(centerText(fmt.Sprintf("Image for tile %d", m.values[m.cursor]), m.width))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View()))
		b.WriteString("\n\n")
	}

	if m.status != "" {
		st := m.style().Foreground(lipgloss.Color("42"))
		if m.statusErr {
			st = m.style().Foreground(lipgloss.Color("203"))
		}
		b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, st.Render(m.status)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dim.Render(m.help.View(m.keys)))

	return b.String()
}

// Cursor returns the selected tile value.
func (m SkinsModel) Cursor() int {
	return m.values[m.cursor]
}

// Done returns true if user went back.
func (m SkinsModel) Done() bool {
	return m.done
}

// IsQuitting returns true if user wants to quit entirely.
func (m SkinsModel) IsQuitting() bool {
	return m.quitting
}

// RunSkins runs the skins screen on its own.
// Returns true if user wants to go back to menu, false if quitting.
func RunSkins(manager *skins.Manager, logger *log.Logger, width, height int) (goBack bool, err error) {
	model := NewSkinsModel(manager, logger, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}

	m, ok := finalModel.(SkinsModel)
	if !ok {
		return false, nil
	}
	return m.Done(), nil
}
