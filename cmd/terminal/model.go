package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

const maxLogLines = 8

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	gridStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	helpStyle   = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	tileStyles = map[mb.TileView]lipgloss.Style{
		mb.TileViewSea:  lipgloss.NewStyle().Foreground(lipgloss.Color("24")),
		mb.TileViewShip: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		mb.TileViewHit:  lipgloss.NewStyle().Foreground(lipgloss.Color("202")).Bold(true),
		mb.TileViewMiss: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
	tileGlyphs = map[mb.TileView]string{
		mb.TileViewSea:  "~",
		mb.TileViewShip: "#",
		mb.TileViewHit:  "X",
		mb.TileViewMiss: "o",
	}
)

// model only renders the match and forwards keys to it.
type model struct {
	match      *mb.Match
	difficulty mb.Difficulty
	seed       uint64
	cursorRow  int
	cursorCol  int
	log        []string
	err        error
}

func newModel(difficulty mb.Difficulty, seed uint64) (model, error) {
	m := model{difficulty: difficulty, seed: seed}
	if err := m.newMatch(); err != nil {
		return model{}, err
	}
	return m, nil
}

func (m *model) newMatch() error {
	opts := []mb.MatchOption{}
	if m.seed != 0 {
		opts = append(opts, mb.WithSeed(m.seed))
		m.seed++
	}

	match, err := mb.NewMatch(m.difficulty, opts...)
	if err != nil {
		return err
	}
	m.match = match
	m.log = nil
	m.err = nil
	m.addLog(fmt.Sprintf("new %s match %s, press r to deploy", m.difficulty, match.Uuid()))
	return nil
}

func (m *model) addLog(line string) {
	m.log = append([]string{line}, m.log...)
	if len(m.log) > maxLogLines {
		m.log = m.log[:maxLogLines]
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.err = nil
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		m.cursorRow = (m.cursorRow + mb.GridHeight - 1) % mb.GridHeight
	case "down", "j":
		m.cursorRow = (m.cursorRow + 1) % mb.GridHeight
	case "left", "h":
		m.cursorCol = (m.cursorCol + mb.GridWidth - 1) % mb.GridWidth
	case "right", "l":
		m.cursorCol = (m.cursorCol + 1) % mb.GridWidth

	case "r":
		m.err = m.match.RandomizeDeployment()

	case "s":
		if m.err = m.match.EndDeployment(); m.err == nil {
			m.addLog("fleet deployed, fire with enter")
		}

	case "enter", " ":
		m.attack()

	case "n":
		m.err = m.newMatch()
	}
	return m, nil
}

func (m *model) attack() {
	report, err := m.match.Attack(m.cursorRow, m.cursorCol)
	if err != nil {
		m.err = err
		return
	}

	m.addLog("you: " + report.Human.String())
	for _, r := range report.Computer {
		m.addLog(fmt.Sprintf("computer [%d,%d]: %s", r.Column(), r.Row(), r.String()))
	}

	if report.Over {
		if report.Winner == mb.SideHuman {
			m.addLog(fmt.Sprintf("you won with score %d, n for a new match", m.match.Human().Score()))
		} else {
			m.addLog("the computer won, n for a new match")
		}
	}
}

func renderGrid(title string, view mb.GridView, cursor bool, row, col int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n  ")
	for c := 0; c < view.Width(); c++ {
		b.WriteString(fmt.Sprintf("%d ", c))
	}
	b.WriteString("\n")

	for r := 0; r < view.Height(); r++ {
		b.WriteString(fmt.Sprintf("%c ", 'A'+r))
		for c := 0; c < view.Width(); c++ {
			tile := view.TileView(r, c)
			cell := tileStyles[tile].Render(tileGlyphs[tile])
			if cursor && r == row && c == col {
				cell = cursorStyle.Render(tileGlyphs[tile])
			}
			b.WriteString(cell + " ")
		}
		b.WriteString("\n")
	}
	return gridStyle.Render(b.String())
}

func (m model) View() string {
	human := m.match.Human()
	discovering := m.match.Phase() == mb.MatchPhaseDiscovering

	grids := lipgloss.JoinHorizontal(lipgloss.Top,
		renderGrid("Your fleet", m.match.HumanView(), false, 0, 0),
		renderGrid("Enemy waters", m.match.EnemyView(), discovering, m.cursorRow, m.cursorCol),
	)

	status := fmt.Sprintf("%s | %s | shots %d hits %d missed %d | score %d",
		m.difficulty, m.match.Phase(), human.Shots(), human.Hits(), human.Missed(), human.Score())

	s := grids + "\n" + status + "\n\n"
	if m.err != nil {
		s += errStyle.Render(m.err.Error()) + "\n"
	}
	for _, line := range m.log {
		s += line + "\n"
	}
	s += helpStyle.Render("\narrows move, r deploy, s start, enter fire, n new match, q quit\n")
	return s
}
