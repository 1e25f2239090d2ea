package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

func main() {
	difficulty := flag.Uint("difficulty", uint(mb.GameDifficultyMedium), "0 easy, 1 medium, 2 hard")
	seed := flag.Uint64("seed", 0, "seed of the first match, 0 for a random one")
	flag.Parse()

	m, err := newModel(mb.Difficulty(*difficulty), *seed)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
