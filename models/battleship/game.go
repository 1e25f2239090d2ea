package battleship

import (
	"time"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

type MatchPhase uint8

const (
	MatchPhaseDeploying MatchPhase = iota
	MatchPhaseDiscovering
	MatchPhaseEndingGame
)

func (p MatchPhase) String() string {
	switch p {
	case MatchPhaseDiscovering:
		return "discovering"
	case MatchPhaseEndingGame:
		return "ending game"
	default:
		return "deploying"
	}
}

type Side uint8

const (
	SideHuman Side = iota
	SideComputer
)

func (s Side) String() string {
	if s == SideComputer {
		return "computer"
	}
	return "human"
}

// TurnReport is everything that happened after one human shot:
// the shot itself and the computer shots it triggered.
type TurnReport struct {
	Human    AttackResult
	Computer []AttackResult
	Phase    MatchPhase
	Winner   Side
	Over     bool
}

type MatchOption func(*Match)

func WithSeed(seed uint64) MatchOption {
	return func(m *Match) {
		m.seed = seed
	}
}

// WithChangeListener is told which side's grid changed after
// every mutating grid call.
func WithChangeListener(fn func(Side)) MatchOption {
	return func(m *Match) {
		m.onChange = fn
	}
}

// WithOpponent replaces the built in AI strategy. It gets the
// human grid as the computer is allowed to see it.
func WithOpponent(newOpponent func(enemy GridView, rng *rand.Rand) Opponent) MatchOption {
	return func(m *Match) {
		m.newOpponent = newOpponent
	}
}

// Match is one human against the computer. It is not safe for
// concurrent use; a single session drives it.
type Match struct {
	uuid       string
	difficulty Difficulty
	phase      MatchPhase
	human      *Player
	computer   *Player
	opponent   Opponent
	rng        *rand.Rand
	seed       uint64
	winner     Side
	turns      int
	createdAt  time.Time

	// set while a shot and its consequences are resolved
	resolving bool

	onChange    func(Side)
	newOpponent func(enemy GridView, rng *rand.Rand) Opponent
}

func NewMatch(difficulty Difficulty, opts ...MatchOption) (*Match, error) {
	if !difficulty.IsValid() {
		return nil, cerr.ErrInvalidGameDifficulty(uint8(difficulty))
	}

	m := &Match{
		uuid:       uuid.NewString()[:6],
		difficulty: difficulty,
		phase:      MatchPhaseDeploying,
		seed:       uint64(time.Now().UnixNano()),
		createdAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.rng = rand.New(rand.NewSource(m.seed))

	humanGrid := NewGrid(WithGridChangeListener(func(*Grid) { m.notify(SideHuman) }))
	computerGrid := NewGrid(WithGridChangeListener(func(*Grid) { m.notify(SideComputer) }))

	m.human = NewPlayer(true, humanGrid, computerGrid.EnemyView())
	m.computer = NewPlayer(false, computerGrid, humanGrid.EnemyView())

	if m.newOpponent != nil {
		m.opponent = m.newOpponent(m.computer.enemy, m.rng)
	} else {
		m.opponent = NewAIStrategy(difficulty, m.computer.enemy, m.rng)
	}

	// The computer is always ready.
	if err := computerGrid.RandomizeDeployment(m.rng); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Match) Uuid() string           { return m.uuid }
func (m *Match) Difficulty() Difficulty { return m.difficulty }
func (m *Match) Phase() MatchPhase      { return m.phase }
func (m *Match) Human() *Player         { return m.human }
func (m *Match) Computer() *Player      { return m.computer }
func (m *Match) Opponent() Opponent     { return m.opponent }
func (m *Match) Seed() uint64           { return m.seed }
func (m *Match) Turns() int             { return m.turns }
func (m *Match) CreatedAt() time.Time   { return m.createdAt }
func (m *Match) IsOver() bool           { return m.phase == MatchPhaseEndingGame }

// Winner is only meaningful once the match is over.
func (m *Match) Winner() (Side, bool) {
	return m.winner, m.IsOver()
}

// HumanView is the human's own grid with the ships visible.
func (m *Match) HumanView() GridView {
	return m.human.grid
}

// EnemyView is the computer's grid as the human sees it.
func (m *Match) EnemyView() GridView {
	return m.human.enemy
}

func (m *Match) notify(side Side) {
	if m.onChange != nil {
		m.onChange(side)
	}
}

func (m *Match) requirePhase(phase MatchPhase) error {
	if m.phase != phase {
		return cerr.ErrWrongMatchPhase(phase.String(), m.phase.String())
	}
	return nil
}

func (m *Match) PlaceShip(row, col int, kind ShipKind, direction Direction) error {
	if err := m.requirePhase(MatchPhaseDeploying); err != nil {
		return err
	}
	return m.human.grid.PlaceShip(row, col, kind, direction)
}

func (m *Match) MoveShip(row, col int, kind ShipKind, direction Direction) error {
	if err := m.requirePhase(MatchPhaseDeploying); err != nil {
		return err
	}
	return m.human.grid.MoveShip(row, col, kind, direction)
}

func (m *Match) RandomizeDeployment() error {
	if err := m.requirePhase(MatchPhaseDeploying); err != nil {
		return err
	}
	return m.human.grid.RandomizeDeployment(m.rng)
}

// EndDeployment starts the shooting once the human fleet is
// fully deployed.
func (m *Match) EndDeployment() error {
	if err := m.requirePhase(MatchPhaseDeploying); err != nil {
		return err
	}
	if !m.human.grid.AllDeployed() {
		return cerr.ErrNotAllShipsDeployed()
	}

	m.phase = MatchPhaseDiscovering
	return nil
}

// Attack fires the human shot at (row, col). A miss hands the
// turn to the computer, which keeps shooting until it misses
// or wins; control then returns to the human.
func (m *Match) Attack(row, col int) (TurnReport, error) {
	if err := m.requirePhase(MatchPhaseDiscovering); err != nil {
		return TurnReport{}, err
	}
	if m.resolving {
		return TurnReport{}, cerr.ErrTurnInProgress()
	}
	if !m.computer.grid.InBounds(row, col) {
		return TurnReport{}, cerr.ErrXorYOutOfGridBound(row, col)
	}

	m.resolving = true
	defer func() { m.resolving = false }()

	m.turns++
	report := TurnReport{Human: m.shoot(m.human, m.computer.grid, row, col)}

	var err error
	switch report.Human.Outcome() {
	case AttackGameOver:
		m.finish(SideHuman)

	case AttackMiss:
		report.Computer, err = m.computerTurn()
	}

	report.Phase = m.phase
	report.Winner, report.Over = m.Winner()
	return report, err
}

func (m *Match) computerTurn() ([]AttackResult, error) {
	results := make([]AttackResult, 0, 1)

	for {
		coords, err := m.opponent.GenerateCoords()
		if err != nil {
			return results, err
		}
		if !m.human.grid.InBounds(coords.Row, coords.Col) {
			return results, cerr.ErrXorYOutOfGridBound(coords.Row, coords.Col)
		}

		result := m.shoot(m.computer, m.human.grid, coords.Row, coords.Col)
		results = append(results, result)

		if err := m.opponent.ObserveResult(result); err != nil {
			return results, err
		}

		switch result.Outcome() {
		case AttackGameOver:
			m.finish(SideComputer)
			return results, nil
		case AttackMiss:
			return results, nil
		case AttackShotAlready:
			// a generator that repeats itself would loop forever
			return results, cerr.ErrShotAlreadyObserved(coords.Row, coords.Col)
		}
	}
}

func (m *Match) shoot(shooter *Player, target *Grid, row, col int) AttackResult {
	return shooter.Fire(target, row, col)
}

func (m *Match) finish(winner Side) {
	m.winner = winner
	m.phase = MatchPhaseEndingGame
}
