package battleship

import (
	"testing"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// scriptedOpponent shoots a fixed list of coordinates and
// accepts whatever comes back.
type scriptedOpponent struct {
	shots    []Coordinates
	observed []AttackResult
}

func (s *scriptedOpponent) GenerateCoords() (Coordinates, error) {
	if len(s.shots) == 0 {
		return Coordinates{}, cerr.ErrNoTilesLeft()
	}
	c := s.shots[0]
	s.shots = s.shots[1:]
	return c, nil
}

func (s *scriptedOpponent) ObserveResult(result AttackResult) error {
	s.observed = append(s.observed, result)
	return nil
}

func withScript(script *scriptedOpponent) MatchOption {
	return WithOpponent(func(GridView, *rand.Rand) Opponent { return script })
}

// deployFixedFleet puts ship n on row 2n starting at column 0.
func deployFixedFleet(t *testing.T, m *Match) []Coordinates {
	t.Helper()

	var tiles []Coordinates
	for i, kind := range AllShipKinds() {
		require.NoError(t, m.PlaceShip(i*2, 0, kind, DirectionLeftRight))
		for col := 0; col < kind.Size(); col++ {
			tiles = append(tiles, NewCoordinates(i*2, col))
		}
	}
	return tiles
}

func firstView(t *testing.T, v GridView, want TileView) Coordinates {
	t.Helper()

	for row := 0; row < v.Height(); row++ {
		for col := 0; col < v.Width(); col++ {
			if v.TileView(row, col) == want {
				return NewCoordinates(row, col)
			}
		}
	}
	t.Fatalf("no %s tile left", want)
	return Coordinates{}
}

func startedMatch(t *testing.T, difficulty Difficulty, opts ...MatchOption) *Match {
	t.Helper()

	m, err := NewMatch(difficulty, append([]MatchOption{WithSeed(21)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, m.RandomizeDeployment())
	require.NoError(t, m.EndDeployment())
	return m
}

func TestNewMatch(t *testing.T) {
	_, err := NewMatch(Difficulty(9))
	require.ErrorIs(t, err, cerr.ErrInvalidDifficulty)

	m, err := NewMatch(GameDifficultyMedium, WithSeed(1))
	require.NoError(t, err)
	require.Len(t, m.Uuid(), 6)
	require.Equal(t, MatchPhaseDeploying, m.Phase())
	require.Equal(t, uint64(1), m.Seed())
	require.True(t, m.Computer().Grid().AllDeployed())
	require.False(t, m.Human().Grid().AllDeployed())
	require.True(t, m.Human().IsHuman())
	require.False(t, m.Computer().IsHuman())

	// the computer fleet is hidden from the human
	require.Zero(t, countView(m.EnemyView(), TileViewShip))
	require.Equal(t, 15, countView(m.Computer().Grid(), TileViewShip))
}

func TestMatchDeploymentPhase(t *testing.T) {
	m, err := NewMatch(GameDifficultyEasy, WithSeed(2))
	require.NoError(t, err)

	_, err = m.Attack(0, 0)
	require.ErrorIs(t, err, cerr.ErrMatchPhase)

	require.ErrorIs(t, m.EndDeployment(), cerr.ErrShipsNotDeployed)

	require.ErrorIs(t, m.PlaceShip(0, 8, ShipDestroyer, DirectionLeftRight), cerr.ErrInvalidPlacement)
	require.NoError(t, m.MoveShip(0, 7, ShipDestroyer, DirectionLeftRight))
	require.ErrorIs(t, m.EndDeployment(), cerr.ErrShipsNotDeployed)

	require.NoError(t, m.RandomizeDeployment())
	require.NoError(t, m.EndDeployment())
	require.Equal(t, MatchPhaseDiscovering, m.Phase())

	require.ErrorIs(t, m.PlaceShip(0, 0, ShipTug, DirectionLeftRight), cerr.ErrMatchPhase)
	require.ErrorIs(t, m.RandomizeDeployment(), cerr.ErrMatchPhase)
	require.ErrorIs(t, m.EndDeployment(), cerr.ErrMatchPhase)
}

func TestMatchAttackOutOfRange(t *testing.T) {
	m := startedMatch(t, GameDifficultyEasy)

	_, err := m.Attack(GridHeight, 0)
	require.ErrorIs(t, err, cerr.ErrOutOfGridBound)
	_, err = m.Attack(0, -1)
	require.ErrorIs(t, err, cerr.ErrOutOfGridBound)

	require.Zero(t, m.Turns())
	require.Zero(t, m.Human().Shots())
}

func TestMatchHumanHitKeepsTurn(t *testing.T) {
	m := startedMatch(t, GameDifficultyEasy)
	battleship, err := m.Computer().Grid().Ship(ShipBattleship)
	require.NoError(t, err)
	target := battleship.Tiles()[0]

	report, err := m.Attack(target.Row, target.Col)
	require.NoError(t, err)
	require.Equal(t, AttackHit, report.Human.Outcome())
	require.Empty(t, report.Computer)
	require.Equal(t, MatchPhaseDiscovering, report.Phase)
	require.False(t, report.Over)

	again, err := m.Attack(target.Row, target.Col)
	require.NoError(t, err)
	require.Equal(t, AttackShotAlready, again.Human.Outcome())
	require.Empty(t, again.Computer)

	require.Equal(t, 1, m.Human().Shots())
	require.Equal(t, 1, m.Human().Hits())
	require.Equal(t, 2, m.Turns())
}

func TestMatchHumanMissHandsTurnToComputer(t *testing.T) {
	m := startedMatch(t, GameDifficultyMedium)
	sea := firstView(t, m.Computer().Grid(), TileViewSea)

	report, err := m.Attack(sea.Row, sea.Col)
	require.NoError(t, err)
	require.Equal(t, AttackMiss, report.Human.Outcome())
	require.NotEmpty(t, report.Computer)

	last := report.Computer[len(report.Computer)-1]
	require.Contains(t, []AttackOutcome{AttackMiss, AttackGameOver}, last.Outcome())
	for _, r := range report.Computer[:len(report.Computer)-1] {
		require.Contains(t, []AttackOutcome{AttackHit, AttackDestroyed}, r.Outcome())
	}
	require.Equal(t, len(report.Computer), m.Computer().Shots())
}

func TestMatchHumanWins(t *testing.T) {
	m := startedMatch(t, GameDifficultyHard)

	var tiles []Coordinates
	for _, ship := range m.Computer().Grid().Ships() {
		tiles = append(tiles, ship.Tiles()...)
	}

	var report TurnReport
	for _, c := range tiles {
		var err error
		report, err = m.Attack(c.Row, c.Col)
		require.NoError(t, err)
		require.Empty(t, report.Computer)
	}

	require.Equal(t, AttackGameOver, report.Human.Outcome())
	require.True(t, report.Over)
	require.Equal(t, SideHuman, report.Winner)
	require.Equal(t, MatchPhaseEndingGame, m.Phase())

	winner, over := m.Winner()
	require.True(t, over)
	require.Equal(t, SideHuman, winner)
	require.Equal(t, 15*12-15, m.Human().Score())
	require.Zero(t, m.Computer().Score())

	_, err := m.Attack(0, 0)
	require.ErrorIs(t, err, cerr.ErrMatchPhase)
}

func TestMatchComputerWins(t *testing.T) {
	script := &scriptedOpponent{}
	m, err := NewMatch(GameDifficultyEasy, WithSeed(5), withScript(script))
	require.NoError(t, err)

	script.shots = deployFixedFleet(t, m)
	require.NoError(t, m.EndDeployment())

	sea := firstView(t, m.Computer().Grid(), TileViewSea)
	report, err := m.Attack(sea.Row, sea.Col)
	require.NoError(t, err)

	require.Len(t, report.Computer, 15)
	require.Len(t, script.observed, 15)
	require.Equal(t, AttackGameOver, report.Computer[14].Outcome())
	require.True(t, report.Over)
	require.Equal(t, SideComputer, report.Winner)
	require.True(t, m.Human().IsDestroyed())
	require.Equal(t, 5, m.Human().Grid().ShipsKilled())
}

func TestMatchRejectsRepeatedComputerShot(t *testing.T) {
	script := &scriptedOpponent{shots: []Coordinates{{9, 9}, {9, 9}}}
	m, err := NewMatch(GameDifficultyEasy, WithSeed(6), withScript(script))
	require.NoError(t, err)
	deployFixedFleet(t, m)
	require.NoError(t, m.EndDeployment())

	computerSea := firstView(t, m.Computer().Grid(), TileViewSea)
	report, err := m.Attack(computerSea.Row, computerSea.Col)
	require.NoError(t, err)
	require.Len(t, report.Computer, 1)
	require.Equal(t, AttackMiss, report.Computer[0].Outcome())

	computerSea = firstView(t, m.Computer().Grid(), TileViewSea)
	report, err = m.Attack(computerSea.Row, computerSea.Col)
	require.ErrorIs(t, err, cerr.ErrProtocolViolation)
	require.Equal(t, AttackShotAlready, report.Computer[0].Outcome())
}

func TestMatchRejectsReentrantAttack(t *testing.T) {
	var (
		m         *Match
		reentrant error
		notified  bool
	)
	m, err := NewMatch(GameDifficultyEasy, WithSeed(8), WithChangeListener(func(side Side) {
		if m != nil && side == SideComputer && m.Phase() == MatchPhaseDiscovering && !notified {
			notified = true
			_, reentrant = m.Attack(0, 0)
		}
	}))
	require.NoError(t, err)
	require.NoError(t, m.RandomizeDeployment())
	require.NoError(t, m.EndDeployment())

	_, err = m.Attack(5, 5)
	require.NoError(t, err)
	require.True(t, notified)
	require.ErrorIs(t, reentrant, cerr.ErrProtocolViolation)
	require.Equal(t, 1, m.Turns())
}

func TestMatchChangeListener(t *testing.T) {
	changes := map[Side]int{}
	m, err := NewMatch(GameDifficultyEasy, WithSeed(3), WithChangeListener(func(side Side) { changes[side]++ }))
	require.NoError(t, err)

	// the computer fleet is deployed in one go
	require.Equal(t, 1, changes[SideComputer])

	require.NoError(t, m.PlaceShip(0, 0, ShipTug, DirectionLeftRight))
	require.Equal(t, 1, changes[SideHuman])

	require.NoError(t, m.RandomizeDeployment())
	require.Equal(t, 2, changes[SideHuman])
	require.Equal(t, 1, changes[SideComputer])
}

func TestMatchPlaysToTheEnd(t *testing.T) {
	for _, difficulty := range []Difficulty{GameDifficultyEasy, GameDifficultyMedium, GameDifficultyHard} {
		t.Run(difficulty.String(), func(t *testing.T) {
			m := startedMatch(t, difficulty)
			rng := rand.New(rand.NewSource(99))

			for !m.IsOver() {
				row, col := rng.Intn(GridHeight), rng.Intn(GridWidth)
				if m.EnemyView().TileView(row, col) != TileViewSea {
					continue
				}
				_, err := m.Attack(row, col)
				require.NoError(t, err)
			}

			winner, over := m.Winner()
			require.True(t, over)
			if winner == SideHuman {
				require.True(t, m.Computer().IsDestroyed())
				require.False(t, m.Human().IsDestroyed())
			} else {
				require.True(t, m.Human().IsDestroyed())
				require.False(t, m.Computer().IsDestroyed())
			}
		})
	}
}
