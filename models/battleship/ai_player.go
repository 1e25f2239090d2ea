package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"

	"golang.org/x/exp/rand"
)

type Difficulty uint8

const (
	GameDifficultyEasy Difficulty = iota
	GameDifficultyMedium
	GameDifficultyHard
)

func (d Difficulty) IsValid() bool {
	return d == GameDifficultyEasy || d == GameDifficultyMedium || d == GameDifficultyHard
}

func (d Difficulty) String() string {
	switch d {
	case GameDifficultyEasy:
		return "easy"
	case GameDifficultyMedium:
		return "medium"
	case GameDifficultyHard:
		return "hard"
	default:
		return "unknown"
	}
}

type AIState uint8

const (
	// No live hit to follow up
	AIStateSearching AIState = iota
	// A ship was hit and is not sunk yet
	AIStateTargetingShip
)

func (s AIState) String() string {
	if s == AIStateTargetingShip {
		return "targeting"
	}
	return "searching"
}

// Opponent is anything that can pick the next shot and learn
// from its result. Every GenerateCoords must be followed by
// exactly one ObserveResult for the same coordinates.
type Opponent interface {
	GenerateCoords() (Coordinates, error)
	ObserveResult(result AttackResult) error
}

// AIStrategy is the computer player for all difficulty tiers.
//
// Easy shoots uniformly at random among untried tiles and keeps
// no memory. Medium does the same until it scores a hit, then
// works through a queue of the four neighbours of every hit.
// Hard searches on a checkerboard and follows the line once two
// hits on a ship line up. It also remembers hits that belong to
// other ships than the one it just sank.
type AIStrategy struct {
	difficulty Difficulty
	state      AIState
	enemy      GridView
	rng        *rand.Rand

	pending *Coordinates

	// candidate follow up shots, tried front to back
	targets []Coordinates

	// Hard only. Hits that are not part of a sunk ship yet.
	unresolved []Coordinates
}

var _ Opponent = (*AIStrategy)(nil)

func NewAIStrategy(difficulty Difficulty, enemy GridView, rng *rand.Rand) *AIStrategy {
	return &AIStrategy{
		difficulty: difficulty,
		state:      AIStateSearching,
		enemy:      enemy,
		rng:        rng,
	}
}

func (ai *AIStrategy) Difficulty() Difficulty { return ai.difficulty }
func (ai *AIStrategy) State() AIState         { return ai.state }

func (ai *AIStrategy) Targets() []Coordinates {
	targets := make([]Coordinates, len(ai.targets))
	copy(targets, ai.targets)
	return targets
}

func (ai *AIStrategy) GenerateCoords() (Coordinates, error) {
	if ai.pending != nil {
		return Coordinates{}, cerr.ErrCoordsNotObserved()
	}

	var (
		coords Coordinates
		found  bool
	)

	switch ai.difficulty {
	case GameDifficultyMedium:
		if coords, found = ai.nextTarget(); !found {
			coords, found = ai.searchCoords(false)
		}

	case GameDifficultyHard:
		if coords, found = ai.nextTarget(); !found {
			coords, found = ai.searchCoords(true)
		}

	default:
		coords, found = ai.searchCoords(false)
	}

	if !found {
		return Coordinates{}, cerr.ErrNoTilesLeft()
	}

	ai.pending = &coords
	return coords, nil
}

func (ai *AIStrategy) ObserveResult(result AttackResult) error {
	if ai.pending == nil || *ai.pending != result.Coordinates() {
		return cerr.ErrUnexpectedObservation(result.Row(), result.Column())
	}
	ai.pending = nil

	if result.Outcome() == AttackShotAlready {
		return cerr.ErrShotAlreadyObserved(result.Row(), result.Column())
	}

	switch ai.difficulty {
	case GameDifficultyMedium:
		ai.observeMedium(result)
	case GameDifficultyHard:
		ai.observeHard(result)
	}
	return nil
}

func (ai *AIStrategy) reset() {
	ai.state = AIStateSearching
	ai.targets = nil
	ai.unresolved = nil
}

func (ai *AIStrategy) observeMedium(result AttackResult) {
	switch result.Outcome() {
	case AttackHit:
		ai.state = AIStateTargetingShip
		for _, c := range ai.untriedNeighbours(result.Coordinates()) {
			if !containsCoords(ai.targets, c) {
				ai.targets = append(ai.targets, c)
			}
		}

	case AttackDestroyed, AttackGameOver:
		ai.reset()
		return
	}

	if ai.state == AIStateTargetingShip {
		ai.targets = ai.pruneTargets(ai.targets)
		if len(ai.targets) == 0 {
			ai.reset()
		}
	}
}

func (ai *AIStrategy) observeHard(result AttackResult) {
	switch result.Outcome() {
	case AttackHit:
		ai.state = AIStateTargetingShip
		ai.unresolved = append(ai.unresolved, result.Coordinates())

	case AttackDestroyed, AttackGameOver:
		sunk := result.Ship().Tiles()
		remaining := ai.unresolved[:0]
		for _, c := range ai.unresolved {
			if !containsCoords(sunk, c) {
				remaining = append(remaining, c)
			}
		}
		ai.unresolved = remaining

		if len(ai.unresolved) == 0 {
			ai.reset()
			return
		}
	}

	if ai.state == AIStateTargetingShip {
		ai.targets = ai.hardTargets()
		if len(ai.targets) == 0 {
			ai.reset()
		}
	}
}

// hardTargets prefers the open ends of runs of two or more
// unresolved hits. Without such a run it falls back to the
// neighbours of every unresolved hit.
func (ai *AIStrategy) hardTargets() []Coordinates {
	hits := make(map[Coordinates]bool, len(ai.unresolved))
	for _, c := range ai.unresolved {
		hits[c] = true
	}

	var line []Coordinates
	for _, h := range ai.unresolved {
		for _, step := range [][2]int{{0, 1}, {1, 0}} {
			before := NewCoordinates(h.Row-step[0], h.Col-step[1])
			after := NewCoordinates(h.Row+step[0], h.Col+step[1])
			if !hits[before] && !hits[after] {
				continue
			}

			for _, dir := range []int{-1, 1} {
				c := h
				for hits[c] {
					c = NewCoordinates(c.Row+dir*step[0], c.Col+dir*step[1])
				}
				if ai.isUntried(c) && !containsCoords(line, c) {
					line = append(line, c)
				}
			}
		}
	}
	if len(line) > 0 {
		return line
	}

	var around []Coordinates
	for _, h := range ai.unresolved {
		for _, c := range ai.untriedNeighbours(h) {
			if !containsCoords(around, c) {
				around = append(around, c)
			}
		}
	}
	return around
}

func (ai *AIStrategy) nextTarget() (Coordinates, bool) {
	for len(ai.targets) > 0 {
		c := ai.targets[0]
		ai.targets = ai.targets[1:]
		if ai.isUntried(c) {
			return c, true
		}
	}
	return Coordinates{}, false
}

// searchCoords picks uniformly among untried tiles. With parity
// only every other tile is considered, as long as one is left.
func (ai *AIStrategy) searchCoords(parity bool) (Coordinates, bool) {
	untried := make([]Coordinates, 0, ai.enemy.Width()*ai.enemy.Height())
	var even []Coordinates

	for row := 0; row < ai.enemy.Height(); row++ {
		for col := 0; col < ai.enemy.Width(); col++ {
			if ai.enemy.TileView(row, col) != TileViewSea {
				continue
			}
			c := NewCoordinates(row, col)
			untried = append(untried, c)
			if (row+col)%2 == 0 {
				even = append(even, c)
			}
		}
	}

	candidates := untried
	if parity && len(even) > 0 {
		candidates = even
	}
	if len(candidates) == 0 {
		return Coordinates{}, false
	}
	return candidates[ai.rng.Intn(len(candidates))], true
}

func (ai *AIStrategy) isUntried(c Coordinates) bool {
	if c.Row < 0 || c.Row >= ai.enemy.Height() || c.Col < 0 || c.Col >= ai.enemy.Width() {
		return false
	}
	return ai.enemy.TileView(c.Row, c.Col) == TileViewSea
}

// North, east, south, west.
func (ai *AIStrategy) untriedNeighbours(c Coordinates) []Coordinates {
	neighbours := make([]Coordinates, 0, 4)
	for _, n := range []Coordinates{
		NewCoordinates(c.Row-1, c.Col),
		NewCoordinates(c.Row, c.Col+1),
		NewCoordinates(c.Row+1, c.Col),
		NewCoordinates(c.Row, c.Col-1),
	} {
		if ai.isUntried(n) {
			neighbours = append(neighbours, n)
		}
	}
	return neighbours
}

func (ai *AIStrategy) pruneTargets(targets []Coordinates) []Coordinates {
	kept := targets[:0]
	for _, c := range targets {
		if ai.isUntried(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

func containsCoords(list []Coordinates, c Coordinates) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
