package battleship

import (
	"fmt"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	GridWidth  int = 10
	GridHeight int = 10
)

// GridView is the read only side of a grid. Players get this
// for the opponent's grid so they can look and aim but never
// place or clear anything.
type GridView interface {
	Width() int
	Height() int
	TileView(row, col int) TileView
}

type GridOption func(*Grid)

// Called after every mutating grid call, once all tiles and
// ships are updated.
func WithGridChangeListener(fn func(*Grid)) GridOption {
	return func(g *Grid) {
		g.onChange = fn
	}
}

type Grid struct {
	tiles       [GridHeight][GridWidth]Tile
	ships       map[ShipKind]*Ship
	shipsKilled int
	onChange    func(*Grid)
}

var _ GridView = (*Grid)(nil)

// Creates a grid of sea tiles and a fleet of undeployed ships.
func NewGrid(opts ...GridOption) *Grid {
	g := &Grid{
		ships: make(map[ShipKind]*Ship, len(AllShipKinds())),
	}

	for row := 0; row < GridHeight; row++ {
		for col := 0; col < GridWidth; col++ {
			g.tiles[row][col] = newTile(row, col)
		}
	}

	for _, kind := range AllShipKinds() {
		g.ships[kind] = NewShip(kind)
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Grid) Width() int  { return GridWidth }
func (g *Grid) Height() int { return GridHeight }

func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < GridHeight && col >= 0 && col < GridWidth
}

func (g *Grid) ShipsKilled() int {
	return g.shipsKilled
}

// TileView always reports the true occupancy. Hiding ships
// from the opponent is what EnemyView is for.
func (g *Grid) TileView(row, col int) TileView {
	return g.tiles[row][col].view(true)
}

func (g *Grid) Ship(kind ShipKind) (*Ship, error) {
	ship, prs := g.ships[kind]
	if !prs {
		return nil, cerr.ErrUnknownShipKind(int(kind))
	}
	return ship, nil
}

// Ships returns the fleet ordered from the smallest ship up.
func (g *Grid) Ships() []*Ship {
	ships := make([]*Ship, 0, len(g.ships))
	for _, kind := range AllShipKinds() {
		ships = append(ships, g.ships[kind])
	}
	return ships
}

func (g *Grid) AllDeployed() bool {
	for _, ship := range g.ships {
		if !ship.IsDeployed() {
			return false
		}
	}
	return true
}

// IsDestroyed reports whether the whole fleet is sunk.
func (g *Grid) IsDestroyed() bool {
	for _, ship := range g.ships {
		if !ship.IsDestroyed() {
			return false
		}
	}
	return true
}

func (g *Grid) notify() {
	if g.onChange != nil {
		g.onChange(g)
	}
}

// PlaceShip deploys the ship as a whole or leaves it removed.
// Any previous placement of the same ship is cleared first.
func (g *Grid) PlaceShip(row, col int, kind ShipKind, direction Direction) error {
	defer g.notify()

	ship, err := g.Ship(kind)
	if err != nil {
		return err
	}
	g.removeShip(ship)

	return g.addShip(row, col, direction, ship)
}

// MoveShip removes the current placement of the ship and
// tries to deploy it again at the new pose. If that fails the
// ship stays undeployed and the error is returned.
func (g *Grid) MoveShip(row, col int, kind ShipKind, direction Direction) error {
	if err := g.PlaceShip(row, col, kind, direction); err != nil {
		return fmt.Errorf("move %s: %w", kind.Name(), err)
	}
	return nil
}

func (g *Grid) removeShip(ship *Ship) {
	for _, c := range ship.remove() {
		g.tiles[c.Row][c.Col].clearShip()
	}
}

func (g *Grid) addShip(row, col int, direction Direction, ship *Ship) error {
	dRow, dCol := direction.delta()

	// Validate every cell before writing anything so a failed
	// placement never leaves the ship half on the board.
	cells := make([]Coordinates, 0, ship.Size())
	currentRow, currentCol := row, col
	for i := 0; i < ship.Size(); i++ {
		if !g.InBounds(currentRow, currentCol) {
			return cerr.ErrShipOutOfGridBound(ship.Name(), row, col)
		}

		owner := g.tiles[currentRow][currentCol].ship
		if owner != ShipNone && owner != ship.kind {
			return cerr.ErrShipOverlap(ship.Name(), owner.Name(), currentRow, currentCol)
		}

		cells = append(cells, NewCoordinates(currentRow, currentCol))
		currentRow += dRow
		currentCol += dCol
	}

	for _, c := range cells {
		g.tiles[c.Row][c.Col].setShip(ship.kind)
		ship.addTile(c)
	}
	ship.deployed(direction, row, col)
	return nil
}

// HitTile resolves one shot against this grid. Coordinates
// must be in range; checking that is the caller's job.
func (g *Grid) HitTile(row, col int) AttackResult {
	defer g.notify()

	if !g.InBounds(row, col) {
		panic(fmt.Errorf("hit tile [%d,%d]: %w", col, row, cerr.ErrProtocolViolation))
	}

	tile := &g.tiles[row][col]
	if tile.shot {
		return newAttackResult(AttackShotAlready, fmt.Sprintf("have already attacked [%d,%d]!", col, row), row, col)
	}

	tile.shot = true
	if !tile.isOccupied() {
		return newAttackResult(AttackMiss, "missed", row, col)
	}

	ship := g.ships[tile.ship]
	ship.hit()
	if !ship.IsDestroyed() {
		return newAttackResult(AttackHit, "hit something!", row, col)
	}

	g.shipsKilled++
	if g.IsDestroyed() {
		return newAttackResultWithShip(AttackGameOver, ship, "destroyed the enemy's", row, col)
	}
	return newAttackResultWithShip(AttackDestroyed, ship, "destroyed the enemy's", row, col)
}

// EnemyView is how the opponent sees this grid: shots are
// visible, ships that were not hit are sea.
func (g *Grid) EnemyView() GridView {
	return enemyView{grid: g}
}

type enemyView struct {
	grid *Grid
}

func (v enemyView) Width() int  { return v.grid.Width() }
func (v enemyView) Height() int { return v.grid.Height() }

func (v enemyView) TileView(row, col int) TileView {
	return v.grid.tiles[row][col].view(false)
}
