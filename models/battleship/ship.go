package battleship

type Direction uint8

const (
	DirectionLeftRight Direction = iota
	DirectionUpDown
)

func (d Direction) String() string {
	if d == DirectionUpDown {
		return "up-down"
	}
	return "left-right"
}

// delta returns the row and column step taken for each
// additional tile of a ship deployed in this direction.
func (d Direction) delta() (int, int) {
	if d == DirectionUpDown {
		return 1, 0
	}
	return 0, 1
}

// ShipKind identifies a ship of the fleet. The value is
// also the number of tiles the ship occupies.
type ShipKind uint8

const (
	ShipNone ShipKind = iota
	ShipTug
	ShipSubmarine
	ShipDestroyer
	ShipBattleship
	ShipAircraftCarrier
)

// The fleet every grid starts with, smallest first.
func AllShipKinds() []ShipKind {
	return []ShipKind{ShipTug, ShipSubmarine, ShipDestroyer, ShipBattleship, ShipAircraftCarrier}
}

func (k ShipKind) IsValid() bool {
	return k >= ShipTug && k <= ShipAircraftCarrier
}

func (k ShipKind) Size() int {
	return int(k)
}

func (k ShipKind) Name() string {
	switch k {
	case ShipTug:
		return "Tug"
	case ShipSubmarine:
		return "Submarine"
	case ShipDestroyer:
		return "Destroyer"
	case ShipBattleship:
		return "Battleship"
	case ShipAircraftCarrier:
		return "Aircraft Carrier"
	default:
		return "None"
	}
}

type Ship struct {
	kind      ShipKind
	hits      int
	tiles     []Coordinates
	row       int
	col       int
	direction Direction
}

func NewShip(kind ShipKind) *Ship {
	return &Ship{
		kind:  kind,
		tiles: make([]Coordinates, 0, kind.Size()),
	}
}

func (sh *Ship) Kind() ShipKind       { return sh.kind }
func (sh *Ship) Name() string         { return sh.kind.Name() }
func (sh *Ship) Size() int            { return sh.kind.Size() }
func (sh *Ship) Hits() int            { return sh.hits }
func (sh *Ship) Row() int             { return sh.row }
func (sh *Ship) Column() int          { return sh.col }
func (sh *Ship) Direction() Direction { return sh.direction }

func (sh *Ship) IsDeployed() bool {
	return len(sh.tiles) > 0
}

func (sh *Ship) IsDestroyed() bool {
	return sh.hits == sh.Size()
}

// Tiles returns a copy of the occupied positions in deployment order.
func (sh *Ship) Tiles() []Coordinates {
	tiles := make([]Coordinates, len(sh.tiles))
	copy(tiles, sh.tiles)
	return tiles
}

// hit is only called by the grid, once per unique tile,
// which is what keeps hits <= size.
func (sh *Ship) hit() {
	sh.hits++
}

func (sh *Ship) addTile(c Coordinates) {
	sh.tiles = append(sh.tiles, c)
}

// remove empties the tile list and hands back the positions
// the grid has to clear.
func (sh *Ship) remove() []Coordinates {
	cleared := sh.tiles
	sh.tiles = make([]Coordinates, 0, sh.Size())
	return cleared
}

func (sh *Ship) deployed(direction Direction, row, col int) {
	sh.direction = direction
	sh.row = row
	sh.col = col
}
