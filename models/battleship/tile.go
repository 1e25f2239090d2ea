package battleship

type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewCoordinates(row, col int) Coordinates {
	return Coordinates{Row: row, Col: col}
}

// TileView is what a consumer can see of a tile.
type TileView uint8

const (
	TileViewSea TileView = iota
	TileViewShip
	TileViewHit
	TileViewMiss
)

func (v TileView) String() string {
	switch v {
	case TileViewShip:
		return "ship"
	case TileViewHit:
		return "hit"
	case TileViewMiss:
		return "miss"
	default:
		return "sea"
	}
}

type Tile struct {
	row  int
	col  int
	shot bool
	ship ShipKind
}

func newTile(row, col int) Tile {
	return Tile{row: row, col: col, ship: ShipNone}
}

func (t *Tile) Row() int           { return t.row }
func (t *Tile) Column() int        { return t.col }
func (t *Tile) Shot() bool         { return t.shot }
func (t *Tile) Ship() ShipKind     { return t.ship }
func (t *Tile) isOccupied() bool   { return t.ship != ShipNone }
func (t *Tile) clearShip()         { t.ship = ShipNone }
func (t *Tile) setShip(k ShipKind) { t.ship = k }

func (t *Tile) view(showShips bool) TileView {
	switch {
	case t.shot && t.isOccupied():
		return TileViewHit
	case t.shot:
		return TileViewMiss
	case showShips && t.isOccupied():
		return TileViewShip
	default:
		return TileViewSea
	}
}
