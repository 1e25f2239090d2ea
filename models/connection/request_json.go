package connection

type ReqCreateGame struct {
	GameDifficulty uint8 `json:"game_difficulty"`
}

// Direction is 0 for left-right and 1 for up-down
type ReqPlaceShip struct {
	Row       int   `json:"row"`
	Col       int   `json:"col"`
	ShipKind  uint8 `json:"ship_kind"`
	Direction uint8 `json:"direction"`
}

type ReqAttack struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type ReqGridView struct {
	// true for the player's own grid, false for the enemy grid
	Own bool `json:"own"`
}
