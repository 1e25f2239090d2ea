package connection

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

const (
	PlayerMatchStatusLost      = -1
	PlayerMatchStatusUndefined = 0
	PlayerMatchStatusWon       = 1
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateGame struct {
	GameUuid       string `json:"game_uuid"`
	PlayerUuid     string `json:"player_uuid"`
	GameDifficulty uint8  `json:"game_difficulty"`
}

type RespShip struct {
	ShipKind  uint8            `json:"ship_kind"`
	Name      string           `json:"name"`
	Row       int              `json:"row"`
	Col       int              `json:"col"`
	Direction uint8            `json:"direction"`
	Tiles     []mb.Coordinates `json:"tiles"`
}

func NewRespShip(ship *mb.Ship) RespShip {
	return RespShip{
		ShipKind:  uint8(ship.Kind()),
		Name:      ship.Name(),
		Row:       ship.Row(),
		Col:       ship.Column(),
		Direction: uint8(ship.Direction()),
		Tiles:     ship.Tiles(),
	}
}

type RespDeployment struct {
	Ships       []RespShip `json:"ships"`
	AllDeployed bool       `json:"all_deployed"`
}

func NewRespDeployment(grid *mb.Grid) RespDeployment {
	resp := RespDeployment{AllDeployed: grid.AllDeployed()}
	for _, ship := range grid.Ships() {
		if ship.IsDeployed() {
			resp.Ships = append(resp.Ships, NewRespShip(ship))
		}
	}
	return resp
}

type RespAttackResult struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Outcome  uint8  `json:"outcome"`
	Message  string `json:"message"`
	SunkShip uint8  `json:"sunk_ship,omitempty"`
}

func NewRespAttackResult(result mb.AttackResult) RespAttackResult {
	resp := RespAttackResult{
		Row:     result.Row(),
		Col:     result.Column(),
		Outcome: uint8(result.Outcome()),
		Message: result.String(),
	}
	if ship := result.Ship(); ship != nil {
		resp.SunkShip = uint8(ship.Kind())
	}
	return resp
}

type RespAttack struct {
	Attack              RespAttackResult   `json:"attack"`
	ComputerAttacks     []RespAttackResult `json:"computer_attacks,omitempty"`
	IsTurn              bool               `json:"is_turn"`
	SunkenShipsHuman    int                `json:"sunken_ships_human"`
	SunkenShipsComputer int                `json:"sunken_ships_computer"`
}

func NewRespAttack(match *mb.Match, report mb.TurnReport) RespAttack {
	resp := RespAttack{
		Attack:              NewRespAttackResult(report.Human),
		IsTurn:              !report.Over,
		SunkenShipsHuman:    match.Human().Grid().ShipsKilled(),
		SunkenShipsComputer: match.Computer().Grid().ShipsKilled(),
	}
	for _, r := range report.Computer {
		resp.ComputerAttacks = append(resp.ComputerAttacks, NewRespAttackResult(r))
	}
	return resp
}

type RespGridChanged struct {
	// 0 for the player's own grid, 1 for the computer grid
	Side uint8 `json:"side"`
}

type RespGridView struct {
	Own   bool      `json:"own"`
	Tiles [][]uint8 `json:"tiles"`
}

func NewRespGridView(view mb.GridView, own bool) RespGridView {
	tiles := make([][]uint8, view.Height())
	for row := range tiles {
		tiles[row] = make([]uint8, view.Width())
		for col := range tiles[row] {
			tiles[row][col] = uint8(view.TileView(row, col))
		}
	}
	return RespGridView{Own: own, Tiles: tiles}
}

type RespEndGame struct {
	PlayerMatchStatus int `json:"player_match_status"`
	Score             int `json:"score"`
	Shots             int `json:"shots"`
	Hits              int `json:"hits"`
	Missed            int `json:"missed"`
}

func NewRespEndGame(match *mb.Match) RespEndGame {
	human := match.Human()
	resp := RespEndGame{
		PlayerMatchStatus: PlayerMatchStatusUndefined,
		Score:             human.Score(),
		Shots:             human.Shots(),
		Hits:              human.Hits(),
		Missed:            human.Missed(),
	}

	if winner, over := match.Winner(); over {
		if winner == mb.SideHuman {
			resp.PlayerMatchStatus = PlayerMatchStatusWon
		} else {
			resp.PlayerMatchStatus = PlayerMatchStatusLost
		}
	}
	return resp
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
