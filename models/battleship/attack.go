package battleship

import "fmt"

type AttackOutcome uint8

const (
	AttackMiss AttackOutcome = iota
	AttackHit
	AttackDestroyed
	AttackShotAlready
	AttackGameOver
)

func (o AttackOutcome) String() string {
	switch o {
	case AttackHit:
		return "hit"
	case AttackDestroyed:
		return "destroyed"
	case AttackShotAlready:
		return "shot already"
	case AttackGameOver:
		return "game over"
	default:
		return "miss"
	}
}

// AttackResult is produced once per shot and never mutated.
type AttackResult struct {
	outcome AttackOutcome
	row     int
	col     int
	ship    *Ship
	message string
}

func newAttackResult(outcome AttackOutcome, message string, row, col int) AttackResult {
	return AttackResult{outcome: outcome, message: message, row: row, col: col}
}

func newAttackResultWithShip(outcome AttackOutcome, ship *Ship, message string, row, col int) AttackResult {
	return AttackResult{outcome: outcome, ship: ship, message: message, row: row, col: col}
}

func (r AttackResult) Outcome() AttackOutcome   { return r.outcome }
func (r AttackResult) Row() int                 { return r.row }
func (r AttackResult) Column() int              { return r.col }
func (r AttackResult) Coordinates() Coordinates { return NewCoordinates(r.row, r.col) }
func (r AttackResult) Message() string          { return r.message }

// Ship is only set for Destroyed and GameOver outcomes.
func (r AttackResult) Ship() *Ship { return r.ship }

// KeepsTurn reports whether the shooter shoots again.
func (r AttackResult) KeepsTurn() bool {
	return r.outcome == AttackHit || r.outcome == AttackDestroyed || r.outcome == AttackShotAlready
}

func (r AttackResult) String() string {
	if r.ship != nil {
		return fmt.Sprintf("%s %s", r.message, r.ship.Name())
	}
	return r.message
}
