package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrAttackFailed = "attack operation failed"
)

var (
	// Local, recoverable. The ship is left undeployed.
	ErrInvalidPlacement = errors.New("invalid ship placement")

	// A caller or strategy broke the shot protocol. Not recoverable.
	ErrProtocolViolation = errors.New("shot protocol violation")

	ErrMatchPhase         = errors.New("operation not allowed in current match phase")
	ErrShipsNotDeployed   = errors.New("not all ships are deployed")
	ErrOutOfGridBound     = errors.New("coordinates out of grid bound")
	ErrNotFound           = errors.New("not found")
	ErrReconnectRejected  = errors.New("reconnection rejected")
	ErrInvalidDifficulty  = errors.New("invalid game difficulty")
	ErrInvalidShipKind    = errors.New("invalid ship kind")
	ErrDeploymentExceeded = errors.New("random deployment exhausted its attempts")
)

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s: %w", gameUuid, ErrNotFound)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s: %w", sessionId, ErrNotFound)
}

func ErrSessionNotInGracePeriod(sessionId string) error {
	return fmt.Errorf("session is still connected, id: %s: %w", sessionId, ErrReconnectRejected)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session is nil, id: %s", sessionId)
}

func ErrInvalidGameDifficulty(difficulty uint8) error {
	return fmt.Errorf("difficulty must be 0 (easy), 1 (medium) or 2 (hard), got %d: %w", difficulty, ErrInvalidDifficulty)
}

func ErrUnknownShipKind(kind int) error {
	return fmt.Errorf("ship kind %d is not part of the fleet: %w", kind, ErrInvalidShipKind)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("incoming x or y is out of game grid bound\tx: %d\ty: %d: %w", x, y, ErrOutOfGridBound)
}

func ErrShipOutOfGridBound(ship string, row, col int) error {
	return fmt.Errorf("%s can't fit on the board at [%d,%d]: %w", ship, col, row, ErrInvalidPlacement)
}

func ErrShipOverlap(ship, other string, row, col int) error {
	return fmt.Errorf("%s overlaps %s at [%d,%d]: %w", ship, other, col, row, ErrInvalidPlacement)
}

func ErrShotAlreadyObserved(row, col int) error {
	return fmt.Errorf("strategy received an already shot tile\trow: %d\tcol: %d: %w", row, col, ErrProtocolViolation)
}

func ErrCoordsNotObserved() error {
	return fmt.Errorf("coordinates requested before previous shot was observed: %w", ErrProtocolViolation)
}

func ErrUnexpectedObservation(row, col int) error {
	return fmt.Errorf("observed a result that was not requested\trow: %d\tcol: %d: %w", row, col, ErrProtocolViolation)
}

func ErrNoTilesLeft() error {
	return fmt.Errorf("no untried tiles left on the enemy grid: %w", ErrProtocolViolation)
}

func ErrTurnInProgress() error {
	return fmt.Errorf("a turn is already being resolved: %w", ErrProtocolViolation)
}

func ErrWrongMatchPhase(want, got string) error {
	return fmt.Errorf("match must be %s, currently %s: %w", want, got, ErrMatchPhase)
}

func ErrNotAllShipsDeployed() error {
	return fmt.Errorf("deploy every ship before starting: %w", ErrShipsNotDeployed)
}

func ErrRandomDeployment(ship string) error {
	return fmt.Errorf("could not find a free spot for %s: %w", ship, ErrDeploymentExceeded)
}

func ErrNilPayload() error {
	return fmt.Errorf("the payload is nil or malformed")
}

func ErrNoMatchForSession(sessionId string) error {
	return fmt.Errorf("no match created for session: %s: %w", sessionId, ErrNotFound)
}

func ErrInvalidDirection(direction uint8) error {
	return fmt.Errorf("invalid ship direction: %d: %w", direction, ErrInvalidPlacement)
}
