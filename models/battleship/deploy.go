package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"

	"golang.org/x/exp/rand"
)

// Arbitrary, far more than a 10x10 grid with five ships needs.
const maxDeployAttempts = 1000

// RandomizeDeployment puts every ship of the fleet at a random
// legal pose, replacing whatever deployment existed before.
// Listeners hear about it once, whatever the outcome.
func (g *Grid) RandomizeDeployment(rng *rand.Rand) error {
	defer g.notify()

	for _, ship := range g.ships {
		g.removeShip(ship)
	}

	// Biggest ships first, they are the hardest to fit.
	kinds := AllShipKinds()
	for i := len(kinds) - 1; i >= 0; i-- {
		ship, err := g.Ship(kinds[i])
		if err != nil {
			return err
		}

		placed := false
		for attempt := 0; attempt < maxDeployAttempts; attempt++ {
			direction := Direction(rng.Intn(2))
			row := rng.Intn(GridHeight)
			col := rng.Intn(GridWidth)

			if err := g.addShip(row, col, direction, ship); err == nil {
				placed = true
				break
			}
		}

		if !placed {
			return cerr.ErrRandomDeployment(ship.Name())
		}
	}
	return nil
}
