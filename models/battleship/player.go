package battleship

import (
	"github.com/google/uuid"
)

type Player struct {
	uuid    string
	isHuman bool
	grid    *Grid
	enemy   GridView
	shots   int
	hits    int
	missed  int
}

func NewPlayer(isHuman bool, grid *Grid, enemy GridView) *Player {
	return &Player{
		uuid:    uuid.NewString()[:10],
		isHuman: isHuman,
		grid:    grid,
		enemy:   enemy,
	}
}

func (p *Player) Uuid() string        { return p.uuid }
func (p *Player) IsHuman() bool       { return p.isHuman }
func (p *Player) Grid() *Grid         { return p.grid }
func (p *Player) EnemyGrid() GridView { return p.enemy }
func (p *Player) Shots() int          { return p.shots }
func (p *Player) Hits() int           { return p.hits }
func (p *Player) Missed() int         { return p.missed }

// IsDestroyed is true once the player's whole fleet is sunk.
func (p *Player) IsDestroyed() bool {
	return p.grid.IsDestroyed()
}

// Score rewards hits, costs every shot and costs more for
// every ship the player lost.
func (p *Player) Score() int {
	if p.IsDestroyed() {
		return 0
	}
	return p.hits*12 - p.shots - p.grid.ShipsKilled()*20
}

// Fire resolves a shot of this player against target and
// updates the counters. Coordinates must be in range.
func (p *Player) Fire(target *Grid, row, col int) AttackResult {
	result := target.HitTile(row, col)
	p.recordShot(result)
	return result
}

func (p *Player) recordShot(result AttackResult) {
	switch result.Outcome() {
	case AttackMiss:
		p.shots++
		p.missed++
	case AttackHit, AttackDestroyed, AttackGameOver:
		p.shots++
		p.hits++
	}
}
