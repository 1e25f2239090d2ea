package selfplay

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

const (
	WinnerFirst  int32 = 0
	WinnerSecond int32 = 1
)

// Every cell of both grids once; a duel cannot take longer.
const maxShots = 2 * mb.GridWidth * mb.GridHeight

// DuelRecord is one finished AI-vs-AI game.
type DuelRecord struct {
	DuelID      string `parquet:"duel_id,dict"`
	Seed        int64  `parquet:"seed"`
	First       string `parquet:"first,dict"`
	Second      string `parquet:"second,dict"`
	Winner      int32  `parquet:"winner"`
	Turns       int32  `parquet:"turns"`
	FirstShots  int32  `parquet:"first_shots"`
	FirstHits   int32  `parquet:"first_hits"`
	FirstScore  int32  `parquet:"first_score"`
	SecondShots int32  `parquet:"second_shots"`
	SecondHits  int32  `parquet:"second_hits"`
	SecondScore int32  `parquet:"second_score"`
}

type duelist struct {
	player   *mb.Player
	strategy *mb.AIStrategy
}

func newDuelist(difficulty mb.Difficulty, own, enemy *mb.Grid, rng *rand.Rand) duelist {
	return duelist{
		player:   mb.NewPlayer(false, own, enemy.EnemyView()),
		strategy: mb.NewAIStrategy(difficulty, enemy.EnemyView(), rng),
	}
}

// PlayDuel lets two strategies shoot at each other until one
// fleet is gone. The first one starts; a miss passes the turn
// and anything else keeps it.
func PlayDuel(ctx context.Context, first, second mb.Difficulty, seed uint64) (DuelRecord, error) {
	if !first.IsValid() || !second.IsValid() {
		return DuelRecord{}, fmt.Errorf("invalid difficulties %d and %d", first, second)
	}

	rng := rand.New(rand.NewSource(seed))
	gridFirst, gridSecond := mb.NewGrid(), mb.NewGrid()
	if err := gridFirst.RandomizeDeployment(rng); err != nil {
		return DuelRecord{}, err
	}
	if err := gridSecond.RandomizeDeployment(rng); err != nil {
		return DuelRecord{}, err
	}

	duelists := [2]duelist{
		newDuelist(first, gridFirst, gridSecond, rng),
		newDuelist(second, gridSecond, gridFirst, rng),
	}
	targets := [2]*mb.Grid{gridSecond, gridFirst}

	record := DuelRecord{
		DuelID: uuid.NewString(),
		Seed:   int64(seed),
		First:  first.String(),
		Second: second.String(),
	}

	current := 0
	for shots := 0; shots < maxShots; shots++ {
		if err := ctx.Err(); err != nil {
			return DuelRecord{}, err
		}

		d := duelists[current]
		coords, err := d.strategy.GenerateCoords()
		if err != nil {
			return DuelRecord{}, err
		}

		result := d.player.Fire(targets[current], coords.Row, coords.Col)
		if err := d.strategy.ObserveResult(result); err != nil {
			return DuelRecord{}, err
		}

		switch result.Outcome() {
		case mb.AttackGameOver:
			record.Winner = int32(current)
			record.Turns++
			fillStats(&record, duelists)
			return record, nil

		case mb.AttackMiss:
			record.Turns++
			current = 1 - current
		}
	}

	return DuelRecord{}, fmt.Errorf("duel %s did not finish within %d shots", record.DuelID, maxShots)
}

func fillStats(record *DuelRecord, duelists [2]duelist) {
	first, second := duelists[0].player, duelists[1].player
	record.FirstShots = int32(first.Shots())
	record.FirstHits = int32(first.Hits())
	record.FirstScore = int32(first.Score())
	record.SecondShots = int32(second.Shots())
	record.SecondHits = int32(second.Hits())
	record.SecondScore = int32(second.Score())
}
