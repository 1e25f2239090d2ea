package selfplay

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

type Config struct {
	First    mb.Difficulty
	Second   mb.Difficulty
	Duels    int
	Workers  int
	BaseSeed uint64

	// Alternate swaps who opens every other duel so the
	// first-move advantage cancels out.
	Alternate bool
}

// Summary counts wins per difficulty name.
type Summary struct {
	Duels int
	Wins  map[string]int
}

func Summarize(records []DuelRecord) Summary {
	s := Summary{Duels: len(records), Wins: make(map[string]int, 2)}
	for _, r := range records {
		if r.Winner == WinnerFirst {
			s.Wins[r.First]++
		} else {
			s.Wins[r.Second]++
		}
	}
	return s
}

// RunDuels plays cfg.Duels games on cfg.Workers goroutines.
// Records come back in duel order; duel i uses BaseSeed+i.
func RunDuels(ctx context.Context, cfg Config) ([]DuelRecord, error) {
	if cfg.Duels <= 0 {
		return nil, fmt.Errorf("duels must be positive, got %d", cfg.Duels)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	records := make([]DuelRecord, cfg.Duels)
	jobs := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerId int) {
			defer wg.Done()

			for i := range jobs {
				first, second := cfg.First, cfg.Second
				if cfg.Alternate && i%2 == 1 {
					first, second = second, first
				}

				record, err := PlayDuel(ctx, first, second, cfg.BaseSeed+uint64(i))
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("duel %d: %w", i, err)
						cancel()
					})
					continue
				}
				records[i] = record
				log.Debug().Int("worker", workerId).Int("duel", i).Str("winner", winnerName(record)).Int32("turns", record.Turns).Msg("duel finished")
			}
		}(w)
	}

feed:
	for i := 0; i < cfg.Duels; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func winnerName(r DuelRecord) string {
	if r.Winner == WinnerFirst {
		return r.First
	}
	return r.Second
}
