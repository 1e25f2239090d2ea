package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/battleship-solo/internal/logging"
	"github.com/saeidalz13/battleship-solo/internal/selfplay"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

func parseDifficulty(name string) (mb.Difficulty, error) {
	for _, d := range []mb.Difficulty{mb.GameDifficultyEasy, mb.GameDifficultyMedium, mb.GameDifficultyHard} {
		if d.String() == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", name)
}

func main() {
	var (
		firstName  = flag.String("first", "hard", "difficulty of the opening player: easy, medium or hard")
		secondName = flag.String("second", "medium", "difficulty of the other player")
		duels      = flag.Int("duels", 1000, "number of duels")
		workers    = flag.Int("workers", 0, "worker goroutines, 0 for one per cpu")
		seed       = flag.Uint64("seed", 1, "seed of the first duel, duel i uses seed+i")
		alternate  = flag.Bool("alternate", true, "swap the opening player every other duel")
		outDir     = flag.String("out", "data/duels", "directory of the parquet output")
		logLevel   = flag.String("log-level", "info", "zerolog level")
	)
	flag.Parse()

	if err := logging.Setup("dev", *logLevel); err != nil {
		panic(err)
	}

	first, err := parseDifficulty(*firstName)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -first")
	}
	second, err := parseDifficulty(*secondName)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid -second")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, err := selfplay.RunDuels(ctx, selfplay.Config{
		First:     first,
		Second:    second,
		Duels:     *duels,
		Workers:   *workers,
		BaseSeed:  *seed,
		Alternate: *alternate,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("self-play failed")
	}

	rw, err := selfplay.NewRecordWriter(*outDir)
	if err != nil {
		log.Fatal().Err(err).Msg("open record writer")
	}
	if err := rw.Write(records); err != nil {
		log.Fatal().Err(err).Msg("write records")
	}
	path, err := rw.Finalize()
	if err != nil {
		log.Fatal().Err(err).Msg("finalize records")
	}

	summary := selfplay.Summarize(records)
	for name, wins := range summary.Wins {
		log.Info().Str("difficulty", name).Int("wins", wins).
			Float64("rate", float64(wins)/float64(summary.Duels)).Msg("result")
	}
	log.Info().Str("path", path).Int("duels", summary.Duels).Msg("records written")
}
