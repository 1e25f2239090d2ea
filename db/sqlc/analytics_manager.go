package sqlc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type AnalyticsManager struct {
	db      *sql.DB
	queries *Queries
}

func NewAnalyticsManager(db *sql.DB) *AnalyticsManager {
	return &AnalyticsManager{db: db, queries: New(db)}
}

// MatchOutcome is what survives of a finished match.
type MatchOutcome struct {
	Difficulty    uint8
	HumanWon      bool
	HumanShots    int
	ComputerShots int
}

// AnalyticsSummary is the state of one server's counters.
type AnalyticsSummary struct {
	GamesCreated  int64
	GamesFinished int64
	// indexed by difficulty
	HumanWins []int64
}

// Runs fn inside a transaction and rolls back on any error.
func (a *AnalyticsManager) execTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(a.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w; rollback: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	return a.queries.IncrementGamesCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.GetGamesCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) GetGamesFinishedCount(ctx context.Context, serverIpNet pqtype.Inet) (int64, error) {
	return a.queries.GetGamesFinishedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) CountHumanWins(ctx context.Context, difficulty uint8) (int64, error) {
	return a.queries.CountHumanWinsByDifficulty(ctx, int16(difficulty))
}

// Summary collects the counters of this server and the human
// wins for each of the given difficulties.
func (a *AnalyticsManager) Summary(ctx context.Context, serverIpNet pqtype.Inet, difficulties ...uint8) (AnalyticsSummary, error) {
	var (
		summary AnalyticsSummary
		err     error
	)

	// a server that never created a game has no row yet
	if summary.GamesCreated, err = a.GetGamesCreatedCount(ctx, serverIpNet); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return summary, fmt.Errorf("games created: %w", err)
	}
	if summary.GamesFinished, err = a.GetGamesFinishedCount(ctx, serverIpNet); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return summary, fmt.Errorf("games finished: %w", err)
	}

	summary.HumanWins = make([]int64, len(difficulties))
	for i, difficulty := range difficulties {
		if summary.HumanWins[i], err = a.CountHumanWins(ctx, difficulty); err != nil {
			return summary, fmt.Errorf("human wins for difficulty %d: %w", difficulty, err)
		}
	}
	return summary, nil
}

// RecordMatchFinished stores the outcome row and bumps the
// finished counter of this server in one transaction.
func (a *AnalyticsManager) RecordMatchFinished(ctx context.Context, serverIpNet pqtype.Inet, outcome MatchOutcome) error {
	return a.execTx(ctx, func(q *Queries) error {
		err := q.InsertMatchResult(ctx, InsertMatchResultParams{
			ID:            uuid.New(),
			ServerIp:      serverIpNet,
			Difficulty:    int16(outcome.Difficulty),
			HumanWon:      outcome.HumanWon,
			HumanShots:    int32(outcome.HumanShots),
			ComputerShots: int32(outcome.ComputerShots),
			FinishedAt:    time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("insert match result: %w", err)
		}

		if err := q.IncrementGamesFinishedCount(ctx, serverIpNet); err != nil {
			return fmt.Errorf("increment games finished: %w", err)
		}
		return nil
	})
}
