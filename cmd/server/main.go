package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-solo/api"
	"github.com/saeidalz13/battleship-solo/db"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	"github.com/saeidalz13/battleship-solo/internal/config"
	"github.com/saeidalz13/battleship-solo/internal/logging"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logging.Setup(cfg.Stage, cfg.LogLevel); err != nil {
		panic(err)
	}

	opts := []api.Option{
		api.WithStage(cfg.Stage),
		api.WithAllowedOrigins(cfg.AllowedOrigins...),
	}

	var analytics *sqlc.AnalyticsManager
	if cfg.AnalyticsEnabled() {
		conn := db.MustConnectToDb(cfg.DatabaseURL, cfg.MigrationDir)
		defer conn.Close()

		analytics = sqlc.NewDbManager(conn).Analytics
		opts = append(opts, api.WithAnalytics(analytics))
	} else {
		log.Warn().Msg("DATABASE_URL not set; analytics disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bsm := mc.NewBattleshipSessionManager()
	go bsm.CleanupPeriodically(ctx)

	rp, err := api.NewRequestProcessor(bsm, mb.NewBattleshipGameManager(), opts...)
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("stage", cfg.Stage).Int("port", cfg.Port).Msg("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}

	if analytics != nil {
		logAnalyticsSummary(analytics, pqtype.Inet{IPNet: rp.GetIpNet(), Valid: true})
	}
}

func logAnalyticsSummary(analytics *sqlc.AnalyticsManager, serverIpNet pqtype.Inet) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	difficulties := []uint8{
		uint8(mb.GameDifficultyEasy),
		uint8(mb.GameDifficultyMedium),
		uint8(mb.GameDifficultyHard),
	}
	summary, err := analytics.Summary(ctx, serverIpNet, difficulties...)
	if err != nil {
		log.Error().Err(err).Msg("could not read analytics summary")
		return
	}

	event := log.Info().
		Str("server", serverIpNet.IPNet.String()).
		Int64("games_created", summary.GamesCreated).
		Int64("games_finished", summary.GamesFinished)
	for i, difficulty := range difficulties {
		event = event.Int64("human_wins_"+mb.Difficulty(difficulty).String(), summary.HumanWins[i])
	}
	event.Msg("analytics summary")
}
