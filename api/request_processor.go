package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

// gridChanges collects the change notifications of a match
// until the session flushes them to the client.
type gridChanges struct {
	sides []mb.Side
}

func (gc *gridChanges) mark(side mb.Side) {
	for _, s := range gc.sides {
		if s == side {
			return
		}
	}
	gc.sides = append(gc.sides, side)
}

func (gc *gridChanges) drain() []mb.Side {
	sides := gc.sides
	gc.sides = nil
	return sides
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := rp.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		log.Error().Err(err).Msg("could not open websocket connection")
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("a new connection established")
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	default:
		// The session loop waiting in its grace period takes over the connection.
		// A session that has not noticed a drop yet keeps its old one.
		if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
			log.Warn().Err(err).Str("session", sessionIdQuery).Msg("reconnection rejected")
			_ = conn.WriteJSON(mc.NewErrMessage(mc.CodeReceivedInvalidSessionID, err, "session cannot be resumed"))
			conn.Close()
		}
	}
}

func (rp *RequestProcessor) serverInet() pqtype.Inet {
	return pqtype.Inet{IPNet: rp.ipnet, Valid: true}
}

func (rp *RequestProcessor) recordMatchCreated() {
	if rp.analytics == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	// for now not killing the game for it
	if err := rp.analytics.IncrementGamesCreatedCount(ctx, rp.serverInet()); err != nil {
		log.Error().Err(err).Msg("failed to record created game")
	}
}

func (rp *RequestProcessor) recordMatchFinished(match *mb.Match) {
	if rp.analytics == nil {
		return
	}

	winner, _ := match.Winner()
	outcome := sqlc.MatchOutcome{
		Difficulty:    uint8(match.Difficulty()),
		HumanWon:      winner == mb.SideHuman,
		HumanShots:    match.Human().Shots(),
		ComputerShots: match.Computer().Shots(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	if err := rp.analytics.RecordMatchFinished(ctx, rp.serverInet(), outcome); err != nil {
		log.Error().Err(err).Str("match", match.Uuid()).Msg("failed to record finished game")
	}
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session) {
	var (
		sessionMatch *mb.Match
		changes      gridChanges
		sessionId    = session.Id()
	)

	defer func() {
		if sessionMatch != nil {
			rp.gameManager.TerminateMatch(sessionMatch.Uuid())
		}
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
		log.Info().Str("session", sessionId).Msg("session terminated")
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

	write := func(msg interface{}) error {
		return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
	}

	flushChanges := func() error {
		for _, side := range changes.drain() {
			msg := mc.NewMessage[mc.RespGridChanged](mc.CodeGridChanged)
			msg.AddPayload(mc.RespGridChanged{Side: uint8(side)})
			if err := write(msg); err != nil {
				return err
			}
		}
		return nil
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			break sessionLoop
		}

		code, err := mc.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err = write(msg); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		// Everything but creating a game needs a match
		if sessionMatch == nil && isMatchCode(code) {
			if err := write(mc.NewErrMessage(code, cerr.ErrNoMatchForSession(sessionId), "create a game first")); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch code {

		// Starting a new game abandons the current one
		case mc.CodeCreateGame:
			opts := append(append([]mb.MatchOption{}, rp.matchOpts...), mb.WithChangeListener(changes.mark))
			match, respMsg := NewRequest(payload).HandleCreateGame(rp.gameManager, opts...)

			// the computer fleet is hidden, nothing to show yet
			changes.drain()

			if match != nil {
				if sessionMatch != nil {
					rp.gameManager.TerminateMatch(sessionMatch.Uuid())
				}
				sessionMatch = match
				session.SetMatchUuid(match.Uuid())
				rp.recordMatchCreated()
				log.Info().Str("session", sessionId).Str("match", match.Uuid()).Stringer("difficulty", match.Difficulty()).Msg("match created")
			}

			if err := write(respMsg); err != nil {
				break sessionLoop
			}

		case mc.CodePlaceShip:
			if err := write(NewRequest(payload).HandlePlaceShip(sessionMatch)); err != nil {
				break sessionLoop
			}

		case mc.CodeRandomDeploy:
			if err := write(NewRequest().HandleRandomDeploy(sessionMatch)); err != nil {
				break sessionLoop
			}

		// This code means the player has deployed the fleet and
		// is ready to start the game
		case mc.CodeReady:
			respMsg := NewRequest().HandleReady(sessionMatch)
			if err := write(respMsg); err != nil {
				break sessionLoop
			}
			if respMsg.Failed() {
				continue sessionLoop
			}

			if err := write(mc.NewMessage[mc.NoPayload](mc.CodeStartGame)); err != nil {
				break sessionLoop
			}

		// The human shot and, after a miss, the whole computer
		// turn are resolved before answering.
		case mc.CodeAttack:
			respMsg, err := NewRequest(payload).HandleAttack(sessionMatch)
			if writeErr := write(respMsg); writeErr != nil {
				break sessionLoop
			}
			if err != nil {
				log.Error().Err(err).Str("session", sessionId).Str("match", sessionMatch.Uuid()).Msg("match aborted")
				break sessionLoop
			}

			if err := flushChanges(); err != nil {
				break sessionLoop
			}

			if !respMsg.Failed() && sessionMatch.IsOver() {
				rp.recordMatchFinished(sessionMatch)
				if err := write(NewRequest().HandleEndGame(sessionMatch)); err != nil {
					break sessionLoop
				}
			}
			continue sessionLoop

		case mc.CodeGridView:
			if err := write(NewRequest(payload).HandleGridView(sessionMatch)); err != nil {
				break sessionLoop
			}

		// The player leaves the match; the session stays open
		// for another game
		case mc.CodeEndGame:
			respMsg := NewRequest().HandleEndGame(sessionMatch)
			rp.gameManager.TerminateMatch(sessionMatch.Uuid())
			sessionMatch = nil
			session.SetMatchUuid("")
			changes.drain()

			if err := write(respMsg); err != nil {
				break sessionLoop
			}

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			if err := write(respInvalidSignal); err != nil {
				break sessionLoop
			}
		}

		if err := flushChanges(); err != nil {
			break sessionLoop
		}
	}
}

func isMatchCode(code uint8) bool {
	switch code {
	case mc.CodePlaceShip, mc.CodeRandomDeploy, mc.CodeReady, mc.CodeAttack, mc.CodeGridView, mc.CodeEndGame:
		return true
	}
	return false
}
