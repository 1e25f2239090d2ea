package api

import (
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"
	"github.com/stretchr/testify/require"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

const testSeed uint64 = 42

var (
	testIpNet = net.IPNet{IP: net.IPv4(10, 1, 2, 3), Mask: net.CIDRMask(24, 32)}
	dialer    = websocket.Dialer{HandshakeTimeout: 5 * time.Second}
)

type testServer struct {
	url            string
	gameManager    *mb.BattleshipGameManager
	sessionManager *mc.BattleshipSessionManager
}

func newTestServer(t *testing.T, opts ...Option) testServer {
	t.Helper()
	return newTestServerWithGrace(t, 100*time.Millisecond, opts...)
}

func newTestServerWithGrace(t *testing.T, grace time.Duration, opts ...Option) testServer {
	t.Helper()

	bsm := mc.NewBattleshipSessionManager(mc.WithGracePeriod(grace))
	bgm := mb.NewBattleshipGameManager()

	opts = append([]Option{WithServerIpNet(testIpNet), WithMatchOptions(mb.WithSeed(testSeed))}, opts...)
	rp, err := NewRequestProcessor(bsm, bgm, opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(rp)
	t.Cleanup(srv.Close)

	return testServer{
		url:            "ws" + strings.TrimPrefix(srv.URL, "http"),
		gameManager:    bgm,
		sessionManager: bsm,
	}
}

func dial(t *testing.T, ts testServer) (*websocket.Conn, string) {
	t.Helper()

	conn, _, err := dialer.Dial(ts.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	resp := readMsg[mc.RespSessionId](t, conn)
	require.Equal(t, mc.CodeSessionID, resp.Code)
	require.NotEmpty(t, resp.Payload.SessionID)
	return conn, resp.Payload.SessionID
}

func send[T any](t *testing.T, conn *websocket.Conn, code uint8, payload T) {
	t.Helper()

	msg := mc.NewMessage[T](code)
	msg.AddPayload(payload)
	require.NoError(t, conn.WriteJSON(msg))
}

func readMsg[T any](t *testing.T, conn *websocket.Conn) mc.Message[T] {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg mc.Message[T]
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func expectGridChanged(t *testing.T, conn *websocket.Conn, side mb.Side) {
	t.Helper()

	msg := readMsg[mc.RespGridChanged](t, conn)
	require.Equal(t, mc.CodeGridChanged, msg.Code)
	require.Equal(t, uint8(side), msg.Payload.Side)
}

// twinFleet rebuilds the computer fleet the server deploys for
// a match created with testSeed.
func twinFleet(t *testing.T, difficulty mb.Difficulty) *mb.Grid {
	t.Helper()

	twin, err := mb.NewMatch(difficulty, mb.WithSeed(testSeed))
	require.NoError(t, err)
	return twin.Computer().Grid()
}

func createGame(t *testing.T, conn *websocket.Conn, difficulty mb.Difficulty) mc.RespCreateGame {
	t.Helper()

	send(t, conn, mc.CodeCreateGame, mc.ReqCreateGame{GameDifficulty: uint8(difficulty)})
	resp := readMsg[mc.RespCreateGame](t, conn)
	require.Equal(t, mc.CodeCreateGame, resp.Code)
	require.Nil(t, resp.Error)
	return resp.Payload
}

func deployAndStart(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	send(t, conn, mc.CodeRandomDeploy, mc.NoPayload(true))
	deployment := readMsg[mc.RespDeployment](t, conn)
	require.Equal(t, mc.CodeRandomDeploy, deployment.Code)
	require.Nil(t, deployment.Error)
	require.True(t, deployment.Payload.AllDeployed)
	require.Len(t, deployment.Payload.Ships, len(mb.AllShipKinds()))
	expectGridChanged(t, conn, mb.SideHuman)

	send(t, conn, mc.CodeReady, mc.NoPayload(true))
	ready := readMsg[mc.NoPayload](t, conn)
	require.Equal(t, mc.CodeReady, ready.Code)
	require.Nil(t, ready.Error)

	start := readMsg[mc.NoPayload](t, conn)
	require.Equal(t, mc.CodeStartGame, start.Code)
}

func TestInvalidCode(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	send(t, conn, 255, mc.NoPayload(true))
	resp := readMsg[mc.NoPayload](t, conn)
	require.Equal(t, mc.CodeInvalidSignal, resp.Code)
	require.NotNil(t, resp.Error)
}

func TestSignalAbsent(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("attack!")))
	resp := readMsg[mc.NoPayload](t, conn)
	require.Equal(t, mc.CodeSignalAbsent, resp.Code)
	require.NotNil(t, resp.Error)
}

func TestRequestWithoutMatch(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	send(t, conn, mc.CodeAttack, mc.ReqAttack{Row: 1, Col: 1})
	resp := readMsg[mc.NoPayload](t, conn)
	require.Equal(t, mc.CodeAttack, resp.Code)
	require.NotNil(t, resp.Error)
	require.Contains(t, resp.Error.ErrorDetails, "no match created")
}

func TestCreateGameInvalidDifficulty(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	send(t, conn, mc.CodeCreateGame, mc.ReqCreateGame{GameDifficulty: 7})
	resp := readMsg[mc.RespCreateGame](t, conn)
	require.Equal(t, mc.CodeCreateGame, resp.Code)
	require.NotNil(t, resp.Error)
	require.Zero(t, ts.gameManager.Count())
}

func TestDeploymentFlow(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	created := createGame(t, conn, mb.GameDifficultyEasy)
	require.Len(t, created.GameUuid, 6)
	require.NotEmpty(t, created.PlayerUuid)
	require.Equal(t, 1, ts.gameManager.Count())

	t.Run("attack before deployment", func(t *testing.T) {
		send(t, conn, mc.CodeAttack, mc.ReqAttack{Row: 0, Col: 0})
		resp := readMsg[mc.RespAttack](t, conn)
		require.NotNil(t, resp.Error)
		require.Contains(t, resp.Error.ErrorDetails, "match must be")
	})

	t.Run("ship out of grid", func(t *testing.T) {
		send(t, conn, mc.CodePlaceShip, mc.ReqPlaceShip{Row: 0, Col: 8, ShipKind: uint8(mb.ShipDestroyer)})
		resp := readMsg[mc.RespDeployment](t, conn)
		require.Equal(t, mc.CodePlaceShip, resp.Code)
		require.NotNil(t, resp.Error)
		require.Empty(t, resp.Payload.Ships)
		expectGridChanged(t, conn, mb.SideHuman)
	})

	t.Run("invalid direction", func(t *testing.T) {
		send(t, conn, mc.CodePlaceShip, mc.ReqPlaceShip{Row: 0, Col: 0, ShipKind: uint8(mb.ShipTug), Direction: 9})
		resp := readMsg[mc.RespDeployment](t, conn)
		require.NotNil(t, resp.Error)
	})

	t.Run("valid ship", func(t *testing.T) {
		send(t, conn, mc.CodePlaceShip, mc.ReqPlaceShip{Row: 2, Col: 3, ShipKind: uint8(mb.ShipBattleship), Direction: uint8(mb.DirectionUpDown)})
		resp := readMsg[mc.RespDeployment](t, conn)
		require.Nil(t, resp.Error)
		require.False(t, resp.Payload.AllDeployed)
		require.Len(t, resp.Payload.Ships, 1)
		require.Equal(t, []mb.Coordinates{{Row: 2, Col: 3}, {Row: 3, Col: 3}, {Row: 4, Col: 3}, {Row: 5, Col: 3}}, resp.Payload.Ships[0].Tiles)
		expectGridChanged(t, conn, mb.SideHuman)
	})

	t.Run("ready too early", func(t *testing.T) {
		send(t, conn, mc.CodeReady, mc.NoPayload(true))
		resp := readMsg[mc.NoPayload](t, conn)
		require.Equal(t, mc.CodeReady, resp.Code)
		require.NotNil(t, resp.Error)
	})

	deployAndStart(t, conn)

	t.Run("own grid view", func(t *testing.T) {
		send(t, conn, mc.CodeGridView, mc.ReqGridView{Own: true})
		resp := readMsg[mc.RespGridView](t, conn)
		require.Equal(t, mc.CodeGridView, resp.Code)
		require.True(t, resp.Payload.Own)

		ships := 0
		for _, row := range resp.Payload.Tiles {
			for _, tile := range row {
				if tile == uint8(mb.TileViewShip) {
					ships++
				}
			}
		}
		require.Equal(t, 15, ships)
	})

	t.Run("enemy grid view hides ships", func(t *testing.T) {
		send(t, conn, mc.CodeGridView, mc.ReqGridView{Own: false})
		resp := readMsg[mc.RespGridView](t, conn)
		require.False(t, resp.Payload.Own)
		require.Len(t, resp.Payload.Tiles, mb.GridHeight)
		for _, row := range resp.Payload.Tiles {
			require.Len(t, row, mb.GridWidth)
			for _, tile := range row {
				require.Equal(t, uint8(mb.TileViewSea), tile)
			}
		}
	})
}

func TestAttackMissHandsTurnToComputer(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	createGame(t, conn, mb.GameDifficultyMedium)
	deployAndStart(t, conn)

	fleet := twinFleet(t, mb.GameDifficultyMedium)
	var sea mb.Coordinates
	for row := 0; row < mb.GridHeight; row++ {
		for col := 0; col < mb.GridWidth; col++ {
			if fleet.TileView(row, col) == mb.TileViewSea {
				sea = mb.NewCoordinates(row, col)
			}
		}
	}

	send(t, conn, mc.CodeAttack, mc.ReqAttack{Row: sea.Row, Col: sea.Col})
	resp := readMsg[mc.RespAttack](t, conn)
	require.Nil(t, resp.Error)
	require.Equal(t, uint8(mb.AttackMiss), resp.Payload.Attack.Outcome)
	require.NotEmpty(t, resp.Payload.ComputerAttacks)
	require.True(t, resp.Payload.IsTurn)

	expectGridChanged(t, conn, mb.SideComputer)
	expectGridChanged(t, conn, mb.SideHuman)

	t.Run("out of grid", func(t *testing.T) {
		send(t, conn, mc.CodeAttack, mc.ReqAttack{Row: mb.GridHeight, Col: 0})
		resp := readMsg[mc.RespAttack](t, conn)
		require.NotNil(t, resp.Error)
		require.Empty(t, resp.Payload.ComputerAttacks)
	})
}

func TestHumanWinsWithAnalytics(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	inet := pqtype.Inet{IPNet: testIpNet, Valid: true}
	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(inet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO match_results`).
		WithArgs(sqlmock.AnyArg(), inet, int16(mb.GameDifficultyHard), true, int32(15), int32(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_finished\)`).
		WithArgs(inet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ts := newTestServer(t, WithAnalytics(sqlc.NewAnalyticsManager(db)))
	conn, _ := dial(t, ts)

	createGame(t, conn, mb.GameDifficultyHard)
	deployAndStart(t, conn)

	var targets []mb.Coordinates
	for _, ship := range twinFleet(t, mb.GameDifficultyHard).Ships() {
		targets = append(targets, ship.Tiles()...)
	}
	require.Len(t, targets, 15)

	var last mc.Message[mc.RespAttack]
	for _, c := range targets {
		send(t, conn, mc.CodeAttack, mc.ReqAttack{Row: c.Row, Col: c.Col})
		last = readMsg[mc.RespAttack](t, conn)
		require.Nil(t, last.Error)
		require.Empty(t, last.Payload.ComputerAttacks)
		require.NotEqual(t, uint8(mb.AttackMiss), last.Payload.Attack.Outcome)
		expectGridChanged(t, conn, mb.SideComputer)
	}

	require.Equal(t, uint8(mb.AttackGameOver), last.Payload.Attack.Outcome)
	require.False(t, last.Payload.IsTurn)
	require.Equal(t, 5, last.Payload.SunkenShipsComputer)

	end := readMsg[mc.RespEndGame](t, conn)
	require.Equal(t, mc.CodeEndGame, end.Code)
	require.Equal(t, mc.PlayerMatchStatusWon, end.Payload.PlayerMatchStatus)
	require.Equal(t, 15, end.Payload.Hits)
	require.Equal(t, 15*12-15, end.Payload.Score)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEndGameLeavesSessionOpen(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	createGame(t, conn, mb.GameDifficultyEasy)
	require.Equal(t, 1, ts.gameManager.Count())

	send(t, conn, mc.CodeEndGame, mc.NoPayload(true))
	end := readMsg[mc.RespEndGame](t, conn)
	require.Equal(t, mc.CodeEndGame, end.Code)
	require.Equal(t, mc.PlayerMatchStatusUndefined, end.Payload.PlayerMatchStatus)
	require.Zero(t, ts.gameManager.Count())

	createGame(t, conn, mb.GameDifficultyMedium)
	require.Equal(t, 1, ts.gameManager.Count())
}

func TestCreateGameReplacesMatch(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	first := createGame(t, conn, mb.GameDifficultyEasy)
	second := createGame(t, conn, mb.GameDifficultyHard)
	require.NotEqual(t, first.GameUuid, second.GameUuid)
	require.Equal(t, 1, ts.gameManager.Count())

	_, err := ts.gameManager.GetMatch(first.GameUuid)
	require.Error(t, err)
}

func TestReconnectUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	conn, _, err := dialer.Dial(ts.url+"?"+URLQuerySessionIDKeyword+"=doesnotexist", nil)
	require.NoError(t, err)
	defer conn.Close()

	resp := readMsg[mc.NoPayload](t, conn)
	require.Equal(t, mc.CodeReceivedInvalidSessionID, resp.Code)
	require.NotNil(t, resp.Error)
}

func reconnect(t *testing.T, ts testServer, sessionId string) *websocket.Conn {
	t.Helper()

	conn, _, err := dialer.Dial(ts.url+"?"+URLQuerySessionIDKeyword+"="+sessionId, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestReconnectToLiveSessionRejected(t *testing.T) {
	ts := newTestServerWithGrace(t, 5*time.Second)
	conn, sessionId := dial(t, ts)
	createGame(t, conn, mb.GameDifficultyEasy)

	second := reconnect(t, ts, sessionId)
	resp := readMsg[mc.NoPayload](t, second)
	require.Equal(t, mc.CodeReceivedInvalidSessionID, resp.Code)
	require.NotNil(t, resp.Error)

	// the rejected connection is closed by the server
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	require.Error(t, err)

	// the original connection still drives the match
	send(t, conn, mc.CodeGridView, mc.ReqGridView{Own: true})
	view := readMsg[mc.RespGridView](t, conn)
	require.Equal(t, mc.CodeGridView, view.Code)
	require.Nil(t, view.Error)
	require.Len(t, view.Payload.Tiles, mb.GridHeight)
	require.Equal(t, 1, ts.sessionManager.Count())
}

func TestResumeMatchAfterAbnormalClosure(t *testing.T) {
	ts := newTestServerWithGrace(t, 5*time.Second)
	conn, sessionId := dial(t, ts)
	created := createGame(t, conn, mb.GameDifficultyMedium)

	session, err := ts.sessionManager.FindSession(sessionId)
	require.NoError(t, err)

	// drop the tcp connection without a close frame
	require.NoError(t, conn.NetConn().Close())
	require.Eventually(t, session.IsAwaitingReconnect, 2*time.Second, 10*time.Millisecond)

	resumed := reconnect(t, ts, sessionId)
	send(t, resumed, mc.CodeGridView, mc.ReqGridView{Own: false})
	view := readMsg[mc.RespGridView](t, resumed)
	require.Equal(t, mc.CodeGridView, view.Code)
	require.Nil(t, view.Error)
	require.False(t, view.Payload.Own)

	match, err := ts.gameManager.GetMatch(created.GameUuid)
	require.NoError(t, err)
	require.Equal(t, mb.MatchPhaseDeploying, match.Phase())
	require.Equal(t, 1, ts.sessionManager.Count())
}

func TestSessionCleanupOnClose(t *testing.T) {
	ts := newTestServer(t)
	conn, _ := dial(t, ts)

	createGame(t, conn, mb.GameDifficultyEasy)
	require.Equal(t, 1, ts.sessionManager.Count())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	require.Eventually(t, func() bool {
		return ts.sessionManager.Count() == 0 && ts.gameManager.Count() == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	rp, err := NewRequestProcessor(mc.NewBattleshipSessionManager(), mb.NewBattleshipGameManager(),
		WithServerIpNet(testIpNet), WithStage(StageProd), WithAllowedOrigins("https://play.example"))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/battleship", nil)
	require.True(t, rp.checkOrigin(req))

	req.Header.Set("Origin", "https://play.example")
	require.True(t, rp.checkOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	require.False(t, rp.checkOrigin(req))

	_, err = NewRequestProcessor(mc.NewBattleshipSessionManager(), mb.NewBattleshipGameManager(), WithStage("qa"))
	require.Error(t, err)
}
