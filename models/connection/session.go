package connection

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	maxWriteWsRetries uint8         = 2
	backOffFactor     uint8         = 2
	gracePeriod       time.Duration = time.Minute * 2
)

const (
	MessageTypeBytes uint8 = iota
	MessageTypeJSON
)

type ConnectionHandler interface {
	reconnectionAfterAbnormalClosure(conn *websocket.Conn) bool
	handleReadFromConnErr(err error, retries uint8) uint8
	writeToConnWithRetry(msg interface{}, msgType uint8) error
	onConnErr(err error) uint8
}

// Session is one websocket client. It outlives a single
// connection so an app that went to background can reconnect
// with its session ID and keep playing the same match.
type Session struct {
	id                     string
	conn                   *websocket.Conn
	reconnectionSignalChan chan struct{}
	awaitingReconnect      bool
	createdAt              time.Time
	matchUuid              string
	mu                     sync.Mutex
}

func NewSession(id string, conn *websocket.Conn) *Session {
	return &Session{
		id:                     id,
		conn:                   conn,
		reconnectionSignalChan: make(chan struct{}),
		createdAt:              time.Now(),
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Session) MatchUuid() string {
	return s.matchUuid
}

func (s *Session) SetMatchUuid(matchUuid string) {
	s.matchUuid = matchUuid
}

func (s *Session) onConnErr(err error) uint8 {
	logger := log.With().Str("session", s.id).Err(err).Logger()

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		logger.Warn().Msg("timeout error")
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		logger.Warn().Msg("high server load/traffic error")
		return ConnLoopRetry
	}

	// Happens if the IOS client goes to background
	if websocket.IsCloseError(err, websocket.CloseAbnormalClosure) {
		logger.Warn().Msg("abnormal closure error")
		return ConnLoopAbnormalClosureRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		logger.Info().Msg("close error")
		return ConnLoopBreak
	}

	if websocket.IsCloseError(err, websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension) {
		logger.Error().Msg("critical error")
		return ConnLoopBreak
	}

	/*
		Probably not a client of this application. Breaking not to
		overwhelm the server with invalid payloads (e.g. binary data
		or text that is not UTF-8)
	*/
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation, websocket.CloseServiceRestart, websocket.CloseNoStatusReceived) {
		logger.Warn().Msg("non-critical error")
		return ConnLoopBreak
	}

	logger.Error().Msg("unexpected error")
	return ConnLoopBreak
}

// Writes to the connection of that session. It also
// handles the abnormal or other types of errors of
// writing to a websocket connection.
func (s *Session) writeToConnWithRetry(msg interface{}, msgType uint8) error {
	var retries uint8
	conn := s.Conn()

writeJsonLoop:
	for {
		var err error

		switch msgType {
		case MessageTypeJSON:
			err = conn.WriteJSON(msg)

		case MessageTypeBytes:
			respBytes, ok := msg.([]byte)
			if !ok {
				return NewConnErr(ConnInvalidMsgType).AddDesc("msg type expected: []byte got invalid")
			}
			err = conn.WriteMessage(websocket.TextMessage, respBytes)

		default:
			return NewConnErr(ConnInvalidMsgType).AddDesc("invalid meessage type to write with retry")
		}

		if err == nil {
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWriteWsRetries {
				retries++
				log.Warn().Str("remote", conn.RemoteAddr().String()).Uint8("retry", retries).Msg("writing json failed to ws; retrying...")
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue writeJsonLoop
			}
			log.Error().Str("remote", conn.RemoteAddr().String()).Err(err).Msg("max retries reached for writing to ws")
			return NewConnErr(ConnLoopBreak)

		case ConnLoopAbnormalClosureRetry:
			return NewConnErr(ConnLoopAbnormalClosureRetry)

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking writeJsonLoop due to:" + err.Error())
		}
	}
}

// Handles the errors that occurs when reading from
// ws connection. `ConnLoopBreak` will result in
// terminating the session.
func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	switch s.onConnErr(err) {
	case ConnLoopAbnormalClosureRetry:
		return ConnLoopAbnormalClosureRetry

	case ConnLoopRetry:
		if retries < maxWriteWsRetries {
			log.Warn().Str("session", s.id).Uint8("retry", retries).Msg("failed to read from ws conn; retrying...")
			time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
			return ConnLoopContinue
		}
		return ConnLoopBreak

	default:
		log.Info().Str("session", s.id).Err(err).Msg("break ws conn loop")
		return ConnLoopBreak
	}
}

// IsAwaitingReconnect reports whether the session lost its
// connection and is inside its grace period.
func (s *Session) IsAwaitingReconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingReconnect
}

// Opens the grace period and returns the channel closed on
// reconnection.
func (s *Session) beginGracePeriod() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingReconnect = true
	return s.reconnectionSignalChan
}

// Closes the grace period. False means a reconnection got in
// first and the session must carry on.
func (s *Session) expireGracePeriod() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := s.awaitingReconnect
	s.awaitingReconnect = false
	return expired
}

// Only a session in its grace period accepts a new connection.
// A live session is still reading the old one.
func (s *Session) reconnectionAfterAbnormalClosure(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.awaitingReconnect {
		return false
	}

	if s.conn != nil {
		s.conn.Close()
	}

	// Signal for reconnection
	close(s.reconnectionSignalChan)

	// Setting the new fields for the session
	s.conn = conn
	s.reconnectionSignalChan = make(chan struct{})
	s.awaitingReconnect = false
	return true
}

var _ ConnectionHandler = (*Session)(nil)
