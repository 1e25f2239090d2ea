package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/saeidalz13/battleship-solo/db/sqlc"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	URLQuerySessionIDKeyword string = "sessionID"
)

type Option func(*RequestProcessor) error

func WithStage(stage string) Option {
	return func(rp *RequestProcessor) error {
		if stage != StageDev && stage != StageProd {
			return fmt.Errorf("stage must be either dev or prod, got %q", stage)
		}
		rp.stage = stage
		return nil
	}
}

// WithAnalytics enables match analytics. Without it nothing
// is written to the database.
func WithAnalytics(am *sqlc.AnalyticsManager) Option {
	return func(rp *RequestProcessor) error {
		rp.analytics = am
		return nil
	}
}

// Empty origins accept every client; only sensible in dev.
func WithAllowedOrigins(origins ...string) Option {
	return func(rp *RequestProcessor) error {
		for _, origin := range origins {
			rp.allowedOrigins[origin] = true
		}
		return nil
	}
}

func WithServerIpNet(ipnet net.IPNet) Option {
	return func(rp *RequestProcessor) error {
		rp.ipnet = ipnet
		return nil
	}
}

// Lets tests pin the randomness of every match created.
func WithMatchOptions(opts ...mb.MatchOption) Option {
	return func(rp *RequestProcessor) error {
		rp.matchOpts = append(rp.matchOpts, opts...)
		return nil
	}
}

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager

	stage          string
	allowedOrigins map[string]bool
	ipnet          net.IPNet
	matchOpts      []mb.MatchOption
	upgrader       websocket.Upgrader
}

func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	opts ...Option,
) (*RequestProcessor, error) {
	rp := &RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		stage:          StageDev,
		allowedOrigins: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(rp); err != nil {
			return nil, err
		}
	}

	if rp.ipnet.IP == nil {
		ipnet, err := findServerIpNet()
		if err != nil {
			log.Warn().Err(err).Msg("using loopback address for analytics")
			ipnet = net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)}
		}
		rp.ipnet = ipnet
	}

	rp.upgrader = websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// a full grid view is the biggest message and fits easily
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     rp.checkOrigin,
	}

	return rp, nil
}

func (rp *RequestProcessor) checkOrigin(r *http.Request) bool {
	// native clients send no Origin
	if r.Header.Get("Origin") == "" {
		return true
	}
	if len(rp.allowedOrigins) == 0 {
		return rp.stage == StageDev
	}
	return rp.allowedOrigins[r.Header.Get("Origin")]
}

// Expose this method to use it in testing
func (rp *RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func findServerIpNet() (net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.IPNet{}, err
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			return net.IPNet{}, err
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}

			if ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return *ipnet, nil
			}
		}
	}

	return net.IPNet{}, fmt.Errorf("no non-loopback ipv4 interface found")
}
