package api

import (
	"encoding/json"
	"errors"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

type RequestHandler interface {
	HandleCreateGame(gm mb.GameManager, opts ...mb.MatchOption) (*mb.Match, mc.Message[mc.RespCreateGame])
	HandlePlaceShip(match *mb.Match) mc.Message[mc.RespDeployment]
	HandleRandomDeploy(match *mb.Match) mc.Message[mc.RespDeployment]
	HandleReady(match *mb.Match) mc.Message[mc.NoPayload]
	HandleAttack(match *mb.Match) (mc.Message[mc.RespAttack], error)
	HandleGridView(match *mb.Match) mc.Message[mc.RespGridView]
	HandleEndGame(match *mb.Match) mc.Message[mc.RespEndGame]
}

// Every incoming request is one json message. The request
// is then handled in line with RequestHandler interface.
type Request struct {
	payload []byte
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(payload ...[]byte) Request {
	if len(payload) == 0 {
		return Request{}
	}
	return Request{payload: payload[0]}
}

func decodePayload[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	if len(payload) == 0 {
		return msg.Payload, cerr.ErrNilPayload()
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg.Payload, err
	}
	return msg.Payload, nil
}

func (r Request) HandleCreateGame(gm mb.GameManager, opts ...mb.MatchOption) (*mb.Match, mc.Message[mc.RespCreateGame]) {
	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)

	req, err := decodePayload[mc.ReqCreateGame](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid create game payload")
		return nil, resp
	}

	match, err := gm.CreateMatch(req.GameDifficulty, opts...)
	if err != nil {
		resp.AddError(err.Error(), "could not create the game")
		return nil, resp
	}

	resp.AddPayload(mc.RespCreateGame{
		GameUuid:       match.Uuid(),
		PlayerUuid:     match.Human().Uuid(),
		GameDifficulty: uint8(match.Difficulty()),
	})
	return match, resp
}

// A rejected placement is not fatal. The ship is left
// undeployed and the client is told why.
func (r Request) HandlePlaceShip(match *mb.Match) mc.Message[mc.RespDeployment] {
	resp := mc.NewMessage[mc.RespDeployment](mc.CodePlaceShip)

	req, err := decodePayload[mc.ReqPlaceShip](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid place ship payload")
		return resp
	}

	direction := mb.Direction(req.Direction)
	if direction != mb.DirectionLeftRight && direction != mb.DirectionUpDown {
		resp.AddError(cerr.ErrInvalidDirection(req.Direction).Error(), "invalid direction")
		return resp
	}

	if err := match.MoveShip(req.Row, req.Col, mb.ShipKind(req.ShipKind), direction); err != nil {
		resp.AddError(err.Error(), "ship could not be placed")
	}
	resp.AddPayload(mc.NewRespDeployment(match.Human().Grid()))
	return resp
}

func (r Request) HandleRandomDeploy(match *mb.Match) mc.Message[mc.RespDeployment] {
	resp := mc.NewMessage[mc.RespDeployment](mc.CodeRandomDeploy)

	if err := match.RandomizeDeployment(); err != nil {
		resp.AddError(err.Error(), "random deployment failed")
	}
	resp.AddPayload(mc.NewRespDeployment(match.Human().Grid()))
	return resp
}

func (r Request) HandleReady(match *mb.Match) mc.Message[mc.NoPayload] {
	resp := mc.NewMessage[mc.NoPayload](mc.CodeReady)

	if err := match.EndDeployment(); err != nil {
		resp.AddError(err.Error(), "player is not ready")
	}
	return resp
}

// The returned error is only set for protocol violations;
// the session cannot continue after one.
func (r Request) HandleAttack(match *mb.Match) (mc.Message[mc.RespAttack], error) {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)

	req, err := decodePayload[mc.ReqAttack](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid attack payload")
		return resp, nil
	}

	report, err := match.Attack(req.Row, req.Col)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		if errors.Is(err, cerr.ErrProtocolViolation) {
			return resp, err
		}
		return resp, nil
	}

	resp.AddPayload(mc.NewRespAttack(match, report))
	return resp, nil
}

func (r Request) HandleGridView(match *mb.Match) mc.Message[mc.RespGridView] {
	resp := mc.NewMessage[mc.RespGridView](mc.CodeGridView)

	req, err := decodePayload[mc.ReqGridView](r.payload)
	if err != nil {
		resp.AddError(err.Error(), "invalid grid view payload")
		return resp
	}

	if req.Own {
		resp.AddPayload(mc.NewRespGridView(match.HumanView(), true))
	} else {
		resp.AddPayload(mc.NewRespGridView(match.EnemyView(), false))
	}
	return resp
}

func (r Request) HandleEndGame(match *mb.Match) mc.Message[mc.RespEndGame] {
	resp := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
	resp.AddPayload(mc.NewRespEndGame(match))
	return resp
}
