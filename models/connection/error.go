package connection

import (
	"errors"
	"fmt"
)

// What the session loop should do after a connection error.
const (
	ConnLoopBreak uint8 = iota
	ConnLoopRetry
	ConnLoopAbnormalClosureRetry
	ConnLoopContinue
	ConnInvalidMsgType
)

var connCodeNames = map[uint8]string{
	ConnLoopBreak:                "break",
	ConnLoopRetry:                "retry",
	ConnLoopAbnormalClosureRetry: "abnormal closure",
	ConnLoopContinue:             "continue",
	ConnInvalidMsgType:           "invalid message type",
}

type ConnErr struct {
	code uint8
	desc string
}

func NewConnErr(code uint8) ConnErr {
	return ConnErr{code: code}
}

func (c ConnErr) AddDesc(desc string) ConnErr {
	c.desc = desc
	return c
}

func (c ConnErr) Error() string {
	if c.desc == "" {
		return fmt.Sprintf("connection error: %s", connCodeNames[c.code])
	}
	return fmt.Sprintf("connection error: %s: %s", connCodeNames[c.code], c.desc)
}

func (c ConnErr) Code() uint8 {
	return c.code
}

// ConnErrCode extracts the loop code of err. Anything that is
// not a ConnErr means the loop has to break.
func ConnErrCode(err error) uint8 {
	var connErr ConnErr
	if errors.As(err, &connErr) {
		return connErr.code
	}
	return ConnLoopBreak
}
