package connection

// NoPayload is used for messages that only carry a code.
type NoPayload bool

// Message is the envelope of every frame in both directions.
// Error is only set on responses that failed.
type Message[T any] struct {
	Code    uint8    `json:"code"`
	Payload T        `json:"payload,omitempty"`
	Error   *RespErr `json:"error,omitempty"`
}

func NewMessage[T any](code uint8) Message[T] {
	return Message[T]{Code: code}
}

// NewErrMessage answers code with an error and no payload.
func NewErrMessage(code uint8, err error, message string) Message[NoPayload] {
	msg := NewMessage[NoPayload](code)
	msg.AddError(err.Error(), message)
	return msg
}

func (m *Message[T]) AddPayload(payload T) {
	m.Payload = payload
}

func (m *Message[T]) AddError(errorDetails, message string) {
	m.Error = NewRespErr(errorDetails, message)
}

func (m Message[T]) Failed() bool {
	return m.Error != nil
}
