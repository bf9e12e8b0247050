package dispatch

import "encoding/json"

const (
	StatusOK    = 200
	StatusError = 500
)

// Response is the envelope every invocation ends in. It is either a success
// carrying an optional payload or a failure carrying the error message.
type Response struct {
	TxID    string          `json:"txId"`
	Status  int             `json:"status"`
	Message string          `json:"message,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	err error
}

func success(txID string, payload json.RawMessage) Response {
	return Response{TxID: txID, Status: StatusOK, Payload: payload}
}

func failure(txID string, err error) Response {
	return Response{TxID: txID, Status: StatusError, Message: err.Error(), err: err}
}

// Err returns the error behind a failure envelope so callers can match it
// with errors.Is.
func (r Response) Err() error {
	return r.err
}

func (r Response) OK() bool {
	return r.Status == StatusOK
}
