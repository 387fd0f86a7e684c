// Package messaging implements the peer-to-peer gossip transport: the
// request/response envelope, the peer registry, and the mutex-serialized
// outbound connection each peer owns.
package messaging

import "encoding/json"

// Status is the outcome tag carried on every response envelope.
type Status string

// The two response statuses.
const (
	StatusOK    Status = "ok"
	StatusNotOK Status = "not ok"
)

// Request is the envelope every outbound message is wrapped in.
type Request struct {
	Target string          `json:"target"`
	Data   json.RawMessage `json:"data"`
}

// Response is the envelope every reply is wrapped in. Data carries the
// handler's return value when Status is "ok", and a human-readable
// error string otherwise.
type Response struct {
	Status Status          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Origin is the self-reported host/port a node stamps onto messages
// that may prompt the receiver to dial back.
type Origin struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

// NewRequest marshals data and wraps it in a Request addressed to
// target.
func NewRequest(target string, data any) (Request, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Request{}, err
	}

	return Request{Target: target, Data: raw}, nil
}

// NewOKResponse wraps data as a successful Response.
func NewOKResponse(data any) Response {
	raw, err := json.Marshal(data)
	if err != nil {
		return NewErrResponse(err.Error())
	}

	return Response{Status: StatusOK, Data: raw}
}

// NewErrResponse wraps message as a failed Response.
func NewErrResponse(message string) Response {
	raw, _ := json.Marshal(message)
	return Response{Status: StatusNotOK, Data: raw}
}

// OK reports whether the response indicates success.
func (r Response) OK() bool {
	return r.Status == StatusOK
}
