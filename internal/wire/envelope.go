package wire

import (
	"bytes"
	"encoding/json"
	"errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrNotObject reports a frame whose payload is valid bytes but not a JSON
// object. Such frames are skipped, not fatal to the connection.
var ErrNotObject = errors.New("frame payload is not a JSON object")

// Request is an inbound frame. The first frame of a connection carries only
// Tag; every later frame carries Action and Data. Tag stays raw so a
// wrong-typed value can be told apart from an absent one.
type Request struct {
	Tag    json.RawMessage `json:"tag,omitempty"`
	Action string          `json:"action,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// TagValue returns the tag string of a registration frame. ok is false when
// the tag field is missing or not a JSON string.
func (r *Request) TagValue() (string, bool) {
	if len(r.Tag) == 0 {
		return "", false
	}
	var tag string
	if err := json.Unmarshal(r.Tag, &tag); err != nil {
		return "", false
	}
	return tag, true
}

// Response is the envelope for every outbound frame. ActionResponse names
// the originating action on business success responses; registration acks
// and error responses leave it empty and rely on the client's FIFO queue.
type Response struct {
	Status         string      `json:"status"`
	Message        string      `json:"message"`
	Data           interface{} `json:"data"`
	ActionResponse string      `json:"action_response,omitempty"`
}

func Success(message string, data interface{}) Response {
	return Response{Status: StatusSuccess, Message: message, Data: data}
}

func Error(message string) Response {
	return Response{Status: StatusError, Message: message}
}

// ParseRequest decodes a frame payload into a Request, insisting on a JSON
// object at the top level.
func ParseRequest(payload []byte) (*Request, error) {
	if !isObject(payload) {
		return nil, ErrNotObject
	}
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, ErrNotObject
	}
	return &req, nil
}

// ParseResponse decodes a frame payload into a Response.
func ParseResponse(payload []byte) (*Response, error) {
	if !isObject(payload) {
		return nil, ErrNotObject
	}
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, ErrNotObject
	}
	return &resp, nil
}

func isObject(payload []byte) bool {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
