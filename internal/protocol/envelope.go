// Package protocol defines the JSON wire protocol between the
// orchestration side and the scene host.
//
// Requests and responses are single UTF-8 JSON objects sent as raw bytes
// with no length prefix or delimiter. A message boundary is the first
// point at which the accumulated bytes parse as one complete JSON value.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Status values carried by a response envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Command is the client-to-host request envelope.
// Params are keyword-bound arguments; key order is irrelevant.
type Command struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the host-to-client result envelope. Exactly one of Result
// (success) or Message (error) is present on the wire, never both.
type Response struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success builds a success envelope. A nil result is replaced with an
// empty object so the wire value always carries a result field.
func Success(result any) Response {
	if result == nil {
		result = struct{}{}
	}
	return Response{Status: StatusSuccess, Result: result}
}

// Error builds an error envelope.
func Error(format string, args ...any) Response {
	return Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// RawResponse is the decoded form of a response envelope as read off the
// wire, with the result left unparsed for the caller to bind.
type RawResponse struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// NewCommand builds a command envelope, marshaling params. Nil params
// become an empty object.
func NewCommand(cmdType string, params any) (Command, error) {
	if params == nil {
		params = struct{}{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return Command{}, fmt.Errorf("marshal params: %w", err)
	}
	return Command{Type: cmdType, Params: raw}, nil
}
