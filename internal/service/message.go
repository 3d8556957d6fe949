package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/muurk/pktdecode/internal/packet"
)

// ErrorTypeRequest marks a message that could not be read as a request at all
const ErrorTypeRequest = "request"

// Request is one decode request
type Request struct {
	// ID is echoed back in the response so clients can pair answers
	ID  string `json:"id,omitempty"`
	Hex string `json:"hex"`
}

// Response is the answer to one Request
type Response struct {
	ID         string          `json:"id,omitempty"`
	OK         bool            `json:"ok"`
	VersionSum uint64          `json:"version_sum"`
	Value      uint64          `json:"value"`
	Bits       int             `json:"bits"`
	Padding    int             `json:"padding"`
	Packets    json.RawMessage `json:"packets,omitempty"`
	Error      string          `json:"error,omitempty"`
	ErrorType  string          `json:"error_type,omitempty"`
}

// ParseRequest reads a message payload. A payload starting with '{' is
// decoded as JSON; anything else is taken as bare hex.
func ParseRequest(data []byte) (Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Request{}, fmt.Errorf("empty message")
	}

	if trimmed[0] != '{' {
		return Request{Hex: string(trimmed)}, nil
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return Request{}, fmt.Errorf("invalid JSON request: %w", err)
	}
	req.Hex = strings.TrimSpace(req.Hex)
	if req.Hex == "" {
		return Request{}, fmt.Errorf("request has no hex field")
	}
	return req, nil
}

// Handle decodes and evaluates one request
func Handle(req Request, opts ...packet.Option) *Response {
	resp := &Response{ID: req.ID}

	res, err := packet.Solve(req.Hex, opts...)
	if err != nil {
		resp.Error = err.Error()
		resp.ErrorType = packet.TypeOf(err).Code()
		return resp
	}

	tree, err := json.Marshal(res.Packets)
	if err != nil {
		resp.Error = fmt.Sprintf("failed to encode packets: %v", err)
		resp.ErrorType = packet.ErrTypeUnknown.Code()
		return resp
	}

	resp.OK = true
	resp.VersionSum = res.VersionSum
	resp.Value = res.Value
	resp.Bits = res.Bits
	resp.Padding = res.Padding
	resp.Packets = tree
	return resp
}

// requestError builds the response for a message ParseRequest rejected
func requestError(err error) *Response {
	return &Response{Error: err.Error(), ErrorType: ErrorTypeRequest}
}
