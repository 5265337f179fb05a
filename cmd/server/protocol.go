// Package main provides a TCP server for DemoDB.
package main

import (
	"encoding/json"

	"github.com/nickyhof/DemoDB/db"
	"github.com/nickyhof/DemoDB/ps"
)

// Response is one line sent back to the client.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// Type is "query", "commit", "auth", "reset", "snapshot" or "history".
	Type string `json:"type,omitempty"`
	// Database is the connection's current database after the line ran.
	Database string          `json:"database,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// AuthResponse is the result of a successful AUTH line.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"` // seconds
}

// HistoryResponse is the result of a .history line.
type HistoryResponse struct {
	Transactions []ps.Transaction `json:"transactions"`
}

// resultResponse wraps a statement result. Failed statements carry their
// message in Error and no Result.
func resultResponse(result db.QueryResult) Response {
	if !result.Success {
		return Response{Success: false, Error: result.Error}
	}

	typ := "commit"
	if result.Type() == db.QueryResultType {
		typ = "query"
	}
	data, err := json.Marshal(result)
	if err != nil {
		return errorResponse(typ, err)
	}
	return Response{Success: true, Type: typ, Result: data}
}

func dataResponse(typ string, v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse(typ, err)
	}
	return Response{Success: true, Type: typ, Result: data}
}

func errorResponse(typ string, err error) Response {
	return Response{Success: false, Type: typ, Error: err.Error()}
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeResponse parses one response line.
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	err := json.Unmarshal(data, &resp)
	return resp, err
}

// QueryResult decodes the statement result carried by a query or commit
// response.
func (resp Response) QueryResult() (db.QueryResult, error) {
	if !resp.Success {
		return db.ErrorResult(resp.Error), nil
	}
	var result db.QueryResult
	err := json.Unmarshal(resp.Result, &result)
	return result, err
}
