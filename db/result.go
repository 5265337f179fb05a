package db

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nickyhof/DemoDB/core"
)

type ResultType int

const (
	QueryResultType ResultType = iota
	CommitResultType
	ErrorResultType
)

// QueryResult is the outcome of one statement. Query results carry Data,
// Columns and TotalRows; commit results carry Message and, for statements
// that change the server, RowsAffected; failures carry only Error.
type QueryResult struct {
	Success       bool       `json:"success"`
	Data          []core.Row `json:"data,omitempty"`
	Columns       []string   `json:"columns,omitempty"`
	Message       string     `json:"message,omitempty"`
	Error         string     `json:"error,omitempty"`
	RowsAffected  *int       `json:"rowsAffected,omitempty"`
	ExecutionTime *int64     `json:"executionTime,omitempty"` // milliseconds
	TotalRows     *int       `json:"totalRows,omitempty"`
}

// MarshalJSON always writes data and columns for query results, even when
// there are no rows.
func (result QueryResult) MarshalJSON() ([]byte, error) {
	type plain QueryResult
	if result.Columns == nil {
		return json.Marshal(plain(result))
	}

	data := result.Data
	if data == nil {
		data = []core.Row{}
	}
	return json.Marshal(struct {
		plain
		Data    []core.Row `json:"data"`
		Columns []string   `json:"columns"`
	}{plain(result), data, result.Columns})
}

func (result QueryResult) Type() ResultType {
	switch {
	case !result.Success:
		return ErrorResultType
	case result.Columns != nil:
		return QueryResultType
	default:
		return CommitResultType
	}
}

func intPtr(n int) *int {
	return &n
}

func queryResult(columns []string, data []core.Row, total int) QueryResult {
	if data == nil {
		data = []core.Row{}
	}
	return QueryResult{Success: true, Data: data, Columns: columns, TotalRows: intPtr(total)}
}

func commitResult(message string, rowsAffected int) QueryResult {
	return QueryResult{Success: true, Message: message, RowsAffected: intPtr(rowsAffected)}
}

func messageResult(message string) QueryResult {
	return QueryResult{Success: true, Message: message}
}

// ErrorResult wraps a failure message.
func ErrorResult(message string) QueryResult {
	return QueryResult{Success: false, Error: message}
}

// Affected returns RowsAffected, or 0 when it is absent.
func (result QueryResult) Affected() int {
	if result.RowsAffected == nil {
		return 0
	}
	return *result.RowsAffected
}

// Elapsed returns ExecutionTime in milliseconds, or 0 when it is absent.
func (result QueryResult) Elapsed() int64 {
	if result.ExecutionTime == nil {
		return 0
	}
	return *result.ExecutionTime
}

// formatDuration formats milliseconds in human-readable form
func formatDuration(ms int64) string {
	switch {
	case ms < 1:
		return "<1ms"
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	case ms < 60_000:
		secs := float64(ms) / 1000
		if secs < 10 {
			return fmt.Sprintf("%.1fs", secs)
		}
		return fmt.Sprintf("%ds", int(secs))
	default:
		mins := ms / 60_000
		remainSecs := (ms % 60_000) / 1000
		if remainSecs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm%ds", mins, remainSecs)
	}
}

func (result QueryResult) Display() {
	result.Render(os.Stdout)
}

// Render writes the result for a terminal: a table and a row count for
// queries, the message for commits and the error for failures.
func (result QueryResult) Render(w io.Writer) {
	switch result.Type() {
	case ErrorResultType:
		fmt.Fprintf(w, "Error: %s\n", result.Error)

	case QueryResultType:
		if len(result.Data) > 0 {
			table := NewTable(w)
			table.Header(result.Columns)
			table.Rows(result.Columns, result.Data)
			table.Render()
		}
		shown := len(result.Data)
		total := shown
		if result.TotalRows != nil {
			total = *result.TotalRows
		}
		if shown == total {
			fmt.Fprintf(w, "%d rows (%s)\n", shown, formatDuration(result.Elapsed()))
		} else {
			fmt.Fprintf(w, "%d of %d rows (%s)\n", shown, total, formatDuration(result.Elapsed()))
		}

	default:
		message := result.Message
		if message == "" {
			message = "OK"
		}
		fmt.Fprintf(w, "%s (%s)\n", message, formatDuration(result.Elapsed()))
	}
}
