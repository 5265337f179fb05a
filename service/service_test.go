package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/db"
	"github.com/nickyhof/DemoDB/ps"
)

var tester = core.Identity{Name: "tester", Email: "tester@example.com"}

func newDemoService(t *testing.T, config Config) *Service {
	t.Helper()
	config.Latency = 0
	return New(db.NewEngine(ps.NewDemoStore(), tester), config)
}

func TestDemoModeWithoutBackend(t *testing.T) {
	service := newDemoService(t, DefaultConfig())
	assert.False(t, service.IsDemoMode())

	_, ok := service.MockServerState()
	assert.False(t, ok)

	status := service.TestConnection(context.Background(), DatabaseConnection{})
	assert.True(t, status.Connected)
	assert.Equal(t, "Connected in Demo Mode.", status.Message)
	assert.Equal(t, []string{"company_db", "demo_db", "system_db"}, status.Databases)
	assert.True(t, service.IsDemoMode())

	state, ok := service.MockServerState()
	require.True(t, ok)
	assert.Len(t, state, 3)
}

func TestTestConnectionResetsDemoState(t *testing.T) {
	service := newDemoService(t, DefaultConfig())
	conn := DatabaseConnection{Database: "demo_db"}

	result := service.ExecuteQuery(context.Background(), "DROP TABLE users", conn)
	require.True(t, result.Success)

	service.TestConnection(context.Background(), conn)
	result = service.ExecuteQuery(context.Background(), "SELECT * FROM users", conn)
	require.True(t, result.Success)
	assert.Len(t, result.Data, 5)
}

func TestMockServerStateIsDetached(t *testing.T) {
	service := newDemoService(t, DefaultConfig())
	service.TestConnection(context.Background(), DatabaseConnection{})

	state, ok := service.MockServerState()
	require.True(t, ok)
	delete(state, "demo_db")

	state, _ = service.MockServerState()
	assert.Contains(t, state, "demo_db")
}

func TestDemoScript(t *testing.T) {
	service := newDemoService(t, DefaultConfig())

	results := service.ExecuteScript(context.Background(),
		"USE company_db; UPDATE employees SET department_id = '2' WHERE emp_id = '103'; SELECT * FROM employees",
		DatabaseConnection{})
	require.Len(t, results, 3)
	for _, result := range results {
		assert.True(t, result.Success, result.Error)
	}
	assert.Equal(t, 1, results[1].Affected())
	assert.Equal(t, int64(2), results[2].Data[2]["department_id"])
}

func TestDemoLatencyHonoursContext(t *testing.T) {
	service := New(db.NewEngine(ps.NewDemoStore(), tester), Config{Latency: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result := service.ExecuteQuery(ctx, "DROP DATABASE demo_db", DatabaseConnection{})
	assert.False(t, result.Success)
	assert.Equal(t, context.DeadlineExceeded.Error(), result.Error)
	assert.Contains(t, service.Engine().Store().DatabaseNames(), "demo_db")
}

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestBackendQuery(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connect":
			var conn DatabaseConnection
			require.NoError(t, json.NewDecoder(r.Body).Decode(&conn))
			assert.Equal(t, "root", conn.Username)
			_, _ = w.Write([]byte(`{"databases":["prod"]}`))
		case "/query":
			var req queryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "SELECT 1", req.Query)
			assert.Equal(t, "prod", req.Connection.Database)
			_, _ = w.Write([]byte(`{"data":[{"1":1}],"columns":["1"],"executionTime":3}`))
		default:
			http.NotFound(w, r)
		}
	})

	service := newDemoService(t, Config{BaseURL: backend.URL + "/"})
	conn := DatabaseConnection{Username: "root", Database: "prod"}

	status := service.TestConnection(context.Background(), conn)
	assert.True(t, status.Connected)
	assert.Equal(t, "Connection successful", status.Message)
	assert.Equal(t, []string{"prod"}, status.Databases)
	assert.False(t, service.IsDemoMode())

	result := service.ExecuteQuery(context.Background(), "  SELECT 1  ", conn)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"1"}, result.Columns)
	assert.Equal(t, int64(3), result.Elapsed())

	_, ok := service.MockServerState()
	assert.False(t, ok)
}

func TestBackendErrors(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/connect":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Access denied"}`))
		case "/query":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`oops`))
		}
	})

	service := newDemoService(t, Config{BaseURL: backend.URL})

	status := service.TestConnection(context.Background(), DatabaseConnection{})
	assert.False(t, status.Connected)
	assert.Equal(t, "Access denied", status.Error)

	result := service.ExecuteQuery(context.Background(), "SELECT 1", DatabaseConnection{})
	assert.False(t, result.Success)
	assert.Equal(t, "Query failed", result.Error)
	assert.False(t, service.IsDemoMode())
}

func TestUnhealthyBackendMeansDemoMode(t *testing.T) {
	var queries int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		atomic.AddInt32(&queries, 1)
	}))
	defer server.Close()

	service := newDemoService(t, Config{BaseURL: server.URL})
	result := service.ExecuteQuery(context.Background(), "SHOW DATABASES", DatabaseConnection{})
	assert.True(t, result.Success)
	assert.Len(t, result.Data, 3)
	assert.True(t, service.IsDemoMode())
	assert.Zero(t, atomic.LoadInt32(&queries))
}

func TestBackendGoesAwayFallsBackToDemo(t *testing.T) {
	backend := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	service := newDemoService(t, Config{BaseURL: backend.URL})
	status := service.TestConnection(context.Background(), DatabaseConnection{})
	require.True(t, status.Connected)
	require.False(t, service.IsDemoMode())

	backend.Close()

	result := service.ExecuteQuery(context.Background(), "SHOW TABLES", DatabaseConnection{Database: "system_db"})
	assert.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"Tables_in_system_db"}, result.Columns)
	assert.True(t, service.IsDemoMode())
}
