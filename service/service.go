package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/db"
	"github.com/nickyhof/DemoDB/logger"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultHealthTimeout = 1500 * time.Millisecond
	DefaultLatency       = 300 * time.Millisecond
)

// DatabaseConnection is what a client sends to connect. In demo mode only
// Database is used.
type DatabaseConnection struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

type ConnectionStatus struct {
	Connected bool     `json:"connected"`
	Message   string   `json:"message,omitempty"`
	Error     string   `json:"error,omitempty"`
	Databases []string `json:"databases,omitempty"`
}

type Config struct {
	// BaseURL of the real backend. Empty means demo mode only.
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration
	// Latency is the simulated network delay applied in demo mode.
	Latency time.Duration
	// StopOnError ends scripts at their first failed statement.
	StopOnError bool
}

func DefaultConfig() Config {
	return Config{
		Timeout:       DefaultTimeout,
		HealthTimeout: DefaultHealthTimeout,
		Latency:       DefaultLatency,
	}
}

// Service runs statements against the real backend when one answers its
// health check, and against the in-memory engine otherwise.
type Service struct {
	config Config
	client *http.Client
	engine *db.Engine

	mu        sync.Mutex
	probed    bool
	available bool
}

func New(engine *db.Engine, config Config) *Service {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.HealthTimeout <= 0 {
		config.HealthTimeout = DefaultHealthTimeout
	}
	if config.Latency < 0 {
		config.Latency = 0
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Service{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		engine: engine,
	}
}

func (service *Service) Engine() *db.Engine {
	return service.engine
}

// backendAvailable probes the backend once and caches the answer.
func (service *Service) backendAvailable(ctx context.Context) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.probed {
		return service.available
	}
	service.probed = true
	service.available = service.config.BaseURL != "" && service.checkHealth(ctx)
	if !service.available {
		logger.WithFields(logrus.Fields{"backend": service.config.BaseURL}).Warn("backend unavailable, using demo mode")
	}
	return service.available
}

func (service *Service) checkHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, service.config.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service.config.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := service.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// fallBack switches to demo mode after a network failure.
func (service *Service) fallBack(err error) {
	logger.WithFields(logrus.Fields{
		"backend": service.config.BaseURL,
		"error":   err,
	}).Warn("backend unreachable, switching to demo mode")

	service.mu.Lock()
	defer service.mu.Unlock()
	service.probed = true
	service.available = false
}

// IsDemoMode reports whether the backend has been found unavailable.
func (service *Service) IsDemoMode() bool {
	service.mu.Lock()
	defer service.mu.Unlock()
	return service.probed && !service.available
}

// MockServerState returns a copy of the in-memory server, only in demo mode.
func (service *Service) MockServerState() (core.Server, bool) {
	if !service.IsDemoMode() {
		return nil, false
	}
	return service.engine.Store().Snapshot(), true
}

// simulateLatency waits for the configured delay or until ctx is done.
func (service *Service) simulateLatency(ctx context.Context) error {
	if service.config.Latency == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(service.config.Latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TestConnection connects to the backend, or resets the demo server when
// there is none.
func (service *Service) TestConnection(ctx context.Context, conn DatabaseConnection) ConnectionStatus {
	if !service.backendAvailable(ctx) {
		if err := service.simulateLatency(ctx); err != nil {
			return ConnectionStatus{Connected: false, Error: err.Error()}
		}
		service.engine.Store().Reset()
		return ConnectionStatus{
			Connected: true,
			Message:   "Connected in Demo Mode.",
			Databases: service.engine.Store().DatabaseNames(),
		}
	}

	var body struct {
		Message   string   `json:"message"`
		Error     string   `json:"error"`
		Databases []string `json:"databases"`
	}
	status, err := service.post(ctx, "/connect", conn, &body)
	if err != nil {
		if ctx.Err() != nil {
			return ConnectionStatus{Connected: false, Error: ctx.Err().Error()}
		}
		service.fallBack(err)
		return service.TestConnection(ctx, conn)
	}
	if status >= http.StatusBadRequest {
		return ConnectionStatus{Connected: false, Error: orDefault(body.Error, "Connection failed")}
	}
	return ConnectionStatus{
		Connected: true,
		Message:   orDefault(body.Message, "Connection successful"),
		Databases: body.Databases,
	}
}

type queryRequest struct {
	Query      string             `json:"query"`
	Connection DatabaseConnection `json:"connection"`
}

// ExecuteQuery runs one statement with conn.Database as the current
// database.
func (service *Service) ExecuteQuery(ctx context.Context, query string, conn DatabaseConnection) db.QueryResult {
	if !service.backendAvailable(ctx) {
		if err := service.simulateLatency(ctx); err != nil {
			return db.ErrorResult(err.Error())
		}
		return service.engine.ExecuteContext(ctx, query, conn.Database)
	}

	var result db.QueryResult
	status, err := service.post(ctx, "/query", queryRequest{Query: strings.TrimSpace(query), Connection: conn}, &result)
	if err != nil {
		if ctx.Err() != nil {
			return db.ErrorResult(ctx.Err().Error())
		}
		service.fallBack(err)
		return service.ExecuteQuery(ctx, query, conn)
	}
	if status >= http.StatusBadRequest {
		return db.ErrorResult(orDefault(result.Error, "Query failed"))
	}
	result.Success = true
	return result
}

// ExecuteScript runs each statement of script in order, following USE
// statements.
func (service *Service) ExecuteScript(ctx context.Context, script string, conn DatabaseConnection) []db.QueryResult {
	executor := db.ExecutorFunc(func(ctx context.Context, query string, database string) db.QueryResult {
		c := conn
		c.Database = database
		return service.ExecuteQuery(ctx, query, c)
	})
	session := db.NewSession(executor, conn.Database)
	session.StopOnError = service.config.StopOnError
	return session.ExecuteScript(ctx, script)
}

// post sends payload as JSON and decodes the response into out. Only
// transport failures are returned as errors; HTTP error statuses are
// reported through the status code.
func (service *Service) post(ctx context.Context, path string, payload any, out any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, service.config.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, errors.Wrap(err, "invalid HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := service.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "POST %s failed", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s response", path)
	}
	// Error bodies are not always JSON; out keeps its zero value then.
	if len(bytes.TrimSpace(body)) > 0 {
		_ = json.Unmarshal(body, out)
	}
	return resp.StatusCode, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
