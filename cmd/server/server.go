package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nickyhof/DemoDB"
	"github.com/nickyhof/DemoDB/conf"
	"github.com/nickyhof/DemoDB/core"
	"github.com/nickyhof/DemoDB/db"
	"github.com/nickyhof/DemoDB/logger"
	"github.com/nickyhof/DemoDB/ps"
)

const defaultHistoryLimit = 20

// Server is a line-oriented TCP server over a DemoDB instance. Each
// connection has its own session and current database; all connections
// share the instance's store.
type Server struct {
	listener   net.Listener
	instance   *DemoDB.Instance
	identity   core.Identity
	authConfig *conf.AuthConfig
	database   string
	tls        bool
	done       chan struct{}
	cancel     context.CancelFunc
	ctx        context.Context
	wg         sync.WaitGroup
}

// NewServer creates a server whose connections act as identity.
func NewServer(instance *DemoDB.Instance, identity core.Identity) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		instance: instance,
		identity: identity,
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// NewServerWithAuth creates a server whose connections must authenticate
// before running statements when authConfig is enabled.
func NewServerWithAuth(instance *DemoDB.Instance, identity core.Identity, authConfig *conf.AuthConfig) *Server {
	server := NewServer(instance, identity)
	server.authConfig = authConfig
	return server
}

// SetDatabase sets the current database new connections start with.
func (s *Server) SetDatabase(database string) {
	s.database = database
}

func (s *Server) authRequired() bool {
	return s.authConfig != nil && s.authConfig.Enabled
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "failed to start server")
	}
	s.serve(listener)
	return nil
}

// StartTLS is Start with TLS using the given certificate and key files.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return errors.Wrap(err, "failed to load TLS certificate")
	}
	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return errors.Wrap(err, "failed to start TLS server")
	}
	s.tls = true
	s.serve(listener)
	return nil
}

func (s *Server) serve(listener net.Listener) {
	s.listener = listener
	logger.Infof("server listening on %s", listener.Addr())
	go s.acceptLoop()
}

// Stop closes the listener and every open connection, then waits for the
// connection handlers to finish.
func (s *Server) Stop() error {
	close(s.done)
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}

func (s *Server) TLSEnabled() bool {
	return s.tls
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				logger.Warnf("accept error: %v", err)
				continue
			}
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// connection is the per-client state.
type connection struct {
	state   *ConnectionState
	session *db.Session
}

func (s *Server) newConnection() *connection {
	c := &connection{state: &ConnectionState{}}
	executor := db.ExecutorFunc(func(ctx context.Context, query string, database string) db.QueryResult {
		return s.instance.Engine(s.identityFor(c.state)).ExecuteContext(ctx, query, database)
	})
	c.session = db.NewSession(executor, s.database)
	return c
}

// identityFor returns the authenticated identity, or the server identity.
func (s *Server) identityFor(state *ConnectionState) core.Identity {
	if state.identity != nil {
		return *state.identity
	}
	return s.identity
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the read below when the server stops.
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-s.ctx.Done():
			conn.SetReadDeadline(time.Now())
		case <-closed:
		}
	}()

	log := logger.WithFields(logrus.Fields{"remote": conn.RemoteAddr().String()})
	log.Info("client connected")

	c := s.newConnection()
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && s.ctx.Err() == nil {
				log.Warnf("read error: %v", err)
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			log.Info("client disconnected")
			return
		}

		response := s.handleLine(s.ctx, line, c)
		response.Database = c.session.Database

		data, err := EncodeResponse(response)
		if err != nil {
			log.Errorf("failed to encode response: %v", err)
			continue
		}
		if _, err := conn.Write(data); err != nil {
			log.Warnf("write error: %v", err)
			return
		}
	}
}

// handleLine runs one protocol line: an AUTH command, a dot command or a
// statement.
func (s *Server) handleLine(ctx context.Context, line string, c *connection) Response {
	if isAuthCommand(line) {
		if !s.authRequired() {
			return errorResponse("auth", errors.New("authentication not enabled"))
		}
		return s.handleAuth(line, c.state)
	}

	if s.authRequired() {
		if c.state.expired(time.Now()) {
			return errorResponse("auth", errors.New("token expired: send AUTH JWT <token>"))
		}
		if !c.state.IsAuthenticated() {
			return errorResponse("auth", errAuthRequired)
		}
	}

	if strings.HasPrefix(line, ".") {
		return s.handleCommand(line, s.identityFor(c.state))
	}
	return resultResponse(c.session.Execute(ctx, line))
}

func (s *Server) handleCommand(line string, identity core.Identity) Response {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".reset":
		s.instance.Reset()
		return Response{Success: true, Type: "reset"}

	case ".snapshot":
		return dataResponse("snapshot", s.instance.Snapshot())

	case ".history":
		limit := defaultHistoryLimit
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 0 {
				return errorResponse("history", errors.Errorf("invalid history limit %q", parts[1]))
			}
			limit = n
		}
		journal := s.instance.Store.Journal()
		if journal == nil {
			return errorResponse("history", ps.ErrJournalDisabled)
		}
		transactions, err := journal.History(limit)
		if err != nil {
			return errorResponse("history", err)
		}
		if transactions == nil {
			transactions = []ps.Transaction{}
		}
		return dataResponse("history", HistoryResponse{Transactions: transactions})

	case ".restore":
		if len(parts) < 2 {
			return errorResponse("restore", errors.New("usage: .restore <journal id>"))
		}
		target, err := s.instance.Store.Restore(identity, parts[1])
		if err != nil {
			return errorResponse("restore", err)
		}
		return dataResponse("restore", target)

	default:
		return errorResponse("", errors.Errorf("unknown command %s", parts[0]))
	}
}
