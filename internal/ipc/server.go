package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/twm/internal/daemon"
	"github.com/1broseidon/twm/internal/metrics"
	"github.com/1broseidon/twm/internal/tiling"
)

// connTimeout bounds how long a client may take to send its request and
// read the reply.
const connTimeout = 5 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath  string
	listener    net.Listener
	twm         daemon.Controller
	logger      *slog.Logger
	metrics     *metrics.Metrics
	connTimeout time.Duration

	shutdownMu   sync.Mutex
	shuttingDown bool
	open         map[net.Conn]struct{}
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server on socketPath. A stale socket left by a
// previous daemon is removed.
func NewServer(socketPath string, twm daemon.Controller, logger *slog.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		socketPath:  socketPath,
		twm:         twm,
		logger:      logger,
		metrics:     m,
		connTimeout: connTimeout,
		open:        make(map[net.Conn]struct{}),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove existing socket if present
	_ = os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// Serve starts the server and stops it when ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		go func() {
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

// track registers conn so Stop can close it. It reports false once the
// server is shutting down.
func (s *Server) track(conn net.Conn) bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.open[conn] = struct{}{}
	s.conns.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.shutdownMu.Lock()
	delete(s.open, conn)
	s.shutdownMu.Unlock()
	s.conns.Done()
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(s.connTimeout)); err != nil {
		s.logger.Warn("IPC set deadline", "error", err)
		return
	}
	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		if s.stopping() {
			return
		}
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
		s.metrics.RecordRequest("invalid", resp.Status)
	} else {
		resp = s.HandleCommand(req)
		s.metrics.RecordRequest(string(req.Command), resp.Status)
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// HandleCommand processes an IPC command and returns a response
func (s *Server) HandleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandProtocolVersion:
		v, err := s.twm.ProtocolVersion()
		return s.reply(VersionData{Version: v}, err)
	case CommandTilesCount:
		n, err := s.twm.TilesCount()
		return s.reply(CountData{Count: n}, err)
	case CommandTileByID:
		var p TileByIDPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid tileById payload: %v", err))
		}
		tile, err := s.twm.Tile(tiling.TileID(p.ID))
		return s.reply(tile, err)
	case CommandActiveLayout:
		meta, err := s.twm.ActiveLayout()
		return s.reply(meta, err)
	case CommandFocusedTile:
		tile, err := s.twm.FocusedTile()
		return s.reply(tile, err)
	case CommandFocusedWorkspace:
		ws, err := s.twm.FocusedWorkspace()
		return s.reply(ws, err)
	case CommandWorkspacesCount:
		n, err := s.twm.WorkspacesCount()
		return s.reply(CountData{Count: n}, err)
	case CommandRelayout:
		return s.reply(nil, s.twm.Relayout())
	case CommandReload:
		s.logger.Info("IPC: reload requested")
		return s.reply(nil, s.twm.Reload())
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) reply(data any, err error) *Response {
	if err != nil {
		resp := NewErrorResponse(err.Error())
		if errors.Is(err, daemon.ErrNotAvailable) {
			resp.Code = CodeNotAvailable
		}
		return resp
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) stopping() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	// Unblock clients still waiting to send a request.
	for conn := range s.open {
		conn.Close()
	}
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	_ = os.Remove(s.socketPath)
	s.logger.Info("IPC server stopped")
}
