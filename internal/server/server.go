package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ShazimR/myownwebserver/internal/config"
	"github.com/ShazimR/myownwebserver/internal/logfile"
	"github.com/ShazimR/myownwebserver/internal/request"
	"github.com/ShazimR/myownwebserver/internal/response"
)

var (
	ErrBind         = fmt.Errorf("failed to bind")
	ErrServerClosed = fmt.Errorf("server closed")
)

// Server accepts one connection at a time and runs the handler on it to
// completion before accepting the next.
type Server struct {
	closed      atomic.Bool
	listener    net.Listener
	handler     response.Handler
	log         *logfile.Logger
	readTimeout time.Duration
	now         func() time.Time
}

func NewServer(listener net.Listener, handler response.Handler, lg *logfile.Logger) *Server {
	return &Server{
		listener: listener,
		handler:  handler,
		log:      lg,
		now:      time.Now,
	}
}

// Listen binds to the configured address. The port is taken as is, range
// checks belong to config.Validate.
func Listen(cfg config.Config, handler response.Handler, lg *logfile.Logger) (*Server, error) {
	ip := cfg.IP()
	if ip == nil {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidAddress, cfg.Address)
	}

	addr := net.JoinHostPort(ip.String(), strconv.Itoa(cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrBind, addr, err)
	}

	s := NewServer(listener, handler, lg)
	s.SetReadTimeout(cfg.ReadTimeout)
	return s, nil
}

// ListenAndServe binds and serves until the listener fails. Configuration
// and bind failures are logged before being returned.
func ListenAndServe(cfg config.Config, handler response.Handler, lg *logfile.Logger) error {
	s, err := Listen(cfg, handler, lg)
	if err != nil {
		lg.Error("%v", err)
		return err
	}

	return s.Serve()
}

// SetReadTimeout bounds the single request read. Zero waits forever.
func (s *Server) SetReadTimeout(d time.Duration) {
	s.readTimeout = d
}

// SetClock replaces the clock used for Date headers.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Close() error {
	s.closed.Store(true)
	return s.listener.Close()
}

func isTransportError(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed)
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	w := response.NewWriter(conn)
	w.SetClock(s.now)

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Error handling request: panic: %v", r)
			if w.Status() != 0 {
				return
			}
			if err := w.WriteError(response.StatusInternalServerError); err != nil {
				s.log.Error("Error sending response: %v", err)
				return
			}
			s.log.Response("%d", int(response.StatusInternalServerError))
		}
	}()

	if s.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}

	data, err := request.ReadMessage(conn)
	if errors.Is(err, request.ErrEmptyRequest) {
		return
	}
	if err != nil {
		s.log.Error("Error processing request: %v", err)
		return
	}
	s.log.Request("Received request: %s", data)

	r, err := request.Parse(data)
	if err != nil {
		err = w.WriteError(response.StatusBadRequest)
	} else {
		err = s.handler(w, r)
		if err != nil && w.Status() == 0 && !isTransportError(err) {
			s.log.Error("Error handling request: %v", err)
			err = w.WriteError(response.StatusInternalServerError)
		}
	}

	if err != nil {
		s.log.Error("Error sending response: %v", err)
		return
	}
	if status := w.Status(); status != response.StatusOK {
		s.log.Response("%d", int(status))
	}
}

// Serve runs the accept loop. It returns ErrServerClosed after Close, or the
// accept error that ended the loop. The listener is closed on return.
func (s *Server) Serve() error {
	defer s.listener.Close()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			s.log.Error("Error accepting connection: %v", err)
			return err
		}

		s.handle(conn)
	}
}
