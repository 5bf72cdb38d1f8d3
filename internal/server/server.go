package server

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"github.com/Domenick1991/flightgate/config"
	"github.com/Domenick1991/flightgate/internal/metrics"
	"github.com/Domenick1991/flightgate/internal/wire"
)

// Server owns the listener, the session registry and the action router.
// Each accepted connection gets its own goroutine; inside a connection,
// handling is strictly sequential, so one inbound frame always produces
// exactly one outbound frame, in arrival order.
type Server struct {
	cfg      config.ServerConfig
	registry *Registry
	router   *Router
	metrics  *metrics.Metrics
}

func New(cfg config.ServerConfig, router *Router, m *metrics.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		registry: NewRegistry(),
		router:   router,
		metrics:  m,
	}
}

func (s *Server) Registry() *Registry {
	return s.registry
}

// Serve accepts connections until the context is canceled or the listener
// fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	session := NewSession(conn)
	defer func() {
		s.registry.Release(session.Tag())
		if session.State() == StateRegistered && s.metrics != nil {
			s.metrics.SessionsActive.Dec()
		}
		session.Close()
	}()

	// Connections that never register are not allowed to linger.
	grace := time.Duration(s.cfg.RegisterGraceSeconds) * time.Second
	graceTimer := time.AfterFunc(grace, func() {
		if session.State() != StateRegistered {
			log.Printf("client %s sent no tag within %s, closing", conn.RemoteAddr(), grace)
			session.Close()
		}
	})
	defer graceTimer.Stop()

	decoder := wire.NewDecoder(s.cfg.MaxFrameBytes)
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		decoder.Feed(buf[:n])

		// Drain every complete frame already buffered; pipelined requests
		// must not wait for the next read event.
		for {
			payload, err := decoder.Next()
			if err != nil {
				var fe *wire.FramingError
				if errors.As(err, &fe) {
					if !s.protocolError(session, "invalid frame length") {
						return
					}
					continue
				}
				return
			}
			if payload == nil {
				break
			}
			if s.metrics != nil {
				s.metrics.FramesReceived.Inc()
			}

			if !s.handleFrame(ctx, session, payload) {
				return
			}
		}
	}
}

// handleFrame processes one complete frame. It returns false when the
// connection must close.
func (s *Server) handleFrame(ctx context.Context, session *Session, payload []byte) bool {
	req, err := wire.ParseRequest(payload)
	if err != nil {
		// A non-object frame fails only itself, unless it is the very
		// first frame of the connection.
		return s.protocolError(session, "Invalid JSON format")
	}

	if session.State() != StateRegistered {
		return s.handleRegistration(session, req)
	}

	if s.metrics != nil {
		s.metrics.RequestsTotal.WithLabelValues(req.Action).Inc()
	}
	resp := s.router.Dispatch(ctx, req)
	if resp.Status == wire.StatusError && s.metrics != nil {
		s.metrics.RequestErrors.WithLabelValues(req.Action).Inc()
	}
	s.send(session, resp)
	return true
}

// handleRegistration honors exactly one registration attempt per connection.
// Any failure is connection-fatal.
func (s *Server) handleRegistration(session *Session, req *wire.Request) bool {
	session.setState(StateRegistering)

	tag, ok := req.TagValue()
	if !ok {
		s.registrationFailed(session, ErrTagFormat.Error())
		return false
	}

	if err := s.registry.Bind(tag, session); err != nil {
		s.registrationFailed(session, err.Error())
		return false
	}

	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}
	log.Printf("client %s registered tag %q", session.conn.RemoteAddr(), tag)
	s.send(session, wire.Success("Tag registered", nil))
	return true
}

func (s *Server) registrationFailed(session *Session, message string) {
	if s.metrics != nil {
		s.metrics.ProtocolErrors.Inc()
	}
	log.Printf("client %s registration rejected: %s", session.conn.RemoteAddr(), message)
	s.send(session, wire.Error(message))
}

// protocolError reports a malformed or oversized frame. Before registration
// it is fatal; afterwards the request alone fails.
func (s *Server) protocolError(session *Session, message string) bool {
	if s.metrics != nil {
		s.metrics.ProtocolErrors.Inc()
	}
	s.send(session, wire.Error(message))
	return session.State() == StateRegistered
}

func (s *Server) send(session *Session, resp wire.Response) {
	frame, err := wire.Encode(resp)
	if err != nil {
		log.Printf("encode response: %v", err)
		return
	}
	if _, err := session.conn.Write(frame); err != nil {
		log.Printf("write to %s: %v", session.conn.RemoteAddr(), err)
		return
	}
	if s.metrics != nil {
		s.metrics.FramesSent.Inc()
	}
}
