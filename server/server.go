// Package server implements the session rendezvous broker: an
// authenticated JSON-over-HTTPS API that shuttles opaque, end-to-end
// encrypted blobs between a coordinator and its participants.
//
// The server never sees FROST plaintext. Its queues hold Noise ciphertexts
// and its only jobs are authentication, membership, FIFO delivery and
// idle-session eviction.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Config configures a Server.
type Config struct {
	Addr string
	// TLSCert and TLSKey are paths to the certificate pair; both empty
	// means plain HTTP, which is only acceptable behind a TLS terminator.
	TLSCert string
	TLSKey  string
	// SessionTimeout overrides DefaultSessionTimeout when nonzero.
	SessionTimeout time.Duration
	Logger         zerolog.Logger
}

// Server is the rendezvous daemon.
type Server struct {
	cfg   Config
	state *State
	http  *http.Server
	log   zerolog.Logger
}

// New creates a server with fresh in-memory state.
func New(cfg Config) *Server {
	state := NewState(cfg.SessionTimeout)
	s := &Server{
		cfg:   cfg,
		state: state,
		log:   cfg.Logger,
	}
	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// State exposes the server state, for tests and for embedding.
func (s *Server) State() *State { return s.state }

// Router builds the chi router with all routes and the auth middleware.
func (s *Server) Router() http.Handler {
	h := &handlers{state: s.state, log: s.log}
	r := chi.NewRouter()
	r.Post("/challenge", h.challenge)
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/logout", h.logout)
		r.Post("/create_new_session", h.createNewSession)
		r.Post("/list_sessions", h.listSessions)
		r.Post("/get_session_info", h.sessionInfo)
		r.Post("/send", h.send)
		r.Post("/receive", h.receive)
		r.Post("/close_session", h.closeSession)
	})
	return r
}

// ListenAndServe runs the server until the context is cancelled, together
// with the background eviction timer.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	go s.evictLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", listener.Addr().String()).Msg("listening")
	if s.cfg.TLSCert != "" || s.cfg.TLSKey != "" {
		err = s.http.ServeTLS(listener, s.cfg.TLSCert, s.cfg.TLSKey)
	} else {
		err = s.http.Serve(listener)
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// evictLoop garbage-collects idle sessions once a minute.
func (s *Server) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.state.EvictIdle(); n > 0 {
				s.log.Info().Int("sessions", n).Msg("evicted idle sessions")
			}
		}
	}
}
