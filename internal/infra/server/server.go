// Package server wraps the HTTP server lifecycle of the API.
package server

import (
	"context"
	"net"
	"net/http"
	"time"
)

// Server is an http.Server whose request contexts are cancelled as soon as
// Shutdown starts, so long-lived streams end instead of holding it open.
type Server struct {
	srv *http.Server
}

// New creates a server for handler listening on addr.
func New(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		BaseContext: func(net.Listener) context.Context {
			return baseCtx
		},
	}
	srv.RegisterOnShutdown(cancel)

	return &Server{srv: srv}
}

// ListenAndServe listens on the configured address and serves requests.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Serve serves requests on l.
func (s *Server) Serve(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown cancels every in-flight request context and waits for the
// handlers to return or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
