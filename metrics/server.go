// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
)

const (
	serverReadTimeout     = 30 * time.Second
	serverWriteTimeout    = 30 * time.Second
	serverShutdownTimeout = 10 * time.Second

	healthPath = "/healthz"
)

// Handler is an HTTP handler listed on the index page of the metrics server.
type Handler struct {
	Handler     http.Handler
	Path        string
	Description string
}

// Server exposes the metrics handler, a health check and optionally the
// pprof profiles on their own port.
type Server struct {
	addr     string
	handlers []Handler

	server *http.Server
}

func NewServer(port string, handler Handler, withPprof bool) *Server {
	s := &Server{
		addr:     net.JoinHostPort("", port),
		handlers: []Handler{handler},
	}
	if withPprof {
		s.handlers = append(s.handlers,
			Handler{Path: "/debug/pprof/", Description: "pprof index", Handler: http.HandlerFunc(pprof.Index)},
			Handler{Path: "/debug/pprof/cmdline", Description: "command line", Handler: http.HandlerFunc(pprof.Cmdline)},
			Handler{Path: "/debug/pprof/goroutine", Description: "goroutines", Handler: pprof.Handler("goroutine")},
			Handler{Path: "/debug/pprof/heap", Description: "heap", Handler: pprof.Handler("heap")},
		)
	}
	return s
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", s.index).Methods(http.MethodGet)
	router.HandleFunc(healthPath, healthz).Methods(http.MethodGet)
	for _, h := range s.handlers {
		router.Handle(h.Path, h.Handler)
	}
	return router
}

// Start listens in the background. Listen errors are logged.
func (s *Server) Start() {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	go func() {
		mlog.Info("Metrics server listening", mlog.String("address", s.addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mlog.Error("Metrics server exited", mlog.Err(err))
		}
	}()
}

// Stop shuts the server down. Safe to call without Start.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		mlog.Warn("Metrics server shutdown failed", mlog.Err(err))
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, h := range s.handlers {
		if _, err := fmt.Fprintf(w, "%-24s %s\n", h.Path, h.Description); err != nil {
			return
		}
	}
	_, _ = fmt.Fprintf(w, "%-24s %s\n", healthPath, "health check")
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}
