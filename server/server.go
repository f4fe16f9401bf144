// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/metrics"
	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/fugitivexyz/jira-bug-mointor/version"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost-server/v6/shared/mlog"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	maxRequestBodyBytes    = 1 << 20

	headerRequestID = "X-Request-ID"
)

type contextKey int

const requestIDKey contextKey = iota

// Server is the Jira relay.
type Server struct {
	Config  *Config
	Router  *mux.Router
	Jira    JiraClientFactory
	Metrics metrics.Provider

	server *http.Server
}

// New returns a relay whose upstream requests go through the metrics and
// rate limit transports.
func New(config *Config, metricsProvider metrics.Provider) (*Server, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if metricsProvider == nil {
		return nil, errors.New("metrics provider is required")
	}

	base := metrics.NewTransport(
		NewRateLimitTransport(rate.Limit(config.UpstreamRateLimit), config.UpstreamBurst, http.DefaultTransport),
		metricsProvider,
	)

	s := &Server{
		Config:  config,
		Router:  mux.NewRouter(),
		Jira:    NewJiraClientFactory(base, config.RequestTimeoutSeconds),
		Metrics: metricsProvider,
	}
	s.initializeRouter()

	return s, nil
}

func (s *Server) Start() {
	s.server = &http.Server{
		Addr:         s.Config.ListenAddress,
		Handler:      s.Router,
		ReadTimeout:  timeoutDuration(s.Config.RequestTimeoutSeconds),
		WriteTimeout: 2 * timeoutDuration(s.Config.RequestTimeoutSeconds),
	}

	go func() {
		mlog.Info("Listening on", mlog.String("address", s.Config.ListenAddress))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mlog.Error("Server exited with error", mlog.Err(err))
		}
	}()
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) initializeRouter() {
	s.Router.Use(s.withRequestID, s.withRecovery)

	s.Router.Handle("/ping", s.instrumented("ping", s.ping)).Methods(http.MethodGet)
	s.Router.Handle("/issues/search", s.instrumented("search", s.searchIssues)).Methods(http.MethodPost)
	s.Router.Handle("/issues/{key}", s.instrumented("issue", s.getIssue)).Methods(http.MethodGet)
	s.Router.Handle("/whoami", s.instrumented("whoami", s.whoAmI)).Methods(http.MethodGet)
	s.Router.Handle("/connection/test", s.instrumented("connection_test", s.testConnection)).Methods(http.MethodPost)
	s.Router.Handle("/projects/{key}/issue-types", s.instrumented("issue_types", s.issueTypes)).Methods(http.MethodPost)
	s.Router.Handle("/dashboard", s.instrumented("dashboard", s.dashboard)).Methods(http.MethodPost)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID)))
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if x := recover(); x != nil {
				mlog.Error("Recovered from a panic",
					mlog.String("url", r.URL.Path),
					mlog.Any("error", x),
					mlog.String("stack", string(debug.Stack())))
				s.writeError(w, r, model.NewAppError("withRecovery", "api.relay.panic", "internal server error", "", http.StatusInternalServerError))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (s *Server) instrumented(name string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
		handler(rec, r)
		elapsed := float64(time.Since(start)) / float64(time.Second)
		s.Metrics.ObserveHTTPRequestDuration(name, r.Method, strconv.Itoa(rec.statusCode), elapsed)
	})
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, model.PingResponse{Version: version.Full().Version})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		mlog.Error("Unable to encode response", mlog.String("url", r.URL.Path), mlog.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		mlog.Warn("Unable to write response", mlog.String("url", r.URL.Path), mlog.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, appErr *model.AppError) {
	appErr.RequestID = requestID(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		mlog.Error("Request failed", mlog.String("url", r.URL.Path), mlog.String("request_id", appErr.RequestID), mlog.Err(appErr))
	} else {
		mlog.Debug("Request rejected", mlog.String("url", r.URL.Path), mlog.String("request_id", appErr.RequestID), mlog.Err(appErr))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if _, err := w.Write([]byte(appErr.ToJSON())); err != nil {
		mlog.Warn("Unable to write error response", mlog.Err(err))
	}
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func timeoutDuration(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = defaultRequestTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}
