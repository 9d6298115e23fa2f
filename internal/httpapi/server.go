package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/OskarKrafft/eulangcheck/internal/service"
)

type Server struct {
	svc *service.Service

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func NewServer(svc *service.Service, opts ...Option) *Server {
	s := &Server{
		svc: svc,
		mux: http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/translate", s.handleTranslate)
	s.mux.HandleFunc("/api/result", s.handleResult)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/diagnose", s.handleDiagnose)
	s.mux.HandleFunc("/api/languages", s.handleLanguages)
	s.mux.HandleFunc("/api/sweep", s.handleSweep)
	s.mux.HandleFunc("/callback", s.handleCallback)
	s.mux.HandleFunc("/callback/error", s.handleErrorCallback)
	s.mux.HandleFunc("/test-callback", s.handleTestCallback)
}
