package blackjack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type apiFunc func(w http.ResponseWriter, r *http.Request) error

func makeHTTPHandlerFunc(f apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		}
	}
}

func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// APIServer exposes read-only server status over HTTP.
type APIServer struct {
	listenAddr string
	server     *Server
	httpServer *http.Server
}

func NewAPIServer(listenAddr string, server *Server) *APIServer {
	s := &APIServer{
		listenAddr: listenAddr,
		server:     server,
	}
	s.httpServer = &http.Server{Addr: listenAddr, Handler: s.Router()}
	return s
}

func (s *APIServer) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(enableCORS)
	r.HandleFunc("/api/health", makeHTTPHandlerFunc(s.handleHealth)).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/stats", makeHTTPHandlerFunc(s.handleStats)).Methods("GET", "OPTIONS")
	return r
}

func (s *APIServer) Run() error {
	logrus.WithFields(logrus.Fields{
		"addr": s.listenAddr,
	}).Info("API server starting...")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type HealthResponse struct {
	Status  string `json:"status"`
	Server  string `json:"server"`
	TCPPort int    `json:"tcp_port"`
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) error {
	return JSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Server:  s.server.Name,
		TCPPort: s.server.TCPPort(),
	})
}

func (s *APIServer) handleStats(w http.ResponseWriter, r *http.Request) error {
	return JSON(w, http.StatusOK, s.server.Stats().Snapshot())
}
