// Package server exposes the authenticated principal's dashboard as a small
// read-only JSON API on localhost, for local tooling and dashboards.
package server

import (
	"log"
	"net/http"

	"github.com/desklago/leadhub/pkg/leads"
	"github.com/desklago/leadhub/pkg/session"
)

type Server struct {
	Session  *session.Manager
	Leads    *leads.Service
	Username string
	Password string
}

func New(mgr *session.Manager, svc *leads.Service, user, pass string) *Server {
	return &Server{
		Session:  mgr,
		Leads:    svc,
		Username: user,
		Password: pass,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("GET /api/profile", s.basicAuth(s.handleProfile))
	mux.HandleFunc("GET /api/navigation", s.basicAuth(s.handleNavigation))
	mux.HandleFunc("GET /api/leads", s.basicAuth(s.handleLeads))
	mux.HandleFunc("GET /api/stats", s.basicAuth(s.handleStats))

	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
