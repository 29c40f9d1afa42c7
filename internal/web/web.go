// Package web exposes the meeting planner over HTTP.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mtgplan/internal/cities"
	"mtgplan/internal/config"
	"mtgplan/internal/format"
	"mtgplan/internal/ics"
	appLog "mtgplan/internal/log"
	"mtgplan/internal/model"
	"mtgplan/internal/plan"
)

// Server provides the HTTP API. Requests that omit the base or the
// participant list fall back to the configured defaults.
type Server struct {
	cfg    *config.Config
	format *format.Formatter
	router chi.Router
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, f *format.Formatter) *Server {
	s := &Server{
		cfg:    cfg,
		format: f,
		router: chi.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password means disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware guards the handlers it wraps with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="mtgplan", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves the API on cfg.Listen until ctx is cancelled, then
// shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config, f *format.Formatter) error {
	s := NewServer(cfg, f)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "basic_auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	appLog.Info("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(accessLog)

	// /health is always unauthenticated.
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.basicAuthEnabled() {
			r.Use(s.basicAuthMiddleware)
		}
		r.Get("/cities", s.handleCities)
		r.Group(func(r chi.Router) {
			r.Use(chimw.AllowContentType("application/json"))
			r.Post("/lines", s.handleLines)
			r.Post("/tables", s.handleTables)
			r.Post("/ics", s.handleICS)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, citiesResponse{Cities: cities.All()})
}

// planRequest is the JSON body shared by the rendering endpoints.
type planRequest struct {
	// Base is a city name, an IANA id or "Label=Zone".
	Base         string            `json:"base"`
	Candidates   []model.Candidate `json:"candidates" validate:"required,min=1,dive"`
	Participants []string          `json:"participants" validate:"omitempty,dive,required"`
	Use24h       *bool             `json:"use_24h"`
}

type inviteRequest struct {
	planRequest
	Summary   string `json:"summary" validate:"omitempty,max=200"`
	Organizer string `json:"organizer" validate:"omitempty,email"`
}

type citiesResponse struct {
	Cities []cities.City `json:"cities"`
}

type linesResponse struct {
	Text string `json:"text"`
}

type tablesResponse struct {
	Text string        `json:"text"`
	Rows [][]model.Row `json:"rows"`
}

// toPlan resolves names against the city list and fills in defaults.
func (s *Server) toPlan(body planRequest) (plan.Request, error) {
	base := body.Base
	if base == "" {
		base = s.cfg.Base
	}

	var errs []error
	baseP, err := cities.Resolve(base)
	if err != nil {
		errs = append(errs, err)
	}

	participants := s.cfg.Participants
	if body.Participants != nil {
		participants = make([]model.Participant, 0, len(body.Participants))
		for _, in := range body.Participants {
			p, err := cities.Resolve(in)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			participants = append(participants, p)
		}
	}

	use24h := s.cfg.Use24h
	if body.Use24h != nil {
		use24h = *body.Use24h
	}

	return plan.Request{
		Base:         baseP,
		Candidates:   body.Candidates,
		Participants: participants,
		Use24h:       use24h,
	}, errors.Join(errs...)
}

// decodePlan binds the body into dst and converts the embedded planRequest.
// On failure it has already written the 400 response.
func (s *Server) decodePlan(w http.ResponseWriter, r *http.Request, dst any, body *planRequest) (plan.Request, bool) {
	if err := bindJSON(r, dst); err != nil {
		writeErrors(w, http.StatusBadRequest, err)
		return plan.Request{}, false
	}
	req, err := s.toPlan(*body)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err)
		return plan.Request{}, false
	}
	return req, true
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	req, ok := s.decodePlan(w, r, &body, &body)
	if !ok {
		return
	}
	text, err := plan.Lines(s.format, req)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, linesResponse{Text: text})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	var body planRequest
	req, ok := s.decodePlan(w, r, &body, &body)
	if !ok {
		return
	}
	text, err := plan.Tables(s.format, req)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err)
		return
	}

	rows := make([][]model.Row, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		rs, err := s.format.Rows(req.Base.Zone, c, req.Participants)
		if err != nil {
			writeErrors(w, http.StatusBadRequest, err)
			return
		}
		rows = append(rows, rs)
	}
	writeJSON(w, http.StatusOK, tablesResponse{Text: text, Rows: rows})
}

func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	var body inviteRequest
	req, ok := s.decodePlan(w, r, &body, &body.planRequest)
	if !ok {
		return
	}
	out, err := ics.BuildInvite(s.format, req, ics.InviteOptions{
		Summary:   body.Summary,
		Organizer: body.Organizer,
	})
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meeting.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// captureWriter records the status code for the access log.
type captureWriter struct {
	http.ResponseWriter
	status int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(cw, r)
		appLog.Info("request done",
			"method", r.Method,
			"path", r.URL.Path,
			"status", cw.status,
			"elapsed", time.Since(start).String(),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeErrors(w http.ResponseWriter, status int, err error) {
	type errResp struct {
		Errors []string `json:"errors"`
	}
	writeJSON(w, status, errResp{Errors: messages(err)})
}
