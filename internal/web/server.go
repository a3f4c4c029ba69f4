// Package web serves the dashboard as an HTML page and a JSON API.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/naka-gawa/octotrends/internal/dashboard"
	"github.com/naka-gawa/octotrends/internal/format"
	"github.com/naka-gawa/octotrends/internal/logger"
	"github.com/naka-gawa/octotrends/internal/table"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templatesFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server renders views of one dashboard. Handlers only read the dashboard,
// so requests run concurrently without locking.
type Server struct {
	dash      *dashboard.Dashboard
	logger    *zerolog.Logger
	validate  *validator.Validate
	templates *template.Template
	router    chi.Router
}

// NewServer builds the router and parses the page templates.
func NewServer(dash *dashboard.Dashboard, logger *zerolog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"human": func(v any) string {
			n, _ := table.AsInt64(v)
			return format.HumanNumber(n)
		},
		"signed": format.Signed,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s := &Server{
		dash:      dash,
		logger:    logger,
		validate:  newValidator(),
		templates: tmpl,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID(s.logger))
	r.Use(accessLog(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(apiCORS())
		r.Get("/repos", s.handleRepos)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info().Msg("http shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// view parses the request into state and derives the view. The returned
// status is meaningful only with a non-nil error.
func (s *Server) view(r *http.Request) (*dashboard.View, int, error) {
	q, err := ParseQuery(s.validate, r.URL.Query())
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	st, err := q.State(s.dash)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	view, err := s.dash.View(st)
	switch {
	case err == nil:
		return view, 0, nil
	case errors.Is(err, table.ErrUnknownColumn):
		return nil, http.StatusBadRequest, err
	default:
		logger.C(r.Context(), s.logger).Error().Err(err).Msg("failed to derive view")
		return nil, http.StatusInternalServerError, err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view, status, err := s.view(r)
	if err != nil {
		s.renderError(w, r, status, err)
		return
	}
	s.render(w, r, http.StatusOK, "page", s.pageData(view))
}

type errorData struct {
	Status   int
	Title    string
	Messages []string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	data := errorData{Status: status, Title: http.StatusText(status)}
	var qe *QueryError
	switch {
	case errors.As(err, &qe):
		data.Messages = qe.Messages
	case status < http.StatusInternalServerError:
		data.Messages = []string{err.Error()}
	}
	s.render(w, r, status, "error", data)
}

// render executes a template into a buffer first, so a failing template
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.C(r.Context(), s.logger).Error().Err(err).Str("template", name).Msg("failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type apiColumn struct {
	ID     string `json:"id"`
	Header string `json:"header"`
	Title  string `json:"title,omitempty"`
}

type apiItem struct {
	Group  bool              `json:"group,omitempty"`
	Values map[string]any    `json:"values"`
	Text   map[string]string `json:"text"`
}

type apiResponse struct {
	LastUpdated string      `json:"last_updated"`
	State       table.State `json:"state"`
	Page        int         `json:"page"`
	PageCount   int         `json:"page_count"`
	Rows        int         `json:"rows"`
	Total       int         `json:"total"`
	Columns     []apiColumn `json:"columns"`
	Items       []apiItem   `json:"items"`
}

type apiError struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	view, status, err := s.view(r)
	if err != nil {
		body := apiError{Error: http.StatusText(status)}
		var qe *QueryError
		if errors.As(err, &qe) {
			body.Details = qe.Messages
		}
		s.writeJSON(w, r, status, body)
		return
	}

	resp := apiResponse{
		LastUpdated: s.dash.LastUpdated(),
		State:       view.State,
		Page:        view.State.PageIndex + 1,
		PageCount:   view.PageCount,
		Rows:        view.Rows,
		Total:       view.Total,
		Items:       make([]apiItem, 0, len(view.Page)),
	}
	for _, c := range view.Columns {
		resp.Columns = append(resp.Columns, apiColumn{ID: c.ID, Header: c.Header, Title: c.Title})
	}
	for _, row := range view.Page {
		item := apiItem{
			Group:  row.IsGroup(),
			Values: make(map[string]any, len(view.Columns)),
			Text:   make(map[string]string, len(view.Columns)),
		}
		for _, c := range view.Columns {
			item.Values[c.ID] = row.Values[c.ID]
			item.Text[c.ID] = c.Text(row)
		}
		resp.Items = append(resp.Items, item)
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"status":       "ok",
		"repos":        len(s.dash.Repos()),
		"last_updated": s.dash.LastUpdated(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.C(r.Context(), s.logger).Error().Err(err).Msg("failed to encode response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
