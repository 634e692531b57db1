// Package web serves the browser edition of the nurse dashboard.
package web

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/triageboard/internal/dashboard"
)

//go:embed templates/*.tmpl static/*
var assetsFS embed.FS

// Options configures the dashboard page.
type Options struct {
	PollInterval time.Duration
	QueryPath    string
	ConfirmPath  string
}

// Server renders the dashboard page and its static assets.
type Server struct {
	logger    log.Logger
	templates *template.Template
	staticFS  http.FileSystem
	opts      Options
	cssVer    string
	jsVer     string
}

// IndexView is the template data for the dashboard page.
type IndexView struct {
	Title       string
	CSSVersion  string
	JSVersion   string
	PollMillis  int64
	QueryPath   string
	ConfirmPath string
}

// NewServer parses the embedded templates and fingerprints the assets.
func NewServer(logger log.Logger, opts Options) (*Server, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = dashboard.DefaultInterval
	}
	if opts.QueryPath == "" {
		opts.QueryPath = "/query"
	}
	if opts.ConfirmPath == "" {
		opts.ConfirmPath = "/confirm"
	}

	tmpl, err := template.ParseFS(assetsFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	staticRoot, err := fs.Sub(assetsFS, "static")
	if err != nil {
		return nil, err
	}
	cssVer, err := assetHash("static/style.css")
	if err != nil {
		return nil, err
	}
	jsVer, err := assetHash("static/app.js")
	if err != nil {
		return nil, err
	}
	return &Server{
		logger:    logger,
		templates: tmpl,
		staticFS:  http.FS(staticRoot),
		opts:      opts,
		cssVer:    cssVer,
		jsVer:     jsVer,
	}, nil
}

// RegisterRoutes attaches the page and asset routes to the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/", s.HandleIndex)
	r.Handle("/static/*", http.StripPrefix("/static/", s.StaticHandler()))
}

// StaticHandler serves the embedded JS and CSS.
func (s *Server) StaticHandler() http.Handler {
	fileServer := http.FileServer(s.staticFS)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// assets are fingerprinted via ?v= in the page
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}

// HandleIndex renders the dashboard shell. Records are fetched client-side.
func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	view := IndexView{
		Title:       "Nurse Interface",
		CSSVersion:  s.cssVer,
		JSVersion:   s.jsVer,
		PollMillis:  s.opts.PollInterval.Milliseconds(),
		QueryPath:   s.opts.QueryPath,
		ConfirmPath: s.opts.ConfirmPath,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.templates.ExecuteTemplate(w, "index", view); err != nil {
		s.logger.Error(r.Context(), err, "failed to render dashboard")
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func assetHash(path string) (string, error) {
	data, err := assetsFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:8]), nil
}
