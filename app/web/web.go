// Package web implements the web server for nsnt application
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/nsnt/app/snapshot"
	"github.com/umputun/nsnt/app/web/enums"
	"github.com/umputun/nsnt/app/web/persistence"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// refreshEvent is the HTMX event making list containers reload
const refreshEvent = "refresh-lists"

// Server represents the web server
type Server struct {
	store          Store
	templates      map[string]*template.Template
	baseURL        string // base URL path for reverse proxy (e.g., /nsnt), empty for root
	version        string
	pageSize       int                         // max items rendered per list
	passwordHash   string                      // bcrypt hash for basic auth
	csrfProtection *http.CrossOriginProtection // csrf protection for POST endpoints
	startTime      time.Time
}

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// Store defines item storage operations used by the server
type Store interface {
	Import(ctx context.Context, req persistence.ImportRequest) (persistence.ImportResult, error)
	List(ctx context.Context, partition enums.Partition, limit int) ([]persistence.Item, error)
	ListOthers(ctx context.Context, limit int) ([]persistence.Item, error)
	ListWatched(ctx context.Context, limit int) ([]persistence.WatchedItem, error)
	MarkWatched(ctx context.Context, url string) error
	MarkIgnored(ctx context.Context, url string) error
	UpdateTracked(ctx context.Context, req persistence.UpdateRequest) error
	Acknowledge(ctx context.Context, url string) error
	Counts(ctx context.Context) (persistence.Counts, error)
	SchemaVersion(ctx context.Context) (int, error)
}

// Config holds server configuration
type Config struct {
	Store        Store
	BaseURL      string // base URL path for reverse proxy (e.g., /nsnt), empty for root
	Version      string
	PageSize     int    // max items rendered per list, defaults to 50
	PasswordHash string // bcrypt hash for basic auth (empty to disable)
}

// TemplateData holds data for templates
type TemplateData struct {
	Watched     []persistence.WatchedItem
	Others      []persistence.Item
	Ignored     []persistence.Item
	Counts      persistence.Counts
	CurrentYear int
	BaseURL     string
	Theme       enums.Theme
	AuthEnabled bool
	Version     string // application version (short form)
	FullVersion string
	PageSize    int
	IsOOB       bool   // for OOB template rendering
	Message     string // import status message
	Error       string // import error
}

// newTemplateData creates a TemplateData with common fields populated from request
func (s *Server) newTemplateData(r *http.Request) TemplateData {
	return TemplateData{
		BaseURL:     s.baseURL,
		Theme:       s.getTheme(r),
		AuthEnabled: s.passwordHash != "",
		Version:     shortVersion(s.version),
		FullVersion: s.version,
		PageSize:    s.pageSize,
		CurrentYear: time.Now().Year(),
	}
}

// New creates a new web server
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("web server initialization failed: Store is required")
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	s := &Server{
		store:          cfg.Store,
		baseURL:        cfg.BaseURL,
		version:        cfg.Version,
		pageSize:       pageSize,
		passwordHash:   cfg.PasswordHash,
		csrfProtection: http.NewCrossOriginProtection(),
		startTime:      time.Now(),
	}

	templates, err := s.parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web server initialization failed: failed to parse HTML templates: %w", err)
	}
	s.templates = templates

	return s, nil
}

// Run starts the web server
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// handler returns the http.Handler with base URL wrapping applied
func (s *Server) handler() http.Handler {
	routes := s.routes()
	if s.baseURL == "" {
		return routes
	}

	mux := http.NewServeMux()
	// handle base URL without trailing slash - redirect to with trailing slash
	mux.HandleFunc(s.baseURL, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.baseURL+"/", http.StatusMovedPermanently)
	})
	mux.Handle(s.baseURL+"/", http.StripPrefix(s.baseURL, routes))
	return mux
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	// global middleware - applied to all routes
	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("nsnt", "umputun", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(snapshot.MaxSize+64*1024), // snapshot upload plus multipart overhead
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	// must be done before any routes are defined
	if s.passwordHash != "" {
		log.Printf("[INFO] authentication enabled for web UI")
		router.Use(s.authMiddleware)
		router.HandleFunc("GET /login", s.handleLoginForm)
		router.With(s.csrfProtection.Handler, loginRateLimiter()).HandleFunc("POST /login", s.handleLogin)
		router.HandleFunc("GET /logout", s.handleLogout)
	}

	router.HandleFunc("GET /", s.handleDashboard)

	// HTMX endpoints
	router.Mount("/api").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		api.Use(s.csrfProtection.Handler)

		api.HandleFunc("GET /lists/{list}", s.handleListPartial)
		api.HandleFunc("POST /import", s.handleImport)
		api.HandleFunc("GET /export", s.handleExport)
		api.HandleFunc("POST /items/watch", s.handleMarkWatched)
		api.HandleFunc("POST /items/ignore", s.handleMarkIgnored)
		api.HandleFunc("POST /items/ack", s.handleAcknowledge)
		api.HandleFunc("POST /theme", s.handleThemeToggle)
	})

	// JSON API for CLI/programmatic access
	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		api.Use(s.csrfProtection.Handler)

		api.HandleFunc("GET /status", s.handleAPIStatus)
		api.HandleFunc("GET /schema", s.handleAPISchema)
		api.HandleFunc("GET /items/{partition}", s.handleAPIList)
		api.HandleFunc("GET /watched", s.handleAPIWatched)
		api.HandleFunc("GET /others", s.handleAPIOthers)
		api.HandleFunc("POST /items/watch", s.apiItemAction("watch", s.store.MarkWatched))
		api.HandleFunc("POST /items/ignore", s.apiItemAction("ignore", s.store.MarkIgnored))
		api.HandleFunc("POST /items/ack", s.apiItemAction("acknowledge", s.store.Acknowledge))
		api.HandleFunc("PUT /items", s.handleAPIUpdate)
		api.HandleFunc("POST /import", s.handleAPIImport)
		api.HandleFunc("GET /export", s.handleExport)
	})

	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Printf("[ERROR] failed to create static file system: %v", err)
		router.Handle("GET /static/", http.FileServer(http.FS(staticFS)))
	} else {
		router.HandleFiles("/static/", http.FS(fsys))
	}

	return router
}

// render renders a template
func (s *Server) render(w http.ResponseWriter, page, tmplName string, data any) {
	tmpl, ok := s.templates[page]
	if !ok {
		log.Printf("[WARN] template %s not found", page)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, tmplName, data); err != nil {
		log.Printf("[WARN] failed to execute template: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

// parseTemplates parses all templates
func (s *Server) parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	funcMap := template.FuncMap{
		"truncate": s.truncate,
		"url":      s.url,
		"priority": s.priority,
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templatesFS,
		"templates/base.html", "templates/dashboard.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}
	templates["base.html"] = base

	// partials parsed separately for HTMX requests
	partials, err := template.New("lists.html").Funcs(funcMap).ParseFS(templatesFS, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse partials: %w", err)
	}
	templates["partials/lists.html"] = partials

	login, err := template.New("login.html").Funcs(funcMap).ParseFS(templatesFS, "templates/login.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse login template: %w", err)
	}
	templates["login"] = login

	return templates, nil
}

func (s *Server) getTheme(r *http.Request) enums.Theme {
	cookie, err := r.Cookie("theme")
	if err != nil {
		return enums.ThemeDark // default to dark when no cookie
	}
	theme, err := enums.ParseTheme(cookie.Value)
	if err != nil {
		log.Printf("[WARN] invalid theme %q: %v", cookie.Value, err)
		return enums.ThemeDark
	}
	return theme
}

// template helper functions

func (s *Server) truncate(str string, n int) string {
	r := []rune(str)
	if len(r) <= n {
		return str
	}
	return string(r[:n]) + "..."
}

// url prepends the base URL to a path for reverse proxy support
func (s *Server) url(path string) string {
	return s.baseURL + path
}

func (s *Server) priority(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%g", *p)
}

// cookiePath returns the cookie path with base URL support
func (s *Server) cookiePath() string {
	if s.baseURL == "" {
		return "/"
	}
	return s.baseURL + "/"
}

// shortVersion extracts a short version string from full version
// for version like "v1.7.0-abc1234-20241225", returns "v1.7.0"
func shortVersion(fullVer string) string {
	if fullVer == "" || fullVer == "unknown" {
		return fullVer
	}
	if idx := strings.Index(fullVer, "-"); idx > 0 {
		return fullVer[:idx]
	}
	return fullVer
}
