// Package server renders the admin console as server-side HTML. One process
// serves one administrator: the console state lives in a single
// console.Router and every request is serialized behind a mutex.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/config"
	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/signing"
)

//go:embed templates/*.html
var templateFS embed.FS

// Uploader stores a PDF and returns the URL to use as a resource's fileUrl.
type Uploader interface {
	UploadPDF(ctx context.Context, fileName string, reader io.Reader, size int64) (string, error)
}

// Server hosts the console's HTTP handlers.
type Server struct {
	cfg      *config.Config
	router   *console.Router
	notices  *console.Notices
	signer   *signing.Signer
	uploader Uploader
	log      *zap.Logger
	tmpl     *template.Template

	// mu serializes console operations; the views are not goroutine safe.
	mu   sync.Mutex
	once sync.Once
}

// New creates a configured server. uploader may be nil when object storage
// is not configured. notices must be the Notifier the router's views use.
func New(cfg *config.Config, router *console.Router, notices *console.Notices, signer *signing.Signer, uploader Uploader, log *zap.Logger) (*Server, error) {
	tmpl, err := template.New("console").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		router:   router,
		notices:  notices,
		signer:   signer,
		uploader: uploader,
		log:      log,
		tmpl:     tmpl,
	}, nil
}

// Start resolves the initial login state from the session store. It runs at
// most once.
func (s *Server) Start(ctx context.Context) {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.router.Start(ctx)
		s.log.Info("console started", zap.Stringer("state", s.router.State()))
	})
}

// Serve launches the HTTP server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.Start(ctx)
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	s.log.Info("console listening", zap.String("address", s.cfg.Address), zap.String("api", s.cfg.APIBaseURL))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the console routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.authed(s.handleLogout))
	mux.HandleFunc("/resources", s.authed(s.handleResourceSubmit))
	mux.HandleFunc("/resources/", s.authed(s.handleResourceRoute))
	mux.HandleFunc("/videos", s.authed(s.handleVideoSubmit))
	mux.HandleFunc("/videos/", s.authed(s.handleVideoRoute))
	mux.HandleFunc("/subjects", s.authed(s.handleSubjectAdd))
	mux.HandleFunc("/subjects/", s.authed(s.handleSubjectRoute))
	mux.HandleFunc("/branches", s.authed(s.handleBranchAdd))
	mux.HandleFunc("/branches/", s.authed(s.handleBranchRoute))
	mux.HandleFunc("/users/export.csv", s.authed(s.handleUsersExport))
	mux.HandleFunc("/notifications", s.authed(s.handleNotificationSend))
	mux.HandleFunc("/notifications/preview", s.authed(s.handleNotificationPreview))
	return s.loggingMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.router.State() != console.Authenticated {
		s.render(w, "login", s.loginPage())
		return
	}
	q := r.URL.Query()
	if tab := q.Get("tab"); tab != "" {
		if err := s.router.SelectTab(r.Context(), console.Tab(tab)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	s.render(w, "dashboard", s.dashboardPage(q.Get("branch"), q.Get("sem")))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	_ = s.router.Login(r.Context(), credentialsFromForm(r.PostForm))
	s.mu.Unlock()
	redirect(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	err := s.router.Logout()
	s.mu.Unlock()
	if err != nil {
		s.log.Error("logout failed to remove session", zap.Error(err))
	}
	redirect(w, r, "/")
}

// authed redirects to the login screen unless a session is active.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		ok := s.router.State() == console.Authenticated
		s.mu.Unlock()
		if !ok {
			redirect(w, r, "/")
			return
		}
		next(w, r)
	}
}

// dashboard returns the logged-in dashboard. A logout may land between the
// authed check and the handler taking s.mu, so callers check again under the
// lock; when logged out the request is sent back to the login screen.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) (*console.Dashboard, bool) {
	dash := s.router.Dashboard()
	if s.router.State() != console.Authenticated || dash == nil {
		redirect(w, r, "/")
		return nil, false
	}
	return dash, true
}

// splitRoute turns the escaped path "/resources/{id}/edit" into ("{id}",
// "edit"). Segments are unescaped once, after splitting, so ids may contain
// "/" and "%".
func splitRoute(escapedPath, prefix string) (string, string, bool) {
	if !strings.HasPrefix(escapedPath, prefix) {
		return "", "", false
	}
	parts := strings.Split(strings.TrimPrefix(escapedPath, prefix), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	id, err := url.PathUnescape(parts[0])
	if err != nil {
		return "", "", false
	}
	verb, err := url.PathUnescape(parts[1])
	if err != nil {
		return "", "", false
	}
	return id, verb, true
}

// confirmOrPrompt runs a destructive action. Without a valid confirmation
// token the action only records its prompt and a confirmation page is
// rendered instead. It reports whether the action ran confirmed.
func (s *Server) confirmOrPrompt(w http.ResponseWriter, r *http.Request, action, back string, run func(console.Confirmer)) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if token := r.PostForm.Get("confirm"); token != "" {
		confirmed := s.signer.Validate(action, token)
		run(console.ConfirmFunc(func(string) bool { return confirmed }))
		if !confirmed {
			s.notices.Notify(console.Notice{Level: console.LevelError, Message: "Confirmation expired, please try again."})
		}
		redirect(w, r, back)
		return confirmed
	}
	var prompt string
	run(console.ConfirmFunc(func(p string) bool {
		prompt = p
		return false
	}))
	if prompt == "" {
		// Nothing to confirm, e.g. the entry is already gone.
		redirect(w, r, back)
		return false
	}
	s.render(w, "confirm", confirmPage{
		Prompt: prompt,
		Action: r.URL.EscapedPath(),
		Token:  s.signer.Token(action),
		Back:   back,
	})
	return false
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render template", zap.String("template", name), zap.Error(err))
	}
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
