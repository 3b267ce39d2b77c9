package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
	"github.com/xiaofeng1coin/jizhangxt/internal/services"
	appweb "github.com/xiaofeng1coin/jizhangxt/web"
)

type Server struct {
	http.Server
	templates    *template.Template
	ledger       *services.LedgerService
	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// templateFuncs are the helpers available inside the HTML templates.
var templateFuncs = template.FuncMap{
	"yuan":      formatYuan,
	"pct":       formatPct,
	"typeLabel": func(t core.RecordType) string { return t.Label() },
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, ledger *services.LedgerService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      ledger,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("GET /records", s.withMiddleware(s.handleRecords))
	mux.HandleFunc("POST /add_record", s.withMiddleware(s.handleAddRecord))
	mux.HandleFunc("GET /edit_record/{id}", s.withMiddleware(s.handleEditRecordForm))
	mux.HandleFunc("POST /edit_record/{id}", s.withMiddleware(s.handleEditRecord))
	mux.HandleFunc("POST /delete_record/{id}", s.withMiddleware(s.handleDeleteRecord))

	mux.HandleFunc("GET /settings", s.withMiddleware(s.handleSettings))
	mux.HandleFunc("POST /settings/budgets", s.withMiddleware(s.handleSetBudgets))
	mux.HandleFunc("POST /settings/keep_last_date", s.withMiddleware(s.handleKeepLastDate))
	mux.HandleFunc("POST /add_category", s.withMiddleware(s.handleAddCategory))
	mux.HandleFunc("POST /delete_category", s.withMiddleware(s.handleDeleteCategory))

	mux.HandleFunc("GET /annual_report", s.withMiddleware(s.handleAnnualReport))
	mux.HandleFunc("GET /export_csv", s.withMiddleware(s.handleExportCSV))
	mux.HandleFunc("GET /export_json", s.withMiddleware(s.handleExportJSON))
	mux.HandleFunc("POST /import_json", s.withMiddleware(s.handleImportJSON))

	return s
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(ctx, "Suspicious request",
				"request_id", requestID,
				"method", r.Method,
				"url", r.URL.Path,
				"client_ip", clientIP)
		}

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.Snapshot(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
