// Package server exposes template renders over HTTP. Responses are rendered
// into pooled buffers and flushed to the client, after which the writer
// passes output straight through.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-viewbuffer/pkg/observability"
	"github.com/goliatone/go-viewbuffer/pkg/render/template/gotemplate"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// Server routes render requests to an engine.
type Server struct {
	engine  *gotemplate.Engine
	metrics *observability.RenderMetrics
	logger  *zap.Logger
	mux     *http.ServeMux
	srv     *http.Server
}

// New builds a Server listening on addr. Render and pool metrics are
// registered on registry and served on /metrics.
func New(addr string, engine *gotemplate.Engine, pool observability.PoolStatser, registry *prometheus.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pool != nil {
		registry.MustRegister(observability.NewPoolCollector(pool, "default"))
	}

	s := &Server{
		engine:  engine,
		metrics: observability.NewRenderMetrics(registry),
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /render/{name}", s.withRequestID(s.handleRender))
	s.mux.HandleFunc("GET /page", s.withRequestID(s.handlePage))

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not
// reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight renders.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

type ctxKey struct{}

func (s *Server) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	}
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return s.logger.With(zap.String("requestId", id), zap.String("path", r.URL.Path))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleRender streams the named template with the query string as data.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data := make(map[string]any, len(r.URL.Query()))
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			data[key] = values[0]
			continue
		}
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		data[key] = list
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.observe(w, r, name, func(w http.ResponseWriter) error {
		return s.engine.Stream(r.Context(), w, name, data)
	})
}

// handlePage composes page-head, one item per "item" query value and
// page-foot. The head is flushed before the items are rendered.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	title := query.Get("title")
	if title == "" {
		title = "Untitled"
	}

	fragments := []gotemplate.Fragment{
		gotemplate.TemplateFragment("page-head", map[string]any{"title": title}),
		gotemplate.RawFragment("<ul>\n"),
		gotemplate.FlushFragment(),
	}
	for i, label := range query["item"] {
		fragments = append(fragments, gotemplate.TemplateFragment("item", map[string]any{
			"id":    i + 1,
			"label": label,
		}))
	}
	fragments = append(fragments,
		gotemplate.RawFragment("</ul>\n"),
		gotemplate.TemplateFragment("page-foot", map[string]any{"footer": query.Get("footer")}),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.observe(w, r, "page", func(w http.ResponseWriter) error {
		return s.engine.Compose(r.Context(), w, fragments...)
	})
}

func (s *Server) observe(w http.ResponseWriter, r *http.Request, name string, render func(http.ResponseWriter) error) {
	logger := s.requestLogger(r)
	tw := &trackingWriter{ResponseWriter: w}
	start := time.Now()
	err := render(tw)
	elapsed := time.Since(start)

	s.metrics.RenderDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		s.metrics.Renders.WithLabelValues(name, "error").Inc()
		logger.Error("Render failed",
			zap.String("template", name),
			zap.Bool("committed", tw.committed),
			zap.Error(err),
		)
		if !tw.committed {
			http.Error(w, "render failed", http.StatusInternalServerError)
		}
		return
	}
	s.metrics.Renders.WithLabelValues(name, "ok").Inc()
	logger.Debug("Rendered", zap.String("template", name), zap.Duration("elapsed", elapsed))
}

// trackingWriter records whether the response has been committed, after
// which the status can no longer change.
type trackingWriter struct {
	http.ResponseWriter
	committed bool
}

func (t *trackingWriter) WriteHeader(code int) {
	t.committed = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	t.committed = true
	return t.ResponseWriter.Write(p)
}

func (t *trackingWriter) WriteString(s string) (int, error) {
	t.committed = true
	return io.WriteString(t.ResponseWriter, s)
}

// Flush implements http.Flusher.
func (t *trackingWriter) Flush() {
	t.committed = true
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (t *trackingWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
