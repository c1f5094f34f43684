package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"WebTool-Platform/internal/observability/metrics"
	"WebTool-Platform/internal/ratelimit"
	"WebTool-Platform/internal/schema"
	"WebTool-Platform/pkg/logger"
)

const (
	// DefaultBasePath 是智能体与工具路由的默认前缀。
	DefaultBasePath = "/api/v1/agents"

	serviceName  = "Web Tool Platform API"
	maxBodyBytes = 1 << 20
)

// Processor 是 HTTP 层依赖的分派能力。
type Processor interface {
	Process(ctx context.Context, slug string, req *schema.ProcessRequest) (*schema.Response, error)
	Listing() schema.Listing
}

// Options 配置 HTTP 服务。
type Options struct {
	Address     string
	BasePath    string
	CORSOrigins []string
	// Limiter 为 nil 时不限流。
	Limiter ratelimit.Limiter
	// MetricsPath 为空时不在 API 端口上暴露指标。
	MetricsPath string
	Version     string
	Logger      *slog.Logger
}

// Server 负责暴露 REST 接口。
type Server struct {
	svc  Processor
	opts Options
	log  *slog.Logger
}

// NewServer 构造 API 服务实例。
func NewServer(svc Processor, opts Options) *Server {
	opts.BasePath = "/" + strings.Trim(opts.BasePath, "/")
	if opts.BasePath == "/" {
		opts.BasePath = DefaultBasePath
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("api")
	}
	return &Server{svc: svc, opts: opts, log: log}
}

// BasePath 返回生效的路由前缀。
func (s *Server) BasePath() string { return s.opts.BasePath }

// Handler 构建带中间件的路由，ctx 取消后新请求返回 503。
func (s *Server) Handler(ctx context.Context) http.Handler {
	base := s.opts.BasePath
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+base+"/list", s.handleList)
	mux.HandleFunc("GET "+base+"/agents", s.handleAgents)
	mux.HandleFunc("GET "+base+"/tools", s.handleTools)
	mux.HandleFunc("POST "+base+"/process/{slug...}", s.handleProcess)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	if s.opts.MetricsPath != "" {
		mux.Handle("GET "+s.opts.MetricsPath, metrics.Handler())
	}

	var handler http.Handler = mux
	handler = ratelimit.Middleware(s.opts.Limiter, s.log)(handler)
	handler = s.withCORS(handler)
	handler = s.withRecover(handler)
	handler = s.withAccessLog(handler)
	return withContext(ctx, handler)
}

// Start 启动 HTTP 服务，直到上下文取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("API 服务已启动", slog.String("address", s.opts.Address), slog.String("base_path", s.opts.BasePath))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Listing())
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Listing().Agents)
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Listing().Tools)
}

// handleProcess 解析请求体并交给分派服务。
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req schema.ProcessRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.svc.Process(r.Context(), r.PathValue("slug"), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    serviceName,
		"version": s.opts.Version,
		"status":  "running",
		"health":  "/health",
		"list":    s.opts.BasePath + "/list",
	})
}

// withCORS 允许配置的前端来源跨域访问。
func (s *Server) withCORS(next http.Handler) http.Handler {
	if len(s.opts.CORSOrigins) == 0 {
		return next
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(next)
}

// withAccessLog 记录每个请求的状态码与耗时，并上报 HTTP 指标。
func (s *Server) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, r.Method, sw.status, elapsed)
		s.log.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
			slog.String("client", ratelimit.ClientIP(r)),
		)
	})
}

// withRecover 将处理器中的 panic 转换为 500 响应。
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.Error("请求处理发生 panic",
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
				)
				writeJSON(w, http.StatusInternalServerError, schema.Failure(internalMessage, ""))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withContext 确保请求处理能够感知根上下文取消。
func withContext(ctx context.Context, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-ctx.Done():
			writeJSON(w, http.StatusServiceUnavailable, schema.Failure("service is shutting down", ""))
			return
		default:
		}
		handler.ServeHTTP(w, r)
	})
}

// statusWriter 包装 http.ResponseWriter，用于捕获响应状态码。
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// WriteHeader 捕获响应状态码并调用底层的 WriteHeader 方法。
func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap 供 http.ResponseController 访问底层连接。
func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
