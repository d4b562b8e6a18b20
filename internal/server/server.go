package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hecos/internal/api"
	"hecos/internal/config"
	"hecos/internal/controller"
	"hecos/internal/ingest"
	"hecos/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	mu     sync.Mutex
	http   *http.Server
	ctrl   *controller.Controller
	api    *api.Handler
	logger *zap.Logger
}

// NewServer 创建服务器；数据拉取在 Start 之后才开始
func NewServer(cfg *config.AppConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := metrics.DefaultRegistry()
	for i, src := range cfg.Sheets {
		if !registry.Has(src.Kind) {
			logger.Warn("sheet kind has no metrics, page shows a placeholder",
				zap.Int("index", i),
				zap.String("label", src.Label),
				zap.String("kind", string(src.Kind)),
			)
		}
	}

	ctrl := controller.New(controller.Config{
		Sources:      cfg.Sheets,
		Fetcher:      ingest.NewClient(cfg.FetchTimeout(), logger.Named("ingest")),
		Logger:       logger.Named("controller"),
		TickInterval: cfg.ClockInterval(),
	})

	s := &Server{
		router: gin.New(),
		ctrl:   ctrl,
		api:    api.NewHandler(ctrl, registry, logger.Named("api")),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	s.router.Use(requestLogger(s.logger), gin.Recovery())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	// 首页
	s.router.GET("/", s.api.Page)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// requestLogger 用 zap 记录每个请求；SSE 长连接只在断开时记录一次
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}

// Handler 返回路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Controller 返回数据表控制器（用于测试）
func (s *Server) Controller() *controller.Controller {
	return s.ctrl
}

// Start 启动控制器：开始时钟并拉取当前数据表
func (s *Server) Start(ctx context.Context) error {
	return s.ctrl.Start(ctx)
}

// Run 启动服务器，阻塞直到 Close
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close 停止控制器并关闭 HTTP 服务
func (s *Server) Close() error {
	// 先停控制器，SSE 订阅随之结束
	s.ctrl.Close()

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
