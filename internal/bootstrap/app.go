package bootstrap

import (
	"context"
	"errors" // 导入 errors 包
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	// --- 导入内部包 ---
	"kis-canvas/internal/domain"
	httpHandler "kis-canvas/internal/handler/http"
	"kis-canvas/internal/hub"
	"kis-canvas/internal/infra/httpapi"
	"kis-canvas/internal/render"
	"kis-canvas/internal/service"
)

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	CanvasBaseURL  string
	ViewAddr       string
	ViewportWidth  int
	ViewportHeight int
	GridWidth      int
	GridHeight     int
	DefaultColor   string
	InputMode      domain.InputMode
	TouchCapable   bool
	ReconnectDelay time.Duration
	RequestTimeout time.Duration
	LogLevel       string
	AppEnv         string // 应用环境 (development/production)
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load() // 忽略错误，允许只使用环境变量

	cfg := &Config{
		CanvasBaseURL: envOr("CANVAS_BASE_URL", "http://localhost:8000"),
		ViewAddr:      envOr("VIEW_ADDR", ":8080"),
		DefaultColor:  envOr("DEFAULT_COLOR", domain.DefaultSelectedColor),
		InputMode:     domain.InputMode(strings.ToLower(envOr("INPUT_MODE", string(domain.InputModeAuto)))),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		AppEnv:        envOr("APP_ENV", "development"),
	}

	var err error
	if cfg.ViewportWidth, err = envInt("VIEWPORT_WIDTH", 1200); err != nil {
		return nil, err
	}
	if cfg.ViewportHeight, err = envInt("VIEWPORT_HEIGHT", 800); err != nil {
		return nil, err
	}
	if cfg.GridWidth, err = envInt("GRID_WIDTH", domain.DefaultGridWidth); err != nil {
		return nil, err
	}
	if cfg.GridHeight, err = envInt("GRID_HEIGHT", domain.DefaultGridHeight); err != nil {
		return nil, err
	}
	if cfg.ReconnectDelay, err = envDuration("RECONNECT_DELAY", hub.DefaultReconnectDelay); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = envDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if raw := os.Getenv("TOUCH_CAPABLE"); raw != "" {
		if cfg.TouchCapable, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("environment variable TOUCH_CAPABLE must be a boolean: %w", err)
		}
	}

	// --- 必要检查 ---
	switch cfg.InputMode {
	case domain.InputModeAuto, domain.InputModeTrackpad, domain.InputModeWheel:
	default:
		return nil, fmt.Errorf("environment variable INPUT_MODE must be auto, trackpad or wheel, got %q", cfg.InputMode)
	}
	if !strings.HasPrefix(cfg.DefaultColor, "#") {
		return nil, fmt.Errorf("environment variable DEFAULT_COLOR must be a hex color, got %q", cfg.DefaultColor)
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info" // 修正配置值
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("environment variable %s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("environment variable %s must be a positive duration, got %q", key, raw)
	}
	return v, nil
}

// ResolveInputMode 在 auto 模式下根据平台和触控能力推断输入设备
func (c *Config) ResolveInputMode(platform string) domain.InputMode {
	if c.InputMode != domain.InputModeAuto {
		return c.InputMode
	}
	return domain.DetectInputMode(platform, c.TouchCapable)
}

// NewLogger 根据配置创建 Logger
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel) // cfg.LogLevel 已被 LoadConfig 验证
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	return log
}

// App 结构体包含应用的所有组件和配置
type App struct {
	Config     *Config
	Log        *logrus.Logger
	ClientID   string
	Controller *service.Controller
	Push       *hub.PushClient
	Frames     *render.FrameBuffer
	HttpServer *http.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		// 使用标准输出记录启动时错误，因为 logrus 可能还未完全配置
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	clientID := uuid.NewString()
	log.WithField("client_id", clientID).Infof("Logger initialized (Level: %s, Format: %T)", log.GetLevel().String(), log.Formatter)
	log.Info("Configuration loaded successfully")

	// 3. 初始化基础设施
	log.Info("Initializing infrastructure...")
	// HTTP 客户端和推送通道共享同一个 Cookie Jar，从而使用同一个会话
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	repo, err := httpapi.NewHTTPCanvasRepository(cfg.CanvasBaseURL, jar, cfg.RequestTimeout, clientID, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas API client: %w", err)
	}
	pushURL, err := hub.PushURL(cfg.CanvasBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to derive push channel url: %w", err)
	}
	frames := render.NewFrameBuffer(cfg.ViewportWidth, cfg.ViewportHeight, log)
	log.Info("Infrastructure initialized successfully")

	// 4. 初始化推送通道和控制器
	// 推送回调需要控制器，控制器又需要推送通道发布，先声明后赋值
	var controller *service.Controller
	header := http.Header{}
	header.Set(httpapi.ClientIDHeader, clientID)
	push := hub.NewPushClient(pushURL, jar, cfg.ReconnectDelay, header, func(update domain.PixelUpdate) {
		controller.ApplyRemoteUpdate(update)
	}, log)

	inputMode := cfg.ResolveInputMode(runtime.GOOS)
	controller = service.NewController(service.Config{
		ViewportWidth:  cfg.ViewportWidth,
		ViewportHeight: cfg.ViewportHeight,
		Grid:           domain.NewGrid(cfg.GridWidth, cfg.GridHeight),
		SelectedColor:  cfg.DefaultColor,
		InputMode:      inputMode,
		RequestTimeout: cfg.RequestTimeout,
	}, repo, push, frames, nil, log)
	log.WithField("input_mode", inputMode).Info("Canvas controller initialized")

	// 5. 初始化 Gin Engine 和路由
	log.Info("Setting up Gin router...")
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	httpHandler.NewViewHandler(controller, frames).RegisterRoutes(router)
	router.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	log.Info("Router setup complete")

	// 6. 初始化 HTTP Server
	httpServer := &http.Server{
		Addr:              cfg.ViewAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		Config:     cfg,
		Log:        log,
		ClientID:   clientID,
		Controller: controller,
		Push:       push,
		Frames:     frames,
		HttpServer: httpServer,
	}, nil
}

// Start 启动控制器、推送通道和视图 HTTP 服务器
func (a *App) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Log.Info("Starting application background routines...")
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		if err := a.Controller.Run(ctx); err != nil {
			a.Log.WithError(err).Error("Canvas controller stopped with error")
		}
	}()
	go func() {
		defer a.wg.Done()
		a.Push.Run(ctx)
	}()
	a.Log.Info("Controller and push channel routines started")

	go func() {
		a.Log.Infof("View server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start view server: %v", err)
		}
		a.Log.Info("View server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	// 1. 关闭 HTTP 服务器，不再接收输入
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down view server: %v", err)
	} else {
		a.Log.Info("View server shut down gracefully.")
	}

	// 2. 停止控制器和推送通道
	if a.cancel != nil {
		a.cancel()
	}
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Log.Info("Controller and push channel stopped.")
	case <-ctx.Done():
		a.Log.Warn("Timed out waiting for background routines to stop")
	}

	// 3. 释放绘图上下文
	if a.Frames != nil {
		if err := a.Frames.Close(); err != nil {
			a.Log.Errorf("Error releasing frame buffer: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

// LoggerMiddleware 创建一个 Gin 中间件用于记录请求日志
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next() // 处理请求
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		if errorMessage != "" {
			entry.Error(errorMessage)
			return
		}
		// 帧轮询和指针移动很频繁，成功请求只记 debug
		switch {
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Debug("Request handled")
		}
	}
}
