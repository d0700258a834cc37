package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	custommiddleware "ringside-self/internal/middleware"
	"ringside-self/internal/modules/scoring/client"
	"ringside-self/internal/modules/scoring/handler"
	"ringside-self/internal/modules/scoring/service"
	"ringside-self/internal/modules/scoring/tasks"
	"ringside-self/internal/pkg/config"
	"ringside-self/internal/pkg/i18n"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	natspkg "ringside-self/internal/pkg/nats"
	redisClient "ringside-self/internal/pkg/redis"
	"ringside-self/internal/pkg/response"
	"ringside-self/internal/pkg/trace"
	"ringside-self/internal/pkg/validator"

	_ "ringside-self/docs/scoring" // Swagger 生成的文档

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	"github.com/nats-io/nats.go"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type ScoringModule struct {
	basemodule.BaseModule
	natsConn          *nats.Conn
	natsHealth        *natspkg.HealthChecker
	natsHealthCancel  context.CancelFunc
	redis             *redisClient.Client
	ketoClient        *client.KetoClient
	kratosClient      *client.KratosClient
	backendClient     *client.ScoreBackendClient
	httpServer        *echo.Echo
	serviceContainer  *service.ServiceContainer
	scorecardHandler  *handler.ScorecardHandler
	scoreHandler      *handler.ScoreHandler
	adminHandler      *handler.AdminHandler
	rosterRefreshTask *tasks.RosterRefreshTask
	respWriter        response.Writer
}

// GetType returns module type
func (m *ScoringModule) GetType() string {
	return "scoring"
}

// Version returns module version
func (m *ScoringModule) Version() string {
	return "1.0.0"
}

// OnAppConfigurationLoaded 当App初始化时调用
func (m *ScoringModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

// OnInit module initialization
func (m *ScoringModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	metrics.SetServiceName("scoring")
	// 按照 mqant 官方推荐：在每个模块的 OnInit 中配置服务注册参数
	// TTL = 30s, 心跳间隔 = 15s (TTL 必须大于心跳间隔)
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)

	// 1. Initialize NATS connection and score backend client
	if err := m.initNats(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize NATS: %v", err))
	}

	// 2. Initialize Redis (幂等令牌与名单缓存)
	if err := m.initRedis(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize Redis: %v", err))
	}

	// 3. Initialize Keto client (optional, for admin permissions)
	m.initKetoClient()

	// 4. Initialize Kratos client (optional, for session fallback)
	m.initKratosClient()

	// 5. Initialize response writer
	m.initResponseWriter()

	// 6. Initialize HTTP server
	m.initHTTPServer()

	// 7. Initialize Services and Handlers
	m.initServicesAndHandlers()

	// 8. Setup routes
	m.setupRoutes()

	// 9. Setup RPC methods
	m.setupRPCMethods()

	// 10. Start cron tasks
	m.startCronTasks()

	// 11. Start HTTP server in background
	go m.startHTTPServer(settings)

	m.GetServer().Options()
}

// initNats initializes the NATS connection used by the score backend client
func (m *ScoringModule) initNats(settings *conf.ModuleSettings) error {
	var configURL string
	if settings != nil && settings.Settings != nil {
		if urlInterface, ok := settings.Settings["nats_url"]; ok {
			configURL, _ = urlInterface.(string)
		}
	}
	natsURL := config.GetNatsURL("NATS_URL", configURL)

	nc, err := nats.Connect(natsURL,
		nats.MaxReconnects(10),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	m.natsConn = nc
	m.backendClient = client.NewScoreBackendClient(nc, client.DefaultRequestTimeout, log.GetLogger())

	// 后台健康检查，/health 端点据此上报
	m.natsHealth = natspkg.NewHealthChecker(nc, 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	m.natsHealthCancel = cancel
	go m.natsHealth.Start(ctx)

	fmt.Printf("[Scoring Module] NATS connected successfully (URL: %s)\n", natsURL)
	return nil
}

// initRedis initializes Redis client for idempotency tokens and roster cache
func (m *ScoringModule) initRedis(settings *conf.ModuleSettings) error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	port := 6379
	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	password := os.Getenv("REDIS_PASSWORD")

	dbIndex := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if d, err := strconv.Atoi(dbStr); err == nil {
			dbIndex = d
		}
	}

	rdb, err := redisClient.NewClient(redisClient.Config{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       dbIndex,
	}, metrics.GetServiceName())
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.redis = rdb
	fmt.Printf("[Scoring Module] Redis connected successfully (Host: %s:%d, DB: %d)\n", host, port, dbIndex)
	return nil
}

// initKetoClient initializes Keto client for admin permissions
func (m *ScoringModule) initKetoClient() {
	readURL := os.Getenv("KETO_READ_URL")
	writeURL := os.Getenv("KETO_WRITE_URL")

	// Keto 是可选的；缺失时管理接口 fail-fast 拒绝所有请求
	if readURL == "" || writeURL == "" {
		fmt.Println("[Scoring Module] Keto URLs not configured, admin endpoints will reject all requests")
		return
	}

	ketoClient, err := client.NewKetoClient(readURL, writeURL)
	if err != nil {
		fmt.Printf("[Scoring Module] Failed to initialize Keto client: %v, admin endpoints will reject all requests\n", err)
		return
	}

	m.ketoClient = ketoClient
	fmt.Printf("[Scoring Module] Keto client initialized (read: %s, write: %s)\n", readURL, writeURL)
}

// initKratosClient initializes Kratos client for session token fallback
func (m *ScoringModule) initKratosClient() {
	publicURL := os.Getenv("KRATOS_PUBLIC_URL")

	// Kratos 是可选的；缺失时认证只认网关注入的 X-User-ID
	if publicURL == "" {
		fmt.Println("[Scoring Module] Kratos URL not configured, session token fallback disabled")
		return
	}

	m.kratosClient = client.NewKratosClient(publicURL)
	fmt.Printf("[Scoring Module] Kratos client initialized (public: %s)\n", publicURL)
}

// initResponseWriter initializes response writer
func (m *ScoringModule) initResponseWriter() {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// 使用全局 logger
	logger := log.GetLogger()
	m.respWriter = response.NewResponseHandler(logger, environment)
	fmt.Println("[Scoring Module] Response writer initialized")
}

// initHTTPServer initializes HTTP server
func (m *ScoringModule) initHTTPServer() {
	m.httpServer = echo.New()

	// Hide banner
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true

	// Register validator
	m.httpServer.Validator = validator.New()

	// 获取全局 logger
	logger := log.GetLogger()

	// 获取环境变量
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	// ========== 中间件配置（顺序很重要！） ==========

	// 1. TraceID 中间件 - 最先执行，生成或提取 TraceID
	m.httpServer.Use(trace.Middleware())

	// 2. Metrics 中间件 - 记录 HTTP 方法到 context（用于 Prometheus）
	m.httpServer.Use(metrics.Middleware())

	// 3. i18n 中间件 - 语言检测和设置
	m.httpServer.Use(i18n.Middleware())

	// 4. Logging 中间件 - 记录请求日志（依赖 TraceID）
	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if environment == "development" {
		// 开发环境启用详细日志
		loggingConfig.DetailedLog = true
		loggingConfig.LogRequestBody = true
	}
	m.httpServer.Use(custommiddleware.LoggingMiddlewareWithConfig(logger, loggingConfig))

	// 5. Recovery 中间件 - 捕获 panic
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, logger))

	// 6. Error 中间件 - 统一错误处理
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, logger))

	// 7. CORS 中间件
	m.httpServer.Use(middleware.CORS())

	fmt.Println("[Scoring Module] HTTP middlewares configured:")
	fmt.Println("  ✓ TraceID (自动生成追踪ID)")
	fmt.Println("  ✓ Metrics (Prometheus 指标收集)")
	fmt.Println("  ✓ i18n (国际化支持)")
	fmt.Printf("  ✓ Logging (日志记录 - %s)\n", environment)
	fmt.Println("  ✓ Recovery (Panic 恢复)")
	fmt.Println("  ✓ Error (统一错误处理)")
	fmt.Println("  ✓ CORS (跨域支持)")
}

// initServicesAndHandlers initializes services and HTTP handlers
func (m *ScoringModule) initServicesAndHandlers() {
	// ketoClient / kratosClient 可能为 nil，容器内部会优雅降级
	var checker service.PermissionChecker
	if m.ketoClient != nil {
		checker = m.ketoClient
	}
	var sessions service.SessionClient
	if m.kratosClient != nil {
		sessions = m.kratosClient
	}

	m.serviceContainer = service.NewServiceContainer(m.backendClient, checker, m.redis, sessions)

	// 初始化 HTTP Handlers（从容器中获取需要的服务）
	m.scorecardHandler = handler.NewScorecardHandler(m.serviceContainer, m.respWriter)
	m.scoreHandler = handler.NewScoreHandler(m.serviceContainer, m.respWriter)
	m.adminHandler = handler.NewAdminHandler(m.serviceContainer, m.respWriter)

	fmt.Println("[Scoring Module] Handlers initialized successfully")
}

// startCronTasks starts cron scheduled tasks
func (m *ScoringModule) startCronTasks() {
	logger := log.GetLogger()

	// 名单刷新任务：拉取实时对阵名单并对齐轮询器
	m.rosterRefreshTask = tasks.NewRosterRefreshTask(
		m.serviceContainer.RosterService,
		m.serviceContainer.Poller,
		logger,
	)
	m.rosterRefreshTask.Start()

	fmt.Println("[Scoring Module] Cron tasks started successfully:")
	fmt.Println("  ✓ Roster Refresh Task (每5秒)")
}

// setupRoutes sets up HTTP routes
func (m *ScoringModule) setupRoutes() {
	logger := log.GetLogger()

	// API v1 group
	v1 := m.httpServer.Group("/api/v1")

	// Scoring routes（轮询型客户端流量大，按 IP 限流）
	scoring := v1.Group("/scoring")
	scoring.Use(custommiddleware.RateLimitMiddleware())

	// 认证：网关注入的 X-User-ID 优先，带 X-Session-Token 时回退到 Kratos 会话校验
	var sessions custommiddleware.SessionValidator
	if m.serviceContainer.SessionService != nil {
		sessions = m.serviceContainer.SessionService
	}
	authMW := custommiddleware.AuthMiddlewareWithSessions(m.respWriter, logger, sessions)

	// Player routes (需要认证)
	fights := scoring.Group("/fights")
	fights.Use(authMW)
	{
		fights.GET("/:bout_id/scorecard", m.scorecardHandler.GetFightScorecard) // 获取对阵记分卡
		fights.POST("/:bout_id/rounds/score", m.scoreHandler.SubmitRoundScore)  // 提交回合打分
	}

	events := scoring.Group("/events")
	events.Use(authMW)
	{
		events.GET("/:event_id/scorecards", m.scorecardHandler.GetEventScorecards) // 获取赛事记分卡列表
	}

	// Admin routes (需要认证 + scoring:admin 权限)
	var adminChecker custommiddleware.PermissionChecker
	if m.ketoClient != nil {
		adminChecker = m.ketoClient
	}
	admin := scoring.Group("/admin")
	admin.Use(authMW)
	admin.Use(custommiddleware.RequirePermission(adminChecker, m.respWriter, logger, client.PermissionScoringAdmin))
	{
		admin.GET("/fights/live", m.adminHandler.GetLiveFights)                      // 获取实时对阵名单
		admin.POST("/fights/:bout_id/round-state", m.adminHandler.UpdateRoundState)  // 推进对阵状态
		admin.POST("/fights/:bout_id/recompute", m.adminHandler.RecomputeAggregates) // 重算社区聚合
	}

	// Swagger UI
	m.httpServer.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health check
	m.httpServer.GET("/health", func(c echo.Context) error {
		natsHealthy := m.natsHealth != nil && m.natsHealth.IsHealthy()
		status := "ok"
		code := 200
		if !natsHealthy {
			status = "degraded"
			code = 503
		}
		return c.JSON(code, map[string]interface{}{
			"status": status,
			"module": "scoring",
			"nats":   natsHealthy,
		})
	})

	// Prometheus metrics endpoint
	m.httpServer.GET("/metrics", metrics.EchoHandler())

	fmt.Println("[Scoring Module] Routes configured successfully")
	fmt.Println("[Scoring Module] Scoring API routes: /api/v1/scoring/*")
	fmt.Println("[Scoring Module] Swagger UI available at http://localhost:8073/swagger/index.html")
	fmt.Println("[Scoring Module] Prometheus metrics available at http://localhost:8073/metrics")
}

// startHTTPServer starts HTTP server
func (m *ScoringModule) startHTTPServer(settings *conf.ModuleSettings) {
	// Read HTTP port from environment variable first
	port := os.Getenv("SCORING_HTTP_PORT")
	if port == "" {
		// Fallback to config file
		if settings != nil && settings.Settings != nil {
			portInterface, ok := settings.Settings["http_port"]
			if ok {
				port, _ = portInterface.(string)
			}
		}
	}

	if port == "" {
		port = "8073" // Default port
	}

	fmt.Printf("[Scoring Module] Starting HTTP server on port %s\n", port)

	if err := m.httpServer.Start(":" + port); err != nil {
		fmt.Printf("[Scoring Module] HTTP server error: %v\n", err)
	}
}

// Run module run
func (m *ScoringModule) Run(closeSig chan bool) {
	fmt.Println("[Scoring Module] Started successfully")
	<-closeSig
}

// OnDestroy module destroy
func (m *ScoringModule) OnDestroy() {
	// Stop cron tasks
	if m.rosterRefreshTask != nil {
		m.rosterRefreshTask.Stop()
		fmt.Println("[Scoring Module] Cron tasks stopped")
	}

	// Stop bout poller
	if m.serviceContainer != nil && m.serviceContainer.Poller != nil {
		m.serviceContainer.Poller.Stop()
		fmt.Println("[Scoring Module] Bout poller stopped")
	}

	// Stop NATS health checker
	if m.natsHealthCancel != nil {
		m.natsHealthCancel()
	}
	if m.natsHealth != nil {
		m.natsHealth.Stop()
	}

	// Close HTTP server
	if m.httpServer != nil {
		if err := m.httpServer.Close(); err != nil {
			fmt.Printf("[Scoring Module] Failed to close HTTP server: %v\n", err)
		} else {
			fmt.Println("[Scoring Module] HTTP server closed")
		}
	}

	// Close Keto client
	if m.ketoClient != nil {
		if err := m.ketoClient.Close(); err != nil {
			fmt.Printf("[Scoring Module] Failed to close Keto client: %v\n", err)
		}
	}

	// Close NATS connection
	if m.natsConn != nil {
		m.natsConn.Close()
		fmt.Println("[Scoring Module] NATS connection closed")
	}

	m.BaseModule.OnDestroy()
	fmt.Println("[Scoring Module] Destroyed")
}

// Module creates Scoring module instance
func Module() module.Module {
	return new(ScoringModule)
}

// setupRPCMethods 注册 RPC 方法
// 供其他模块（如 Admin Server）调用
func (m *ScoringModule) setupRPCMethods() {
	// 获取实时对阵名单
	m.GetServer().RegisterGO("GetLiveFights", func(data []byte) ([]byte, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fights, err := m.serviceContainer.RosterService.GetLiveFights(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(fights)
	})

	// 获取某场对阵的回合状态
	m.GetServer().RegisterGO("GetBoutPhase", func(data []byte) ([]byte, error) {
		var req struct {
			BoutID string `json:"bout_id"`
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		card, err := m.backendClient.GetFightScorecard(ctx, req.BoutID, "")
		if err != nil {
			return nil, err
		}
		return json.Marshal(card.RoundState)
	})

	fmt.Println("[Scoring Module] RPC methods registered:")
	fmt.Println("  ✓ GetLiveFights - 获取实时对阵名单")
	fmt.Println("  ✓ GetBoutPhase - 获取对阵回合状态")
}
