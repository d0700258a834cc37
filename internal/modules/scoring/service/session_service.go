package service

import (
	"context"
	"time"

	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	"ringside-self/internal/pkg/sessioncache"
	"ringside-self/internal/pkg/xerrors"
)

// sessionCacheTTL whoami 结果的缓存时间。
// Kratos 侧撤销会话后最多再被采信这么久，和网关的会话缓存保持同量级。
const sessionCacheTTL = 10 * time.Minute

// SessionService 会话兜底：X-User-ID 缺失时用 Session Token 换取身份。
// whoami 结果走内存缓存，避免每个请求都打一次 Kratos。
type SessionService struct {
	client  SessionClient
	cache   *sessioncache.Cache
	logger  log.Logger
	service string
}

// NewSessionService 创建会话服务
func NewSessionService(client SessionClient, logger log.Logger) *SessionService {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &SessionService{
		client:  client,
		cache:   sessioncache.New(sessionCacheTTL, metrics.DefaultCacheMetrics, logger),
		logger:  logger.With("component", "session_service"),
		service: metrics.GetServiceName(),
	}
}

// ResolveUserID 实现 middleware.SessionValidator。
func (s *SessionService) ResolveUserID(ctx context.Context, sessionToken string) (string, error) {
	if sessionToken == "" {
		return "", xerrors.NewSessionInvalidError("empty session token")
	}

	if cached, ok := s.cache.Get(ctx, s.service, sessionToken); ok {
		return cached.UserID, nil
	}

	userID, err := s.client.ValidateSessionUserID(ctx, sessionToken)
	if err != nil {
		return "", err
	}

	s.cache.Set(ctx, s.service, sessioncache.Session{
		SessionToken: sessionToken,
		UserID:       userID,
	})
	return userID, nil
}

// Evict 主动剔除某个会话（例如收到登出事件）。
func (s *SessionService) Evict(ctx context.Context, sessionToken, reason string) {
	s.cache.Delete(ctx, s.service, sessionToken, reason)
}
