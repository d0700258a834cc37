package service

import (
	"context"
	"time"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/log"
	redisClient "ringside-self/internal/pkg/redis"
)

// BackendClient 打分后端的消费端接口。
// 六个过程与后端的 NATS 主题一一对应；实现见 modules/scoring/client。
type BackendClient interface {
	GetFightScorecard(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error)
	GetEventScorecards(ctx context.Context, eventID, userID string) (*scoringmodel.EventScorecards, error)
	SubmitRoundScore(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error)
	UpdateRoundState(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error)
	GetLiveFights(ctx context.Context) ([]scoringmodel.LiveFightSummary, error)
	RecomputeAggregates(ctx context.Context, adminID, boutID string) (*scoringmodel.RecomputeResult, error)
}

// PermissionChecker 管理操作的权限检查（Keto）。
type PermissionChecker interface {
	CheckUserPermission(ctx context.Context, userID, permissionCode string) (bool, error)
}

// KVStore 服务层用到的 Redis 子集（JSON 键值 + 删除）。
type KVStore interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteKey(ctx context.Context, keys ...string) error
}

// SessionClient Kratos 会话校验的消费端接口。
type SessionClient interface {
	ValidateSessionUserID(ctx context.Context, sessionToken string) (string, error)
}

// ServiceContainer 打分服务容器 - 统一管理所有 Service
// 目的：集中装配依赖，模块初始化只跟容器打交道
type ServiceContainer struct {
	ScorecardService  *ScorecardService
	SubmissionService *SubmissionService
	AdminService      *AdminService
	RosterService     *RosterService
	SessionService    *SessionService
	Poller            *BoutPoller
}

// NewServiceContainer 创建服务容器。
// checker、rdb、sessions 都是可选依赖：checker 缺失时管理接口 fail-fast 拒绝，
// rdb 缺失时幂等令牌与名单缓存退化为无存储模式，sessions 缺失时认证只认网关 Header。
func NewServiceContainer(backend BackendClient, checker PermissionChecker, rdb *redisClient.Client, sessions SessionClient) *ServiceContainer {
	logger := log.GetLogger()

	var store KVStore
	if rdb != nil {
		store = rdb
	}

	c := &ServiceContainer{}
	c.ScorecardService = NewScorecardService(backend, logger)
	c.SubmissionService = NewSubmissionService(backend, c.ScorecardService, store, logger)
	c.RosterService = NewRosterService(backend, store, logger)
	c.AdminService = NewAdminService(backend, checker, c.ScorecardService, c.RosterService, logger)
	c.Poller = NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		// 轮询不关心任何用户的个人打分，user_id 留空，后端只返回公共部分
		card, err := backend.GetFightScorecard(ctx, boutID, "")
		if err != nil {
			return nil, err
		}
		return &card.RoundState, nil
	}, logger)
	if sessions != nil {
		c.SessionService = NewSessionService(sessions, logger)
	}
	return c
}
