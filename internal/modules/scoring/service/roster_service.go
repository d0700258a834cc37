package service

import (
	"context"
	"time"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
)

const (
	// rosterCacheKey 实时名单在 Redis 中的键
	rosterCacheKey = "scoring:live_fights"
	// rosterCacheTTL 名单缓存寿命，刷新任务的周期远小于它
	rosterCacheTTL = 30 * time.Second
)

// RosterService 管理侧实时名单。
// 读优先走 Redis 缓存，刷新任务周期性回源并把结果写回缓存。
type RosterService struct {
	backend BackendClient
	store   KVStore
	logger  log.Logger
	service string
}

// NewRosterService 创建名单服务。store 为 nil 时每次读都直接回源。
func NewRosterService(backend BackendClient, store KVStore, logger log.Logger) *RosterService {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &RosterService{
		backend: backend,
		store:   store,
		logger:  logger.With("component", "roster_service"),
		service: metrics.GetServiceName(),
	}
}

// GetLiveFights 返回当前非终态对阵的名单（缓存优先）。
func (s *RosterService) GetLiveFights(ctx context.Context) ([]scoringmodel.LiveFightSummary, error) {
	if s.store != nil {
		var cached []scoringmodel.LiveFightSummary
		found, err := s.store.GetJSON(ctx, rosterCacheKey, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "读取名单缓存失败", log.Any("error", err))
		} else if found {
			return cached, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh 回源拉取名单并写回缓存，返回最新名单。
func (s *RosterService) Refresh(ctx context.Context) ([]scoringmodel.LiveFightSummary, error) {
	fights, err := s.backend.GetLiveFights(ctx)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SetJSON(ctx, rosterCacheKey, fights, rosterCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "写入名单缓存失败", log.Any("error", err))
		}
	}
	return fights, nil
}

// Invalidate 主动失效名单缓存（管理操作改变了某场比赛的状态后调用）。
func (s *RosterService) Invalidate(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.DeleteKey(ctx, rosterCacheKey); err != nil {
		s.logger.WarnContext(ctx, "失效名单缓存失败", log.Any("error", err))
	}
}
