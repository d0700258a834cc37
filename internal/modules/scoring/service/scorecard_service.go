package service

import (
	"context"
	"time"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	"ringside-self/internal/pkg/snapshotcache"
)

// SnapshotTTL 记分卡快照的缓存寿命。
// 轮询节奏（cadence.go）决定主动刷新的频率，这里只是被动读的新鲜度上限。
const SnapshotTTL = 5 * time.Second

// ScorecardService 记分卡读取服务。
// 所有读都经过快照缓存：同一 (对阵, 用户) 的并发读共享同一次后端拉取，
// 后端故障时降级返回旧快照（宁可稍旧，不可没有）。
type ScorecardService struct {
	backend BackendClient
	fights  *snapshotcache.Cache[*scoringmodel.FightScorecard]
	events  *snapshotcache.Cache[*scoringmodel.EventScorecards]
	logger  log.Logger
	service string
}

// NewScorecardService 创建记分卡服务
func NewScorecardService(backend BackendClient, logger log.Logger) *ScorecardService {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ScorecardService{
		backend: backend,
		fights:  snapshotcache.New[*scoringmodel.FightScorecard](SnapshotTTL, metrics.DefaultCacheMetrics, logger),
		events:  snapshotcache.New[*scoringmodel.EventScorecards](SnapshotTTL, metrics.DefaultCacheMetrics, logger),
		logger:  logger.With("component", "scorecard_service"),
		service: metrics.GetServiceName(),
	}
}

// GetFightScorecard 获取一场比赛的记分卡快照。
// 任一标识为空时跳过拉取，返回 (nil, nil)：调用方还没有可查的对象，不算错误。
func (s *ScorecardService) GetFightScorecard(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
	if boutID == "" || userID == "" {
		return nil, nil
	}

	key := snapshotcache.BoutUserKey(boutID, userID)
	return s.fights.GetOrFetch(ctx, s.service, key, func(ctx context.Context) (*scoringmodel.FightScorecard, error) {
		return s.backend.GetFightScorecard(ctx, boutID, userID)
	})
}

// GetEventScorecards 获取一场赛事下全部对阵的记分卡。
func (s *ScorecardService) GetEventScorecards(ctx context.Context, eventID, userID string) (*scoringmodel.EventScorecards, error) {
	if eventID == "" || userID == "" {
		return nil, nil
	}

	key := snapshotcache.EventUserKey(eventID, userID)
	return s.events.GetOrFetch(ctx, s.service, key, func(ctx context.Context) (*scoringmodel.EventScorecards, error) {
		return s.backend.GetEventScorecards(ctx, eventID, userID)
	})
}

// PeekFight 返回缓存中的快照（不触发拉取），乐观合并前取回滚副本用。
func (s *ScorecardService) PeekFight(boutID, userID string) (*scoringmodel.FightScorecard, bool) {
	return s.fights.Peek(snapshotcache.BoutUserKey(boutID, userID))
}

// PutFight 覆盖某场比赛的本地快照（乐观合并后的视图 / 回滚还原）。
func (s *ScorecardService) PutFight(ctx context.Context, boutID, userID string, card *scoringmodel.FightScorecard) {
	s.fights.Put(ctx, snapshotcache.BoutUserKey(boutID, userID), card)
}

// InvalidateFight 剔除某 (对阵, 用户) 的快照，下次读取回源对齐服务端真相。
func (s *ScorecardService) InvalidateFight(ctx context.Context, boutID, userID, reason string) {
	s.fights.Invalidate(ctx, s.service, snapshotcache.BoutUserKey(boutID, userID), reason)
}

// InvalidateBout 剔除某场对阵全部用户的快照（回合状态变更后调用）。
func (s *ScorecardService) InvalidateBout(ctx context.Context, boutID, reason string) int {
	return s.fights.InvalidatePrefix(ctx, s.service, snapshotcache.BoutPrefix(boutID), reason)
}

// InvalidateEvent 剔除某场赛事全部用户的快照。
func (s *ScorecardService) InvalidateEvent(ctx context.Context, eventID, reason string) int {
	return s.events.InvalidatePrefix(ctx, s.service, snapshotcache.EventPrefix(eventID), reason)
}
