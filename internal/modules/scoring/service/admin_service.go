package service

import (
	"context"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/modules/scoring/client"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	"ringside-self/internal/pkg/notify"
	"ringside-self/internal/pkg/xerrors"
)

// 已知的回合状态迁移动作。
// 这是开放集合：未列出的动作原样转发，合法性由后端判定。
const (
	ActionStartRound   = "start_round"
	ActionEndRound     = "end_round"
	ActionCloseScoring = "close_scoring"
	ActionEndFight     = "end_fight"
)

// AdminService 管理侧操作：回合状态迁移、聚合重算、实时名单。
// 所有入口都先过 Keto 权限门：授权失败直接拒绝，永不重试、永不吞掉。
type AdminService struct {
	backend    BackendClient
	checker    PermissionChecker
	scorecards *ScorecardService
	roster     *RosterService
	metrics    *metrics.ScoringMetrics
	logger     log.Logger
	service    string
}

// NewAdminService 创建管理服务。checker 为 nil 时所有管理操作 fail-fast 拒绝。
func NewAdminService(backend BackendClient, checker PermissionChecker, scorecards *ScorecardService, roster *RosterService, logger log.Logger) *AdminService {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &AdminService{
		backend:    backend,
		checker:    checker,
		scorecards: scorecards,
		roster:     roster,
		metrics:    metrics.DefaultScoringMetrics,
		logger:     logger.With("component", "admin_service"),
		service:    metrics.GetServiceName(),
	}
}

// authorize 检查 adminID 是否持有打分管理权限。
func (s *AdminService) authorize(ctx context.Context, adminID, operation string) error {
	if adminID == "" {
		return xerrors.NewAuthError("缺少管理员身份")
	}
	if s.checker == nil {
		// 权限系统不可用时不允许静默放行管理操作
		return xerrors.New(xerrors.CodeInternalError, "权限检查不可用").
			WithService("scoring", operation)
	}

	allowed, err := s.checker.CheckUserPermission(ctx, adminID, client.PermissionScoringAdmin)
	if err != nil {
		return xerrors.Wrap(err, xerrors.CodeInternalError, "权限检查失败").
			WithService("scoring", operation)
	}
	if !allowed {
		s.logger.WarnContext(ctx, "管理操作被拒绝：权限不足",
			log.String("admin_id", adminID),
			log.String("operation", operation),
		)
		return xerrors.NewPermissionError("scoring", operation)
	}
	return nil
}

// UpdateRoundState 驱动一次回合状态迁移。
// 成功后：失效该对阵全部快照、失效名单缓存、发布回合状态事件。
func (s *AdminService) UpdateRoundState(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error) {
	if boutID == "" || action == "" {
		return nil, xerrors.NewValidationError("action", "对阵与动作不能为空")
	}
	if err := s.authorize(ctx, adminID, "update_round_state"); err != nil {
		return nil, err
	}

	state, err := s.backend.UpdateRoundState(ctx, adminID, boutID, action, roundNumber)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAdminAction(action, s.service)
	s.scorecards.InvalidateBout(ctx, boutID, "round_state_changed")
	s.roster.Invalidate(ctx)

	if err := notify.PublishScoringEvent(ctx, notify.RoundStateSubject(boutID), state); err != nil {
		// 事件发布是尽力而为：失败不影响已经生效的迁移
		s.logger.WarnContext(ctx, "回合状态事件发布失败",
			log.String("bout_id", boutID),
			log.Any("error", err),
		)
	}

	s.logger.InfoContext(ctx, "回合状态已迁移",
		log.String("bout_id", boutID),
		log.String("action", action),
		log.String("phase", state.Phase.String()),
		log.String("admin_id", adminID),
	)
	return state, nil
}

// RecomputeAggregates 触发后端重算某场比赛的社区聚合。
func (s *AdminService) RecomputeAggregates(ctx context.Context, adminID, boutID string) (*scoringmodel.RecomputeResult, error) {
	if boutID == "" {
		return nil, xerrors.NewValidationError("bout_id", "对阵标识不能为空")
	}
	if err := s.authorize(ctx, adminID, "recompute_aggregates"); err != nil {
		return nil, err
	}

	result, err := s.backend.RecomputeAggregates(ctx, adminID, boutID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAdminAction("recompute_aggregates", s.service)
	s.scorecards.InvalidateBout(ctx, boutID, "aggregates_recomputed")

	s.logger.InfoContext(ctx, "聚合已重算",
		log.String("bout_id", boutID),
		log.Int("rounds_recomputed", result.RoundsRecomputed),
		log.String("admin_id", adminID),
	)
	return result, nil
}

// GetLiveFights 返回实时名单（管理侧入口，权限门在前）。
func (s *AdminService) GetLiveFights(ctx context.Context, adminID string) ([]scoringmodel.LiveFightSummary, error) {
	if err := s.authorize(ctx, adminID, "get_live_fights"); err != nil {
		return nil, err
	}
	return s.roster.GetLiveFights(ctx)
}
