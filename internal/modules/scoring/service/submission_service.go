package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/modules/scoring/client"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	"ringside-self/internal/pkg/xerrors"
)

const (
	// maxSubmitAttempts 单次提交内部最多尝试次数（含首次）
	maxSubmitAttempts = 3
	// submitRetryBackoff 重试基础退避，按尝试次数线性放大
	submitRetryBackoff = 200 * time.Millisecond
	// pendingTTL 待确认提交记录的寿命。窗口内用户重试复用同一令牌。
	pendingTTL = 2 * time.Minute
)

// pendingSubmission Redis 里的待确认提交记录。
// 令牌绑定 payload：同 payload 重试复用令牌，payload 变了就是新的逻辑动作。
type pendingSubmission struct {
	SubmissionID string `json:"submission_id"`
	BoutID       string `json:"bout_id"`
	RoundNumber  int    `json:"round_number"`
	ScoreRed     int    `json:"score_red"`
	ScoreBlue    int    `json:"score_blue"`
}

// SubmissionService 回合打分提交服务。
// 幂等令牌每个逻辑提交只铸造一次，贯穿该提交的全部重试；
// 提交前做乐观合并，失败回滚，成功后失效快照让下次读取对齐服务端。
type SubmissionService struct {
	backend    BackendClient
	scorecards *ScorecardService
	store      KVStore
	metrics    *metrics.ScoringMetrics
	logger     log.Logger
	service    string

	// 测试钩子
	now   func() time.Time
	sleep func(time.Duration)
}

// NewSubmissionService 创建提交服务。store 可以为 nil（无 Redis 时令牌只活在单次调用内）。
func NewSubmissionService(backend BackendClient, scorecards *ScorecardService, store KVStore, logger log.Logger) *SubmissionService {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &SubmissionService{
		backend:    backend,
		scorecards: scorecards,
		store:      store,
		metrics:    metrics.DefaultScoringMetrics,
		logger:     logger.With("component", "submission_service"),
		service:    metrics.GetServiceName(),
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// pendingKey 待确认记录的 Redis 键
func pendingKey(userID, boutID string, roundNumber int) string {
	return fmt.Sprintf("scoring:pending:%s:%s:%d", userID, boutID, roundNumber)
}

// SubmitRoundScore 提交一次回合打分。
// idempotencyKey 来自客户端的 Idempotency-Key header，可以为空（服务端铸造）。
func (s *SubmissionService) SubmitRoundScore(ctx context.Context, userID string, req scoringmodel.SubmissionRequest, idempotencyKey string) (*scoringmodel.SubmissionReceipt, error) {
	if userID == "" || req.BoutID == "" {
		return nil, xerrors.NewValidationError("bout_id", "用户与对阵标识不能为空")
	}

	req.SubmissionID = s.resolveToken(ctx, userID, req, idempotencyKey)

	// 乐观合并：先把未确认的打分写进本地快照，读方立刻可见
	prev, hadSnapshot := s.scorecards.PeekFight(req.BoutID, userID)
	if hadSnapshot && prev != nil {
		merged := MergeOptimisticScore(prev, req, s.now())
		s.scorecards.PutFight(ctx, req.BoutID, userID, merged)
	}

	start := s.now()
	receipt, err := s.submitWithRetry(ctx, userID, req)
	duration := s.now().Sub(start)

	if err != nil {
		// 回滚乐观合并：有旧快照就还原，没有就失效，绝不让未确认的分数留下
		if hadSnapshot && prev != nil {
			s.scorecards.PutFight(ctx, req.BoutID, userID, prev)
		} else {
			s.scorecards.InvalidateFight(ctx, req.BoutID, userID, "submission_failed")
		}
		s.metrics.RecordOptimisticMerge("rolled_back", s.service)

		appErr := xerrors.Wrap(err, xerrors.CodeInternalError, "提交打分失败")
		if appErr.IsRetryable() {
			// 传输失败：保留待确认记录，用户重试时复用同一令牌
			s.metrics.RecordSubmission("failed", duration, s.service)
		} else {
			// 业务拒绝：这个逻辑动作已有结论，清掉待确认记录
			s.clearPending(ctx, userID, req)
			s.metrics.RecordSubmission("rejected", duration, s.service)
		}
		return nil, appErr
	}

	// 确认成功：清掉待确认记录，失效快照，下次读取以服务端为准
	s.clearPending(ctx, userID, req)
	s.scorecards.InvalidateFight(ctx, req.BoutID, userID, "submission_confirmed")
	s.metrics.RecordOptimisticMerge("confirmed", s.service)
	s.metrics.RecordSubmission("accepted", duration, s.service)

	s.logger.InfoContext(ctx, "回合打分已确认",
		log.String("bout_id", req.BoutID),
		log.Int("round_number", req.RoundNumber),
		log.String("submission_id", req.SubmissionID),
	)
	return receipt, nil
}

// resolveToken 决定本次提交使用的幂等令牌。
// 优先级：同 payload 的待确认记录 > 客户端 Idempotency-Key > 新铸造的 uuid。
func (s *SubmissionService) resolveToken(ctx context.Context, userID string, req scoringmodel.SubmissionRequest, idempotencyKey string) string {
	key := pendingKey(userID, req.BoutID, req.RoundNumber)

	if s.store != nil {
		var pending pendingSubmission
		found, err := s.store.GetJSON(ctx, key, &pending)
		if err != nil {
			s.logger.WarnContext(ctx, "读取待确认提交记录失败", log.Any("error", err))
		} else if found && req.SamePayload(pending.request()) {
			// 同一逻辑提交的重试：复用令牌
			return pending.SubmissionID
		}
	}

	token := idempotencyKey
	if token == "" {
		token = uuid.NewString()
	}

	if s.store != nil {
		record := pendingSubmission{
			SubmissionID: token,
			BoutID:       req.BoutID,
			RoundNumber:  req.RoundNumber,
			ScoreRed:     req.ScoreRed,
			ScoreBlue:    req.ScoreBlue,
		}
		if err := s.store.SetJSON(ctx, key, record, pendingTTL); err != nil {
			s.logger.WarnContext(ctx, "写入待确认提交记录失败", log.Any("error", err))
		}
	}
	return token
}

// request 把待确认记录还原成提交请求，供 payload 比对用
func (p pendingSubmission) request() scoringmodel.SubmissionRequest {
	return scoringmodel.SubmissionRequest{
		SubmissionID: p.SubmissionID,
		BoutID:       p.BoutID,
		RoundNumber:  p.RoundNumber,
		ScoreRed:     p.ScoreRed,
		ScoreBlue:    p.ScoreBlue,
	}
}

func (s *SubmissionService) clearPending(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) {
	if s.store == nil {
		return
	}
	if err := s.store.DeleteKey(ctx, pendingKey(userID, req.BoutID, req.RoundNumber)); err != nil {
		s.logger.WarnContext(ctx, "删除待确认提交记录失败", log.Any("error", err))
	}
}

// submitWithRetry 带内部重试的提交。
// 提交打分的内部重试只看可重试判定：业务拒绝（窗口关闭、冲突等）永远不重试。
// 每次重试复用同一个 SubmissionID，后端据此去重。
func (s *SubmissionService) submitWithRetry(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
	var lastErr error
	for attempt := 1; attempt <= maxSubmitAttempts; attempt++ {
		receipt, err := s.backend.SubmitRoundScore(ctx, userID, req)
		if err == nil {
			return receipt, nil
		}
		lastErr = err

		appErr := xerrors.Wrap(err, xerrors.CodeInternalError, "提交打分失败")
		if !appErr.IsRetryable() || attempt == maxSubmitAttempts {
			return nil, err
		}

		metrics.DefaultResourceMetrics.RecordNatsRetry(client.ProcSubmitRoundScore, s.service)
		s.logger.WarnContext(ctx, "提交打分传输失败，准备重试",
			log.String("bout_id", req.BoutID),
			log.Int("attempt", attempt),
			log.String("submission_id", req.SubmissionID),
			log.Any("error", err),
		)
		s.sleep(submitRetryBackoff * time.Duration(attempt))
	}
	return nil, lastErr
}
