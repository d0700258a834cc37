// Package client provides clients for external services
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	"ringside-self/internal/pkg/xerrors"
)

// 后端过程名（NATS 主题为 scorebackend.<procedure>）
const (
	SubjectPrefix = "scorebackend."

	ProcGetFightScorecard     = "get_fight_scorecard"
	ProcGetEventScorecards    = "get_event_scorecards"
	ProcSubmitRoundScore      = "submit_round_score"
	ProcAdminUpdateRoundState = "admin_update_round_state"
	ProcAdminGetLiveFights    = "admin_get_live_fights"
	ProcAdminRecomputeAggs    = "admin_recompute_aggregates"
)

// DefaultRequestTimeout 单次后端请求的超时
const DefaultRequestTimeout = 3 * time.Second

// envelope 后端统一响应信封
type envelope struct {
	OK    bool            `json:"ok"`
	Error *envelopeError  `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type envelopeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ScoreBackendClient 打分后端的 NATS request-reply 客户端。
// 这是后端唯一的访问入口：所有读写都走统一信封，传输错误和业务错误分开映射。
type ScoreBackendClient struct {
	conn    *nats.Conn
	timeout time.Duration
	service string
	logger  log.Logger
}

// NewScoreBackendClient 创建后端客户端
func NewScoreBackendClient(conn *nats.Conn, timeout time.Duration, logger log.Logger) *ScoreBackendClient {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ScoreBackendClient{
		conn:    conn,
		timeout: timeout,
		service: metrics.GetServiceName(),
		logger:  logger.With("component", "score_backend_client"),
	}
}

// request 发送一次 request-reply 调用并解出信封。
// 传输失败（超时、无响应者）→ 可重试的外部服务错误；
// ok=false → 业务错误，按错误码映射，永不重试。
func (c *ScoreBackendClient) request(ctx context.Context, procedure string, req interface{}, out interface{}) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return xerrors.Wrap(err, xerrors.CodeInternalError, "序列化后端请求失败").
			WithService("scoring", procedure)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.conn.RequestWithContext(reqCtx, SubjectPrefix+procedure, payload)
	duration := time.Since(start)

	if err != nil {
		metrics.DefaultResourceMetrics.RecordNatsRequest(procedure, "transport_error", duration, c.service)
		c.logger.WarnContext(ctx, "后端调用传输失败",
			log.String("procedure", procedure),
			log.Any("error", err),
		)
		return xerrors.NewScoringBackendError(procedure, err)
	}

	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		metrics.DefaultResourceMetrics.RecordNatsRequest(procedure, "decode_error", duration, c.service)
		return xerrors.Wrap(err, xerrors.CodeExternalServiceError, "后端响应信封解析失败").
			WithService("scoring", procedure)
	}

	if !env.OK {
		metrics.DefaultResourceMetrics.RecordNatsRequest(procedure, "domain_error", duration, c.service)
		return mapDomainError(procedure, env.Error)
	}

	metrics.DefaultResourceMetrics.RecordNatsRequest(procedure, "success", duration, c.service)

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return xerrors.Wrap(err, xerrors.CodeExternalServiceError, "后端响应数据解析失败").
				WithService("scoring", procedure)
		}
	}
	return nil
}

// mapDomainError 把信封里的业务错误映射为 AppError。
// 后端与本服务共享同一套错误码；未知码归入外部服务错误。
func mapDomainError(procedure string, e *envelopeError) *xerrors.AppError {
	if e == nil {
		return xerrors.New(xerrors.CodeExternalServiceError, "后端返回失败但未携带错误信息").
			WithService("scoring", procedure)
	}

	code := xerrors.ErrorCode(e.Code)
	if !code.IsValid() {
		return xerrors.New(xerrors.CodeExternalServiceError, e.Message).
			WithService("scoring", procedure).
			WithMetadataInt("backend_code", e.Code)
	}

	message := e.Message
	if message == "" {
		message = code.Message()
	}
	return xerrors.New(code, message).WithService("scoring", procedure)
}

// ==================== 读取 ====================

type fightScorecardRequest struct {
	BoutID string `json:"bout_id"`
	UserID string `json:"user_id"`
}

// GetFightScorecard 拉取一场比赛的完整记分卡（含调用者本人打分）
func (c *ScoreBackendClient) GetFightScorecard(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
	var card scoringmodel.FightScorecard
	err := c.request(ctx, ProcGetFightScorecard, fightScorecardRequest{
		BoutID: boutID,
		UserID: userID,
	}, &card)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

type eventScorecardsRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// GetEventScorecards 拉取一场赛事下全部对阵的记分卡
func (c *ScoreBackendClient) GetEventScorecards(ctx context.Context, eventID, userID string) (*scoringmodel.EventScorecards, error) {
	var cards scoringmodel.EventScorecards
	err := c.request(ctx, ProcGetEventScorecards, eventScorecardsRequest{
		EventID: eventID,
		UserID:  userID,
	}, &cards)
	if err != nil {
		return nil, err
	}
	return &cards, nil
}

// ==================== 提交 ====================

type submitScoreRequest struct {
	SubmissionID string `json:"submission_id"`
	UserID       string `json:"user_id"`
	BoutID       string `json:"bout_id"`
	RoundNumber  int    `json:"round_number"`
	ScoreRed     int    `json:"score_red"`
	ScoreBlue    int    `json:"score_blue"`
}

// SubmitRoundScore 提交一次回合打分。
// SubmissionID 是幂等令牌，后端据此去重：同一令牌重复到达返回首次结果。
func (c *ScoreBackendClient) SubmitRoundScore(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
	var receipt scoringmodel.SubmissionReceipt
	err := c.request(ctx, ProcSubmitRoundScore, submitScoreRequest{
		SubmissionID: req.SubmissionID,
		UserID:       userID,
		BoutID:       req.BoutID,
		RoundNumber:  req.RoundNumber,
		ScoreRed:     req.ScoreRed,
		ScoreBlue:    req.ScoreBlue,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ==================== 管理操作 ====================

type updateRoundStateRequest struct {
	AdminID     string `json:"admin_id"`
	BoutID      string `json:"bout_id"`
	Action      string `json:"action"`
	RoundNumber int    `json:"round_number,omitempty"`
}

// UpdateRoundState 驱动一次回合状态迁移，返回迁移后的权威状态。
// 动作合法性由后端判定，本客户端不做本地状态机推演。
func (c *ScoreBackendClient) UpdateRoundState(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error) {
	var state scoringmodel.RoundState
	err := c.request(ctx, ProcAdminUpdateRoundState, updateRoundStateRequest{
		AdminID:     adminID,
		BoutID:      boutID,
		Action:      action,
		RoundNumber: roundNumber,
	}, &state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

type liveFightsResponse struct {
	Fights []scoringmodel.LiveFightSummary `json:"fights"`
}

// GetLiveFights 拉取当前非终态对阵的实时名单
func (c *ScoreBackendClient) GetLiveFights(ctx context.Context) ([]scoringmodel.LiveFightSummary, error) {
	var resp liveFightsResponse
	if err := c.request(ctx, ProcAdminGetLiveFights, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Fights, nil
}

type recomputeRequest struct {
	AdminID string `json:"admin_id"`
	BoutID  string `json:"bout_id"`
}

// RecomputeAggregates 触发后端重算一场比赛的逐回合社区聚合
func (c *ScoreBackendClient) RecomputeAggregates(ctx context.Context, adminID, boutID string) (*scoringmodel.RecomputeResult, error) {
	var result scoringmodel.RecomputeResult
	err := c.request(ctx, ProcAdminRecomputeAggs, recomputeRequest{
		AdminID: adminID,
		BoutID:  boutID,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
