package handler

import (
	"github.com/labstack/echo/v4"

	custommiddleware "ringside-self/internal/middleware"
	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/modules/scoring/service"
	"ringside-self/internal/pkg/response"
)

// ScoreHandler handles round score submission HTTP requests
type ScoreHandler struct {
	submissionService *service.SubmissionService
	respWriter        response.Writer
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *ScoreHandler {
	return &ScoreHandler{
		submissionService: serviceContainer.SubmissionService,
		respWriter:        respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// SubmitRoundScoreRequest HTTP submit round score request
// 分数取值范围由打分后端裁决（越界返回 810004），这里只做存在性校验
type SubmitRoundScoreRequest struct {
	RoundNumber int `json:"round_number" validate:"required,min=1" example:"2"`
	ScoreRed    int `json:"score_red" example:"10"`
	ScoreBlue   int `json:"score_blue" example:"9"`
}

// ==================== HTTP Handlers ====================

// SubmitRoundScore handles round score submission
// @Summary 提交回合打分
// @Description 为指定对阵的某一回合提交 10 分制打分。服务端保证幂等：同一逻辑动作的重试复用同一提交令牌，后端不会重复计入
// @Tags 打分
// @Accept json
// @Produce json
// @Param bout_id path string true "对阵ID"
// @Param Idempotency-Key header string false "客户端幂等键（可选，缺省时服务端铸造）"
// @Param request body SubmitRoundScoreRequest true "打分请求"
// @Success 200 {object} response.Response{data=scoringmodel.SubmissionReceipt} "提交回执"
// @Failure 400 {object} response.Response "请求参数错误或分数越界（错误码: 810004）"
// @Failure 401 {object} response.Response "未认证"
// @Failure 409 {object} response.Response "打分窗口已关闭或回合已定格（错误码: 810001/810002）"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /scoring/fights/{bout_id}/rounds/score [post]
func (h *ScoreHandler) SubmitRoundScore(c echo.Context) error {
	boutID := c.Param("bout_id")
	if boutID == "" {
		return response.EchoBadRequest(c, h.respWriter, "对阵ID不能为空")
	}

	userID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	var req SubmitRoundScoreRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}

	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	// 调用 Service
	serviceReq := scoringmodel.SubmissionRequest{
		BoutID:      boutID,
		RoundNumber: req.RoundNumber,
		ScoreRed:    req.ScoreRed,
		ScoreBlue:   req.ScoreBlue,
	}
	idempotencyKey := c.Request().Header.Get("Idempotency-Key")

	receipt, err := h.submissionService.SubmitRoundScore(c.Request().Context(), userID, serviceReq, idempotencyKey)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, receipt)
}
