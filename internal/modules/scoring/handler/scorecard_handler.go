package handler

import (
	"github.com/labstack/echo/v4"

	custommiddleware "ringside-self/internal/middleware"
	"ringside-self/internal/modules/scoring/service"
	"ringside-self/internal/pkg/response"
)

// ScorecardHandler handles scorecard read HTTP requests
type ScorecardHandler struct {
	scorecardService *service.ScorecardService
	respWriter       response.Writer
}

// NewScorecardHandler creates a new scorecard handler
func NewScorecardHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *ScorecardHandler {
	return &ScorecardHandler{
		scorecardService: serviceContainer.ScorecardService,
		respWriter:       respWriter,
	}
}

// GetFightScorecard handles fight scorecard retrieval
// @Summary 获取对阵记分卡
// @Description 获取单场对阵的完整记分卡：回合状态、调用者本人的逐回合打分与社区聚合。短 TTL 快照缓存，轮询场景下绝大多数请求不落后端
// @Tags 打分
// @Produce json
// @Param bout_id path string true "对阵ID"
// @Success 200 {object} response.Response{data=scoringmodel.FightScorecard} "记分卡"
// @Failure 401 {object} response.Response "未认证"
// @Failure 404 {object} response.Response "对阵不存在（错误码: 800001）"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /scoring/fights/{bout_id}/scorecard [get]
func (h *ScorecardHandler) GetFightScorecard(c echo.Context) error {
	boutID := c.Param("bout_id")
	if boutID == "" {
		return response.EchoBadRequest(c, h.respWriter, "对阵ID不能为空")
	}

	userID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	card, err := h.scorecardService.GetFightScorecard(c.Request().Context(), boutID, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	if card == nil {
		return response.EchoNotFound(c, h.respWriter, "记分卡", boutID)
	}

	return response.EchoOK(c, h.respWriter, card)
}

// GetEventScorecards handles event scorecards retrieval
// @Summary 获取赛事记分卡列表
// @Description 获取整场赛事下所有对阵的记分卡（含调用者本人打分），用于赛事总览页
// @Tags 打分
// @Produce json
// @Param event_id path string true "赛事ID"
// @Success 200 {object} response.Response{data=scoringmodel.EventScorecards} "赛事记分卡"
// @Failure 401 {object} response.Response "未认证"
// @Failure 404 {object} response.Response "赛事不存在（错误码: 800002）"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /scoring/events/{event_id}/scorecards [get]
func (h *ScorecardHandler) GetEventScorecards(c echo.Context) error {
	eventID := c.Param("event_id")
	if eventID == "" {
		return response.EchoBadRequest(c, h.respWriter, "赛事ID不能为空")
	}

	userID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	cards, err := h.scorecardService.GetEventScorecards(c.Request().Context(), eventID, userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	if cards == nil {
		return response.EchoNotFound(c, h.respWriter, "赛事记分卡", eventID)
	}

	return response.EchoOK(c, h.respWriter, cards)
}
