package handler

import (
	"github.com/labstack/echo/v4"

	custommiddleware "ringside-self/internal/middleware"
	"ringside-self/internal/modules/scoring/service"
	"ringside-self/internal/pkg/response"
)

// AdminHandler handles scoring admin HTTP requests
type AdminHandler struct {
	adminService *service.AdminService
	respWriter   response.Writer
}

// NewAdminHandler creates a new scoring admin handler
func NewAdminHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *AdminHandler {
	return &AdminHandler{
		adminService: serviceContainer.AdminService,
		respWriter:   respWriter,
	}
}

// ==================== HTTP Request/Response Models ====================

// UpdateRoundStateRequest HTTP round state transition request
type UpdateRoundStateRequest struct {
	Action      string `json:"action" validate:"required" example:"start_round"`
	RoundNumber int    `json:"round_number" validate:"min=0" example:"2"`
}

// ==================== HTTP Handlers ====================

// UpdateRoundState handles round state transition
// @Summary 推进对阵状态
// @Description 管理端驱动对阵的状态机：开始回合、结束回合、关闭打分窗口、结束比赛。动作是开放集合，未知动作原样转发由后端裁决
// @Tags 打分管理
// @Accept json
// @Produce json
// @Param bout_id path string true "对阵ID"
// @Param request body UpdateRoundStateRequest true "状态迁移请求"
// @Success 200 {object} response.Response{data=scoringmodel.RoundState} "迁移后的回合状态"
// @Failure 400 {object} response.Response "请求参数错误或非法迁移（错误码: 820001）"
// @Failure 401 {object} response.Response "未认证"
// @Failure 403 {object} response.Response "缺少 scoring:admin 权限"
// @Failure 409 {object} response.Response "比赛已结束（错误码: 820003）"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /scoring/admin/fights/{bout_id}/round-state [post]
func (h *AdminHandler) UpdateRoundState(c echo.Context) error {
	boutID := c.Param("bout_id")
	if boutID == "" {
		return response.EchoBadRequest(c, h.respWriter, "对阵ID不能为空")
	}

	adminID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	var req UpdateRoundStateRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}

	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	state, err := h.adminService.UpdateRoundState(c.Request().Context(), adminID, boutID, req.Action, req.RoundNumber)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, state)
}

// RecomputeAggregates handles aggregates recompute
// @Summary 重算社区聚合
// @Description 触发后端对指定对阵的社区聚合重算（处理迟到提交或数据修复后对齐）
// @Tags 打分管理
// @Produce json
// @Param bout_id path string true "对阵ID"
// @Success 200 {object} response.Response{data=scoringmodel.RecomputeResult} "重算结果"
// @Failure 401 {object} response.Response "未认证"
// @Failure 403 {object} response.Response "缺少 scoring:admin 权限"
// @Failure 404 {object} response.Response "对阵不存在（错误码: 800001）"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /scoring/admin/fights/{bout_id}/recompute [post]
func (h *AdminHandler) RecomputeAggregates(c echo.Context) error {
	boutID := c.Param("bout_id")
	if boutID == "" {
		return response.EchoBadRequest(c, h.respWriter, "对阵ID不能为空")
	}

	adminID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	result, err := h.adminService.RecomputeAggregates(c.Request().Context(), adminID, boutID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, result)
}

// GetLiveFights handles live fights roster retrieval
// @Summary 获取实时对阵名单
// @Description 获取当前所有非终态对阵的名单及各自阶段，供管理控制台展示
// @Tags 打分管理
// @Produce json
// @Success 200 {object} response.Response{data=[]scoringmodel.LiveFightSummary} "实时名单"
// @Failure 401 {object} response.Response "未认证"
// @Failure 403 {object} response.Response "缺少 scoring:admin 权限"
// @Failure 500 {object} response.Response "服务器内部错误"
// @Router /scoring/admin/fights/live [get]
func (h *AdminHandler) GetLiveFights(c echo.Context) error {
	adminID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	fights, err := h.adminService.GetLiveFights(c.Request().Context(), adminID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	return response.EchoOK(c, h.respWriter, fights)
}
