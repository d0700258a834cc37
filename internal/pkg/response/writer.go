// File: internal/pkg/response/writer.go
package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ringside-self/internal/pkg/ctxkey"
	"ringside-self/internal/pkg/i18n"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/xerrors"
)

// Writer 统一的响应写入接口（在消费端以接口形式依赖，便于测试替换）
type Writer interface {
	// WriteSuccess 写入成功响应（统一包装为 ResponseResult）
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error
	// WriteError 写入错误响应（自动识别 AppError 并本地化消息）
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	// WriteJSON 直接写入 JSON（跳过 ResponseResult 包装）
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

// ResponseHandler Writer 的默认实现
type ResponseHandler struct {
	logger  log.Logger
	service string
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(logger log.Logger, service string) Writer {
	return &ResponseHandler{
		logger:  logger,
		service: service,
	}
}

// WriteSuccess 写入成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := &ResponseResult[any]{
		Code:      xerrors.CodeSuccess.ToInt(),
		Message:   i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx)),
		Data:      &data,
		Timestamp: time.Now().Unix(),
		TraceId:   ctxkey.GetString(ctx, ctxkey.TraceID),
	}
	return h.write(ctx, w, http.StatusOK, resp)
}

// WriteError 写入错误响应
// 非 AppError 的错误一律按内部服务错误处理，避免把底层细节泄漏给调用方。
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	appErr, ok := err.(*xerrors.AppError)
	if !ok {
		appErr = xerrors.Wrap(err, xerrors.CodeInternalError, "内部服务错误")
	}

	lang := i18n.GetLanguage(ctx)
	resp := &ResponseResult[any]{
		Code:      appErr.Code.ToInt(),
		Message:   i18n.GetErrorMessage(appErr.Code, lang),
		Error:     appErr.Message,
		Timestamp: time.Now().Unix(),
		TraceId:   ctxkey.GetString(ctx, ctxkey.TraceID),
	}

	log.LogAppError(ctx, "request failed", appErr)

	return h.write(ctx, w, xerrors.GetHTTPStatus(appErr.Code), resp)
}

// WriteJSON 直接写入 JSON 响应
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.ErrorContext(ctx, "写入JSON响应失败", log.Any("error", err), log.String("service", h.service))
		return err
	}
	return nil
}

func (h *ResponseHandler) write(ctx context.Context, w http.ResponseWriter, statusCode int, resp *ResponseResult[any]) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.ErrorContext(ctx, "写入响应失败", log.Any("error", err), log.String("service", h.service))
		return err
	}
	return nil
}
