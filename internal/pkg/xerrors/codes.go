// File: internal/pkg/xerrors/codes.go
package xerrors

import "fmt"

// ErrorCode 错误码类型（类型安全）
type ErrorCode int

// IsValid 检查错误码是否在预定义列表中
func (c ErrorCode) IsValid() bool {
	_, exists := codeMessages[c]
	return exists
}

// String 返回错误码的字符串表示
func (c ErrorCode) String() string {
	if msg, ok := codeMessages[c]; ok {
		return fmt.Sprintf("%d (%s)", c, msg)
	}
	return fmt.Sprintf("%d (未定义的错误码)", c)
}

// Message 返回错误码对应的消息
func (c ErrorCode) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "未知错误"
}

// ToInt 转换为 int（用于 JSON 序列化等场景）
func (c ErrorCode) ToInt() int {
	return int(c)
}

// -----------------------------------------------------------------------------
// 业务错误码统一定义
// 按模块或领域对错误码进行分段，便于管理。
// -----------------------------------------------------------------------------
const (
	// 1xxxxx: 通用错误码
	CodeSuccess           ErrorCode = 100000 // 操作成功
	CodeInternalError     ErrorCode = 100001 // 内部服务错误
	CodeInvalidParams     ErrorCode = 100002 // 参数错误
	CodeInvalidRequest    ErrorCode = 100003 // 请求格式错误
	CodeResourceNotFound  ErrorCode = 100404 // 资源不存在
	CodeDuplicateResource ErrorCode = 100409 // 资源已存在
	CodeRateLimitExceeded ErrorCode = 100429 // 请求频率限制

	// 2xxxxx: 认证相关错误码
	CodeAuthenticationFailed ErrorCode = 200001 // 认证失败
	CodeInvalidToken         ErrorCode = 200002 // 无效令牌
	CodeTokenExpired         ErrorCode = 200003 // 令牌过期
	CodeInvalidCredentials   ErrorCode = 200004 // 凭据无效
	CodeSessionExpired       ErrorCode = 200007 // 会话过期

	// 3xxxxx: 权限相关错误码
	CodePermissionDenied       ErrorCode = 300001 // 权限不足
	CodeInsufficientPrivileges ErrorCode = 300002 // 权限级别不够
	CodePermissionNotExists    ErrorCode = 300004 // 权限不存在

	// 6xxxxx: 业务逻辑错误码
	CodeBusinessLogicError  ErrorCode = 600001 // 业务逻辑错误
	CodeDataIntegrityError  ErrorCode = 600002 // 数据完整性错误
	CodeOperationNotAllowed ErrorCode = 600003 // 操作不被允许
	CodeResourceLocked      ErrorCode = 600004 // 资源被锁定

	// 7xxxxx: 外部服务错误码
	CodeExternalServiceError ErrorCode = 700001 // 外部服务错误
	CodeKratosError          ErrorCode = 700002 // Kratos服务错误
	CodeCacheError           ErrorCode = 700004 // 缓存服务错误
	CodeMessageQueueError    ErrorCode = 700005 // 消息队列错误
	CodeScoringBackendError  ErrorCode = 700006 // 打分后端不可达或超时

	// 8xxxxx: 打分业务错误码
	// 对阵/记分卡相关 (80xxxx)
	CodeBoutNotFound         ErrorCode = 800001 // 对阵不存在
	CodeEventNotFound        ErrorCode = 800002 // 赛事不存在
	CodeScorecardUnavailable ErrorCode = 800003 // 记分卡暂不可用

	// 提交相关 (81xxxx)
	CodeScoringClosed      ErrorCode = 810001 // 打分窗口未开放
	CodeRoundAlreadyGraded ErrorCode = 810002 // 该回合已提交过打分
	CodeSubmissionConflict ErrorCode = 810003 // 提交与服务端记录冲突
	CodeScoreOutOfRange    ErrorCode = 810004 // 分值超出允许范围
	CodeRoundNotStarted    ErrorCode = 810005 // 回合尚未开始

	// 管理操作相关 (82xxxx)
	CodeInvalidTransition  ErrorCode = 820001 // 非法的阶段迁移
	CodeUnknownAdminAction ErrorCode = 820002 // 未知的管理动作
	CodeFightAlreadyEnded  ErrorCode = 820003 // 比赛已结束
)

// -----------------------------------------------------------------------------
// HTTP 状态码常量定义
// -----------------------------------------------------------------------------
const (
	HTTPStatusOK        = 200 // 请求成功
	HTTPStatusCreated   = 201 // 资源已创建
	HTTPStatusAccepted  = 202 // 请求已接受但未处理
	HTTPStatusNoContent = 204 // 请求成功但无内容返回

	HTTPStatusBadRequest          = 400 // 错误请求
	HTTPStatusUnauthorized        = 401 // 未经授权
	HTTPStatusForbidden           = 403 // 禁止访问
	HTTPStatusNotFound            = 404 // 资源未找到
	HTTPStatusMethodNotAllowed    = 405 // 方法不被允许
	HTTPStatusConflict            = 409 // 资源冲突
	HTTPStatusUnprocessableEntity = 422 // 无法处理的实体
	HTTPStatusTooManyRequests     = 429 // 请求过多

	HTTPStatusInternalServerError = 500 // 内部服务器错误
	HTTPStatusNotImplemented      = 501 // 未实现
	HTTPStatusBadGateway          = 502 // 错误网关
	HTTPStatusServiceUnavailable  = 503 // 服务不可用
	HTTPStatusGatewayTimeout      = 504 // 网关超时
)

// -----------------------------------------------------------------------------
// 错误消息映射
// -----------------------------------------------------------------------------
var codeMessages = map[ErrorCode]string{
	CodeSuccess:           "操作成功",
	CodeInternalError:     "内部服务错误",
	CodeInvalidParams:     "参数错误",
	CodeInvalidRequest:    "请求格式错误",
	CodeResourceNotFound:  "资源不存在",
	CodeDuplicateResource: "资源已存在",
	CodeRateLimitExceeded: "请求频率限制",

	CodeAuthenticationFailed: "认证失败",
	CodeInvalidToken:         "无效令牌",
	CodeTokenExpired:         "令牌过期",
	CodeInvalidCredentials:   "凭据无效",
	CodeSessionExpired:       "会话过期",

	CodePermissionDenied:       "权限不足",
	CodeInsufficientPrivileges: "权限级别不够",
	CodePermissionNotExists:    "权限不存在",

	CodeBusinessLogicError:  "业务逻辑错误",
	CodeDataIntegrityError:  "数据完整性错误",
	CodeOperationNotAllowed: "操作不被允许",
	CodeResourceLocked:      "资源被锁定",

	CodeExternalServiceError: "外部服务错误",
	CodeKratosError:          "Kratos服务错误",
	CodeCacheError:           "缓存服务错误",
	CodeMessageQueueError:    "消息队列错误",
	CodeScoringBackendError:  "打分后端暂时不可用",

	// 打分业务错误消息
	CodeBoutNotFound:         "对阵不存在",
	CodeEventNotFound:        "赛事不存在",
	CodeScorecardUnavailable: "记分卡暂不可用",
	CodeScoringClosed:        "当前回合打分窗口未开放",
	CodeRoundAlreadyGraded:   "该回合已提交过打分",
	CodeSubmissionConflict:   "提交与服务端记录冲突",
	CodeScoreOutOfRange:      "分值超出允许范围",
	CodeRoundNotStarted:      "回合尚未开始",
	CodeInvalidTransition:    "非法的阶段迁移",
	CodeUnknownAdminAction:   "未知的管理动作",
	CodeFightAlreadyEnded:    "比赛已结束",
}

// GetHTTPStatus 根据业务错误码获取HTTP状态码
func GetHTTPStatus(code ErrorCode) int {
	switch {
	case code == CodeSuccess:
		return HTTPStatusOK
	case code >= 200000 && code < 300000:
		if code == CodeAuthenticationFailed || code == CodeInvalidToken || code == CodeTokenExpired || code == CodeInvalidCredentials {
			return HTTPStatusUnauthorized
		}
		return HTTPStatusForbidden
	case code >= 300000 && code < 400000:
		return HTTPStatusForbidden
	case code == CodeResourceNotFound:
		return HTTPStatusNotFound
	case code == CodeDuplicateResource:
		return HTTPStatusConflict
	case code == CodeInvalidParams || code == CodeInvalidRequest:
		return HTTPStatusBadRequest
	case code == CodeRateLimitExceeded:
		return HTTPStatusTooManyRequests
	case code >= 600000 && code < 700000:
		return HTTPStatusBadRequest
	case code >= 800000 && code < 900000:
		switch code {
		case CodeBoutNotFound, CodeEventNotFound:
			return HTTPStatusNotFound
		case CodeScoringClosed, CodeRoundAlreadyGraded, CodeSubmissionConflict, CodeInvalidTransition, CodeFightAlreadyEnded:
			return HTTPStatusConflict
		case CodeScorecardUnavailable:
			return HTTPStatusServiceUnavailable
		default:
			return HTTPStatusBadRequest
		}
	case code >= 700000:
		return HTTPStatusServiceUnavailable
	default:
		return HTTPStatusInternalServerError
	}
}

// 辅助函数
// getCategoryByCode 根据错误码获取分类
func getCategoryByCode(code ErrorCode) string {
	switch {
	case code >= 100000 && code < 200000:
		return "system"
	case code >= 200000 && code < 300000:
		return "authentication"
	case code >= 300000 && code < 400000:
		return "authorization"
	case code >= 600000 && code < 700000:
		return "business"
	case code >= 700000 && code < 800000:
		return "external"
	case code >= 800000 && code < 900000:
		return "scoring"
	default:
		return "unknown"
	}
}

// getLevelByCode 根据错误码获取级别
func getLevelByCode(code ErrorCode) ErrorLevel {
	switch {
	case code == CodeSuccess:
		return LevelInfo
	case code >= 100001 && code <= 100003: // 参数错误等
		return LevelWarn
	case code >= 700001 && code < 800000: // 外部服务错误
		return LevelCritical
	case code >= 800000 && code < 900000: // 业务预期内错误
		return LevelWarn
	default:
		return LevelError
	}
}

// isRetryableByCode 根据错误码判断是否可重试
// 提交打分的内部重试只看这个判定：业务拒绝（窗口关闭、冲突等）永远不重试。
func isRetryableByCode(code ErrorCode) bool {
	retryableCodes := map[ErrorCode]bool{
		CodeInternalError:        true,
		CodeExternalServiceError: true,
		CodeKratosError:          true,
		CodeCacheError:           true,
		CodeMessageQueueError:    true,
		CodeScoringBackendError:  true,
		CodeRateLimitExceeded:    true,
	}
	return retryableCodes[code]
}
