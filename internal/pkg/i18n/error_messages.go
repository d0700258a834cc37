// File: internal/pkg/i18n/error_messages.go
package i18n

import (
	"ringside-self/internal/pkg/xerrors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorMessages 错误消息的多语言映射
var ErrorMessages = map[xerrors.ErrorCode]map[language.Tag]string{
	// 1xxxxx: 通用错误码
	xerrors.CodeSuccess:           {language.Chinese: "操作成功", language.English: "Operation successful"},
	xerrors.CodeInternalError:     {language.Chinese: "内部服务错误", language.English: "Internal server error"},
	xerrors.CodeInvalidParams:     {language.Chinese: "参数错误", language.English: "Invalid parameters"},
	xerrors.CodeInvalidRequest:    {language.Chinese: "请求格式错误", language.English: "Invalid request format"},
	xerrors.CodeResourceNotFound:  {language.Chinese: "资源不存在", language.English: "Resource not found"},
	xerrors.CodeDuplicateResource: {language.Chinese: "资源已存在", language.English: "Resource already exists"},
	xerrors.CodeRateLimitExceeded: {language.Chinese: "请求频率限制", language.English: "Rate limit exceeded"},

	// 2xxxxx: 认证相关错误码
	xerrors.CodeAuthenticationFailed: {language.Chinese: "认证失败", language.English: "Authentication failed"},
	xerrors.CodeInvalidToken:         {language.Chinese: "无效令牌", language.English: "Invalid token"},
	xerrors.CodeTokenExpired:         {language.Chinese: "令牌过期", language.English: "Token expired"},
	xerrors.CodeInvalidCredentials:   {language.Chinese: "凭据无效", language.English: "Invalid credentials"},
	xerrors.CodeSessionExpired:       {language.Chinese: "会话过期", language.English: "Session expired"},

	// 3xxxxx: 权限相关错误码
	xerrors.CodePermissionDenied:       {language.Chinese: "权限不足", language.English: "Permission denied"},
	xerrors.CodeInsufficientPrivileges: {language.Chinese: "权限级别不够", language.English: "Insufficient privileges"},
	xerrors.CodePermissionNotExists:    {language.Chinese: "权限不存在", language.English: "Permission does not exist"},

	// 6xxxxx: 业务逻辑错误码
	xerrors.CodeBusinessLogicError:  {language.Chinese: "业务逻辑错误", language.English: "Business logic error"},
	xerrors.CodeDataIntegrityError:  {language.Chinese: "数据完整性错误", language.English: "Data integrity error"},
	xerrors.CodeOperationNotAllowed: {language.Chinese: "操作不被允许", language.English: "Operation not allowed"},
	xerrors.CodeResourceLocked:      {language.Chinese: "资源被锁定", language.English: "Resource locked"},

	// 7xxxxx: 外部服务错误码
	xerrors.CodeExternalServiceError: {language.Chinese: "外部服务错误", language.English: "External service error"},
	xerrors.CodeKratosError:          {language.Chinese: "Kratos服务错误", language.English: "Kratos service error"},
	xerrors.CodeCacheError:           {language.Chinese: "缓存服务错误", language.English: "Cache service error"},
	xerrors.CodeMessageQueueError:    {language.Chinese: "消息队列错误", language.English: "Message queue error"},
	xerrors.CodeScoringBackendError:  {language.Chinese: "打分后端暂时不可用", language.English: "Scoring backend temporarily unavailable"},

	// 8xxxxx: 打分业务错误码
	// 对阵/记分卡相关 (80xxxx)
	xerrors.CodeBoutNotFound:         {language.Chinese: "对阵不存在", language.English: "Bout not found"},
	xerrors.CodeEventNotFound:        {language.Chinese: "赛事不存在", language.English: "Event not found"},
	xerrors.CodeScorecardUnavailable: {language.Chinese: "记分卡暂不可用", language.English: "Scorecard temporarily unavailable"},

	// 提交相关 (81xxxx)
	xerrors.CodeScoringClosed:      {language.Chinese: "当前回合打分窗口未开放", language.English: "Scoring window is not open for this round"},
	xerrors.CodeRoundAlreadyGraded: {language.Chinese: "该回合已提交过打分", language.English: "Round already scored"},
	xerrors.CodeSubmissionConflict: {language.Chinese: "提交与服务端记录冲突", language.English: "Submission conflicts with server record"},
	xerrors.CodeScoreOutOfRange:    {language.Chinese: "分值超出允许范围", language.English: "Score out of allowed range"},
	xerrors.CodeRoundNotStarted:    {language.Chinese: "回合尚未开始", language.English: "Round has not started"},

	// 管理操作相关 (82xxxx)
	xerrors.CodeInvalidTransition:  {language.Chinese: "非法的阶段迁移", language.English: "Invalid phase transition"},
	xerrors.CodeUnknownAdminAction: {language.Chinese: "未知的管理动作", language.English: "Unknown admin action"},
	xerrors.CodeFightAlreadyEnded:  {language.Chinese: "比赛已结束", language.English: "Fight already ended"},
}

// GetErrorMessage 获取错误码对应语言的消息
func GetErrorMessage(code xerrors.ErrorCode, lang language.Tag) string {
	if messages, ok := ErrorMessages[code]; ok {
		if msg, ok := messages[lang]; ok {
			return msg
		}
		// 如果指定语言没有翻译，返回中文（默认）
		if msg, ok := messages[language.Chinese]; ok {
			return msg
		}
	}
	// 如果完全没有定义，返回通用错误消息
	if lang == language.English {
		return "Unknown error"
	}
	return "未知错误"
}

// init 初始化消息目录
func init() {
	// 为每个错误码注册翻译
	for code, messages := range ErrorMessages {
		codeInt := code.ToInt()
		for lang, msg := range messages {
			message.SetString(lang, string(rune(codeInt)), msg)
		}
	}
}
