package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"ringside-self/internal/pkg/ctxkey"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/response"
	"ringside-self/internal/pkg/xerrors"
)

// SessionValidator 用 Session Token 兜底换取用户身份（Kratos whoami）
type SessionValidator interface {
	ResolveUserID(ctx context.Context, sessionToken string) (string, error)
}

// CurrentUser 当前请求的用户信息（从 Oathkeeper 传递）
type CurrentUser struct {
	UserID       string // Kratos Identity ID (从 X-User-ID header)
	SessionToken string // Kratos Session Token (从 X-Session-Token header)
}

// AuthMiddleware 认证中间件 - 从 Oathkeeper 传递的 Header 提取用户信息
// 这个中间件假设请求已经通过 Oathkeeper 验证，只需从 Header 提取用户信息
func AuthMiddleware(respWriter response.Writer, logger log.Logger) echo.MiddlewareFunc {
	return AuthMiddlewareWithSessions(respWriter, logger, nil)
}

// AuthMiddlewareWithSessions 带会话兜底的认证中间件。
// 网关注入了 X-User-ID 时直接采信；否则用 X-Session-Token 走 Kratos 校验。
// sessions 为 nil 时退化为纯 Header 模式。
func AuthMiddlewareWithSessions(respWriter response.Writer, logger log.Logger, sessions SessionValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// 从 Oathkeeper 传递的 Header 中提取用户信息
			userID := c.Request().Header.Get("X-User-ID")
			sessionToken := c.Request().Header.Get("X-Session-Token")

			// 没有网关身份时用 Session Token 兜底
			if userID == "" && sessionToken != "" && sessions != nil {
				resolved, err := sessions.ResolveUserID(ctx, sessionToken)
				if err != nil {
					logger.WarnContext(ctx, "认证失败: Session 校验未通过",
						log.Any("error", err),
					)
					return respWriter.WriteError(ctx, c.Response().Writer, err)
				}
				userID = resolved
			}

			// 验证必要信息是否存在
			if userID == "" {
				logger.WarnContext(ctx, "认证失败: 缺少 X-User-ID header")
				err := xerrors.New(
					xerrors.CodeAuthenticationFailed,
					"未授权访问: 缺少用户身份信息",
				).WithService("middleware", "auth")

				return respWriter.WriteError(ctx, c.Response().Writer, err)
			}

			// 构建当前用户对象
			currentUser := &CurrentUser{
				UserID:       userID,
				SessionToken: sessionToken,
			}

			// 将用户信息注入到 Context（使用统一的 ctxkey）
			ctx = ctxkey.WithValue(ctx, ctxkey.UserID, userID)
			ctx = ctxkey.WithValue(ctx, ctxkey.SessionID, sessionToken)
			c.SetRequest(c.Request().WithContext(ctx))

			// 也可以设置到 Echo Context，便于直接访问
			c.Set(string(ctxkey.CurrentUser), currentUser)
			// 设置 user_id 以供 handler 使用
			c.Set(string(ctxkey.UserID), userID)

			logger.DebugContext(ctx,
				"用户认证成功",
				log.String("user_id", userID),
				log.Bool("has_session_token", sessionToken != ""),
			)

			return next(c)
		}
	}
}

// GetCurrentUser 从 Echo Context 中获取当前用户
func GetCurrentUser(c echo.Context) (*CurrentUser, error) {
	user := c.Get(string(ctxkey.CurrentUser))
	if user == nil {
		return nil, xerrors.New(
			xerrors.CodeAuthenticationFailed,
			"未找到用户信息",
		)
	}

	currentUser, ok := user.(*CurrentUser)
	if !ok {
		return nil, xerrors.New(
			xerrors.CodeInternalError,
			"用户信息类型错误",
		)
	}

	return currentUser, nil
}

// GetCurrentUserID 从 Echo Context 中获取当前用户 ID（快捷方法）
func GetCurrentUserID(c echo.Context) (string, error) {
	user, err := GetCurrentUser(c)
	if err != nil {
		return "", err
	}
	return user.UserID, nil
}

// MustGetCurrentUser 获取当前用户，如果不存在则 panic（用于明确需要认证的地方）
func MustGetCurrentUser(c echo.Context) *CurrentUser {
	user, err := GetCurrentUser(c)
	if err != nil {
		panic(err)
	}
	return user
}
