package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/response"
	"ringside-self/internal/pkg/xerrors"
)

// PermissionChecker 权限检查接口（由 Keto 客户端实现）
type PermissionChecker interface {
	CheckUserPermission(ctx context.Context, userID, permissionCode string) (bool, error)
}

// PermissionMiddlewareConfig 权限中间件配置
type PermissionMiddlewareConfig struct {
	// RequiredPermissions 需要的权限代码列表（满足任意一个即可）
	RequiredPermissions []string

	// RequireAllPermissions 是否需要满足所有权限（默认 false，满足任意一个即可）
	RequireAllPermissions bool

	// Skipper 跳过中间件的条件函数（可选）
	Skipper func(c echo.Context) bool
}

// PermissionMiddleware 权限检查中间件 - 集成 Keto
// 使用方式：
//
//	admin.POST("/rounds/transition", handler,
//	    custommiddleware.PermissionMiddleware(checker, respWriter, logger, custommiddleware.PermissionMiddlewareConfig{
//	        RequiredPermissions: []string{"scoring:admin"},
//	    }))
func PermissionMiddleware(
	checker PermissionChecker,
	respWriter response.Writer,
	logger log.Logger,
	config PermissionMiddlewareConfig,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Skipper 检查
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			ctx := c.Request().Context()

			// 1. 获取当前用户（必须先经过 AuthMiddleware）
			currentUser, err := GetCurrentUser(c)
			if err != nil {
				logger.WarnContext(ctx, "权限检查失败: 未找到用户信息")
				return respWriter.WriteError(ctx, c.Response().Writer, xerrors.New(
					xerrors.CodeAuthenticationFailed,
					"未授权访问",
				))
			}

			userID := currentUser.UserID

			// 2. 如果没有配置权限要求，直接放行
			if len(config.RequiredPermissions) == 0 {
				return next(c)
			}

			// Keto 未初始化时直接拒绝，管理接口不允许静默放行
			if checker == nil {
				logger.ErrorContext(ctx, "权限检查失败: Keto 客户端未初始化",
					log.String("user_id", userID),
				)
				return respWriter.WriteError(ctx, c.Response().Writer, xerrors.New(
					xerrors.CodeInternalError,
					"权限检查失败",
				))
			}

			// 3. 检查用户权限
			if config.RequireAllPermissions {
				// 需要满足所有权限
				for _, permCode := range config.RequiredPermissions {
					allowed, err := checker.CheckUserPermission(ctx, userID, permCode)
					if err != nil {
						logger.ErrorContext(ctx, "权限检查调用失败",
							log.String("user_id", userID),
							log.String("permission", permCode),
							log.Any("error", err),
						)
						return respWriter.WriteError(ctx, c.Response().Writer, xerrors.New(
							xerrors.CodeInternalError,
							"权限检查失败",
						))
					}

					if !allowed {
						logger.WarnContext(ctx, "权限不足",
							log.String("user_id", userID),
							log.String("required_permission", permCode),
						)
						return respWriter.WriteError(ctx, c.Response().Writer, xerrors.New(
							xerrors.CodePermissionDenied,
							"权限不足",
						))
					}
				}
			} else {
				// 只需满足任意一个权限
				hasPermission := false
				for _, permCode := range config.RequiredPermissions {
					allowed, err := checker.CheckUserPermission(ctx, userID, permCode)
					if err != nil {
						logger.ErrorContext(ctx, "权限检查调用失败",
							log.String("user_id", userID),
							log.String("permission", permCode),
							log.Any("error", err),
						)
						continue
					}

					if allowed {
						hasPermission = true
						break
					}
				}

				if !hasPermission {
					logger.WarnContext(ctx, "权限不足",
						log.String("user_id", userID),
						log.Any("required_permissions", config.RequiredPermissions),
					)
					return respWriter.WriteError(ctx, c.Response().Writer, xerrors.New(
						xerrors.CodePermissionDenied,
						"权限不足: 需要以下权限之一: "+strings.Join(config.RequiredPermissions, ", "),
					))
				}
			}

			logger.DebugContext(ctx, "权限检查通过",
				log.String("user_id", userID),
				log.Any("required_permissions", config.RequiredPermissions),
			)

			return next(c)
		}
	}
}

// RequirePermission 快捷方法：需要单个权限
func RequirePermission(
	checker PermissionChecker,
	respWriter response.Writer,
	logger log.Logger,
	permissionCode string,
) echo.MiddlewareFunc {
	return PermissionMiddleware(checker, respWriter, logger, PermissionMiddlewareConfig{
		RequiredPermissions: []string{permissionCode},
	})
}

// RequireAnyPermission 快捷方法：需要任意一个权限
func RequireAnyPermission(
	checker PermissionChecker,
	respWriter response.Writer,
	logger log.Logger,
	permissionCodes ...string,
) echo.MiddlewareFunc {
	return PermissionMiddleware(checker, respWriter, logger, PermissionMiddlewareConfig{
		RequiredPermissions: permissionCodes,
	})
}

// RequireAllPermissions 快捷方法：需要所有权限
func RequireAllPermissions(
	checker PermissionChecker,
	respWriter response.Writer,
	logger log.Logger,
	permissionCodes ...string,
) echo.MiddlewareFunc {
	return PermissionMiddleware(checker, respWriter, logger, PermissionMiddlewareConfig{
		RequiredPermissions:   permissionCodes,
		RequireAllPermissions: true,
	})
}
