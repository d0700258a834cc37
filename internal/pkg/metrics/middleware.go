// File: internal/pkg/metrics/middleware.go
package metrics

import (
	"net/http"
	"time"

	"ringside-self/internal/pkg/ctxkey"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pathLimitTracker 全局路径基数追踪器（防止标签基数爆炸）
var pathLimitTracker = NewPathLimitTracker(200)

// Middleware Echo 中间件 - 记录 HTTP 请求指标
// 使用路由模板（c.Path()）而非实际路径作为 route 标签，健康检查端点不记录。
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 将 HTTP 方法存储到 context（错误中间件的指标需要）
			ctx := c.Request().Context()
			ctx = ctxkey.WithValue(ctx, ctxkey.HTTPMethod, c.Request().Method)
			c.SetRequest(c.Request().WithContext(ctx))

			// 健康检查端点跳过，避免指标噪音
			if IsHealthCheckEndpoint(c.Request().URL.Path) {
				return next(c)
			}

			service := GetServiceName()
			DefaultHTTPMetrics.IncInProgress(service)
			start := time.Now()

			err := next(c)

			// 路由模板在 handler 执行后才可用
			route := pathLimitTracker.TrackPath(NormalizeRoute(c.Path()))
			c.Response().Header().Set("X-Route-Pattern", c.Path())

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			DefaultHTTPMetrics.RecordRequest(service, route, c.Request().Method, status, time.Since(start))
			DefaultHTTPMetrics.DecInProgress(service)

			return err
		}
	}
}

// Handler 返回 Prometheus metrics HTTP 处理器
// 用于暴露 /metrics 端点
func Handler() http.Handler {
	return promhttp.Handler()
}

// EchoHandler Echo 框架的 Prometheus metrics 处理器
func EchoHandler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	}
}
