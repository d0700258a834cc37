package client

import (
	"context"

	ory "github.com/ory/kratos-client-go"

	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/xerrors"
)

// KratosClient 封装 Ory Kratos Public API 的会话校验。
// 打分服务不管理身份（注册/登录由身份服务负责），只需要 whoami 级别的能力：
// 当网关没有注入 X-User-ID 时用 Session Token 兜底换取身份。
type KratosClient struct {
	publicURL    string
	publicClient *ory.APIClient
}

// NewKratosClient 创建 Kratos 客户端
// publicURL: Kratos Public API 地址 (例如: "http://localhost:4433")
func NewKratosClient(publicURL string) *KratosClient {
	publicConfig := ory.NewConfiguration()
	publicConfig.Servers = []ory.ServerConfiguration{
		{
			URL: publicURL,
		},
	}

	return &KratosClient{
		publicURL:    publicURL,
		publicClient: ory.NewAPIClient(publicConfig),
	}
}

// ValidateSession 验证 Session Token，返回 Kratos 会话（含 Identity）
func (c *KratosClient) ValidateSession(ctx context.Context, sessionToken string) (*ory.Session, error) {
	if c.publicClient == nil {
		return nil, xerrors.NewKratosClientNotInitializedError("public_api").
			WithService("kratos_client", "ValidateSession")
	}

	session, resp, err := c.publicClient.FrontendAPI.ToSession(ctx).
		XSessionToken(sessionToken).
		Execute()

	if err != nil {
		log.ErrorContext(ctx, "验证 Session 失败", err)
		return nil, xerrors.NewSessionInvalidError("session validation failed").
			WithService("kratos_client", "ValidateSession")
	}

	if resp.StatusCode >= 400 {
		log.WarnContext(ctx, "Kratos API 返回错误状态码",
			"status_code", resp.StatusCode,
			"operation", "ValidateSession")
		if resp.StatusCode == 401 {
			return nil, xerrors.NewSessionExpiredError().
				WithService("kratos_client", "ValidateSession")
		}
		return nil, xerrors.NewKratosAPIError("ValidateSession", resp.StatusCode).
			WithService("kratos_client", "ValidateSession")
	}

	return session, nil
}

// ValidateSessionUserID 校验 Session Token 并直接返回身份 ID。
func (c *KratosClient) ValidateSessionUserID(ctx context.Context, sessionToken string) (string, error) {
	session, err := c.ValidateSession(ctx, sessionToken)
	if err != nil {
		return "", err
	}
	return SessionIdentityID(session)
}

// SessionIdentityID 从会话中取身份 ID；非激活会话视为无效。
func SessionIdentityID(session *ory.Session) (string, error) {
	if session == nil || session.Identity == nil {
		return "", xerrors.NewSessionInvalidError("session has no identity")
	}
	if session.Active != nil && !*session.Active {
		return "", xerrors.NewSessionExpiredError()
	}
	return session.Identity.Id, nil
}
