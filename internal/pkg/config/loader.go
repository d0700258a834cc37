package config

import (
	"os"
	"strings"
)

// GetEnvOrDefault 获取环境变量，如果不存在则返回默认值
// 这是配置加载的核心函数：环境变量 > 默认值
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// MustGetEnv 获取环境变量，如果不存在则 panic
// 用于必须配置的敏感信息（如数据库密码）
func MustGetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic("环境变量 " + key + " 未设置，但它是必需的")
	}
	return value
}

// GetNatsURL 获取 NATS 连接地址
// 优先级：环境变量中的完整 URL > 配置文件中的 URL > 默认本地地址
func GetNatsURL(envKey, configValue string) string {
	if url := os.Getenv(envKey); url != "" {
		return url
	}

	if configValue != "" {
		return configValue
	}

	return "nats://127.0.0.1:4222"
}

// OverrideConfigWithEnv 用环境变量覆盖配置
// 这个函数示例了如何实现 "环境变量 > 配置文件" 的优先级
func OverrideConfigWithEnv(config map[string]any) map[string]any {
	// NATS 地址
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config["nats_url"] = natsURL
	}

	// Redis 密码
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config["redis_password"] = redisPassword
	}

	return config
}

// SanitizeConfigForLog 清理配置中的敏感信息，用于日志输出
// 安全最佳实践：不要在日志中输出密码、密钥等敏感信息
func SanitizeConfigForLog(config map[string]any) map[string]any {
	sanitized := make(map[string]any)
	for k, v := range config {
		// 隐藏敏感字段
		if isSensitiveKey(k) {
			sanitized[k] = "***REDACTED***"
		} else {
			sanitized[k] = v
		}
	}
	return sanitized
}

// isSensitiveKey 判断是否是敏感配置项
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	sensitiveKeywords := []string{
		"password", "secret", "token", "key", "auth",
		"credential", "private", "api_key",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}
