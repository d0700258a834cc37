package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

var (
	ncMu sync.RWMutex
	nc   *nats.Conn
)

// SetNatsConn 设置全局 NATS 连接（由 main 提供）
func SetNatsConn(conn *nats.Conn) {
	ncMu.Lock()
	defer ncMu.Unlock()
	nc = conn
}

// PublishScoringEvent 发布打分相关事件
func PublishScoringEvent(ctx context.Context, subject string, payload interface{}) error {
	ncMu.RLock()
	conn := nc
	ncMu.RUnlock()
	if conn == nil {
		return nil // 没有连接时静默降级
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal scoring event failed: %w", err)
	}
	return conn.Publish(subject, data)
}

// Default subjects
const (
	// SubjectRoundStatePrefix 回合状态变更事件，完整主题为 scoring.round_state.<bout_id>
	SubjectRoundStatePrefix = "scoring.round_state."
	// SubjectRosterChanged 实时名单刷新事件
	SubjectRosterChanged = "scoring.roster.changed"
)

// RoundStateSubject 返回某场对阵的回合状态事件主题
func RoundStateSubject(boutID string) string {
	return SubjectRoundStatePrefix + boutID
}
