package scoringmodel

import "time"

// RoundStateSource 回合状态的来源
const (
	// SourceManual 运营人工操作
	SourceManual = "manual"
	// SourceFeed 自动数据源推送
	SourceFeed = "feed"
)

// RoundState 一场比赛的回合状态快照。
// 阶段迁移只能由后端的管理操作驱动，客户端（包括本服务）永远不自行推断。
type RoundState struct {
	CurrentRound        int        `json:"current_round"`
	Phase               Phase      `json:"phase"`
	ScheduledRounds     int        `json:"scheduled_rounds"`
	RoundStartedAt      *time.Time `json:"round_started_at,omitempty"`
	RoundEndsAt         *time.Time `json:"round_ends_at,omitempty"`
	ScoringGraceSeconds int        `json:"scoring_grace_seconds"`
	Source              string     `json:"source"`
	UpdatedAt           time.Time  `json:"updated_at"`

	// IsScoringOpen 由后端计算。合约要求：只信任并透传这个字段，
	// 绝不用 phase + 时间戳在本地重新推导，避免客户端与服务端判断分叉。
	IsScoringOpen bool `json:"is_scoring_open"`
}
