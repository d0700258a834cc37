package scoringmodel

import (
	"encoding/json"
	"time"
)

// Bout 一场对阵的基本信息（红蓝双方 + 级别 + 状态）。
type Bout struct {
	ID          string `json:"id"`
	EventID     string `json:"event_id"`
	RedCorner   string `json:"red_corner"`
	BlueCorner  string `json:"blue_corner"`
	WeightClass string `json:"weight_class"`
	Status      string `json:"status"`
}

// UserRoundScore 调用者本人对某一回合的打分。
// 同一调用者同一回合最多一条记录。
type UserRoundScore struct {
	RoundNumber int       `json:"round_number"`
	ScoreRed    int       `json:"score_red"`
	ScoreBlue   int       `json:"score_blue"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// FightScorecard 一场比赛的聚合根：对阵信息 + 回合状态 + 社区聚合 + 本人打分。
// Aggregates 是后端计算的逐回合社区汇总，对本协调器完全不透明，原样透传。
// UserScores 始终按 round_number 升序排列。
type FightScorecard struct {
	Bout       Bout              `json:"bout"`
	RoundState RoundState        `json:"round_state"`
	Aggregates []json.RawMessage `json:"aggregates"`
	UserScores []UserRoundScore  `json:"user_scores"`
}

// CloneUserScores 返回 UserScores 的浅拷贝切片。
// 乐观合并需要在不改动原快照的前提下构造新列表。
func (s *FightScorecard) CloneUserScores() []UserRoundScore {
	if s == nil || s.UserScores == nil {
		return nil
	}
	out := make([]UserRoundScore, len(s.UserScores))
	copy(out, s.UserScores)
	return out
}
