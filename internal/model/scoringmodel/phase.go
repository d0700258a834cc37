// Package scoringmodel 定义打分协调器的领域模型。
// 回合阶段、记分卡、用户打分等类型都在这里，不依赖任何传输层。
package scoringmodel

import (
	"encoding/json"
	"fmt"
)

// PhaseKind 回合阶段枚举（闭合集合 + Unrecognized 兜底变体）
type PhaseKind int

const (
	// PhasePreFight 比赛尚未开始
	PhasePreFight PhaseKind = iota
	// PhaseRoundLive 回合进行中（聚合数据在变，用户还不能提交）
	PhaseRoundLive
	// PhaseRoundBreak 回合间休息（打分窗口，数据新鲜度最重要）
	PhaseRoundBreak
	// PhaseRoundClosed 回合已关闭
	PhaseRoundClosed
	// PhaseFightEnded 比赛结束（终态，不再变化）
	PhaseFightEnded
	// PhaseUnrecognized 后端返回了未知的阶段字符串
	// 不允许崩溃，原始值保存在 Phase.Raw 中以便日志排查
	PhaseUnrecognized
)

// 后端使用的阶段 wire 字符串
const (
	wirePreFight    = "PRE_FIGHT"
	wireRoundLive   = "ROUND_LIVE"
	wireRoundBreak  = "ROUND_BREAK"
	wireRoundClosed = "ROUND_CLOSED"
	wireFightEnded  = "FIGHT_ENDED"
)

// Phase 阶段值。Kind 是解析后的枚举，Raw 永远保留后端原始字符串。
// 后端新增阶段时 Kind 会落到 PhaseUnrecognized，而不是错误匹配到某个默认分支。
type Phase struct {
	Kind PhaseKind
	Raw  string
}

// ParsePhase 解析后端阶段字符串，未知值降级为 PhaseUnrecognized。
func ParsePhase(raw string) Phase {
	switch raw {
	case wirePreFight:
		return Phase{Kind: PhasePreFight, Raw: raw}
	case wireRoundLive:
		return Phase{Kind: PhaseRoundLive, Raw: raw}
	case wireRoundBreak:
		return Phase{Kind: PhaseRoundBreak, Raw: raw}
	case wireRoundClosed:
		return Phase{Kind: PhaseRoundClosed, Raw: raw}
	case wireFightEnded:
		return Phase{Kind: PhaseFightEnded, Raw: raw}
	default:
		return Phase{Kind: PhaseUnrecognized, Raw: raw}
	}
}

// String 返回 wire 字符串（Unrecognized 时即后端原始值）。
func (p Phase) String() string {
	return p.Raw
}

// IsTerminal 比赛是否已到终态。
func (p Phase) IsTerminal() bool {
	return p.Kind == PhaseFightEnded
}

// IsRecognized 是否是已知阶段。
func (p Phase) IsRecognized() bool {
	return p.Kind != PhaseUnrecognized
}

// MarshalJSON 序列化为 wire 字符串。
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON 反序列化，未知字符串不报错（防御性解码）。
func (p *Phase) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("phase 必须是字符串: %w", err)
	}
	*p = ParsePhase(raw)
	return nil
}

// String 枚举的可读名称（日志 / 指标 label 用）。
func (k PhaseKind) String() string {
	switch k {
	case PhasePreFight:
		return "pre_fight"
	case PhaseRoundLive:
		return "round_live"
	case PhaseRoundBreak:
		return "round_break"
	case PhaseRoundClosed:
		return "round_closed"
	case PhaseFightEnded:
		return "fight_ended"
	default:
		return "unrecognized"
	}
}
