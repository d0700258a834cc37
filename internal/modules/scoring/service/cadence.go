package service

import (
	"time"

	"ringside-self/internal/model/scoringmodel"
)

// CadenceTable 每个阶段的轮询间隔，全服务唯一的权威常量表。
// 回合间休息是打分窗口，数据新鲜度最重要，轮询最激进；
// 回合进行中聚合在变但用户不能提交，居中；赛前最慢。
var CadenceTable = map[scoringmodel.PhaseKind]time.Duration{
	scoringmodel.PhasePreFight:   30 * time.Second,
	scoringmodel.PhaseRoundLive:  10 * time.Second,
	scoringmodel.PhaseRoundBreak: 4 * time.Second,
}

// UnrecognizedPollingInterval 未知阶段的保守默认间隔。
// 后端新增阶段时宁可多拉几次，也不能停止观察。
const UnrecognizedPollingInterval = 15 * time.Second

// PollingInterval 返回某阶段的轮询间隔。
// 第二个返回值为 false 表示不需要轮询（回合已关闭 / 比赛结束 / 无阶段）。
func PollingInterval(phase *scoringmodel.Phase) (time.Duration, bool) {
	if phase == nil {
		return 0, false
	}

	switch phase.Kind {
	case scoringmodel.PhaseRoundClosed, scoringmodel.PhaseFightEnded:
		return 0, false
	case scoringmodel.PhaseUnrecognized:
		return UnrecognizedPollingInterval, true
	default:
		if interval, ok := CadenceTable[phase.Kind]; ok {
			return interval, true
		}
		return UnrecognizedPollingInterval, true
	}
}
