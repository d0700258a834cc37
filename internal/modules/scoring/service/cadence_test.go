package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
)

func phaseOf(kind scoringmodel.PhaseKind, raw string) *scoringmodel.Phase {
	return &scoringmodel.Phase{Kind: kind, Raw: raw}
}

func TestPollingInterval_NoPollingPhases(t *testing.T) {
	_, ok := PollingInterval(nil)
	require.False(t, ok, "无阶段不应轮询")

	_, ok = PollingInterval(phaseOf(scoringmodel.PhaseRoundClosed, "ROUND_CLOSED"))
	require.False(t, ok, "回合关闭不应轮询")

	_, ok = PollingInterval(phaseOf(scoringmodel.PhaseFightEnded, "FIGHT_ENDED"))
	require.False(t, ok, "比赛结束不应轮询")
}

func TestPollingInterval_CategoryOrdering(t *testing.T) {
	breakIv, ok := PollingInterval(phaseOf(scoringmodel.PhaseRoundBreak, "ROUND_BREAK"))
	require.True(t, ok)
	liveIv, ok := PollingInterval(phaseOf(scoringmodel.PhaseRoundLive, "ROUND_LIVE"))
	require.True(t, ok)
	preIv, ok := PollingInterval(phaseOf(scoringmodel.PhasePreFight, "PRE_FIGHT"))
	require.True(t, ok)

	// 不断言具体数值，只断言类别关系：休息 < 进行中 < 赛前
	require.Positive(t, breakIv)
	require.Less(t, breakIv, liveIv, "打分窗口必须比回合进行中更激进")
	require.Less(t, liveIv, preIv, "回合进行中必须比赛前更激进")
}

func TestPollingInterval_UnrecognizedKeepsPolling(t *testing.T) {
	iv, ok := PollingInterval(phaseOf(scoringmodel.PhaseUnrecognized, "HALFTIME_SHOW"))
	require.True(t, ok, "未知阶段不能停止观察")
	require.Positive(t, iv)
}
