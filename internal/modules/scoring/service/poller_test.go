package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
)

// overrideCadence 把节奏表整体压到毫秒级，让轮询测试跑得快且确定。
func overrideCadence(t *testing.T, d time.Duration) {
	t.Helper()
	orig := make(map[scoringmodel.PhaseKind]time.Duration, len(CadenceTable))
	for kind, interval := range CadenceTable {
		orig[kind] = interval
	}
	for kind := range CadenceTable {
		CadenceTable[kind] = d
	}
	t.Cleanup(func() {
		for kind, interval := range orig {
			CadenceTable[kind] = interval
		}
	})
}

func liveState(raw string) *scoringmodel.RoundState {
	return &scoringmodel.RoundState{
		CurrentRound: 1,
		Phase:        scoringmodel.ParsePhase(raw),
	}
}

func TestWatch_ClosedPhaseIgnored(t *testing.T) {
	poller := NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		t.Fatal("不需轮询的阶段不应启动循环")
		return nil, nil
	}, nil)
	defer poller.Stop()

	poller.Watch("b1", scoringmodel.ParsePhase("ROUND_CLOSED"))
	poller.Watch("b2", scoringmodel.ParsePhase("FIGHT_ENDED"))
	require.Empty(t, poller.Watched())
}

func TestWatch_IdempotentAndUnwatch(t *testing.T) {
	overrideCadence(t, time.Hour) // 不让循环真正 tick

	poller := NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return liveState("ROUND_LIVE"), nil
	}, nil)
	defer poller.Stop()

	phase := scoringmodel.ParsePhase("ROUND_LIVE")
	poller.Watch("b1", phase)
	poller.Watch("b1", phase)
	poller.Watch("b2", phase)
	require.Equal(t, []string{"b1", "b2"}, poller.Watched())

	poller.Unwatch("b1")
	require.Equal(t, []string{"b2"}, poller.Watched())

	// 重复 Unwatch 无害
	poller.Unwatch("b1")
	require.Equal(t, []string{"b2"}, poller.Watched())
}

func TestPollLoop_PhaseChangeCallback(t *testing.T) {
	overrideCadence(t, time.Millisecond)

	poller := NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return liveState("ROUND_LIVE"), nil
	}, nil)
	defer poller.Stop()

	changed := make(chan *scoringmodel.RoundState, 1)
	poller.SetPhaseChangeFunc(func(boutID string, state *scoringmodel.RoundState) {
		select {
		case changed <- state:
		default:
		}
	})

	// 以休息阶段开始观察，后端返回进行中 -> 应触发一次变化回调
	poller.Watch("b1", scoringmodel.ParsePhase("ROUND_BREAK"))

	select {
	case state := <-changed:
		require.Equal(t, scoringmodel.PhaseRoundLive, state.Phase.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("等待阶段变化回调超时")
	}
}

func TestPollLoop_TerminalPhaseRemovesWatcher(t *testing.T) {
	overrideCadence(t, time.Millisecond)

	poller := NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return liveState("FIGHT_ENDED"), nil
	}, nil)
	defer poller.Stop()

	poller.Watch("b1", scoringmodel.ParsePhase("ROUND_LIVE"))

	require.Eventually(t, func() bool {
		return len(poller.Watched()) == 0
	}, 2*time.Second, 5*time.Millisecond, "终态后循环必须自行摘除 watcher")
}

func TestPollLoop_FetchErrorKeepsWatching(t *testing.T) {
	overrideCadence(t, time.Millisecond)

	var calls int32
	poller := NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return nil, errors.New("backend unreachable")
		}
		return liveState("FIGHT_ENDED"), nil
	}, nil)
	defer poller.Stop()

	poller.Watch("b1", scoringmodel.ParsePhase("ROUND_LIVE"))

	// 前两次失败不放弃，第三次拿到终态才退出
	require.Eventually(t, func() bool {
		return len(poller.Watched()) == 0
	}, 2*time.Second, 5*time.Millisecond)
	require.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
}

func TestStop_WaitsForLoops(t *testing.T) {
	overrideCadence(t, time.Millisecond)

	poller := NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return liveState("ROUND_LIVE"), nil
	}, nil)

	poller.Watch("b1", scoringmodel.ParsePhase("ROUND_LIVE"))
	poller.Watch("b2", scoringmodel.ParsePhase("PRE_FIGHT"))
	require.Len(t, poller.Watched(), 2)

	poller.Stop()
	require.Empty(t, poller.Watched())
}
