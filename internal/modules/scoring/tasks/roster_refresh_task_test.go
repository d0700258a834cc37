package tasks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/modules/scoring/service"
)

// rosterBackend 只实现名单拉取，其余过程在这些测试里不会被触达。
type rosterBackend struct {
	fights []scoringmodel.LiveFightSummary
	err    error
}

func (b *rosterBackend) GetLiveFights(ctx context.Context) ([]scoringmodel.LiveFightSummary, error) {
	return b.fights, b.err
}

func (b *rosterBackend) GetFightScorecard(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
	return nil, nil
}

func (b *rosterBackend) GetEventScorecards(ctx context.Context, eventID, userID string) (*scoringmodel.EventScorecards, error) {
	return nil, nil
}

func (b *rosterBackend) SubmitRoundScore(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
	return nil, nil
}

func (b *rosterBackend) UpdateRoundState(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error) {
	return nil, nil
}

func (b *rosterBackend) RecomputeAggregates(ctx context.Context, adminID, boutID string) (*scoringmodel.RecomputeResult, error) {
	return nil, nil
}

func live(boutID, phase string) scoringmodel.LiveFightSummary {
	return scoringmodel.LiveFightSummary{BoutID: boutID, Phase: scoringmodel.ParsePhase(phase)}
}

func TestRefreshOnce_ReconcilesPollerSet(t *testing.T) {
	backend := &rosterBackend{fights: []scoringmodel.LiveFightSummary{
		live("b1", "ROUND_LIVE"),
		live("b2", "ROUND_BREAK"),
	}}
	roster := service.NewRosterService(backend, nil, nil)
	poller := service.NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return nil, nil
	}, nil)
	defer poller.Stop()

	task := NewRosterRefreshTask(roster, poller, nil)

	task.refreshOnce()
	require.Equal(t, []string{"b1", "b2"}, poller.Watched())

	// b2 打完下场：名单收缩，轮询器同步摘除
	backend.fights = []scoringmodel.LiveFightSummary{live("b1", "ROUND_LIVE")}
	task.refreshOnce()
	require.Equal(t, []string{"b1"}, poller.Watched())

	// 新对阵上场
	backend.fights = append(backend.fights, live("b3", "PRE_FIGHT"))
	task.refreshOnce()
	require.Equal(t, []string{"b1", "b3"}, poller.Watched())
}

func TestRefreshOnce_FetchFailureKeepsWatchers(t *testing.T) {
	backend := &rosterBackend{fights: []scoringmodel.LiveFightSummary{live("b1", "ROUND_LIVE")}}
	roster := service.NewRosterService(backend, nil, nil)
	poller := service.NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return nil, nil
	}, nil)
	defer poller.Stop()

	task := NewRosterRefreshTask(roster, poller, nil)

	task.refreshOnce()
	require.Equal(t, []string{"b1"}, poller.Watched())

	// 名单源故障：保留现有观察集合，不误摘
	backend.err = context.DeadlineExceeded
	backend.fights = nil
	task.refreshOnce()
	require.Equal(t, []string{"b1"}, poller.Watched())
}

func TestRefreshOnce_ConcurrentRunsAreSerialized(t *testing.T) {
	// 启动时的首轮刷新和 cron 触发的刷新可能重叠，known 不能被并发读写
	backend := &rosterBackend{fights: []scoringmodel.LiveFightSummary{
		live("b1", "ROUND_LIVE"),
		live("b2", "ROUND_BREAK"),
	}}
	roster := service.NewRosterService(backend, nil, nil)
	poller := service.NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return nil, nil
	}, nil)
	defer poller.Stop()

	task := NewRosterRefreshTask(roster, poller, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.refreshOnce()
		}()
	}
	wg.Wait()

	require.Equal(t, []string{"b1", "b2"}, poller.Watched())
}

func TestRefreshOnce_TerminalPhasesNotWatched(t *testing.T) {
	// 后端名单里混入终态对阵（理论上不该出现）：Watch 自己会忽略
	backend := &rosterBackend{fights: []scoringmodel.LiveFightSummary{
		live("b1", "ROUND_LIVE"),
		live("b2", "FIGHT_ENDED"),
	}}
	roster := service.NewRosterService(backend, nil, nil)
	poller := service.NewBoutPoller(func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error) {
		return nil, nil
	}, nil)
	defer poller.Stop()

	task := NewRosterRefreshTask(roster, poller, nil)

	task.refreshOnce()
	require.Equal(t, []string{"b1"}, poller.Watched())
}
