package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/xerrors"
)

func newAdminFixture(backend *fakeBackend, checker PermissionChecker, store KVStore) (*AdminService, *ScorecardService, *RosterService) {
	scorecards := NewScorecardService(backend, nil)
	roster := NewRosterService(backend, store, nil)
	return NewAdminService(backend, checker, scorecards, roster, nil), scorecards, roster
}

func TestUpdateRoundState_Success(t *testing.T) {
	ctx := context.Background()
	var gotAction string
	backend := &fakeBackend{
		getFightScorecard: func(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
			return sampleScorecard(), nil
		},
		updateRoundState: func(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error) {
			gotAction = action
			return &scoringmodel.RoundState{
				CurrentRound: roundNumber,
				Phase:        scoringmodel.ParsePhase("ROUND_LIVE"),
			}, nil
		},
	}
	store := newFakeStore()
	svc, scorecards, _ := newAdminFixture(backend, &fakeChecker{allowed: true}, store)

	// 预热一个快照，验证迁移后被失效
	_, err := scorecards.GetFightScorecard(ctx, "b1", "u1")
	require.NoError(t, err)

	state, err := svc.UpdateRoundState(ctx, "admin1", "b1", ActionStartRound, 1)
	require.NoError(t, err)
	require.Equal(t, ActionStartRound, gotAction)
	require.Equal(t, scoringmodel.PhaseRoundLive, state.Phase.Kind)

	_, ok := scorecards.PeekFight("b1", "u1")
	require.False(t, ok, "迁移成功后该对阵的快照必须失效")
}

func TestUpdateRoundState_PermissionDenied(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		updateRoundState: func(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error) {
			t.Fatal("权限不足时不应触达后端")
			return nil, nil
		},
	}
	svc, _, _ := newAdminFixture(backend, &fakeChecker{allowed: false}, nil)

	_, err := svc.UpdateRoundState(ctx, "user1", "b1", ActionEndRound, 1)
	require.Error(t, err)
	appErr, ok := err.(*xerrors.AppError)
	require.True(t, ok)
	require.Equal(t, xerrors.CodePermissionDenied, appErr.Code)
}

func TestUpdateRoundState_CheckerUnavailableFailsFast(t *testing.T) {
	svc, _, _ := newAdminFixture(&fakeBackend{}, nil, nil)

	_, err := svc.UpdateRoundState(context.Background(), "admin1", "b1", ActionStartRound, 1)
	require.Error(t, err, "权限系统缺失时必须拒绝而不是放行")
}

func TestUpdateRoundState_CheckerErrorNotSwallowed(t *testing.T) {
	checker := &fakeChecker{err: errors.New("keto unreachable")}
	svc, _, _ := newAdminFixture(&fakeBackend{}, checker, nil)

	_, err := svc.UpdateRoundState(context.Background(), "admin1", "b1", ActionStartRound, 1)
	require.Error(t, err)
	require.Equal(t, 1, checker.calls, "权限检查失败不重试")
}

func TestUpdateRoundState_UnknownActionForwarded(t *testing.T) {
	ctx := context.Background()
	var gotAction string
	backend := &fakeBackend{
		updateRoundState: func(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error) {
			gotAction = action
			return nil, xerrors.NewUnknownAdminActionError(action)
		},
	}
	svc, _, _ := newAdminFixture(backend, &fakeChecker{allowed: true}, nil)

	// 动作是开放集合：未知动作照样转发，由后端裁决
	_, err := svc.UpdateRoundState(ctx, "admin1", "b1", "restart_broadcast", 0)
	require.Error(t, err)
	require.Equal(t, "restart_broadcast", gotAction)

	appErr, ok := err.(*xerrors.AppError)
	require.True(t, ok)
	require.Equal(t, xerrors.CodeUnknownAdminAction, appErr.Code)
}

func TestRecomputeAggregates_Success(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		recomputeAggregates: func(ctx context.Context, adminID, boutID string) (*scoringmodel.RecomputeResult, error) {
			return &scoringmodel.RecomputeResult{BoutID: boutID, RoundsRecomputed: 3}, nil
		},
	}
	svc, _, _ := newAdminFixture(backend, &fakeChecker{allowed: true}, nil)

	result, err := svc.RecomputeAggregates(ctx, "admin1", "b1")
	require.NoError(t, err)
	require.Equal(t, 3, result.RoundsRecomputed)
}

func TestGetLiveFights_UsesRosterCache(t *testing.T) {
	ctx := context.Background()
	fetches := 0
	backend := &fakeBackend{
		getLiveFights: func(ctx context.Context) ([]scoringmodel.LiveFightSummary, error) {
			fetches++
			return []scoringmodel.LiveFightSummary{{BoutID: "b1", Phase: scoringmodel.ParsePhase("ROUND_BREAK")}}, nil
		},
	}
	store := newFakeStore()
	svc, _, _ := newAdminFixture(backend, &fakeChecker{allowed: true}, store)

	fights, err := svc.GetLiveFights(ctx, "admin1")
	require.NoError(t, err)
	require.Len(t, fights, 1)

	_, err = svc.GetLiveFights(ctx, "admin1")
	require.NoError(t, err)
	require.Equal(t, 1, fetches, "TTL 内的名单读取应命中 Redis 缓存")
}

func TestRosterRefresh_UpdatesCacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	fetches := 0
	backend := &fakeBackend{
		getLiveFights: func(ctx context.Context) ([]scoringmodel.LiveFightSummary, error) {
			fetches++
			return []scoringmodel.LiveFightSummary{{BoutID: "b2"}}, nil
		},
	}
	store := newFakeStore()
	roster := NewRosterService(backend, store, nil)

	fights, err := roster.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "b2", fights[0].BoutID)
	require.True(t, store.has(rosterCacheKey))

	roster.Invalidate(ctx)
	require.False(t, store.has(rosterCacheKey))

	_, err = roster.GetLiveFights(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fetches, "失效后必须回源")
}
