package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/xerrors"
)

func newSubmissionFixture(backend *fakeBackend, store KVStore) (*SubmissionService, *ScorecardService) {
	scorecards := NewScorecardService(backend, nil)
	svc := NewSubmissionService(backend, scorecards, store, nil)
	svc.sleep = func(time.Duration) {} // 测试里不真睡
	return svc, scorecards
}

func submissionReq(round int) scoringmodel.SubmissionRequest {
	return scoringmodel.SubmissionRequest{
		BoutID:      "b1",
		RoundNumber: round,
		ScoreRed:    10,
		ScoreBlue:   9,
	}
}

func TestSubmitRoundScore_Success(t *testing.T) {
	ctx := context.Background()
	var gotToken string
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			gotToken = req.SubmissionID
			return &scoringmodel.SubmissionReceipt{Success: true, Score: &scoringmodel.UserRoundScore{RoundNumber: req.RoundNumber}}, nil
		},
	}
	store := newFakeStore()
	svc, _ := newSubmissionFixture(backend, store)

	receipt, err := svc.SubmitRoundScore(ctx, "u1", submissionReq(1), "")
	require.NoError(t, err)
	require.True(t, receipt.Success)
	require.NotEmpty(t, gotToken, "服务端必须铸造幂等令牌")
	require.False(t, store.has(pendingKey("u1", "b1", 1)), "确认成功后待确认记录必须清除")
}

func TestSubmitRoundScore_ClientKeyUsedAsToken(t *testing.T) {
	ctx := context.Background()
	var gotToken string
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			gotToken = req.SubmissionID
			return &scoringmodel.SubmissionReceipt{Success: true}, nil
		},
	}
	svc, _ := newSubmissionFixture(backend, newFakeStore())

	_, err := svc.SubmitRoundScore(ctx, "u1", submissionReq(1), "client-key-1")
	require.NoError(t, err)
	require.Equal(t, "client-key-1", gotToken)
}

func TestSubmitRoundScore_RetriesReuseToken(t *testing.T) {
	ctx := context.Background()
	var tokens []string
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			tokens = append(tokens, req.SubmissionID)
			if len(tokens) < 3 {
				return nil, xerrors.NewScoringBackendError("submit_round_score", context.DeadlineExceeded)
			}
			return &scoringmodel.SubmissionReceipt{Success: true}, nil
		},
	}
	svc, _ := newSubmissionFixture(backend, newFakeStore())

	_, err := svc.SubmitRoundScore(ctx, "u1", submissionReq(2), "")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	require.Equal(t, tokens[0], tokens[1], "内部重试必须复用同一令牌")
	require.Equal(t, tokens[0], tokens[2])
}

func TestSubmitRoundScore_DomainErrorNotRetried(t *testing.T) {
	ctx := context.Background()
	calls := 0
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			calls++
			return nil, xerrors.NewScoringClosedError(req.BoutID, req.RoundNumber)
		},
	}
	store := newFakeStore()
	svc, _ := newSubmissionFixture(backend, store)

	_, err := svc.SubmitRoundScore(ctx, "u1", submissionReq(3), "")
	require.Error(t, err)
	require.Equal(t, 1, calls, "业务拒绝永远不重试")

	appErr, ok := err.(*xerrors.AppError)
	require.True(t, ok)
	require.Equal(t, xerrors.CodeScoringClosed, appErr.Code)
	require.False(t, store.has(pendingKey("u1", "b1", 3)), "业务拒绝后待确认记录应清除")
}

func TestSubmitRoundScore_TransportFailureKeepsPendingToken(t *testing.T) {
	ctx := context.Background()
	var tokens []string
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			tokens = append(tokens, req.SubmissionID)
			return nil, xerrors.NewScoringBackendError("submit_round_score", context.DeadlineExceeded)
		},
	}
	store := newFakeStore()
	svc, _ := newSubmissionFixture(backend, store)

	_, err := svc.SubmitRoundScore(ctx, "u1", submissionReq(4), "")
	require.Error(t, err)
	require.True(t, store.has(pendingKey("u1", "b1", 4)), "传输失败后待确认记录要保留")

	// 用户手动重试同一 payload：复用存下来的令牌
	_, err = svc.SubmitRoundScore(ctx, "u1", submissionReq(4), "")
	require.Error(t, err)
	require.Equal(t, tokens[0], tokens[len(tokens)-1], "跨调用的重试也必须复用令牌")
}

func TestSubmitRoundScore_ChangedPayloadMintsNewToken(t *testing.T) {
	ctx := context.Background()
	var tokens []string
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			tokens = append(tokens, req.SubmissionID)
			return nil, xerrors.NewScoringBackendError("submit_round_score", context.DeadlineExceeded)
		},
	}
	svc, _ := newSubmissionFixture(backend, newFakeStore())

	first := submissionReq(5)
	_, _ = svc.SubmitRoundScore(ctx, "u1", first, "")

	changed := first
	changed.ScoreBlue = 7 // 改了分数就是新的逻辑动作
	_, _ = svc.SubmitRoundScore(ctx, "u1", changed, "")

	require.NotEqual(t, tokens[0], tokens[len(tokens)-1], "payload 变化必须铸造新令牌")
}

func TestSubmitRoundScore_OptimisticMergeAndRollback(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		getFightScorecard: func(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
			return sampleScorecard(), nil
		},
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			return nil, xerrors.NewRoundAlreadyGradedError(req.BoutID, req.RoundNumber)
		},
	}
	svc, scorecards := newSubmissionFixture(backend, newFakeStore())

	// 先有快照
	_, err := scorecards.GetFightScorecard(ctx, "b1", "u1")
	require.NoError(t, err)

	_, err = svc.SubmitRoundScore(ctx, "u1", submissionReq(2), "")
	require.Error(t, err)

	// 失败后快照回滚到提交前的状态
	card, ok := scorecards.PeekFight("b1", "u1")
	require.True(t, ok)
	require.Len(t, card.UserScores, 2, "回滚后不应残留未确认的打分")
}

func TestSubmitRoundScore_SuccessInvalidatesSnapshot(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		getFightScorecard: func(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
			return sampleScorecard(), nil
		},
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			return &scoringmodel.SubmissionReceipt{Success: true}, nil
		},
	}
	svc, scorecards := newSubmissionFixture(backend, newFakeStore())

	_, err := scorecards.GetFightScorecard(ctx, "b1", "u1")
	require.NoError(t, err)

	_, err = svc.SubmitRoundScore(ctx, "u1", submissionReq(2), "")
	require.NoError(t, err)

	_, ok := scorecards.PeekFight("b1", "u1")
	require.False(t, ok, "确认成功后快照必须失效，下次读取对齐服务端")
}

func TestSubmitRoundScore_MissingIdentifiers(t *testing.T) {
	svc, _ := newSubmissionFixture(&fakeBackend{}, nil)

	_, err := svc.SubmitRoundScore(context.Background(), "", submissionReq(1), "")
	require.Error(t, err)

	_, err = svc.SubmitRoundScore(context.Background(), "u1", scoringmodel.SubmissionRequest{RoundNumber: 1}, "")
	require.Error(t, err)
}
