package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/modules/scoring/service"
	"ringside-self/internal/pkg/xerrors"
)

func newScoreHandler(backend *fakeBackend) *ScoreHandler {
	container := service.NewServiceContainer(backend, nil, nil, nil)
	return NewScoreHandler(container, newTestWriter())
}

func TestSubmitRoundScore_ForwardsScoresUnclamped(t *testing.T) {
	// 分值范围由后端裁决：越界分数必须原样送达，不在网关侧拦截
	var got scoringmodel.SubmissionRequest
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			got = req
			return &scoringmodel.SubmissionReceipt{Success: true}, nil
		},
	}
	h := newScoreHandler(backend)

	c, rec := newScoringContext(t, http.MethodPost, `{"round_number":2,"score_red":11,"score_blue":0}`)
	c.SetParamNames("bout_id")
	c.SetParamValues("b1")

	require.NoError(t, h.SubmitRoundScore(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "b1", got.BoutID)
	require.Equal(t, 2, got.RoundNumber)
	require.Equal(t, 11, got.ScoreRed)
	require.Equal(t, 0, got.ScoreBlue)
}

func TestSubmitRoundScore_BackendRangeRejection(t *testing.T) {
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			return nil, xerrors.New(xerrors.CodeScoreOutOfRange, "分值超出允许范围")
		},
	}
	h := newScoreHandler(backend)

	c, rec := newScoringContext(t, http.MethodPost, `{"round_number":1,"score_red":99,"score_blue":1}`)
	c.SetParamNames("bout_id")
	c.SetParamValues("b1")

	require.NoError(t, h.SubmitRoundScore(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRoundScore_MissingRoundNumberIs400(t *testing.T) {
	backend := &fakeBackend{
		submitRoundScore: func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
			t.Fatal("校验失败不应触达后端")
			return nil, nil
		},
	}
	h := newScoreHandler(backend)

	c, rec := newScoringContext(t, http.MethodPost, `{"score_red":10,"score_blue":9}`)
	c.SetParamNames("bout_id")
	c.SetParamValues("b1")

	require.NoError(t, h.SubmitRoundScore(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
