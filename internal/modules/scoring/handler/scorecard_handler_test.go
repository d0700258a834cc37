package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/modules/scoring/service"
)

func newScorecardHandler(backend *fakeBackend) *ScorecardHandler {
	container := service.NewServiceContainer(backend, nil, nil, nil)
	return NewScorecardHandler(container, newTestWriter())
}

func TestGetFightScorecard_OK(t *testing.T) {
	backend := &fakeBackend{
		getFightScorecard: func(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
			return &scoringmodel.FightScorecard{Bout: scoringmodel.Bout{ID: boutID}}, nil
		},
	}
	h := newScorecardHandler(backend)

	c, rec := newScoringContext(t, http.MethodGet, "")
	c.SetParamNames("bout_id")
	c.SetParamValues("b1")

	require.NoError(t, h.GetFightScorecard(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetFightScorecard_MissingCardIs404(t *testing.T) {
	backend := &fakeBackend{
		getFightScorecard: func(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
			return nil, nil
		},
	}
	h := newScorecardHandler(backend)

	c, rec := newScoringContext(t, http.MethodGet, "")
	c.SetParamNames("bout_id")
	c.SetParamValues("b404")

	require.NoError(t, h.GetFightScorecard(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetFightScorecard_EmptyBoutIDIs400(t *testing.T) {
	backend := &fakeBackend{
		getFightScorecard: func(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
			t.Fatal("缺少对阵ID不应触达服务层")
			return nil, nil
		},
	}
	h := newScorecardHandler(backend)

	c, rec := newScoringContext(t, http.MethodGet, "")

	require.NoError(t, h.GetFightScorecard(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetEventScorecards_MissingCardsIs404(t *testing.T) {
	backend := &fakeBackend{
		getEventScorecards: func(ctx context.Context, eventID, userID string) (*scoringmodel.EventScorecards, error) {
			return nil, nil
		},
	}
	h := newScorecardHandler(backend)

	c, rec := newScoringContext(t, http.MethodGet, "")
	c.SetParamNames("event_id")
	c.SetParamValues("e404")

	require.NoError(t, h.GetEventScorecards(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
