package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ringside-self/internal/model/scoringmodel"
)

func sampleScorecard() *scoringmodel.FightScorecard {
	return &scoringmodel.FightScorecard{
		Bout: scoringmodel.Bout{ID: "b1", EventID: "e1"},
		UserScores: []scoringmodel.UserRoundScore{
			{RoundNumber: 1, ScoreRed: 10, ScoreBlue: 9},
			{RoundNumber: 3, ScoreRed: 9, ScoreBlue: 10},
		},
	}
}

func TestMergeOptimisticScore_AppendKeepsOrder(t *testing.T) {
	now := time.Now()
	merged := MergeOptimisticScore(sampleScorecard(), scoringmodel.SubmissionRequest{
		BoutID:      "b1",
		RoundNumber: 2,
		ScoreRed:    10,
		ScoreBlue:   8,
	}, now)

	require.Len(t, merged.UserScores, 3)
	rounds := []int{merged.UserScores[0].RoundNumber, merged.UserScores[1].RoundNumber, merged.UserScores[2].RoundNumber}
	require.Equal(t, []int{1, 2, 3}, rounds, "结果必须按回合号升序")
	require.Equal(t, 10, merged.UserScores[1].ScoreRed)
	require.Equal(t, now, merged.UserScores[1].SubmittedAt)
}

func TestMergeOptimisticScore_ReplaceExistingRound(t *testing.T) {
	merged := MergeOptimisticScore(sampleScorecard(), scoringmodel.SubmissionRequest{
		BoutID:      "b1",
		RoundNumber: 1,
		ScoreRed:    8,
		ScoreBlue:   10,
	}, time.Now())

	require.Len(t, merged.UserScores, 2, "同回合重打分是替换而不是追加")
	require.Equal(t, 8, merged.UserScores[0].ScoreRed)
	require.Equal(t, 10, merged.UserScores[0].ScoreBlue)
}

func TestMergeOptimisticScore_DoesNotMutateInput(t *testing.T) {
	current := sampleScorecard()
	_ = MergeOptimisticScore(current, scoringmodel.SubmissionRequest{
		BoutID:      "b1",
		RoundNumber: 1,
		ScoreRed:    1,
		ScoreBlue:   1,
	}, time.Now())

	require.Equal(t, 10, current.UserScores[0].ScoreRed, "入参快照不能被修改")
	require.Len(t, current.UserScores, 2)
}

func TestMergeOptimisticScore_NilSnapshot(t *testing.T) {
	require.Nil(t, MergeOptimisticScore(nil, scoringmodel.SubmissionRequest{RoundNumber: 1}, time.Now()))
}

func TestMergeOptimisticScore_AggregatesUntouched(t *testing.T) {
	current := sampleScorecard()
	current.Aggregates = []json.RawMessage{json.RawMessage(`{"round":1,"avg_red":9.4}`)}

	merged := MergeOptimisticScore(current, scoringmodel.SubmissionRequest{
		BoutID:      "b1",
		RoundNumber: 4,
		ScoreRed:    10,
		ScoreBlue:   9,
	}, time.Now())

	require.Equal(t, current.Aggregates, merged.Aggregates, "社区聚合必须原样透传")
}
