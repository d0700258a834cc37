package scoringmodel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSamePayload(t *testing.T) {
	base := SubmissionRequest{
		SubmissionID: "tok-1",
		BoutID:       "b1",
		RoundNumber:  2,
		ScoreRed:     10,
		ScoreBlue:    9,
	}

	// 令牌不参与比较：同 payload 不同令牌仍是同一个逻辑动作
	retried := base
	retried.SubmissionID = "tok-2"
	require.True(t, base.SamePayload(retried))

	changed := base
	changed.ScoreBlue = 8
	require.False(t, base.SamePayload(changed), "分值变了就是新的逻辑动作")

	otherRound := base
	otherRound.RoundNumber = 3
	require.False(t, base.SamePayload(otherRound))

	otherBout := base
	otherBout.BoutID = "b2"
	require.False(t, base.SamePayload(otherBout))
}
