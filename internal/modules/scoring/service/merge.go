package service

import (
	"sort"
	"time"

	"ringside-self/internal/model/scoringmodel"
)

// MergeOptimisticScore 把一次尚未确认的提交合并进记分卡快照。
// 纯函数：不修改入参，返回新快照。同回合已有打分则替换，否则追加；
// 结果始终按 round_number 升序。current 为 nil 时返回 nil（没有快照就没有可合并的对象）。
// 社区聚合不动：那是后端算的，本地没有资格修改。
func MergeOptimisticScore(current *scoringmodel.FightScorecard, req scoringmodel.SubmissionRequest, submittedAt time.Time) *scoringmodel.FightScorecard {
	if current == nil {
		return nil
	}

	merged := *current
	scores := current.CloneUserScores()

	newScore := scoringmodel.UserRoundScore{
		RoundNumber: req.RoundNumber,
		ScoreRed:    req.ScoreRed,
		ScoreBlue:   req.ScoreBlue,
		SubmittedAt: submittedAt,
	}

	replaced := false
	for i := range scores {
		if scores[i].RoundNumber == req.RoundNumber {
			scores[i] = newScore
			replaced = true
			break
		}
	}
	if !replaced {
		scores = append(scores, newScore)
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].RoundNumber < scores[j].RoundNumber
	})

	merged.UserScores = scores
	return &merged
}
