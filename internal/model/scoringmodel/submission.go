package scoringmodel

// SubmissionRequest 一次回合打分的提交请求。
// SubmissionID 是幂等令牌：同一个逻辑提交（包括其全部重试）必须复用同一个令牌，
// 只有用户重新发起的新提交才铸造新令牌。分值范围由后端校验，客户端不做假设。
type SubmissionRequest struct {
	SubmissionID string `json:"submission_id"`
	BoutID       string `json:"bout_id"`
	RoundNumber  int    `json:"round_number"`
	ScoreRed     int    `json:"score_red"`
	ScoreBlue    int    `json:"score_blue"`
}

// SamePayload 两个请求是否是同一个逻辑动作（不比较令牌）。
func (r SubmissionRequest) SamePayload(other SubmissionRequest) bool {
	return r.BoutID == other.BoutID &&
		r.RoundNumber == other.RoundNumber &&
		r.ScoreRed == other.ScoreRed &&
		r.ScoreBlue == other.ScoreBlue
}

// SubmissionReceipt submit_round_score 的响应体。
type SubmissionReceipt struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Score   *UserRoundScore `json:"score,omitempty"`
}

// RecomputeResult admin_recompute_aggregates 的响应体。
type RecomputeResult struct {
	BoutID           string `json:"bout_id"`
	RoundsRecomputed int    `json:"rounds_recomputed"`
	Message          string `json:"message"`
}
