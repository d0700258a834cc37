package scoringmodel

// LiveFightSummary 管理侧实时名单中的一条记录。
// 只携带运营面板展示需要的字段，完整记分卡按需另取。
type LiveFightSummary struct {
	BoutID       string `json:"bout_id"`
	EventID      string `json:"event_id"`
	EventName    string `json:"event_name"`
	RedCorner    string `json:"red_corner"`
	BlueCorner   string `json:"blue_corner"`
	Phase        Phase  `json:"phase"`
	CurrentRound int    `json:"current_round"`
}
