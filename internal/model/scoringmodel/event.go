package scoringmodel

// EventScorecards 一场赛事下全部对阵的记分卡集合。
// Bouts 按后端返回顺序（通常是出场顺序）原样保留。
type EventScorecards struct {
	EventID   string           `json:"event_id"`
	EventName string           `json:"event_name"`
	Bouts     []FightScorecard `json:"bouts"`
}
