package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ringside-self/internal/model/scoringmodel"
)

// fakeBackend 按字段注入行为的后端假实现。
type fakeBackend struct {
	getFightScorecard   func(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error)
	getEventScorecards  func(ctx context.Context, eventID, userID string) (*scoringmodel.EventScorecards, error)
	submitRoundScore    func(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error)
	updateRoundState    func(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error)
	getLiveFights       func(ctx context.Context) ([]scoringmodel.LiveFightSummary, error)
	recomputeAggregates func(ctx context.Context, adminID, boutID string) (*scoringmodel.RecomputeResult, error)
}

func (f *fakeBackend) GetFightScorecard(ctx context.Context, boutID, userID string) (*scoringmodel.FightScorecard, error) {
	return f.getFightScorecard(ctx, boutID, userID)
}

func (f *fakeBackend) GetEventScorecards(ctx context.Context, eventID, userID string) (*scoringmodel.EventScorecards, error) {
	return f.getEventScorecards(ctx, eventID, userID)
}

func (f *fakeBackend) SubmitRoundScore(ctx context.Context, userID string, req scoringmodel.SubmissionRequest) (*scoringmodel.SubmissionReceipt, error) {
	return f.submitRoundScore(ctx, userID, req)
}

func (f *fakeBackend) UpdateRoundState(ctx context.Context, adminID, boutID, action string, roundNumber int) (*scoringmodel.RoundState, error) {
	return f.updateRoundState(ctx, adminID, boutID, action, roundNumber)
}

func (f *fakeBackend) GetLiveFights(ctx context.Context) ([]scoringmodel.LiveFightSummary, error) {
	return f.getLiveFights(ctx)
}

func (f *fakeBackend) RecomputeAggregates(ctx context.Context, adminID, boutID string) (*scoringmodel.RecomputeResult, error) {
	return f.recomputeAggregates(ctx, adminID, boutID)
}

// fakeChecker 固定结果的权限检查假实现。
type fakeChecker struct {
	allowed bool
	err     error
	calls   int
}

func (f *fakeChecker) CheckUserPermission(ctx context.Context, userID, permissionCode string) (bool, error) {
	f.calls++
	return f.allowed, f.err
}

// fakeStore 内存 KVStore（JSON 序列化保持与 Redis 封装一致的行为）。
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	raw, ok := f.data[key]
	f.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeStore) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.data[key] = raw
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) DeleteKey(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	for _, key := range keys {
		delete(f.data, key)
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}
