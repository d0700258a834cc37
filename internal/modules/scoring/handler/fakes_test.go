package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	custommiddleware "ringside-self/internal/middleware"
	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/ctxkey"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/response"
	"ringside-self/internal/pkg/validator"
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

func newTestWriter() response.Writer {
	return response.NewResponseHandler(log.GetLogger(), "test")
}

// newScoringContext 构造带认证用户的 echo 测试上下文。
func newScoringContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = validator.New()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(string(ctxkey.CurrentUser), &custommiddleware.CurrentUser{UserID: "u1"})
	return c, rec
}
