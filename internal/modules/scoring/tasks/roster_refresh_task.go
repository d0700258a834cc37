package tasks

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"ringside-self/internal/modules/scoring/service"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/notify"
)

// RosterRefreshTask 实时名单刷新任务：周期性回源拉取非终态对阵名单，
// 把轮询器的观察集合对齐到最新名单（新上场的开始轮询、下场的停止轮询），
// 名单发生变化时发布 NATS 事件。
type RosterRefreshTask struct {
	roster *service.RosterService
	poller *service.BoutPoller
	logger log.Logger
	cron   *cron.Cron

	// mu 串行化刷新：启动时的首轮刷新和 cron 触发的刷新可能重叠
	// （cron v3 默认并发跑任务），known 不能被并发读写
	mu sync.Mutex
	// known 上一轮名单中的对阵集合，用于算增删
	known map[string]struct{}
}

// NewRosterRefreshTask 创建名单刷新任务实例
func NewRosterRefreshTask(roster *service.RosterService, poller *service.BoutPoller, logger log.Logger) *RosterRefreshTask {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &RosterRefreshTask{
		roster: roster,
		poller: poller,
		logger: logger,
		known:  make(map[string]struct{}),
	}
}

// Start 启动定时任务
func (t *RosterRefreshTask) Start() {
	// 创建 cron 调度器（秒级：名单要跟得上比赛节奏）
	t.cron = cron.New(cron.WithSeconds())

	// Cron 表达式: 秒 分 时 日 月 周
	_, err := t.cron.AddFunc("*/5 * * * * *", func() {
		t.refreshOnce()
	})

	if err != nil {
		t.logger.Error("【定时任务】添加名单刷新任务失败", err)
		return
	}

	t.cron.Start()
	t.logger.Info("【定时任务】已启动 - 每5秒刷新实时对阵名单")

	// 启动时先跑一轮，避免等第一个周期
	t.refreshOnce()
}

// refreshOnce 执行一轮名单刷新与轮询器对齐
func (t *RosterRefreshTask) refreshOnce() {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := context.Background()

	fights, err := t.roster.Refresh(ctx)
	if err != nil {
		// 拉取失败保留现有观察集合，下一轮再试
		t.logger.Error("【定时任务】刷新实时名单失败", err)
		return
	}

	current := make(map[string]struct{}, len(fights))
	added := 0
	for _, fight := range fights {
		current[fight.BoutID] = struct{}{}
		if _, ok := t.known[fight.BoutID]; !ok {
			added++
		}
		// Watch 幂等，已在观察中的对阵不受影响
		t.poller.Watch(fight.BoutID, fight.Phase)
	}

	removed := 0
	for boutID := range t.known {
		if _, ok := current[boutID]; !ok {
			t.poller.Unwatch(boutID)
			removed++
		}
	}

	if added > 0 || removed > 0 {
		t.logger.Info("【定时任务】实时名单已变化",
			"total", len(fights),
			"added", added,
			"removed", removed)
		if err := notify.PublishScoringEvent(ctx, notify.SubjectRosterChanged, fights); err != nil {
			t.logger.Error("【定时任务】名单变化事件发布失败", err)
		}
	}

	t.known = current
}

// Stop 停止定时任务（优雅关闭）
func (t *RosterRefreshTask) Stop() {
	if t.cron != nil {
		t.logger.Info("【定时任务】正在停止名单刷新任务...")
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【定时任务】名单刷新任务已停止")
	}
}
