package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"ringside-self/internal/model/scoringmodel"
	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	"ringside-self/internal/pkg/notify"
)

// StateFetcher 轮询用的回合状态拉取函数。
type StateFetcher func(ctx context.Context, boutID string) (*scoringmodel.RoundState, error)

// PhaseChangeFunc 观察到阶段变化时的回调。
type PhaseChangeFunc func(boutID string, state *scoringmodel.RoundState)

type watcher struct {
	cancel context.CancelFunc
}

// BoutPoller 对阵轮询器：每场被观察的对阵一个可取消的定时循环，
// 间隔每个周期按最新阶段从 cadence 表重算。阶段进入不需轮询的
// 状态（关闭/结束）时循环自行退出。
type BoutPoller struct {
	fetch         StateFetcher
	onPhaseChange PhaseChangeFunc
	metrics       *metrics.ScoringMetrics
	logger        log.Logger
	service       string

	mu       sync.Mutex
	watchers map[string]*watcher
	wg       sync.WaitGroup
}

// NewBoutPoller 创建轮询器。默认的阶段变化回调发布 NATS 事件。
func NewBoutPoller(fetch StateFetcher, logger log.Logger) *BoutPoller {
	if logger == nil {
		logger = log.GetLogger()
	}
	p := &BoutPoller{
		fetch:    fetch,
		metrics:  metrics.DefaultScoringMetrics,
		logger:   logger.With("component", "bout_poller"),
		service:  metrics.GetServiceName(),
		watchers: make(map[string]*watcher),
	}
	p.onPhaseChange = func(boutID string, state *scoringmodel.RoundState) {
		if err := notify.PublishScoringEvent(context.Background(), notify.RoundStateSubject(boutID), state); err != nil {
			p.logger.Warn("回合状态事件发布失败", log.String("bout_id", boutID), log.Any("error", err))
		}
	}
	return p
}

// SetPhaseChangeFunc 覆盖阶段变化回调（测试用）。
func (p *BoutPoller) SetPhaseChangeFunc(fn PhaseChangeFunc) {
	p.onPhaseChange = fn
}

// Watch 开始观察一场对阵。阶段不需要轮询时直接忽略；重复 Watch 幂等。
func (p *BoutPoller) Watch(boutID string, phase scoringmodel.Phase) {
	interval, ok := PollingInterval(&phase)
	if !ok {
		return
	}

	p.mu.Lock()
	if _, exists := p.watchers[boutID]; exists {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.watchers[boutID] = &watcher{cancel: cancel}
	count := len(p.watchers)
	p.mu.Unlock()

	p.metrics.SetWatchedBouts(count, p.service)
	p.logger.Info("开始轮询对阵",
		log.String("bout_id", boutID),
		log.String("phase", phase.Kind.String()),
		log.Duration("interval_ms", interval.Milliseconds()),
	)

	p.wg.Add(1)
	go p.pollLoop(ctx, boutID, phase, interval)
}

// Unwatch 停止观察一场对阵。
func (p *BoutPoller) Unwatch(boutID string) {
	p.mu.Lock()
	w, ok := p.watchers[boutID]
	if ok {
		delete(p.watchers, boutID)
	}
	count := len(p.watchers)
	p.mu.Unlock()

	if ok {
		w.cancel()
		p.metrics.SetWatchedBouts(count, p.service)
		p.logger.Info("停止轮询对阵", log.String("bout_id", boutID))
	}
}

// Watched 返回当前被观察的对阵列表（排序后，便于测试断言）。
func (p *BoutPoller) Watched() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.watchers))
	for boutID := range p.watchers {
		out = append(out, boutID)
	}
	sort.Strings(out)
	return out
}

// Stop 停止全部轮询并等待循环退出。
func (p *BoutPoller) Stop() {
	p.mu.Lock()
	for boutID, w := range p.watchers {
		w.cancel()
		delete(p.watchers, boutID)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.metrics.SetWatchedBouts(0, p.service)
	p.logger.Info("轮询器已停止")
}

// pollLoop 单场对阵的轮询循环。
func (p *BoutPoller) pollLoop(ctx context.Context, boutID string, lastPhase scoringmodel.Phase, interval time.Duration) {
	defer p.wg.Done()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		state, err := p.fetch(ctx, boutID)
		if err != nil {
			// 拉取失败保持原节奏继续观察，不放弃这场比赛
			p.logger.WarnContext(ctx, "轮询拉取失败",
				log.String("bout_id", boutID),
				log.Any("error", err),
			)
			timer.Reset(interval)
			continue
		}

		p.metrics.RecordPoll(state.Phase.Kind.String(), p.service)

		if state.Phase.Raw != lastPhase.Raw {
			p.logger.InfoContext(ctx, "观察到阶段变化",
				log.String("bout_id", boutID),
				log.String("from", lastPhase.Kind.String()),
				log.String("to", state.Phase.Kind.String()),
			)
			if p.onPhaseChange != nil {
				p.onPhaseChange(boutID, state)
			}
			lastPhase = state.Phase
		}

		next, ok := PollingInterval(&state.Phase)
		if !ok {
			// 终态或关闭：循环自行退出并摘除 watcher
			p.removeSelf(boutID)
			return
		}
		interval = next
		timer.Reset(interval)
	}
}

// removeSelf 轮询循环因终态退出时摘除自己的 watcher 记录。
func (p *BoutPoller) removeSelf(boutID string) {
	p.mu.Lock()
	if w, ok := p.watchers[boutID]; ok {
		delete(p.watchers, boutID)
		w.cancel()
	}
	count := len(p.watchers)
	p.mu.Unlock()

	p.metrics.SetWatchedBouts(count, p.service)
	p.logger.Info("对阵进入终态，停止轮询", log.String("bout_id", boutID))
}
