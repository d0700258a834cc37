// Package snapshotcache 提供线程安全的记分卡快照缓存。
// 同一个 key 的刷新是串行的：缓存过期后第一个调用者发起拉取，
// 其余并发调用者等待同一次拉取的结果，不会出现重复请求打到后端。
package snapshotcache

import (
	"context"
	"sync"
	"time"

	"ringside-self/internal/pkg/log"
	"ringside-self/internal/pkg/metrics"
	"ringside-self/internal/pkg/sessioncache"
	"ringside-self/internal/pkg/xerrors"
)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

type call[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// FetchFunc 缓存未命中时的拉取函数。
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Cache 按 key 缓存快照，带 TTL 与单飞拉取。
type Cache[T any] struct {
	ttl     time.Duration
	metrics *metrics.CacheMetrics
	logger  log.Logger
	clock   func() time.Time

	mu       sync.Mutex
	store    map[string]*entry[T]
	inflight map[string]*call[T]
}

// New 返回默认 Cache 实例。
func New[T any](ttl time.Duration, m *metrics.CacheMetrics, logger log.Logger) *Cache[T] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if m == nil {
		m = metrics.DefaultCacheMetrics
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Cache[T]{
		ttl:      ttl,
		metrics:  m,
		logger:   logger.With("component", "snapshot_cache"),
		clock:    time.Now,
		store:    make(map[string]*entry[T]),
		inflight: make(map[string]*call[T]),
	}
}

// GetOrFetch 返回缓存的快照；过期或不存在时通过 fetch 拉取。
// 同一个 key 的并发调用共享同一次拉取。拉取失败时不污染缓存；
// 传输类（可重试）失败且手头还有旧快照时返回旧快照（宁可稍旧，不可没有），
// 业务错误原样抛出，不会被旧快照掩盖。
func (c *Cache[T]) GetOrFetch(ctx context.Context, service, key string, fetch FetchFunc[T]) (T, error) {
	service = sessioncache.NormalizeService(service)

	c.mu.Lock()
	if e, ok := c.store[key]; ok && c.clock().Sub(e.fetchedAt) < c.ttl {
		value := e.value
		c.mu.Unlock()
		c.metrics.IncCacheHit(service)
		return value, nil
	}

	// 已有进行中的拉取：等它
	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		c.metrics.IncCacheHit(service)
		select {
		case <-inflight.done:
			return inflight.value, inflight.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	// 本调用者负责拉取
	current := &call[T]{done: make(chan struct{})}
	c.inflight[key] = current
	c.mu.Unlock()

	c.metrics.IncCacheMiss(service)

	start := c.clock()
	value, err := fetch(ctx)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.ObserveFetchDuration(service, outcome, c.clock().Sub(start))

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		c.store[key] = &entry[T]{value: value, fetchedAt: c.clock()}
	} else if retryableError(err) {
		if stale, ok := c.store[key]; ok {
			// 传输类失败但手头有旧快照：降级返回旧数据
			value = stale.value
			err = nil
			c.logger.WarnContext(ctx, "snapshot fetch failed, serving stale",
				log.String("service", service),
				log.String("key", key))
		}
	} else if _, ok := c.store[key]; ok {
		// 业务错误是后端给出的结论（对阵不存在、窗口关闭），必须向上抛出；
		// 旧快照已经和结论矛盾，一并剔除
		delete(c.store, key)
		c.metrics.IncCacheEvicted(service, "domain_error")
	}
	c.mu.Unlock()

	current.value = value
	current.err = err
	close(current.done)

	return value, err
}

// retryableError 判断拉取失败是否属于传输类（可重试）故障。
// 只有这类失败才允许降级返回旧快照。
func retryableError(err error) bool {
	appErr, ok := err.(*xerrors.AppError)
	return ok && appErr.IsRetryable()
}

// Peek 返回缓存值（不触发拉取、不检查 TTL）。
// 乐观合并前用它保存回滚副本。
func (c *Cache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.store[key]; ok {
		return e.value, true
	}
	var zero T
	return zero, false
}

// Put 直接覆盖快照（乐观合并后的本地视图）。
func (c *Cache[T]) Put(ctx context.Context, key string, value T) {
	c.mu.Lock()
	c.store[key] = &entry[T]{value: value, fetchedAt: c.clock()}
	c.mu.Unlock()
	c.logger.DebugContext(ctx, "snapshot cache updated", log.String("key", key))
}

// Invalidate 主动剔除快照（例如提交成功后强制下次重新拉取）。
func (c *Cache[T]) Invalidate(ctx context.Context, service, key, reason string) {
	service = sessioncache.NormalizeService(service)
	c.mu.Lock()
	if _, ok := c.store[key]; ok {
		delete(c.store, key)
		c.metrics.IncCacheEvicted(service, reason)
		c.logger.DebugContext(ctx, "snapshot cache evicted",
			log.String("service", service),
			log.String("key", key),
			log.String("reason", reason))
	}
	c.mu.Unlock()
}

// InvalidatePrefix 剔除所有以 prefix 开头的快照（例如回合状态变更后清掉整场对阵）。
func (c *Cache[T]) InvalidatePrefix(ctx context.Context, service, prefix, reason string) int {
	service = sessioncache.NormalizeService(service)
	removed := 0
	c.mu.Lock()
	for key := range c.store {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.store, key)
			removed++
			c.metrics.IncCacheEvicted(service, reason)
		}
	}
	c.mu.Unlock()
	return removed
}

// BoutUserKey 构造按 (对阵, 用户) 维度的缓存 key。
// 记分卡包含调用者本人的打分，不能跨用户共享。
func BoutUserKey(boutID, userID string) string {
	return "bout:" + boutID + ":user:" + userID
}

// BoutPrefix 某场对阵全部缓存条目的 key 前缀。
func BoutPrefix(boutID string) string {
	return "bout:" + boutID + ":"
}

// EventUserKey 构造按 (赛事, 用户) 维度的缓存 key。
func EventUserKey(eventID, userID string) string {
	return "event:" + eventID + ":user:" + userID
}

// EventPrefix 某场赛事全部缓存条目的 key 前缀。
func EventPrefix(eventID string) string {
	return "event:" + eventID + ":"
}
