package app

import (
	"sync"
	"time"

	"DomainNRD/domain"
	"DomainNRD/metrics"
)

// Snapshot 是某一时刻的计数快照。
type Snapshot struct {
	Total     int
	Processed int
	Newly     int
	Old       int
	CacheHits int
	Errors    int
	Start     time.Time
	Elapsed   time.Duration
}

// Counters 保存整次运行的统计，所有修改都在同一把锁下完成。
type Counters struct {
	mu        sync.Mutex
	snap      Snapshot
	newlyList []string
	now       func() time.Time
}

func NewCounters(total int, start time.Time) *Counters {
	return &Counters{snap: Snapshot{Total: total, Start: start}, now: time.Now}
}

// Record 按一个域名的结果更新计数，每个域名只应调用一次。
func (c *Counters) Record(res domain.Result) Snapshot {
	c.mu.Lock()
	c.snap.Processed++
	if res.CacheHit {
		c.snap.CacheHits++
	}
	switch {
	case res.Kind == domain.WithinInterval:
		c.snap.Newly++
		c.newlyList = append(c.newlyList, res.Domain)
	case res.Kind == domain.OutsideInterval:
		c.snap.Old++
	case res.Kind.IsError():
		c.snap.Errors++
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	metrics.DomainsProcessed.WithLabelValues(res.Kind.String()).Inc()
	if res.CacheHit {
		metrics.CacheHits.Inc()
	}
	return snap
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Counters) snapshotLocked() Snapshot {
	s := c.snap
	s.Elapsed = c.now().Sub(s.Start)
	return s
}

// NewlyRegistered 返回新注册域名列表（按完成顺序）。
func (c *Counters) NewlyRegistered() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.newlyList...)
}
