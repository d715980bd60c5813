package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	auditFailures   uint64
	ssoRejected     uint64
	pinFailures     uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) AuditFailure() {
	if c != nil {
		atomic.AddUint64(&c.auditFailures, 1)
	}
}

func (c *Collector) SSORejected() {
	if c != nil {
		atomic.AddUint64(&c.ssoRejected, 1)
	}
}

func (c *Collector) PINFailure() {
	if c != nil {
		atomic.AddUint64(&c.pinFailures, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":      total,
		"errorsTotal":        atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal":   atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":      avg,
		"totalDurationMs":    totalMs,
		"auditFailuresTotal": atomic.LoadUint64(&c.auditFailures),
		"ssoRejectedTotal":   atomic.LoadUint64(&c.ssoRejected),
		"pinFailuresTotal":   atomic.LoadUint64(&c.pinFailures),
	}
}
