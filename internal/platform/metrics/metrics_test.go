package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 20*time.Millisecond)
	c.AuditFailure()
	c.PINFailure()
	c.PINFailure()

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
	assert.Equal(t, float64(20), snap["avgDurationMs"])
	assert.Equal(t, uint64(1), snap["auditFailuresTotal"])
	assert.Equal(t, uint64(2), snap["pinFailuresTotal"])
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(200, time.Millisecond)
	c.AuditFailure()
	c.SSORejected()
}
