package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", "t1", Filter{})
	assert.Equal(t, "SELECT COUNT(1) FROM audit_logs WHERE tenant_id::text = $1", query)
	assert.Equal(t, []any{"t1"}, args)

	query, args = buildBaseQuery("SELECT id", "t1", Filter{Action: ActionCycleApprove, EntityType: "payroll_cycle", ActorUser: "u1"})
	assert.Contains(t, query, "AND action = $2")
	assert.Contains(t, query, "AND entity_type = $3")
	assert.Contains(t, query, "AND actor_id::text = $4")
	assert.Equal(t, []any{"t1", ActionCycleApprove, "payroll_cycle", "u1"}, args)
}
