package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		action  string
		current string
		want    string
	}{
		{ActionSubmit, StatusDraft, StatusPendingApproval},
		{ActionApprove, StatusPendingApproval, StatusApproved},
		{ActionReject, StatusPendingApproval, StatusDraft},
		{ActionReject, StatusApproved, StatusDraft},
		{ActionProcess, StatusApproved, StatusProcessing},
	}
	for _, tc := range tests {
		t.Run(tc.action+" from "+tc.current, func(t *testing.T) {
			got, err := NextStatus(tc.action, tc.current)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextStatusRejectsOtherSources(t *testing.T) {
	all := []string{StatusDraft, StatusPendingApproval, StatusApproved, StatusProcessing, StatusCompleted, StatusFailed}
	allowed := map[string]map[string]bool{
		ActionSubmit:  {StatusDraft: true},
		ActionApprove: {StatusPendingApproval: true},
		ActionReject:  {StatusPendingApproval: true, StatusApproved: true},
		ActionProcess: {StatusApproved: true},
	}
	for action, ok := range allowed {
		for _, status := range all {
			if ok[status] {
				continue
			}
			_, err := NextStatus(action, status)
			var stateErr *StateError
			require.True(t, errors.As(err, &stateErr), "%s from %s", action, status)
			assert.Equal(t, status, stateErr.Current)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Contains(t, err.Error(), status)
		}
	}

	_, err := NextStatus("explode", StatusDraft)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestShouldAutoComplete(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	assert.True(t, ShouldAutoComplete(StatusDraft, 2025, 5, now))
	assert.True(t, ShouldAutoComplete(StatusApproved, 2024, 12, now))
	assert.False(t, ShouldAutoComplete(StatusDraft, 2025, 6, now), "current month stays open")
	assert.False(t, ShouldAutoComplete(StatusDraft, 2025, 7, now))
	assert.False(t, ShouldAutoComplete(StatusFailed, 2024, 1, now))
	assert.False(t, ShouldAutoComplete(StatusCompleted, 2024, 1, now))
}
