package payroll

import "time"

type transition struct {
	from []string
	to   string
}

var transitions = map[string]transition{
	ActionSubmit:  {from: []string{StatusDraft}, to: StatusPendingApproval},
	ActionApprove: {from: []string{StatusPendingApproval}, to: StatusApproved},
	ActionReject:  {from: []string{StatusPendingApproval, StatusApproved}, to: StatusDraft},
	ActionProcess: {from: []string{StatusApproved}, to: StatusProcessing},
}

// NextStatus returns the status action leads to from current.
func NextStatus(action, current string) (string, error) {
	t, ok := transitions[action]
	if !ok {
		return "", &StateError{Action: action, Current: current}
	}
	for _, from := range t.from {
		if from == current {
			return t.to, nil
		}
	}
	return "", &StateError{Action: action, Current: current}
}

func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// ShouldAutoComplete reports whether a cycle for year/month is past due at now.
func ShouldAutoComplete(status string, year, month int, now time.Time) bool {
	if IsTerminal(status) {
		return false
	}
	nowYear, nowMonth := now.Year(), int(now.Month())
	return year < nowYear || (year == nowYear && month < nowMonth)
}
