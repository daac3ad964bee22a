package aggregator

import (
	"sort"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// MissedCalls returns missed records joined with their queue name, newest first
func MissedCalls(records []types.CallRecord, queues []types.Queue) []types.MissedCall {
	names := make(map[string]string, len(queues))
	for _, q := range queues {
		names[q.ID] = q.Name
	}

	missed := make([]types.MissedCall, 0)
	for _, r := range records {
		if r.Answered() {
			continue
		}
		name, ok := names[r.QueueID]
		if !ok {
			name = types.UnknownQueueLabel
		}
		missed = append(missed, types.MissedCall{CallRecord: r, QueueName: name})
	}

	sort.SliceStable(missed, func(i, j int) bool {
		a, b := missed[i].StartTime, missed[j].StartTime
		if !a.Equal(b) {
			return a.After(b)
		}
		return missed[i].ID < missed[j].ID
	})
	return missed
}

// SummarizePresence counts operators by presence status. Unknown statuses
// count as offline.
func SummarizePresence(operators []types.Operator) types.PresenceSummary {
	summary := types.PresenceSummary{Total: len(operators)}
	for _, op := range operators {
		switch op.Status {
		case types.OperatorOnline:
			summary.Online++
		case types.OperatorBusy:
			summary.Busy++
		default:
			summary.Offline++
		}
	}
	return summary
}
