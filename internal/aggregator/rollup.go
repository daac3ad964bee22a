package aggregator

import (
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// RollupByOperator computes KPIs per operator. Every operator appears in the
// output, in input order, even with no matching records.
func (a Aggregator) RollupByOperator(records []types.CallRecord, operators []types.Operator, groups []types.Group) []types.OperatorReport {
	byAgent := make(map[string][]types.CallRecord)
	for _, r := range records {
		if r.AgentID != "" {
			byAgent[r.AgentID] = append(byAgent[r.AgentID], r)
		}
	}

	groupNames := make(map[string]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = g.Name
	}

	reports := make([]types.OperatorReport, 0, len(operators))
	for _, op := range operators {
		group, ok := groupNames[op.GroupID]
		if !ok || group == "" {
			group = types.UnassignedGroupLabel
		}

		kpis := a.ComputeKPIs(byAgent[op.ID])
		reports = append(reports, types.OperatorReport{
			ID:         op.ID,
			Name:       op.Name,
			GroupID:    op.GroupID,
			Group:      group,
			KPISummary: kpis,
			Efficiency: kpis.AnswerRate,
		})
	}
	return reports
}

// RollupByQueue computes KPIs per queue. Every queue appears in the output,
// in input order, even with no matching records.
func (a Aggregator) RollupByQueue(records []types.CallRecord, queues []types.Queue) []types.QueueReport {
	byQueue := make(map[string][]types.CallRecord)
	for _, r := range records {
		byQueue[r.QueueID] = append(byQueue[r.QueueID], r)
	}

	reports := make([]types.QueueReport, 0, len(queues))
	for _, q := range queues {
		reports = append(reports, types.QueueReport{
			ID:         q.ID,
			Name:       q.Name,
			KPISummary: a.ComputeKPIs(byQueue[q.ID]),
		})
	}
	return reports
}

// UnresolvedReferences lists queue and agent ids that the directory does not
// know. These are soft failures; callers usually just log them.
func UnresolvedReferences(records []types.CallRecord, dir types.Directory) []types.ReferenceError {
	queues := make(map[string]bool, len(dir.Queues))
	for _, q := range dir.Queues {
		queues[q.ID] = true
	}
	operators := make(map[string]bool, len(dir.Operators))
	for _, op := range dir.Operators {
		operators[op.ID] = true
	}

	var refs []types.ReferenceError
	for _, r := range records {
		if !queues[r.QueueID] {
			refs = append(refs, types.ReferenceError{Kind: types.RefQueue, ID: r.QueueID, RecordID: r.ID})
		}
		if r.AgentID != "" && !operators[r.AgentID] {
			refs = append(refs, types.ReferenceError{Kind: types.RefOperator, ID: r.AgentID, RecordID: r.ID})
		}
	}
	return refs
}
