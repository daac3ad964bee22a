package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// listOptions narrows and orders a report list
type listOptions struct {
	group  string
	queue  string
	search string
	sort   string
	desc   bool
}

var operatorSortKeys = map[string]func(a, b types.OperatorReport) bool{
	"name":        func(a, b types.OperatorReport) bool { return a.Name < b.Name },
	"group":       func(a, b types.OperatorReport) bool { return a.Group < b.Group },
	"totalCalls":  func(a, b types.OperatorReport) bool { return a.TotalCalls < b.TotalCalls },
	"answered":    func(a, b types.OperatorReport) bool { return a.AnsweredCount < b.AnsweredCount },
	"missed":      func(a, b types.OperatorReport) bool { return a.MissedCount < b.MissedCount },
	"avgTalkTime": func(a, b types.OperatorReport) bool { return a.AvgTalkTime < b.AvgTalkTime },
	"efficiency":  func(a, b types.OperatorReport) bool { return a.Efficiency < b.Efficiency },
}

var queueSortKeys = map[string]func(a, b types.QueueReport) bool{
	"name":         func(a, b types.QueueReport) bool { return a.Name < b.Name },
	"totalCalls":   func(a, b types.QueueReport) bool { return a.TotalCalls < b.TotalCalls },
	"avgWaitTime":  func(a, b types.QueueReport) bool { return a.AvgWaitTime < b.AvgWaitTime },
	"avgTalkTime":  func(a, b types.QueueReport) bool { return a.AvgTalkTime < b.AvgTalkTime },
	"serviceLevel": func(a, b types.QueueReport) bool { return a.ServiceLevel < b.ServiceLevel },
	"answerRate":   func(a, b types.QueueReport) bool { return a.AnswerRate < b.AnswerRate },
}

// parseListOptions reads group, queue, q, sort and order
func parseListOptions[T any](r *http.Request, keys map[string]func(a, b T) bool) (listOptions, error) {
	query := r.URL.Query()
	opts := listOptions{
		group:  query.Get("group"),
		queue:  query.Get("queue"),
		search: strings.TrimSpace(query.Get("q")),
		sort:   query.Get("sort"),
	}

	if opts.sort != "" {
		if _, ok := keys[opts.sort]; !ok {
			return listOptions{}, fmt.Errorf("unknown sort key %q: %w", opts.sort, types.ErrInvalidArgument)
		}
	}

	switch order := strings.ToLower(query.Get("order")); order {
	case "", "asc":
	case "desc":
		opts.desc = true
	default:
		return listOptions{}, fmt.Errorf("unknown order %q: %w", order, types.ErrInvalidArgument)
	}
	return opts, nil
}

func filterOperators(list []types.OperatorReport, opts listOptions) []types.OperatorReport {
	out := make([]types.OperatorReport, 0, len(list))
	for _, op := range list {
		if opts.group != "" && op.GroupID != opts.group {
			continue
		}
		if opts.search != "" && !containsFold(op.Name, opts.search) {
			continue
		}
		out = append(out, op)
	}
	sortBy(out, operatorSortKeys[opts.sort], opts.desc)
	return out
}

func filterQueues(list []types.QueueReport, opts listOptions) []types.QueueReport {
	out := make([]types.QueueReport, 0, len(list))
	for _, q := range list {
		if opts.search != "" && !containsFold(q.Name, opts.search) {
			continue
		}
		out = append(out, q)
	}
	sortBy(out, queueSortKeys[opts.sort], opts.desc)
	return out
}

func filterMissed(list []types.MissedCall, opts listOptions) []types.MissedCall {
	out := make([]types.MissedCall, 0, len(list))
	for _, m := range list {
		if opts.queue != "" && m.QueueID != opts.queue {
			continue
		}
		if opts.search != "" && !strings.Contains(m.CallerNumber, opts.search) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// sortBy orders list stably; a nil less keeps the aggregation order
func sortBy[T any](list []T, less func(a, b T) bool, desc bool) {
	if less == nil {
		return
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}
