// Package aggregator turns call records into KPI summaries, chart series and
// per-operator/per-queue rollups. Every function is pure: inputs are never
// mutated, nothing is cached, and the wall clock is never read.
package aggregator

import (
	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// DefaultServiceLevelSecs is the usual answer-within threshold (80/20 style SLAs)
const DefaultServiceLevelSecs = 20

// Aggregator computes KPIs against a service-level threshold. The zero value
// uses a 0s threshold; construct with New.
type Aggregator struct {
	serviceLevelSecs int
}

// New creates an Aggregator. Negative thresholds are clamped to 0.
func New(serviceLevelSecs int) Aggregator {
	if serviceLevelSecs < 0 {
		serviceLevelSecs = 0
	}
	return Aggregator{serviceLevelSecs: serviceLevelSecs}
}

// ServiceLevelSecs returns the configured threshold in seconds
func (a Aggregator) ServiceLevelSecs() int {
	return a.serviceLevelSecs
}

// ComputeKPIs reduces a record set to its summary statistics.
// Empty input yields an all-zero summary.
func (a Aggregator) ComputeKPIs(records []types.CallRecord) types.KPISummary {
	var (
		answered  int
		inSL      int
		waitTotal int
		talkTotal int
	)

	for _, r := range records {
		waitTotal += r.WaitTime
		if r.WaitTime <= a.serviceLevelSecs {
			inSL++
		}
		if r.Answered() {
			answered++
			talkTotal += r.TalkTime
		}
	}

	total := len(records)
	return types.KPISummary{
		TotalCalls:    total,
		AnsweredCount: answered,
		MissedCount:   total - answered,
		AvgWaitTime:   roundDiv(waitTotal, total),
		AvgTalkTime:   roundDiv(talkTotal, answered),
		ServiceLevel:  percent(inSL, total),
		AnswerRate:    percent(answered, total),
	}
}

// roundDiv divides two non-negative integers rounding half away from zero.
// A zero denominator yields 0.
func roundDiv(num, den int) int {
	if den == 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}

func percent(part, total int) int {
	return roundDiv(100*part, total)
}
