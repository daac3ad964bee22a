package types

import (
	"fmt"
	"strings"
	"time"
)

// PeriodKind names a reporting window
type PeriodKind string

const (
	PeriodToday     PeriodKind = "today"
	PeriodYesterday PeriodKind = "yesterday"
	PeriodWeek      PeriodKind = "week"  // rolling 7 days
	PeriodMonth     PeriodKind = "month" // rolling calendar month
)

// AllPeriods lists every supported period
var AllPeriods = []PeriodKind{PeriodToday, PeriodYesterday, PeriodWeek, PeriodMonth}

// ParsePeriod converts a selector string into a PeriodKind
func ParsePeriod(s string) (PeriodKind, error) {
	p := PeriodKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPeriods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q: %w", s, ErrInvalidArgument)
}

// Granularity names a chart bucket size
type Granularity string

const (
	GranularityHourly Granularity = "hourly"
	GranularityDaily  Granularity = "daily"
)

// ParseGranularity converts a selector string into a Granularity
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityHourly, GranularityDaily:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q: %w", s, ErrInvalidArgument)
}

// ParseTimestamp parses an RFC3339 reference time
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q: %w", s, ErrInvalidArgument)
	}
	return t, nil
}

// KPISummary contains scalar summary statistics for a record set
type KPISummary struct {
	TotalCalls    int `json:"totalCalls"`
	AnsweredCount int `json:"answeredCalls"`
	MissedCount   int `json:"missedCalls"`
	AvgWaitTime   int `json:"avgWaitTime"`  // seconds
	AvgTalkTime   int `json:"avgTalkTime"`  // seconds
	ServiceLevel  int `json:"serviceLevel"` // 0-100%
	AnswerRate    int `json:"answerRate"`   // 0-100%
}

// Bucket is one fixed time slot of a chart series
type Bucket struct {
	Label    string    `json:"label"` // "14:00" or "2026-10-14"
	Start    time.Time `json:"start"`
	Calls    int       `json:"calls"`
	Answered int       `json:"answered"`
	Missed   int       `json:"missed"`
}

// BucketSeries is an ordered, gap-free chart series
type BucketSeries struct {
	Granularity Granularity `json:"granularity"`
	Buckets     []Bucket    `json:"buckets"`
}

// TotalCalls sums the calls of every bucket
func (s BucketSeries) TotalCalls() int {
	total := 0
	for _, b := range s.Buckets {
		total += b.Calls
	}
	return total
}

// OperatorReport holds KPIs for one operator
type OperatorReport struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GroupID    string `json:"groupId,omitempty"`
	Group      string `json:"group"`
	KPISummary
	Efficiency int `json:"efficiency"` // 0-100%
}

// QueueReport holds KPIs for one queue
type QueueReport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	KPISummary
}

// MissedCall is a missed record joined with its queue name
type MissedCall struct {
	CallRecord
	QueueName string `json:"queueName"`
}

// PresenceSummary counts operators per presence status
type PresenceSummary struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Busy    int `json:"busy"`
	Offline int `json:"offline"`
}

// Dashboard is the composed payload for the overview screen
type Dashboard struct {
	Period      PeriodKind       `json:"period"`
	GeneratedAt time.Time        `json:"generatedAt"`
	KPIs        KPISummary       `json:"kpis"`
	Hourly      BucketSeries     `json:"hourly"`
	Daily       BucketSeries     `json:"daily"`
	Presence    *PresenceSummary `json:"presence,omitempty"`
}
