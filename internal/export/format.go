// Package export renders report rows as CSV and XLSX files.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// Report kinds used in file names
const (
	KindOperator = "operator"
	KindQueue    = "queue"
	KindMissed   = "missed"
)

// DateTimeLayout is used for timestamps in exported rows
const DateTimeLayout = "2006-01-02 15:04:05"

// FormatDuration renders seconds as M:SS
func FormatDuration(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// ParseDuration parses an M:SS value back into seconds
func ParseDuration(s string) (int, error) {
	mins, sec, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("malformed duration %q: %w", s, types.ErrInvalidArgument)
	}
	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("malformed duration %q: %w", s, types.ErrInvalidArgument)
	}
	sc, err := strconv.Atoi(sec)
	if err != nil || len(sec) != 2 || sc < 0 || sc > 59 {
		return 0, fmt.Errorf("malformed duration %q: %w", s, types.ErrInvalidArgument)
	}
	return m*60 + sc, nil
}

// FormatPercent renders a percentage as "n%"
func FormatPercent(n int) string {
	return strconv.Itoa(n) + "%"
}

// ParsePercent parses an "n%" value
func ParsePercent(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return 0, fmt.Errorf("malformed percentage %q: %w", s, types.ErrInvalidArgument)
	}
	return n, nil
}

// Filename builds a download name such as operator_report_2026-10-14.csv
func Filename(kind string, date time.Time, ext string) string {
	return fmt.Sprintf("%s_report_%s.%s", kind, date.Format(types.DateLayout), strings.TrimPrefix(ext, "."))
}

func operatorHeader() []string {
	return []string{"Name", "Group", "Total Calls", "Answered", "Missed", "Avg Talk Time", "Efficiency"}
}

func operatorRow(r types.OperatorReport) []string {
	return []string{
		r.Name,
		r.Group,
		strconv.Itoa(r.TotalCalls),
		strconv.Itoa(r.AnsweredCount),
		strconv.Itoa(r.MissedCount),
		FormatDuration(r.AvgTalkTime),
		FormatPercent(r.Efficiency),
	}
}

func queueHeader() []string {
	return []string{"Queue", "Total Calls", "Answered", "Missed", "Avg Wait Time", "Avg Talk Time", "Service Level", "Answer Rate"}
}

func queueRow(r types.QueueReport) []string {
	return []string{
		r.Name,
		strconv.Itoa(r.TotalCalls),
		strconv.Itoa(r.AnsweredCount),
		strconv.Itoa(r.MissedCount),
		FormatDuration(r.AvgWaitTime),
		FormatDuration(r.AvgTalkTime),
		FormatPercent(r.ServiceLevel),
		FormatPercent(r.AnswerRate),
	}
}

func missedHeader() []string {
	return []string{"Caller Number", "Queue", "Date Time", "Wait Time"}
}

func missedRow(m types.MissedCall, loc *time.Location) []string {
	return []string{
		m.CallerNumber,
		m.QueueName,
		m.StartTime.In(loc).Format(DateTimeLayout),
		FormatDuration(m.WaitTime),
	}
}
