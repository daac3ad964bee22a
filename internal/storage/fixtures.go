package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/google/uuid"
)

// FixtureDays is how many days of history Seed generates
const FixtureDays = 30

// fixtureNamespace keeps fixture call ids stable across runs
var fixtureNamespace = uuid.MustParse("6f1c2a4e-8d0b-4f55-9a3e-1b7c2d9e4f60")

// FixtureDirectory returns the demo queues, operators and groups
func FixtureDirectory() types.Directory {
	return types.Directory{
		Groups: []types.Group{
			{ID: "1", Name: "Support group"},
			{ID: "2", Name: "Sales group"},
			{ID: "3", Name: "VIP group"},
		},
		Queues: []types.Queue{
			{ID: "1", Name: "Main queue"},
			{ID: "2", Name: "Tech support"},
			{ID: "3", Name: "Sales"},
			{ID: "4", Name: "VIP clients"},
		},
		Operators: []types.Operator{
			{ID: "1", Name: "Petr Ivanov", GroupID: "1", Status: types.OperatorOnline},
			{ID: "2", Name: "Maria Sidorova", GroupID: "1", Status: types.OperatorBusy},
			{ID: "3", Name: "Alexey Smirnov", GroupID: "2", Status: types.OperatorOnline},
			{ID: "4", Name: "Elena Kozlova", GroupID: "2", Status: types.OperatorOffline},
			{ID: "5", Name: "Dmitry Popov", GroupID: "3", Status: types.OperatorOnline},
		},
	}
}

// FixtureCalls generates a deterministic call history of the given length
// ending on now's calendar day. Calls fall between 08:00 and 18:00 local time
// and roughly one in seven is missed. A calendar date always yields the same
// calls with the same ids, so reseeding on a later day overwrites instead of
// duplicating.
func FixtureCalls(now time.Time, days int) []types.CallRecord {
	dir := FixtureDirectory()
	results := []types.CallResult{types.ResultResolved, types.ResultEscalated, types.ResultCallbackRequested}
	y, m, d := now.Date()

	var records []types.CallRecord
	for i := 0; i < days; i++ {
		day := time.Date(y, m, d-i, 0, 0, 0, 0, now.Location())
		date := day.Format(types.DateLayout)
		n := dayNumber(day)

		perDay := 40 + (n*7)%30
		for j := 0; j < perDay; j++ {
			start := time.Date(y, m, d-i, 8+(j*7)%10, (j*13)%60, (j*29)%60, 0, now.Location())
			wait := (j*37 + n*11) % 120
			record := types.CallRecord{
				ID:           uuid.NewSHA1(fixtureNamespace, []byte(fmt.Sprintf("call-%s-%d", date, j))).String(),
				CallerNumber: fmt.Sprintf("+7%010d", 9000000000+int64((n%100000)*1000+j)),
				StartTime:    start,
				WaitTime:     wait,
				QueueID:      dir.Queues[(n+j)%len(dir.Queues)].ID,
				Status:       types.CallStatusAnswered,
			}

			if (n+j)%7 == 0 {
				record.Status = types.CallStatusMissed
				record.EndTime = start.Add(time.Duration(wait) * time.Second)
			} else {
				record.TalkTime = 60 + (j*53+n*17)%1740
				record.AgentID = dir.Operators[(j*3+n)%len(dir.Operators)].ID
				record.Result = results[j%len(results)]
				record.EndTime = start.Add(time.Duration(wait+record.TalkTime) * time.Second)
			}
			records = append(records, record)
		}
	}
	return records
}

// dayNumber counts days since the Unix epoch for day's calendar date
func dayNumber(day time.Time) int {
	y, m, d := day.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Seed writes the fixture directory and call history into store
func Seed(ctx context.Context, store Store, now time.Time) error {
	if err := store.SaveDirectory(ctx, FixtureDirectory()); err != nil {
		return fmt.Errorf("failed to seed directory: %w", err)
	}
	for _, r := range FixtureCalls(now, FixtureDays) {
		if err := store.SaveCallRecord(ctx, r); err != nil {
			return fmt.Errorf("failed to seed call records: %w", err)
		}
	}
	return nil
}
