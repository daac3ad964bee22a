package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
)

// WriteOperatorCSV writes one row per operator under a header row
func WriteOperatorCSV(w io.Writer, reports []types.OperatorReport) error {
	rows := make([][]string, 0, len(reports)+1)
	rows = append(rows, operatorHeader())
	for _, r := range reports {
		rows = append(rows, operatorRow(r))
	}
	return writeCSV(w, rows)
}

// WriteQueueCSV writes one row per queue under a header row
func WriteQueueCSV(w io.Writer, reports []types.QueueReport) error {
	rows := make([][]string, 0, len(reports)+1)
	rows = append(rows, queueHeader())
	for _, r := range reports {
		rows = append(rows, queueRow(r))
	}
	return writeCSV(w, rows)
}

// WriteMissedCSV writes one row per missed call; times are rendered in loc
func WriteMissedCSV(w io.Writer, calls []types.MissedCall, loc *time.Location) error {
	rows := make([][]string, 0, len(calls)+1)
	rows = append(rows, missedHeader())
	for _, m := range calls {
		rows = append(rows, missedRow(m, loc))
	}
	return writeCSV(w, rows)
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// ReadOperatorCSV parses a file produced by WriteOperatorCSV. Only the
// columns present in the export are filled in.
func ReadOperatorCSV(r io.Reader) ([]types.OperatorReport, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(operatorHeader())

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty operator csv: %w", types.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, name := range operatorHeader() {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected column %q at %d: %w", header[i], i, types.ErrInvalidArgument)
		}
	}

	reports := make([]types.OperatorReport, 0)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}

		report, err := parseOperatorRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func parseOperatorRow(row []string) (types.OperatorReport, error) {
	var (
		report types.OperatorReport
		err    error
	)
	report.Name = row[0]
	report.Group = row[1]

	counts := []*int{&report.TotalCalls, &report.AnsweredCount, &report.MissedCount}
	for i, dst := range counts {
		if *dst, err = strconv.Atoi(row[2+i]); err != nil {
			return types.OperatorReport{}, fmt.Errorf("malformed count %q: %w", row[2+i], types.ErrInvalidArgument)
		}
	}
	if report.AvgTalkTime, err = ParseDuration(row[5]); err != nil {
		return types.OperatorReport{}, err
	}
	if report.Efficiency, err = ParsePercent(row[6]); err != nil {
		return types.OperatorReport{}, err
	}
	report.AnswerRate = report.Efficiency
	return report, nil
}
