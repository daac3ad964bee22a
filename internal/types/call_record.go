package types

import (
	"fmt"
	"time"
)

// CallStatus is the terminal outcome of an inbound call
type CallStatus string

const (
	CallStatusAnswered CallStatus = "answered"
	CallStatusMissed   CallStatus = "missed"
)

// CallResult is the optional disposition of an answered call
type CallResult string

const (
	ResultResolved          CallResult = "resolved"
	ResultEscalated         CallResult = "escalated"
	ResultCallbackRequested CallResult = "callback_requested"
)

// CallRecord represents one attempted inbound contact. Records are read-only
// inputs to the aggregator and never change after creation.
type CallRecord struct {
	ID           string     `json:"id"`
	CallerNumber string     `json:"callerNumber"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      time.Time  `json:"endTime"`
	WaitTime     int        `json:"waitTime"` // seconds
	TalkTime     int        `json:"talkTime"` // seconds, 0 for missed calls
	QueueID      string     `json:"queueId"`
	AgentID      string     `json:"agentId,omitempty"` // set only for answered calls
	Status       CallStatus `json:"status"`
	Result       CallResult `json:"result,omitempty"`
}

// Answered reports whether the call was picked up by an operator
func (r CallRecord) Answered() bool {
	return r.Status == CallStatusAnswered
}

// Validate checks the record invariants
func (r CallRecord) Validate() error {
	switch r.Status {
	case CallStatusAnswered, CallStatusMissed:
	default:
		return fmt.Errorf("call %s: unknown status %q: %w", r.ID, r.Status, ErrInvalidArgument)
	}
	if r.QueueID == "" {
		return fmt.Errorf("call %s: queue id is required: %w", r.ID, ErrInvalidArgument)
	}
	if r.WaitTime < 0 || r.TalkTime < 0 {
		return fmt.Errorf("call %s: negative duration: %w", r.ID, ErrInvalidArgument)
	}
	if r.StartTime.IsZero() {
		return fmt.Errorf("call %s: start time is required: %w", r.ID, ErrInvalidArgument)
	}
	if !r.EndTime.IsZero() && r.EndTime.Before(r.StartTime) {
		return fmt.Errorf("call %s: end time before start time: %w", r.ID, ErrInvalidArgument)
	}
	if r.Status == CallStatusMissed && (r.TalkTime != 0 || r.AgentID != "") {
		return fmt.Errorf("call %s: missed call with talk time or agent: %w", r.ID, ErrInvalidArgument)
	}
	return nil
}

// DateKey returns the YYYY-MM-DD partition key of the record in loc
func (r CallRecord) DateKey(loc *time.Location) string {
	return r.StartTime.In(loc).Format(DateLayout)
}

// DateLayout is the calendar date format used for keys and daily bucket labels
const DateLayout = "2006-01-02"
