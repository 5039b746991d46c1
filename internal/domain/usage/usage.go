// Package usage describes token budget reports.
package usage

import (
	"fmt"
	"time"
)

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period string. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("unknown usage period %q", s)
	}
}

// Budget is a snapshot of the token budget for one period.
// A zero limit means unlimited; Remaining is then -1.
type Budget struct {
	Limit     int64
	Used      int64
	Remaining int64
	ResetsAt  time.Time
}

// Exhausted reports whether a limited budget is spent.
func (b Budget) Exhausted() bool { return b.Limit > 0 && b.Remaining <= 0 }

// Report is the token usage report for a period, covering embedding and
// generation together.
type Report struct {
	Period      Period
	PeriodStart time.Time
	PeriodEnd   time.Time
	Budget      Budget
}
