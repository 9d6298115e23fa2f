package icron

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// TriggerInfo describes where a cron expression sits relative to a
// reference time.
type TriggerInfo struct {
	Next       time.Time
	Last       time.Time
	Expression string

	TimeSinceLast time.Duration
	TimeUntilNext time.Duration
}

const maxLookback = 366 * 24 * time.Hour

// GetTriggerInfo computes the previous and next firing times of a standard
// five-field cron expression around refTime. The cron library only exposes
// Next, so the previous firing is recovered by doubling a lookback window
// until it contains a firing, then stepping Next forward to the last firing
// at or before refTime. Standard expressions have minute granularity, so the
// forward walk stays within a handful of steps.
func GetTriggerInfo(cronExpr string, refTime time.Time) (*TriggerInfo, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	nextTime := schedule.Next(refTime)

	var prevTime time.Time
	for lookback := time.Minute; lookback <= maxLookback; lookback *= 2 {
		candidate := schedule.Next(refTime.Add(-lookback))
		if candidate.After(refTime) {
			continue
		}
		for !candidate.After(refTime) {
			prevTime = candidate
			candidate = schedule.Next(candidate)
		}
		break
	}

	info := &TriggerInfo{
		Expression: cronExpr,
		Next:       nextTime,
		Last:       prevTime,
	}

	if !prevTime.IsZero() {
		info.TimeSinceLast = refTime.Sub(prevTime)
	}

	info.TimeUntilNext = nextTime.Sub(refTime)

	return info, nil
}
