package transfer

import (
	"time"
)

// Clock abstracts time for the visibility poll.
type Clock interface {
	Now() time.Time
	Sleep(time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// WaitUntil checks the predicate immediately and then after every interval
// until it returns true or the timeout has elapsed. It returns whether the
// predicate was satisfied and the time spent waiting.
func WaitUntil(predicate func() bool, interval, timeout time.Duration, clock Clock) (bool, time.Duration) {
	if clock == nil {
		clock = SystemClock
	}

	if interval <= 0 {
		interval = time.Second
	}

	start := clock.Now()
	for {
		if predicate() {
			return true, clock.Now().Sub(start)
		}

		elapsed := clock.Now().Sub(start)
		if elapsed >= timeout {
			return false, elapsed
		}

		clock.Sleep(interval)
	}
}
