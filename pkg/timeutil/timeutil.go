package timeutil

import "time"

// durationPtr is a helper function to create a pointer to a time.Duration
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}

// Sleeper abstracts time.Sleep so callers can inject a fake in tests
// instead of waiting out real rate-limit delays.
type Sleeper interface {
	Sleep(d time.Duration)
}

// RealSleeper sleeps for the actual duration via time.Sleep.
type RealSleeper struct{}

func NewRealSleeper() RealSleeper {
	return RealSleeper{}
}

func (RealSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}
