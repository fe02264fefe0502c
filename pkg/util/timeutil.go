package util

import "time"

// NowUTC exposes time.Now in UTC for consistent persistence timestamps.
func NowUTC() time.Time {
	return time.Now().UTC()
}
