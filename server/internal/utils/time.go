package utils

import "time"

// GetCurrentTimestampMS returns the current Unix timestamp in milliseconds.
func GetCurrentTimestampMS() int64 {
	return time.Now().UnixMilli()
}

// GetCurrentTimestampS returns the current Unix timestamp in seconds.
func GetCurrentTimestampS() int64 {
	return time.Now().Unix()
}

// TimestampMS converts t to Unix milliseconds as carried on the wire.
func TimestampMS(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}
