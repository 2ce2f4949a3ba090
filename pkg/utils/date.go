package utils

import "time"

const humanReadableFormat = "02 January 2006, 15:04 MST"

// FormatTimestamp renders a millisecond timestamp as UTC wall time.
func FormatTimestamp(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(humanReadableFormat)
}
