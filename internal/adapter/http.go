package adapter

import (
	"net/http"
	"strconv"
	"time"
)

// parseRetryAfter parses a Retry-After header given either as delay-seconds
// ("120") or as an HTTP date. Returns zero if absent, unparseable or in the past.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	at, err := http.ParseTime(value)
	if err != nil {
		return 0
	}
	if d := time.Until(at); d > 0 {
		return d
	}
	return 0
}
