package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// TimestampPrecision is the resolution persisted by postgres timestamptz
const TimestampPrecision = time.Microsecond

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		// Use the global logger here, assuming logger might not be configured when this is called.
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// Truncate drops precision the database cannot store and strips the monotonic reading
// so values compare equal after a round trip.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(TimestampPrecision)
}

// NextTimestamp returns a mutation time strictly later than prev.
// Two edits inside the same microsecond still move updatedAt forward.
func NextTimestamp(prev, now time.Time) time.Time {
	now = Truncate(now)
	if !now.After(prev) {
		return Truncate(prev).Add(TimestampPrecision)
	}
	return now
}
