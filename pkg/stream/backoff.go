package stream

import "time"

// Default reconnection delays. A connection that never opens retries
// indefinitely at the ceiling; availability wins over timeliness for a
// dashboard feed.
const (
	DefaultBackoffFloor   = 1 * time.Second
	DefaultBackoffCeiling = 30 * time.Second
)

// backoff produces the delay before each reconnection attempt. The
// delay starts at the floor, doubles after every failure and is capped
// at the ceiling. A successful open resets it to the floor.
type backoff struct {
	floor   time.Duration
	ceiling time.Duration
	current time.Duration
}

func newBackoff(floor, ceiling time.Duration) *backoff {
	if floor <= 0 {
		floor = DefaultBackoffFloor
	}
	if ceiling < floor {
		ceiling = DefaultBackoffCeiling
	}
	return &backoff{floor: floor, ceiling: ceiling, current: floor}
}

// Next returns the delay to wait before the next attempt and advances
// the schedule.
func (b *backoff) Next() time.Duration {
	delay := b.current
	b.current *= 2
	if b.current > b.ceiling {
		b.current = b.ceiling
	}
	return delay
}

// Reset restores the delay to the floor.
func (b *backoff) Reset() {
	b.current = b.floor
}
