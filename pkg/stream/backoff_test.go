package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesUpToCeiling(t *testing.T) {
	bo := newBackoff(1*time.Second, 30*time.Second)

	var delays []time.Duration
	for i := 0; i < 8; i++ {
		delays = append(delays, bo.Next())
	}

	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}, delays)

	for i := 1; i < len(delays); i++ {
		assert.GreaterOrEqual(t, delays[i], delays[i-1], "delays must be monotonically non-decreasing")
	}
}

func TestBackoffResetRestoresFloor(t *testing.T) {
	bo := newBackoff(1*time.Second, 30*time.Second)

	bo.Next()
	bo.Next()
	bo.Next()
	bo.Reset()

	assert.Equal(t, 1*time.Second, bo.Next())
}

func TestBackoffDefaults(t *testing.T) {
	bo := newBackoff(0, 0)

	assert.Equal(t, DefaultBackoffFloor, bo.floor)
	assert.Equal(t, DefaultBackoffCeiling, bo.ceiling)
}
