package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// Same point is zero distance.
	assert.Equal(t, 0.0, HaversineKm(17.3850, 78.4867, 17.3850, 78.4867))

	// Hyderabad to Secunderabad is roughly 6 km.
	d := HaversineKm(17.3850, 78.4867, 17.4399, 78.4983)
	assert.InDelta(t, 6.2, d, 0.5)

	// Hyderabad to Bangalore is roughly 500 km.
	d = HaversineKm(17.3850, 78.4867, 12.9716, 77.5946)
	assert.InDelta(t, 500, d, 10)

	// Distance is symmetric.
	assert.InDelta(t,
		HaversineKm(17.3850, 78.4867, 12.9716, 77.5946),
		HaversineKm(12.9716, 77.5946, 17.3850, 78.4867),
		1e-9)
}
