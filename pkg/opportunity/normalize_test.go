package opportunity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeVolumeBounds(t *testing.T) {
	require.Equal(t, 0.0, NormalizeVolume(0))
	require.Equal(t, 100.0, NormalizeVolume(100000))
	require.Equal(t, 100.0, NormalizeVolume(5000000))
	require.Equal(t, 0.0, NormalizeVolume(-10))
}

func TestNormalizeVolumeMonotonic(t *testing.T) {
	volumes := []int{0, 1, 10, 100, 1000, 10000, 100000}
	prev := -1.0
	for _, v := range volumes {
		score := NormalizeVolume(v)
		require.Greater(t, score, prev, "volume %d", v)
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 100.0)
		prev = score
	}
}

func TestNormalizeVolumeLogCompression(t *testing.T) {
	// Doubling volume must not double the score.
	low := NormalizeVolume(1000)
	high := NormalizeVolume(2000)
	require.Less(t, high, low*2)
}

func TestNormalizeCPC(t *testing.T) {
	tests := []struct {
		name string
		cpc  float64
		want float64
	}{
		{"zero", 0, 0},
		{"ceiling", 10, 100},
		{"above ceiling", 55.0, 100},
		{"negative fails closed", -1.5, 0},
		{"nan fails closed", math.NaN(), 0},
		{"inf fails closed", math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, NormalizeCPC(tt.cpc), 1e-9)
		})
	}
}

func TestNormalizeCPCMonotonic(t *testing.T) {
	prev := -1.0
	for _, cpc := range []float64{0, 0.1, 0.5, 1, 2, 5, 10} {
		score := NormalizeCPC(cpc)
		require.Greater(t, score, prev, "cpc %.1f", cpc)
		prev = score
	}
}

func TestNormalizeDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		difficulty float64
		want       float64
	}{
		{"zero is best", 0, 100},
		{"easy", 20, 80},
		{"hard", 95, 5},
		{"max", 100, 0},
		{"above max clamps", 130, 0},
		{"negative fails closed", -5, 0},
		{"nan fails closed", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, NormalizeDifficulty(tt.difficulty), 1e-9)
		})
	}
}

func TestNormalizeDifficultyInverse(t *testing.T) {
	// Lower difficulty must always score at least as high.
	prev := 101.0
	for _, d := range []float64{0, 10, 25, 50, 75, 100} {
		score := NormalizeDifficulty(d)
		require.Less(t, score, prev, "difficulty %.0f", d)
		prev = score
	}
}
