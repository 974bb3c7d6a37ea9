package opportunity

import "math"

// Reference ceilings for the logarithmic transfer functions. A keyword at or
// above the ceiling maps to 100.
const (
	volumeCeiling = 100000
	cpcCeiling    = 10.0
)

// NormalizeVolume maps a raw monthly search volume onto a 0-100 scale using
// log compression, so a few viral keywords cannot dominate the score.
func NormalizeVolume(volume int) float64 {
	if volume < 0 {
		return 0
	}
	score := math.Log10(float64(volume)+1) / math.Log10(volumeCeiling) * 100
	return clamp(score)
}

// NormalizeCPC maps cost-per-click onto a 0-100 scale with a $10 ceiling.
func NormalizeCPC(cpc float64) float64 {
	if cpc < 0 || math.IsNaN(cpc) || math.IsInf(cpc, 0) {
		return 0
	}
	score := math.Log10(cpc+1) / math.Log10(cpcCeiling+1) * 100
	return clamp(score)
}

// NormalizeDifficulty inverts difficulty linearly: lower difficulty yields a
// higher opportunity contribution.
func NormalizeDifficulty(difficulty float64) float64 {
	if difficulty < 0 || math.IsNaN(difficulty) || math.IsInf(difficulty, 0) {
		return 0
	}
	return clamp(100 - difficulty)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// round2 rounds to two decimal places, the precision carried by every
// published score.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
