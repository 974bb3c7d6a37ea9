package opportunity

import (
	"fmt"

	"kwradar/pkg/keyword"
)

// Thresholds for the derived population counts.
const (
	quickWinMaxDifficulty = 25.0
	quickWinMinVolume     = 200
	highVolumeMin         = 5000
	highCPCMin            = 2.0
)

// Summary holds aggregate statistics over a scored keyword population.
type Summary struct {
	Total      int `json:"total"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
	QuickWins  int `json:"quick_wins"`
	HighVolume int `json:"high_volume"`
	HighCPC    int `json:"high_cpc"`
}

// IsQuickWin reports whether a keyword is low effort and worth ranking for.
func IsQuickWin(kw keyword.Scored) bool {
	return kw.Difficulty <= quickWinMaxDifficulty && kw.Volume >= quickWinMinVolume
}

// Summarize counts the population. Safe on an empty slice.
func Summarize(scored []keyword.Scored) Summary {
	sum := Summary{Total: len(scored)}
	for _, kw := range scored {
		switch kw.Category {
		case keyword.CategoryHigh:
			sum.High++
		case keyword.CategoryMedium:
			sum.Medium++
		default:
			sum.Low++
		}
		if IsQuickWin(kw) {
			sum.QuickWins++
		}
		if kw.Volume >= highVolumeMin {
			sum.HighVolume++
		}
		if kw.CPC >= highCPCMin {
			sum.HighCPC++
		}
	}
	return sum
}

// Insights renders the summary as ordered human-readable insight and
// next-step sentences. Each sentence is emitted only when its count is
// positive; an empty population yields an empty list.
func Insights(scored []keyword.Scored) []string {
	if len(scored) == 0 {
		return nil
	}

	sum := Summarize(scored)
	var out []string

	if sum.High > 0 {
		out = append(out, fmt.Sprintf(
			"%d of %d keywords are high-opportunity: prioritize these for your next content sprint.",
			sum.High, sum.Total))
	}
	if sum.Medium > 0 {
		out = append(out, fmt.Sprintf(
			"%d keywords are medium-opportunity: good candidates once the high-opportunity backlog is covered.",
			sum.Medium))
	}
	if sum.QuickWins > 0 {
		out = append(out, fmt.Sprintf(
			"%d quick wins found (difficulty <= %.0f, volume >= %d): low-effort pages that can rank fast.",
			sum.QuickWins, quickWinMaxDifficulty, quickWinMinVolume))
	}
	if sum.HighVolume > 0 {
		out = append(out, fmt.Sprintf(
			"%d keywords exceed %d monthly searches: consider pillar pages to capture this demand.",
			sum.HighVolume, highVolumeMin))
	}
	if sum.HighCPC > 0 {
		out = append(out, fmt.Sprintf(
			"%d keywords have CPC >= $%.2f: commercial value is high, so ranking organically saves ad spend.",
			sum.HighCPC, highCPCMin))
	}
	if sum.Low == sum.Total {
		out = append(out, "every keyword scored low-opportunity: revisit the source export or loosen the filters.")
	}

	return out
}
