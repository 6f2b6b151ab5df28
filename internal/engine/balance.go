package engine

import (
	"math"
	"sort"

	"github.com/majowuji/wuji/internal/catalog"
)

// ReportLine is one muscle group in the weekly balance report.
type ReportLine struct {
	Muscle catalog.Muscle `json:"muscle"`
	Volume float64        `json:"volume"`
	Bar    string         `json:"bar"`
}

// BalanceScore converts the spread of per-group weekly volume into a 0–100
// score: 100 is perfectly even load, 0 is a single-group week. FullBody is
// excluded since it inflates every session equally.
func BalanceScore(snap Snapshot) float64 {
	var volumes []float64
	for _, m := range catalog.AllMuscles() {
		if m == catalog.MuscleFullBody {
			continue
		}
		volumes = append(volumes, snap.Loads[m])
	}

	var total float64
	for _, v := range volumes {
		total += v
	}
	if total == 0 {
		return 0
	}

	mean := total / float64(len(volumes))
	var variance float64
	for _, v := range volumes {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(volumes))

	cv := math.Sqrt(variance) / mean
	score := (1 - math.Min(cv, 1)) * 100
	return math.Max(score, 0)
}

// WeeklyReport renders per-group volumes with ASCII fill bars, most loaded
// first. Groups with zero volume keep their line so the gap is visible.
func WeeklyReport(snap Snapshot) []ReportLine {
	var maxVol float64
	for _, m := range catalog.AllMuscles() {
		if m == catalog.MuscleFullBody {
			continue
		}
		if snap.Loads[m] > maxVol {
			maxVol = snap.Loads[m]
		}
	}
	if maxVol == 0 {
		maxVol = 1
	}

	var lines []ReportLine
	for _, m := range catalog.AllMuscles() {
		if m == catalog.MuscleFullBody {
			continue
		}
		vol := snap.Loads[m]
		lines = append(lines, ReportLine{Muscle: m, Volume: vol, Bar: fillBar(vol / maxVol)})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Volume > lines[j].Volume })
	return lines
}

func fillBar(ratio float64) string {
	switch {
	case ratio >= 0.75:
		return "[++++]"
	case ratio >= 0.50:
		return "[+++.]"
	case ratio >= 0.25:
		return "[++..]"
	case ratio > 0:
		return "[+...]"
	default:
		return "[....]"
	}
}
