package engine

import (
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/models"
)

// TotalVolume sums the tracked result value for every log entry of one
// exercise.
func TotalVolume(logs []models.Training, exKey string) int {
	ex, ok := catalog.Find(exKey)
	if !ok {
		return 0
	}
	var total int
	for _, entry := range logs {
		if entry.Exercise == exKey {
			total += entry.Value(ex)
		}
	}
	return total
}

// WeeklyFrequency estimates sessions per week across the whole log. Fewer
// than two distinct timestamps yields 0 (no span to average over), except
// that a single-day log returns its entry count.
func WeeklyFrequency(logs []models.Training) float64 {
	if len(logs) == 0 {
		return 0
	}
	first, last := logs[0].Date, logs[0].Date
	for _, entry := range logs[1:] {
		if entry.Date.Before(first) {
			first = entry.Date
		}
		if entry.Date.After(last) {
			last = entry.Date
		}
	}
	days := last.Sub(first).Hours() / 24
	if days == 0 {
		return float64(len(logs))
	}
	return float64(len(logs)) / days * 7
}

// TodayStats returns the number of sets and the summed result value logged
// today for one exercise.
func TodayStats(logs []models.Training, exKey string, today time.Time, loc *time.Location) (sets, total int) {
	ex, ok := catalog.Find(exKey)
	if !ok {
		return 0, 0
	}
	day := dayOf(today, loc)
	for _, entry := range logs {
		if entry.Exercise == exKey && dayOf(entry.Date, loc).Equal(day) {
			sets++
			total += entry.Value(ex)
		}
	}
	return sets, total
}

// Trend is a least-squares progress fit for one exercise: result value as a
// linear function of days since the first attempt.
type Trend struct {
	SlopePerDay float64 `json:"slope_per_day"`
	WeekAhead   float64 `json:"week_ahead"`
	MonthAhead  float64 `json:"month_ahead"`
	R2          float64 `json:"r2"`
	Points      int     `json:"points"`
}

const minTrendPoints = 3

// ProgressTrend fits the closed-form regression. Returns false with fewer
// than three data points. Deterministic: no sampling, no iteration.
func ProgressTrend(logs []models.Training, exKey string) (Trend, bool) {
	ex, ok := catalog.Find(exKey)
	if !ok {
		return Trend{}, false
	}

	var xs, ys []float64
	var first time.Time
	for _, entry := range logs {
		if entry.Exercise != exKey {
			continue
		}
		if first.IsZero() || entry.Date.Before(first) {
			first = entry.Date
		}
	}
	for _, entry := range logs {
		if entry.Exercise != exKey {
			continue
		}
		xs = append(xs, entry.Date.Sub(first).Hours()/24)
		ys = append(ys, float64(entry.Value(ex)))
	}
	if len(xs) < minTrendPoints {
		return Trend{}, false
	}

	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Trend{}, false
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i := range xs {
		pred := intercept + slope*xs[i]
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	lastX := xs[0]
	for _, x := range xs[1:] {
		if x > lastX {
			lastX = x
		}
	}
	current := intercept + slope*lastX
	return Trend{
		SlopePerDay: slope,
		WeekAhead:   current + slope*7,
		MonthAhead:  current + slope*30,
		R2:          r2,
		Points:      len(xs),
	}, true
}
