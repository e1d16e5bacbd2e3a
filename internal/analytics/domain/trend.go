package analytics

import (
	"math"
	"sort"

	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// Trend directions.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// stableSlopeLimit is the absolute per-day slope below which a trend
// counts as stable.
const stableSlopeLimit = 0.1

// DailyAverage is one day's mean for a sensor.
type DailyAverage struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"`
}

// Trend describes the direction of a sensor over the trend window,
// with overall statistics across the window's raw readings.
type Trend struct {
	Direction     string         `json:"direction"`
	Slope         float64        `json:"slope"`
	Mean          float64        `json:"mean"`
	Min           float64        `json:"min"`
	Max           float64        `json:"max"`
	StdDev        float64        `json:"std_dev"`
	DailyAverages []DailyAverage `json:"daily_averages"`
}

// ComputeTrends derives a per-sensor trend from the window readings.
// Readings are grouped into UTC days, each day reduced to its mean,
// and an ordinary least squares slope is fit over the day index.
// Fewer than two days yields insufficient_data.
func ComputeTrends(window []readings.Reading) map[string]Trend {
	return map[string]Trend{
		"temperature": trendFor(window, func(r readings.Reading) float64 { return r.Temperature }),
		"humidity":    trendFor(window, func(r readings.Reading) float64 { return r.Humidity }),
		"methane":     trendFor(window, func(r readings.Reading) float64 { return r.Methane }),
		"other_gases": trendFor(window, func(r readings.Reading) float64 { return r.OtherGases }),
	}
}

func trendFor(window []readings.Reading, value func(readings.Reading) float64) Trend {
	type bucket struct {
		sum   float64
		count int
	}
	days := make(map[string]*bucket)
	values := make([]float64, 0, len(window))
	for _, reading := range window {
		key := reading.Timestamp.UTC().Format(DateLayout)
		b := days[key]
		if b == nil {
			b = &bucket{}
			days[key] = b
		}
		v := value(reading)
		b.sum += v
		b.count++
		values = append(values, v)
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	averages := make([]DailyAverage, 0, len(keys))
	for _, key := range keys {
		b := days[key]
		averages = append(averages, DailyAverage{Date: key, Average: Round2(b.sum / float64(b.count))})
	}

	trend := windowStats(values)
	trend.DailyAverages = averages
	if len(averages) < 2 {
		trend.Direction = TrendInsufficientData
		return trend
	}

	slope := olsSlope(averages)
	trend.Direction = TrendStable
	if math.Abs(slope) >= stableSlopeLimit {
		if slope > 0 {
			trend.Direction = TrendIncreasing
		} else {
			trend.Direction = TrendDecreasing
		}
	}
	trend.Slope = Round4(slope)
	return trend
}

// windowStats reduces the raw window values to mean, min, max and
// sample standard deviation.
func windowStats(values []float64) Trend {
	if len(values) == 0 {
		return Trend{}
	}
	minV := values[0]
	maxV := values[0]
	var sum float64
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		sum += v
	}
	mean := sum / float64(len(values))
	var sqDiff float64
	for _, v := range values {
		sqDiff += (v - mean) * (v - mean)
	}
	stdDev := 0.0
	if len(values) > 1 {
		stdDev = math.Sqrt(sqDiff / float64(len(values)-1))
	}
	return Trend{Mean: Round2(mean), Min: Round2(minV), Max: Round2(maxV), StdDev: Round2(stdDev)}
}

// olsSlope fits y = a + b*x over the day index and returns b.
func olsSlope(averages []DailyAverage) float64 {
	n := float64(len(averages))
	var sumX, sumY, sumXY, sumXX float64
	for i, avg := range averages {
		x := float64(i)
		sumX += x
		sumY += avg.Average
		sumXY += x * avg.Average
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
