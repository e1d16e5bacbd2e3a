package analytics

import (
	"context"
	"math"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// DateLayout is the key format for daily summaries.
const DateLayout = "2006-01-02"

// ExpectedReadingsPerDay is the full-day sample count at the 5 second
// device interval. Used for the data quality score.
const ExpectedReadingsPerDay = 17280

// Overall status values, best to worst.
const (
	StatusExcellent = "Excellent"
	StatusGood      = "Good"
	StatusFair      = "Fair"
	StatusPoor      = "Poor"
	StatusCritical  = "Critical"
)

// Stability limits feeding the overall status.
const (
	temperatureStableRange = 5.0
	humidityStableRange    = 10.0
)

// SensorStats holds per-sensor aggregates for one day, rounded to two
// decimals.
type SensorStats struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`
}

// Summary is the daily analytics aggregate, keyed by sensor and date.
type Summary struct {
	SensorID string `json:"sensor_id"`
	Date     string `json:"date"`

	Temperature SensorStats `json:"temperature"`
	Humidity    SensorStats `json:"humidity"`
	Methane     SensorStats `json:"methane"`
	OtherGases  SensorStats `json:"other_gases"`

	ReadingCount       int `json:"reading_count"`
	AlertCount         int `json:"alert_count"`
	CriticalAlertCount int `json:"critical_alert_count"`

	OverallStatus    string  `json:"overall_status"`
	DataQualityScore float64 `json:"data_quality_score"`

	Trends       map[string]Trend   `json:"trends"`
	Correlations map[string]float64 `json:"correlations"`

	ComputedAt time.Time `json:"computed_at"`
}

// Repository persists daily summaries. Save overwrites any existing
// summary for the same sensor and date.
type Repository interface {
	Save(ctx context.Context, summary *Summary) error
	Get(ctx context.Context, sensorID, date string) (*Summary, error)
	ListRange(ctx context.Context, sensorID, fromDate, toDate string) ([]Summary, error)
}

// BuildSummary aggregates one UTC day of readings and alerts into a
// Summary. Trend and correlation inputs span the trailing window ending
// on the summary day. Returns ErrNoData when the day has no readings.
func BuildSummary(sensorID string, date time.Time, dayReadings []readings.Reading, dayAlerts []alerts.Alert, windowReadings []readings.Reading, computedAt time.Time) (*Summary, error) {
	if len(dayReadings) == 0 {
		return nil, ErrNoData
	}

	summary := &Summary{
		SensorID:     sensorID,
		Date:         date.UTC().Format(DateLayout),
		Temperature:  statsFor(dayReadings, func(r readings.Reading) float64 { return r.Temperature }),
		Humidity:     statsFor(dayReadings, func(r readings.Reading) float64 { return r.Humidity }),
		Methane:      statsFor(dayReadings, func(r readings.Reading) float64 { return r.Methane }),
		OtherGases:   statsFor(dayReadings, func(r readings.Reading) float64 { return r.OtherGases }),
		ReadingCount: len(dayReadings),
		Trends:       ComputeTrends(windowReadings),
		Correlations: ComputeCorrelations(windowReadings),
		ComputedAt:   computedAt.UTC(),
	}

	for _, alert := range dayAlerts {
		summary.AlertCount++
		if alert.Severity == alerts.SeverityCritical {
			summary.CriticalAlertCount++
		}
	}

	summary.DataQualityScore = dataQualityScore(summary.ReadingCount)
	summary.OverallStatus = overallStatus(
		summary.CriticalAlertCount,
		summary.AlertCount,
		summary.Temperature.Range,
		summary.Humidity.Range,
	)
	return summary, nil
}

func statsFor(list []readings.Reading, value func(readings.Reading) float64) SensorStats {
	min := math.Inf(1)
	max := math.Inf(-1)
	sum := 0.0
	for _, reading := range list {
		v := value(reading)
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return SensorStats{
		Avg:   Round2(sum / float64(len(list))),
		Min:   Round2(min),
		Max:   Round2(max),
		Range: Round2(max - min),
	}
}

// overallStatus applies the day health decision table. Checks run worst
// to best so the first match wins.
func overallStatus(criticalCount, alertCount int, tempRange, humidityRange float64) string {
	switch {
	case criticalCount > 0:
		return StatusCritical
	case alertCount > 20:
		return StatusPoor
	case alertCount > 5 || tempRange > temperatureStableRange || humidityRange > humidityStableRange:
		return StatusFair
	case alertCount > 0:
		return StatusGood
	default:
		return StatusExcellent
	}
}

// dataQualityScore is the received share of the expected full-day
// sample count, capped at 100.
func dataQualityScore(readingCount int) float64 {
	score := float64(readingCount) / float64(ExpectedReadingsPerDay) * 100
	return Round2(math.Min(100, score))
}

// Round2 rounds to two decimal places.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// Round3 rounds to three decimal places.
func Round3(value float64) float64 {
	return math.Round(value*1000) / 1000
}

// Round4 rounds to four decimal places.
func Round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
