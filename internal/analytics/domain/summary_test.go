package analytics

import (
	"errors"
	"testing"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

var testDay = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func readingAt(hour int, temp, humidity, methane, gases float64) readings.Reading {
	return readings.Reading{
		SensorID:    "greenhouse-1",
		Timestamp:   testDay.Add(time.Duration(hour) * time.Hour),
		Temperature: temp,
		Humidity:    humidity,
		Methane:     methane,
		OtherGases:  gases,
	}
}

func TestBuildSummary_NoData(t *testing.T) {
	_, err := BuildSummary("greenhouse-1", testDay, nil, nil, nil, time.Now())
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestBuildSummary_Stats(t *testing.T) {
	day := []readings.Reading{
		readingAt(1, 20, 50, 100, 150),
		readingAt(2, 22, 55, 110, 160),
		readingAt(3, 24, 60, 120, 170),
	}
	summary, err := BuildSummary("greenhouse-1", testDay, day, nil, day, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.Date != "2026-03-01" {
		t.Fatalf("unexpected date key %q", summary.Date)
	}
	if summary.Temperature.Avg != 22 || summary.Temperature.Min != 20 || summary.Temperature.Max != 24 || summary.Temperature.Range != 4 {
		t.Fatalf("unexpected temperature stats: %+v", summary.Temperature)
	}
	if summary.Humidity.Avg != 55 {
		t.Fatalf("unexpected humidity avg %g", summary.Humidity.Avg)
	}
	if summary.ReadingCount != 3 {
		t.Fatalf("unexpected reading count %d", summary.ReadingCount)
	}
}

func TestBuildSummary_StatsRounding(t *testing.T) {
	day := []readings.Reading{
		readingAt(1, 20.123, 50, 100, 150),
		readingAt(2, 20.129, 50, 100, 150),
	}
	summary, err := BuildSummary("greenhouse-1", testDay, day, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.Temperature.Avg != 20.13 {
		t.Fatalf("expected avg rounded to 20.13, got %g", summary.Temperature.Avg)
	}
	if summary.Temperature.Range != 0.01 {
		t.Fatalf("expected range rounded to 0.01, got %g", summary.Temperature.Range)
	}
}

func TestBuildSummary_AlertCounts(t *testing.T) {
	day := []readings.Reading{readingAt(1, 22, 55, 100, 150)}
	dayAlerts := []alerts.Alert{
		{Severity: alerts.SeverityCritical},
		{Severity: alerts.SeverityWarning},
		{Severity: alerts.SeverityWarning},
	}
	summary, err := BuildSummary("greenhouse-1", testDay, day, dayAlerts, nil, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if summary.AlertCount != 3 || summary.CriticalAlertCount != 1 {
		t.Fatalf("unexpected counts: %d/%d", summary.AlertCount, summary.CriticalAlertCount)
	}
}

func TestOverallStatus(t *testing.T) {
	cases := []struct {
		name          string
		critical      int
		alerts        int
		tempRange     float64
		humidityRange float64
		want          string
	}{
		{"critical wins", 1, 1, 0, 0, StatusCritical},
		{"many alerts", 0, 21, 0, 0, StatusPoor},
		{"some alerts", 0, 6, 0, 0, StatusFair},
		{"wide temperature swing", 0, 0, 5.5, 0, StatusFair},
		{"wide humidity swing", 0, 0, 0, 10.5, StatusFair},
		{"few alerts", 0, 3, 2, 5, StatusGood},
		{"quiet day", 0, 0, 5, 10, StatusExcellent},
	}
	for _, tc := range cases {
		got := overallStatus(tc.critical, tc.alerts, tc.tempRange, tc.humidityRange)
		if got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestDataQualityScore(t *testing.T) {
	if got := dataQualityScore(ExpectedReadingsPerDay); got != 100 {
		t.Fatalf("full day should score 100, got %g", got)
	}
	if got := dataQualityScore(ExpectedReadingsPerDay * 2); got != 100 {
		t.Fatalf("score must cap at 100, got %g", got)
	}
	if got := dataQualityScore(ExpectedReadingsPerDay / 2); got != 50 {
		t.Fatalf("half day should score 50, got %g", got)
	}
	if got := dataQualityScore(100); got != 0.58 {
		t.Fatalf("expected 0.58, got %g", got)
	}
}
