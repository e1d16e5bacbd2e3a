package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	analytics "github.com/AtharvSabde/Cropverse/internal/analytics/domain"
)

// SummaryRepository is a Postgres repository for daily summaries.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository constructs a repository.
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Save upserts a summary keyed by sensor and date.
func (r *SummaryRepository) Save(ctx context.Context, summary *analytics.Summary) error {
	if r == nil || r.db == nil {
		return errors.New("summary repo: nil db")
	}
	if summary == nil {
		return errors.New("summary repo: nil summary")
	}
	if summary.Date == "" {
		return analytics.ErrInvalidDate
	}
	stats, err := json.Marshal(map[string]analytics.SensorStats{
		"temperature": summary.Temperature,
		"humidity":    summary.Humidity,
		"methane":     summary.Methane,
		"other_gases": summary.OtherGases,
	})
	if err != nil {
		return err
	}
	trends, err := json.Marshal(summary.Trends)
	if err != nil {
		return err
	}
	correlations, err := json.Marshal(summary.Correlations)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO daily_summaries (
	sensor_id, summary_date, stats, reading_count, alert_count, critical_alert_count,
	overall_status, data_quality_score, trends, correlations, computed_at
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7, $8, $9, $10, $11
)
ON CONFLICT (sensor_id, summary_date) DO UPDATE SET
	stats = EXCLUDED.stats,
	reading_count = EXCLUDED.reading_count,
	alert_count = EXCLUDED.alert_count,
	critical_alert_count = EXCLUDED.critical_alert_count,
	overall_status = EXCLUDED.overall_status,
	data_quality_score = EXCLUDED.data_quality_score,
	trends = EXCLUDED.trends,
	correlations = EXCLUDED.correlations,
	computed_at = EXCLUDED.computed_at`,
		summary.SensorID,
		summary.Date,
		stats,
		summary.ReadingCount,
		summary.AlertCount,
		summary.CriticalAlertCount,
		summary.OverallStatus,
		summary.DataQualityScore,
		trends,
		correlations,
		summary.ComputedAt,
	)
	return err
}

// Get loads a summary by sensor and date.
func (r *SummaryRepository) Get(ctx context.Context, sensorID, date string) (*analytics.Summary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("summary repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT sensor_id, summary_date, stats, reading_count, alert_count, critical_alert_count,
	overall_status, data_quality_score, trends, correlations, computed_at
FROM daily_summaries
WHERE sensor_id = $1 AND summary_date = $2`, sensorID, date)
	summary, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, analytics.ErrNotFound
		}
		return nil, err
	}
	return summary, nil
}

// ListRange returns summaries for [fromDate, toDate], ordered by date.
func (r *SummaryRepository) ListRange(ctx context.Context, sensorID, fromDate, toDate string) ([]analytics.Summary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("summary repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT sensor_id, summary_date, stats, reading_count, alert_count, critical_alert_count,
	overall_status, data_quality_score, trends, correlations, computed_at
FROM daily_summaries
WHERE sensor_id = $1 AND summary_date >= $2 AND summary_date <= $3
ORDER BY summary_date ASC`, sensorID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []analytics.Summary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *summary)
	}
	return result, rows.Err()
}

type summaryScanner interface {
	Scan(dest ...any) error
}

func scanSummary(scanner summaryScanner) (*analytics.Summary, error) {
	var (
		summary      analytics.Summary
		stats        []byte
		trends       []byte
		correlations []byte
	)
	err := scanner.Scan(
		&summary.SensorID,
		&summary.Date,
		&stats,
		&summary.ReadingCount,
		&summary.AlertCount,
		&summary.CriticalAlertCount,
		&summary.OverallStatus,
		&summary.DataQualityScore,
		&trends,
		&correlations,
		&summary.ComputedAt,
	)
	if err != nil {
		return nil, err
	}
	var bySensor map[string]analytics.SensorStats
	if err := json.Unmarshal(stats, &bySensor); err != nil {
		return nil, err
	}
	summary.Temperature = bySensor["temperature"]
	summary.Humidity = bySensor["humidity"]
	summary.Methane = bySensor["methane"]
	summary.OtherGases = bySensor["other_gases"]
	if len(trends) > 0 {
		if err := json.Unmarshal(trends, &summary.Trends); err != nil {
			return nil, err
		}
	}
	if len(correlations) > 0 {
		if err := json.Unmarshal(correlations, &summary.Correlations); err != nil {
			return nil, err
		}
	}
	return &summary, nil
}
