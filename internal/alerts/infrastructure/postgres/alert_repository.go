package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	alerts "github.com/AtharvSabde/Cropverse/internal/alerts/domain"
)

// AlertRepository is a Postgres repository for alerts.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository constructs a repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *alerts.Alert) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	if alert == nil {
		return errors.New("alert repo: nil alert")
	}
	if alert.ID == "" || alert.Sensor == "" || alert.Severity == "" {
		return errors.New("alert repo: missing fields")
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO alerts (
	id, sensor_id, sensor, severity, value, threshold, message,
	created_at, resolved, resolved_at, resolved_by
) VALUES (
	$1, $2, $3, $4, $5, $6, $7,
	$8, $9, $10, $11
)`,
		alert.ID,
		alert.SensorID,
		string(alert.Sensor),
		string(alert.Severity),
		alert.Value,
		alert.Threshold,
		alert.Message,
		alert.CreatedAt,
		alert.Resolved,
		nullableTime(alert.ResolvedAt),
		nullableString(alert.ResolvedBy),
	)
	return err
}

// GetByID fetches an alert by id. A missing row yields (nil, nil).
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, sensor_id, sensor, severity, value, threshold, message,
	created_at, resolved, resolved_at, resolved_by
FROM alerts
WHERE id = $1`, id)
	return scanAlert(row)
}

// List returns alerts matching the filter, newest first. Range bounds
// apply to created_at directly in SQL.
func (r *AlertRepository) List(ctx context.Context, filter alerts.Filter) ([]alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	var (
		conditions []string
		args       []any
	)
	appendCond := func(cond string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.SensorID != "" {
		appendCond("sensor_id = $%d", filter.SensorID)
	}
	if filter.Sensor != "" {
		appendCond("sensor = $%d", string(filter.Sensor))
	}
	if filter.Severity != "" {
		appendCond("severity = $%d", string(filter.Severity))
	}
	if filter.Resolved != nil {
		appendCond("resolved = $%d", *filter.Resolved)
	}
	if !filter.From.IsZero() {
		appendCond("created_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		appendCond("created_at < $%d", filter.To)
	}

	query := `
SELECT id, sensor_id, sensor, severity, value, threshold, message,
	created_at, resolved, resolved_at, resolved_by
FROM alerts`
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf("\nLIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []alerts.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		if alert != nil {
			result = append(result, *alert)
		}
	}
	return result, rows.Err()
}

// MarkResolved marks an alert as resolved.
func (r *AlertRepository) MarkResolved(ctx context.Context, id string, resolvedAt time.Time, resolvedBy string) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE alerts
SET resolved = TRUE, resolved_at = $1, resolved_by = $2
WHERE id = $3`, resolvedAt, nullableString(resolvedBy), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return alerts.ErrNotFound
	}
	return nil
}

type alertScanner interface {
	Scan(dest ...any) error
}

func scanAlert(scanner alertScanner) (*alerts.Alert, error) {
	var (
		alert      alerts.Alert
		sensor     string
		severity   string
		resolvedAt sql.NullTime
		resolvedBy sql.NullString
	)
	err := scanner.Scan(
		&alert.ID,
		&alert.SensorID,
		&sensor,
		&severity,
		&alert.Value,
		&alert.Threshold,
		&alert.Message,
		&alert.CreatedAt,
		&alert.Resolved,
		&resolvedAt,
		&resolvedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	alert.Sensor = alerts.Sensor(sensor)
	alert.Severity = alerts.Severity(severity)
	if resolvedAt.Valid {
		alert.ResolvedAt = resolvedAt.Time
	}
	if resolvedBy.Valid {
		alert.ResolvedBy = resolvedBy.String
	}
	return &alert, nil
}

func nullableTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value, Valid: true}
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
