package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	readings "github.com/AtharvSabde/Cropverse/internal/readings/domain"
)

// ReadingRepository is a Postgres repository for sensor readings.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Save inserts a reading.
func (r *ReadingRepository) Save(ctx context.Context, reading *readings.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil {
		return errors.New("reading repo: nil reading")
	}
	if reading.ID == "" || reading.SensorID == "" {
		return errors.New("reading repo: missing fields")
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sensor_readings (
	id, sensor_id, ts, temperature, humidity, methane, other_gases, exhaust_fan
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)`,
		reading.ID,
		reading.SensorID,
		reading.Timestamp,
		reading.Temperature,
		reading.Humidity,
		reading.Methane,
		reading.OtherGases,
		reading.ExhaustFan,
	)
	return err
}

// ListRange returns readings for a sensor within [from, to), ordered
// by timestamp ascending. An empty sensor id matches all sensors.
func (r *ReadingRepository) ListRange(ctx context.Context, sensorID string, from, to time.Time) ([]readings.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	query := `
SELECT id, sensor_id, ts, temperature, humidity, methane, other_gases, exhaust_fan
FROM sensor_readings
WHERE ts >= $1 AND ts < $2`
	args := []any{from, to}
	if sensorID != "" {
		query += " AND sensor_id = $3"
		args = append(args, sensorID)
	}
	query += "\nORDER BY ts ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readings.Reading
	for rows.Next() {
		var reading readings.Reading
		if err := rows.Scan(
			&reading.ID,
			&reading.SensorID,
			&reading.Timestamp,
			&reading.Temperature,
			&reading.Humidity,
			&reading.Methane,
			&reading.OtherGases,
			&reading.ExhaustFan,
		); err != nil {
			return nil, err
		}
		result = append(result, reading)
	}
	return result, rows.Err()
}
