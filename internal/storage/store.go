package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planteur/planteur-core/internal/monitoring"
	"github.com/planteur/planteur-core/internal/watering"
)

const (
	// writeTimeout bounds a single insert issued from a bus listener.
	writeTimeout = 2 * time.Second

	// MaxLimit caps history queries.
	MaxLimit = 1000

	// timestampLayout is fixed width so text ordering matches time ordering.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store is the SQLite sink for readings and demands.
type Store struct {
	db *sql.DB
}

var (
	_ monitoring.ReadingListener = (*Store)(nil)
	_ watering.DemandListener    = (*Store)(nil)
)

// NewStore creates a Store on an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// OnReading persists r to the monitoring table.
func (s *Store) OnReading(r monitoring.Reading) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.InsertReading(ctx, r)
}

// OnDemand persists d to the watering table.
func (s *Store) OnDemand(d watering.Demand) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return s.InsertDemand(ctx, d)
}

// InsertReading writes one reading. Absent measurements are stored as NULL.
// Readings that fail validation are refused so every stored row reads back.
func (s *Store) InsertReading(ctx context.Context, r monitoring.Reading) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}

	const query = `INSERT INTO monitoring (timestamp, uid, humidity, temperature)
		VALUES (?, ?, ?, ?)`

	var humidity sql.NullInt64
	if h, ok := r.Humidity(); ok {
		humidity = sql.NullInt64{Int64: int64(h), Valid: true}
	}
	var temperature sql.NullFloat64
	if t, ok := r.Temperature(); ok {
		temperature = sql.NullFloat64{Float64: t, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		r.Timestamp().UTC().Format(timestampLayout), r.PlantUID(), humidity, temperature)
	if err != nil {
		return fmt.Errorf("inserting reading for %s: %w", r.PlantUID(), err)
	}
	return nil
}

// InsertDemand writes one demand.
func (s *Store) InsertDemand(ctx context.Context, d watering.Demand) error {
	const query = `INSERT INTO watering (id, timestamp, uid) VALUES (?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		d.ID.String(), d.Timestamp.UTC().Format(timestampLayout), d.PlantUID)
	if err != nil {
		return fmt.Errorf("inserting demand %s for %s: %w", d.ID, d.PlantUID, err)
	}
	return nil
}

// RecentReadings returns up to limit readings for uid, newest first.
func (s *Store) RecentReadings(ctx context.Context, uid string, limit int) ([]monitoring.Reading, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	const query = `SELECT timestamp, uid, humidity, temperature FROM monitoring
		WHERE uid = ? ORDER BY timestamp DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("querying readings for %s: %w", uid, err)
	}
	defer rows.Close()

	var readings []monitoring.Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}

// LatestReading returns the newest reading for uid, or ErrNotFound.
func (s *Store) LatestReading(ctx context.Context, uid string) (monitoring.Reading, error) {
	const query = `SELECT timestamp, uid, humidity, temperature FROM monitoring
		WHERE uid = ? ORDER BY timestamp DESC, id DESC LIMIT 1`

	r, err := scanReading(s.db.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return monitoring.Reading{}, fmt.Errorf("%w: no reading for %s", ErrNotFound, uid)
	}
	return r, err
}

// RecentDemands returns up to limit demands for uid, newest first.
func (s *Store) RecentDemands(ctx context.Context, uid string, limit int) ([]watering.Demand, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	const query = `SELECT id, timestamp, uid FROM watering
		WHERE uid = ? ORDER BY timestamp DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("querying demands for %s: %w", uid, err)
	}
	defer rows.Close()

	var demands []watering.Demand
	for rows.Next() {
		var id, ts string
		var d watering.Demand
		if err := rows.Scan(&id, &ts, &d.PlantUID); err != nil {
			return nil, fmt.Errorf("scanning demand row: %w", err)
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing demand id %q: %w", id, err)
		}
		if d.Timestamp, err = time.Parse(timestampLayout, ts); err != nil {
			return nil, fmt.Errorf("parsing demand timestamp %q: %w", ts, err)
		}
		demands = append(demands, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating demands: %w", err)
	}
	return demands, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (monitoring.Reading, error) {
	var (
		ts          string
		uid         string
		humidity    sql.NullInt64
		temperature sql.NullFloat64
	)
	if err := row.Scan(&ts, &uid, &humidity, &temperature); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return monitoring.Reading{}, err
		}
		return monitoring.Reading{}, fmt.Errorf("scanning reading row: %w", err)
	}

	at, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return monitoring.Reading{}, fmt.Errorf("parsing reading timestamp %q: %w", ts, err)
	}

	var opts []monitoring.Option
	if humidity.Valid {
		opts = append(opts, monitoring.WithHumidity(int(humidity.Int64)))
	}
	if temperature.Valid {
		opts = append(opts, monitoring.WithTemperature(temperature.Float64))
	}
	return monitoring.NewReadingAt(at, uid, opts...), nil
}

func checkLimit(limit int) error {
	if limit < 1 || limit > MaxLimit {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidLimit, limit, MaxLimit)
	}
	return nil
}
