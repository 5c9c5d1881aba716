// Package store persists alarm records and serves the two read views.
//
// Open and close are each a single guarded statement rather than a
// read-then-write sequence: opening relies on the (point_id, inactive_time)
// uniqueness constraint to reject a second open row, and closing is a
// conditional update that can only ever touch the one open row. Concurrent
// evaluation of the same point therefore cannot double-open or double-close.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plc-alarm-worker/internal/db"
)

// ErrAlarmAlreadyOpen is returned when an open insert hits an existing open
// row for the point. The edge detector's guard makes this unreachable in
// ordered operation; seeing it means events for the point raced.
var ErrAlarmAlreadyOpen = errors.New("alarm already open for point")

// ErrNoOpenAlarm is returned when a close finds no open row to update.
var ErrNoOpenAlarm = errors.New("no open alarm for point")

// AlarmStore handles alarm record persistence
type AlarmStore struct {
	pool *pgxpool.Pool
}

// NewAlarmStore creates a new alarm store
func NewAlarmStore(pool *pgxpool.Pool) *AlarmStore {
	return &AlarmStore{pool: pool}
}

const alarmColumns = `id, point_id, COALESCE(point_xid, ''), COALESCE(point_level, 0),
	COALESCE(point_name, ''), active_time, inactive_time, acknowledge_time, COALESCE(level, 0)`

// FindOpen returns the point's currently open alarm record, or nil when the
// point has none. The uniqueness constraint guarantees at most one row.
func (s *AlarmStore) FindOpen(ctx context.Context, pointID int) (*db.AlarmRecord, error) {
	query := `
		SELECT ` + alarmColumns + `
		FROM plc_alarms
		WHERE point_id = $1 AND inactive_time = 0
	`

	var record db.AlarmRecord
	err := s.pool.QueryRow(ctx, query, pointID).Scan(
		&record.ID,
		&record.PointID,
		&record.PointXid,
		&record.PointLevel,
		&record.PointName,
		&record.ActiveTime,
		&record.InactiveTime,
		&record.AcknowledgeTime,
		&record.Level,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query open alarm for point %d: %w", pointID, err)
	}

	return &record, nil
}

// Open inserts a new open alarm record carrying a full snapshot of the
// point's configuration at this moment. The insert is guarded by the
// uniqueness constraint; a conflicting open row turns the statement into a
// no-op, surfaced as ErrAlarmAlreadyOpen.
func (s *AlarmStore) Open(ctx context.Context, point *db.Point, activeTime int64) (int64, error) {
	query := `
		INSERT INTO plc_alarms (
			point_id, point_xid, point_level, point_name,
			active_time, inactive_time, acknowledge_time, level
		)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $3)
		ON CONFLICT (point_id, inactive_time) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		point.ID,
		point.Xid,
		point.AlarmLevel,
		point.Name,
		activeTime,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAlarmAlreadyOpen
		}
		return 0, fmt.Errorf("failed to open alarm for point %d: %w", point.ID, err)
	}

	return id, nil
}

// Close sets the inactivation time on the point's open alarm record. It
// never inserts: a falling edge with no open row reports ErrNoOpenAlarm.
func (s *AlarmStore) Close(ctx context.Context, pointID int, inactiveTime int64) (int64, error) {
	query := `
		UPDATE plc_alarms
		SET inactive_time = $2
		WHERE point_id = $1 AND inactive_time = 0
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query, pointID, inactiveTime).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoOpenAlarm
		}
		return 0, fmt.Errorf("failed to close alarm for point %d: %w", pointID, err)
	}

	return id, nil
}

// Acknowledge records an operator acknowledgement on an alarm. The engine
// never calls this itself; it is the external write path the live view
// filters on. Acknowledging twice is rejected so the original timestamp is
// preserved.
func (s *AlarmStore) Acknowledge(ctx context.Context, id int64, ackTime int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE plc_alarms
		SET acknowledge_time = $2
		WHERE id = $1 AND acknowledge_time = 0
	`, id, ackTime)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alarm %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alarm %d not found or already acknowledged", id)
	}
	return nil
}
