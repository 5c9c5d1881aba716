package store

import (
	"context"
	"fmt"
	"time"

	"plc-alarm-worker/tools/timefmt"
)

// liveWindow is the recency window for closed alarms in the live view.
const liveWindow = 24 * time.Hour

// LiveAlarm is one row of the live view: an unacknowledged alarm that is
// either still open or closed within the last 24 hours. Times are rendered
// with the shared formatter, so an open alarm shows a blank inactivation
// time.
type LiveAlarm struct {
	ID               int64  `json:"id"`
	ActivationTime   string `json:"activation_time"`
	InactivationTime string `json:"inactivation_time"`
	Level            int    `json:"level"`
	Name             string `json:"name"`
}

// HistoryAlarm is one row of the history view: the full audit trail,
// including still-open records with a blank time.
type HistoryAlarm struct {
	Time  string `json:"time"`
	Level int    `json:"level"`
	Name  string `json:"name"`
}

// LiveAlarms returns unacknowledged alarms that are open, or closed within
// the last 24 hours of the supplied evaluation time. Open alarms sort first,
// then by activation time, inactivation time and id, all descending.
func (s *AlarmStore) LiveAlarms(ctx context.Context, now time.Time) ([]LiveAlarm, error) {
	cutoff := now.Add(-liveWindow).UnixMilli()

	query := `
		SELECT id, active_time, inactive_time, COALESCE(point_level, 0), COALESCE(point_name, '')
		FROM plc_alarms
		WHERE acknowledge_time = 0
			AND (inactive_time = 0 OR inactive_time > $1)
		ORDER BY inactive_time = 0 DESC, active_time DESC, inactive_time DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query live alarms: %w", err)
	}
	defer rows.Close()

	var result []LiveAlarm
	for rows.Next() {
		var (
			row                      LiveAlarm
			activeTime, inactiveTime int64
		)
		if err := rows.Scan(&row.ID, &activeTime, &inactiveTime, &row.Level, &row.Name); err != nil {
			return nil, fmt.Errorf("failed to scan live alarm: %w", err)
		}
		row.ActivationTime = timefmt.FormatMillis(activeTime)
		row.InactivationTime = timefmt.FormatMillis(inactiveTime)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// HistoryAlarms returns every alarm record, most recently closed first.
// There is no acknowledgement or open/closed filter; open records appear
// with a blank time.
func (s *AlarmStore) HistoryAlarms(ctx context.Context) ([]HistoryAlarm, error) {
	query := `
		SELECT inactive_time, COALESCE(level, 0), COALESCE(point_name, '')
		FROM plc_alarms
		ORDER BY inactive_time DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query history alarms: %w", err)
	}
	defer rows.Close()

	var result []HistoryAlarm
	for rows.Next() {
		var (
			row          HistoryAlarm
			inactiveTime int64
		)
		if err := rows.Scan(&inactiveTime, &row.Level, &row.Name); err != nil {
			return nil, fmt.Errorf("failed to scan history alarm: %w", err)
		}
		row.Time = timefmt.FormatMillis(inactiveTime)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
