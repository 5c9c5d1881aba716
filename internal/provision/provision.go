// Package provision assigns alarm severity levels to registered points.
// Classification runs once, before the engine starts consuming events; the
// engine itself only ever reads the resulting alarm_level field.
package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Name markers that carry alarm significance. The alarm marker is checked
// first, so a name containing both markers ends up at the state level.
const (
	alarmMarker = " AL "
	stateMarker = " ST "
)

// ClassifyAlarmLevel derives a point's severity level from its display name.
func ClassifyAlarmLevel(name string) int {
	level := 0
	if strings.Contains(name, alarmMarker) {
		level = 2
	}
	if strings.Contains(name, stateMarker) {
		level = 1
	}
	return level
}

// Provisioner backfills alarm levels for every registered point
type Provisioner struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewProvisioner creates a new provisioner
func NewProvisioner(pool *pgxpool.Pool, logger *zap.Logger) *Provisioner {
	return &Provisioner{pool: pool, logger: logger}
}

// Reclassify recomputes alarm_level from point_name for all points.
func (p *Provisioner) Reclassify(ctx context.Context) error {
	rows, err := p.pool.Query(ctx, `SELECT id, COALESCE(point_name, '') FROM data_points`)
	if err != nil {
		return fmt.Errorf("failed to query points: %w", err)
	}

	type pointRow struct {
		id   int
		name string
	}
	var points []pointRow
	for rows.Next() {
		var row pointRow
		if err := rows.Scan(&row.id, &row.name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan point: %w", err)
		}
		points = append(points, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}

	for _, point := range points {
		level := ClassifyAlarmLevel(point.name)
		_, err := p.pool.Exec(ctx,
			`UPDATE data_points SET alarm_level = $1 WHERE id = $2`,
			level, point.id,
		)
		if err != nil {
			return fmt.Errorf("failed to update point %d: %w", point.id, err)
		}
		if level > 0 {
			p.logger.Info("point placed under alarm supervision",
				zap.Int("point_id", point.id),
				zap.Int("alarm_level", level),
			)
		}
	}

	p.logger.Info("reclassified points", zap.Int("count", len(points)))
	return nil
}
