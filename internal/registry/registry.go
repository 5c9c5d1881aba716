// Package registry reads point configuration. The engine only ever looks
// points up; provisioning owns all writes to the table.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plc-alarm-worker/internal/db"
)

// ErrPointNotFound is returned when a point id has no registry entry.
var ErrPointNotFound = errors.New("point not found")

// PointRegistry handles read access to the data point registry
type PointRegistry struct {
	pool *pgxpool.Pool
}

// NewPointRegistry creates a new point registry
func NewPointRegistry(pool *pgxpool.Pool) *PointRegistry {
	return &PointRegistry{pool: pool}
}

// Lookup fetches a point's static configuration by id
func (r *PointRegistry) Lookup(ctx context.Context, pointID int) (*db.Point, error) {
	query := `
		SELECT id, xid, COALESCE(point_name, ''), alarm_level
		FROM data_points
		WHERE id = $1
	`

	var point db.Point
	err := r.pool.QueryRow(ctx, query, pointID).Scan(
		&point.ID,
		&point.Xid,
		&point.Name,
		&point.AlarmLevel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPointNotFound
		}
		return nil, fmt.Errorf("failed to query point %d: %w", pointID, err)
	}

	return &point, nil
}
