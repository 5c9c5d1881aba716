package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL is applied idempotently by the provisioning command.
//
// The UNIQUE (point_id, inactive_time) constraint is the store-level guard
// for the "at most one open alarm per point" invariant: every open row
// carries inactive_time 0, so a second open insert for the same point
// collides. The foreign key cascades so deleting a point removes its alarm
// history.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS data_points (
    id          SERIAL PRIMARY KEY,
    xid         VARCHAR(50) NOT NULL UNIQUE,
    point_name  VARCHAR(250),
    alarm_level SMALLINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS plc_alarms (
    id               BIGSERIAL PRIMARY KEY,
    point_id         INT NOT NULL REFERENCES data_points(id) ON DELETE CASCADE,
    point_xid        VARCHAR(50) DEFAULT NULL,
    point_level      SMALLINT DEFAULT NULL,
    point_name       VARCHAR(250) DEFAULT NULL,
    active_time      BIGINT NOT NULL DEFAULT 0,
    inactive_time    BIGINT NOT NULL DEFAULT 0,
    acknowledge_time BIGINT NOT NULL DEFAULT 0,
    level            SMALLINT DEFAULT NULL,
    UNIQUE (point_id, inactive_time)
);

CREATE INDEX IF NOT EXISTS idx_plc_alarms_history
    ON plc_alarms (inactive_time DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_plc_alarms_unacknowledged
    ON plc_alarms (acknowledge_time) WHERE acknowledge_time = 0;
`

// Migrate applies the alarm schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply alarm schema: %w", err)
	}
	return nil
}
