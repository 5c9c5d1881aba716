package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"plc-alarm-worker/internal/db"
	"plc-alarm-worker/internal/store"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx := context.Background()
	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM plc_alarms"); err != nil {
		t.Fatalf("Failed to clean plc_alarms: %v", err)
	}
	if _, err := pool.Exec(ctx, "DELETE FROM data_points"); err != nil {
		t.Fatalf("Failed to clean data_points: %v", err)
	}
	return pool
}

func seedPoint(t *testing.T, pool *pgxpool.Pool, xid, name string, level int) *db.Point {
	t.Helper()
	var id int
	err := pool.QueryRow(context.Background(), `
		INSERT INTO data_points (xid, point_name, alarm_level)
		VALUES ($1, $2, $3)
		RETURNING id
	`, xid, name, level).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed point: %v", err)
	}
	return &db.Point{ID: id, Xid: xid, Name: name, AlarmLevel: level}
}

func TestOpenClose_Lifecycle(t *testing.T) {
	pool := testPool(t)
	alarms := store.NewAlarmStore(pool)
	ctx := context.Background()

	point := seedPoint(t, pool, "DP_P101", "P101 AL fault", db.LevelAlarm)

	id, err := alarms.Open(ctx, point, 1000)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	open, err := alarms.FindOpen(ctx, point.ID)
	if err != nil {
		t.Fatalf("FindOpen failed: %v", err)
	}
	if open == nil || open.ID != id {
		t.Fatalf("Expected open record %d, got %+v", id, open)
	}
	if open.ActiveTime != 1000 || open.Level != db.LevelAlarm {
		t.Errorf("Expected activeTime 1000 level 2, got %d/%d", open.ActiveTime, open.Level)
	}

	// A second open for the same point must hit the uniqueness guard
	if _, err := alarms.Open(ctx, point, 2000); err != store.ErrAlarmAlreadyOpen {
		t.Errorf("Expected ErrAlarmAlreadyOpen, got %v", err)
	}

	closedID, err := alarms.Close(ctx, point.ID, 5000)
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closedID != id {
		t.Errorf("Expected close to touch record %d, got %d", id, closedID)
	}

	if open, err = alarms.FindOpen(ctx, point.ID); err != nil {
		t.Fatalf("FindOpen after close failed: %v", err)
	}
	if open != nil {
		t.Errorf("Expected no open record after close, got %+v", open)
	}

	// Closing again has nothing to update
	if _, err := alarms.Close(ctx, point.ID, 6000); err != store.ErrNoOpenAlarm {
		t.Errorf("Expected ErrNoOpenAlarm, got %v", err)
	}
}

func TestViews_ScenarioP101(t *testing.T) {
	pool := testPool(t)
	alarms := store.NewAlarmStore(pool)
	ctx := context.Background()

	point := seedPoint(t, pool, "DP_P101", "P101 AL fault", db.LevelAlarm)
	if _, err := alarms.Open(ctx, point, 1000); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := alarms.Close(ctx, point.ID, 5000); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	history, err := alarms.HistoryAlarms(ctx)
	if err != nil {
		t.Fatalf("HistoryAlarms failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 history row, got %d", len(history))
	}
	row := history[0]
	if row.Time != "1970-01-01 00:00:05" {
		t.Errorf("Expected '1970-01-01 00:00:05', got %q", row.Time)
	}
	if row.Level != db.LevelAlarm || row.Name != "P101 AL fault" {
		t.Errorf("Expected (2, 'P101 AL fault'), got (%d, %q)", row.Level, row.Name)
	}
}

func TestLiveView_OpenFirstOrderingAndBlankTime(t *testing.T) {
	pool := testPool(t)
	alarms := store.NewAlarmStore(pool)
	ctx := context.Background()
	now := time.Now()

	p102 := seedPoint(t, pool, "DP_P102", "P102 ST running", db.LevelState)
	p103 := seedPoint(t, pool, "DP_P103", "P103 AL fault", db.LevelAlarm)

	// p103: closed recently, p102: still open
	if _, err := alarms.Open(ctx, p103, now.Add(-2*time.Hour).UnixMilli()); err != nil {
		t.Fatalf("Open p103 failed: %v", err)
	}
	if _, err := alarms.Close(ctx, p103.ID, now.Add(-time.Hour).UnixMilli()); err != nil {
		t.Fatalf("Close p103 failed: %v", err)
	}
	if _, err := alarms.Open(ctx, p102, now.Add(-30*time.Minute).UnixMilli()); err != nil {
		t.Fatalf("Open p102 failed: %v", err)
	}

	live, err := alarms.LiveAlarms(ctx, now)
	if err != nil {
		t.Fatalf("LiveAlarms failed: %v", err)
	}
	if len(live) != 2 {
		t.Fatalf("Expected 2 live rows, got %d", len(live))
	}
	if live[0].Name != "P102 ST running" {
		t.Errorf("Expected open alarm ranked first, got %q", live[0].Name)
	}
	if live[0].InactivationTime != "" {
		t.Errorf("Expected blank inactivation time for open alarm, got %q", live[0].InactivationTime)
	}
	if live[1].InactivationTime == "" {
		t.Errorf("Expected formatted inactivation time for closed alarm")
	}
}

func TestLiveView_ExcludesOldAndAcknowledged(t *testing.T) {
	pool := testPool(t)
	alarms := store.NewAlarmStore(pool)
	ctx := context.Background()
	now := time.Now()

	p104 := seedPoint(t, pool, "DP_P104", "P104 AL fault", db.LevelAlarm)
	p105 := seedPoint(t, pool, "DP_P105", "P105 AL fault", db.LevelAlarm)

	// p104: closed beyond the 24h window
	if _, err := alarms.Open(ctx, p104, now.Add(-48*time.Hour).UnixMilli()); err != nil {
		t.Fatalf("Open p104 failed: %v", err)
	}
	if _, err := alarms.Close(ctx, p104.ID, now.Add(-25*time.Hour).UnixMilli()); err != nil {
		t.Fatalf("Close p104 failed: %v", err)
	}

	// p105: open but acknowledged
	ackID, err := alarms.Open(ctx, p105, now.Add(-time.Hour).UnixMilli())
	if err != nil {
		t.Fatalf("Open p105 failed: %v", err)
	}
	if err := alarms.Acknowledge(ctx, ackID, now.UnixMilli()); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}

	live, err := alarms.LiveAlarms(ctx, now)
	if err != nil {
		t.Fatalf("LiveAlarms failed: %v", err)
	}
	if len(live) != 0 {
		t.Errorf("Expected empty live view, got %d rows", len(live))
	}

	// Both records still appear in the full audit trail, the open one with
	// a blank time.
	history, err := alarms.HistoryAlarms(ctx)
	if err != nil {
		t.Fatalf("HistoryAlarms failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 history rows, got %d", len(history))
	}
	blank := 0
	for _, row := range history {
		if row.Time == "" {
			blank++
		}
	}
	if blank != 1 {
		t.Errorf("Expected exactly one open (blank time) history row, got %d", blank)
	}
}

func TestAcknowledge_SecondAckRejected(t *testing.T) {
	pool := testPool(t)
	alarms := store.NewAlarmStore(pool)
	ctx := context.Background()

	point := seedPoint(t, pool, "DP_P106", "P106 ST running", db.LevelState)
	id, err := alarms.Open(ctx, point, 1000)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := alarms.Acknowledge(ctx, id, 2000); err != nil {
		t.Fatalf("Acknowledge failed: %v", err)
	}
	if err := alarms.Acknowledge(ctx, id, 3000); err == nil {
		t.Error("Expected second acknowledge to be rejected")
	}
}

func TestPointDeletion_CascadesToAlarms(t *testing.T) {
	pool := testPool(t)
	alarms := store.NewAlarmStore(pool)
	ctx := context.Background()

	point := seedPoint(t, pool, "DP_P107", "P107 AL fault", db.LevelAlarm)
	if _, err := alarms.Open(ctx, point, 1000); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := pool.Exec(ctx, "DELETE FROM data_points WHERE id = $1", point.ID); err != nil {
		t.Fatalf("Failed to delete point: %v", err)
	}

	history, err := alarms.HistoryAlarms(ctx)
	if err != nil {
		t.Fatalf("HistoryAlarms failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("Expected alarm records to cascade with point deletion, got %d rows", len(history))
	}
}
