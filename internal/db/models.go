package db

// Alarm severity levels assigned to a point at provisioning time.
// Level 0 disables edge detection for the point entirely.
const (
	LevelNone  = 0
	LevelState = 1
	LevelAlarm = 2
)

// Point represents a monitored data point in the registry.
// Read-only at engine runtime; rows are written by provisioning.
type Point struct {
	ID         int
	Xid        string
	Name       string
	AlarmLevel int
}

// AlarmRecord represents one alarm lifecycle in the database.
// InactiveTime 0 marks the record as still open; the same sentinel is part
// of the (PointID, InactiveTime) uniqueness key that keeps at most one open
// alarm per point. The point fields are snapshots taken when the alarm
// opened and are never refreshed from the registry.
type AlarmRecord struct {
	ID              int64
	PointID         int
	PointXid        string
	PointLevel      int
	PointName       string
	ActiveTime      int64
	InactiveTime    int64
	AcknowledgeTime int64
	Level           int
}

// Open reports whether the record is the point's currently open alarm.
func (a *AlarmRecord) Open() bool {
	return a.InactiveTime == 0
}
