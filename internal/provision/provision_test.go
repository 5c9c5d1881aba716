package provision_test

import (
	"testing"

	"plc-alarm-worker/internal/provision"
)

func TestClassifyAlarmLevel_AlarmMarker(t *testing.T) {
	level := provision.ClassifyAlarmLevel("Pump 3 AL overpressure")
	if level != 2 {
		t.Errorf("Expected level 2 for alarm marker, got %d", level)
	}
}

func TestClassifyAlarmLevel_StateMarker(t *testing.T) {
	level := provision.ClassifyAlarmLevel("Conveyor ST running")
	if level != 1 {
		t.Errorf("Expected level 1 for state marker, got %d", level)
	}
}

func TestClassifyAlarmLevel_NoMarker(t *testing.T) {
	level := provision.ClassifyAlarmLevel("Boiler temperature")
	if level != 0 {
		t.Errorf("Expected level 0 without markers, got %d", level)
	}
}

func TestClassifyAlarmLevel_MarkersNeedSpacing(t *testing.T) {
	// Substrings inside words do not count
	level := provision.ClassifyAlarmLevel("TOTAL STEAM")
	if level != 0 {
		t.Errorf("Expected level 0 for embedded substrings, got %d", level)
	}
}

func TestClassifyAlarmLevel_StateWinsWhenBothPresent(t *testing.T) {
	// The state marker is evaluated last; a name carrying both markers
	// lands at the state level.
	level := provision.ClassifyAlarmLevel("Valve AL and ST combined")
	if level != 1 {
		t.Errorf("Expected level 1 when both markers present, got %d", level)
	}
}

func TestClassifyAlarmLevel_EmptyName(t *testing.T) {
	if level := provision.ClassifyAlarmLevel(""); level != 0 {
		t.Errorf("Expected level 0 for empty name, got %d", level)
	}
}
