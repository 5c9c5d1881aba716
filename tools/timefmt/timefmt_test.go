package timefmt_test

import (
	"testing"

	"plc-alarm-worker/tools/timefmt"
)

func TestFormatMillis_ZeroIsBlank(t *testing.T) {
	result := timefmt.FormatMillis(0)
	if result != "" {
		t.Errorf("Expected blank string for zero sentinel, got %q", result)
	}
}

func TestFormatMillis_EpochPlusFiveSeconds(t *testing.T) {
	result := timefmt.FormatMillis(5000)
	if result != "1970-01-01 00:00:05" {
		t.Errorf("Expected '1970-01-01 00:00:05', got %q", result)
	}
}

func TestFormatMillis_TruncatesSubSecond(t *testing.T) {
	result := timefmt.FormatMillis(5999)
	if result != "1970-01-01 00:00:05" {
		t.Errorf("Expected truncation to whole seconds, got %q", result)
	}
}

func TestFormatMillis_FixedWidth(t *testing.T) {
	result := timefmt.FormatMillis(1609459199123)
	if len(result) != 19 {
		t.Errorf("Expected 19-character rendering, got %d (%q)", len(result), result)
	}
	if result != "2020-12-31 23:59:59" {
		t.Errorf("Expected '2020-12-31 23:59:59', got %q", result)
	}
}
