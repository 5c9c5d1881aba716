package timefmt

import "time"

// Layout is the fixed-width rendering used by the alarm views.
const Layout = "2006-01-02 15:04:05"

// FormatMillis renders a millisecond epoch timestamp for the alarm views.
// The zero sentinel (alarm still open, or never acknowledged) renders as a
// blank string instead of a date. Milliseconds are truncated to whole
// seconds before formatting, matching the stored resolution of alarm
// transition times.
func FormatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.Unix(ms/1000, 0).UTC().Format(Layout)
}
