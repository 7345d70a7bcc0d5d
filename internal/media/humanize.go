package media

import "fmt"

// FormatFilesize renders a byte count as a human-readable size.
// Returns "" for unknown (zero) sizes.
func FormatFilesize(bytes int64) string {
	if bytes <= 0 {
		return ""
	}
	size := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}

// FormatDuration renders a duration in seconds as m:ss or h:mm:ss.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "Unknown"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
