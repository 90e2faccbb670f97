package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseWalltime parses a scheduler time limit. Accepted forms:
//   - HH:MM:SS: "02:00:00", "36:00:00"
//   - H:MM (hours:minutes): "2:30"
//   - Go duration: "2h", "90m", "1h30m"
func ParseWalltime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time limit")
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("invalid time limit: %s (use HH:MM:SS or HH:MM)", s)
		}
		units := []time.Duration{time.Hour, time.Minute, time.Second}
		var d time.Duration
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("invalid time limit: %s", s)
			}
			if i > 0 && n >= 60 {
				return 0, fmt.Errorf("invalid time limit: %s (field %q out of range)", s, p)
			}
			d += time.Duration(n) * units[i]
		}
		return d, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid time limit: %s (use '2h', '90m' or '02:00:00')", s)
	}
	return d, nil
}

// FormatWalltime renders d as HH:MM:SS, truncated to whole seconds.
func FormatWalltime(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}
