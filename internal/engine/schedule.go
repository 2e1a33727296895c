package engine

import (
	"fmt"
	"strings"
	"time"

	"goalquest/internal/storage"
)

type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekdays Frequency = "weekdays"
	FrequencyWeekends Frequency = "weekends"
	FrequencySpecific Frequency = "specific"
	FrequencyCustom   Frequency = "custom"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekends, FrequencySpecific, FrequencyCustom:
		return true
	default:
		return false
	}
}

func ParseFrequency(input string) (Frequency, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return FrequencyDaily, nil
	}
	f := Frequency(s)
	if !f.IsValid() {
		return "", InvalidScheduleError{Reason: fmt.Sprintf("unknown frequency %q", input)}
	}
	return f, nil
}

// WeekdayIndex maps t's weekday to 0=Mon .. 6=Sun.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ScheduledOn reports whether h is due on day's calendar date. Custom
// intervals count from the creation date; days before creation are never due.
func ScheduledOn(h storage.Habit, day time.Time) bool {
	wd := WeekdayIndex(day)
	switch Frequency(h.Frequency) {
	case FrequencyWeekdays:
		return wd < 5
	case FrequencyWeekends:
		return wd >= 5
	case FrequencySpecific:
		for _, d := range h.FrequencyDays {
			if d == wd {
				return true
			}
		}
		return false
	case FrequencyCustom:
		if h.CustomInterval <= 1 {
			return true
		}
		start := civil(h.CreatedAt.In(day.Location()))
		days := int(civil(day).Sub(start).Hours() / 24)
		if days < 0 {
			return false
		}
		return days%h.CustomInterval == 0
	default:
		return true
	}
}

// DescribeSchedule renders a habit's frequency for listings.
func DescribeSchedule(h storage.Habit) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	switch Frequency(h.Frequency) {
	case FrequencyWeekdays:
		return "Mon-Fri"
	case FrequencyWeekends:
		return "Sat-Sun"
	case FrequencySpecific:
		var parts []string
		for _, d := range h.FrequencyDays {
			if d >= 0 && d < len(names) {
				parts = append(parts, names[d])
			}
		}
		return strings.Join(parts, ",")
	case FrequencyCustom:
		return fmt.Sprintf("every %d days", h.CustomInterval)
	default:
		return "daily"
	}
}
