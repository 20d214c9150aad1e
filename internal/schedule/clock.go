package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTime is returned when a time-of-day string cannot be parsed.
var ErrInvalidTime = errors.New("schedule: invalid time of day")

const minutesPerDay = 24 * 60

// Clock is a time of day expressed in minutes since midnight.
type Clock int

// ParseClock parses "hh:mm AM", "h:mmpm" or 24-hour "HH:mm[:ss]" input.
func ParseClock(s string) (Clock, error) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTime)
	}

	meridiem := ""
	if strings.HasSuffix(raw, "AM") || strings.HasSuffix(raw, "PM") {
		meridiem = raw[len(raw)-2:]
		raw = strings.TrimSpace(raw[:len(raw)-2])
	}

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, ok := parseComponent(parts[0])
	if !ok {
		return 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTime, s)
	}
	minute, ok := parseComponent(parts[1])
	if !ok || minute > 59 {
		return 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTime, s)
	}
	if len(parts) == 3 {
		if sec, ok := parseComponent(parts[2]); !ok || sec > 59 {
			return 0, fmt.Errorf("%w: bad second in %q", ErrInvalidTime, s)
		}
	}

	switch meridiem {
	case "":
		if hour > 23 {
			return 0, fmt.Errorf("%w: hour out of range in %q", ErrInvalidTime, s)
		}
	default:
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: 12-hour clock out of range in %q", ErrInvalidTime, s)
		}
		hour %= 12
		if meridiem == "PM" {
			hour += 12
		}
	}
	return Clock(hour*60 + minute), nil
}

func parseComponent(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// Hour returns the 24-hour component.
func (c Clock) Hour() int { return int(c.normalized()) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c.normalized()) % 60 }

func (c Clock) normalized() Clock {
	return ((c % minutesPerDay) + minutesPerDay) % minutesPerDay
}

// Format24 renders zero-padded "HH:mm".
func (c Clock) Format24() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Format12 renders zero-padded "hh:mm AM".
func (c Clock) Format12() string {
	hour := c.Hour()
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hour, c.Minute(), meridiem)
}

func (c Clock) String() string { return c.Format12() }

// NormalizeHHMM converts any accepted time-of-day input to 24-hour "HH:mm".
func NormalizeHHMM(s string) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return c.Format24(), nil
}

// Normalize12 converts any accepted time-of-day input to "hh:mm AM".
func Normalize12(s string) (string, error) {
	c, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return c.Format12(), nil
}
