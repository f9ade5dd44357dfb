package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// AvailabilitySlot is a recurring weekly window, times in 24h HH:MM.
type AvailabilitySlot struct {
	Weekday string `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Availability is a mentor's weekly schedule, stored as JSONB.
type Availability []AvailabilitySlot

// Validate checks weekday names and that every window ends after it starts.
func (a Availability) Validate() error {
	for i, slot := range a {
		if _, ok := weekdays[strings.ToLower(slot.Weekday)]; !ok {
			return fmt.Errorf("slot %d: unknown weekday %q", i, slot.Weekday)
		}
		start, err := time.Parse("15:04", slot.Start)
		if err != nil {
			return fmt.Errorf("slot %d: invalid start %q", i, slot.Start)
		}
		end, err := time.Parse("15:04", slot.End)
		if err != nil {
			return fmt.Errorf("slot %d: invalid end %q", i, slot.End)
		}
		if !end.After(start) {
			return fmt.Errorf("slot %d: end must be after start", i)
		}
	}
	return nil
}

// Value implements driver.Valuer.
func (a Availability) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (a *Availability) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Availability{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan availability: unsupported type %T", src)
	}
	var slots Availability
	if err := json.Unmarshal(raw, &slots); err != nil {
		return fmt.Errorf("scan availability: %w", err)
	}
	*a = slots
	return nil
}
