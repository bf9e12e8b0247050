package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of every ledger timestamp.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

var inputLayouts = []string{
	DateLayout,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339Nano,
	"2006-01-02",
}

// Date is a UTC timestamp with one second precision.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t.UTC().Truncate(time.Second)}
}

func ParseDate(s string) (Date, error) {
	for _, layout := range inputLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewDate(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

func (d Date) String() string {
	return d.UTC().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
