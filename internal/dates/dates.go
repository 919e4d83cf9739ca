package dates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Date is a calendar day carried as midnight UTC. It encodes as YYYY-MM-DD.
type Date struct {
	time.Time
}

// Of truncates t to its calendar day.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	return Of(time.Now())
}

// Parse accepts YYYY-MM-DD and, for clients that send full timestamps, RFC 3339.
func Parse(s string) (Date, error) {
	if t, err := time.Parse(Layout, s); err == nil {
		return Of(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Of(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(Layout)
}

// MonthBounds returns the first and last day of d's month.
func (d Date) MonthBounds() (Date, Date) {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Date{first}, Date{first.AddDate(0, 1, -1)}
}

func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

func (d Date) AddMonths(n int) Date {
	return Date{d.AddDate(0, n, 0)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(Layout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Nullable returns nil for the zero Date, for nullable DATE columns.
func (d Date) Nullable() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// FromNullable is the inverse of Nullable.
func FromNullable(t *time.Time) Date {
	if t == nil {
		return Date{}
	}
	return Of(*t)
}
