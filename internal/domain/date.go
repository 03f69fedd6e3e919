package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the canonical string form for dates ("YYYY-MM-DD").
const DateFormat = "2006-01-02"

// readDateFormat is permissive on read (accepts single-digit month/day).
const readDateFormat = "2006-1-2"

// LocalDate is a pure calendar date: year, month and day with no
// time-of-day or timezone component.
type LocalDate struct {
	y int
	m time.Month
	d int
}

// NewLocalDate returns a normalized LocalDate for the given components.
// Out-of-range components roll over the way time.Date does.
func NewLocalDate(year int, month time.Month, day int) LocalDate {
	d := LocalDate{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// LocalDateOf extracts the calendar date from a time.Time.
func LocalDateOf(t time.Time) LocalDate {
	return NewLocalDate(t.Date())
}

// Today returns the current date.
func Today() LocalDate { return LocalDateOf(time.Now()) }

// ParseLocalDate parses a "YYYY-MM-DD" string (single-digit month/day accepted).
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q want format %q: %w", s, DateFormat, err)
	}
	return LocalDateOf(t), nil
}

// MustParseLocalDate is like ParseLocalDate but panics on error. Test helper.
func MustParseLocalDate(s string) LocalDate {
	d, err := ParseLocalDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// time returns the canonical representation of the day (midnight UTC).
func (d LocalDate) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// Year returns the year.
func (d LocalDate) Year() int { return d.y }

// Month returns the month.
func (d LocalDate) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d LocalDate) Day() int { return d.d }

// AddDays returns the date shifted by the given number of days.
func (d LocalDate) AddDays(days int) LocalDate {
	return NewLocalDate(d.y, d.m, d.d+days)
}

// Before reports whether d is before x.
func (d LocalDate) Before(x LocalDate) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d LocalDate) After(x LocalDate) bool { return d.time().After(x.time()) }

// Equal reports whether d and x are the same calendar day.
func (d LocalDate) Equal(x LocalDate) bool { return d == x }

// String formats the date as "YYYY-MM-DD".
func (d LocalDate) String() string { return d.time().Format(DateFormat) }

// MonthKey returns the "YYYY-MM" bucket key for monthly aggregation.
func (d LocalDate) MonthKey() string { return d.time().Format("2006-01") }

// MarshalJSON encodes the date as a "YYYY-MM-DD" string.
func (d LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *LocalDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = (*LocalDate)(nil)
var _ json.Unmarshaler = (*LocalDate)(nil)
