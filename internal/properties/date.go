package properties

import (
	"fmt"
	"time"
	_ "time/tzdata" // the zone must resolve on hosts without a zoneinfo database

	"github.com/rotisserie/eris"
)

// Zone is the time zone all feed timestamps are written in.
const Zone = "Australia/Sydney"

// DateFormat identifies one of the feed's timestamp encodings.
type DateFormat int

const (
	// FormatPublished is the RSS publish date, e.g. "3/01/2018 5:20:00 AM".
	FormatPublished DateFormat = iota
	// FormatUpdated is the UPDATED description field, e.g. "3 Jan 2018 16:20".
	FormatUpdated
)

var layouts = map[DateFormat]string{
	FormatPublished: "2/01/2006 3:04:05 PM",
	FormatUpdated:   "2 Jan 2006 15:04",
}

func (f DateFormat) String() string {
	switch f {
	case FormatPublished:
		return "published"
	case FormatUpdated:
		return "updated"
	}
	return fmt.Sprintf("DateFormat(%d)", int(f))
}

// DateError reports a timestamp that does not match its expected format.
type DateError struct {
	Value  string
	Format DateFormat
	Err    error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("malformed %s date %q: %v", e.Format, e.Value, e.Err)
}

func (e *DateError) Unwrap() error { return e.Err }

var sydney = mustLoadLocation(Zone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// NormalizeDate parses text as Sydney local time in the given format and
// returns it as RFC 3339 with the offset in effect at that instant.
func NormalizeDate(text string, f DateFormat) (string, error) {
	t, err := ParseDate(text, f)
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}

// ParseDate parses text as Sydney local time in the given format.
func ParseDate(text string, f DateFormat) (time.Time, error) {
	layout, ok := layouts[f]
	if !ok {
		return time.Time{}, &DateError{Value: text, Format: f, Err: eris.New("unknown format")}
	}

	t, err := time.ParseInLocation(layout, text, sydney)
	if err != nil {
		return time.Time{}, &DateError{Value: text, Format: f, Err: err}
	}

	return t, nil
}
