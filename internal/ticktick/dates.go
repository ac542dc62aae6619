package ticktick

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DateLayout is the open API's datetime format.
const DateLayout = "2006-01-02T15:04:05-0700"

// TimezoneEnv names the user time zone used for naive dates.
const TimezoneEnv = "TICKTICK_USER_TIMEZONE"

// zonedLayouts are accepted when a value carries an explicit offset.
var zonedLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000Z0700",
	time.RFC3339Nano,
}

// naiveLayouts are interpreted in the user location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// UserLocation resolves TICKTICK_USER_TIMEZONE, falling back to the process
// local zone when it is unset.
func UserLocation() (*time.Location, error) {
	name := strings.TrimSpace(os.Getenv(TimezoneEnv))
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s %q", TimezoneEnv, name)
	}
	return loc, nil
}

// ParseDate parses a provider or user supplied date. Values without an offset
// are read in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("unrecognized date %q", s)
}

// NormalizeDateTime renders s in DateLayout. Naive values are placed in loc;
// values with an offset keep it. An empty input stays empty.
func NormalizeDateTime(s string, loc *time.Location) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, err := ParseDate(s, loc)
	if err != nil {
		return "", NewValidationError("date", "%q is not a recognized date or datetime", s)
	}
	return t.Format(DateLayout), nil
}
