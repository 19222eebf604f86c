// Package cmtime handles the configuration tracker's canonical timestamps.
// Every record stores GPS seconds; this package converts the accepted
// date/time literals (absolute dates, relative tokens, gps/unix/jd numbers)
// into that representation.
package cmtime

import (
	"strconv"
	"strings"
	"time"

	"github.com/arrayops/telescopecm/internal/logger"
	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// Format disambiguates bare numeric time literals.
type Format string

const (
	FormatNone Format = ""
	FormatGPS  Format = "gps"
	FormatUnix Format = "unix"
	FormatJD   Format = "jd"
)

const (
	// GPS epoch 1980-01-06T00:00:00Z in unix seconds.
	gpsEpochUnix = 315964800
	// Fixed GPS-UTC leap second offset. Correct for dates after 2017-01-01,
	// which covers the numeric sanity bounds below.
	leapSeconds = 18

	unixEpochJD = 2440587.5

	// Sentinel for "<": far past.
	pastDate = "2000-01-01"
	// Sentinel for ">": this many days ahead of now.
	futureDays = 1000
)

// Nominal sanity windows for bare numbers, bounded between 2010-01-01 and
// roughly 2030-01-01.
var numericBounds = map[Format][2]float64{
	FormatGPS:  {946339215.0, 1577404818.0},
	FormatJD:   {2455197.5, 2462501.5},
	FormatUnix: {1262332800.0, 1893398400.0},
}

var relativePastDays = map[string]int{
	"today":     0,
	"yesterday": 1,
	"lastweek":  7,
	"lastmonth": 30,
	"lastyear":  365,
}

// nowFunc is swapped in tests to pin "now".
var nowFunc = func() time.Time { return time.Now().UTC() }

// Now returns the current instant in GPS seconds.
func Now() int64 {
	return FromTime(nowFunc())
}

// FromTime converts a wall-clock time to GPS seconds.
func FromTime(t time.Time) int64 {
	return t.Unix() - gpsEpochUnix + leapSeconds
}

// ToTime converts GPS seconds to a UTC wall-clock time.
func ToTime(gps int64) time.Time {
	return time.Unix(gps+gpsEpochUnix-leapSeconds, 0).UTC()
}

// FromUnix converts unix seconds to GPS seconds.
func FromUnix(unix int64) int64 {
	return unix - gpsEpochUnix + leapSeconds
}

// FromJD converts a Julian day number to GPS seconds.
func FromJD(jd float64) int64 {
	unix := (jd - unixEpochJD) * 86400.0
	return FromUnix(int64(unix + 0.5))
}

// Display renders GPS seconds as a reader-friendly UTC string.
func Display(gps int64) string {
	return ToTime(gps).Format("2006-01-02 15:04:05")
}

// DisplayStop renders an optional stop time, using "None" for an open interval.
func DisplayStop(stop *int64) string {
	if stop == nil {
		return "None"
	}
	return Display(*stop)
}

// Parse resolves a date literal (plus optional time-of-day component) to GPS
// seconds. The accepted grammar, in resolution order:
//
//	"<"                      far past sentinel
//	">"                      far future sentinel (now + 1000 days)
//	"now", "current"         current instant
//	"today", "yesterday",
//	"lastweek", "lastmonth",
//	"lastyear"               midnight UTC of the relative day
//	bare number              gps/unix/jd seconds per format; an ambiguous
//	                         number with no format is taken as Julian day
//	                         when inside the JD sanity window (warned)
//	"YYYY/M/D", "YYYY-M-D"   calendar date, with timeOfDay either decimal
//	                         hours or "H[:M[:S]]"
//
// timeOfDay and format are ignored unless the date form uses them. The
// logger may be nil; range and ambiguity warnings are then dropped.
func Parse(date, timeOfDay string, format Format, log *logger.Logger) (int64, error) {
	trimmed := strings.TrimSpace(date)
	lowered := strings.ToLower(trimmed)

	switch {
	case trimmed == "":
		return 0, tcmerrors.NewDateParseError(date, "empty date")
	case trimmed == "<":
		return parseCalendar(pastDate, "", date)
	case trimmed == ">":
		return FromTime(nowFunc().AddDate(0, 0, futureDays)), nil
	case lowered == "now" || lowered == "current":
		return Now(), nil
	}

	if days, ok := relativePastDays[lowered]; ok {
		day := nowFunc().AddDate(0, 0, -days)
		midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		return FromTime(midnight), nil
	}

	if val, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return parseNumber(val, trimmed, format, log)
	}

	return parseCalendar(trimmed, timeOfDay, date)
}

func parseNumber(val float64, input string, format Format, log *logger.Logger) (int64, error) {
	switch format {
	case FormatGPS, FormatUnix, FormatJD:
		b := numericBounds[format]
		if val < b[0] || val > b[1] {
			log.Warnf("%s out of nominal range for %s", input, format)
		}
	case FormatNone:
		b := numericBounds[FormatJD]
		if val > b[0] && val < b[1] {
			log.Warnf("no time format given, assuming jd based on value %s", input)
			format = FormatJD
		} else {
			return 0, tcmerrors.NewDateParseError(input, "no time format given for ambiguous value")
		}
	default:
		return 0, tcmerrors.NewDateParseError(input, "invalid time format "+string(format))
	}

	switch format {
	case FormatGPS:
		return int64(val), nil
	case FormatUnix:
		return FromUnix(int64(val)), nil
	default:
		return FromJD(val), nil
	}
}

func parseCalendar(date, timeOfDay, original string) (int64, error) {
	normalized := strings.ReplaceAll(date, "/", "-")
	day, err := time.ParseInLocation("2006-1-2", normalized, time.UTC)
	if err != nil {
		return 0, tcmerrors.NewDateParseError(original, "date should be YYYY/M/D or YYYY-M-D")
	}

	if timeOfDay == "" {
		return FromTime(day), nil
	}

	seconds, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		return 0, err
	}
	return FromTime(day) + seconds, nil
}

// parseTimeOfDay accepts decimal hours or "H[:M[:S]]" and returns seconds
// past midnight.
func parseTimeOfDay(timeOfDay string) (int64, error) {
	if hours, err := strconv.ParseFloat(timeOfDay, 64); err == nil {
		return int64(hours * 3600.0), nil
	}

	if !strings.Contains(timeOfDay, ":") {
		return 0, tcmerrors.NewDateParseError(timeOfDay, "time should be H[:M[:S]]")
	}

	fields := strings.Split(timeOfDay, ":")
	if len(fields) > 3 {
		return 0, tcmerrors.NewDateParseError(timeOfDay, "time can only be hours[:minutes[:seconds]]")
	}

	var total float64
	divisor := 1.0
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, tcmerrors.NewDateParseError(timeOfDay, "time should be H[:M[:S]]")
		}
		total += v * 3600.0 / divisor
		divisor *= 60.0
	}
	return int64(total), nil
}
