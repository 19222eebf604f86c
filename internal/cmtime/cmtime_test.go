package cmtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// 2019-01-01T00:00:00Z in the three representations.
const (
	refUnix = int64(1546300800)
	refGPS  = int64(1230336018)
	refJD   = 2458484.5
)

func TestConversions(t *testing.T) {
	t.Parallel()

	require.Equal(t, refGPS, FromUnix(refUnix))
	require.Equal(t, refGPS, FromJD(refJD))
	require.Equal(t, refGPS, FromTime(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), ToTime(refGPS))
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2019-01-01 00:00:00", Display(refGPS))
	require.Equal(t, "None", DisplayStop(nil))
	s := refGPS
	require.Equal(t, "2019-01-01 00:00:00", DisplayStop(&s))
}

func TestParseCalendarDates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		date      string
		timeOfDay string
		want      int64
	}{
		{"dashes", "2019-1-1", "", refGPS},
		{"slashes", "2019/01/01", "", refGPS},
		{"colon time", "2019-1-1", "12:30", refGPS + 45000},
		{"full time", "2019-1-1", "1:2:3", refGPS + 3723},
		{"decimal hours", "2019-1-1", "1.5", refGPS + 5400},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.date, tc.timeOfDay, FormatNone, nil)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseNumericFormats(t *testing.T) {
	t.Parallel()

	gps, err := Parse("1230336018", "", FormatGPS, nil)
	require.NoError(t, err)
	require.Equal(t, refGPS, gps)

	unix, err := Parse("1546300800", "", FormatUnix, nil)
	require.NoError(t, err)
	require.Equal(t, refGPS, unix)

	jd, err := Parse("2458484.5", "", FormatJD, nil)
	require.NoError(t, err)
	require.Equal(t, refGPS, jd)

	// Ambiguous bare number inside the JD window defaults to Julian day.
	assumed, err := Parse("2458484.5", "", FormatNone, nil)
	require.NoError(t, err)
	require.Equal(t, refGPS, assumed)

	// Ambiguous bare number outside the JD window is rejected.
	_, err = Parse("1546300800", "", FormatNone, nil)
	var dateErr *tcmerrors.DateParseError
	require.ErrorAs(t, err, &dateErr)
	require.Equal(t, "1546300800", dateErr.Input)
}

func TestParseSentinelsAndRelativeTokens(t *testing.T) {
	fixed := time.Date(2020, 6, 15, 10, 30, 0, 0, time.UTC)
	restore := nowFunc
	nowFunc = func() time.Time { return fixed }
	t.Cleanup(func() { nowFunc = restore })

	now, err := Parse("now", "", FormatNone, nil)
	require.NoError(t, err)
	require.Equal(t, FromTime(fixed), now)

	current, err := Parse("CURRENT", "", FormatNone, nil)
	require.NoError(t, err)
	require.Equal(t, FromTime(fixed), current)

	past, err := Parse("<", "", FormatNone, nil)
	require.NoError(t, err)
	require.Equal(t, FromTime(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)), past)

	future, err := Parse(">", "", FormatNone, nil)
	require.NoError(t, err)
	require.Equal(t, FromTime(fixed.AddDate(0, 0, 1000)), future)

	yesterday, err := Parse("yesterday", "", FormatNone, nil)
	require.NoError(t, err)
	require.Equal(t, FromTime(time.Date(2020, 6, 14, 0, 0, 0, 0, time.UTC)), yesterday)

	lastweek, err := Parse("lastweek", "", FormatNone, nil)
	require.NoError(t, err)
	require.Equal(t, FromTime(time.Date(2020, 6, 8, 0, 0, 0, 0, time.UTC)), lastweek)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		date      string
		timeOfDay string
	}{
		{"empty", "", ""},
		{"garbage date", "not-a-date", ""},
		{"bad time", "2019-1-1", "noon"},
		{"too many fields", "2019-1-1", "1:2:3:4"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tc.date, tc.timeOfDay, FormatNone, nil)
			var dateErr *tcmerrors.DateParseError
			require.ErrorAs(t, err, &dateErr)
		})
	}
}
