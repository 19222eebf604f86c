package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arrayops/telescopecm/internal/cmtime"
	"github.com/arrayops/telescopecm/internal/logger"
)

// dateTimeFlags is the shared trio of flags selecting the instant a command
// operates at.
type dateTimeFlags struct {
	date   string
	time   string
	format string
}

func addDateTimeFlags(cmd *cobra.Command, f *dateTimeFlags) {
	cmd.Flags().StringVar(&f.date, "date", "now", "Date: YYYY/M/D, YYYY-M-D, now, today, yesterday, lastweek, <, >, or a number")
	cmd.Flags().StringVar(&f.time, "time", "", "Time of day: H[:M[:S]] or decimal hours")
	cmd.Flags().StringVar(&f.format, "format", "", "Interpretation of a bare numeric date: gps, unix or jd")
}

// parse resolves the flags to GPS seconds.
func (f *dateTimeFlags) parse(log *logger.Logger) (int64, error) {
	var format cmtime.Format
	switch f.format {
	case "":
		format = cmtime.FormatNone
	case "gps":
		format = cmtime.FormatGPS
	case "unix":
		format = cmtime.FormatUnix
	case "jd":
		format = cmtime.FormatJD
	default:
		return 0, fmt.Errorf("unknown date format %q (want gps, unix or jd)", f.format)
	}
	return cmtime.Parse(f.date, f.time, format, log)
}
