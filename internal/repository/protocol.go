package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/arrayops/telescopecm/internal/logger"
	"github.com/arrayops/telescopecm/internal/model"
	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// sameConnectionSeconds is the tolerance window within which a new connection
// start is treated as a re-entry of an existing open connection rather than a
// replacement.
const sameConnectionSeconds = 60

// AddParts inserts new part records. A part that already exists and is active
// at its proposed start is skipped with a warning; a stopped part is restarted
// with a fresh open interval beginning at the proposed start.
func AddParts(ctx context.Context, w Writer, parts []model.Part, log *logger.Logger) error {
	for _, p := range parts {
		existing, ok, err := w.GetPart(ctx, p.PN)
		if err != nil {
			return err
		}
		if !ok {
			if err := w.PutPart(ctx, p); err != nil {
				return err
			}
			continue
		}
		if existing.ActiveAt(p.Start) {
			log.Warnf("part %s already active, not re-adding", p.PN)
			continue
		}
		if err := w.PutPart(ctx, existing.Restarted(p.Start)); err != nil {
			return err
		}
		log.Warnf("part %s was stopped, restarting at %d", p.PN, p.Start)
	}
	return nil
}

// StopParts closes the validity interval of each named part at the given
// instant. A part that is already stopped is skipped unless override is set.
// An unknown part number is an error.
func StopParts(ctx context.Context, w Writer, pns []string, at int64, override bool, log *logger.Logger) error {
	for _, pn := range pns {
		existing, ok, err := w.GetPart(ctx, pn)
		if err != nil {
			return err
		}
		if !ok {
			return tcmerrors.NewNotFoundError("part", strings.ToUpper(pn))
		}
		if existing.Stop != nil && !override {
			log.Warnf("part %s already stopped at %d, use override to move the stop time", existing.PN, *existing.Stop)
			continue
		}
		if err := w.PutPart(ctx, existing.Stopped(at)); err != nil {
			return err
		}
	}
	return nil
}

// AddConnections inserts new connection records. An open connection on the
// same endpoints starting within the tolerance window is treated as the same
// connection and skipped; any other open connection on the same endpoints is
// closed at the new connection's start before the insert.
func AddConnections(ctx context.Context, w Writer, conns []model.Connection, log *logger.Logger) error {
	for _, c := range conns {
		rows, err := w.ConnectionsBetween(ctx, c.UpstreamPart, c.UpstreamOutputPort, c.DownstreamPart, c.DownstreamInputPort)
		if err != nil {
			return err
		}
		duplicate := false
		for _, row := range rows {
			if row.Stop != nil {
				continue
			}
			if absInt64(row.Start-c.Start) <= sameConnectionSeconds {
				log.Warnf("connection %s already present at %d, skipping", c, row.Start)
				duplicate = true
				continue
			}
			start := c.Start
			if err := w.SetConnectionStop(ctx, row, &start); err != nil {
				return err
			}
			log.Warnf("connection %s superseded, closed at %d", row, c.Start)
		}
		if duplicate {
			continue
		}
		if err := w.PutConnection(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// StopConnections closes the open connection row matching each given
// connection's endpoints at the given instant. Endpoints with no open
// connection are skipped with a warning.
func StopConnections(ctx context.Context, w Writer, conns []model.Connection, at int64, log *logger.Logger) error {
	for _, c := range conns {
		rows, err := w.ConnectionsBetween(ctx, c.UpstreamPart, c.UpstreamOutputPort, c.DownstreamPart, c.DownstreamInputPort)
		if err != nil {
			return err
		}
		stopped := false
		for _, row := range rows {
			if row.Stop != nil {
				continue
			}
			if err := w.SetConnectionStop(ctx, row, &at); err != nil {
				return err
			}
			stopped = true
		}
		if !stopped {
			log.Warnf("no open connection %s to stop", c)
		}
	}
	return nil
}

// AddInfo appends a timestamped annotation to a part. The comment must be
// non-empty.
func AddInfo(ctx context.Context, w Writer, pn string, at int64, comment, reference string) error {
	if strings.TrimSpace(comment) == "" {
		return tcmerrors.NewValidationError("comment", "comment must not be empty", nil)
	}
	return w.AppendInfo(ctx, model.NewPartInfo(pn, at, comment, reference))
}

// UpdateApriori sets a new apriori status for an antenna starting at the
// given instant, closing the previous open interval at the same instant. The
// previous interval, if any, must be open and must start before the new one.
func UpdateApriori(ctx context.Context, w Writer, antenna, status string, at int64) error {
	latest, ok, err := w.LatestApriori(ctx, antenna)
	if err != nil {
		return err
	}
	if ok {
		if latest.Stop != nil {
			return tcmerrors.NewValidationError("apriori",
				fmt.Sprintf("latest status for %s is already stopped at %d", latest.Antenna, *latest.Stop), nil)
		}
		if latest.Start >= at {
			return tcmerrors.NewValidationError("apriori",
				fmt.Sprintf("new status for %s must start after %d", latest.Antenna, latest.Start), nil)
		}
		if err := w.SetAprioriStop(ctx, antenna, latest.Start, at); err != nil {
			return err
		}
	}
	return w.PutApriori(ctx, model.NewAprioriStatus(antenna, status, at))
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
