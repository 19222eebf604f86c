// Package repository persists the as-built configuration records and serves
// the point-in-time range queries the active snapshot is built from. Two
// implementations ship: an in-memory store for tests and library embedders,
// and a SQLite store for the CLI.
package repository

import (
	"context"

	"github.com/arrayops/telescopecm/internal/model"
)

// Store is the read side consumed by snapshot construction. Every method
// filters by validity at (or before) the given instant; ordering of the
// returned slices is implementation-defined and callers sort as needed.
type Store interface {
	// PartsActiveAt returns every part whose validity interval contains at.
	PartsActiveAt(ctx context.Context, at int64) ([]model.Part, error)

	// ConnectionsActiveAt returns every connection whose validity interval
	// contains at.
	ConnectionsActiveAt(ctx context.Context, at int64) ([]model.Connection, error)

	// InfoPostedBefore returns every part info record posted at or before at.
	InfoPostedBefore(ctx context.Context, at int64) ([]model.PartInfo, error)

	// StationsCreatedBefore returns every station created at or before at.
	StationsCreatedBefore(ctx context.Context, at int64) ([]model.Station, error)

	// AprioriActiveAt returns every apriori status whose interval contains at.
	AprioriActiveAt(ctx context.Context, at int64) ([]model.AprioriStatus, error)
}

// Writer extends Store with the record-level operations the write protocol
// composes. Callers should go through the protocol functions (AddParts,
// AddConnections, ...) rather than using these directly.
type Writer interface {
	Store

	// GetPart returns the part record for pn, if one exists.
	GetPart(ctx context.Context, pn string) (model.Part, bool, error)

	// PutPart inserts or replaces the part record keyed by part number.
	PutPart(ctx context.Context, p model.Part) error

	// ConnectionsBetween returns every connection row (any validity) with the
	// given endpoints and ports.
	ConnectionsBetween(ctx context.Context, upstreamPart, upstreamPort, downstreamPart, downstreamPort string) ([]model.Connection, error)

	// PutConnection inserts a new connection row.
	PutConnection(ctx context.Context, c model.Connection) error

	// SetConnectionStop updates the stop time of the row identified by c's
	// endpoints, ports and start time.
	SetConnectionStop(ctx context.Context, c model.Connection, stop *int64) error

	// AppendInfo inserts a part info record.
	AppendInfo(ctx context.Context, info model.PartInfo) error

	// LatestApriori returns the most recently started status for the antenna,
	// if any exists.
	LatestApriori(ctx context.Context, antenna string) (model.AprioriStatus, bool, error)

	// SetAprioriStop closes the status row identified by antenna and start.
	SetAprioriStop(ctx context.Context, antenna string, start, stop int64) error

	// PutApriori inserts a new status row.
	PutApriori(ctx context.Context, s model.AprioriStatus) error

	// PutStation inserts or replaces a station record keyed by name.
	PutStation(ctx context.Context, s model.Station) error

	// Close releases any underlying resources.
	Close() error
}
