// Package active materializes the as-built configuration at a single instant:
// which parts, connections, annotations, stations and apriori statuses are
// valid at that time. Each index loads lazily on first use and is dropped
// when the snapshot time moves.
package active

import (
	"context"
	"sort"
	"strings"

	"github.com/arrayops/telescopecm/internal/logger"
	"github.com/arrayops/telescopecm/internal/model"
	"github.com/arrayops/telescopecm/internal/repository"
	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// timeEpsilonSeconds is how far the snapshot time may move before the loaded
// indexes are considered stale.
const timeEpsilonSeconds = 1

// Snapshot holds point-in-time indexes over the configuration store. It is
// not safe for concurrent use.
type Snapshot struct {
	store repository.Store
	log   *logger.Logger
	at    int64

	// Parts indexes active parts by part number.
	Parts map[string]model.Part

	// Up and Down index active connections by part number, then by the port
	// name on that part's side. Up holds each connection under its upstream
	// part and output port, Down under its downstream part and input port.
	Up   map[string]map[string]model.Connection
	Down map[string]map[string]model.Connection

	// Info indexes posted annotations by part number, sorted by posting time.
	Info map[string][]model.PartInfo

	// Stations indexes created stations by name.
	Stations map[string]model.Station

	// Apriori indexes the active status by antenna part number.
	Apriori map[string]model.AprioriStatus
}

// NewSnapshot creates an empty snapshot at the given instant. Nothing is
// loaded until the Load methods are called.
func NewSnapshot(store repository.Store, log *logger.Logger, at int64) *Snapshot {
	return &Snapshot{store: store, log: log, at: at}
}

// At returns the snapshot instant.
func (s *Snapshot) At() int64 {
	return s.at
}

// SetTime moves the snapshot to a new instant. Loaded indexes are dropped
// only if the time moved by more than the epsilon, so repeated queries at
// effectively the same instant reuse the loaded data.
func (s *Snapshot) SetTime(at int64) {
	delta := at - s.at
	if delta < 0 {
		delta = -delta
	}
	if delta <= timeEpsilonSeconds {
		return
	}
	s.at = at
	s.Parts = nil
	s.Up = nil
	s.Down = nil
	s.Info = nil
	s.Stations = nil
	s.Apriori = nil
}

// LoadParts populates the part index if it is not already loaded.
func (s *Snapshot) LoadParts(ctx context.Context) error {
	if s.Parts != nil {
		return nil
	}

	parts, err := s.store.PartsActiveAt(ctx, s.at)
	if err != nil {
		return err
	}

	s.Parts = make(map[string]model.Part, len(parts))
	for _, p := range parts {
		s.Parts[p.PN] = p
	}
	return nil
}

// LoadConnections populates the up/down connection indexes. A part-port pair
// carrying more than one active connection on the same side is a data fault
// and aborts the load with a DuplicatePortError.
func (s *Snapshot) LoadConnections(ctx context.Context) error {
	if s.Up != nil && s.Down != nil {
		return nil
	}

	conns, err := s.store.ConnectionsActiveAt(ctx, s.at)
	if err != nil {
		return err
	}

	up := make(map[string]map[string]model.Connection)
	down := make(map[string]map[string]model.Connection)
	for _, c := range conns {
		upPorts, ok := up[c.UpstreamPart]
		if !ok {
			upPorts = make(map[string]model.Connection)
			up[c.UpstreamPart] = upPorts
		}
		if _, exists := upPorts[c.UpstreamOutputPort]; exists {
			return tcmerrors.NewDuplicatePortError("up", c.UpKey())
		}
		upPorts[c.UpstreamOutputPort] = c

		downPorts, ok := down[c.DownstreamPart]
		if !ok {
			downPorts = make(map[string]model.Connection)
			down[c.DownstreamPart] = downPorts
		}
		if _, exists := downPorts[c.DownstreamInputPort]; exists {
			return tcmerrors.NewDuplicatePortError("down", c.DownKey())
		}
		downPorts[c.DownstreamInputPort] = c
	}

	s.Up = up
	s.Down = down
	return nil
}

// LoadInfo populates the annotation index, sorted by posting time then
// comment for determinism.
func (s *Snapshot) LoadInfo(ctx context.Context) error {
	if s.Info != nil {
		return nil
	}

	info, err := s.store.InfoPostedBefore(ctx, s.at)
	if err != nil {
		return err
	}

	s.Info = make(map[string][]model.PartInfo)
	for _, pi := range info {
		s.Info[pi.PN] = append(s.Info[pi.PN], pi)
	}
	for pn := range s.Info {
		entries := s.Info[pn]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].PostingTime != entries[j].PostingTime {
				return entries[i].PostingTime < entries[j].PostingTime
			}
			return entries[i].Comment < entries[j].Comment
		})
	}
	return nil
}

// LoadStations populates the station index.
func (s *Snapshot) LoadStations(ctx context.Context) error {
	if s.Stations != nil {
		return nil
	}

	stations, err := s.store.StationsCreatedBefore(ctx, s.at)
	if err != nil {
		return err
	}

	s.Stations = make(map[string]model.Station, len(stations))
	for _, st := range stations {
		s.Stations[st.Name] = st
	}
	return nil
}

// LoadApriori populates the apriori status index. Two statuses active for the
// same antenna at the same instant is a data fault and aborts the load with a
// DuplicateStatusError.
func (s *Snapshot) LoadApriori(ctx context.Context) error {
	if s.Apriori != nil {
		return nil
	}

	statuses, err := s.store.AprioriActiveAt(ctx, s.at)
	if err != nil {
		return err
	}

	s.Apriori = make(map[string]model.AprioriStatus, len(statuses))
	for _, a := range statuses {
		if _, exists := s.Apriori[a.Antenna]; exists {
			s.Apriori = nil
			return tcmerrors.NewDuplicateStatusError(a.Antenna)
		}
		s.Apriori[a.Antenna] = a
	}
	return nil
}

// MatchParts resolves requested part numbers against the active part index.
// In exact mode only exact matches are returned; otherwise each request also
// expands to every active part number it prefixes, with the exact match
// first. LoadParts must have been called.
func (s *Snapshot) MatchParts(requested []string, exact bool) []string {
	known := make([]string, 0, len(s.Parts))
	for pn := range s.Parts {
		known = append(known, pn)
	}
	return model.MatchPartNumbers(requested, known, exact)
}

// PartsOfType returns the active part numbers of the given part type in NP
// key order. LoadParts must have been called.
func (s *Snapshot) PartsOfType(partType string) []string {
	partType = strings.ToLower(partType)
	var pns []string
	for pn, p := range s.Parts {
		if p.PartType == partType {
			pns = append(pns, pn)
		}
	}
	return model.SortKeys(pns, model.OrderNP)
}
