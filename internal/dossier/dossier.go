// Package dossier assembles and renders per-part reports: the part record,
// its realized ports, annotations, station coordinates, and tabular views of
// resolved hookups.
package dossier

import (
	"context"
	"sort"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/model"
)

// Dossier is everything known about one part at the snapshot instant.
type Dossier struct {
	Part model.Part

	// InputPorts and OutputPorts are the part's realized port names, sorted.
	InputPorts  []string
	OutputPorts []string

	// Notes are the part's annotations in posting order.
	Notes []model.PartInfo

	// Station carries coordinates when the part is a station.
	Station *model.Station
}

// Build assembles a dossier for every active part matching the requested
// part numbers. The result is keyed by part number.
func Build(ctx context.Context, snap *active.Snapshot, requested []string, exact bool) (map[string]*Dossier, error) {
	if err := snap.LoadParts(ctx); err != nil {
		return nil, err
	}
	if err := snap.LoadConnections(ctx); err != nil {
		return nil, err
	}
	if err := snap.LoadInfo(ctx); err != nil {
		return nil, err
	}
	if err := snap.LoadStations(ctx); err != nil {
		return nil, err
	}

	dossiers := make(map[string]*Dossier)
	for _, pn := range snap.MatchParts(requested, exact) {
		d := &Dossier{
			Part:        snap.Parts[pn],
			InputPorts:  portNames(snap.Down[pn]),
			OutputPorts: portNames(snap.Up[pn]),
			Notes:       snap.Info[pn],
		}
		if st, ok := snap.Stations[pn]; ok {
			station := st
			d.Station = &station
		}
		dossiers[pn] = d
	}
	return dossiers, nil
}

// Keys returns the dossier part numbers in NP key order.
func Keys(dossiers map[string]*Dossier) []string {
	pns := make([]string, 0, len(dossiers))
	for pn := range dossiers {
		pns = append(pns, pn)
	}
	return model.SortKeys(pns, model.OrderNP)
}

func portNames(ports map[string]model.Connection) []string {
	names := make([]string, 0, len(ports))
	for name := range ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
