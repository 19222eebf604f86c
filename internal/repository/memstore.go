package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/arrayops/telescopecm/internal/model"
	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// MemStore is an in-memory Writer. It is safe for concurrent use and is the
// reference implementation the SQLite store is tested against.
type MemStore struct {
	mu          sync.RWMutex
	parts       map[string]model.Part
	connections []model.Connection
	info        []model.PartInfo
	apriori     []model.AprioriStatus
	stations    map[string]model.Station
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		parts:    make(map[string]model.Part),
		stations: make(map[string]model.Station),
	}
}

func (m *MemStore) PartsActiveAt(_ context.Context, at int64) ([]model.Part, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Part
	for _, p := range m.parts {
		if p.ActiveAt(at) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemStore) ConnectionsActiveAt(_ context.Context, at int64) ([]model.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Connection
	for _, c := range m.connections {
		if c.ActiveAt(at) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemStore) InfoPostedBefore(_ context.Context, at int64) ([]model.PartInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.PartInfo
	for _, pi := range m.info {
		if pi.PostingTime <= at {
			out = append(out, pi)
		}
	}
	return out, nil
}

func (m *MemStore) StationsCreatedBefore(_ context.Context, at int64) ([]model.Station, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Station
	for _, s := range m.stations {
		if s.Created <= at {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemStore) AprioriActiveAt(_ context.Context, at int64) ([]model.AprioriStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.AprioriStatus
	for _, a := range m.apriori {
		if a.ActiveAt(at) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) GetPart(_ context.Context, pn string) (model.Part, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.parts[strings.ToUpper(pn)]
	return p, ok, nil
}

func (m *MemStore) PutPart(_ context.Context, p model.Part) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.parts[p.PN] = p
	return nil
}

func (m *MemStore) ConnectionsBetween(_ context.Context, upstreamPart, upstreamPort, downstreamPart, downstreamPort string) ([]model.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	upstreamPart = strings.ToUpper(upstreamPart)
	upstreamPort = strings.ToLower(upstreamPort)
	downstreamPart = strings.ToUpper(downstreamPart)
	downstreamPort = strings.ToLower(downstreamPort)

	var out []model.Connection
	for _, c := range m.connections {
		if c.UpstreamPart == upstreamPart && c.UpstreamOutputPort == upstreamPort &&
			c.DownstreamPart == downstreamPart && c.DownstreamInputPort == downstreamPort {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemStore) PutConnection(_ context.Context, c model.Connection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connections = append(m.connections, c)
	return nil
}

func (m *MemStore) SetConnectionStop(_ context.Context, c model.Connection, stop *int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.connections {
		if m.connections[i].Identity() == c.Identity() {
			m.connections[i].Stop = stop
			return nil
		}
	}
	return tcmerrors.NewNotFoundError("connection", c.Identity())
}

func (m *MemStore) AppendInfo(_ context.Context, info model.PartInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.info = append(m.info, info)
	return nil
}

func (m *MemStore) LatestApriori(_ context.Context, antenna string) (model.AprioriStatus, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	antenna = strings.ToUpper(antenna)
	var latest model.AprioriStatus
	found := false
	for _, a := range m.apriori {
		if a.Antenna != antenna {
			continue
		}
		if !found || a.Start > latest.Start {
			latest = a
			found = true
		}
	}
	return latest, found, nil
}

func (m *MemStore) SetAprioriStop(_ context.Context, antenna string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	antenna = strings.ToUpper(antenna)
	for i := range m.apriori {
		if m.apriori[i].Antenna == antenna && m.apriori[i].Start == start {
			m.apriori[i].Stop = &stop
			return nil
		}
	}
	return tcmerrors.NewNotFoundError("apriori status", antenna)
}

func (m *MemStore) PutApriori(_ context.Context, s model.AprioriStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apriori = append(m.apriori, s)
	return nil
}

func (m *MemStore) PutStation(_ context.Context, s model.Station) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stations[s.Name] = s
	return nil
}

func (m *MemStore) Close() error {
	return nil
}
