// Package hookup resolves end-to-end signal chains. Starting from a part, it
// walks the active connection graph toward the sky and toward the back end,
// guided by the topology definition's port tables, and classifies the
// resulting chain against the known hookup topologies.
package hookup

import (
	"context"
	"errors"
	"sort"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/logger"
	"github.com/arrayops/telescopecm/internal/model"
	"github.com/arrayops/telescopecm/internal/sysdef"
	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

// Timing is the validity window of a resolved chain: the latest start over
// its connections and the earliest stop, open only if every connection is
// open.
type Timing struct {
	Start int64
	Stop  *int64
}

// Entry is the resolved hookup for one part. Maps are keyed by
// "{polarization}-{port}", one key per realized starting port.
type Entry struct {
	PN       string
	PartType string

	// Hookup is the ordered connection chain per key, from the furthest
	// upstream point to the furthest downstream point.
	Hookup map[string][]model.Connection

	// HookupType names the first topology in the checking order whose part
	// chain covers every part type in the resolved chain; empty when the
	// chain conforms to none.
	HookupType map[string]string

	// Columns is the subsequence of the matched topology's part chain that
	// appears in the resolved chain, with trailing start/stop markers.
	Columns map[string][]string

	FullyConnected map[string]bool
	Timing         map[string]Timing
}

// Keys returns the entry's polarization-port keys in sorted order.
func (e *Entry) Keys() []string {
	keys := make([]string, 0, len(e.Hookup))
	for k := range e.Hookup {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Engine resolves hookups against one snapshot and one topology definition.
// It borrows both for the duration of the resolution calls and never mutates
// the snapshot's indexes.
type Engine struct {
	snap *active.Snapshot
	def  *sysdef.Definition
	log  *logger.Logger
}

// NewEngine creates an engine over a snapshot and a resolved topology
// definition.
func NewEngine(snap *active.Snapshot, def *sysdef.Definition, log *logger.Logger) *Engine {
	return &Engine{snap: snap, def: def, log: log}
}

// Resolve produces a hookup entry for every active part matching the
// requested part numbers, in exact or prefix mode. The result map is keyed
// by part number.
func (e *Engine) Resolve(ctx context.Context, requested []string, exact bool) (map[string]*Entry, error) {
	if err := e.snap.LoadParts(ctx); err != nil {
		return nil, err
	}
	if err := e.snap.LoadConnections(ctx); err != nil {
		return nil, err
	}

	entries := make(map[string]*Entry)
	for _, pn := range e.snap.MatchParts(requested, exact) {
		entry, err := e.resolvePart(pn)
		if err != nil {
			return nil, err
		}
		entries[pn] = entry
	}
	return entries, nil
}

func (e *Engine) resolvePart(pn string) (*Entry, error) {
	entry := &Entry{
		PN:             pn,
		PartType:       e.snap.Parts[pn].PartType,
		Hookup:         make(map[string][]model.Connection),
		HookupType:     make(map[string]string),
		Columns:        make(map[string][]string),
		FullyConnected: make(map[string]bool),
		Timing:         make(map[string]Timing),
	}

	for _, pol := range e.def.Polarizations {
		starts, err := e.startingPorts(pn, entry.PartType, pol)
		if err != nil {
			return nil, err
		}
		for _, start := range starts {
			chain, err := e.followStream(pn, entry.PartType, start.port, start.side, pol)
			if err != nil {
				return nil, err
			}
			key := model.PolPortKey(pol, start.port)
			if _, exists := entry.Hookup[key]; exists {
				continue
			}
			entry.Hookup[key] = chain
			e.classify(entry, key, chain)
		}
	}
	return entry, nil
}

// startingPort is a realized port on the starting part, tagged with the side
// of the part's port table it belongs to.
type startingPort struct {
	port string
	side sysdef.Side
}

// startingPorts enumerates the part's realized ports for a polarization:
// input ports (up side, fed via the down index) first, then output ports (down
// side, feeding via the up index). Ports not listed in the part type's tables
// for the polarization are skipped.
func (e *Engine) startingPorts(pn, partType, pol string) ([]startingPort, error) {
	var starts []startingPort

	inputPorts, err := e.def.PortList(partType, sysdef.Up, pol)
	if err != nil {
		return nil, err
	}
	for _, port := range sortedPorts(e.snap.Down[pn]) {
		if containsPort(inputPorts, port) {
			starts = append(starts, startingPort{port: port, side: sysdef.Up})
		}
	}

	outputPorts, err := e.def.PortList(partType, sysdef.Down, pol)
	if err != nil {
		return nil, err
	}
	for _, port := range sortedPorts(e.snap.Up[pn]) {
		if containsPort(outputPorts, port) {
			starts = append(starts, startingPort{port: port, side: sysdef.Down})
		}
	}

	return starts, nil
}

// followStream builds the full chain through the starting part: it walks from
// the starting port in the direction that side faces, then crosses the part
// via its through port and walks the other way. The result runs from the
// furthest upstream connection to the furthest downstream one.
func (e *Engine) followStream(pn, partType, port string, side sysdef.Side, pol string) ([]model.Connection, error) {
	visited := make(map[string]struct{})

	var upstream, downstream []model.Connection
	var err error

	if side == sysdef.Up {
		upstream, err = e.walk(pn, port, sysdef.Up, pol, visited)
	} else {
		downstream, err = e.walk(pn, port, sysdef.Down, pol, visited)
	}
	if err != nil {
		return nil, err
	}

	through, err := e.def.ThroughPort(port, side, pol, partType)
	if err != nil {
		return nil, err
	}
	if through != "" {
		if side == sysdef.Up {
			downstream, err = e.walk(pn, through, sysdef.Down, pol, visited)
		} else {
			upstream, err = e.walk(pn, through, sysdef.Up, pol, visited)
		}
		if err != nil {
			return nil, err
		}
	}

	chain := make([]model.Connection, 0, len(upstream)+len(downstream))
	for i := len(upstream) - 1; i >= 0; i-- {
		chain = append(chain, upstream[i])
	}
	chain = append(chain, downstream...)
	return chain, nil
}

// walk traverses the connection graph in one direction. Walking up follows
// the down index (who feeds this port); walking down follows the up index
// (whom this port feeds). A missing connection or an empty through port ends
// the walk; revisiting an edge is a cycle in the stored data and is an error.
func (e *Engine) walk(pn, port string, direction sysdef.Side, pol string, visited map[string]struct{}) ([]model.Connection, error) {
	var chain []model.Connection

	for {
		var conn model.Connection
		var ok bool
		if direction == sysdef.Up {
			conn, ok = e.snap.Down[pn][port]
		} else {
			conn, ok = e.snap.Up[pn][port]
		}
		if !ok {
			return chain, nil
		}

		if _, seen := visited[conn.Identity()]; seen {
			return nil, tcmerrors.NewCycleError(pn, port)
		}
		visited[conn.Identity()] = struct{}{}
		chain = append(chain, conn)

		var arrivalPort string
		if direction == sysdef.Up {
			pn = conn.UpstreamPart
			arrivalPort = conn.UpstreamOutputPort
		} else {
			pn = conn.DownstreamPart
			arrivalPort = conn.DownstreamInputPort
		}

		next, partType, err := e.throughPortAt(pn, arrivalPort, direction.Opposite(), pol)
		if err != nil {
			return nil, err
		}
		if next == "" {
			e.log.Warnf("no through port on %s (%s) from %s for pol %s", pn, partType, arrivalPort, pol)
			return chain, nil
		}
		port = next
	}
}

// throughPortAt resolves the exit port on the far side of a part the walk
// just arrived at. An unknown part (present in a connection but not active
// as a part) ends the walk softly rather than failing the resolution.
func (e *Engine) throughPortAt(pn, arrivalPort string, arrivalSide sysdef.Side, pol string) (string, string, error) {
	part, ok := e.snap.Parts[pn]
	if !ok {
		return "", "", nil
	}
	next, err := e.def.ThroughPort(arrivalPort, arrivalSide, pol, part.PartType)
	if err != nil {
		var unknown *tcmerrors.UnknownPartTypeError
		if errors.As(err, &unknown) {
			return "", part.PartType, nil
		}
		return "", part.PartType, err
	}
	return next, part.PartType, nil
}

// classify matches the chain's observed part types against the checking
// order and fills in the per-key classification, completeness and timing.
func (e *Engine) classify(entry *Entry, key string, chain []model.Connection) {
	observed := e.observedTypes(entry, chain)

	hookupType := ""
	var path []string
	for _, name := range e.def.CheckingOrder {
		candidate, err := e.def.FullConnectionPath(name)
		if err != nil {
			continue
		}
		if coversAll(candidate, observed) {
			hookupType = name
			path = candidate
			break
		}
	}
	if hookupType == "" && len(chain) > 0 {
		e.log.Warnf("%s %s: parts did not conform to any hookup type", entry.PN, key)
	}

	entry.HookupType[key] = hookupType

	var columns []string
	for _, partType := range path {
		if _, ok := observed[partType]; ok {
			columns = append(columns, partType)
		}
	}
	if len(columns) > 0 {
		columns = append(columns, "start", "stop")
	}
	entry.Columns[key] = columns

	entry.FullyConnected[key] = hookupType != "" && len(chain) == len(path)-1
	entry.Timing[key] = chainTiming(chain)
}

// observedTypes collects the part types appearing anywhere in the chain,
// including the starting part when the chain is empty.
func (e *Engine) observedTypes(entry *Entry, chain []model.Connection) map[string]struct{} {
	observed := map[string]struct{}{entry.PartType: {}}
	for _, conn := range chain {
		if p, ok := e.snap.Parts[conn.UpstreamPart]; ok {
			observed[p.PartType] = struct{}{}
		}
		if p, ok := e.snap.Parts[conn.DownstreamPart]; ok {
			observed[p.PartType] = struct{}{}
		}
	}
	return observed
}

// chainTiming computes the chain's validity window: the latest start and the
// earliest non-open stop. The stop is open only if every connection is open.
func chainTiming(chain []model.Connection) Timing {
	var t Timing
	for i, conn := range chain {
		if i == 0 || conn.Start > t.Start {
			t.Start = conn.Start
		}
		if conn.Stop != nil && (t.Stop == nil || *conn.Stop < *t.Stop) {
			stop := *conn.Stop
			t.Stop = &stop
		}
	}
	return t
}

func coversAll(path []string, observed map[string]struct{}) bool {
	for partType := range observed {
		if !containsPort(path, partType) {
			return false
		}
	}
	return true
}

func containsPort(list []string, want string) bool {
	for _, p := range list {
		if p == want {
			return true
		}
	}
	return false
}

func sortedPorts(ports map[string]model.Connection) []string {
	keys := make([]string, 0, len(ports))
	for k := range ports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
