package hookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/model"
	"github.com/arrayops/telescopecm/internal/repository"
	"github.com/arrayops/telescopecm/internal/sysdef"
	tcmerrors "github.com/arrayops/telescopecm/pkg/errors"
)

func testDefinition(t *testing.T) *sysdef.Definition {
	t.Helper()

	doc := &sysdef.Document{
		PolarizationDefs: map[string][]string{"signal": {"e"}},
		HookupDefs:       map[string][]string{"signal": {"station", "antenna", "snap"}},
		Components: map[string]sysdef.PortTable{
			"station": {
				Up:   map[string][]string{"e": {"ground"}},
				Down: map[string][]string{"e": {"ground"}},
			},
			"antenna": {
				Up:   map[string][]string{"e": {"ground"}},
				Down: map[string][]string{"e": {"focus"}},
			},
			"snap": {
				Up:   map[string][]string{"e": {"e2", "e6"}},
				Down: map[string][]string{"e": {"rack"}},
			},
			"widget": {
				Up:   map[string][]string{"e": {"win"}},
				Down: map[string][]string{"e": {"wout"}},
			},
			"loopy": {
				Up:   map[string][]string{"e": {"in"}},
				Down: map[string][]string{"e": {"out"}},
			},
		},
		DefaultType: "signal",
	}
	require.NoError(t, sysdef.ValidateDocument(doc))

	def, err := sysdef.New(doc, "")
	require.NoError(t, err)
	return def
}

func newEngine(t *testing.T, store repository.Store, at int64) *Engine {
	t.Helper()
	return NewEngine(active.NewSnapshot(store, nil, at), testDefinition(t), nil)
}

func seedChain(t *testing.T, withSnap bool) *repository.MemStore {
	t.Helper()

	ctx := context.Background()
	w := repository.NewMemStore()

	require.NoError(t, w.PutPart(ctx, model.NewPart("HH1", "station", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("A1", "antenna", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("S1", "snap", "", 100)))

	require.NoError(t, w.PutConnection(ctx, model.NewConnection("HH1", "ground", "A1", "ground", 100)))
	if withSnap {
		require.NoError(t, w.PutConnection(ctx, model.NewConnection("A1", "focus", "S1", "e2", 200).Stopped(500)))
	}
	return w
}

func TestResolveFullChain(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, seedChain(t, true), 300)
	entries, err := engine.Resolve(context.Background(), []string{"HH1"}, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries["HH1"]
	require.Equal(t, "station", entry.PartType)
	require.Equal(t, []string{"e-ground"}, entry.Keys())

	chain := entry.Hookup["e-ground"]
	require.Len(t, chain, 2)
	require.Equal(t, "HH1", chain[0].UpstreamPart)
	require.Equal(t, "A1", chain[1].UpstreamPart)
	require.Equal(t, "S1", chain[1].DownstreamPart)

	require.Equal(t, "signal", entry.HookupType["e-ground"])
	require.True(t, entry.FullyConnected["e-ground"])
	require.Equal(t, []string{"station", "antenna", "snap", "start", "stop"}, entry.Columns["e-ground"])

	timing := entry.Timing["e-ground"]
	require.Equal(t, int64(200), timing.Start)
	require.NotNil(t, timing.Stop)
	require.Equal(t, int64(500), *timing.Stop)
}

func TestResolveIncompleteChain(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, seedChain(t, false), 300)
	entries, err := engine.Resolve(context.Background(), []string{"HH1"}, true)
	require.NoError(t, err)

	entry := entries["HH1"]
	require.Len(t, entry.Hookup["e-ground"], 1)
	require.Equal(t, "signal", entry.HookupType["e-ground"])
	require.False(t, entry.FullyConnected["e-ground"])
	require.Equal(t, []string{"station", "antenna", "start", "stop"}, entry.Columns["e-ground"])

	timing := entry.Timing["e-ground"]
	require.Equal(t, int64(100), timing.Start)
	require.Nil(t, timing.Stop)
}

func TestResolveMidChainPart(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, seedChain(t, true), 300)
	entries, err := engine.Resolve(context.Background(), []string{"A1"}, true)
	require.NoError(t, err)

	entry := entries["A1"]
	require.Equal(t, []string{"e-focus", "e-ground"}, entry.Keys())

	// Both starting ports recover the same full chain.
	require.Equal(t, entry.Hookup["e-ground"], entry.Hookup["e-focus"])
	require.Len(t, entry.Hookup["e-ground"], 2)
	require.True(t, entry.FullyConnected["e-ground"])
	require.True(t, entry.FullyConnected["e-focus"])
}

func TestResolveDeterminism(t *testing.T) {
	t.Parallel()

	store := seedChain(t, true)

	first, err := newEngine(t, store, 300).Resolve(context.Background(), []string{"A1"}, true)
	require.NoError(t, err)
	second, err := newEngine(t, store, 300).Resolve(context.Background(), []string{"A1"}, true)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestResolvePrefixMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := seedChain(t, true)
	require.NoError(t, store.PutPart(ctx, model.NewPart("HH10", "station", "", 100)))

	entries, err := newEngine(t, store, 300).Resolve(ctx, []string{"HH1"}, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Contains(t, entries, "HH1")
	require.Contains(t, entries, "HH10")

	// The unconnected station still gets an entry with no keys.
	require.Empty(t, entries["HH10"].Hookup)
}

func TestResolveUnclassifiedChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := repository.NewMemStore()
	require.NoError(t, w.PutPart(ctx, model.NewPart("HH1", "station", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("A1", "antenna", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("W1", "widget", "", 100)))
	require.NoError(t, w.PutConnection(ctx, model.NewConnection("HH1", "ground", "A1", "ground", 100)))
	require.NoError(t, w.PutConnection(ctx, model.NewConnection("A1", "focus", "W1", "win", 100)))

	entries, err := newEngine(t, w, 300).Resolve(ctx, []string{"HH1"}, true)
	require.NoError(t, err)

	entry := entries["HH1"]
	require.Len(t, entry.Hookup["e-ground"], 2)
	require.Equal(t, "", entry.HookupType["e-ground"])
	require.False(t, entry.FullyConnected["e-ground"])
	require.Empty(t, entry.Columns["e-ground"])
}

func TestResolveCycleDetected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := repository.NewMemStore()
	require.NoError(t, w.PutPart(ctx, model.NewPart("A1", "loopy", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("B1", "loopy", "", 100)))
	require.NoError(t, w.PutConnection(ctx, model.NewConnection("A1", "out", "B1", "in", 100)))
	require.NoError(t, w.PutConnection(ctx, model.NewConnection("B1", "out", "A1", "in", 100)))

	_, err := newEngine(t, w, 300).Resolve(ctx, []string{"A1"}, true)
	var cycleErr *tcmerrors.CycleError
	require.ErrorAs(t, err, &cycleErr)
}
