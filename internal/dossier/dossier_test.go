package dossier

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/hookup"
	"github.com/arrayops/telescopecm/internal/model"
	"github.com/arrayops/telescopecm/internal/repository"
	"github.com/arrayops/telescopecm/internal/sysdef"
)

func seededSnapshot(t *testing.T, at int64) *active.Snapshot {
	t.Helper()

	ctx := context.Background()
	w := repository.NewMemStore()

	require.NoError(t, w.PutPart(ctx, model.NewPart("HH1", "station", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("A1", "antenna", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("S1", "snap", "", 100)))

	require.NoError(t, w.PutConnection(ctx, model.NewConnection("HH1", "ground", "A1", "ground", 100)))
	require.NoError(t, w.PutConnection(ctx, model.NewConnection("A1", "focus", "S1", "e2", 100)))

	require.NoError(t, w.AppendInfo(ctx, model.NewPartInfo("A1", 120, "feed swapped", "")))
	require.NoError(t, w.PutStation(ctx, model.NewStation("HH1", 100, 540901.6, 6601070.7, 1052.6)))

	return active.NewSnapshot(w, nil, at)
}

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
		},
		DefaultType: "signal",
	}
	def, err := sysdef.New(doc, "")
	require.NoError(t, err)
	return def
}

func TestBuildDossier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dossiers, err := Build(ctx, seededSnapshot(t, 150), []string{"A1"}, true)
	require.NoError(t, err)
	require.Len(t, dossiers, 1)

	d := dossiers["A1"]
	require.Equal(t, "antenna", d.Part.PartType)
	require.Equal(t, []string{"ground"}, d.InputPorts)
	require.Equal(t, []string{"focus"}, d.OutputPorts)
	require.Len(t, d.Notes, 1)
	require.Equal(t, "feed swapped", d.Notes[0].Comment)
	require.Nil(t, d.Station)
}

func TestBuildDossierStation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dossiers, err := Build(ctx, seededSnapshot(t, 150), []string{"HH1"}, true)
	require.NoError(t, err)

	d := dossiers["HH1"]
	require.NotNil(t, d.Station)
	require.InDelta(t, 540901.6, d.Station.Easting, 1e-6)
	require.Empty(t, d.InputPorts)
	require.Equal(t, []string{"ground"}, d.OutputPorts)
}

func TestRenderParts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dossiers, err := Build(ctx, seededSnapshot(t, 150), []string{"HH1", "A1"}, true)
	require.NoError(t, err)

	out := RenderParts(dossiers)
	require.Contains(t, out, "HH1")
	require.Contains(t, out, "A1")
	require.Contains(t, out, "antenna")
	require.Contains(t, out, "focus")
}

func TestRenderPartsCSV(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dossiers, err := Build(ctx, seededSnapshot(t, 150), []string{"A1"}, true)
	require.NoError(t, err)

	out, err := RenderPartsCSV(dossiers)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "Part,Type,Input ports,Output ports,Start,Stop", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "A1,antenna,ground,focus,"))
}

func TestRenderHookupTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snap := seededSnapshot(t, 150)
	engine := hookup.NewEngine(snap, testDefinition(t), nil)
	entries, err := engine.Resolve(ctx, []string{"HH1"}, true)
	require.NoError(t, err)

	out := RenderHookup(snap, entries, false)
	require.Contains(t, out, "e-ground")
	require.Contains(t, out, "HH1")
	require.Contains(t, out, "A1")
	require.Contains(t, out, "S1")

	csvOut, err := RenderHookupCSV(snap, entries, false)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "part,pol-port,station,antenna,snap,start,stop", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "HH1,e-ground,HH1,A1,S1,"))
}

func TestRenderHookupFullOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := repository.NewMemStore()
	require.NoError(t, w.PutPart(ctx, model.NewPart("HH1", "station", "", 100)))
	require.NoError(t, w.PutPart(ctx, model.NewPart("A1", "antenna", "", 100)))
	require.NoError(t, w.PutConnection(ctx, model.NewConnection("HH1", "ground", "A1", "ground", 100)))

	snap := active.NewSnapshot(w, nil, 150)
	entries, err := hookup.NewEngine(snap, testDefinition(t), nil).Resolve(ctx, []string{"HH1"}, true)
	require.NoError(t, err)

	csvOut, err := RenderHookupCSV(snap, entries, true)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(csvOut), "\n")
	require.Len(t, lines, 1)
}

func TestHookupNotes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snap := seededSnapshot(t, 150)
	require.NoError(t, snap.LoadInfo(ctx))

	entries, err := hookup.NewEngine(snap, testDefinition(t), nil).Resolve(ctx, []string{"HH1"}, true)
	require.NoError(t, err)

	notes := Notes(snap, entries)
	require.Len(t, notes, 1)
	require.Equal(t, "feed swapped", notes["A1"][0].Comment)
}
