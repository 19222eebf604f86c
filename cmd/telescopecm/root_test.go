package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSysdefYAML = `polarization_defs:
  signal: [e]
hookup_defs:
  signal: [station, antenna, snap]
components:
  station:
    up: {e: [ground]}
    down: {e: [ground]}
  antenna:
    up: {e: [ground]}
    down: {e: [focus]}
  snap:
    up: {e: [e2, e6]}
    down: {e: [rack]}
default_type: signal
`

// testWorkspace writes a sysdef document and returns the common flags
// pointing every command at a database inside a temp dir.
func testWorkspace(t *testing.T) []string {
	t.Helper()

	dir := t.TempDir()
	sysdefPath := filepath.Join(dir, "sysdef.yaml")
	require.NoError(t, os.WriteFile(sysdefPath, []byte(testSysdefYAML), 0o600))

	return []string{
		"--db", filepath.Join(dir, "cm.db"),
		"--sysdef", sysdefPath,
	}
}

func execute(t *testing.T, common []string, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append(append([]string{}, args...), common...))

	err := root.Execute()
	return buf.String(), err
}

func TestVersionCommandOutputsBuildInfo(t *testing.T) {
	originalVersion := version
	t.Cleanup(func() { version = originalVersion })
	version = "1.2.3"

	root := newRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "1.2.3")
}

func TestAddAndResolveHookup(t *testing.T) {
	common := testWorkspace(t)

	_, err := execute(t, common, "add-part", "HH1", "--type", "station", "--date", "2019/1/1")
	require.NoError(t, err)
	_, err = execute(t, common, "add-part", "A1", "--type", "antenna", "--date", "2019/1/1")
	require.NoError(t, err)
	_, err = execute(t, common, "add-part", "S1", "--type", "snap", "--date", "2019/1/1")
	require.NoError(t, err)

	_, err = execute(t, common, "add-connection",
		"--up", "HH1", "--up-port", "ground", "--down", "A1", "--down-port", "ground",
		"--date", "2019/1/2")
	require.NoError(t, err)
	_, err = execute(t, common, "add-connection",
		"--up", "A1", "--up-port", "focus", "--down", "S1", "--down-port", "e2",
		"--date", "2019/1/2")
	require.NoError(t, err)

	out, err := execute(t, common, "hookup", "HH1", "--exact", "--csv", "--date", "2019/6/1")
	require.NoError(t, err)
	require.Contains(t, out, "part,pol-port,station,antenna,snap,start,stop")
	require.Contains(t, out, "HH1,e-ground,HH1,A1,S1,")

	// Before the connections existed the chain is empty.
	out, err = execute(t, common, "hookup", "HH1", "--exact", "--csv", "--full-only", "--date", "2019/1/1", "--time", "12:00")
	require.NoError(t, err)
	require.NotContains(t, out, "HH1,e-ground,HH1,A1,S1,")
}

func TestDossierCommand(t *testing.T) {
	common := testWorkspace(t)

	_, err := execute(t, common, "add-part", "A1", "--type", "antenna", "--date", "2019/1/1")
	require.NoError(t, err)
	_, err = execute(t, common, "add-info", "A1", "--comment", "feed swapped", "--date", "2019/1/3")
	require.NoError(t, err)

	out, err := execute(t, common, "dossier", "A1", "--notes", "--date", "2019/6/1")
	require.NoError(t, err)
	require.Contains(t, out, "A1")
	require.Contains(t, out, "antenna")
	require.Contains(t, out, "feed swapped")
}

func TestStopPartCommand(t *testing.T) {
	common := testWorkspace(t)

	_, err := execute(t, common, "add-part", "A1", "--type", "antenna", "--date", "2019/1/1")
	require.NoError(t, err)
	_, err = execute(t, common, "stop-part", "A1", "--date", "2019/2/1")
	require.NoError(t, err)

	out, err := execute(t, common, "dossier", "A1", "--exact", "--csv", "--date", "2019/6/1")
	require.NoError(t, err)
	require.NotContains(t, out, "A1,antenna")
}

func TestAprioriCommands(t *testing.T) {
	common := testWorkspace(t)

	_, err := execute(t, common, "update-apriori", "A1", "commissioning", "--date", "2019/1/1")
	require.NoError(t, err)
	_, err = execute(t, common, "update-apriori", "A1", "ok", "--date", "2019/2/1")
	require.NoError(t, err)

	out, err := execute(t, common, "apriori", "--date", "2019/1/15")
	require.NoError(t, err)
	require.Contains(t, out, "commissioning")

	out, err = execute(t, common, "apriori", "--date", "2019/6/1")
	require.NoError(t, err)
	require.Contains(t, out, "ok")
	require.NotContains(t, out, "commissioning")
}

func TestSysdefCommand(t *testing.T) {
	common := testWorkspace(t)

	out, err := execute(t, common, "sysdef")
	require.NoError(t, err)
	require.Contains(t, out, "type:           signal")
	require.Contains(t, out, "station -> antenna -> snap")
	require.Contains(t, out, "snap/e: up [e2, e6] down [rack]")
}

func TestHookupRejectsUnknownFormat(t *testing.T) {
	common := testWorkspace(t)

	_, err := execute(t, common, "hookup", "HH1", "--date", "1230336018", "--format", "bogus")
	require.Error(t, err)
	require.Contains(t, err.Error(), "bogus")
}
