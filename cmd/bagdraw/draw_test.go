package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Parkreiner/randombag"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestDrawDefaultsToOneTetrominoBag(t *testing.T) {
	out, _, err := execute(t, "draw", "--seed", "7")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"I", "J", "L", "O", "S", "T", "Z"}, lines(out))
}

func TestDrawIsDeterministicForASeed(t *testing.T) {
	first, _, err := execute(t, "draw", "--seed", "11", "--count", "21")
	require.NoError(t, err)
	second, _, err := execute(t, "draw", "--seed", "11", "--count", "21")
	require.NoError(t, err)

	require.Equal(t, first, second)
	drawn := lines(first)
	require.Len(t, drawn, 21)
	for i := 0; i < 21; i += 7 {
		require.ElementsMatch(t, []string{"I", "J", "L", "O", "S", "T", "Z"}, drawn[i:i+7])
	}
}

func TestDrawMutationsAndLabels(t *testing.T) {
	out, _, err := execute(t, "draw",
		"--seed", "3",
		"--pool", "a,b,c",
		"--add", "d",
		"--remove", "b",
		"--label", "a=Alpha",
		"--count", "3",
	)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Alpha", "c", "d"}, lines(out))
}

func TestDrawPeekShowsUpcomingDraws(t *testing.T) {
	out, _, err := execute(t, "draw", "--seed", "5", "--count", "9", "--peek", "3")
	require.NoError(t, err)

	all, _, err := execute(t, "draw", "--seed", "5", "--count", "12")
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 10)
	require.Equal(t, lines(all)[:9], got[:9])
	require.Equal(t, "next: "+strings.Join(lines(all)[9:], " "), got[9])
}

func TestDrawSnapshot(t *testing.T) {
	out, _, err := execute(t, "draw", "--seed", "9", "--pool", "x,y", "--count", "1", "--snapshot")
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 2)

	var snap randombag.Snapshot[string, string]
	require.NoError(t, json.Unmarshal([]byte(got[1]), &snap))
	require.Equal(t, []string{"x", "y"}, snap.Pool)
	require.Len(t, snap.Pending, 1)
	require.ElementsMatch(t, []string{"x", "y"}, []string{got[0], snap.Pending[0]})
}

func TestDrawEmptyPool(t *testing.T) {
	_, _, err := execute(t, "draw", "--pool", "a", "--remove", "a", "--count", "1")
	require.ErrorIs(t, err, randombag.ErrEmptyPool)
}

func TestDrawFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bagdraw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bag:
  pool: [red, green]
  seed: 4
draw:
  count: 4
`), 0o600))

	out, _, err := execute(t, "draw", "--config", path)
	require.NoError(t, err)
	drawn := lines(out)
	require.Len(t, drawn, 4)
	require.ElementsMatch(t, []string{"red", "green"}, drawn[:2])

	// Flags beat the file.
	out, _, err = execute(t, "draw", "--config", path, "--count", "2", "--pool", "blue")
	require.NoError(t, err)
	require.Equal(t, []string{"blue", "blue"}, lines(out))
}

func TestDrawLogsToStderr(t *testing.T) {
	out, errOut, err := execute(t, "draw", "--seed", "1", "--count", "1", "--log-level", "debug", "--log-format", "json")
	require.NoError(t, err)
	require.Len(t, lines(out), 1)
	require.Contains(t, errOut, `"event_type":"bag_queued"`)
	require.Contains(t, errOut, `"event_type":"draw"`)
}

func TestDrawRejectsBadFlags(t *testing.T) {
	_, _, err := execute(t, "draw", "--peek", "-1")
	require.Error(t, err)

	_, _, err = execute(t, "draw", "--log-level", "loud")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, version, strings.TrimSpace(out))
}

func TestDrawEventsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	out, _, err := execute(t, "draw", "--seed", "2", "--pool", "a,b", "--count", "2", "--events-file", path)
	require.NoError(t, err)
	require.Len(t, lines(out), 2)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	logged := lines(string(content))
	require.Len(t, logged, 3)
	require.Contains(t, logged[0], "[type bag_queued]")
	require.Contains(t, logged[1], "[type draw]")
	require.Contains(t, logged[2], "[type draw]")
}

func TestDrawDefaultCountFollowsPool(t *testing.T) {
	out, _, err := execute(t, "draw", "--seed", "8", "--pool", "a,b,c", "--add", "d")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c", "d"}, lines(out))
}
