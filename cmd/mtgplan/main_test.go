package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--log-level", "ERROR"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestParseSlot(t *testing.T) {
	c, err := parseSlot("2026-01-19, 20:00 ,21:00")
	require.NoError(t, err)
	assert.Equal(t, model.Candidate{Date: "2026-01-19", Start: "20:00", End: "21:00"}, c)

	_, err = parseSlot("2026-01-19 20:00")
	assert.Error(t, err)
}

func TestLineCommand(t *testing.T) {
	out, err := run(t, "line", "--base", "Tokyo", "-p", "New York", "--slot", "2026-01-19,20:00,21:00")
	require.NoError(t, err)
	assert.Equal(t, "Jan 19, 2026 (Mon): 8:00 PM–9:00 PM JST / 6:00 AM–7:00 AM EST\n", out)
}

func TestLineCommandDefaultsAnd24h(t *testing.T) {
	out, err := run(t, "line", "--24h", "--slot", "2026-01-19,20:00,21:00")
	require.NoError(t, err)
	assert.Equal(t, "Jan 19, 2026 (Mon): 20:00–21:00 EST / 10:00–11:00 JST (+1d)\n", out)
}

func TestLineCommandErrors(t *testing.T) {
	_, err := run(t, "line", "--base", "Tokyo")
	assert.ErrorContains(t, err, "--slot")

	_, err = run(t, "line", "--base", "Atlantis", "--slot", "2026-01-19,20:00,21:00")
	assert.ErrorIs(t, err, tz.ErrUnknownZone)

	_, err = run(t, "line", "--slot", "2026-01-19,21:00,20:00")
	assert.ErrorIs(t, err, tz.ErrInvalidWindow)
}

func TestTableCommand(t *testing.T) {
	out, err := run(t, "table", "--base", "Tokyo", "-p", "Bangalore", "--slot", "2026-01-19,20:00,21:00")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "2026-01-19 20:00-21:00 Tokyo\nCity"), out)
	assert.Contains(t, out, "2026-01-19 16:30")
	assert.Contains(t, out, "UTC+5:30")
}

func TestICSAndImportCommands(t *testing.T) {
	invite := filepath.Join(t.TempDir(), "invite.ics")
	_, err := run(t, "ics", "--base", "Tokyo", "-p", "New York",
		"--slot", "2026-01-20,09:00,10:00",
		"--slot", "2026-01-19,20:00,21:00",
		"--summary", "Sync", "-o", invite)
	require.NoError(t, err)

	body, err := os.ReadFile(invite)
	require.NoError(t, err)
	assert.Contains(t, string(body), "METHOD:REQUEST")

	out, err := run(t, "import", "--base", "Tokyo", "-p", "New York", invite)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Jan 19, 2026 (Mon): 8:00 PM–9:00 PM JST / 6:00 AM–7:00 AM EST",
		"Jan 20, 2026 (Tue): 9:00 AM–10:00 AM JST / 7:00 PM–8:00 PM EST (-1d)",
	}, "\n")+"\n", out)
}

func TestCitiesCommand(t *testing.T) {
	out, err := run(t, "cities")
	require.NoError(t, err)
	assert.Contains(t, out, "Asia/Tokyo")
	assert.Contains(t, out, "NYC, New York City")
}
