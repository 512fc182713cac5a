package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"neuroconv/internal/metadata"
	"neuroconv/pkg/contracts"
	"neuroconv/pkg/contracts/domain"
)

func testSession() *domain.Session {
	var m domain.MapRow
	m.Tetrode = "TT0"
	m.SourceFile = "ESCELL~1.RMA"
	m.TaskType = domain.TaskEscher
	m.CellNumber = 1
	m.RateMap[0][0] = 2.5
	m.RateMap[63][63] = 7.5
	m.OccupancyMap[0][0] = 3
	m.OccupancyMap[63][63] = 4

	return &domain.Session{
		Subject: "FD4RAT1",
		Epochs: []domain.Epoch{
			{StartTime: 0, StopTime: 600, TaskType: domain.TaskBaseline},
			{StartTime: 600, StopTime: 1200, TaskType: domain.TaskEscher},
		},
		Units: []domain.Unit{
			{Tetrode: "TT0", ClusterID: domain.NoCluster, SpikeTimes: []float64{0.5}},
			{Tetrode: "TT0", ClusterID: 2, SpikeTimes: []float64{1.0, 2.0, 3.0}},
		},
		Position: []domain.PositionSample{
			{Time: 1.0, X: 10, Y: 20},
			{Time: 2.0, X: 11, Y: 21},
		},
		RateMaps: []domain.MapRow{m},
	}
}

func testMeta() metadata.SessionMetadata {
	return metadata.SessionMetadata{
		SubjectFolder: "FD4RAT1",
		RatID:         "Rat1",
		SessionDate:   time.Date(1998, 4, 20, 9, 57, 0, 0, time.UTC),
		Description:   "Flight Day 4 recording",
	}
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	outDir := t.TempDir()
	w := NewWriter(Config{
		OutputDir:        outDir,
		TaskDescriptions: metadata.TaskDescriptions,
	})
	return w, outDir
}

func TestWriteSessionLayout(t *testing.T) {
	w, outDir := newTestWriter(t)

	dir, err := w.WriteSession(testMeta(), testSession())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "FD4RAT1"), dir)

	for _, name := range []string{
		"session.xlsx",
		"spike_times.csv",
		"position.csv",
		filepath.Join("maps", "TT0_ESCELL~1_rate.csv"),
		filepath.Join("maps", "TT0_ESCELL~1_occupancy.csv"),
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s to exist", name)
	}
}

func TestWriteSessionWorkbook(t *testing.T) {
	w, _ := newTestWriter(t)

	dir, err := w.WriteSession(testMeta(), testSession())
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(dir, "session.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Session", "Epochs", "Units", "RateMaps"}, f.GetSheetList())

	// Session sheet carries the metadata and a non-empty identifier.
	id, err := f.GetCellValue("Session", "B1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	subject, err := f.GetCellValue("Session", "B2")
	require.NoError(t, err)
	assert.Equal(t, "FD4RAT1", subject)
	version, err := f.GetCellValue("Session", "B11")
	require.NoError(t, err)
	assert.Equal(t, contracts.GetVersionString(), version)

	// Epoch rows keep merge order and carry the task description.
	task, err := f.GetCellValue("Epochs", "C2")
	require.NoError(t, err)
	assert.Equal(t, "BL", task)
	desc, err := f.GetCellValue("Epochs", "D3")
	require.NoError(t, err)
	assert.Contains(t, desc, "Escher Staircase")

	// Unit summary row.
	count, err := f.GetCellValue("Units", "C3")
	require.NoError(t, err)
	assert.Equal(t, "3", count)

	// Map summary row: peak over the rate matrix, occupancy sum.
	peak, err := f.GetCellValue("RateMaps", "E2")
	require.NoError(t, err)
	assert.Equal(t, "7.5", peak)
	occ, err := f.GetCellValue("RateMaps", "F2")
	require.NoError(t, err)
	assert.Equal(t, "7", occ)
}

func TestWriteSessionCSVContents(t *testing.T) {
	w, _ := newTestWriter(t)

	dir, err := w.WriteSession(testMeta(), testSession())
	require.NoError(t, err)

	spikes, err := os.ReadFile(filepath.Join(dir, "spike_times.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(spikes)), "\n")
	require.Len(t, lines, 5) // header + 4 spikes
	assert.Equal(t, "tetrode,cluster_id,time_s", lines[0])
	assert.Equal(t, "TT0,-1,0.5", lines[1])
	assert.Equal(t, "TT0,2,1", lines[2])

	position, err := os.ReadFile(filepath.Join(dir, "position.csv"))
	require.NoError(t, err)
	posLines := strings.Split(strings.TrimSpace(string(position)), "\n")
	assert.Equal(t, "time_s,x,y", posLines[0])
	assert.Equal(t, "1,10,20", posLines[1])

	grid, err := os.ReadFile(filepath.Join(dir, "maps", "TT0_ESCELL~1_rate.csv"))
	require.NoError(t, err)
	gridLines := strings.Split(strings.TrimSpace(string(grid)), "\n")
	require.Len(t, gridLines, 64)
	assert.True(t, strings.HasPrefix(gridLines[0], "2.5,0,"))
	assert.True(t, strings.HasSuffix(gridLines[63], ",7.5"))
}

func TestWriteSessionNoPosition(t *testing.T) {
	w, _ := newTestWriter(t)

	session := testSession()
	session.Position = nil

	dir, err := w.WriteSession(testMeta(), session)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "position.csv"))
	assert.True(t, os.IsNotExist(err))
}
