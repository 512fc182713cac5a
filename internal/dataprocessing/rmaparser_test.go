package dataprocessing

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "neuroconv/internal/errors"
	"neuroconv/pkg/contracts/domain"
)

// buildRma writes known values into the corner pixels of both halves.
func buildRma(firstRate, lastRate float32, firstOcc, lastOcc int32) []byte {
	data := make([]byte, 32768)

	binary.BigEndian.PutUint32(data[0:], math.Float32bits(firstRate))
	binary.BigEndian.PutUint32(data[(domain.MapPixels-1)*4:], math.Float32bits(lastRate))

	occOffset := domain.MapPixels * 4
	binary.BigEndian.PutUint32(data[occOffset:], uint32(firstOcc))
	binary.BigEndian.PutUint32(data[occOffset+(domain.MapPixels-1)*4:], uint32(lastOcc))

	return data
}

func TestParseRmaRoundTrip(t *testing.T) {
	data := buildRma(2.5, 7.25, 11, 42)

	rec, err := ParseRma("ESCELL~1.RMA", data)
	require.NoError(t, err)

	assert.Equal(t, float32(2.5), rec.RateMap[0][0])
	assert.Equal(t, float32(7.25), rec.RateMap[63][63])
	assert.Equal(t, int32(11), rec.OccupancyMap[0][0])
	assert.Equal(t, int32(42), rec.OccupancyMap[63][63])

	// Untouched interior bins stay zero.
	assert.Equal(t, float32(0), rec.RateMap[32][17])
	assert.Equal(t, int32(0), rec.OccupancyMap[32][17])
}

func TestParseRmaNegativeOccupancy(t *testing.T) {
	data := buildRma(0, 0, -1, 0)
	rec, err := ParseRma("BL2BC0~1.RMA", data)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), rec.OccupancyMap[0][0])
}

func TestParseRmaUnexpectedSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "empty", size: 0},
		{name: "truncated", size: 32000},
		{name: "one byte short", size: 32767},
		{name: "one byte long", size: 32769},
		{name: "double", size: 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRma("ESCELL~1.RMA", make([]byte, tt.size))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrUnexpectedBinarySize))
		})
	}
}

func TestParseRmaFilenameDerivation(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		task      domain.TaskType
		cell      int
		isCellMap bool
	}{
		{name: "escher per cell", filename: "ESCELL~1.RMA", task: domain.TaskEscher, cell: 1, isCellMap: true},
		{name: "magic carpet per cell", filename: "MCCELL~3.RMA", task: domain.TaskMagicCarpet, cell: 3, isCellMap: true},
		{name: "task level map", filename: "ES2BC0~1.RMA", task: domain.TaskEscher, cell: domain.NoCell, isCellMap: false},
		{name: "baseline", filename: "BLCELL~9.RMA", task: domain.TaskBaseline, cell: 9, isCellMap: true},
		{name: "unknown prefix", filename: "ZZ2BC0~1.RMA", task: domain.TaskUnknown, cell: domain.NoCell, isCellMap: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRma(tt.filename, make([]byte, 32768))
			require.NoError(t, err)
			assert.Equal(t, tt.task, rec.TaskType)
			assert.Equal(t, tt.cell, rec.CellNumber)
			assert.Equal(t, tt.isCellMap, rec.IsCellMap)
		})
	}
}

func TestParseRmaFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "MCCELL~2.RMA")
	require.NoError(t, os.WriteFile(path, buildRma(1.5, 0, 3, 0), 0644))

	rec, err := ParseRmaFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MCCELL~2.RMA", rec.Name)
	assert.Equal(t, float32(1.5), rec.RateMap[0][0])
	assert.Equal(t, int32(3), rec.OccupancyMap[0][0])
}
