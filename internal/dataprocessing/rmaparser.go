package dataprocessing

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"

	apperrors "neuroconv/internal/errors"
	"neuroconv/pkg/contracts/domain"
)

// rmaFileSize is the only valid size for a binary map file: two 64x64
// matrices of 4-byte values back to back.
const rmaFileSize = 2 * domain.MapPixels * 4

// RmaRecord is the parsed contents of a single binary map (.RMA) file.
type RmaRecord struct {
	Name         string
	RateMap      [domain.MapSide][domain.MapSide]float32 // firing rate, Hz
	OccupancyMap [domain.MapSide][domain.MapSide]int32   // bin visit counts

	// Derived from the filename
	TaskType   domain.TaskType
	CellNumber int
	IsCellMap  bool // false for task-level maps
}

// ParseRmaFile reads and parses a single binary map file from disk.
func ParseRmaFile(path string) (*RmaRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRma(filepath.Base(path), data)
}

// ParseRma parses binary map content: 4096 big-endian float32 rate values
// followed by 4096 big-endian int32 occupancy counts, both row-major 64x64.
// Any length other than 32768 bytes is fatal for the file.
func ParseRma(name string, data []byte) (*RmaRecord, error) {
	if len(data) != rmaFileSize {
		return nil, apperrors.UnexpectedBinarySize(name, rmaFileSize, len(data))
	}

	rec := &RmaRecord{Name: name}

	const occOffset = domain.MapPixels * 4
	for i := 0; i < domain.MapPixels; i++ {
		row, col := i/domain.MapSide, i%domain.MapSide
		rec.RateMap[row][col] = math.Float32frombits(binary.BigEndian.Uint32(data[i*4:]))
		rec.OccupancyMap[row][col] = int32(binary.BigEndian.Uint32(data[occOffset+i*4:]))
	}

	rec.TaskType = ClassifyTask(name)
	rec.CellNumber, rec.IsCellMap = CellNumber(name)
	if !rec.IsCellMap {
		rec.CellNumber = domain.NoCell
	}
	return rec, nil
}
