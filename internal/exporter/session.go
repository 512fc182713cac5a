// Package exporter materializes one assembled session to disk: a summary
// workbook plus CSV tables for the long sequences and the spatial map grids.
// It is the writer collaborator of the conversion core; the core itself
// performs no serialization.
package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"neuroconv/internal/metadata"
	"neuroconv/pkg/contracts"
	"neuroconv/pkg/contracts/domain"
)

// Config configures a session writer.
type Config struct {
	// OutputDir receives one subdirectory per written session.
	OutputDir string
	// TaskDescriptions annotates epoch rows; missing task types fall back
	// to a generic description.
	TaskDescriptions map[domain.TaskType]string
	Logger           *slog.Logger
}

// Writer writes assembled sessions under a fixed output directory.
type Writer struct {
	outputDir    string
	descriptions map[domain.TaskType]string
	logger       *slog.Logger
	csv          *CSVWriter
}

// NewWriter creates a session writer from config.
func NewWriter(cfg Config) *Writer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		outputDir:    cfg.OutputDir,
		descriptions: cfg.TaskDescriptions,
		logger:       logger,
		csv:          NewCSVWriter(logger),
	}
}

// WriteSession writes one session to <output>/<subject>/ and returns that
// directory. Each written session is stamped with a fresh identifier.
func (w *Writer) WriteSession(meta metadata.SessionMetadata, session *domain.Session) (string, error) {
	dir := filepath.Join(w.outputDir, session.Subject)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	identifier := uuid.New().String()

	if err := w.writeWorkbook(filepath.Join(dir, "session.xlsx"), identifier, meta, session); err != nil {
		return "", err
	}
	if err := w.writeSpikes(filepath.Join(dir, "spike_times.csv"), session); err != nil {
		return "", err
	}
	if session.HasPosition() {
		if err := w.writePosition(filepath.Join(dir, "position.csv"), session); err != nil {
			return "", err
		}
	}
	if err := w.writeMapGrids(filepath.Join(dir, "maps"), session); err != nil {
		return "", err
	}

	w.logger.Info("wrote session",
		slog.String("subject", session.Subject),
		slog.String("identifier", identifier),
		slog.String("dir", dir),
		slog.Int("epochs", len(session.Epochs)),
		slog.Int("units", len(session.Units)),
		slog.Int("position_samples", len(session.Position)),
		slog.Int("rate_maps", len(session.RateMaps)))

	return dir, nil
}

// sheetWriter accumulates the first cell-write error so sheet building reads
// linearly.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (s *sheetWriter) set(col, row int, value any) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellValue(s.sheet, cell, value)
}

func (s *sheetWriter) setRow(row int, values ...any) {
	for i, v := range values {
		s.set(i+1, row, v)
	}
}

func (w *Writer) writeWorkbook(path, identifier string, meta metadata.SessionMetadata, session *domain.Session) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), "Session")

	sw := &sheetWriter{f: f, sheet: "Session"}
	kv := [][2]any{
		{"identifier", identifier},
		{"subject", meta.SubjectFolder},
		{"rat_id", meta.RatID},
		{"session_date", meta.SessionDate.Format(time.RFC3339)},
		{"description", meta.Description},
		{"epochs", len(session.Epochs)},
		{"units", len(session.Units)},
		{"position_samples", len(session.Position)},
		{"rate_maps", len(session.RateMaps)},
		{"skipped_files", len(session.Failures)},
		{"converter_version", contracts.GetVersionString()},
		{"data_format", contracts.DataFormatVersion},
	}
	for i, pair := range kv {
		sw.setRow(i+1, pair[0], pair[1])
	}
	if sw.err != nil {
		return fmt.Errorf("failed to build session sheet: %w", sw.err)
	}

	if err := w.addEpochSheet(f, session); err != nil {
		return err
	}
	if err := w.addUnitSheet(f, session); err != nil {
		return err
	}
	if err := w.addMapSheet(f, session); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *Writer) addEpochSheet(f *excelize.File, session *domain.Session) error {
	if _, err := f.NewSheet("Epochs"); err != nil {
		return err
	}
	sw := &sheetWriter{f: f, sheet: "Epochs"}
	sw.setRow(1, "start_time_s", "stop_time_s", "task_type", "task_description")
	for i, e := range session.Epochs {
		sw.setRow(i+2, e.StartTime, e.StopTime, string(e.TaskType), w.describe(e.TaskType))
	}
	return sw.err
}

func (w *Writer) addUnitSheet(f *excelize.File, session *domain.Session) error {
	if _, err := f.NewSheet("Units"); err != nil {
		return err
	}
	sw := &sheetWriter{f: f, sheet: "Units"}
	sw.setRow(1, "tetrode", "cluster_id", "spike_count", "first_spike_s", "last_spike_s")
	for i, u := range session.Units {
		// Units always carry at least one spike time.
		sw.setRow(i+2, u.Tetrode, u.ClusterID, len(u.SpikeTimes),
			u.SpikeTimes[0], u.SpikeTimes[len(u.SpikeTimes)-1])
	}
	return sw.err
}

func (w *Writer) addMapSheet(f *excelize.File, session *domain.Session) error {
	if _, err := f.NewSheet("RateMaps"); err != nil {
		return err
	}
	sw := &sheetWriter{f: f, sheet: "RateMaps"}
	sw.setRow(1, "tetrode", "source_file", "task_type", "cell_number", "peak_rate_hz", "total_occupancy")
	for i, m := range session.RateMaps {
		var peak float32
		var occupancy int64
		for r := 0; r < domain.MapSide; r++ {
			for c := 0; c < domain.MapSide; c++ {
				if m.RateMap[r][c] > peak {
					peak = m.RateMap[r][c]
				}
				occupancy += int64(m.OccupancyMap[r][c])
			}
		}
		sw.setRow(i+2, m.Tetrode, m.SourceFile, string(m.TaskType), m.CellNumber, peak, occupancy)
	}
	return sw.err
}

func (w *Writer) writeSpikes(path string, session *domain.Session) error {
	var records [][]string
	for _, u := range session.Units {
		for _, t := range u.SpikeTimes {
			records = append(records, []string{
				u.Tetrode,
				strconv.Itoa(u.ClusterID),
				formatFloat(t),
			})
		}
	}
	return w.csv.WriteCSV(path, WriteOptions{
		Headers: []string{"tetrode", "cluster_id", "time_s"},
		Records: records,
	})
}

func (w *Writer) writePosition(path string, session *domain.Session) error {
	var records [][]string
	for _, p := range session.Position {
		records = append(records, []string{
			formatFloat(p.Time),
			formatFloat(p.X),
			formatFloat(p.Y),
		})
	}
	return w.csv.WriteCSV(path, WriteOptions{
		Headers: []string{"time_s", "x", "y"},
		Records: records,
	})
}

// writeMapGrids writes each rate and occupancy matrix as a 64x64 CSV grid.
// Grid files are prefixed with the tetrode name because map filenames repeat
// across tetrode directories.
func (w *Writer) writeMapGrids(dir string, session *domain.Session) error {
	for _, m := range session.RateMaps {
		base := strings.TrimSuffix(m.SourceFile, filepath.Ext(m.SourceFile))
		prefix := filepath.Join(dir, m.Tetrode+"_"+base)

		rate := make([][]string, domain.MapSide)
		occ := make([][]string, domain.MapSide)
		for r := 0; r < domain.MapSide; r++ {
			rate[r] = make([]string, domain.MapSide)
			occ[r] = make([]string, domain.MapSide)
			for c := 0; c < domain.MapSide; c++ {
				rate[r][c] = strconv.FormatFloat(float64(m.RateMap[r][c]), 'g', -1, 32)
				occ[r][c] = strconv.FormatInt(int64(m.OccupancyMap[r][c]), 10)
			}
		}

		if err := w.csv.WriteCSV(prefix+"_rate.csv", WriteOptions{Records: rate}); err != nil {
			return err
		}
		if err := w.csv.WriteCSV(prefix+"_occupancy.csv", WriteOptions{Records: occ}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) describe(t domain.TaskType) string {
	if d, ok := w.descriptions[t]; ok {
		return d
	}
	return "Unknown task type"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
