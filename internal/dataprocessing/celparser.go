package dataprocessing

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	apperrors "neuroconv/internal/errors"
	"neuroconv/pkg/contracts/domain"
)

const (
	// headerScanLimit bounds the header scan; some damaged files never
	// terminate their header block.
	headerScanLimit = 800
	// endHeaderToken is the literal line that ends the header block.
	endHeaderToken = "%%ENDHEADER"
	// headerMarker prefixes comment-style header lines.
	headerMarker = "%"
)

// fieldsPattern matches the column declaration line, with or without the
// comment marker: "% Fields: time pos_x pos_y" or "fields: time".
var fieldsPattern = regexp.MustCompile(`(?i)^%?\s*fields\s*:`)

// digitRun finds the first run of digits in a header value.
var digitRun = regexp.MustCompile(`\d+`)

// CelRecord is the parsed contents of a single spike (.CEL) file.
//
// Rows map field name to numeric value; a field absent from a row means the
// cell was short or failed numeric coercion. The derived fields are computed
// once at construction from the header, field list and filename.
type CelRecord struct {
	Name   string
	Header map[string]string
	Fields []string
	Rows   []map[string]float64

	// Derived
	Cluster     int
	HasCluster  bool
	TaskType    domain.TaskType
	StartTime   float64 // seconds, NaN when the header time is absent or garbled
	EndTime     float64
	HasPosition bool
}

// ParseCelFile reads and parses a single spike file from disk.
func ParseCelFile(path string) (*CelRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCel(filepath.Base(path), data)
}

// ParseCel parses spike file content. The name is the file's base name and
// feeds the task type derivation and error reporting.
func ParseCel(name string, content []byte) (*CelRecord, error) {
	lines := strings.Split(string(content), "\n")

	var fields []string
	header := make(map[string]string)
	endHeaderIdx := -1

	scanLimit := len(lines)
	if scanLimit > headerScanLimit {
		scanLimit = headerScanLimit
	}

	for i := 0; i < scanLimit; i++ {
		s := strings.TrimSpace(lines[i])

		if strings.HasPrefix(s, headerMarker) && strings.Contains(s, ":") && !fieldsPattern.MatchString(s) {
			kv := strings.TrimSpace(strings.TrimLeft(s, headerMarker))
			k, v, _ := strings.Cut(kv, ":")
			// Last occurrence of a duplicated key wins.
			header[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}

		if fieldsPattern.MatchString(s) {
			_, rhs, _ := strings.Cut(s, ":")
			fields = strings.Fields(rhs)
		}

		if s == endHeaderToken {
			endHeaderIdx = i
			break
		}
	}

	if fields == nil {
		return nil, apperrors.MissingFieldsDeclaration(name)
	}
	if endHeaderIdx < 0 {
		return nil, apperrors.MissingEndHeader(name)
	}

	rec := &CelRecord{
		Name:   name,
		Header: header,
		Fields: fields,
		Rows:   parseDataRows(lines[endHeaderIdx+1:], fields),
	}
	rec.derive()
	return rec, nil
}

// parseDataRows maps whitespace-split tokens positionally onto the field
// list. Short rows and cells that fail numeric coercion leave that field
// missing; rows with every field missing are dropped.
func parseDataRows(lines []string, fields []string) []map[string]float64 {
	var rows []map[string]float64
	for _, line := range lines {
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}

		row := make(map[string]float64, len(fields))
		for j, field := range fields {
			if j >= len(tokens) {
				break
			}
			v, err := strconv.ParseFloat(tokens[j], 64)
			if err != nil || v != v { // NaN cells count as missing
				continue
			}
			row[field] = v
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// derive computes the per-file fields the merges key on.
func (r *CelRecord) derive() {
	if m := digitRun.FindString(r.Header["Cluster"]); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			r.Cluster = n
			r.HasCluster = true
		}
	}

	r.TaskType = ClassifyTask(r.Name)
	r.StartTime = ParseClockTime(r.Header["Start time"])
	r.EndTime = ParseClockTime(r.Header["End time"])
	r.HasPosition = containsField(r.Fields, "pos_x") && containsField(r.Fields, "pos_y")
}

// SpikeTimes returns the valid spike timestamps in row order, seconds.
func (r *CelRecord) SpikeTimes() []float64 {
	var times []float64
	for _, row := range r.Rows {
		if t, ok := row["time"]; ok {
			times = append(times, t)
		}
	}
	return times
}

// PositionSamples returns the (time, x, y) triples of rows where all three
// values are present.
func (r *CelRecord) PositionSamples() []domain.PositionSample {
	if !r.HasPosition {
		return nil
	}
	var samples []domain.PositionSample
	for _, row := range r.Rows {
		t, okT := row["time"]
		x, okX := row["pos_x"]
		y, okY := row["pos_y"]
		if okT && okX && okY {
			samples = append(samples, domain.PositionSample{Time: t, X: x, Y: y})
		}
	}
	return samples
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
