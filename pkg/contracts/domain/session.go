package domain

// MapSide is the edge length of the spatial binning grid used by the legacy
// analysis software. Every rate and occupancy map is MapSide x MapSide.
const MapSide = 64

// MapPixels is the number of bins in one spatial map.
const MapPixels = MapSide * MapSide

// NoCluster marks a unit whose source files carried no cluster tag.
const NoCluster = -1

// NoCell marks a map that covers the whole task rather than a single cell.
const NoCell = -1

// TaskType identifies the behavioral task an epoch or map belongs to.
type TaskType string

const (
	TaskBaseline    TaskType = "BL"
	TaskEscher      TaskType = "ES"
	TaskMagicCarpet TaskType = "MC"
	TaskUnknown     TaskType = "unknown"
)

// Epoch is one contiguous span of a single task type within a recording
// session. Times are seconds relative to recording start.
type Epoch struct {
	StartTime float64  `json:"start_time"`
	StopTime  float64  `json:"stop_time"`
	TaskType  TaskType `json:"task_type"`
}

// Unit is one putative neuron, merged across every source file that carries
// the same (tetrode, cluster) pair. SpikeTimes is ascending; equal timestamps
// from different files are kept, not collapsed.
type Unit struct {
	Tetrode    string    `json:"tetrode"`
	ClusterID  int       `json:"cluster_id"` // NoCluster when untagged
	SpikeTimes []float64 `json:"spike_times"`
}

// PositionSample is one (time, x, y) sample of the animal's tracked position,
// in video tracker pixel coordinates.
type PositionSample struct {
	Time float64 `json:"time"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// MapRow is the parsed contents of one binary map file: a spatial firing rate
// map (Hz) and the matching occupancy map (bin visit counts).
type MapRow struct {
	Tetrode      string                    `json:"tetrode"`
	SourceFile   string                    `json:"source_file"`
	TaskType     TaskType                  `json:"task_type"`
	CellNumber   int                       `json:"cell_number"` // NoCell for task-level maps
	RateMap      [MapSide][MapSide]float32 `json:"rate_map"`
	OccupancyMap [MapSide][MapSide]int32   `json:"occupancy_map"`
}

// ParseFailure records one file the assembler had to skip.
type ParseFailure struct {
	Tetrode string `json:"tetrode"`
	File    string `json:"file"`
	Err     error  `json:"-"`
}

// Session is the fully merged output of one subject-session conversion.
// All collections are in their final deterministic order and are not
// modified after assembly.
type Session struct {
	Subject  string           `json:"subject"`
	Epochs   []Epoch          `json:"epochs"`
	Units    []Unit           `json:"units"`
	Position []PositionSample `json:"position,omitempty"`
	RateMaps []MapRow         `json:"rate_maps,omitempty"`
	Failures []ParseFailure   `json:"failures,omitempty"`
}

// HasPosition reports whether any source file contributed position samples.
func (s *Session) HasPosition() bool {
	return len(s.Position) > 0
}
