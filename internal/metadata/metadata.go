// Package metadata holds the per-subject session lookup table for the
// Neurolab STS-90 dataset. The converter core consumes it; it never stores
// or derives session state of its own.
//
// The Neurolab mission flew April 17 - May 3, 1998. Three rats with
// hippocampal tetrode implants were recorded preflight on the ground and
// in-flight on Flight Day 4 and Flight Day 9. Rat 1 and Rat 2 shared one
// acquisition system on different tetrode banks; Rat 3 was recorded
// separately.
package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"neuroconv/pkg/contracts/domain"
)

// SessionMetadata describes one subject-session (one output file).
type SessionMetadata struct {
	SubjectFolder string    // e.g. "FD4RAT1"
	RatID         string    // e.g. "Rat1"
	SessionDate   time.Time // recording start, UTC
	Description   string
}

// TaskDescriptions maps each task type to its free-text description.
var TaskDescriptions = map[domain.TaskType]string{
	domain.TaskBaseline:    "Baseline: rectangular track",
	domain.TaskEscher:      "Escher Staircase: three-dimensional track with 90° yaw and pitch turns",
	domain.TaskMagicCarpet: "Magic Carpet: flat two-dimensional track",
}

// TaskDescription returns the description for a task type, with a fallback
// for unknown types.
func TaskDescription(t domain.TaskType) string {
	if d, ok := TaskDescriptions[t]; ok {
		return d
	}
	return "Unknown task type"
}

// subjectOrder lists every known subject folder in canonical batch order.
var subjectOrder = []string{
	"FD4RAT1",
	"FD4RAT2",
	"FD4RAT3",
	"FD9RAT1",
	"FD9RAT2",
	"PREFLI~1",
	"PREFLI~2",
	"PREFLI~3",
}

// subjectSessions maps each subject folder to its rat identity and session
// context. Session dates come from the recording directory paths in the
// spike file headers.
var subjectSessions = map[string]SessionMetadata{
	"FD4RAT1": {
		RatID:       "Rat1",
		SessionDate: time.Date(1998, 4, 20, 9, 57, 0, 0, time.UTC),
		Description: "Flight Day 4 recording, Rat 1. Escher Staircase and Magic Carpet tasks with baseline sessions.",
	},
	"FD4RAT2": {
		RatID:       "Rat2",
		SessionDate: time.Date(1998, 4, 20, 9, 57, 0, 0, time.UTC),
		Description: "Flight Day 4 recording, Rat 2. Recorded simultaneously with Rat 1 on shared acquisition system.",
	},
	"FD4RAT3": {
		RatID:       "Rat3",
		SessionDate: time.Date(1998, 4, 20, 15, 28, 0, 0, time.UTC),
		Description: "Flight Day 4 recording, Rat 3. Separate recording session; partial data recovered due to technical issues.",
	},
	"FD9RAT1": {
		RatID:       "Rat1",
		SessionDate: time.Date(1998, 4, 25, 12, 45, 0, 0, time.UTC),
		Description: "Flight Day 9 recording, Rat 1. Escher Staircase and Magic Carpet tasks with baseline sessions.",
	},
	"FD9RAT2": {
		RatID:       "Rat2",
		SessionDate: time.Date(1998, 4, 25, 12, 45, 0, 0, time.UTC),
		Description: "Flight Day 9 recording, Rat 2. Recorded simultaneously with Rat 1 on shared acquisition system.",
	},
	"PREFLI~1": {
		RatID:       "Rat1",
		SessionDate: time.Date(1998, 4, 14, 12, 53, 0, 0, time.UTC),
		Description: "Preflight ground recording, Rat 1. Recorded 3 days before launch at Kennedy Space Center.",
	},
	"PREFLI~2": {
		RatID:       "Rat2",
		SessionDate: time.Date(1998, 4, 13, 16, 37, 0, 0, time.UTC),
		Description: "Preflight ground recording, Rat 2. Recorded 4 days before launch at Kennedy Space Center.",
	},
	"PREFLI~3": {
		RatID:       "Rat3",
		SessionDate: time.Date(1998, 4, 14, 13, 49, 0, 0, time.UTC),
		Description: "Preflight ground recording, Rat 3. Recorded 3 days before launch at Kennedy Space Center.",
	},
}

// Subjects returns every known subject folder in canonical batch order.
func Subjects() []string {
	out := make([]string, len(subjectOrder))
	copy(out, subjectOrder)
	return out
}

// ForSubject looks up the metadata for a subject folder.
func ForSubject(folder string) (SessionMetadata, error) {
	meta, ok := subjectSessions[folder]
	if !ok {
		return SessionMetadata{}, fmt.Errorf("unknown subject folder %q", folder)
	}
	meta.SubjectFolder = folder
	return meta, nil
}

// recordingDirPattern matches the datetime embedded in the original
// acquisition directory paths, e.g. "/data/SHUTTLE/e100-04.20.98-09:57/TT0".
var recordingDirPattern = regexp.MustCompile(`e100-(\d{2})\.(\d{2})\.(\d{2})-(\d{2}):(\d{2})`)

// ParseRecordingDirTime extracts the recording datetime from an original
// acquisition directory path as found in spike file headers. Two-digit years
// above 50 map to 19xx, the rest to 20xx.
func ParseRecordingDirTime(directory string) (time.Time, bool) {
	m := recordingDirPattern.FindStringSubmatch(directory)
	if m == nil {
		return time.Time{}, false
	}

	nums := make([]int, 5)
	for i, s := range m[1:] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}

	month, day, year2, hour, minute := nums[0], nums[1], nums[2], nums[3], nums[4]
	year := 2000 + year2
	if year2 > 50 {
		year = 1900 + year2
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), true
}
