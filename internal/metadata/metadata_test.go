package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroconv/pkg/contracts/domain"
)

func TestForSubject(t *testing.T) {
	meta, err := ForSubject("FD4RAT1")
	require.NoError(t, err)
	assert.Equal(t, "FD4RAT1", meta.SubjectFolder)
	assert.Equal(t, "Rat1", meta.RatID)
	assert.Equal(t, time.Date(1998, 4, 20, 9, 57, 0, 0, time.UTC), meta.SessionDate)
	assert.Contains(t, meta.Description, "Flight Day 4")
}

func TestForSubjectUnknown(t *testing.T) {
	_, err := ForSubject("FD4RAT9")
	assert.Error(t, err)
}

func TestSubjectsAllKnown(t *testing.T) {
	subjects := Subjects()
	require.Len(t, subjects, 8)
	for _, s := range subjects {
		_, err := ForSubject(s)
		assert.NoError(t, err, "subject %s", s)
	}
	// Returned slice is a copy; mutating it must not leak into the table.
	subjects[0] = "MUTATED"
	assert.Equal(t, "FD4RAT1", Subjects()[0])
}

func TestTaskDescription(t *testing.T) {
	assert.Contains(t, TaskDescription(domain.TaskEscher), "Escher Staircase")
	assert.Contains(t, TaskDescription(domain.TaskBaseline), "rectangular")
	assert.Equal(t, "Unknown task type", TaskDescription(domain.TaskUnknown))
}

func TestParseRecordingDirTime(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		expected time.Time
		ok       bool
	}{
		{
			name:     "shuttle path",
			dir:      "/data/SHUTTLE/e100-04.20.98-09:57/TT0",
			expected: time.Date(1998, 4, 20, 9, 57, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "two digit year below pivot",
			dir:      "e100-01.15.02-08:30",
			expected: time.Date(2002, 1, 15, 8, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name: "no pattern",
			dir:  "/data/SHUTTLE/session1/TT0",
			ok:   false,
		},
		{
			name: "empty",
			dir:  "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRecordingDirTime(tt.dir)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
