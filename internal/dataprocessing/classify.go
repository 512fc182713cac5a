package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"

	"neuroconv/pkg/contracts/domain"
)

// cellPattern matches the CELL~<N> tag the legacy analysis software embeds in
// per-cell map filenames, e.g. ESCELL~1.RMA.
var cellPattern = regexp.MustCompile(`CELL~(\d+)`)

// ClassifyTask derives the task type from a filename's prefix
// (case-insensitive): BL, ES or MC, anything else is unknown.
func ClassifyTask(name string) domain.TaskType {
	upper := strings.ToUpper(name)
	switch {
	case strings.HasPrefix(upper, "BL"):
		return domain.TaskBaseline
	case strings.HasPrefix(upper, "ES"):
		return domain.TaskEscher
	case strings.HasPrefix(upper, "MC"):
		return domain.TaskMagicCarpet
	}
	return domain.TaskUnknown
}

// CellNumber extracts the per-cell number from a CELL~<N> filename tag.
// Filenames without the tag yield ok=false, never a zero cell number.
func CellNumber(name string) (int, bool) {
	m := cellPattern.FindStringSubmatch(strings.ToUpper(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
