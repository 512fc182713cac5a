package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"neuroconv/internal/files"
	"neuroconv/pkg/contracts/domain"
)

// stubFileLimit caps each tetrode directory when stub mode is on.
const stubFileLimit = 2

// AssemblerConfig tunes one session assembly.
type AssemblerConfig struct {
	// Workers bounds concurrent file parses. Values below 1 mean serial.
	Workers int
	// StubTest processes only the first two files per tetrode directory.
	StubTest bool
	Logger   *slog.Logger
}

// Assembler merges every parsed file of one subject-session into the four
// session-level collections. Parsing is parallel but all emitted orderings
// are defined over the discovery order, so output is deterministic.
type Assembler struct {
	workers  int
	stubTest bool
	logger   *slog.Logger
}

// NewAssembler creates an assembler from config.
func NewAssembler(cfg AssemblerConfig) *Assembler {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		workers:  workers,
		stubTest: cfg.StubTest,
		logger:   logger,
	}
}

// fileTask is one discovered file awaiting parse, in discovery order.
type fileTask struct {
	tetrode string
	path    string
	name    string
}

// tetrodeCel pairs a parsed spike file with the tetrode it came from.
type tetrodeCel struct {
	tetrode string
	rec     *CelRecord
}

// AssembleSession converts one subject-session. rawRoot must exist and hold
// the per-tetrode spike files; analyzedRoot may be absent, in which case the
// map table is empty. Per-file parse failures are logged, recorded on the
// session and never abort the batch.
func (a *Assembler) AssembleSession(ctx context.Context, subject, rawRoot, analyzedRoot string) (*domain.Session, error) {
	if _, err := os.Stat(rawRoot); err != nil {
		return nil, fmt.Errorf("raw directory not found: %w", err)
	}

	session := &domain.Session{Subject: subject}

	celTasks, err := a.collectTasks(rawRoot, func(d *files.Discovery, dir string) ([]files.FileInfo, error) {
		return d.FindSpikeFiles(dir)
	})
	if err != nil {
		return nil, err
	}

	cels := a.parseSpikeFiles(ctx, celTasks, session)
	a.logger.Info("parsed spike files",
		slog.String("subject", subject),
		slog.Int("files", len(celTasks)),
		slog.Int("parsed", len(cels)),
		slog.Int("failed", len(session.Failures)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session.Epochs = buildEpochs(cels)
	session.Units = buildUnits(cels)
	session.Position = buildPositionTrace(cels)

	if _, err := os.Stat(analyzedRoot); err == nil {
		rmaTasks, err := a.collectTasks(analyzedRoot, func(d *files.Discovery, dir string) ([]files.FileInfo, error) {
			return d.FindMapFiles(dir)
		})
		if err != nil {
			return nil, err
		}
		session.RateMaps = a.parseMapFiles(ctx, rmaTasks, session)
		a.logger.Info("parsed map files",
			slog.String("subject", subject),
			slog.Int("files", len(rmaTasks)),
			slog.Int("rows", len(session.RateMaps)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return session, nil
}

// collectTasks walks the tetrode directories under root in numeric order and
// lists each one with find, giving the canonical discovery order: tetrode
// directory order, then filename order within each directory.
func (a *Assembler) collectTasks(root string, find func(*files.Discovery, string) ([]files.FileInfo, error)) ([]fileTask, error) {
	discovery := files.NewDiscovery("")

	dirs, err := discovery.ListTetrodeDirs(root)
	if err != nil {
		return nil, err
	}

	var tasks []fileTask
	for _, dir := range dirs {
		found, err := find(discovery, dir.Path)
		if err != nil {
			return nil, err
		}
		if a.stubTest && len(found) > stubFileLimit {
			found = found[:stubFileLimit]
		}
		for _, f := range found {
			tasks = append(tasks, fileTask{tetrode: dir.Name, path: f.Path, name: f.Name})
		}
	}
	return tasks, nil
}

// parseSpikeFiles parses the spike file tasks concurrently. Results are
// collected by task index so the returned slice preserves discovery order
// regardless of scheduling.
func (a *Assembler) parseSpikeFiles(ctx context.Context, tasks []fileTask, session *domain.Session) []tetrodeCel {
	recs := make([]*CelRecord, len(tasks))
	errs := make([]error, len(tasks))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			recs[i], errs[i] = ParseCelFile(task.path)
			return nil
		})
	}
	g.Wait()

	var cels []tetrodeCel
	for i, task := range tasks {
		if errs[i] != nil {
			a.recordFailure(session, task, errs[i])
			continue
		}
		cels = append(cels, tetrodeCel{tetrode: task.tetrode, rec: recs[i]})
	}
	return cels
}

// parseMapFiles parses the binary map tasks concurrently and emits one map
// row per success, in discovery order.
func (a *Assembler) parseMapFiles(ctx context.Context, tasks []fileTask, session *domain.Session) []domain.MapRow {
	recs := make([]*RmaRecord, len(tasks))
	errs := make([]error, len(tasks))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			recs[i], errs[i] = ParseRmaFile(task.path)
			return nil
		})
	}
	g.Wait()

	var rows []domain.MapRow
	for i, task := range tasks {
		if errs[i] != nil {
			a.recordFailure(session, task, errs[i])
			continue
		}
		rec := recs[i]
		rows = append(rows, domain.MapRow{
			Tetrode:      task.tetrode,
			SourceFile:   rec.Name,
			TaskType:     rec.TaskType,
			CellNumber:   rec.CellNumber,
			RateMap:      rec.RateMap,
			OccupancyMap: rec.OccupancyMap,
		})
	}
	return rows
}

// recordFailure logs one skipped file with its identity and cause.
func (a *Assembler) recordFailure(session *domain.Session, task fileTask, err error) {
	a.logger.Warn("skipping unparsable file",
		slog.String("tetrode", task.tetrode),
		slog.String("file", task.name),
		slog.Any("error", err))
	session.Failures = append(session.Failures, domain.ParseFailure{
		Tetrode: task.tetrode,
		File:    task.name,
		Err:     err,
	})
}

// buildEpochs collapses every record with defined start and end times into
// the unique (start, end, task) triples, sorted lexicographically.
func buildEpochs(cels []tetrodeCel) []domain.Epoch {
	seen := make(map[domain.Epoch]struct{})
	for _, c := range cels {
		if math.IsNaN(c.rec.StartTime) || math.IsNaN(c.rec.EndTime) {
			continue
		}
		seen[domain.Epoch{
			StartTime: c.rec.StartTime,
			StopTime:  c.rec.EndTime,
			TaskType:  c.rec.TaskType,
		}] = struct{}{}
	}

	epochs := make([]domain.Epoch, 0, len(seen))
	for e := range seen {
		epochs = append(epochs, e)
	}
	sort.Slice(epochs, func(i, j int) bool {
		if epochs[i].StartTime != epochs[j].StartTime {
			return epochs[i].StartTime < epochs[j].StartTime
		}
		if epochs[i].StopTime != epochs[j].StopTime {
			return epochs[i].StopTime < epochs[j].StopTime
		}
		return epochs[i].TaskType < epochs[j].TaskType
	})
	return epochs
}

// unitKey groups spike files belonging to the same putative neuron.
type unitKey struct {
	tetrode string
	cluster int
}

// buildUnits merges spike times by (tetrode, cluster), untagged files under
// cluster NoCluster. Times are concatenated in record arrival order then
// sorted; equal timestamps from different files are all kept. Groups that
// contributed no spike times are not emitted.
func buildUnits(cels []tetrodeCel) []domain.Unit {
	groups := make(map[unitKey][]float64)
	for _, c := range cels {
		times := c.rec.SpikeTimes()
		if len(times) == 0 {
			continue
		}
		key := unitKey{tetrode: c.tetrode, cluster: domain.NoCluster}
		if c.rec.HasCluster {
			key.cluster = c.rec.Cluster
		}
		groups[key] = append(groups[key], times...)
	}

	keys := make([]unitKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].tetrode != keys[j].tetrode {
			return keys[i].tetrode < keys[j].tetrode
		}
		return keys[i].cluster < keys[j].cluster
	})

	units := make([]domain.Unit, 0, len(keys))
	for _, k := range keys {
		times := groups[k]
		sort.Float64s(times)
		units = append(units, domain.Unit{
			Tetrode:    k.tetrode,
			ClusterID:  k.cluster,
			SpikeTimes: times,
		})
	}
	return units
}

// buildPositionTrace pools the complete (time, x, y) triples of every
// position-bearing record, sorts by time, and keeps only the first sample in
// pooling order for each distinct time. Position is recorded once per video
// frame but duplicated onto every unit's file, so the dedup reconstructs the
// single tracker trace.
func buildPositionTrace(cels []tetrodeCel) []domain.PositionSample {
	hasPosition := false
	for _, c := range cels {
		if c.rec.HasPosition {
			hasPosition = true
			break
		}
	}
	if !hasPosition {
		return nil
	}

	var pooled []domain.PositionSample
	for _, c := range cels {
		pooled = append(pooled, c.rec.PositionSamples()...)
	}
	if len(pooled) == 0 {
		return nil
	}

	// Stable sort keeps pooling order within each group of equal times, so
	// the first-encountered sample survives the dedup below.
	sort.SliceStable(pooled, func(i, j int) bool {
		return pooled[i].Time < pooled[j].Time
	})

	trace := pooled[:1]
	for _, s := range pooled[1:] {
		if s.Time == trace[len(trace)-1].Time {
			continue
		}
		trace = append(trace, s)
	}
	return trace
}
