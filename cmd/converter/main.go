// Command converter runs the legacy-to-structured conversion batch: it walks
// each subject-session of the Neurolab dataset, reconciles its spike and map
// files, and writes the merged session to the output directory.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"neuroconv/internal/config"
	"neuroconv/internal/dataprocessing"
	"neuroconv/internal/exporter"
	"neuroconv/internal/infrastructure"
	"neuroconv/internal/metadata"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file")
	baseDir := flag.String("base", "", "root of the legacy dataset (overrides config)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	subjects := flag.String("subjects", "", "comma-separated subject folders (default: all known subjects)")
	stubTest := flag.Bool("stub", false, "only convert the first two files per tetrode for quick testing")
	workers := flag.Int("workers", 0, "concurrent file parses (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, *baseDir, *outDir, *subjects, *stubTest, *workers)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	converted, failed := convertAll(ctx, cfg, logger)
	logger.Info("conversion batch finished",
		slog.Int("converted", converted),
		slog.Int("failed", failed))

	if converted == 0 && failed > 0 {
		os.Exit(1)
	}
}

// applyFlags layers the command line over the loaded config.
func applyFlags(cfg *config.Config, baseDir, outDir, subjects string, stubTest bool, workers int) {
	if baseDir != "" {
		cfg.Paths.BaseDir = baseDir
	}
	if outDir != "" {
		cfg.Paths.OutputDir = outDir
	}
	if subjects != "" {
		cfg.Convert.Subjects = splitSubjects(subjects)
	}
	if stubTest {
		cfg.Convert.StubTest = true
	}
	if workers > 0 {
		cfg.Convert.Workers = workers
	}
}

// splitSubjects parses a comma-separated subject list, dropping empty parts.
func splitSubjects(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// resolveSubjects returns the configured subject list, or every known
// subject when none was configured.
func resolveSubjects(cfg *config.Config) []string {
	if len(cfg.Convert.Subjects) > 0 {
		return cfg.Convert.Subjects
	}
	return metadata.Subjects()
}

// convertAll converts every selected subject, isolating per-subject
// failures the same way the assembler isolates per-file failures.
func convertAll(ctx context.Context, cfg *config.Config, logger *slog.Logger) (converted, failed int) {
	assembler := dataprocessing.NewAssembler(dataprocessing.AssemblerConfig{
		Workers:  cfg.Convert.Workers,
		StubTest: cfg.Convert.StubTest,
		Logger:   logger,
	})
	writer := exporter.NewWriter(exporter.Config{
		OutputDir:        cfg.Paths.OutputDir,
		TaskDescriptions: metadata.TaskDescriptions,
		Logger:           logger,
	})

	for _, subject := range resolveSubjects(cfg) {
		if ctx.Err() != nil {
			logger.Warn("conversion interrupted", slog.String("subject", subject))
			failed++
			continue
		}

		logger.Info("converting subject", slog.String("subject", subject))
		dir, err := convertSubject(ctx, cfg, assembler, writer, subject)
		if err != nil {
			logger.Error("subject conversion failed",
				slog.String("subject", subject),
				slog.Any("error", err))
			failed++
			continue
		}
		logger.Info("subject converted",
			slog.String("subject", subject),
			slog.String("output", dir))
		converted++
	}
	return converted, failed
}

// convertSubject assembles and writes one subject-session.
func convertSubject(ctx context.Context, cfg *config.Config, assembler *dataprocessing.Assembler, writer *exporter.Writer, subject string) (string, error) {
	meta, err := metadata.ForSubject(subject)
	if err != nil {
		return "", err
	}

	rawRoot := filepath.Join(cfg.Paths.BaseDir, cfg.Paths.RawDirName, subject)
	analyzedRoot := filepath.Join(cfg.Paths.BaseDir, cfg.Paths.AnalyzedDirName, subject)

	session, err := assembler.AssembleSession(ctx, subject, rawRoot, analyzedRoot)
	if err != nil {
		return "", err
	}

	return writer.WriteSession(meta, session)
}
