package batch

import (
	"context"
	"os"

	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
)

type ProcessFunc func(ctx context.Context, file discovery.File) error

type Runner struct {
	Stage    string
	Batch    config.Batch
	Progress Progress
}

func NewRunner(stage string, batchConfig config.Batch, progress Progress) Runner {
	if progress == nil {
		progress = NoProgress{}
	}

	return Runner{
		Stage:    stage,
		Batch:    batchConfig,
		Progress: progress,
	}
}

// Run feeds every discovered input file to process, one at a time. Under
// FailFast the first failure ends the run. Under Isolate failures are
// recorded in the report and the run only fails if no file succeeded.
func (r Runner) Run(ctx context.Context, process ProcessFunc) (Report, error) {
	progress := r.Progress
	if progress == nil {
		progress = NoProgress{}
	}

	errctx := cerr.Fields(cerr.F{
		"stage":      r.Stage,
		"input_dir":  r.Batch.InputDir,
		"output_dir": r.Batch.OutputDir,
	})

	logger := log.WithFields(log.Fields{
		"stage":         r.Stage,
		"inputDir":      r.Batch.InputDir,
		"outputDir":     r.Batch.OutputDir,
		"failurePolicy": r.Batch.FailurePolicy,
	})

	report := Report{Stage: r.Stage}

	files, err := discovery.Discover(r.Batch.InputDir)
	if err != nil {
		return report, errctx.Wrap(err).Error("Failed to discover input files")
	}

	total, err := files.Count()
	if err != nil {
		return report, errctx.Wrap(err).Error("Failed to count input files")
	}

	if err := os.MkdirAll(r.Batch.OutputDir, 0o755); err != nil {
		return report, errctx.Wrap(err).Error("Failed to create output directory")
	}

	logger.WithField("total", total).Info("Beginning to process files")
	progress.Start(r.Stage, total)
	defer progress.Finish()

	for file, err := range files.All() {
		if err != nil {
			return report, errctx.Wrap(err).Error("Failed to list input files")
		}

		if ctx.Err() != nil {
			return report, errctx.Wrap(ctx.Err()).Error("Context cancelled before the batch finished")
		}

		fileLogger := logger.WithField("file", file.Name)
		fileLogger.Debug("Processing file")

		processErr := process(ctx, file)
		progress.Advance(file, processErr)

		if processErr == nil {
			report.Processed = append(report.Processed, file)
			continue
		}

		if r.Batch.FailurePolicy != config.Isolate {
			return report, errctx.Field("file", file.Path).Wrap(processErr).Error("Failed to process file")
		}

		fileLogger.WithError(processErr).Warn("Skipping file that failed to process")
		report.Failed = append(report.Failed, Failure{File: file, Err: processErr})
	}

	if len(report.Failed) > 0 && len(report.Processed) == 0 {
		return report, errctx.Field("failed", report.FailedNames()).Error("Every file in the batch failed")
	}

	logger.WithFields(log.Fields{
		"processed": len(report.Processed),
		"failed":    len(report.Failed),
	}).Info("Processing complete")

	return report, nil
}
