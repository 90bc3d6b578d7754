package standardize

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/audio/naming"
	"github.com/veedubyou/timbre/src/shared/audio/resample"
	"github.com/veedubyou/timbre/src/shared/audio/transform"
	"github.com/veedubyou/timbre/src/shared/audio/wavfile"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
)

const (
	PreprocessStage  = "preprocess"
	PostprocessStage = "postprocess"
)

type Namer func(file discovery.File) string

// Standardizer reads each input file, resamples it, runs the transform
// chain and writes the result under a new name
type Standardizer struct {
	Name   string
	Config config.Stage
	Namer  Namer
}

func (s Standardizer) Run(ctx context.Context, progress batch.Progress) (batch.Report, error) {
	runner := batch.NewRunner(s.Name, s.Config.Batch, progress)
	return runner.Run(ctx, s.ProcessFile)
}

func (s Standardizer) ProcessFile(_ context.Context, file discovery.File) error {
	outPath := filepath.Join(s.Config.OutputDir, s.Namer(file))
	errctx := cerr.Fields(cerr.F{
		"in_path":  file.Path,
		"out_path": outPath,
	})

	buffer, err := wavfile.Read(file.Path, s.Config.ToMono)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to read input file")
	}

	resampled, err := resample.Resample(buffer, s.Config.TargetSampleRate)
	if err != nil {
		return errctx.Field("target_sample_rate", s.Config.TargetSampleRate).
			Wrap(err).Error("Failed to resample")
	}

	transformed, err := transform.Apply(resampled, transform.OptionsFromStage(s.Config))
	if err != nil {
		return errctx.Wrap(err).Error("Failed to transform")
	}

	if err := wavfile.Write(outPath, transformed); err != nil {
		return errctx.Wrap(err).Error("Failed to write output file")
	}

	log.WithFields(log.Fields{
		"inPath":     file.Path,
		"outPath":    outPath,
		"sampleRate": transformed.SampleRate,
		"shape":      transformed.Shape,
	}).Debug("Standardized file")

	return nil
}

// Preprocess keeps every clip at full length. A trim duration on stageConfig
// only applies after separation.
func Preprocess(ctx context.Context, stageConfig config.Stage, progress batch.Progress) (batch.Report, error) {
	if stageConfig.TrimDuration > 0 {
		log.WithField("trimDuration", stageConfig.TrimDuration).Warn("Ignoring trim duration for preprocessing")
		stageConfig.TrimDuration = 0
	}

	standardizer := Standardizer{
		Name:   PreprocessStage,
		Config: stageConfig,
		Namer:  naming.Standardized,
	}

	return standardizer.Run(ctx, progress)
}

// PostprocessPassName tells the reports of the postprocess passes apart
func PostprocessPassName(sampleRate int) string {
	return fmt.Sprintf("%s_%d", PostprocessStage, sampleRate)
}

// Postprocess makes one pass per configured sample rate. Each pass writes
// into its own output directory.
func Postprocess(ctx context.Context, postprocessConfig config.Postprocess, progress batch.Progress) ([]batch.Report, error) {
	reports := make([]batch.Report, 0, len(postprocessConfig.SampleRates))

	for _, sampleRate := range postprocessConfig.SampleRates {
		standardizer := Standardizer{
			Name:   PostprocessPassName(sampleRate),
			Config: postprocessConfig.ForRate(sampleRate),
			Namer:  naming.Final,
		}

		report, err := standardizer.Run(ctx, progress)
		reports = append(reports, report)
		if err != nil {
			return reports, cerr.Field("sample_rate", sampleRate).Wrap(err).Error("Postprocess pass failed")
		}
	}

	return reports, nil
}
