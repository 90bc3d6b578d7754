package mfcc

import (
	"context"
	"path/filepath"

	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/audio/naming"
	"github.com/veedubyou/timbre/src/shared/audio/wavfile"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/npy"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	"github.com/veedubyou/timbre/src/shared/stage/dataset"
)

const StageName = "extract_mfcc"

type Result struct {
	Report      batch.Report
	Dataset     dataset.Dataset
	DatasetPath string
}

type Stage struct {
	config    config.MFCC
	extractor Extractor
}

func NewStage(mfccConfig config.MFCC) Stage {
	return Stage{
		config:    mfccConfig,
		extractor: NewExtractor(mfccConfig),
	}
}

// Run writes one .npy feature vector per input file and then the dataset
// of every vector that was extracted
func (s Stage) Run(ctx context.Context, progress batch.Progress) (Result, error) {
	mfccs := dataset.NewMFCC()

	runner := batch.NewRunner(StageName, s.config.Batch, progress)
	report, err := runner.Run(ctx, func(_ context.Context, file discovery.File) error {
		name, features, err := s.processFile(file)
		if err != nil {
			return err
		}

		mfccs.Append(name, [][]float64{features}, nil)
		return nil
	})
	if err != nil {
		return Result{Report: report}, err
	}

	path, err := mfccs.Save(s.config.OutputDir)
	if err != nil {
		return Result{Report: report}, cerr.Wrap(err).Error("Failed to save the MFCC dataset")
	}

	return Result{
		Report:      report,
		Dataset:     mfccs,
		DatasetPath: path,
	}, nil
}

func (s Stage) processFile(file discovery.File) (string, []float64, error) {
	errctx := cerr.Field("in_path", file.Path)

	name, err := naming.MFCC(file)
	if err != nil {
		return "", nil, errctx.Wrap(err).Error("Cannot name the MFCC output")
	}

	buffer, err := wavfile.Read(file.Path, true)
	if err != nil {
		return "", nil, errctx.Wrap(err).Error("Failed to read input file")
	}

	features, err := s.extractor.Features(buffer)
	if err != nil {
		return "", nil, errctx.Wrap(err).Error("Failed to extract MFCCs")
	}

	outPath := filepath.Join(s.config.OutputDir, name)
	if err := npy.Save(outPath, features); err != nil {
		return "", nil, errctx.Field("out_path", outPath).Wrap(err).Error("Failed to save MFCC vector")
	}

	return name, features, nil
}
