package separate

import (
	"context"
	"path/filepath"

	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/audio/naming"
	"github.com/veedubyou/timbre/src/shared/audio/resample"
	"github.com/veedubyou/timbre/src/shared/audio/wavfile"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/working_dir"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
)

const StageName = "separate"

const stereoInputName = "input.wav"

type Stage struct {
	config     config.Separation
	separator  Separator
	workingDir working_dir.WorkingDir
}

func NewStage(separationConfig config.Separation, separator Separator) (Stage, error) {
	workingDir, err := working_dir.NewWorkingDir(separationConfig.WorkingDir)
	if err != nil {
		return Stage{}, cerr.Wrap(err).Error("Failed to set up the separation working dir")
	}

	return Stage{
		config:     separationConfig,
		separator:  separator,
		workingDir: workingDir,
	}, nil
}

func (s Stage) Run(ctx context.Context, progress batch.Progress) (batch.Report, error) {
	runner := batch.NewRunner(StageName, s.config.Batch, progress)
	return runner.Run(ctx, s.ProcessFile)
}

// ProcessFile feeds a stereo copy of the input to the separator and keeps
// the vocals at the input's sample rate
func (s Stage) ProcessFile(ctx context.Context, file discovery.File) error {
	outPath := filepath.Join(s.config.OutputDir, naming.Vox(file))
	errctx := cerr.Fields(cerr.F{
		"in_path":  file.Path,
		"out_path": outPath,
	})

	buffer, err := wavfile.Read(file.Path, false)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to read input file")
	}

	tempDir, cleanUp, err := s.workingDir.MakeTempDir("separate-*")
	if err != nil {
		return errctx.Wrap(err).Error("Failed to make a temp dir for separation")
	}
	defer cleanUp()

	stereoPath := filepath.Join(tempDir, stereoInputName)
	if err := wavfile.Write(stereoPath, buffer.Stereo()); err != nil {
		return errctx.Wrap(err).Error("Failed to write the stereo copy of the input")
	}

	stems, err := s.separator.Separate(ctx, stereoPath, filepath.Join(tempDir, "stems"))
	if err != nil {
		return errctx.Wrap(err).Error("Failed to separate stems")
	}

	vocals, err := wavfile.Read(stems.Vocals(), false)
	if err != nil {
		return errctx.Field("vocals_path", stems.Vocals()).Wrap(err).Error("Failed to read the vocal stem")
	}

	vocals, err = resample.Resample(vocals, buffer.SampleRate)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to resample the vocal stem back to the input rate")
	}

	if err := wavfile.Write(outPath, vocals); err != nil {
		return errctx.Wrap(err).Error("Failed to write the vocal stem")
	}

	return nil
}
