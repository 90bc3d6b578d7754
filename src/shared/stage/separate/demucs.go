package separate

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
	"github.com/veedubyou/timbre/src/shared/lib/working_dir"
)

var _ Separator = Demucs{}

type Demucs struct {
	binPath    string
	model      string
	device     string
	workingDir working_dir.WorkingDir
	executor   executor.Executor
}

func NewDemucs(separationConfig config.Separation, executor executor.Executor) (Demucs, error) {
	workingDir, err := working_dir.NewWorkingDir(separationConfig.WorkingDir)
	if err != nil {
		return Demucs{}, cerr.Wrap(err).Error("Failed to set up the demucs working dir")
	}

	return Demucs{
		binPath:    separationConfig.DemucsBinPath,
		model:      separationConfig.Model,
		device:     separationConfig.Device,
		workingDir: workingDir,
		executor:   executor,
	}, nil
}

func (d Demucs) WorkingDir() working_dir.WorkingDir {
	return d.workingDir
}

func (d Demucs) Separate(ctx context.Context, stereoWavPath string, outputDir string) (Stems, error) {
	logger := log.WithFields(log.Fields{
		"sourcePath": stereoWavPath,
		"destPath":   outputDir,
		"model":      d.model,
		"device":     d.device,
		"workingDir": d.workingDir.Root(),
	})

	// separation is a lengthy process, if we want to halt now is the time
	if ctx.Err() != nil {
		return Stems{}, cerr.Wrap(ctx.Err()).Error("Context cancelled before separating could happen")
	}

	logger.Info("Running demucs command")

	args := []string{"-n", d.model, "-d", d.device, "-o", outputDir, "--filename", "{stem}.{ext}", stereoWavPath}

	errctx := cerr.Field("demucs_bin_path", d.binPath).Field("demucs_args", args)

	cmd := d.executor.Command(ctx, d.binPath, args...)
	cmd.SetDir(d.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		markedErr := mark.Wrap(err, audio.ModelFailureMark, "Demucs exited with an error")
		return Stems{}, errctx.Field("demucs_output", string(output)).
			Wrap(markedErr).
			Error(fmt.Sprintf("Error occurred while running demucs: %s", string(output)))
	}

	logger.Debug(string(output))
	logger.Info("Finished demucs command")

	return collectStems(outputDir)
}

// demucs nests its output under the model name, so the whole tree is
// searched for <stem>.wav
func collectStems(dir string) (Stems, error) {
	found := map[Stem]string{}

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		stem := Stem(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		found[stem] = path
		return nil
	})
	if err != nil {
		return Stems{}, cerr.Field("dir", dir).Wrap(err).Error("Error reading demucs output directory")
	}

	stems := Stems{}
	for i, stem := range StemOrder {
		path, ok := found[stem]
		if !ok {
			return Stems{}, cerr.Field("dir", dir).Field("stem", stem).
				Wrap(mark.Messagef(audio.ModelFailureMark, "Demucs did not produce the %s stem", stem)).
				Error("Missing stem in demucs output")
		}
		stems[i] = path
	}

	return stems, nil
}
