package embedding

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
	"github.com/veedubyou/timbre/src/shared/lib/npy"
	"github.com/veedubyou/timbre/src/shared/lib/working_dir"
)

const (
	embeddingKey  = "embedding"
	timestampsKey = "timestamps"
)

var _ Model = OpenL3{}

// OpenL3 runs the openl3 command line tool, which writes an .npz with the
// embedding and timestamps arrays for each input
type OpenL3 struct {
	binPath     string
	inputRepr   string
	contentType string
	size        int
	hopSize     float64
	workingDir  working_dir.WorkingDir
	executor    executor.Executor
}

func NewOpenL3(embeddingConfig config.Embedding, executor executor.Executor) (OpenL3, error) {
	workingDir, err := working_dir.NewWorkingDir(embeddingConfig.WorkingDir)
	if err != nil {
		return OpenL3{}, cerr.Wrap(err).Error("Failed to set up the openl3 working dir")
	}

	return OpenL3{
		binPath:     embeddingConfig.OpenL3BinPath,
		inputRepr:   embeddingConfig.InputRepr,
		contentType: embeddingConfig.ContentType,
		size:        embeddingConfig.EmbeddingSize,
		hopSize:     embeddingConfig.HopSize,
		workingDir:  workingDir,
		executor:    executor,
	}, nil
}

func (o OpenL3) Size() int {
	return o.size
}

func (o OpenL3) Embed(ctx context.Context, wavPath string) (Embedding, error) {
	absWavPath, err := filepath.Abs(wavPath)
	if err != nil {
		return Embedding{}, cerr.Wrap(err).Error("Cannot convert source path to absolute format")
	}

	if ctx.Err() != nil {
		return Embedding{}, cerr.Wrap(ctx.Err()).Error("Context cancelled before embedding could happen")
	}

	outputDir, cleanUp, err := o.workingDir.MakeTempDir("openl3-*")
	if err != nil {
		return Embedding{}, cerr.Wrap(err).Error("Failed to make a temp dir for openl3 output")
	}
	defer cleanUp()

	logger := log.WithFields(log.Fields{
		"sourcePath": absWavPath,
		"destPath":   outputDir,
		"inputRepr":  o.inputRepr,
		"size":       o.size,
	})

	args := []string{
		"audio", absWavPath,
		"--output-dir", outputDir,
		"--input-repr", o.inputRepr,
		"--content-type", o.contentType,
		"--audio-embedding-size", strconv.Itoa(o.size),
		"--audio-hop-size", strconv.FormatFloat(o.hopSize, 'f', -1, 64),
	}

	errctx := cerr.Field("openl3_bin_path", o.binPath).Field("openl3_args", args)

	logger.Debug("Running openl3 command")

	cmd := o.executor.Command(ctx, o.binPath, args...)
	cmd.SetDir(o.workingDir.Root())

	output, err := cmd.CombinedOutput()
	if err != nil {
		markedErr := mark.Wrap(err, audio.ModelFailureMark, "openl3 exited with an error")
		return Embedding{}, errctx.Field("openl3_output", string(output)).
			Wrap(markedErr).
			Error(fmt.Sprintf("Error occurred while running openl3: %s", string(output)))
	}

	logger.Debug(string(output))

	embedding, err := o.readOutput(outputDir)
	if err != nil {
		return Embedding{}, errctx.Wrap(err).Error("Failed to read openl3 output")
	}

	return embedding, nil
}

func (o OpenL3) readOutput(outputDir string) (Embedding, error) {
	matches, err := filepath.Glob(filepath.Join(outputDir, "*.npz"))
	if err != nil {
		return Embedding{}, cerr.Wrap(err).Error("Failed to search the output dir")
	}

	if len(matches) != 1 {
		return Embedding{}, cerr.Field("matches", matches).
			Wrap(mark.Message(audio.ModelFailureMark, "Expected exactly one npz output")).
			Error("Unexpected openl3 output")
	}

	arrays, err := npy.LoadArchive(matches[0])
	if err != nil {
		return Embedding{}, err
	}

	embeddingArray, hasEmbedding := arrays[embeddingKey]
	timestampsArray, hasTimestamps := arrays[timestampsKey]
	if !hasEmbedding || !hasTimestamps {
		return Embedding{}, mark.Message(audio.ModelFailureMark, "openl3 output is missing the embedding or timestamps")
	}

	frames, err := embeddingArray.Matrix()
	if err != nil {
		return Embedding{}, mark.Wrap(err, audio.ModelFailureMark, "openl3 embedding is not a matrix")
	}

	numFrames, size := frames.Dims()
	errctx := cerr.Fields(cerr.F{
		"frames":     numFrames,
		"size":       size,
		"timestamps": len(timestampsArray.Data),
	})

	if size != o.size {
		return Embedding{}, errctx.Wrap(mark.Messagef(audio.ModelFailureMark,
			"openl3 returned embeddings of size %d, expected %d", size, o.size)).
			Error("Embedding size mismatch")
	}

	if len(timestampsArray.Data) != numFrames {
		return Embedding{}, errctx.Wrap(mark.Message(audio.ModelFailureMark,
			"openl3 returned a timestamp count that doesn't match the frames")).
			Error("Timestamp count mismatch")
	}

	return Embedding{
		Frames:     frames,
		Timestamps: timestampsArray.Data,
	}, nil
}
