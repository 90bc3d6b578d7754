package embedding

import (
	"context"
	"path/filepath"

	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/audio/naming"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
	"github.com/veedubyou/timbre/src/shared/lib/npy"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	"github.com/veedubyou/timbre/src/shared/stage/dataset"
)

const StageName = "extract_embedding"

type Result struct {
	Report      batch.Report
	Dataset     dataset.Dataset
	DatasetPath string
}

type Stage struct {
	config config.Embedding
	model  Model
}

func NewStage(embeddingConfig config.Embedding, model Model) (Stage, error) {
	if model.Size() != embeddingConfig.EmbeddingSize {
		return Stage{}, cerr.Fields(cerr.F{
			"model_size":  model.Size(),
			"config_size": embeddingConfig.EmbeddingSize,
		}).Error("Model and config disagree on the embedding size")
	}

	return Stage{
		config: embeddingConfig,
		model:  model,
	}, nil
}

// Run saves one .npy embedding matrix per input file and then the dataset
// of every embedding with its timestamps
func (s Stage) Run(ctx context.Context, progress batch.Progress) (Result, error) {
	embeddings := dataset.NewEmbedding(s.config.EmbeddingSize)

	runner := batch.NewRunner(StageName, s.config.Batch, progress)
	report, err := runner.Run(ctx, func(ctx context.Context, file discovery.File) error {
		name, embedding, err := s.processFile(ctx, file)
		if err != nil {
			return err
		}

		embeddings.Append(name, embedding.Rows(), embedding.Timestamps)
		return nil
	})
	if err != nil {
		return Result{Report: report}, err
	}

	path, err := embeddings.Save(s.config.OutputDir)
	if err != nil {
		return Result{Report: report}, cerr.Wrap(err).Error("Failed to save the embedding dataset")
	}

	return Result{
		Report:      report,
		Dataset:     embeddings,
		DatasetPath: path,
	}, nil
}

func (s Stage) processFile(ctx context.Context, file discovery.File) (string, Embedding, error) {
	errctx := cerr.Field("in_path", file.Path)

	name, err := naming.Embedding(file, s.config.EmbeddingSize)
	if err != nil {
		return "", Embedding{}, errctx.Wrap(err).Error("Cannot name the embedding output")
	}

	embedding, err := s.model.Embed(ctx, file.Path)
	if err != nil {
		return "", Embedding{}, errctx.Wrap(err).Error("Failed to embed file")
	}

	if _, size := embedding.Frames.Dims(); size != s.config.EmbeddingSize {
		return "", Embedding{}, errctx.Field("size", size).
			Wrap(mark.Message(audio.ModelFailureMark, "Model returned the wrong embedding size")).
			Error("Failed to embed file")
	}

	outPath := filepath.Join(s.config.OutputDir, name)
	if err := npy.Save(outPath, embedding.Frames); err != nil {
		return "", Embedding{}, errctx.Field("out_path", outPath).Wrap(err).Error("Failed to save embedding")
	}

	return name, embedding, nil
}
