package extract_embedding

import (
	"context"
	"path/filepath"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	"github.com/veedubyou/timbre/src/shared/stage/embedding"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/artifact"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/run_progress"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/toolchain"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "extract_embedding_job"
const ErrorMessage string = "Failed to extract OpenL3 embeddings"
const ProgressPercentage = 85

//counterfeiter:generate . ExtractEmbeddingJobHandler
type ExtractEmbeddingJobHandler interface {
	HandleExtractEmbeddingJob(ctx context.Context, message []byte) (JobParams, error)
}

type JobParams struct {
	job_message.RunIdentifier
}

func NewJobHandler(runStore runentity.Store, tools toolchain.Toolchain, uploader artifact.Uploader) JobHandler {
	return JobHandler{
		runStore: runStore,
		tools:    tools,
		uploader: uploader,
	}
}

type JobHandler struct {
	runStore runentity.Store
	tools    toolchain.Toolchain
	uploader artifact.Uploader
}

func (h JobHandler) HandleExtractEmbeddingJob(ctx context.Context, message []byte) (JobParams, error) {
	params, err := job_message.ParseRunIdentifier(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to parse the extract embedding job")
	}

	errctx := cerr.Field("run_id", params.RunID)

	run, err := runprogress.StartStage(ctx, h.runStore, params.RunID,
		embedding.StageName, "Extracting OpenL3 embeddings", ProgressPercentage)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to start embedding extraction")
	}

	embeddingConfig := h.tools.Embedding(run.Defined.Pipeline.Embedding)
	errctx = errctx.Field("embedding_size", embeddingConfig.EmbeddingSize)

	model, err := embedding.NewOpenL3(embeddingConfig, h.tools.Executor)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to set up openl3")
	}

	stage, err := embedding.NewStage(embeddingConfig, model)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to set up the embedding stage")
	}

	result, err := stage.Run(ctx, &batch.LogProgress{})
	if err != nil {
		if recordErr := runprogress.RecordReports(ctx, h.runStore, params.RunID, result.Report); recordErr != nil {
			return JobParams{}, errctx.Wrap(recordErr).Error("Failed to record the embedding report")
		}

		return JobParams{}, errctx.Wrap(err).Error("Failed to extract embeddings")
	}

	errctx = errctx.Field("dataset_path", result.DatasetPath)

	url, err := h.uploader.Upload(ctx, params.RunID, embedding.StageName, result.DatasetPath)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to upload the embedding dataset")
	}

	err = runprogress.RecordArtifact(ctx, h.runStore, params.RunID, result.Report, filepath.Base(result.DatasetPath), url)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to record the embedding dataset")
	}

	return JobParams{RunIdentifier: params}, nil
}
