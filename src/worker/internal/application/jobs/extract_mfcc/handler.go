package extract_mfcc

import (
	"context"
	"path/filepath"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	"github.com/veedubyou/timbre/src/shared/stage/mfcc"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/artifact"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/run_progress"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "extract_mfcc_job"
const ErrorMessage string = "Failed to extract MFCC features"
const ProgressPercentage = 70

//counterfeiter:generate . ExtractMFCCJobHandler
type ExtractMFCCJobHandler interface {
	HandleExtractMFCCJob(ctx context.Context, message []byte) (JobParams, error)
}

type JobParams struct {
	job_message.RunIdentifier
}

func NewJobHandler(runStore runentity.Store, uploader artifact.Uploader) JobHandler {
	return JobHandler{
		runStore: runStore,
		uploader: uploader,
	}
}

type JobHandler struct {
	runStore runentity.Store
	uploader artifact.Uploader
}

func (h JobHandler) HandleExtractMFCCJob(ctx context.Context, message []byte) (JobParams, error) {
	params, err := job_message.ParseRunIdentifier(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to parse the extract MFCC job")
	}

	errctx := cerr.Field("run_id", params.RunID)

	run, err := runprogress.StartStage(ctx, h.runStore, params.RunID,
		mfcc.StageName, "Extracting MFCC features", ProgressPercentage)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to start MFCC extraction")
	}

	result, err := mfcc.NewStage(run.Defined.Pipeline.MFCC).Run(ctx, &batch.LogProgress{})
	if err != nil {
		if recordErr := runprogress.RecordReports(ctx, h.runStore, params.RunID, result.Report); recordErr != nil {
			return JobParams{}, errctx.Wrap(recordErr).Error("Failed to record the MFCC report")
		}

		return JobParams{}, errctx.Wrap(err).Error("Failed to extract MFCCs")
	}

	errctx = errctx.Field("dataset_path", result.DatasetPath)

	url, err := h.uploader.Upload(ctx, params.RunID, mfcc.StageName, result.DatasetPath)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to upload the MFCC dataset")
	}

	err = runprogress.RecordArtifact(ctx, h.runStore, params.RunID, result.Report, filepath.Base(result.DatasetPath), url)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to record the MFCC dataset")
	}

	return JobParams{RunIdentifier: params}, nil
}
