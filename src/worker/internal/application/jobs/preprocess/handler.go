package preprocess

import (
	"context"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	"github.com/veedubyou/timbre/src/shared/stage/standardize"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/run_progress"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "preprocess_job"
const ErrorMessage string = "Failed to standardize the input choruses"
const ProgressPercentage = 10

//counterfeiter:generate . PreprocessJobHandler
type PreprocessJobHandler interface {
	HandlePreprocessJob(ctx context.Context, message []byte) (JobParams, error)
}

type JobParams struct {
	job_message.RunIdentifier
}

func NewJobHandler(runStore runentity.Store) JobHandler {
	return JobHandler{
		runStore: runStore,
	}
}

type JobHandler struct {
	runStore runentity.Store
}

func (h JobHandler) HandlePreprocessJob(ctx context.Context, message []byte) (JobParams, error) {
	params, err := job_message.ParseRunIdentifier(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to parse the preprocess job")
	}

	errctx := cerr.Field("run_id", params.RunID)

	run, err := runprogress.StartStage(ctx, h.runStore, params.RunID,
		standardize.PreprocessStage, "Standardizing the input choruses", ProgressPercentage)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to start preprocessing")
	}

	report, stageErr := standardize.Preprocess(ctx, run.Defined.Pipeline.Preprocess, &batch.LogProgress{})

	if err := runprogress.RecordReports(ctx, h.runStore, params.RunID, report); err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to record the preprocess report")
	}

	if stageErr != nil {
		return JobParams{}, errctx.Wrap(stageErr).Error("Failed to preprocess the choruses")
	}

	return JobParams{RunIdentifier: params}, nil
}
