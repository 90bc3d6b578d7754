package postprocess

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

const JobType string = "postprocess_job"
const ErrorMessage string = "Failed to postprocess the separated vocals"
const ProgressPercentage = 55

//counterfeiter:generate . PostprocessJobHandler
type PostprocessJobHandler interface {
	HandlePostprocessJob(ctx context.Context, message []byte) (JobParams, error)
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

func (h JobHandler) HandlePostprocessJob(ctx context.Context, message []byte) (JobParams, error) {
	params, err := job_message.ParseRunIdentifier(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to parse the postprocess job")
	}

	errctx := cerr.Field("run_id", params.RunID)

	run, err := runprogress.StartStage(ctx, h.runStore, params.RunID,
		standardize.PostprocessStage, "Postprocessing the separated vocals", ProgressPercentage)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to start postprocessing")
	}

	postprocessConfig := run.Defined.Pipeline.Postprocess
	errctx = errctx.Field("sample_rates", postprocessConfig.SampleRates)

	reports, stageErr := standardize.Postprocess(ctx, postprocessConfig, &batch.LogProgress{})

	if err := runprogress.RecordReports(ctx, h.runStore, params.RunID, reports...); err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to record the postprocess reports")
	}

	if stageErr != nil {
		return JobParams{}, errctx.Wrap(stageErr).Error("Failed to postprocess the vocals")
	}

	return JobParams{RunIdentifier: params}, nil
}
