package start

import (
	"context"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "start_job"
const ErrorMessage string = "Failed to start the pipeline run"
const StageName string = "start"

//counterfeiter:generate . StartJobHandler
type StartJobHandler interface {
	HandleStartJob(ctx context.Context, message []byte) (JobParams, error)
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

func (h JobHandler) HandleStartJob(ctx context.Context, message []byte) (JobParams, error) {
	params, err := job_message.ParseRunIdentifier(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to parse the start job")
	}

	errctx := cerr.Field("run_id", params.RunID)

	updater := func(run runentity.Run) (runentity.Run, error) {
		if run.Defined.Status != runentity.RequestedStatus {
			return runentity.Run{}, errctx.Field("status", run.Defined.Status).
				Error("Run is not in requested status, abort processing to be safe")
		}

		run.StartStage(StageName, "The pipeline run has been picked up", runentity.InitialProgressPercentage)
		return run, nil
	}

	if err = h.runStore.UpdateRun(ctx, params.RunID, updater); err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to set the run status")
	}

	return JobParams{RunIdentifier: params}, nil
}
