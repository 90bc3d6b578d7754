package complete

import (
	"context"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "complete_job"
const ErrorMessage string = "Failed to mark the pipeline run as complete"

//counterfeiter:generate . CompleteJobHandler
type CompleteJobHandler interface {
	HandleCompleteJob(ctx context.Context, message []byte) (JobParams, error)
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

func (h JobHandler) HandleCompleteJob(ctx context.Context, message []byte) (JobParams, error) {
	params, err := job_message.ParseRunIdentifier(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to parse the complete job")
	}

	errctx := cerr.Field("run_id", params.RunID)

	updater := func(run runentity.Run) (runentity.Run, error) {
		if run.Defined.Status != runentity.ProcessingStatus {
			return runentity.Run{}, errctx.Field("status", run.Defined.Status).
				Error("Run is not in processing status, refusing to complete it")
		}

		run.Complete()
		return run, nil
	}

	if err = h.runStore.UpdateRun(ctx, params.RunID, updater); err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to complete the run")
	}

	return JobParams{RunIdentifier: params}, nil
}
