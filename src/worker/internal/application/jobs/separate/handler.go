package separate

import (
	"context"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	separatestage "github.com/veedubyou/timbre/src/shared/stage/separate"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/run_progress"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/toolchain"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const JobType string = "separate_job"
const ErrorMessage string = "Failed to separate the vocals from the choruses"
const ProgressPercentage = 25

//counterfeiter:generate . SeparateJobHandler
type SeparateJobHandler interface {
	HandleSeparateJob(ctx context.Context, message []byte) (JobParams, error)
}

type JobParams struct {
	job_message.RunIdentifier
}

func NewJobHandler(runStore runentity.Store, tools toolchain.Toolchain) JobHandler {
	return JobHandler{
		runStore: runStore,
		tools:    tools,
	}
}

type JobHandler struct {
	runStore runentity.Store
	tools    toolchain.Toolchain
}

func (h JobHandler) HandleSeparateJob(ctx context.Context, message []byte) (JobParams, error) {
	params, err := job_message.ParseRunIdentifier(message)
	if err != nil {
		return JobParams{}, cerr.Wrap(err).Error("Failed to parse the separate job")
	}

	errctx := cerr.Field("run_id", params.RunID)

	run, err := runprogress.StartStage(ctx, h.runStore, params.RunID,
		separatestage.StageName, "Separating the vocals", ProgressPercentage)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to start separation")
	}

	separationConfig := h.tools.Separation(run.Defined.Pipeline.Separate)
	errctx = errctx.Fields(cerr.F{
		"model":  separationConfig.Model,
		"device": separationConfig.Device,
	})

	demucs, err := separatestage.NewDemucs(separationConfig, h.tools.Executor)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to set up demucs")
	}

	stage, err := separatestage.NewStage(separationConfig, demucs)
	if err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to set up the separation stage")
	}

	report, stageErr := stage.Run(ctx, &batch.LogProgress{})

	if err := runprogress.RecordReports(ctx, h.runStore, params.RunID, report); err != nil {
		return JobParams{}, errctx.Wrap(err).Error("Failed to record the separation report")
	}

	if stageErr != nil {
		return JobParams{}, errctx.Wrap(stageErr).Error("Failed to separate the vocals")
	}

	return JobParams{RunIdentifier: params}, nil
}
