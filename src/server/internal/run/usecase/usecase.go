package runusecase

import (
	"context"
	"path/filepath"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/go-playground/validator/v10"
	"github.com/veedubyou/timbre/src/server/internal/errors/api"
	"github.com/veedubyou/timbre/src/server/internal/run/errors"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/rabbitmq"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/shared/run/storage"
)

const (
	startJobType = "start_job"
	workingDir   = "wd"
)

var validate = validator.New()

// RunRequest asks for a pipeline run. Without a Pipeline the research
// layout under Root is used. A FailurePolicy overrides every stage's policy.
type RunRequest struct {
	Root          string               `json:"root" validate:"required_without=Pipeline"`
	WorkingDir    string               `json:"working_dir"`
	FailurePolicy config.FailurePolicy `json:"failure_policy" validate:"omitempty,oneof=fail_fast isolate"`
	Pipeline      *config.Pipeline     `json:"pipeline"`
}

func (r RunRequest) pipeline() config.Pipeline {
	var pipeline config.Pipeline
	if r.Pipeline != nil {
		pipeline = *r.Pipeline
	} else {
		wd := r.WorkingDir
		if wd == "" {
			wd = filepath.Join(r.Root, workingDir)
		}
		pipeline = config.DefaultPipeline(r.Root, wd)
	}

	if r.FailurePolicy != "" {
		pipeline.Preprocess.FailurePolicy = r.FailurePolicy
		pipeline.Separate.FailurePolicy = r.FailurePolicy
		pipeline.Postprocess.FailurePolicy = r.FailurePolicy
		pipeline.MFCC.FailurePolicy = r.FailurePolicy
		pipeline.Embedding.FailurePolicy = r.FailurePolicy
	}

	return pipeline
}

type runIdentifier struct {
	RunID string `json:"run_id"`
}

type Usecase struct {
	db        runentity.Store
	publisher rabbitmq.Publisher
}

func NewUsecase(db runentity.Store, publisher rabbitmq.Publisher) Usecase {
	return Usecase{
		db:        db,
		publisher: publisher,
	}
}

func (u Usecase) GetRun(ctx context.Context, runID string) (runentity.Run, *api.Error) {
	run, err := u.db.GetRun(ctx, runID)
	if err != nil {
		err = errors.Wrap(err, "Failed to get run from DB")
		switch {
		case markers.Is(err, runstorage.RunNotFound):
			return runentity.Run{}, api.CommitError(err,
				runerrors.RunNotFoundCode,
				"The pipeline run could not be found")

		case markers.Is(err, runstorage.IDEmptyMark):
			return runentity.Run{}, api.CommitError(err,
				runerrors.BadRunRequestCode,
				"A run ID is required")

		case markers.Is(err, runstorage.UnmarshalMark):
			fallthrough
		case markers.Is(err, runstorage.DefaultErrorMark):
			fallthrough
		default:
			return runentity.Run{}, api.CommitError(err,
				api.DefaultErrorCode,
				"Unknown error: Failed to fetch the pipeline run")
		}
	}

	return run, nil
}

func (u Usecase) CreateRun(ctx context.Context, request RunRequest) (runentity.Run, *api.Error) {
	if err := validate.Struct(request); err != nil {
		err = errors.Wrap(err, "Run request is invalid")
		return runentity.Run{}, api.CommitError(err,
			runerrors.BadRunRequestCode,
			"The run request is missing its research directory or has an unknown failure policy")
	}

	pipeline := request.pipeline()
	if err := config.Validate(pipeline); err != nil {
		return runentity.Run{}, api.CommitError(err,
			runerrors.BadRunRequestCode,
			"The pipeline configuration of the run request is invalid")
	}

	run := runentity.NewRun(pipeline)
	run.CreateID()

	if err := u.db.SetRun(ctx, run); err != nil {
		err = errors.Wrap(err, "Failed to save the new run")
		return runentity.Run{}, api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to save the pipeline run. Please contact the developer")
	}

	if err := u.publishStartJob(ctx, run.GetID()); err != nil {
		u.markRunFailed(run.GetID(), err)
		return runentity.Run{}, api.CommitError(err,
			api.DefaultErrorCode,
			"Unknown error: Failed to queue the pipeline run. Please contact the developer")
	}

	return run, nil
}

func (u Usecase) publishStartJob(ctx context.Context, runID string) error {
	publishing, err := rabbitmq.JobPublishing(startJobType, runIdentifier{RunID: runID})
	if err != nil {
		return errors.Wrap(err, "Failed to build the start job")
	}

	if err = u.publisher.Publish(ctx, publishing); err != nil {
		return errors.Wrap(err, "Failed to publish message to rabbitmq")
	}

	return nil
}

func (u Usecase) markRunFailed(runID string, publishErr error) {
	updater := func(run runentity.Run) (runentity.Run, error) {
		run.Fail("Failed to queue the pipeline run", publishErr.Error())
		return run, nil
	}

	// the request context may already be done by the time this runs
	err := u.db.UpdateRun(context.Background(), runID, updater)
	if err != nil {
		log.WithError(err).
			WithField("run_id", runID).
			Error("Failed to mark the run as failed")
	}
}
