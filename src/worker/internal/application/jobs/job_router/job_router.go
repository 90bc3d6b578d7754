package job_router

import (
	"context"

	"github.com/apex/log"
	"github.com/rabbitmq/amqp091-go"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/rabbitmq"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/complete"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/extract_embedding"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/extract_mfcc"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/job_message"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/postprocess"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/preprocess"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/separate"
	"github.com/veedubyou/timbre/src/worker/internal/application/jobs/start"
)

type JobRouter struct {
	runStore  runentity.Store
	publisher rabbitmq.Publisher

	startHandler            start.StartJobHandler
	preprocessHandler       preprocess.PreprocessJobHandler
	separateHandler         separate.SeparateJobHandler
	postprocessHandler      postprocess.PostprocessJobHandler
	extractMFCCHandler      extract_mfcc.ExtractMFCCJobHandler
	extractEmbeddingHandler extract_embedding.ExtractEmbeddingJobHandler
	completeHandler         complete.CompleteJobHandler
}

func NewJobRouter(
	runStore runentity.Store,
	publisher rabbitmq.Publisher,
	startHandler start.StartJobHandler,
	preprocessHandler preprocess.PreprocessJobHandler,
	separateHandler separate.SeparateJobHandler,
	postprocessHandler postprocess.PostprocessJobHandler,
	extractMFCCHandler extract_mfcc.ExtractMFCCJobHandler,
	extractEmbeddingHandler extract_embedding.ExtractEmbeddingJobHandler,
	completeHandler complete.CompleteJobHandler,
) JobRouter {
	return JobRouter{
		runStore:                runStore,
		publisher:               publisher,
		startHandler:            startHandler,
		preprocessHandler:       preprocessHandler,
		separateHandler:         separateHandler,
		postprocessHandler:      postprocessHandler,
		extractMFCCHandler:      extractMFCCHandler,
		extractEmbeddingHandler: extractEmbeddingHandler,
		completeHandler:         completeHandler,
	}
}

// HandleMessage runs the job named by the delivery type and queues the job
// that follows it. A failed job marks the run as errored and stops the chain.
func (j JobRouter) HandleMessage(ctx context.Context, message amqp091.Delivery) error {
	switch message.Type {
	case start.JobType:
		params, err := j.startHandler.HandleStartJob(ctx, message.Body)
		return j.next(ctx, message, start.ErrorMessage, preprocess.JobType, params.RunIdentifier, err)

	case preprocess.JobType:
		params, err := j.preprocessHandler.HandlePreprocessJob(ctx, message.Body)
		return j.next(ctx, message, preprocess.ErrorMessage, separate.JobType, params.RunIdentifier, err)

	case separate.JobType:
		params, err := j.separateHandler.HandleSeparateJob(ctx, message.Body)
		return j.next(ctx, message, separate.ErrorMessage, postprocess.JobType, params.RunIdentifier, err)

	case postprocess.JobType:
		params, err := j.postprocessHandler.HandlePostprocessJob(ctx, message.Body)
		return j.next(ctx, message, postprocess.ErrorMessage, extract_mfcc.JobType, params.RunIdentifier, err)

	case extract_mfcc.JobType:
		params, err := j.extractMFCCHandler.HandleExtractMFCCJob(ctx, message.Body)
		return j.next(ctx, message, extract_mfcc.ErrorMessage, extract_embedding.JobType, params.RunIdentifier, err)

	case extract_embedding.JobType:
		params, err := j.extractEmbeddingHandler.HandleExtractEmbeddingJob(ctx, message.Body)
		return j.next(ctx, message, extract_embedding.ErrorMessage, complete.JobType, params.RunIdentifier, err)

	case complete.JobType:
		_, err := j.completeHandler.HandleCompleteJob(ctx, message.Body)
		if err != nil {
			return j.handleError(ctx, message, complete.ErrorMessage, err)
		}
		return nil

	default:
		return cerr.Field("message_type", message.Type).Error("Message type not recognized")
	}
}

func (j JobRouter) next(ctx context.Context, message amqp091.Delivery, errorMessage string, nextJobType string, params job_message.RunIdentifier, jobErr error) error {
	if jobErr != nil {
		return j.handleError(ctx, message, errorMessage, jobErr)
	}

	errctx := cerr.Field("run_id", params.RunID).Field("next_job_type", nextJobType)

	publishing, err := rabbitmq.JobPublishing(nextJobType, params)
	if err != nil {
		return j.handleError(ctx, message, errorMessage, errctx.Wrap(err).Error("Failed to build the next job"))
	}

	if err := j.publisher.Publish(ctx, publishing); err != nil {
		return j.handleError(ctx, message, errorMessage, errctx.Wrap(err).Error("Failed to publish the next job"))
	}

	log.WithFields(log.Fields{
		"run_id":   params.RunID,
		"finished": message.Type,
		"next":     nextJobType,
	}).Info("Queued the next job")

	return nil
}

func (j JobRouter) handleError(ctx context.Context, message amqp091.Delivery, errorMessage string, jobErr error) error {
	errctx := cerr.Field("message_type", message.Type)

	params, err := job_message.ParseRunIdentifier(message.Body)
	if err != nil {
		// without a run ID there's nothing to mark as failed
		return errctx.Wrap(jobErr).Error(errorMessage)
	}

	errctx = errctx.Field("run_id", params.RunID)

	updater := func(run runentity.Run) (runentity.Run, error) {
		run.Fail(errorMessage, jobErr.Error())
		return run, nil
	}

	if err := j.runStore.UpdateRun(ctx, params.RunID, updater); err != nil {
		cerr.Log(errctx.Wrap(err).Error("Failed to mark the run as failed"))
	}

	return errctx.Wrap(jobErr).Error(errorMessage)
}
