package runprogress

import (
	"context"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
)

// StartStage moves a run that is already processing onto the next stage and
// returns the run as stored
func StartStage(ctx context.Context, runStore runentity.Store, runID string, stage string, message string, progress int) (runentity.Run, error) {
	errctx := cerr.Field("run_id", runID).Field("stage", stage)

	var startedRun runentity.Run
	updater := func(run runentity.Run) (runentity.Run, error) {
		if run.Defined.Status != runentity.ProcessingStatus {
			return runentity.Run{}, errctx.Field("status", run.Defined.Status).
				Error("Run is not in processing status, abort processing to be safe")
		}

		run.StartStage(stage, message, progress)
		startedRun = run
		return run, nil
	}

	if err := runStore.UpdateRun(ctx, runID, updater); err != nil {
		return runentity.Run{}, errctx.Wrap(err).Error("Failed to start the stage on the run")
	}

	return startedRun, nil
}

func RecordReports(ctx context.Context, runStore runentity.Store, runID string, reports ...batch.Report) error {
	updater := func(run runentity.Run) (runentity.Run, error) {
		for _, report := range reports {
			run.RecordReport(report)
		}
		return run, nil
	}

	if err := runStore.UpdateRun(ctx, runID, updater); err != nil {
		return cerr.Field("run_id", runID).Wrap(err).Error("Failed to record stage reports on the run")
	}

	return nil
}

// RecordArtifact stores the report and the uploaded location of a feature
// stage's dataset in one write
func RecordArtifact(ctx context.Context, runStore runentity.Store, runID string, report batch.Report, name string, url string) error {
	updater := func(run runentity.Run) (runentity.Run, error) {
		run.RecordReport(report)
		run.RecordArtifact(name, url)
		return run, nil
	}

	if err := runStore.UpdateRun(ctx, runID, updater); err != nil {
		return cerr.Fields(cerr.F{
			"run_id":   runID,
			"artifact": name,
		}).Wrap(err).Error("Failed to record the artifact on the run")
	}

	return nil
}
