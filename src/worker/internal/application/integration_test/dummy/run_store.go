package dummy

import (
	"context"
	"sync"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/jsonlib"
	"github.com/veedubyou/timbre/src/shared/run/entity"
)

var _ runentity.Store = &RunStore{}

func NewDummyRunStore() *RunStore {
	return &RunStore{
		Unavailable: false,
		State:       make(map[string]map[string]any),
	}
}

// RunStore keeps runs in their stored map form, so a run read back is a
// copy just like one read from the DB
type RunStore struct {
	Unavailable bool
	State       map[string]map[string]any
	mutex       sync.RWMutex
}

func (r *RunStore) GetRun(_ context.Context, runID string) (runentity.Run, error) {
	if r.Unavailable {
		return runentity.Run{}, NetworkFailure
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stored, ok := r.State[runID]
	if !ok {
		return runentity.Run{}, NotFound
	}

	run := runentity.Run{}
	if err := run.FromMap(stored); err != nil {
		return runentity.Run{}, cerr.Wrap(err).Error("Failed to read back the stored run")
	}

	return run, nil
}

func (r *RunStore) SetRun(_ context.Context, run runentity.Run) error {
	if r.Unavailable {
		return NetworkFailure
	}

	if run.IsNew() {
		return cerr.Error("Run ID is not defined")
	}

	stored, err := jsonlib.StructToMap(run)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to convert the run to a map")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.State[run.GetID()] = stored

	return nil
}

func (r *RunStore) UpdateRun(ctx context.Context, runID string, updater runentity.RunUpdater) error {
	if r.Unavailable {
		return NetworkFailure
	}

	run, err := r.GetRun(ctx, runID)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to get run from DB")
	}

	updatedRun, err := updater(run)
	if err != nil {
		return cerr.Wrap(err).Error("Run update function failed")
	}

	if err = r.SetRun(ctx, updatedRun); err != nil {
		return cerr.Wrap(err).Error("Failed to set the updated run")
	}

	return nil
}
