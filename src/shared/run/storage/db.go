package runstorage

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/markers"
	"github.com/guregu/dynamo"
	"github.com/veedubyou/timbre/src/shared/lib/dynamo"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
	"github.com/veedubyou/timbre/src/shared/run/entity"
)

const (
	RunsTable = "Runs"
)

var _ runentity.Store = DB{}

type DB struct {
	dynamoDB dynamolib.DynamoDBWrapper
}

func NewDB(dynamoDB dynamolib.DynamoDBWrapper) DB {
	return DB{
		dynamoDB: dynamoDB,
	}
}

func (d DB) GetRun(ctx context.Context, runID string) (runentity.Run, error) {
	if runID == "" {
		return runentity.Run{}, mark.Message(IDEmptyMark, "No run ID was provided")
	}

	value := dbRun{}
	err := d.dynamoDB.Table(RunsTable).
		Get(idKey, runID).
		OneWithContext(ctx, &value)

	if err != nil {
		switch {
		case markers.Is(err, UnmarshalMark):
			return runentity.Run{}, errors.Wrap(err, "Failed to fetch run")
		case errors.Is(err, dynamo.ErrNotFound):
			return runentity.Run{}, mark.Wrap(err, RunNotFound, "Run is not found")
		default:
			return runentity.Run{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch run")
		}
	}

	run := runentity.Run{}
	err = run.FromMap(value)
	if err != nil {
		return runentity.Run{},
			mark.Wrap(err, UnmarshalMark, "Failed to transform DB map back to entity run")
	}

	return run, nil
}

func (d DB) SetRun(ctx context.Context, run runentity.Run) error {
	if run.IsNew() {
		return mark.Message(IDEmptyMark, "Run ID is not defined")
	}

	dbObject, err := run.ToMap()
	if err != nil {
		return mark.Wrap(err,
			MarshalMark,
			"Failed to transform entity run to a generic map object")
	}

	err = d.dynamoDB.Table(RunsTable).Put(dbObject).RunWithContext(ctx)
	if err != nil {
		return mark.Wrap(err,
			DefaultErrorMark,
			"Failed to put the run in the DB")
	}

	return nil
}

// UpdateRun reads the run, applies updater and writes the result back. The
// write only lands if the run hasn't changed status in the meantime.
func (d DB) UpdateRun(ctx context.Context, runID string, updater runentity.RunUpdater) error {
	run, err := d.GetRun(ctx, runID)
	if err != nil {
		return errors.Wrap(err, "Can't find the run")
	}

	previousStatus := run.Defined.Status

	updatedRun, err := updater(run)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "The updater failed to make changes to the run")
	}

	if updatedRun.GetID() != runID {
		return mark.Message(DefaultErrorMark, "The updater changed the run ID")
	}

	dbObject, err := updatedRun.ToMap()
	if err != nil {
		return mark.Wrap(err, MarshalMark, "Failed to marshal run entity to map")
	}

	err = d.dynamoDB.Table(RunsTable).
		Put(dbObject).
		If("'status' = ?", string(previousStatus)).
		RunWithContext(ctx)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to write the updated run")
	}

	return nil
}
