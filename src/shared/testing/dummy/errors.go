package dummy

import "github.com/cockroachdb/errors"

var (
	NetworkFailure = errors.New("dummy network failure")
	NotFound       = errors.New("dummy not found")
	ProcessFailure = errors.New("dummy process exited with status 1")
)
