package runerrors

import (
	"github.com/veedubyou/timbre/src/server/internal/errors/api"
)

const (
	RunNotFoundCode   = api.ErrorCode("run_not_found")
	BadRunRequestCode = api.ErrorCode("bad_run_request")
)
