package job_message

import (
	"encoding/json"

	"github.com/veedubyou/timbre/src/shared/lib/cerr"
)

// RunIdentifier is the body of every pipeline job
type RunIdentifier struct {
	RunID string `json:"run_id"`
}

func ParseRunIdentifier(message []byte) (RunIdentifier, error) {
	params := RunIdentifier{}
	if err := json.Unmarshal(message, &params); err != nil {
		return RunIdentifier{}, cerr.Wrap(err).Error("Failed to unmarshal message JSON")
	}

	if params.RunID == "" {
		return RunIdentifier{}, cerr.Field("job_params", params).Error("Missing run ID")
	}

	return params, nil
}
