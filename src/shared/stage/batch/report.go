package batch

import (
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
)

type Failure struct {
	File discovery.File
	Err  error
}

// Report lists what a stage did with each discovered file, in the order
// the files were processed
type Report struct {
	Stage     string
	Processed []discovery.File
	Failed    []Failure
}

func (r Report) Total() int {
	return len(r.Processed) + len(r.Failed)
}

func (r Report) FailedNames() []string {
	names := make([]string, len(r.Failed))
	for i, failure := range r.Failed {
		names[i] = failure.File.Name
	}
	return names
}
