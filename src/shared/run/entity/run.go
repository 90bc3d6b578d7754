package runentity

import (
	"github.com/google/uuid"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/jsonlib"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
)

const (
	InitialProgressPercentage  = 5
	CompleteProgressPercentage = 100
)

type Status string

const (
	RequestedStatus  Status = "requested"
	ProcessingStatus Status = "processing"
	CompletedStatus  Status = "completed"
	ErrorStatus      Status = "error"
)

// ReportSummary is the stored form of a batch.Report: processed file names
// and the error text of each failed file
type ReportSummary struct {
	Processed []string          `json:"processed"`
	Failed    map[string]string `json:"failed"`
}

func SummarizeReport(report batch.Report) ReportSummary {
	summary := ReportSummary{
		Processed: make([]string, len(report.Processed)),
		Failed:    make(map[string]string, len(report.Failed)),
	}

	for i, file := range report.Processed {
		summary.Processed[i] = file.Name
	}

	for _, failure := range report.Failed {
		summary.Failed[failure.File.Name] = failure.Err.Error()
	}

	return summary
}

type RunFields struct {
	ID             string                   `json:"id"`
	Status         Status                   `json:"status"`
	Stage          string                   `json:"stage"`
	Pipeline       config.Pipeline          `json:"pipeline"`
	Artifacts      map[string]string        `json:"artifacts"`
	Reports        map[string]ReportSummary `json:"reports"`
	StatusMessage  string                   `json:"status_message"`
	StatusDebugLog string                   `json:"status_debug_log"`
	Progress       int                      `json:"progress"`
}

// Run is one pass of the pipeline. Fields that this version doesn't know
// about are kept in Extra.
type Run struct {
	jsonlib.Flatten[RunFields]
}

func NewRun(pipeline config.Pipeline) Run {
	run := Run{}
	run.Defined.Pipeline = pipeline
	run.Defined.Artifacts = map[string]string{}
	run.Defined.Reports = map[string]ReportSummary{}
	run.Extra = map[string]any{}
	run.InitializeRequest()

	return run
}

func (r Run) GetID() string {
	return r.Defined.ID
}

func (r Run) IsNew() bool {
	return r.Defined.ID == ""
}

func (r *Run) CreateID() {
	if !r.IsNew() {
		panic("Cannot assign an ID to a run that already has one")
	}

	r.Defined.ID = uuid.New().String()
}

func (r *Run) InitializeRequest() {
	r.Defined.Status = RequestedStatus
	r.Defined.StatusMessage = "The pipeline run has been requested"
	r.Defined.StatusDebugLog = ""
	r.Defined.Progress = InitialProgressPercentage
}

// StartStage moves the run into processing for the named stage
func (r *Run) StartStage(stage string, message string, progress int) {
	r.Defined.Status = ProcessingStatus
	r.Defined.Stage = stage
	r.Defined.StatusMessage = message
	r.Defined.Progress = progress
}

func (r *Run) RecordReport(report batch.Report) {
	if r.Defined.Reports == nil {
		r.Defined.Reports = map[string]ReportSummary{}
	}

	r.Defined.Reports[report.Stage] = SummarizeReport(report)
}

func (r *Run) RecordArtifact(name string, url string) {
	if r.Defined.Artifacts == nil {
		r.Defined.Artifacts = map[string]string{}
	}

	r.Defined.Artifacts[name] = url
}

func (r *Run) Complete() {
	r.Defined.Status = CompletedStatus
	r.Defined.StatusMessage = "The pipeline run has completed"
	r.Defined.Progress = CompleteProgressPercentage
}

func (r *Run) Fail(message string, debugLog string) {
	r.Defined.Status = ErrorStatus
	r.Defined.StatusMessage = message
	r.Defined.StatusDebugLog = debugLog
}
