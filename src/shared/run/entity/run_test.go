package runentity_test

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/run/entity"
	"github.com/veedubyou/timbre/src/shared/stage/batch"
	. "github.com/veedubyou/timbre/src/shared/testing"
)

var _ = Describe("Run", func() {
	var run runentity.Run

	BeforeEach(func() {
		run = runentity.NewRun(config.DefaultPipeline("/data", "/tmp/work"))
	})

	It("starts out requested and without an ID", func() {
		Expect(run.IsNew()).To(BeTrue())
		Expect(run.Defined.Status).To(Equal(runentity.RequestedStatus))
		Expect(run.Defined.Progress).To(Equal(runentity.InitialProgressPercentage))
	})

	It("only gets an ID once", func() {
		run.CreateID()
		Expect(run.IsNew()).To(BeFalse())
		Expect(run.CreateID).To(Panic())
	})

	It("records stage progress, reports and completion", func() {
		run.StartStage("extract_mfcc", "Extracting MFCCs", 70)
		Expect(run.Defined.Status).To(Equal(runentity.ProcessingStatus))
		Expect(run.Defined.Stage).To(Equal("extract_mfcc"))

		run.RecordReport(batch.Report{
			Stage:     "extract_mfcc",
			Processed: []discovery.File{discovery.NewFile("/in/Alto_01_Final.wav")},
			Failed: []batch.Failure{{
				File: discovery.NewFile("/in/broken.wav"),
				Err:  errors.New("no good"),
			}},
		})

		Expect(run.Defined.Reports).To(HaveKey("extract_mfcc"))
		summary := run.Defined.Reports["extract_mfcc"]
		Expect(summary.Processed).To(Equal([]string{"Alto_01_Final.wav"}))
		Expect(summary.Failed).To(HaveKeyWithValue("broken.wav", "no good"))

		run.Complete()
		Expect(run.Defined.Status).To(Equal(runentity.CompletedStatus))
		Expect(run.Defined.Progress).To(Equal(runentity.CompleteProgressPercentage))
	})

	It("keeps the failure message apart from the debug log", func() {
		run.Fail("Failed to separate the vocals", "demucs exited with status 1")

		Expect(run.Defined.Status).To(Equal(runentity.ErrorStatus))
		Expect(run.Defined.StatusMessage).To(Equal("Failed to separate the vocals"))
		Expect(run.Defined.StatusDebugLog).To(Equal("demucs exited with status 1"))
	})

	It("serializes as one flat object that keeps unknown fields", func() {
		run.CreateID()
		run.Extra["notes"] = "second take"

		jsonBytes := ExpectSuccess(json.Marshal(run))

		fields := map[string]any{}
		Expect(json.Unmarshal(jsonBytes, &fields)).To(Succeed())
		Expect(fields).To(HaveKeyWithValue("id", run.GetID()))
		Expect(fields).To(HaveKeyWithValue("status", "requested"))
		Expect(fields).To(HaveKeyWithValue("notes", "second take"))

		decoded := runentity.Run{}
		Expect(json.Unmarshal(jsonBytes, &decoded)).To(Succeed())
		Expect(decoded.Extra).To(HaveKeyWithValue("notes", "second take"))
		Expect(decoded.Defined.Pipeline).To(Equal(run.Defined.Pipeline))
	})
})
