package cerr_test

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/domains"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
)

var testMark = domains.New("test_mark")

var _ = Describe("Cerr", func() {
	It("wraps the message onto the cause", func() {
		err := cerr.Wrap(errors.New("disk full")).Error("Failed to write")
		Expect(err.Error()).To(Equal("Failed to write: disk full"))
	})

	It("creates a new error without fields", func() {
		err := cerr.Error("Nothing to do")
		Expect(err.Error()).To(Equal("Nothing to do"))
		Expect(cerr.CollectFields(err)).To(BeEmpty())
	})

	It("treats a nil cause as a new error", func() {
		err := cerr.Field("file", "a.wav").Wrap(nil).Error("Unexpected")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(Equal("Unexpected"))
	})

	It("collects fields across layers", func() {
		inner := cerr.Field("file", "a.wav").Field("stage", "mfcc").Error("Bad file")
		outer := cerr.Fields(cerr.F{"run_id": "123", "stage": "extract_mfcc"}).Wrap(inner).Error("Job failed")

		Expect(cerr.CollectFields(outer)).To(Equal(cerr.F{
			"file":   "a.wav",
			"stage":  "extract_mfcc",
			"run_id": "123",
		}))
	})

	It("keeps marks visible through the context", func() {
		marked := mark.Message(testMark, "Marked failure")
		err := cerr.Field("file", "a.wav").Wrap(marked).Error("Outer")
		Expect(errors.Is(err, testMark)).To(BeTrue())
	})

	It("doesn't share fields between derived contexts", func() {
		base := cerr.Field("a", 1)
		_ = base.Field("b", 2)
		Expect(cerr.CollectFields(base.Error("x"))).To(Equal(cerr.F{"a": 1}))
	})
})
