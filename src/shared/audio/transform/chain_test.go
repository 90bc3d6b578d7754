package transform_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/audio/transform"
	"github.com/veedubyou/timbre/src/shared/config"
	. "github.com/veedubyou/timbre/src/shared/testing"
)

func sine(n int, sampleRate int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}
	return samples
}

var _ = Describe("Apply", func() {
	var buffer audio.Buffer

	BeforeEach(func() {
		buffer = audio.NewMono(sine(3000, 1000), 1000)
	})

	It("is an identity when every step is off", func() {
		out := ExpectSuccess(transform.Apply(buffer, transform.Options{}))
		Expect(out).To(Equal(buffer))
	})

	It("runs normalize, trim, then fade", func() {
		options := transform.Options{
			Normalize:    true,
			Trim:         true,
			TrimDuration: 2,
			Fade:         true,
			FadeDuration: 0.5,
		}

		out := ExpectSuccess(transform.Apply(buffer, options))

		normalized := ExpectSuccess(transform.Normalize(buffer))
		trimmed := ExpectSuccess(transform.Trim(normalized, 1000, 2))
		expected := ExpectSuccess(transform.Fade(trimmed, 1000, 0.5))
		Expect(out).To(Equal(expected))
		Expect(out.Samples()).To(Equal(2000))
	})

	It("trims before fading, so the fade lands on the trimmed end", func() {
		options := transform.Options{Trim: true, TrimDuration: 1, Fade: true, FadeDuration: 0.1}

		out := ExpectSuccess(transform.Apply(buffer, options))
		Expect(out.Samples()).To(Equal(1000))
		Expect(out.Data[999]).To(Equal(0.0))
	})

	It("reports which step failed", func() {
		options := transform.Options{Fade: true, FadeDuration: 10}

		_, err := transform.Apply(buffer, options)
		ExpectMarked(err, audio.InvalidFadeDurationMark)
		Expect(err.Error()).To(ContainSubstring("Failed to fade"))
	})

	Describe("OptionsFromStage", func() {
		It("only trims for a positive duration", func() {
			stage := config.Stage{Normalize: true, TrimDuration: 0, Fade: true, FadeDuration: 0.5}
			Expect(transform.OptionsFromStage(stage)).To(Equal(transform.Options{
				Normalize:    true,
				Fade:         true,
				FadeDuration: 0.5,
			}))

			stage.TrimDuration = 20
			Expect(transform.OptionsFromStage(stage).Trim).To(BeTrue())
		})
	})
})
