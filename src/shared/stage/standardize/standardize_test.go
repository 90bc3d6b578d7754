package standardize_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/stage/standardize"
	. "github.com/veedubyou/timbre/src/shared/testing"
)

var _ = Describe("Standardize", func() {
	var (
		root      string
		inputDir  string
		outputDir string
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		inputDir = filepath.Join(root, "choruses")
		outputDir = filepath.Join(root, "standardized")
		Expect(os.Mkdir(inputDir, 0o755)).To(Succeed())

		WriteSineWav(inputDir, "Alto_01.wav", 2, 22050, 2)
		WriteSineWav(inputDir, "Bass_02.wav", 1, 48000, 1.5)
	})

	Describe("Preprocess", func() {
		var stageConfig config.Stage

		BeforeEach(func() {
			stageConfig = config.DefaultPipeline(root, filepath.Join(root, "work")).Preprocess
		})

		It("resamples, fades and renames every file", func() {
			report := ExpectSuccess(standardize.Preprocess(context.Background(), stageConfig, nil))
			Expect(report.Processed).To(HaveLen(2))

			alto := ReadWav(filepath.Join(outputDir, "Alto_01_Standardized.wav"))
			Expect(alto.Shape).To(Equal([]int{2, 88200}))
			Expect(alto.SampleRate).To(Equal(44100))
			Expect(alto.Channel(0)[0]).To(BeNumerically("~", 0, 1e-4))
			Expect(alto.Channel(1)[88199]).To(BeNumerically("~", 0, 1e-4))

			bass := ReadWav(filepath.Join(outputDir, "Bass_02_Standardized.wav"))
			Expect(bass.Shape).To(Equal([]int{66150}))
		})

		Describe("A configured trim duration", func() {
			BeforeEach(func() {
				stageConfig.TrimDuration = 1
			})

			It("keeps every clip at full length", func() {
				ExpectSuccess(standardize.Preprocess(context.Background(), stageConfig, nil))

				alto := ReadWav(filepath.Join(outputDir, "Alto_01_Standardized.wav"))
				Expect(alto.Shape).To(Equal([]int{2, 88200}))

				bass := ReadWav(filepath.Join(outputDir, "Bass_02_Standardized.wav"))
				Expect(bass.Shape).To(Equal([]int{66150}))
			})
		})

		Describe("A clip shorter than both fades", func() {
			BeforeEach(func() {
				WriteSineWav(inputDir, "Tenor_03.wav", 1, 44100, 0.5)
			})

			It("fails the batch with an invalid fade duration", func() {
				_, err := standardize.Preprocess(context.Background(), stageConfig, nil)
				ExpectMarked(err, audio.InvalidFadeDurationMark)
			})

			It("skips the clip when isolating failures", func() {
				stageConfig.FailurePolicy = config.Isolate

				report := ExpectSuccess(standardize.Preprocess(context.Background(), stageConfig, nil))
				Expect(report.Processed).To(HaveLen(2))
				Expect(report.FailedNames()).To(Equal([]string{"Tenor_03.wav"}))
				Expect(filepath.Join(outputDir, "Tenor_03_Standardized.wav")).NotTo(BeAnExistingFile())
			})
		})
	})

	Describe("Postprocess", func() {
		var postprocessConfig config.Postprocess

		BeforeEach(func() {
			postprocessConfig = config.DefaultPipeline(root, filepath.Join(root, "work")).Postprocess
			postprocessConfig.InputDir = inputDir
			postprocessConfig.OutputDir = filepath.Join(root, "final_stems")
			postprocessConfig.TrimDuration = 1
		})

		It("writes one mono, normalized, trimmed pass per rate", func() {
			reports := ExpectSuccess(standardize.Postprocess(context.Background(), postprocessConfig, nil))
			Expect(reports).To(HaveLen(2))
			Expect(reports[0].Stage).To(Equal("postprocess_22050"))
			Expect(reports[1].Stage).To(Equal("postprocess_44100"))

			low := ReadWav(filepath.Join(root, "final_stems_22050", "Alto_01_Final.wav"))
			Expect(low.Shape).To(Equal([]int{22050}))

			high := ReadWav(filepath.Join(root, "final_stems_44100", "Alto_01_Final.wav"))
			Expect(high.Shape).To(Equal([]int{44100}))
			Expect(high.Data[0]).To(BeNumerically("~", 0, 1e-4))
		})
	})
})
