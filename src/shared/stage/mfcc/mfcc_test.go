package mfcc_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/stage/dataset"
	"github.com/veedubyou/timbre/src/shared/stage/mfcc"
	. "github.com/veedubyou/timbre/src/shared/testing"
)

var _ = Describe("Extractor", func() {
	var extractor mfcc.Extractor

	BeforeEach(func() {
		extractor = mfcc.NewExtractor(config.DefaultPipeline("/data", "/work").MFCC)
	})

	It("returns 13 coefficients per frame", func() {
		buffer := audio.NewMono(Sine(22050, 22050, 440), 22050)

		coefficients := ExpectSuccess(extractor.Coefficients(buffer))
		Expect(coefficients).To(HaveLen(13))
		Expect(coefficients[0]).To(HaveLen(44))
	})

	It("collapses to means then deviations of the 12 non-zeroth coefficients", func() {
		buffer := audio.NewMono(Sine(22050, 22050, 440), 22050)

		features := ExpectSuccess(extractor.Features(buffer))
		Expect(features).To(HaveLen(24))
		Expect(features[12:]).To(HaveEach(BeNumerically(">=", 0)))
	})

	It("gives silence flat features", func() {
		buffer := audio.NewMono(make([]float64, 22050), 22050)

		features := ExpectSuccess(extractor.Features(buffer))
		Expect(features).To(HaveEach(BeNumerically("~", 0, 1e-9)))
	})

	It("tells different pitches apart", func() {
		low := ExpectSuccess(extractor.Features(audio.NewMono(Sine(22050, 22050, 220), 22050)))
		high := ExpectSuccess(extractor.Features(audio.NewMono(Sine(22050, 22050, 3520), 22050)))
		Expect(low).NotTo(Equal(high))
	})

	It("downmixes multi-channel input", func() {
		wave := Sine(22050, 22050, 440)
		stereo := ExpectSuccess(audio.NewMultiChannel([][]float64{wave, wave}, 22050))
		mono := audio.NewMono(wave, 22050)

		Expect(ExpectSuccess(extractor.Features(stereo))).To(Equal(ExpectSuccess(extractor.Features(mono))))
	})

	It("rejects a buffer without a sample rate", func() {
		_, err := extractor.Features(audio.NewMono([]float64{1, 2}, 0))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Stage", func() {
	var (
		mfccConfig config.MFCC
		result     mfcc.Result
		err        error
	)

	BeforeEach(func() {
		root := GinkgoT().TempDir()
		mfccConfig = config.DefaultPipeline(root, filepath.Join(root, "work")).MFCC
		Expect(os.MkdirAll(mfccConfig.InputDir, 0o755)).To(Succeed())

		WriteSineWav(mfccConfig.InputDir, "Alto_01_Standardized_Vox_Final.wav", 1, 22050, 1)
		WriteSineWav(mfccConfig.InputDir, "Bass_02_Standardized_Vox_Final.wav", 1, 22050, 1)
	})

	JustBeforeEach(func() {
		result, err = mfcc.NewStage(mfccConfig).Run(context.Background(), nil)
	})

	It("writes a vector per file", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Join(mfccConfig.OutputDir, "Alto_01_mfcc.npy")).To(BeAnExistingFile())
		Expect(filepath.Join(mfccConfig.OutputDir, "Bass_02_mfcc.npy")).To(BeAnExistingFile())
	})

	It("saves the dataset in processing order", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(result.DatasetPath).To(Equal(filepath.Join(mfccConfig.OutputDir, "all_mfccs.msgpack")))

		loaded := ExpectSuccess(dataset.Load(result.DatasetPath))
		Expect(loaded.Names).To(Equal([]string{"Alto_01_mfcc.npy", "Bass_02_mfcc.npy"}))
		Expect(loaded.Features[0]).To(HaveLen(1))
		Expect(loaded.Features[0][0]).To(HaveLen(24))
	})

	Describe("A malformed file name", func() {
		BeforeEach(func() {
			WriteSineWav(mfccConfig.InputDir, "Mystery.wav", 1, 22050, 1)
		})

		It("fails the batch", func() {
			ExpectMarked(err, audio.MalformedFilenameMark)
			Expect(result.DatasetPath).To(BeEmpty())
		})

		Describe("When isolating failures", func() {
			BeforeEach(func() {
				mfccConfig.FailurePolicy = config.Isolate
			})

			It("leaves the file out of the dataset", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Report.FailedNames()).To(Equal([]string{"Mystery.wav"}))
				Expect(result.Dataset.Names).To(HaveLen(2))
			})
		})
	})
})
