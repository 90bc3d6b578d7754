package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/config"
)

var _ = Describe("LoadPipeline", func() {
	var (
		root       string
		workingDir string
		configFile string
		pipeline   config.Pipeline
		err        error
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		workingDir = filepath.Join(root, "wd")
		configFile = ""
	})

	JustBeforeEach(func() {
		pipeline, err = config.LoadPipeline(root, workingDir, configFile)
	})

	It("falls back to the research layout", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(pipeline).To(Equal(config.DefaultPipeline(root, workingDir)))
		Expect(pipeline.MFCC.InputDir).To(Equal(filepath.Join(root, "final_stems_22050")))
		Expect(pipeline.Embedding.InputDir).To(Equal(filepath.Join(root, "final_stems_44100")))
	})

	Describe("With an env override", func() {
		BeforeEach(func() {
			GinkgoT().Setenv("TIMBRE_POSTPROCESS__TRIM_DURATION", "10")
		})

		It("takes the env value", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(pipeline.Postprocess.TrimDuration).To(Equal(10.0))
			Expect(pipeline.Postprocess.FadeDuration).To(Equal(config.DefaultFadeDuration))
		})
	})

	Describe("With a config file", func() {
		BeforeEach(func() {
			configFile = filepath.Join(root, "pipeline.yaml")
		})

		Describe("That overrides a few settings", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(configFile, []byte(`
mfcc:
  num_mfcc: 20
  failure_policy: isolate
separate:
  device: cuda
`), 0o644)).To(Succeed())
			})

			It("keeps the defaults for everything else", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(pipeline.MFCC.NumMFCC).To(Equal(20))
				Expect(pipeline.MFCC.FailurePolicy).To(Equal(config.Isolate))
				Expect(pipeline.MFCC.HopLength).To(Equal(512))
				Expect(pipeline.Separate.Device).To(Equal("cuda"))
				Expect(pipeline.Separate.Model).To(Equal("htdemucs"))
			})
		})

		Describe("That sets an unknown failure policy", func() {
			BeforeEach(func() {
				Expect(os.WriteFile(configFile, []byte(`
preprocess:
  failure_policy: sometimes
`), 0o644)).To(Succeed())
			})

			It("fails validation", func() {
				Expect(err).To(HaveOccurred())
			})
		})

		Describe("That does not exist", func() {
			It("fails to read it", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})
})

var _ = Describe("Validate", func() {
	var stage config.Stage

	BeforeEach(func() {
		stage = config.DefaultPipeline("/data", "/work").Preprocess
	})

	It("accepts the defaults", func() {
		Expect(config.Validate(stage)).To(Succeed())
	})

	It("rejects a missing sample rate", func() {
		stage.TargetSampleRate = 0
		Expect(config.Validate(stage)).NotTo(Succeed())
	})

	It("rejects a negative trim", func() {
		stage.TrimDuration = -1
		Expect(config.Validate(stage)).NotTo(Succeed())
	})

	It("rejects an empty output dir", func() {
		stage.OutputDir = ""
		Expect(config.Validate(stage)).NotTo(Succeed())
	})
})
