package commands_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/cli/internal/commands"
	"github.com/veedubyou/timbre/src/shared/stage/dataset"
	. "github.com/veedubyou/timbre/src/shared/testing"
	"github.com/veedubyou/timbre/src/shared/testing/dummy"
)

var _ = Describe("Commands", func() {
	var (
		root     string
		executor *dummy.Executor
		stdout   *bytes.Buffer
		stderr   *bytes.Buffer
		args     []string
		err      error
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		chorusDir := filepath.Join(root, "choruses")
		Expect(os.Mkdir(chorusDir, 0o755)).To(Succeed())

		WriteSineWav(chorusDir, "Soprano_01.wav", 2, 48000, 1.5)
		WriteSineWav(chorusDir, "Bass_07.wav", 1, 44100, 1.2)

		executor = dummy.NewExecutor()
		executor.Install(DemucsBinName, dummy.Demucs{}.Program())
		executor.Install(OpenL3BinName, dummy.OpenL3{}.Program())

		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		args = nil
	})

	JustBeforeEach(func() {
		cmd := commands.NewRootCommand(commands.Dependencies{Executor: executor})
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(args)

		err = cmd.Execute()
	})

	Describe("preprocess", func() {
		BeforeEach(func() {
			args = []string{"preprocess", "--root", root, "--no-progress"}
		})

		It("standardizes the choruses under the root", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Join(root, "standardized", "Soprano_01_Standardized.wav")).To(BeAnExistingFile())
			Expect(filepath.Join(root, "standardized", "Bass_07_Standardized.wav")).To(BeAnExistingFile())
			Expect(stdout.String()).To(Equal("preprocess: 2 processed, 0 failed\n"))
		})

		Describe("With the directories overridden", func() {
			var outputDir string

			BeforeEach(func() {
				outputDir = filepath.Join(root, "elsewhere")
				args = append(args, "--input", filepath.Join(root, "choruses"), "--output", outputDir)
			})

			It("writes to the given output", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(filepath.Join(outputDir, "Soprano_01_Standardized.wav")).To(BeAnExistingFile())
				Expect(filepath.Join(root, "standardized")).NotTo(BeADirectory())
			})
		})

		Describe("With a progress bar", func() {
			BeforeEach(func() {
				args = []string{"preprocess", "--root", root}
			})

			It("keeps the report on stdout", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(stdout.String()).To(Equal("preprocess: 2 processed, 0 failed\n"))
			})
		})
	})

	Describe("mfcc", func() {
		var inputDir string

		BeforeEach(func() {
			inputDir = filepath.Join(root, "final_stems_22050")
			Expect(os.Mkdir(inputDir, 0o755)).To(Succeed())

			WriteSineWav(inputDir, "Soprano_01_Standardized_Vox_Final.wav", 1, 22050, 1)
			WriteSineWav(inputDir, "Mystery.wav", 1, 22050, 1)

			args = []string{"mfcc", "--root", root, "--no-progress"}
		})

		It("fails on the malformed file name", func() {
			Expect(err).To(HaveOccurred())
			Expect(stdout.String()).To(Equal("extract_mfcc: 0 processed, 0 failed\n"))
			Expect(filepath.Join(root, "mfccs", "all_mfccs.msgpack")).NotTo(BeAnExistingFile())
		})

		Describe("When isolating failures", func() {
			BeforeEach(func() {
				args = append(args, "--isolate")
			})

			It("prints the failure report and saves the rest", func() {
				Expect(err).NotTo(HaveOccurred())

				output := stdout.String()
				Expect(output).To(ContainSubstring("extract_mfcc: 1 processed, 1 failed"))
				Expect(output).To(ContainSubstring("  Mystery.wav: "))
				Expect(output).To(ContainSubstring("dataset written to " + filepath.Join(root, "mfccs", "all_mfccs.msgpack")))

				loaded := ExpectSuccess(dataset.Load(filepath.Join(root, "mfccs", "all_mfccs.msgpack")))
				Expect(loaded.Names).To(Equal([]string{"Soprano_01_mfcc.npy"}))
			})
		})
	})

	Describe("pipeline", func() {
		BeforeEach(func() {
			args = []string{"pipeline", "--root", root, "--no-progress"}
		})

		It("runs every stage into the research layout", func() {
			Expect(err).NotTo(HaveOccurred())

			mfccs := ExpectSuccess(dataset.Load(filepath.Join(root, "mfccs", "all_mfccs.msgpack")))
			Expect(mfccs.Names).To(ConsistOf("Soprano_01_mfcc.npy", "Bass_07_mfcc.npy"))

			embeddings := ExpectSuccess(dataset.Load(filepath.Join(root, "embeddings_512", "all_embeddings_512.msgpack")))
			Expect(embeddings.Names).To(HaveLen(2))

			Expect(executor.CalledNames()).To(ContainElements(DemucsBinName, OpenL3BinName))
			Expect(stdout.String()).To(ContainSubstring("separate: 2 processed, 0 failed"))
		})

		Describe("When demucs is broken", func() {
			BeforeEach(func() {
				executor.Unavailable = true
			})

			It("stops after separation", func() {
				Expect(err).To(HaveOccurred())
				Expect(filepath.Join(root, "standardized", "Soprano_01_Standardized.wav")).To(BeAnExistingFile())
				Expect(filepath.Join(root, "mfccs")).NotTo(BeADirectory())
			})
		})
	})

	Describe("An unknown log level", func() {
		BeforeEach(func() {
			args = []string{"preprocess", "--root", root, "--log-level", "chatty"}
		})

		It("refuses to run", func() {
			Expect(err).To(HaveOccurred())
			Expect(filepath.Join(root, "standardized")).NotTo(BeADirectory())
		})
	})
})
