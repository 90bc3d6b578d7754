package naming_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/audio/naming"
	. "github.com/veedubyou/timbre/src/shared/testing"
)

var _ = Describe("Naming", func() {
	Describe("Stage outputs", func() {
		file := discovery.NewFile("/data/choruses/Alto_01.wav")

		It("suffixes the stem", func() {
			Expect(naming.Standardized(file)).To(Equal("Alto_01_Standardized.wav"))
			Expect(naming.Final(file)).To(Equal("Alto_01_Final.wav"))
			Expect(naming.Vox(file)).To(Equal("Alto_01_Vox.wav"))
		})

		It("chains through the pipeline", func() {
			standardized := discovery.NewFile(naming.Standardized(file))
			vox := discovery.NewFile(naming.Vox(standardized))
			Expect(naming.Final(vox)).To(Equal("Alto_01_Standardized_Vox_Final.wav"))
		})
	})

	Describe("Feature outputs", func() {
		file := discovery.NewFile("/data/final_stems_22050/Alto_01_Standardized_Vox_Final.wav")

		It("names MFCC vectors by the first two tokens", func() {
			Expect(ExpectSuccess(naming.MFCC(file))).To(Equal("Alto_01_mfcc.npy"))
		})

		It("names embeddings by the first two tokens and the size", func() {
			Expect(ExpectSuccess(naming.Embedding(file, 512))).To(Equal("Alto_01_Emb_512.npy"))
		})

		It("ignores the extension when splitting", func() {
			short := discovery.NewFile("Alto_01.wav")
			Expect(ExpectSuccess(naming.MFCC(short))).To(Equal("Alto_01_mfcc.npy"))
		})

		DescribeTable("malformed names",
			func(path string) {
				file := discovery.NewFile(path)

				_, err := naming.MFCC(file)
				ExpectMarked(err, audio.MalformedFilenameMark)

				_, err = naming.Embedding(file, 6144)
				ExpectMarked(err, audio.MalformedFilenameMark)
			},
			Entry("a single token", "Alto.wav"),
			Entry("an empty first token", "_01.wav"),
			Entry("an empty second token", "Alto__01.wav"),
		)
	})

	It("names the datasets", func() {
		Expect(naming.MFCCDataset()).To(Equal("all_mfccs.msgpack"))
		Expect(naming.EmbeddingDataset(512)).To(Equal("all_embeddings_512.msgpack"))
	})
})
