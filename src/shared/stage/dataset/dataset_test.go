package dataset_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/stage/dataset"
	. "github.com/veedubyou/timbre/src/shared/testing"
)

var _ = Describe("Dataset", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("MFCC datasets", func() {
		var mfccs dataset.Dataset

		BeforeEach(func() {
			mfccs = dataset.NewMFCC()
			mfccs.Append("Alto_01_mfcc.npy", [][]float64{{1, 2, 3}}, nil)
			mfccs.Append("Bass_02_mfcc.npy", [][]float64{{4, 5, 6}}, nil)
		})

		It("keeps names and features parallel", func() {
			Expect(mfccs.Len()).To(Equal(2))
			Expect(mfccs.Features).To(HaveLen(2))
			Expect(mfccs.Timestamps).To(BeEmpty())
			Expect(mfccs.Validate()).To(Succeed())
		})

		It("saves to all_mfccs and loads back", func() {
			path := ExpectSuccess(mfccs.Save(dir))
			Expect(path).To(Equal(filepath.Join(dir, "all_mfccs.msgpack")))

			loaded := ExpectSuccess(dataset.Load(path))
			Expect(loaded.Kind).To(Equal(dataset.MFCCKind))
			Expect(loaded.Names).To(Equal(mfccs.Names))
			Expect(loaded.Features).To(Equal(mfccs.Features))
		})
	})

	Describe("Embedding datasets", func() {
		var embeddings dataset.Dataset

		BeforeEach(func() {
			embeddings = dataset.NewEmbedding(512)
			embeddings.Append("Alto_01_Emb_512.npy", [][]float64{{1, 2}, {3, 4}}, []float64{0, 0.1})
		})

		It("records timestamps alongside the features", func() {
			Expect(embeddings.Timestamps).To(Equal([][]float64{{0, 0.1}}))
			Expect(embeddings.Validate()).To(Succeed())
		})

		It("saves under its size", func() {
			path := ExpectSuccess(embeddings.Save(dir))
			Expect(filepath.Base(path)).To(Equal("all_embeddings_512.msgpack"))

			loaded := ExpectSuccess(dataset.Load(path))
			Expect(loaded.EmbeddingSize).To(Equal(512))
			Expect(loaded.Timestamps).To(Equal(embeddings.Timestamps))
		})
	})

	Describe("Inconsistent datasets", func() {
		It("rejects features without names", func() {
			broken := dataset.NewMFCC()
			broken.Features = append(broken.Features, [][]float64{{1}})
			Expect(broken.Validate()).NotTo(Succeed())

			_, err := broken.Save(dir)
			Expect(err).To(HaveOccurred())
		})

		It("rejects embeddings with missing timestamps", func() {
			broken := dataset.NewEmbedding(512)
			broken.Names = append(broken.Names, "Alto_01_Emb_512.npy")
			broken.Features = append(broken.Features, [][]float64{{1}})
			Expect(broken.Validate()).NotTo(Succeed())
		})

		It("rejects unknown kinds", func() {
			Expect(dataset.Dataset{}.Validate()).NotTo(Succeed())
		})
	})

	It("fails to load a missing file", func() {
		_, err := dataset.Load(filepath.Join(dir, "nope.msgpack"))
		Expect(err).To(HaveOccurred())
	})
})
