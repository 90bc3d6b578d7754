package npy_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sbinet/npyio"
	"github.com/veedubyou/timbre/src/shared/lib/npy"
	. "github.com/veedubyou/timbre/src/shared/testing"
	"gonum.org/v1/gonum/mat"
)

var _ = Describe("Npy", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("saves vectors that npyio reads back", func() {
		path := filepath.Join(dir, "Alto_01_mfcc.npy")
		Expect(npy.Save(path, []float64{1, 2, 3})).To(Succeed())

		file, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer file.Close()

		reader := ExpectSuccess(npyio.NewReader(file))
		Expect(reader.Header.Descr.Shape).To(Equal([]int{3}))

		var data []float64
		Expect(reader.Read(&data)).To(Succeed())
		Expect(data).To(Equal([]float64{1, 2, 3}))
	})

	It("saves matrices with their shape", func() {
		path := filepath.Join(dir, "Alto_01_Emb_512.npy")
		Expect(npy.Save(path, mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}))).To(Succeed())

		file, err := os.Open(path)
		Expect(err).NotTo(HaveOccurred())
		defer file.Close()

		reader := ExpectSuccess(npyio.NewReader(file))
		Expect(reader.Header.Descr.Shape).To(Equal([]int{2, 3}))
	})

	Describe("Archives", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(dir, "Alto_01.npz")
			WriteNPZ(path, map[string]any{
				"embedding":  mat.NewDense(2, 2, []float64{0.5, 1.5, 2.5, 3.5}),
				"timestamps": []float32{0, 0.5},
			})
		})

		It("reads every array", func() {
			arrays := ExpectSuccess(npy.LoadArchive(path))
			Expect(arrays).To(HaveKey("embedding"))
			Expect(arrays).To(HaveKey("timestamps"))

			embedding := arrays["embedding"]
			Expect(embedding.Shape).To(Equal([]int{2, 2}))
			Expect(embedding.Data).To(Equal([]float64{0.5, 1.5, 2.5, 3.5}))

			matrix := ExpectSuccess(embedding.Matrix())
			Expect(matrix.At(1, 0)).To(Equal(2.5))

		})

		It("widens float32 arrays", func() {
			arrays := ExpectSuccess(npy.LoadArchive(path))
			Expect(arrays["timestamps"].Shape).To(Equal([]int{2}))
			Expect(arrays["timestamps"].Data).To(Equal([]float64{0, 0.5}))
		})

		It("refuses to treat a vector as a matrix", func() {
			arrays := ExpectSuccess(npy.LoadArchive(path))
			_, err := arrays["timestamps"].Matrix()
			Expect(err).To(HaveOccurred())
		})
	})

	It("rejects integer arrays", func() {
		path := filepath.Join(dir, "labels.npz")
		WriteNPZ(path, map[string]any{"labels": []int64{1, 2}})

		_, err := npy.LoadArchive(path)
		Expect(err).To(MatchError(ContainSubstring("Only float arrays are supported")))
	})

	It("fails on a file that isn't an archive", func() {
		path := filepath.Join(dir, "broken.npz")
		Expect(os.WriteFile(path, []byte("nope"), 0o644)).To(Succeed())

		_, err := npy.LoadArchive(path)
		Expect(err).To(HaveOccurred())
	})
})
