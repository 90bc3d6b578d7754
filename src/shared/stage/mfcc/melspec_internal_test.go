package mfcc

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mel spectrogram internals", func() {
	It("uses the slaney mel scale", func() {
		Expect(hzToMel(500)).To(BeNumerically("~", 7.5, 1e-9))
		Expect(hzToMel(1000)).To(BeNumerically("~", 15, 1e-9))
		Expect(melToHz(15)).To(BeNumerically("~", 1000, 1e-9))
		Expect(melToHz(hzToMel(6000))).To(BeNumerically("~", 6000, 1e-6))
	})

	It("uses a periodic hann window", func() {
		hann := periodicHann(4)
		Expect(hann).To(HaveLen(4))
		Expect(hann[0]).To(BeNumerically("~", 0, 1e-12))
		Expect(hann[1]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(hann[2]).To(BeNumerically("~", 1, 1e-12))
		Expect(hann[3]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("centers frames on multiples of the hop", func() {
		spectrogram := powerSpectrogram(make([]float64, 22050), 2048, 512)
		Expect(spectrogram).To(HaveLen(44))
		Expect(spectrogram[0]).To(HaveLen(1025))
	})

	It("builds non-negative triangular filters", func() {
		filters := melFilterBank(22050, 2048, 128)
		Expect(filters).To(HaveLen(128))

		for _, weights := range filters {
			Expect(weights).To(HaveLen(1025))
			Expect(weights).To(HaveEach(BeNumerically(">=", 0)))
		}
	})

	It("clamps decibels to 80 below the peak", func() {
		power := [][]float64{{1}, {1e-12}}
		filters := [][]float64{{1}}

		melDB := melSpectrogramDB(power, filters)
		Expect(melDB[0][0]).To(BeNumerically("~", 0, 1e-12))
		Expect(melDB[0][1]).To(BeNumerically("~", -80, 1e-12))
	})

	It("puts a flat spectrum entirely into the 0th coefficient", func() {
		melDB := make([][]float64, 128)
		for m := range melDB {
			melDB[m] = []float64{-20, -20}
		}

		coefficients := dctII(melDB, 13)
		Expect(coefficients).To(HaveLen(13))
		Expect(coefficients[0][0]).To(BeNumerically("~", -20*math.Sqrt(128), 1e-9))
		for _, row := range coefficients[1:] {
			Expect(row[0]).To(BeNumerically("~", 0, 1e-9))
		}
	})

	It("projects a cosine basis onto a single coefficient", func() {
		const numMels = 40
		melDB := make([][]float64, numMels)
		for m := range melDB {
			value := math.Cos(math.Pi * 3 * (2*float64(m) + 1) / (2 * numMels))
			melDB[m] = []float64{value}
		}

		coefficients := dctII(melDB, 13)
		for k, row := range coefficients {
			if k == 3 {
				Expect(row[0]).To(BeNumerically("~", math.Sqrt(numMels/2.0), 1e-9))
			} else {
				Expect(row[0]).To(BeNumerically("~", 0, 1e-9))
			}
		}
	})
})
