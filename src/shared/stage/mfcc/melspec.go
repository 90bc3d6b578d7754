package mfcc

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

const (
	amin = 1e-10
	// dB range kept below the loudest bin
	topDB = 80.0

	// slaney mel scale: linear below 1 kHz, logarithmic above
	minLogHz   = 1000.0
	linearStep = 200.0 / 3
	minLogMel  = minLogHz / linearStep
)

var logStep = math.Log(6.4) / 27.0

func hzToMel(hz float64) float64 {
	if hz < minLogHz {
		return hz / linearStep
	}
	return minLogMel + math.Log(hz/minLogHz)/logStep
}

func melToHz(mel float64) float64 {
	if mel < minLogMel {
		return mel * linearStep
	}
	return minLogHz * math.Exp(logStep*(mel-minLogMel))
}

// periodicHann is the DFT-even Hann window, one sample shorter than the
// symmetric window of length n+1
func periodicHann(n int) []float64 {
	return window.Hann(n + 1)[:n]
}

// powerSpectrogram frames the signal centered on multiples of hopLength,
// zero padding n_fft/2 on both sides. The result is frames x (n_fft/2+1).
func powerSpectrogram(signal []float64, nFFT int, hopLength int) [][]float64 {
	pad := nFFT / 2
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)

	numFrames := 1 + (len(padded)-nFFT)/hopLength
	numBins := nFFT/2 + 1
	hann := periodicHann(nFFT)

	spectrogram := make([][]float64, numFrames)
	frame := make([]float64, nFFT)

	for t := range spectrogram {
		copy(frame, padded[t*hopLength:t*hopLength+nFFT])
		floats.Mul(frame, hann)

		spectrum := fft.FFTReal(frame)
		power := make([]float64, numBins)
		for k := range power {
			re, im := real(spectrum[k]), imag(spectrum[k])
			power[k] = re*re + im*im
		}
		spectrogram[t] = power
	}

	return spectrogram
}

// melFilterBank builds numMels triangular filters between 0 Hz and Nyquist
// with slaney area normalization. The result is numMels x (n_fft/2+1).
func melFilterBank(sampleRate int, nFFT int, numMels int) [][]float64 {
	numBins := nFFT/2 + 1
	nyquist := float64(sampleRate) / 2

	fftFreqs := make([]float64, numBins)
	floats.Span(fftFreqs, 0, nyquist)

	melPoints := make([]float64, numMels+2)
	floats.Span(melPoints, hzToMel(0), hzToMel(nyquist))
	hzPoints := make([]float64, len(melPoints))
	for i, mel := range melPoints {
		hzPoints[i] = melToHz(mel)
	}

	filters := make([][]float64, numMels)
	for m := range filters {
		lowerWidth := hzPoints[m+1] - hzPoints[m]
		upperWidth := hzPoints[m+2] - hzPoints[m+1]
		enorm := 2.0 / (hzPoints[m+2] - hzPoints[m])

		weights := make([]float64, numBins)
		for k, freq := range fftFreqs {
			lower := (freq - hzPoints[m]) / lowerWidth
			upper := (hzPoints[m+2] - freq) / upperWidth
			weights[k] = math.Max(0, math.Min(lower, upper)) * enorm
		}
		filters[m] = weights
	}

	return filters
}

// melSpectrogramDB maps the power spectrogram through the filter bank and
// converts to decibels relative to 1.0, clamped to topDB below the peak.
// The result is numMels x frames.
func melSpectrogramDB(power [][]float64, filters [][]float64) [][]float64 {
	melDB := make([][]float64, len(filters))
	peak := math.Inf(-1)

	for m, weights := range filters {
		row := make([]float64, len(power))
		for t, frame := range power {
			energy := floats.Dot(weights, frame)
			row[t] = 10 * math.Log10(math.Max(amin, energy))
		}
		peak = math.Max(peak, floats.Max(row))
		melDB[m] = row
	}

	floor := peak - topDB
	for _, row := range melDB {
		for t, value := range row {
			row[t] = math.Max(value, floor)
		}
	}

	return melDB
}

// dctII is the orthonormal type II DCT over the mel axis, keeping the first
// numCoefficients. melDB is numMels x frames, the result numCoefficients x
// frames.
func dctII(melDB [][]float64, numCoefficients int) [][]float64 {
	numMels := len(melDB)
	numFrames := len(melDB[0])

	// the quarter wave inverse transform is 4x the unnormalized DCT-II
	quarterWave := fourier.NewQuarterWaveFFT(numMels)
	dcScale := math.Sqrt(1/float64(numMels)) / 4
	acScale := math.Sqrt(2/float64(numMels)) / 4

	coefficients := make([][]float64, numCoefficients)
	for k := range coefficients {
		coefficients[k] = make([]float64, numFrames)
	}

	column := make([]float64, numMels)
	transformed := make([]float64, numMels)
	for t := 0; t < numFrames; t++ {
		for m, row := range melDB {
			column[m] = row[t]
		}
		quarterWave.CosSequence(transformed, column)

		for k, row := range coefficients {
			scale := acScale
			if k == 0 {
				scale = dcScale
			}
			row[t] = scale * transformed[k]
		}
	}

	return coefficients
}
