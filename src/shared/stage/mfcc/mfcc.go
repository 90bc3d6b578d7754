package mfcc

import (
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/config"
	"gonum.org/v1/gonum/stat"
)

type Extractor struct {
	NumMFCC   int
	NumFFT    int
	HopLength int
	NumMels   int
}

func NewExtractor(mfccConfig config.MFCC) Extractor {
	return Extractor{
		NumMFCC:   mfccConfig.NumMFCC,
		NumFFT:    mfccConfig.NumFFT,
		HopLength: mfccConfig.HopLength,
		NumMels:   mfccConfig.NumMels,
	}
}

// Coefficients computes the MFCCs of the buffer, downmixed to mono, as
// NumMFCC rows of per-frame values
func (e Extractor) Coefficients(buffer audio.Buffer) ([][]float64, error) {
	if err := buffer.CheckShape(); err != nil {
		return nil, err
	}

	if buffer.SampleRate < 1 {
		return nil, errors.Newf("Cannot extract MFCCs at sample rate %d", buffer.SampleRate)
	}

	if e.NumMFCC > e.NumMels {
		return nil, errors.Newf("Cannot keep %d coefficients out of %d mel bands", e.NumMFCC, e.NumMels)
	}

	mono := buffer.Mono()
	power := powerSpectrogram(mono.Data, e.NumFFT, e.HopLength)
	filters := melFilterBank(mono.SampleRate, e.NumFFT, e.NumMels)

	return dctII(melSpectrogramDB(power, filters), e.NumMFCC), nil
}

// Features collapses the coefficients over time, skipping the 0th: the
// means of coefficients 1..n-1 followed by their population standard
// deviations
func (e Extractor) Features(buffer audio.Buffer) ([]float64, error) {
	coefficients, err := e.Coefficients(buffer)
	if err != nil {
		return nil, err
	}

	kept := coefficients[1:]
	features := make([]float64, 2*len(kept))
	for i, row := range kept {
		mean, std := stat.PopMeanStdDev(row, nil)
		features[i] = mean
		features[len(kept)+i] = std
	}

	return features, nil
}
