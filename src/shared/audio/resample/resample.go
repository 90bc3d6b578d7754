package resample

import (
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	resampling "github.com/tphakala/go-audio-resampling"
	"github.com/veedubyou/timbre/src/shared/audio"
	"gonum.org/v1/gonum/floats"
)

type ratePair struct {
	source int
	target int
}

// leading samples the filter adds, per rate pair
var filterDelays sync.Map

// Resample converts every channel of buffer to targetRate, keeping the rank
// and channel count. The result has round(samples * target / source)
// samples per channel.
func Resample(buffer audio.Buffer, targetRate int) (audio.Buffer, error) {
	if err := buffer.CheckShape(); err != nil {
		return audio.Buffer{}, err
	}

	if targetRate < 1 || buffer.SampleRate < 1 {
		return audio.Buffer{}, errors.Newf("Cannot resample from %d Hz to %d Hz", buffer.SampleRate, targetRate)
	}

	if targetRate == buffer.SampleRate {
		return buffer.Clone(), nil
	}

	outputLength := OutputLength(buffer.Samples(), buffer.SampleRate, targetRate)
	channels := make([][]float64, buffer.Channels())

	for c := range channels {
		resampled, err := resampleChannel(buffer.Channel(c), buffer.SampleRate, targetRate, outputLength)
		if err != nil {
			return audio.Buffer{}, errors.Wrapf(err, "Failed to resample channel %d", c)
		}
		channels[c] = resampled
	}

	if buffer.Rank() == 1 {
		return audio.NewMono(channels[0], targetRate), nil
	}

	return audio.NewMultiChannel(channels, targetRate)
}

func OutputLength(samples int, sourceRate int, targetRate int) int {
	return int(math.Round(float64(samples) * float64(targetRate) / float64(sourceRate)))
}

func newResampler(sourceRate int, targetRate int) (resampling.Resampler, error) {
	resampler, err := resampling.New(&resampling.Config{
		InputRate:  float64(sourceRate),
		OutputRate: float64(targetRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create resampler")
	}

	return resampler, nil
}

// filter runs samples through a fresh resampler and returns everything it
// emits, including what Flush drains from the filter tail
func filter(samples []float64, sourceRate int, targetRate int) ([]float64, error) {
	resampler, err := newResampler(sourceRate, targetRate)
	if err != nil {
		return nil, err
	}

	output, err := resampler.Process(samples)
	if err != nil {
		return nil, errors.Wrap(err, "Resampler failed to process samples")
	}

	tail, err := resampler.Flush()
	if err != nil {
		return nil, errors.Wrap(err, "Resampler failed to flush")
	}

	return append(output, tail...), nil
}

// filterDelay finds how many output samples the filter shifts the signal by,
// from where the peak of a filtered impulse lands. GetLatency only estimates
// this from the stage tap counts.
func filterDelay(sourceRate int, targetRate int) (int, error) {
	key := ratePair{source: sourceRate, target: targetRate}
	if delay, ok := filterDelays.Load(key); ok {
		return delay.(int), nil
	}

	impulse := make([]float64, sourceRate)
	at := sourceRate / 2
	impulse[at] = 1

	response, err := filter(impulse, sourceRate, targetRate)
	if err != nil {
		return 0, errors.Wrap(err, "Failed to measure the resampler delay")
	}

	expected := int(math.Round(float64(at) * float64(targetRate) / float64(sourceRate)))
	delay := max(floats.MaxIdx(response)-expected, 0)

	filterDelays.Store(key, delay)
	return delay, nil
}

func resampleChannel(samples []float64, sourceRate int, targetRate int, outputLength int) ([]float64, error) {
	delay, err := filterDelay(sourceRate, targetRate)
	if err != nil {
		return nil, err
	}

	output, err := filter(samples, sourceRate, targetRate)
	if err != nil {
		return nil, err
	}

	output = output[min(delay, len(output)):]
	if len(output) >= outputLength {
		return output[:outputLength], nil
	}

	padded := make([]float64, outputLength)
	copy(padded, output)
	return padded, nil
}
