package transform

import (
	"math"

	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Normalize standardizes the samples to zero mean and unit variance, then
// rescales them linearly so the minimum lands on -1 and the maximum on 1.
// Statistics are taken over every sample of every channel.
func Normalize(buffer audio.Buffer) (audio.Buffer, error) {
	if len(buffer.Data) == 0 {
		return audio.Buffer{}, mark.Message(audio.DegenerateInputMark, "Cannot normalize an empty buffer")
	}

	mean, std := stat.PopMeanStdDev(buffer.Data, nil)
	if std == 0 || !isFinite(mean) || !isFinite(std) {
		return audio.Buffer{}, mark.Messagef(audio.DegenerateInputMark,
			"Cannot normalize a buffer with mean %v and standard deviation %v", mean, std)
	}

	normalized := buffer.Clone()
	z := normalized.Data
	floats.AddConst(-mean, z)
	floats.Scale(1/std, z)

	lo, hi := floats.Min(z), floats.Max(z)
	span := hi - lo
	if span == 0 || !isFinite(span) {
		return audio.Buffer{}, mark.Messagef(audio.DegenerateInputMark,
			"Standardized buffer has no usable range [%v, %v]", lo, hi)
	}

	for i, v := range z {
		z[i] = 2*((v-lo)/span) - 1
	}

	return normalized, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
