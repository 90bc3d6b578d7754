package transform

import (
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
	"gonum.org/v1/gonum/floats"
)

// Fade multiplies every channel by FadeCurve, ramping linearly in over the
// first floor(duration * sampleRate) samples and out over as many at the end.
func Fade(buffer audio.Buffer, sampleRate int, duration float64) (audio.Buffer, error) {
	if err := buffer.CheckShape(); err != nil {
		return audio.Buffer{}, errors.Wrap(err, "Cannot fade buffer")
	}

	curve, err := FadeCurve(buffer.Samples(), samplesFor(duration, sampleRate))
	if err != nil {
		return audio.Buffer{}, errors.Wrapf(err, "Cannot fade %v seconds at %d Hz", duration, sampleRate)
	}

	faded := buffer.Clone()
	for c := 0; c < faded.Channels(); c++ {
		floats.Mul(faded.Channel(c), curve)
	}

	return faded, nil
}

// FadeCurve is total samples long: linspace(0, 1, fadeLength), then ones,
// then linspace(1, 0, fadeLength).
func FadeCurve(total int, fadeLength int) ([]float64, error) {
	if fadeLength < 0 {
		return nil, mark.Messagef(audio.InvalidFadeDurationMark, "Fade length %d is negative", fadeLength)
	}

	flatLength := total - 2*fadeLength
	if flatLength < 0 {
		return nil, mark.Messagef(audio.InvalidFadeDurationMark,
			"Fade length %d on both ends does not fit in %d samples", fadeLength, total)
	}

	curve := make([]float64, total)
	fadeIn := curve[:fadeLength]
	flat := curve[fadeLength : fadeLength+flatLength]
	fadeOut := curve[fadeLength+flatLength:]

	linspace(fadeIn, 0, 1)
	for i := range flat {
		flat[i] = 1
	}
	linspace(fadeOut, 1, 0)

	return curve, nil
}

// linspace matches numpy.linspace with endpoint=True, including the single
// element case that floats.Span refuses
func linspace(dst []float64, start float64, stop float64) {
	switch len(dst) {
	case 0:
	case 1:
		dst[0] = start
	default:
		floats.Span(dst, start, stop)
	}
}
