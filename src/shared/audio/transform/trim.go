package transform

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/timbre/src/shared/audio"
)

// Trim keeps at most floor(duration * sampleRate) samples from the start of
// the last axis. Shorter buffers come back untouched. The cut is hard, no
// fade is applied at the boundary.
func Trim(buffer audio.Buffer, sampleRate int, duration float64) (audio.Buffer, error) {
	if err := buffer.CheckShape(); err != nil {
		return audio.Buffer{}, errors.Wrap(err, "Cannot trim buffer")
	}

	if duration < 0 {
		return audio.Buffer{}, errors.Newf("Trim duration must not be negative, got %v", duration)
	}

	cutoff := samplesFor(duration, sampleRate)
	if buffer.Samples() <= cutoff {
		return buffer, nil
	}

	trimmed := audio.Buffer{
		Shape:      append([]int{}, buffer.Shape...),
		Data:       make([]float64, 0, buffer.Channels()*cutoff),
		SampleRate: buffer.SampleRate,
	}
	trimmed.Shape[trimmed.Rank()-1] = cutoff

	for c := 0; c < buffer.Channels(); c++ {
		trimmed.Data = append(trimmed.Data, buffer.Channel(c)[:cutoff]...)
	}

	return trimmed, nil
}

func samplesFor(duration float64, sampleRate int) int {
	return int(math.Floor(duration * float64(sampleRate)))
}
