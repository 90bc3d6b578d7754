package audio

import (
	"slices"

	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
)

// Buffer holds float samples in row-major order. Shape is (samples,) for
// mono audio or (channels, samples) for multi-channel audio, so channel i
// lives at Data[i*samples : (i+1)*samples].
type Buffer struct {
	Shape      []int
	Data       []float64
	SampleRate int
}

func NewMono(samples []float64, sampleRate int) Buffer {
	return Buffer{
		Shape:      []int{len(samples)},
		Data:       samples,
		SampleRate: sampleRate,
	}
}

// NewMultiChannel copies channels into a (channels, samples) buffer. All
// channels must have the same length.
func NewMultiChannel(channels [][]float64, sampleRate int) (Buffer, error) {
	if len(channels) == 0 {
		return Buffer{}, mark.Message(UnsupportedShapeMark, "A multi-channel buffer needs at least one channel")
	}

	numSamples := len(channels[0])
	data := make([]float64, 0, len(channels)*numSamples)
	for i, channel := range channels {
		if len(channel) != numSamples {
			return Buffer{}, mark.Messagef(UnsupportedShapeMark,
				"Channel %d has %d samples, expected %d", i, len(channel), numSamples)
		}
		data = append(data, channel...)
	}

	return Buffer{
		Shape:      []int{len(channels), numSamples},
		Data:       data,
		SampleRate: sampleRate,
	}, nil
}

func (b Buffer) Rank() int {
	return len(b.Shape)
}

// CheckShape fails for anything that isn't rank 1 or 2, or whose shape
// doesn't account for every sample in Data.
func (b Buffer) CheckShape() error {
	switch b.Rank() {
	case 1:
		if b.Shape[0] != len(b.Data) {
			return mark.Messagef(UnsupportedShapeMark, "Shape %v does not match %d samples", b.Shape, len(b.Data))
		}
	case 2:
		if b.Shape[0]*b.Shape[1] != len(b.Data) {
			return mark.Messagef(UnsupportedShapeMark, "Shape %v does not match %d samples", b.Shape, len(b.Data))
		}
	default:
		return mark.Messagef(UnsupportedShapeMark, "Audio buffers can only be rank 1 or 2, got rank %d", b.Rank())
	}

	return nil
}

func (b Buffer) Channels() int {
	if b.Rank() == 2 {
		return b.Shape[0]
	}
	return 1
}

// Samples is the length of the last axis
func (b Buffer) Samples() int {
	if b.Rank() == 0 {
		return 0
	}
	return b.Shape[b.Rank()-1]
}

// Channel returns a view into the samples of channel i, not a copy
func (b Buffer) Channel(i int) []float64 {
	n := b.Samples()
	return b.Data[i*n : (i+1)*n]
}

func (b Buffer) Clone() Buffer {
	return Buffer{
		Shape:      slices.Clone(b.Shape),
		Data:       slices.Clone(b.Data),
		SampleRate: b.SampleRate,
	}
}

// Mono averages all channels into a rank 1 buffer. Rank 1 input is cloned.
func (b Buffer) Mono() Buffer {
	if b.Rank() != 2 {
		return b.Clone()
	}

	numChannels := b.Channels()
	mixed := make([]float64, b.Samples())
	for c := 0; c < numChannels; c++ {
		for i, sample := range b.Channel(c) {
			mixed[i] += sample
		}
	}

	for i := range mixed {
		mixed[i] /= float64(numChannels)
	}

	return NewMono(mixed, b.SampleRate)
}

// Stereo returns exactly two channels. A single channel is duplicated and
// anything past the first two channels (front left and right) is dropped.
func (b Buffer) Stereo() Buffer {
	left := b.Channel(0)
	right := left
	if b.Channels() > 1 {
		right = b.Channel(1)
	}

	data := make([]float64, 0, len(left)+len(right))
	data = append(data, left...)
	data = append(data, right...)

	return Buffer{
		Shape:      []int{2, len(left)},
		Data:       data,
		SampleRate: b.SampleRate,
	}
}

func (b Buffer) DurationSeconds() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.Samples()) / float64(b.SampleRate)
}
