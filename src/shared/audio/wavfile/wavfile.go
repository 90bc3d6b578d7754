package wavfile

import (
	"math"
	"os"

	"github.com/cockroachdb/errors"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
)

const (
	pcmFormat       = 1
	ieeeFloatFormat = 3
	writeBitDepth   = 16
)

// Read decodes a PCM wav file into samples scaled to [-1, 1). Single channel
// files, and any file read with mono set, come back as rank 1 buffers.
func Read(path string, mono bool) (audio.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, errors.Wrapf(err, "Failed to open %s", path)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return audio.Buffer{}, mark.Messagef(audio.UnsupportedFormatMark, "%s is not a valid wav file", path)
	}

	if decoder.WavAudioFormat == ieeeFloatFormat {
		return audio.Buffer{}, mark.Messagef(audio.UnsupportedFormatMark, "%s holds float samples, only PCM is supported", path)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, mark.Wrapf(err, audio.UnsupportedFormatMark, "Failed to decode PCM data of %s", path)
	}

	numChannels := pcm.Format.NumChannels
	sampleRate := pcm.Format.SampleRate
	if numChannels < 1 || sampleRate < 1 {
		return audio.Buffer{}, mark.Messagef(audio.UnsupportedFormatMark,
			"%s has %d channels at %d Hz", path, numChannels, sampleRate)
	}

	toFloat := scaler(pcm.SourceBitDepth)
	numFrames := len(pcm.Data) / numChannels

	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, numFrames)
	}

	for frame := 0; frame < numFrames; frame++ {
		for c := 0; c < numChannels; c++ {
			channels[c][frame] = toFloat(pcm.Data[frame*numChannels+c])
		}
	}

	if numChannels == 1 {
		return audio.NewMono(channels[0], sampleRate), nil
	}

	buffer, err := audio.NewMultiChannel(channels, sampleRate)
	if err != nil {
		return audio.Buffer{}, errors.Wrapf(err, "Failed to assemble channels of %s", path)
	}

	if mono {
		return buffer.Mono(), nil
	}

	return buffer, nil
}

// Write encodes the buffer as 16 bit PCM at the buffer's sample rate,
// clipping anything outside [-1, 1].
func Write(path string, buffer audio.Buffer) error {
	if err := buffer.CheckShape(); err != nil {
		return errors.Wrapf(err, "Cannot write %s", path)
	}

	if buffer.SampleRate < 1 {
		return errors.Newf("Cannot write %s with sample rate %d", path, buffer.SampleRate)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %s", path)
	}

	numChannels := buffer.Channels()
	numFrames := buffer.Samples()
	maxValue := float64(int(1)<<(writeBitDepth-1) - 1)

	interleaved := make([]int, numChannels*numFrames)
	for c := 0; c < numChannels; c++ {
		for frame, sample := range buffer.Channel(c) {
			clipped := math.Max(-1, math.Min(1, sample))
			interleaved[frame*numChannels+c] = int(math.Round(clipped * maxValue))
		}
	}

	encoder := wav.NewEncoder(file, buffer.SampleRate, writeBitDepth, numChannels, pcmFormat)
	err = encoder.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: numChannels,
			SampleRate:  buffer.SampleRate,
		},
		Data:           interleaved,
		SourceBitDepth: writeBitDepth,
	})
	if err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "Failed to encode %s", path)
	}

	if err := encoder.Close(); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "Failed to finalize %s", path)
	}

	return errors.Wrapf(file.Close(), "Failed to close %s", path)
}

func scaler(bitDepth int) func(int) float64 {
	if bitDepth == 8 {
		// 8 bit wav is unsigned
		return func(v int) float64 {
			return float64(v-128) / 128
		}
	}

	fullScale := float64(int64(1) << (bitDepth - 1))
	return func(v int) float64 {
		return float64(v) / fullScale
	}
}
