package testing

import (
	"math"
	"path/filepath"

	. "github.com/onsi/gomega"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/audio/wavfile"
)

func Sine(samples int, sampleRate int, frequency float64) []float64 {
	wave := make([]float64, samples)
	for i := range wave {
		wave[i] = 0.5 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
	}
	return wave
}

// WriteSineWav writes a wav of the given channel count and length into dir
// and returns its path. Channel c plays at 220 * (c+1) Hz.
func WriteSineWav(dir string, name string, channels int, sampleRate int, seconds float64) string {
	samples := int(seconds * float64(sampleRate))

	waves := make([][]float64, channels)
	for c := range waves {
		waves[c] = Sine(samples, sampleRate, 220*float64(c+1))
	}

	buffer := audio.NewMono(waves[0], sampleRate)
	if channels > 1 {
		var err error
		buffer, err = audio.NewMultiChannel(waves, sampleRate)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
	}

	path := filepath.Join(dir, name)
	ExpectWithOffset(1, wavfile.Write(path, buffer)).To(Succeed())
	return path
}

func ReadWav(path string) audio.Buffer {
	buffer, err := wavfile.Read(path, false)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return buffer
}
