package dummy

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sbinet/npyio/npz"
	"github.com/veedubyou/timbre/src/shared/audio/wavfile"
	"gonum.org/v1/gonum/mat"
)

// OpenL3 writes <output-dir>/<input stem>.npz with one embedding row per
// hop of the input. Cell (i, j) of the embedding is (i + j) / size.
type OpenL3 struct{}

func (OpenL3) Program() Program {
	return func(_ string, args []string) ([]byte, error) {
		if len(args) < 2 || args[0] != "audio" {
			return []byte("usage: openl3 audio FILE"), errors.New("dummy openl3: bad invocation")
		}

		inputPath := args[1]
		outputDir := flagValue(args, "--output-dir")

		size, err := strconv.Atoi(flagValue(args, "--audio-embedding-size"))
		if err != nil {
			return nil, errors.Wrap(err, "dummy openl3: bad embedding size")
		}

		hopSize, err := strconv.ParseFloat(flagValue(args, "--audio-hop-size"), 64)
		if err != nil {
			return nil, errors.Wrap(err, "dummy openl3: bad hop size")
		}

		input, err := wavfile.Read(inputPath, true)
		if err != nil {
			return []byte(err.Error()), err
		}

		numFrames := int(input.DurationSeconds()/hopSize) + 1
		frames := mat.NewDense(numFrames, size, nil)
		timestamps := make([]float64, numFrames)
		for i := 0; i < numFrames; i++ {
			timestamps[i] = float64(i) * hopSize
			for j := 0; j < size; j++ {
				frames.Set(i, j, float64(i+j)/float64(size))
			}
		}

		stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outPath := filepath.Join(outputDir, stem+".npz")
		if err := writeArchive(outPath, frames, timestamps); err != nil {
			return nil, err
		}

		return []byte("Saved " + outPath), nil
	}
}

func writeArchive(path string, frames *mat.Dense, timestamps []float64) error {
	return npz.Write(path, map[string]any{
		"embedding.npy":  frames,
		"timestamps.npy": timestamps,
	})
}
