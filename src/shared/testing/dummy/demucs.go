package dummy

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/audio/resample"
	"github.com/veedubyou/timbre/src/shared/audio/wavfile"
)

// Demucs writes <out>/<model>/<stem>.wav for the four stems. The vocals are
// the input at half volume, everything else is silence. A non-zero
// OutputSampleRate makes the stems come out at that rate.
type Demucs struct {
	OutputSampleRate int
}

func (d Demucs) Program() Program {
	return func(_ string, args []string) ([]byte, error) {
		if len(args) == 0 {
			return nil, errors.New("dummy demucs: no input file")
		}

		outputDir := flagValue(args, "-o")
		model := flagValue(args, "-n")
		template := flagValue(args, "--filename")
		if outputDir == "" || model == "" || template == "" {
			return []byte("usage: demucs -n MODEL -o DIR --filename TEMPLATE FILE"), errors.New("dummy demucs: missing flags")
		}

		input, err := wavfile.Read(args[len(args)-1], false)
		if err != nil {
			return []byte(err.Error()), err
		}

		if d.OutputSampleRate != 0 {
			input, err = resample.Resample(input, d.OutputSampleRate)
			if err != nil {
				return nil, err
			}
		}

		modelDir := filepath.Join(outputDir, model)
		if err := os.MkdirAll(modelDir, 0o755); err != nil {
			return nil, err
		}

		for _, stem := range []string{"drums", "bass", "other", "vocals"} {
			buffer := audio.Buffer{
				Shape:      input.Shape,
				Data:       make([]float64, len(input.Data)),
				SampleRate: input.SampleRate,
			}

			if stem == "vocals" {
				for i, sample := range input.Data {
					buffer.Data[i] = sample / 2
				}
			}

			name := strings.NewReplacer("{stem}", stem, "{ext}", "wav").Replace(template)
			if err := wavfile.Write(filepath.Join(modelDir, name), buffer); err != nil {
				return nil, err
			}
		}

		return []byte("Separated tracks will be stored in " + modelDir), nil
	}
}
