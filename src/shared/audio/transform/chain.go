package transform

import (
	"github.com/cockroachdb/errors"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/config"
)

// Options toggles each step of the chain. A disabled step passes the buffer
// through as is.
type Options struct {
	Normalize    bool
	Trim         bool
	TrimDuration float64
	Fade         bool
	FadeDuration float64
}

// OptionsFromStage enables trimming only for a positive trim duration
func OptionsFromStage(stage config.Stage) Options {
	return Options{
		Normalize:    stage.Normalize,
		Trim:         stage.TrimDuration > 0,
		TrimDuration: stage.TrimDuration,
		Fade:         stage.Fade,
		FadeDuration: stage.FadeDuration,
	}
}

// Apply runs normalize -> trim -> fade on an already resampled buffer, using
// the buffer's own sample rate for the duration math.
func Apply(buffer audio.Buffer, options Options) (audio.Buffer, error) {
	var err error

	if options.Normalize {
		buffer, err = Normalize(buffer)
		if err != nil {
			return audio.Buffer{}, errors.Wrap(err, "Failed to normalize")
		}
	}

	if options.Trim {
		buffer, err = Trim(buffer, buffer.SampleRate, options.TrimDuration)
		if err != nil {
			return audio.Buffer{}, errors.Wrap(err, "Failed to trim")
		}
	}

	if options.Fade {
		buffer, err = Fade(buffer, buffer.SampleRate, options.FadeDuration)
		if err != nil {
			return audio.Buffer{}, errors.Wrap(err, "Failed to fade")
		}
	}

	return buffer, nil
}
