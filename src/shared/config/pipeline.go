package config

import (
	"fmt"
	"path/filepath"
)

type FailurePolicy string

const (
	// FailFast aborts the whole batch on the first file that errors
	FailFast FailurePolicy = "fail_fast"
	// Isolate records the failing file and moves on to the next one
	Isolate FailurePolicy = "isolate"
)

type Batch struct {
	InputDir      string        `mapstructure:"input_dir" json:"input_dir" validate:"required"`
	OutputDir     string        `mapstructure:"output_dir" json:"output_dir" validate:"required"`
	FailurePolicy FailurePolicy `mapstructure:"failure_policy" json:"failure_policy" validate:"oneof=fail_fast isolate"`
}

// Stage configures a standardizing pass: resample, then the optional
// normalize / trim / fade chain. A zero TrimDuration disables trimming.
type Stage struct {
	Batch            `mapstructure:",squash"`
	TargetSampleRate int     `mapstructure:"target_sample_rate" json:"target_sample_rate" validate:"gt=0"`
	ToMono           bool    `mapstructure:"to_mono" json:"to_mono"`
	Normalize        bool    `mapstructure:"normalize" json:"normalize"`
	TrimDuration     float64 `mapstructure:"trim_duration" json:"trim_duration" validate:"gte=0"`
	Fade             bool    `mapstructure:"fade" json:"fade"`
	FadeDuration     float64 `mapstructure:"fade_duration" json:"fade_duration" validate:"gte=0"`
}

// Postprocess runs the Stage once per sample rate, each pass writing to
// OutputDirForRate.
type Postprocess struct {
	Stage       `mapstructure:",squash"`
	SampleRates []int `mapstructure:"sample_rates" json:"sample_rates" validate:"min=1,dive,gt=0"`
}

func (p Postprocess) OutputDirForRate(sampleRate int) string {
	return fmt.Sprintf("%s_%d", p.OutputDir, sampleRate)
}

// ForRate is the single rate Stage that a postprocess pass executes
func (p Postprocess) ForRate(sampleRate int) Stage {
	stage := p.Stage
	stage.TargetSampleRate = sampleRate
	stage.OutputDir = p.OutputDirForRate(sampleRate)
	return stage
}

type Separation struct {
	Batch         `mapstructure:",squash"`
	WorkingDir    string `mapstructure:"working_dir" json:"working_dir" validate:"required"`
	DemucsBinPath string `mapstructure:"demucs_bin_path" json:"demucs_bin_path" validate:"required"`
	Model         string `mapstructure:"model" json:"model" validate:"required"`
	Device        string `mapstructure:"device" json:"device" validate:"oneof=cpu cuda"`
}

type MFCC struct {
	Batch     `mapstructure:",squash"`
	NumMFCC   int `mapstructure:"num_mfcc" json:"num_mfcc" validate:"gt=1"`
	NumFFT    int `mapstructure:"n_fft" json:"n_fft" validate:"gt=0"`
	HopLength int `mapstructure:"hop_length" json:"hop_length" validate:"gt=0"`
	NumMels   int `mapstructure:"n_mels" json:"n_mels" validate:"gt=0"`
}

type Embedding struct {
	Batch         `mapstructure:",squash"`
	WorkingDir    string  `mapstructure:"working_dir" json:"working_dir" validate:"required"`
	OpenL3BinPath string  `mapstructure:"openl3_bin_path" json:"openl3_bin_path" validate:"required"`
	InputRepr     string  `mapstructure:"input_repr" json:"input_repr" validate:"oneof=linear mel128 mel256"`
	ContentType   string  `mapstructure:"content_type" json:"content_type" validate:"oneof=music env"`
	EmbeddingSize int     `mapstructure:"embedding_size" json:"embedding_size" validate:"oneof=512 6144"`
	HopSize       float64 `mapstructure:"hop_size" json:"hop_size" validate:"gt=0"`
}

type Pipeline struct {
	Preprocess  Stage       `mapstructure:"preprocess" json:"preprocess"`
	Separate    Separation  `mapstructure:"separate" json:"separate"`
	Postprocess Postprocess `mapstructure:"postprocess" json:"postprocess"`
	MFCC        MFCC        `mapstructure:"mfcc" json:"mfcc"`
	Embedding   Embedding   `mapstructure:"embedding" json:"embedding"`
}

const (
	DefaultFadeDuration = 0.5
	DefaultTrimDuration = 20.0
	MFCCSampleRate      = 22050
	EmbeddingSampleRate = 44100
)

// DefaultPipeline lays the stages out under root the same way the research
// data directory is organized:
//
//	choruses -> standardized -> separated -> final_stems_<rate> -> mfccs, embeddings_<size>
func DefaultPipeline(root string, workingDir string) Pipeline {
	dir := func(leaf string) string {
		return filepath.Join(root, leaf)
	}

	postprocess := Postprocess{
		Stage: Stage{
			Batch: Batch{
				InputDir:      dir("separated"),
				OutputDir:     dir("final_stems"),
				FailurePolicy: FailFast,
			},
			TargetSampleRate: MFCCSampleRate,
			ToMono:           true,
			Normalize:        true,
			TrimDuration:     DefaultTrimDuration,
			Fade:             true,
			FadeDuration:     DefaultFadeDuration,
		},
		SampleRates: []int{MFCCSampleRate, EmbeddingSampleRate},
	}

	const embeddingSize = 512

	return Pipeline{
		Preprocess: Stage{
			Batch: Batch{
				InputDir:      dir("choruses"),
				OutputDir:     dir("standardized"),
				FailurePolicy: FailFast,
			},
			TargetSampleRate: 44100,
			ToMono:           false,
			Normalize:        false,
			TrimDuration:     0,
			Fade:             true,
			FadeDuration:     DefaultFadeDuration,
		},
		Separate: Separation{
			Batch: Batch{
				InputDir:      dir("standardized"),
				OutputDir:     dir("separated"),
				FailurePolicy: FailFast,
			},
			WorkingDir:    filepath.Join(workingDir, "demucs"),
			DemucsBinPath: "demucs",
			Model:         "htdemucs",
			Device:        "cpu",
		},
		Postprocess: postprocess,
		MFCC: MFCC{
			Batch: Batch{
				InputDir:      postprocess.OutputDirForRate(MFCCSampleRate),
				OutputDir:     dir("mfccs"),
				FailurePolicy: FailFast,
			},
			NumMFCC:   13,
			NumFFT:    2048,
			HopLength: 512,
			NumMels:   128,
		},
		Embedding: Embedding{
			Batch: Batch{
				InputDir:      postprocess.OutputDirForRate(EmbeddingSampleRate),
				OutputDir:     dir(fmt.Sprintf("embeddings_%d", embeddingSize)),
				FailurePolicy: FailFast,
			},
			WorkingDir:    filepath.Join(workingDir, "openl3"),
			OpenL3BinPath: "openl3",
			InputRepr:     "mel256",
			ContentType:   "music",
			EmbeddingSize: embeddingSize,
			HopSize:       0.1,
		},
	}
}
