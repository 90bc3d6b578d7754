package audio

import "github.com/cockroachdb/errors/domains"

var (
	UnsupportedShapeMark    = domains.New("unsupported_buffer_shape")
	DegenerateInputMark     = domains.New("numeric_degenerate_input")
	InvalidFadeDurationMark = domains.New("invalid_fade_duration")
	MissingDirectoryMark    = domains.New("missing_directory")
	MalformedFilenameMark   = domains.New("malformed_filename")
	UnsupportedFormatMark   = domains.New("unsupported_audio_format")
	ModelFailureMark        = domains.New("model_failure")
)
