package naming

import (
	"fmt"
	"strings"

	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/audio/discovery"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
)

const (
	StandardizedSuffix = "Standardized"
	FinalSuffix        = "Final"
	VoxSuffix          = "Vox"

	npyExtension     = ".npy"
	datasetExtension = ".msgpack"
)

func Standardized(file discovery.File) string {
	return suffixed(file, StandardizedSuffix)
}

func Final(file discovery.File) string {
	return suffixed(file, FinalSuffix)
}

func Vox(file discovery.File) string {
	return suffixed(file, VoxSuffix)
}

func suffixed(file discovery.File, suffix string) string {
	return fmt.Sprintf("%s_%s%s", file.Stem, suffix, file.Ext)
}

// Identifier is the first two underscore separated tokens of the file stem,
// e.g. "Alto_01" for "Alto_01_Standardized_Vox_Final.wav"
func Identifier(file discovery.File) (string, error) {
	tokens := strings.Split(file.Stem, "_")
	if len(tokens) < 2 || tokens[0] == "" || tokens[1] == "" {
		return "", mark.Messagef(audio.MalformedFilenameMark,
			"%s needs at least two non-empty underscore separated tokens", file.Name)
	}

	return tokens[0] + "_" + tokens[1], nil
}

func MFCC(file discovery.File) (string, error) {
	id, err := Identifier(file)
	if err != nil {
		return "", err
	}

	return id + "_mfcc" + npyExtension, nil
}

func Embedding(file discovery.File, size int) (string, error) {
	id, err := Identifier(file)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s_Emb_%d%s", id, size, npyExtension), nil
}

func MFCCDataset() string {
	return "all_mfccs" + datasetExtension
}

func EmbeddingDataset(size int) string {
	return fmt.Sprintf("all_embeddings_%d%s", size, datasetExtension)
}
