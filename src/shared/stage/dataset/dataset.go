package dataset

import (
	"os"
	"path/filepath"

	"github.com/veedubyou/timbre/src/shared/audio/naming"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/vmihailenco/msgpack/v5"
)

type Kind string

const (
	MFCCKind      Kind = "mfcc"
	EmbeddingKind Kind = "embedding"
)

// Dataset bundles every per-file feature of one extraction run. Features,
// Names and (when present) Timestamps are parallel: index i of each belongs
// to the same input file.
type Dataset struct {
	Kind          Kind          `msgpack:"kind"`
	EmbeddingSize int           `msgpack:"embedding_size,omitempty"`
	Features      [][][]float64 `msgpack:"features"`
	Timestamps    [][]float64   `msgpack:"timestamps,omitempty"`
	Names         []string      `msgpack:"names"`
}

func NewMFCC() Dataset {
	return Dataset{
		Kind:     MFCCKind,
		Features: [][][]float64{},
		Names:    []string{},
	}
}

func NewEmbedding(size int) Dataset {
	return Dataset{
		Kind:          EmbeddingKind,
		EmbeddingSize: size,
		Features:      [][][]float64{},
		Timestamps:    [][]float64{},
		Names:         []string{},
	}
}

// Append adds one file's feature matrix. An MFCC vector is a 1 row matrix.
func (d *Dataset) Append(name string, features [][]float64, timestamps []float64) {
	d.Features = append(d.Features, features)
	d.Names = append(d.Names, name)
	if d.Kind == EmbeddingKind {
		d.Timestamps = append(d.Timestamps, timestamps)
	}
}

func (d Dataset) Len() int {
	return len(d.Names)
}

func (d Dataset) Validate() error {
	errctx := cerr.Fields(cerr.F{
		"kind":     d.Kind,
		"names":    len(d.Names),
		"features": len(d.Features),
	})

	switch d.Kind {
	case MFCCKind:
		if len(d.Timestamps) != 0 {
			return errctx.Error("MFCC datasets don't carry timestamps")
		}
	case EmbeddingKind:
		if len(d.Timestamps) != len(d.Names) {
			return errctx.Field("timestamps", len(d.Timestamps)).Error("Timestamps are not parallel to the names")
		}
		if d.EmbeddingSize <= 0 {
			return errctx.Error("Embedding datasets need an embedding size")
		}
	default:
		return errctx.Error("Unknown dataset kind")
	}

	if len(d.Features) != len(d.Names) {
		return errctx.Error("Features are not parallel to the names")
	}

	return nil
}

// FileName is where the dataset lives inside an output directory
func (d Dataset) FileName() string {
	if d.Kind == EmbeddingKind {
		return naming.EmbeddingDataset(d.EmbeddingSize)
	}
	return naming.MFCCDataset()
}

// Save writes the dataset into dir and returns the file path
func (d Dataset) Save(dir string) (string, error) {
	if err := d.Validate(); err != nil {
		return "", cerr.Wrap(err).Error("Refusing to save an inconsistent dataset")
	}

	path := filepath.Join(dir, d.FileName())
	errctx := cerr.Field("path", path)

	contents, err := msgpack.Marshal(d)
	if err != nil {
		return "", errctx.Wrap(err).Error("Failed to encode dataset")
	}

	if err := os.WriteFile(path, contents, 0o644); err != nil {
		return "", errctx.Wrap(err).Error("Failed to write dataset")
	}

	return path, nil
}

func Load(path string) (Dataset, error) {
	errctx := cerr.Field("path", path)

	contents, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, errctx.Wrap(err).Error("Failed to read dataset")
	}

	dataset := Dataset{}
	if err := msgpack.Unmarshal(contents, &dataset); err != nil {
		return Dataset{}, errctx.Wrap(err).Error("Failed to decode dataset")
	}

	if err := dataset.Validate(); err != nil {
		return Dataset{}, errctx.Wrap(err).Error("Loaded dataset is inconsistent")
	}

	return dataset, nil
}
