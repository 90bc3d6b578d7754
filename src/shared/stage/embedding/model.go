package embedding

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Embedding is one file's frames x size embedding matrix and the time in
// seconds of each frame
type Embedding struct {
	Frames     *mat.Dense
	Timestamps []float64
}

func (e Embedding) Rows() [][]float64 {
	numFrames, _ := e.Frames.Dims()
	rows := make([][]float64, numFrames)
	for i := range rows {
		rows[i] = mat.Row(nil, i, e.Frames)
	}
	return rows
}

// Model is loaded once per run and then embeds one wav file at a time
//
//counterfeiter:generate . Model
type Model interface {
	Embed(ctx context.Context, wavPath string) (Embedding, error)
	Size() int
}
