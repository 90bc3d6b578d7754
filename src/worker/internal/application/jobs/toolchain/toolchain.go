package toolchain

import (
	"path/filepath"

	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
)

// Toolchain is where the external models live on this worker. A run's
// pipeline says what to do, the worker decides which binaries do it.
type Toolchain struct {
	DemucsBinPath  string
	OpenL3BinPath  string
	WorkingDirPath string
	Executor       executor.Executor
}

func (t Toolchain) Separation(separation config.Separation) config.Separation {
	separation.DemucsBinPath = t.DemucsBinPath
	separation.WorkingDir = filepath.Join(t.WorkingDirPath, "demucs")
	return separation
}

func (t Toolchain) Embedding(embedding config.Embedding) config.Embedding {
	embedding.OpenL3BinPath = t.OpenL3BinPath
	embedding.WorkingDir = filepath.Join(t.WorkingDirPath, "openl3")
	return embedding
}
