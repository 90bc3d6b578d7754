// Package npy saves arrays as numpy .npy files and reads the arrays out of
// numpy .npz archives.
package npy

import (
	"os"
	"strings"

	"github.com/sbinet/npyio"
	"github.com/sbinet/npyio/npz"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"gonum.org/v1/gonum/mat"
)

const npyExtension = ".npy"

// Save writes value, a slice or a *mat.Dense, to path
func Save(path string, value any) error {
	errctx := cerr.Field("path", path)

	file, err := os.Create(path)
	if err != nil {
		return errctx.Wrap(err).Error("Failed to create npy file")
	}

	if err := npyio.Write(file, value); err != nil {
		_ = file.Close()
		return errctx.Wrap(err).Error("Failed to encode npy file")
	}

	if err := file.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to close npy file")
	}

	return nil
}

// Array is a float array of any rank, in row-major order
type Array struct {
	Shape []int
	Data  []float64
}

// Matrix views a rank 2 array as a gonum matrix sharing Data
func (a Array) Matrix() (*mat.Dense, error) {
	if len(a.Shape) != 2 {
		return nil, cerr.Field("shape", a.Shape).Error("Array is not a matrix")
	}

	if a.Shape[0] == 0 || a.Shape[1] == 0 || a.Shape[0]*a.Shape[1] != len(a.Data) {
		return nil, cerr.Field("shape", a.Shape).Field("length", len(a.Data)).Error("Array has no usable matrix shape")
	}

	return mat.NewDense(a.Shape[0], a.Shape[1], a.Data), nil
}

// LoadArchive reads every float array in an .npz archive, keyed by name
// without the .npy extension. float32 arrays are widened to float64.
func LoadArchive(path string) (map[string]Array, error) {
	errctx := cerr.Field("path", path)

	archive, err := npz.Open(path)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to open npz archive")
	}
	defer archive.Close()

	arrays := map[string]Array{}
	for _, key := range archive.Keys() {
		name := strings.TrimSuffix(key, npyExtension)

		array, err := readArray(archive, key)
		if err != nil {
			return nil, errctx.Field("array", name).Wrap(err).Error("Failed to read array from npz archive")
		}

		arrays[name] = array
	}

	return arrays, nil
}

func readArray(archive *npz.Reader, key string) (Array, error) {
	header := archive.Header(key)
	if header == nil {
		return Array{}, cerr.Error("Array has no readable npy header")
	}

	descr := header.Descr
	errctx := cerr.Field("dtype", descr.Type).Field("shape", descr.Shape)

	if descr.Fortran {
		return Array{}, errctx.Error("Fortran ordered arrays are not supported")
	}

	array := Array{Shape: descr.Shape}

	switch descr.Type {
	case "<f8":
		var data []float64
		if err := archive.Read(key, &data); err != nil {
			return Array{}, errctx.Wrap(err).Error("Failed to decode float64 data")
		}
		array.Data = data

	case "<f4":
		var data []float32
		if err := archive.Read(key, &data); err != nil {
			return Array{}, errctx.Wrap(err).Error("Failed to decode float32 data")
		}
		array.Data = make([]float64, len(data))
		for i, value := range data {
			array.Data[i] = float64(value)
		}

	default:
		return Array{}, errctx.Error("Only float arrays are supported")
	}

	return array, nil
}
