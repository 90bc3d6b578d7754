package discovery

import (
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/timbre/src/shared/audio"
	"github.com/veedubyou/timbre/src/shared/lib/errors/mark"
)

const WavExtension = ".wav"

type File struct {
	// Path is the full path, Name the base name, Stem the base name
	// without Ext
	Path string
	Name string
	Stem string
	Ext  string
}

func NewFile(path string) File {
	name := filepath.Base(path)
	ext := filepath.Ext(name)

	return File{
		Path: path,
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  ext,
	}
}

// Files is a validated input directory. Nothing is listed until All is
// ranged over, and every range lists the directory again.
type Files struct {
	Dir string
}

// Discover checks that dir exists and is a directory
func Discover(dir string) (Files, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Files{}, mark.Wrapf(err, audio.MissingDirectoryMark, "Input directory %s does not exist", dir)
		}
		return Files{}, errors.Wrapf(err, "Failed to stat input directory %s", dir)
	}

	if !info.IsDir() {
		return Files{}, mark.Messagef(audio.MissingDirectoryMark, "Input path %s is not a directory", dir)
	}

	return Files{Dir: dir}, nil
}

// All yields every .wav file in the directory. A listing failure is yielded
// once as an error and ends the sequence.
func (f Files) All() iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		entries, err := os.ReadDir(f.Dir)
		if err != nil {
			yield(File{}, mark.Wrapf(err, audio.MissingDirectoryMark, "Failed to list %s", f.Dir))
			return
		}

		for _, entry := range entries {
			if !isWav(entry) {
				continue
			}

			if !yield(NewFile(filepath.Join(f.Dir, entry.Name())), nil) {
				return
			}
		}
	}
}

// Count is the number of files All would yield right now
func (f Files) Count() (int, error) {
	count := 0
	for _, err := range f.All() {
		if err != nil {
			return 0, err
		}
		count++
	}

	return count, nil
}

func isWav(entry os.DirEntry) bool {
	if entry.IsDir() {
		return false
	}

	return strings.HasSuffix(entry.Name(), WavExtension)
}
