package local

import (
	"path"
	"runtime"
	"strings"
)

const thisFile = "/src/shared/config/local/project_root.go"

func ProjectRoot() string {
	_, filePath, _, ok := runtime.Caller(0)
	if !ok {
		panic("Failed to call runtime.Caller")
	}

	if !strings.HasSuffix(filePath, thisFile) {
		panic("project_root.go has moved, update thisFile")
	}

	return strings.TrimSuffix(filePath, thisFile)
}

// WorkingDir is where external tools get to scribble during development
func WorkingDir(leaf string) string {
	return path.Join(ProjectRoot(), "wd", leaf)
}
