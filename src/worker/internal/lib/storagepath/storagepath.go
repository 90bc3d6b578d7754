package storagepath

import (
	"fmt"
	"strings"
)

// Generator lays artifacts out as <host>/<bucket>/<run id>/<stage>/<leaf>
type Generator struct {
	Host   string
	Bucket string
}

func (g Generator) GeneratePath(runID string, stage string, leafPath string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		strings.TrimSuffix(g.Host, "/"), g.Bucket, runID, stage, strings.TrimPrefix(leafPath, "/"))
}
