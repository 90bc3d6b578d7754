package artifact

import (
	"context"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	cloudstorage "github.com/veedubyou/timbre/src/worker/internal/application/cloud_storage/entity"
	"github.com/veedubyou/timbre/src/worker/internal/lib/storagepath"
)

// Uploader mirrors local stage outputs to the file store
type Uploader struct {
	fileStore     cloudstorage.FileStore
	pathGenerator storagepath.Generator
}

func NewUploader(fileStore cloudstorage.FileStore, pathGenerator storagepath.Generator) Uploader {
	return Uploader{
		fileStore:     fileStore,
		pathGenerator: pathGenerator,
	}
}

// Upload returns the URL the file now lives at, keyed by its base name
func (u Uploader) Upload(ctx context.Context, runID string, stage string, localPath string) (string, error) {
	errctx := cerr.Fields(cerr.F{
		"run_id":     runID,
		"stage":      stage,
		"local_path": localPath,
	})

	contents, err := os.ReadFile(localPath)
	if err != nil {
		return "", errctx.Wrap(err).Error("Failed to read the artifact")
	}

	destinationURL := u.pathGenerator.GeneratePath(runID, stage, filepath.Base(localPath))

	log.WithField("destination", destinationURL).Info("Writing artifact to remote file store")
	if err := u.fileStore.WriteFile(ctx, destinationURL, contents); err != nil {
		return "", errctx.Wrap(err).Error("Failed to write the artifact to the cloud")
	}

	return destinationURL, nil
}
