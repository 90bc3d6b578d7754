package filestore

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/apex/log"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	cloudstorage "github.com/veedubyou/timbre/src/worker/internal/application/cloud_storage/entity"
	"google.golang.org/api/option"
)

var _ cloudstorage.FileStore = GoogleFileStore{}

func NewGoogleFileStore(storageHost string, opts ...option.ClientOption) (GoogleFileStore, error) {
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return GoogleFileStore{}, cerr.Field("storage_host", storageHost).
			Wrap(err).Error("Failed to create cloud storage client")
	}

	return GoogleFileStore{
		storageHost: strings.TrimSuffix(storageHost, "/"),
		client:      client,
	}, nil
}

type GoogleFileStore struct {
	storageHost string
	client      *storage.Client
}

func (g GoogleFileStore) GetFile(ctx context.Context, fileURL string) ([]byte, error) {
	object, err := g.object(fileURL)
	if err != nil {
		return nil, err
	}

	errctx := cerr.Field("file_url", fileURL)

	reader, err := object.NewReader(ctx)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to open the object for reading")
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to read the object")
	}

	return contents, nil
}

func (g GoogleFileStore) WriteFile(ctx context.Context, fileURL string, data []byte) error {
	object, err := g.object(fileURL)
	if err != nil {
		return err
	}

	errctx := cerr.Field("file_url", fileURL).Field("size", len(data))

	writer := object.NewWriter(ctx)
	if _, err = writer.Write(data); err != nil {
		_ = writer.Close()
		return errctx.Wrap(err).Error("Failed to write to the object")
	}

	// the upload only completes on Close
	if err = writer.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to finish uploading the object")
	}

	log.WithField("file_url", fileURL).Debug("Uploaded file")
	return nil
}

func (g GoogleFileStore) object(fileURL string) (*storage.ObjectHandle, error) {
	bucket, objectName, err := splitURL(g.storageHost, fileURL)
	if err != nil {
		return nil, err
	}

	return g.client.Bucket(bucket).Object(objectName), nil
}

// splitURL undoes storagepath: <host>/<bucket>/<object name>
func splitURL(storageHost string, fileURL string) (string, string, error) {
	errctx := cerr.Field("storage_host", storageHost).Field("file_url", fileURL)

	path, ok := strings.CutPrefix(fileURL, storageHost+"/")
	if !ok {
		return "", "", errctx.Error("File URL is not on this storage host")
	}

	bucket, objectName, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || objectName == "" {
		return "", "", errctx.Error("File URL needs both a bucket and an object name")
	}

	return bucket, objectName, nil
}
