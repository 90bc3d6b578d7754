package cloudstorage

import "context"

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// FileStore addresses files by the full URL that storagepath generates
//
//counterfeiter:generate . FileStore
type FileStore interface {
	GetFile(ctx context.Context, fileURL string) ([]byte, error)
	WriteFile(ctx context.Context, fileURL string, data []byte) error
}
