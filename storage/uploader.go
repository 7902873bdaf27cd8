package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — контракт объектного хранилища каталога изображений.
// Движок турнира использует только GetPublicURL; Upload/Delete нужны
// внешнему сервису каталога, который пишет в тот же бакет.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}
