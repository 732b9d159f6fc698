package memory

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"esg-assessment-service/internal/domain"
	"github.com/google/uuid"
)

// Uploader stores file contents in memory and hands back mem:// URLs.
type Uploader struct {
	mu    sync.RWMutex
	files map[string][]byte
	now   func() time.Time
}

func NewUploader() *Uploader {
	return &Uploader{files: make(map[string][]byte), now: time.Now}
}

func (u *Uploader) Upload(_ context.Context, questionID string, file domain.FileHandle) (domain.Attachment, error) {
	var data []byte
	if file.Body != nil {
		b, err := io.ReadAll(file.Body)
		if err != nil {
			return domain.Attachment{}, fmt.Errorf("read %s: %w", file.Name, err)
		}
		data = b
	}
	location := fmt.Sprintf("mem://%s/%s/%s", questionID, uuid.NewString(), url.PathEscape(file.Name))

	u.mu.Lock()
	u.files[location] = data
	u.mu.Unlock()

	size := file.Size
	if size == 0 {
		size = int64(len(data))
	}
	return domain.Attachment{
		Name:       file.Name,
		Type:       file.Type,
		Size:       size,
		URL:        location,
		UploadedAt: u.now().UTC(),
	}, nil
}

// Content returns what was uploaded to location.
func (u *Uploader) Content(location string) ([]byte, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	data, ok := u.files[location]
	return data, ok
}
