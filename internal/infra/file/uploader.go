package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"esg-assessment-service/internal/domain"
	"github.com/google/uuid"
)

// Uploader stores evidence files under dir/<questionID>/ and returns file:// URLs.
type Uploader struct {
	dir string
	now func() time.Time
}

func NewUploader(dir string) (*Uploader, error) {
	if dir == "" {
		return nil, errors.New("upload directory not configured")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Uploader{dir: abs, now: time.Now}, nil
}

func (u *Uploader) Upload(_ context.Context, questionID string, f domain.FileHandle) (domain.Attachment, error) {
	var data []byte
	if f.Body != nil {
		b, err := io.ReadAll(f.Body)
		if err != nil {
			return domain.Attachment{}, fmt.Errorf("read %s: %w", f.Name, err)
		}
		data = b
	}

	dir := filepath.Join(u.dir, url.PathEscape(questionID))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return domain.Attachment{}, fmt.Errorf("create upload directory: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+"-"+url.PathEscape(f.Name))
	if err := atomicWriteFile(path, data, 0o600); err != nil {
		return domain.Attachment{}, err
	}

	size := f.Size
	if size == 0 {
		size = int64(len(data))
	}
	return domain.Attachment{
		Name:       f.Name,
		Type:       f.Type,
		Size:       size,
		URL:        (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(),
		UploadedAt: u.now().UTC(),
	}, nil
}
