package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"esg-assessment-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// CatalogLoader reads YAML catalogs. Path is either a single catalog file or
// a directory holding <catalogID>.yaml files.
type CatalogLoader struct {
	path string
}

func NewCatalogLoader(path string) *CatalogLoader {
	return &CatalogLoader{path: path}
}

func (l *CatalogLoader) LoadCatalog(_ context.Context, catalogID string) (domain.Catalog, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Catalog{}, fmt.Errorf("%s: %w", catalogID, domain.ErrCatalogNotFound)
		}
		return domain.Catalog{}, err
	}

	if !info.IsDir() {
		c, err := ReadCatalog(l.path)
		if err != nil {
			return domain.Catalog{}, err
		}
		if c.ID == "" {
			c.ID = catalogID
		}
		if c.ID != catalogID {
			return domain.Catalog{}, fmt.Errorf("%s: %w", catalogID, domain.ErrCatalogNotFound)
		}
		return c, nil
	}

	for _, ext := range []string{".yaml", ".yml"} {
		c, err := ReadCatalog(filepath.Join(l.path, catalogID+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.Catalog{}, err
		}
		if c.ID == "" {
			c.ID = catalogID
		}
		return c, nil
	}
	return domain.Catalog{}, fmt.Errorf("%s: %w", catalogID, domain.ErrCatalogNotFound)
}

// ReadCatalog parses one catalog file.
func ReadCatalog(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, err
	}
	var c domain.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := checkCatalog(c); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func checkCatalog(c domain.Catalog) error {
	seen := make(map[string]bool)
	for _, s := range c.Sections {
		for _, q := range s.Questions {
			if q.ID == "" {
				return fmt.Errorf("section %q has a question without id", s.ID)
			}
			if seen[q.ID] {
				return fmt.Errorf("duplicate question id %q", q.ID)
			}
			seen[q.ID] = true
			switch q.Type {
			case domain.MultipleChoice, domain.LikertScale:
				if len(q.Options) == 0 {
					return fmt.Errorf("question %q needs options", q.ID)
				}
			case domain.NumberInput, domain.FileUpload, domain.TextInput:
			default:
				return fmt.Errorf("question %q has unknown type %q", q.ID, q.Type)
			}
		}
	}
	return nil
}
