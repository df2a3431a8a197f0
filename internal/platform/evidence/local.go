package evidence

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

type LocalStore struct {
	dir    string
	prefix string
	ids    IDGen
	now    func() time.Time
}

func NewLocalStore(dir, publicPrefix string) *LocalStore {
	return &LocalStore{
		dir:    dir,
		prefix: "/" + strings.Trim(publicPrefix, "/"),
		ids:    ulidGen{},
		now:    time.Now,
	}
}

func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) PublicPrefix() string { return s.prefix }

func (s *LocalStore) Save(ctx context.Context, employeeID int64, photo Photo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name, err := objectName(s.ids, s.now(), employeeID, photo.ContentType)
	if err != nil {
		return "", err
	}

	// tmp に書いてから rename
	tmp := filepath.Join(s.dir, "."+name+".tmp")
	if err := os.WriteFile(tmp, photo.Data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit photo: %w", err)
	}
	return path.Join(s.prefix, name), nil
}
