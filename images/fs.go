package images

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FilesystemStore copies uploads under a root directory. Public ids are
// paths relative to the root.
type FilesystemStore struct {
	root string
}

func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		root = "./imagedata"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "create image root")
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) Upload(ctx context.Context, fileRef, targetID string) (Image, error) {
	data, err := os.ReadFile(fileRef)
	if err != nil {
		return Image{}, errors.Wrap(err, "read image source")
	}
	publicID := path.Join(targetID, uuid.NewString()+filepath.Ext(fileRef))
	dst := filepath.Join(s.root, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Image{}, errors.Wrap(err, "create image dir")
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return Image{}, errors.Wrap(err, "write image")
	}
	return Image{URL: fmt.Sprintf("file://%s", dst), PublicID: publicID}, nil
}

func (s *FilesystemStore) Delete(ctx context.Context, publicID string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(publicID)))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "delete image")
}

func (s *FilesystemStore) DeleteMany(ctx context.Context, publicIDs []string) error {
	for _, id := range publicIDs {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *FilesystemStore) Driver() Driver { return DriverFilesystem }
