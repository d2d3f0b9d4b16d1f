package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore writes attachments under root, one directory per user, and
// serves them at baseURL/{path}.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Upload(ctx context.Context, userID, folder, filename, contentType string, r io.Reader) (Object, error) {
	if userID == "" {
		return Object{}, fmt.Errorf("%w: missing user id", ErrInvalidPath)
	}
	if folder == "" {
		folder = "general"
	}

	// Timestamped name; the original extension is kept, everything else
	// about the client-supplied filename is discarded.
	ext := path.Ext(filepath.Base(filename))
	name := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	objPath := path.Join(userID, folder, name)

	dst, err := s.resolve(objPath)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, err
	}

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Object{}, err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return Object{}, err
	}
	if err := f.Close(); err != nil {
		return Object{}, err
	}

	return Object{Path: objPath, PublicURL: s.baseURL + "/" + objPath}, nil
}

func (s *DiskStore) Delete(ctx context.Context, objPath string) error {
	dst, err := s.resolve(objPath)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// resolve maps an object path onto the disk root, refusing anything that
// escapes it.
func (s *DiskStore) resolve(objPath string) (string, error) {
	for _, seg := range strings.Split(objPath, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, objPath)
		}
	}
	clean := path.Clean("/" + objPath)[1:]
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objPath)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
