package sitestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// ExpandPath resolves a leading ~/ to the current user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", pfx.Err(err)
	}
	return filepath.Join(usr.HomeDir, path[2:]), nil
}

// Fetch makes path available on the local filesystem. Paths of the form
// gs://bucket/object are downloaded into a temporary file, which the returned
// cleanup function removes; local paths are returned after ExpandPath with a
// no-op cleanup.
func Fetch(ctx context.Context, path string) (string, func(), error) {
	if !strings.HasPrefix(path, "gs://") {
		local, err := ExpandPath(path)
		return local, func() {}, err
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(path, "gs://"), "/")
	if !ok || bucket == "" || object == "" {
		return "", nil, pfx.Err(fmt.Errorf("%s is not of the form gs://bucket/object", path))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", nil, pfx.Err(err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return "", nil, pfx.Err(err)
	}
	defer r.Close()

	f, err := os.CreateTemp("", "sitestore-*"+filepath.Ext(object))
	if err != nil {
		return "", nil, pfx.Err(err)
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		cleanup()
		return "", nil, pfx.Err(err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, pfx.Err(err)
	}

	return f.Name(), cleanup, nil
}
