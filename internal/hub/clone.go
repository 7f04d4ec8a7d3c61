package hub

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/opencontainers/go-digest"
)

// RepoClone is a local working copy of a hub repository. It is synced
// from the remote before any writes and pushed as a single commit; on a
// failed push the working tree is left on disk for manual recovery.
type RepoClone struct {
	RepoID string
	Dir    string

	client *Client
}

// Clone creates the working directory and syncs it to the remote head,
// downloading every file the repository currently holds.
func Clone(ctx context.Context, client *Client, repoID, dir string) (*RepoClone, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	manifest, err := client.GetManifest(ctx, repoID)
	if err != nil {
		return nil, err
	}
	for _, desc := range manifest.Files {
		if err := downloadFile(ctx, client, repoID, desc, dir); err != nil {
			return nil, fmt.Errorf("failed to sync %s: %w", desc.Path, err)
		}
	}
	return &RepoClone{RepoID: repoID, Dir: dir, client: client}, nil
}

func downloadFile(ctx context.Context, client *Client, repoID string, desc Descriptor, dir string) error {
	target := filepath.Join(dir, filepath.FromSlash(desc.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	// Skip files already in sync with the remote.
	if local, err := digestFile(target); err == nil && local == desc.Digest {
		return nil
	}

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()
	return client.DownloadBlob(ctx, repoID, desc.Digest, f)
}

// Push digests the working tree, uploads blobs the remote is missing and
// commits the new manifest with the given message.
func (r *RepoClone) Push(ctx context.Context, message string) error {
	manifest, err := r.scan()
	if err != nil {
		return err
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stdout)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	go pw.Render()
	defer pw.Stop()

	for _, desc := range manifest.Files {
		tracker := &progress.Tracker{Message: desc.Path, Total: desc.Size, Units: progress.UnitsBytes}
		pw.AppendTracker(tracker)

		if err := r.pushFile(ctx, desc, tracker); err != nil {
			tracker.MarkAsErrored()
			return fmt.Errorf("failed to upload %s: %w", desc.Path, err)
		}
		tracker.MarkAsDone()
	}

	return r.client.Commit(ctx, r.RepoID, CommitRequest{Message: message, Files: manifest.Files})
}

func (r *RepoClone) pushFile(ctx context.Context, desc Descriptor, tracker *progress.Tracker) error {
	exist, err := r.client.HeadBlob(ctx, r.RepoID, desc.Digest)
	if err != nil {
		return err
	}
	if exist {
		tracker.SetValue(desc.Size)
		return nil
	}

	f, err := os.Open(filepath.Join(r.Dir, filepath.FromSlash(desc.Path)))
	if err != nil {
		return err
	}
	defer f.Close()
	return r.client.UploadBlob(ctx, r.RepoID, desc, &trackedReader{r: f, tracker: tracker})
}

// scan walks the working tree and builds a manifest of it.
func (r *RepoClone) scan() (*Manifest, error) {
	manifest := &Manifest{}
	err := filepath.WalkDir(r.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != r.Dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(r.Dir, path)
		if err != nil {
			return err
		}
		dgst, err := digestFile(path)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		manifest.Files = append(manifest.Files, Descriptor{
			Path:   filepath.ToSlash(rel),
			Digest: dgst,
			Size:   fi.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

func digestFile(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return digest.FromReader(f)
}

type trackedReader struct {
	r       io.Reader
	tracker *progress.Tracker
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.tracker.Increment(int64(n))
	}
	return n, err
}
