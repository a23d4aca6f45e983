package artifacts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ventrath/gantry/pkg/errors"
)

// Disk is a Store backed by a local directory, laid out root/<run>/<name>/.
type Disk struct {
	root string
}

// NewDisk returns a disk store rooted at the given directory, creating it
// if needed.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Disk{root: root}, nil
}

func (d *Disk) dir(runID, name string) string {
	return filepath.Join(d.root, runID, name)
}

// Put stores src under (runID, name). The write lands in a temp dir first
// and is renamed into place, so a half written artifact is never visible.
func (d *Disk) Put(runID, name, src string) (int64, error) {
	dst := d.dir(runID, name)
	if _, err := os.Stat(dst); err == nil {
		return 0, fmt.Errorf("%w %s/%s", errors.ErrArtifactExists, runID, name)
	}

	if err := os.MkdirAll(filepath.Join(d.root, runID), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.MkdirTemp(filepath.Join(d.root, runID), ".upload-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(tmp)

	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	var size int64
	if info.IsDir() {
		size, err = copyTree(src, tmp)
	} else {
		size, err = copyFile(src, filepath.Join(tmp, filepath.Base(src)))
	}
	if err != nil {
		return 0, err
	}

	if err := os.Rename(tmp, dst); err != nil {
		// lost the race to another uploader; write-once still holds
		if _, statErr := os.Stat(dst); statErr == nil {
			return 0, fmt.Errorf("%w %s/%s", errors.ErrArtifactExists, runID, name)
		}
		return 0, err
	}
	return size, nil
}

// Get copies the artifact under (runID, name) into dst.
func (d *Disk) Get(runID, name, dst string) error {
	src := d.dir(runID, name)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w %s/%s", errors.ErrArtifactMissing, runID, name)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	_, err := copyTree(src, dst)
	return err
}

// Exists reports whether (runID, name) has been Put.
func (d *Disk) Exists(runID, name string) bool {
	_, err := os.Stat(d.dir(runID, name))
	return err == nil
}

// RemoveRun deletes every artifact of the given run.
func (d *Disk) RemoveRun(runID string) error {
	return os.RemoveAll(filepath.Join(d.root, runID))
}

func copyTree(src, dst string) (int64, error) {
	var size int64
	err := filepath.WalkDir(src, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		n, err := copyFile(path, target)
		size += n
		return err
	})
	return size, err
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return n, err
	}
	return n, out.Close()
}
