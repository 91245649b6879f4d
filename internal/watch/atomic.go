package watch

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/wpieterse/pipegen/internal/errors"
)

// WriteFileAtomic writes the output of write to path through a temp file in
// the same directory, then renames it into place. Readers see either the old
// contents or the new ones, never a partial file. On failure path is left
// untouched and the temp file is removed.
func WriteFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(errors.Join(errors.ErrWriteFailed, err), "write %s", tmp.Name())
	}
	if err = tmp.Chmod(0644); err != nil {
		return errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(errors.Join(errors.ErrWriteFailed, err), "close %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(errors.Join(errors.ErrWriteFailed, err), "rename into %s", path)
	}
	return nil
}
