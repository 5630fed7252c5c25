package filesystem

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/dob9601/jointhedots/pkg/errors"
)

// NewOS returns the OS filesystem
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an empty in-memory filesystem
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func Exists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// CopyFile copies src to dst, creating dst's parent directories. The source
// file mode is kept. An existing dst is overwritten.
func CopyFile(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot read %s", src).
			WithDetail("source", src)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrFileCopy, "%s is a directory", src).
			WithDetail("source", src)
	}

	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot read %s", src).
			WithDetail("source", src)
	}

	if err := fsys.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot create parent directory of %s", dst).
			WithDetail("target", dst)
	}

	if err := afero.WriteFile(fsys, dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot write %s", dst).
			WithDetails(map[string]interface{}{"source": src, "target": dst})
	}

	// WriteFile keeps the mode of an existing file
	if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot set mode on %s", dst).
			WithDetail("target", dst)
	}

	return nil
}

// WriteFileAtomic writes data to a temp file in path's directory and renames
// it over path, so readers never observe a partially written file.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fsys.Chmod(tmpName, perm); err != nil {
		return err
	}

	return fsys.Rename(tmpName, path)
}

// SameContent reports whether the file at path holds exactly data. A missing
// file never matches.
func SameContent(fsys afero.Fs, path string, data []byte) (bool, error) {
	current, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(current, data), nil
}
