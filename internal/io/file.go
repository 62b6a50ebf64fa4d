// Package ioutils provides the file system side of placing downloads.
//
// All writes go through a temporary file first, so a destination path
// either does not exist or holds a complete file.
package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
)

// TempPrefix is the name prefix of temporary download files.
const TempPrefix = "dl-"

// Exists reports whether a regular file exists at path.
//
// Example:
//
//	if Exists("dl/1.2.3/Firmware/Linux/fw.zip") {
//	    // skip download
//	}
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteTemp writes data to a new file in the system temporary directory and
// returns its name. The file name ends in ext so tools that inspect the
// extension see the right one while the download is in flight.
func WriteTemp(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", TempPrefix+"*"+ext)
	if err != nil {
		return "", errors.Wrap(err, "create temporary file")
	}
	name := f.Name()

	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(name)
		return "", errors.Wrapf(err, "chmod %s", name)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", errors.Wrapf(err, "write %s", name)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", errors.Wrapf(err, "sync %s", name)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", errors.Wrapf(err, "close %s", name)
	}
	return name, nil
}

// PlaceFile stores data as dir/name.
//
// The data is written to a temporary file first, then dir is created with
// its parents and the temporary file is moved into place. PlaceFile does not
// check whether dir/name exists; callers skip existing files before fetching.
//
// Returns the final path and the temporary path it was moved from.
func PlaceFile(dir, name string, data []byte) (final, temp string, err error) {
	temp, err = WriteTemp(data, filepath.Ext(name))
	if err != nil {
		return "", "", err
	}

	if err := EnsureDir(dir); err != nil {
		os.Remove(temp)
		return "", "", errors.Wrapf(err, "create directory %s", dir)
	}

	final = filepath.Join(dir, name)
	if err := MoveFile(temp, final); err != nil {
		os.Remove(temp)
		return "", "", errors.Wrapf(err, "move %s to %s", temp, final)
	}
	return final, temp, nil
}

// MoveFile renames src to dst. When src and dst are on different file
// systems the file is copied and src removed afterwards.
func MoveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || linkErr.Err != syscall.EXDEV {
		return err
	}

	if err := CopyFile(src, dst); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// CopyFile copies a file from source to destination.
//
// The destination file is created with the source file's permissions, or
// truncated if it exists, and synced before CopyFile returns.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return err
	}
	if err := destFile.Sync(); err != nil {
		destFile.Close()
		return err
	}
	return destFile.Close()
}
